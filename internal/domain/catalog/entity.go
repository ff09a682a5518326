package catalog

import "time"

// ItemMaster 物资主数据
// 设计说明：
// 主数据只描述"这是什么物资"，不携带任何数量信息。
// 数量归属库存行（inventory.InventoryLine），仓库与各机构各持一行，
// 都引用同一条主数据，保证编码/名称/单位全链路一致。
type ItemMaster struct {
	ID          uint
	Code        string // 物资编码，全局唯一
	Name        string
	Category    string // 如 medicine / consumable / equipment
	Unit        string // 计量单位，如 盒 / 支 / 瓶
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
