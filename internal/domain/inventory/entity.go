package inventory

import "time"

// InventoryLine 库存行
// 设计说明：
// 1. 同一物资在中心仓库与各机构各持一行：FacilityID为nil表示仓库池，
//    非nil表示对应机构的存量。数量只存在于库存行上，主数据不携带数量。
// 2. Code/Name/Category/Unit是主数据的只读副本（创建时拷贝），列表查询无需JOIN。
//    主数据更新不回刷副本，历史行保持创建时的口径。
type InventoryLine struct {
	ID            uint
	ItemID        uint  // 指向catalog.ItemMaster
	FacilityID    *uint // nil=中心仓库
	Code          string
	Name          string
	Category      string
	Unit          string
	Quantity      int
	MinStockLevel int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsWarehouse 是否仓库池行
func (l *InventoryLine) IsWarehouse() bool {
	return l.FacilityID == nil
}

// IsLowStock 是否低于安全库存
func (l *InventoryLine) IsLowStock() bool {
	return l.MinStockLevel > 0 && l.Quantity < l.MinStockLevel
}

// ApplyAdjust 对数量应用一次调整，返回调整后的数量
// 业务规则：
//   - add：直接累加
//   - subtract：减到0为止（盘亏场景允许钳制，与申领扣减的硬失败不同）
//   - set：盘点覆盖
func (l *InventoryLine) ApplyAdjust(kind MovementKind, amount int) (int, error) {
	switch kind {
	case MovementAdd:
		return l.Quantity + amount, nil
	case MovementSubtract:
		next := l.Quantity - amount
		if next < 0 {
			next = 0
		}
		return next, nil
	case MovementSet:
		return amount, nil
	default:
		return 0, ErrInvalidAdjustKind
	}
}
