package inventory

import "context"

// ListParams 库存列表查询参数
type ListParams struct {
	Page       int
	PageSize   int
	FacilityID *uint // nil时按WarehouseOnly/All语义解释
	Warehouse  bool  // true=只看仓库池
	Category   string
	LowStock   bool // 只看低于安全库存的行
	Keyword    string
}

// MovementListParams 流水查询参数
type MovementListParams struct {
	Page       int
	PageSize   int
	LineID     uint
	ItemID     uint
	FacilityID *uint
	Kind       MovementKind
}

// Repository 库存仓储接口
// 带Lock后缀的方法使用SELECT ... FOR UPDATE，必须在事务内调用。
type Repository interface {
	Create(ctx context.Context, line *InventoryLine) error
	FindByID(ctx context.Context, id uint) (*InventoryLine, error)

	// FindByIDLock 按ID锁定库存行，人工调整用
	FindByIDLock(ctx context.Context, id uint) (*InventoryLine, error)

	// FindWarehouseLineByItemLock 锁定仓库池中某物资的库存行
	FindWarehouseLineByItemLock(ctx context.Context, itemID uint) (*InventoryLine, error)

	// FindFacilityLineByItemLock 锁定某机构某物资的库存行，不存在返回ErrInventoryNotFound
	FindFacilityLineByItemLock(ctx context.Context, facilityID, itemID uint) (*InventoryLine, error)

	// UpdateQuantity 更新库存行数量（调用方负责事务与锁）
	UpdateQuantity(ctx context.Context, lineID uint, quantity int) error

	// Update 更新库存行的非数量字段（安全库存等）
	Update(ctx context.Context, line *InventoryLine) error

	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, params ListParams) ([]*InventoryLine, int64, error)

	// CreateMovement 写入流水（与数量更新同事务）
	CreateMovement(ctx context.Context, m *StockMovement) error
	ListMovements(ctx context.Context, params MovementListParams) ([]*StockMovement, int64, error)

	// CountLowStock 低库存行数量，用于仪表盘
	CountLowStock(ctx context.Context, facilityID *uint) (int64, error)
}
