package dispatch

import "context"

// ListParams 发运列表查询参数
type ListParams struct {
	Page       int
	PageSize   int
	Status     string
	FacilityID *uint
}

// Repository 发运仓储接口
type Repository interface {
	// Create 创建发运记录，同一申领单重复创建返回ErrDuplicateDispatch
	// （requisition_id唯一索引兜底，保证1:1不变量）
	Create(ctx context.Context, d *Dispatch) error

	FindByID(ctx context.Context, id uint) (*Dispatch, error)

	// FindByRequisitionID 按申领单查找发运记录
	FindByRequisitionID(ctx context.Context, requisitionID uint) (*Dispatch, error)

	// Update 更新发运状态与收货信息
	Update(ctx context.Context, d *Dispatch) error

	List(ctx context.Context, params ListParams) ([]*Dispatch, int64, error)

	// CountInTransit 在途发运数量，用于仪表盘
	CountInTransit(ctx context.Context, facilityID *uint) (int64, error)
}
