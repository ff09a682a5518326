package requisition

import "context"

// ListParams 申领单列表查询参数
type ListParams struct {
	Page        int
	PageSize    int
	Status      string
	Priority    string
	FacilityID  *uint // 机构角色强制按本机构过滤
	RequesterID uint  // facility_user只看自己的单
}

// Repository 申领单仓储接口
type Repository interface {
	// Create 创建申领单及其明细行（同一事务）
	Create(ctx context.Context, r *Requisition) error

	// FindByID 查找申领单（含明细行）
	FindByID(ctx context.Context, id uint) (*Requisition, error)

	// FindByIDLock 以SELECT ... FOR UPDATE锁定申领单行，必须在事务内调用
	// 并发审批依赖这把锁：拿到锁后重查状态，后到者看到dispatched即失败
	FindByIDLock(ctx context.Context, id uint) (*Requisition, error)

	// SaveApproval 写入审批结果：各行审批量+状态+审批人/时间
	SaveApproval(ctx context.Context, r *Requisition) error

	// SaveDelivery 写入送达结果：各行送达量+状态+送达时间
	SaveDelivery(ctx context.Context, r *Requisition) error

	// UpdateStatus 仅更新状态（驳回、发运取消回退）
	UpdateStatus(ctx context.Context, id uint, status Status) error

	// Delete 删除申领单及其明细行
	Delete(ctx context.Context, id uint) error

	List(ctx context.Context, params ListParams) ([]*Requisition, int64, error)

	// CountByStatus 按状态统计数量，用于仪表盘
	CountByStatus(ctx context.Context, facilityID *uint) (map[Status]int64, error)

	// HasActiveReferences 某物资是否被未完结（pending/dispatched）申领单引用
	HasActiveReferences(ctx context.Context, itemID uint) (bool, error)
}
