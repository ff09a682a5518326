package requisition

import "time"

// Status 申领单状态
type Status string

const (
	StatusPending    Status = "pending"    // 待审批
	StatusApproved   Status = "approved"   // 已审批（仅在发运取消后回到此状态）
	StatusDispatched Status = "dispatched" // 已发运
	StatusDelivered  Status = "delivered"  // 已送达
	StatusRejected   Status = "rejected"   // 已驳回
)

// Priority 申领优先级
type Priority string

const (
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Valid 校验优先级
func (p Priority) Valid() bool {
	switch p {
	case PriorityNormal, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// transitions 状态机：只允许表中列出的迁移
// 设计说明：
// 审批是pending直达dispatched（审批与发运在同一事务内完成），
// approved只作为发运取消后的落点，不再自动重新发运。
var transitions = map[Status][]Status{
	StatusPending:    {StatusDispatched, StatusRejected},
	StatusDispatched: {StatusDelivered, StatusApproved},
	StatusApproved:   {},
	StatusDelivered:  {},
	StatusRejected:   {},
}

// CanTransitionTo 判断状态是否允许迁移
func (s Status) CanTransitionTo(target Status) bool {
	for _, t := range transitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// Line 申领单明细行
// 三个数量字段独立记录：请求量由提交方写入，审批量由仓库写入，
// 送达量由收货方写入。审批量≤请求量，送达量≤审批量。
type Line struct {
	ID                uint
	RequisitionID     uint
	ItemID            uint
	RequestedQuantity int
	ApprovedQuantity  *int // 审批前为nil
	DeliveredQuantity *int // 收货前为nil
	Priority          Priority
}

// Requisition 申领单聚合根
type Requisition struct {
	ID          uint
	RequesterID uint
	FacilityID  uint
	Status      Status
	Priority    Priority
	Remarks     string
	Lines       []*Line

	ApprovedBy  *uint
	ApprovedAt  *time.Time
	DeliveredAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TransitionTo 执行状态迁移，非法迁移返回错误
func (r *Requisition) TransitionTo(target Status) error {
	if !r.Status.CanTransitionTo(target) {
		return ErrInvalidTransition
	}
	r.Status = target
	return nil
}

// IsDeletable 只有待审批的申领单可以删除
func (r *Requisition) IsDeletable() bool {
	return r.Status == StatusPending
}

// LineByItem 按物资ID查找明细行
func (r *Requisition) LineByItem(itemID uint) *Line {
	for _, l := range r.Lines {
		if l.ItemID == itemID {
			return l
		}
	}
	return nil
}

// SetApproval 写入某行的审批量
// 业务规则：审批量必须为正且不超过请求量
func (l *Line) SetApproval(qty int) error {
	if qty <= 0 || qty > l.RequestedQuantity {
		return ErrApprovedExceedsRequested
	}
	l.ApprovedQuantity = &qty
	return nil
}

// SetDelivery 写入某行的送达量
// 业务规则：送达量不超过审批量（允许短交，不回冲仓库）。
// 允许为0：整行缺交也要照实记账。
func (l *Line) SetDelivery(qty int) error {
	if l.ApprovedQuantity == nil {
		return ErrLineNotApproved
	}
	if qty < 0 || qty > *l.ApprovedQuantity {
		return ErrDeliveredExceedsApproved
	}
	l.DeliveredQuantity = &qty
	return nil
}
