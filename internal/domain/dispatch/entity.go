package dispatch

import "time"

// Status 发运状态
// 与申领单状态保持镜像：in_transit↔dispatched，delivered↔delivered，
// cancelled时申领单回退到approved。
type Status string

const (
	StatusInTransit Status = "in_transit"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

// Dispatch 发运记录，与申领单1:1
// 只能作为审批的副作用创建，不提供独立的创建入口。
type Dispatch struct {
	ID             uint
	RequisitionID  uint
	FacilityID     uint
	Status         Status
	DispatchedBy   uint
	ReceivedBy     *uint
	TrackingNumber string
	DispatchedAt   time.Time
	DeliveredAt    *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// InTransit 是否在途
func (d *Dispatch) InTransit() bool {
	return d.Status == StatusInTransit
}

// MarkDelivered 标记送达
func (d *Dispatch) MarkDelivered(receiverID uint, at time.Time) error {
	if d.Status != StatusInTransit {
		return ErrNotInTransit
	}
	d.Status = StatusDelivered
	d.ReceivedBy = &receiverID
	d.DeliveredAt = &at
	return nil
}

// MarkCancelled 标记取消
func (d *Dispatch) MarkCancelled() error {
	if d.Status != StatusInTransit {
		return ErrNotInTransit
	}
	d.Status = StatusCancelled
	return nil
}
