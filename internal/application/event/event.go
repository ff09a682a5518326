package event

import "time"

// Publisher 事件发布接口
// 设计说明：
// 由pkg/mq的RabbitMQ实现满足；MQ未启用时注入NopPublisher。
// 事件发布在事务提交后执行，发布失败只记录日志，不回滚业务。
type Publisher interface {
	Publish(routingKey string, message interface{}) error
}

// NopPublisher 空实现（MQ未启用时使用）
type NopPublisher struct{}

func (NopPublisher) Publish(routingKey string, message interface{}) error {
	return nil
}

// 路由键定义
const (
	RouteRequisitionSubmitted = "requisition.submitted"
	RouteRequisitionApproved  = "requisition.approved"
	RouteRequisitionRejected  = "requisition.rejected"
	RouteRequisitionDelivered = "requisition.delivered"
	RouteDispatchCancelled    = "dispatch.cancelled"
	RouteLowStockAlert        = "inventory.low_stock"
)

// RequisitionEvent 申领单生命周期事件
type RequisitionEvent struct {
	RequisitionID uint      `json:"requisition_id"`
	FacilityID    uint      `json:"facility_id"`
	Status        string    `json:"status"`
	ActorID       uint      `json:"actor_id"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// LowStockEvent 低库存预警事件
type LowStockEvent struct {
	LineID        uint      `json:"line_id"`
	ItemID        uint      `json:"item_id"`
	FacilityID    *uint     `json:"facility_id"`
	ItemName      string    `json:"item_name"`
	Quantity      int       `json:"quantity"`
	MinStockLevel int       `json:"min_stock_level"`
	OccurredAt    time.Time `json:"occurred_at"`
}
