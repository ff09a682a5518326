package dto

// SubmitLineRequest 申领明细输入
type SubmitLineRequest struct {
	ItemID   uint   `json:"item_id" binding:"required"`
	Quantity int    `json:"quantity" binding:"required,min=1"`
	Priority string `json:"priority" binding:"omitempty,oneof=normal high urgent"`
}

// SubmitRequisitionRequest 提交申领单请求
type SubmitRequisitionRequest struct {
	FacilityID uint                `json:"facility_id"` // 仓库/超管代下单时指定
	Priority   string              `json:"priority" binding:"omitempty,oneof=normal high urgent"`
	Remarks    string              `json:"remarks" binding:"omitempty,max=500"`
	Lines      []SubmitLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// ApprovalLineRequest 审批明细输入
type ApprovalLineRequest struct {
	LineID           uint `json:"line_id" binding:"required"`
	ApprovedQuantity int  `json:"approved_quantity" binding:"required,min=1"`
}

// ApproveRequisitionRequest 审批请求
type ApproveRequisitionRequest struct {
	Lines          []ApprovalLineRequest `json:"lines" binding:"required,min=1,dive"`
	TrackingNumber string                `json:"tracking_number" binding:"omitempty,max=64"`
}

// DeliveryLineRequest 送达明细输入
type DeliveryLineRequest struct {
	LineID            uint `json:"line_id" binding:"required"`
	DeliveredQuantity int  `json:"delivered_quantity" binding:"required,min=1"`
}

// ConfirmDeliveryRequest 确认送达请求
type ConfirmDeliveryRequest struct {
	Lines []DeliveryLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// RejectRequisitionRequest 驳回请求
type RejectRequisitionRequest struct {
	Reason string `json:"reason" binding:"omitempty,max=500"`
}

// RequisitionLineResponse 申领明细响应
type RequisitionLineResponse struct {
	ID                uint   `json:"id"`
	ItemID            uint   `json:"item_id"`
	RequestedQuantity int    `json:"requested_quantity"`
	ApprovedQuantity  *int   `json:"approved_quantity,omitempty"`
	DeliveredQuantity *int   `json:"delivered_quantity,omitempty"`
	Priority          string `json:"priority"`
}

// RequisitionResponse 申领单响应
type RequisitionResponse struct {
	ID          uint                      `json:"id"`
	RequesterID uint                      `json:"requester_id"`
	FacilityID  uint                      `json:"facility_id"`
	Status      string                    `json:"status"`
	Priority    string                    `json:"priority"`
	Remarks     string                    `json:"remarks,omitempty"`
	Lines       []RequisitionLineResponse `json:"lines"`
	ApprovedBy  *uint                     `json:"approved_by,omitempty"`
	ApprovedAt  string                    `json:"approved_at,omitempty"`
	DeliveredAt string                    `json:"delivered_at,omitempty"`
	CreatedAt   string                    `json:"created_at"`
}
