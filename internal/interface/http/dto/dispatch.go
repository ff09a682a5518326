package dto

// DispatchResponse 发运记录响应
type DispatchResponse struct {
	ID             uint   `json:"id"`
	RequisitionID  uint   `json:"requisition_id"`
	FacilityID     uint   `json:"facility_id"`
	Status         string `json:"status"`
	DispatchedBy   uint   `json:"dispatched_by"`
	ReceivedBy     *uint  `json:"received_by,omitempty"`
	TrackingNumber string `json:"tracking_number,omitempty"`
	DispatchedAt   string `json:"dispatched_at"`
	DeliveredAt    string `json:"delivered_at,omitempty"`
}
