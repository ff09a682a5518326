package dto

// CreateFacilityRequest 创建机构请求
type CreateFacilityRequest struct {
	Name          string `json:"name" binding:"required,min=2,max=200"`
	Location      string `json:"location" binding:"omitempty,max=200"`
	Type          string `json:"type" binding:"omitempty,max=32"`
	ContactPerson string `json:"contact_person" binding:"omitempty,max=100"`
	Phone         string `json:"phone" binding:"omitempty,max=20"`
	Email         string `json:"email" binding:"omitempty,email"`
	Address       string `json:"address" binding:"omitempty,max=500"`
}

// UpdateFacilityRequest 更新机构请求
type UpdateFacilityRequest struct {
	Name          string `json:"name" binding:"required,min=2,max=200"`
	Location      string `json:"location" binding:"omitempty,max=200"`
	Type          string `json:"type" binding:"omitempty,max=32"`
	ContactPerson string `json:"contact_person" binding:"omitempty,max=100"`
	Phone         string `json:"phone" binding:"omitempty,max=20"`
	Email         string `json:"email" binding:"omitempty,email"`
	Address       string `json:"address" binding:"omitempty,max=500"`
	Status        string `json:"status" binding:"omitempty,oneof=active inactive"`
}

// FacilityResponse 机构响应
type FacilityResponse struct {
	ID            uint   `json:"id"`
	Name          string `json:"name"`
	Location      string `json:"location,omitempty"`
	Type          string `json:"type,omitempty"`
	ContactPerson string `json:"contact_person,omitempty"`
	Phone         string `json:"phone,omitempty"`
	Email         string `json:"email,omitempty"`
	Address       string `json:"address,omitempty"`
	Status        string `json:"status"`
}
