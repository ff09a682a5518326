package dto

// RegisterRequest HTTP层注册请求
// 说明：HTTP层的DTO，包含参数验证tag
type RegisterRequest struct {
	Name       string `json:"name" binding:"required,min=2,max=100"`
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required,min=6,max=64"`
	Role       string `json:"role" binding:"omitempty,oneof=super_admin warehouse_admin facility_admin facility_user"`
	FacilityID *uint  `json:"facility_id"`
	Phone      string `json:"phone" binding:"omitempty,max=20"`
	Department string `json:"department" binding:"omitempty,max=100"`
}

// LoginRequest HTTP层登录请求
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UserResponse 用户响应（不包含密码）
type UserResponse struct {
	ID         uint   `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	FacilityID *uint  `json:"facility_id,omitempty"`
	Phone      string `json:"phone,omitempty"`
	Department string `json:"department,omitempty"`
	Status     string `json:"status"`
}
