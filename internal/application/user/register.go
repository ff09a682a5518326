package user

import (
	"context"

	"github.com/xiebiao/medsupply/internal/domain/identity"
	"github.com/xiebiao/medsupply/internal/domain/user"
)

// RegisterUseCase 用户注册用例
type RegisterUseCase struct {
	userService user.Service
}

// NewRegisterUseCase 创建注册用例
func NewRegisterUseCase(userService user.Service) *RegisterUseCase {
	return &RegisterUseCase{userService: userService}
}

// RegisterRequest 注册请求
type RegisterRequest struct {
	Name       string
	Email      string
	Password   string
	Role       string
	FacilityID *uint
	Phone      string
	Department string
}

// RegisterResponse 注册响应
type RegisterResponse struct {
	UserID uint   `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

// Execute 执行注册
func (uc *RegisterUseCase) Execute(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	role := identity.Role(req.Role)
	if req.Role == "" {
		role = identity.RoleFacilityUser
	}

	u, err := uc.userService.Register(ctx, req.Name, req.Email, req.Password,
		role, req.FacilityID, req.Phone, req.Department)
	if err != nil {
		return nil, err
	}

	return &RegisterResponse{
		UserID: u.ID,
		Name:   u.Name,
		Email:  u.Email,
		Role:   string(u.Role),
	}, nil
}
