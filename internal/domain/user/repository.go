package user

import (
	"context"
)

// ListParams 用户列表查询参数
type ListParams struct {
	Page       int
	PageSize   int
	Role       string
	FacilityID *uint
	Status     string
	Keyword    string // 匹配姓名/邮箱
}

// Repository 用户仓储接口（由domain层定义，infrastructure层实现）
type Repository interface {
	// Create 创建用户
	Create(ctx context.Context, u *User) error

	// FindByID 根据ID查找用户
	FindByID(ctx context.Context, id uint) (*User, error)

	// FindByEmail 根据邮箱查找用户（用于登录与注册查重）
	FindByEmail(ctx context.Context, email string) (*User, error)

	// UpdateLastLogin 记录最近登录时间
	UpdateLastLogin(ctx context.Context, id uint) error

	// List 分页查询用户列表
	List(ctx context.Context, params ListParams) ([]*User, int64, error)
}
