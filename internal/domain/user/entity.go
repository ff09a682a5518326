package user

import (
	"time"

	"github.com/xiebiao/medsupply/internal/domain/identity"
)

// Status 用户状态
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// User 用户实体
// 设计说明：
// 1. Password存储bcrypt哈希，永不返回明文
// 2. Role + FacilityID共同决定用户的权限边界（见identity包）
// 3. 机构角色（facility_admin/facility_user）必须关联机构
type User struct {
	ID         uint
	Name       string
	Email      string
	Password   string // bcrypt哈希
	Role       identity.Role
	FacilityID *uint // 所属机构，仓库/超管角色为nil
	Phone      string
	Department string
	Status     Status
	LastLogin  *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Principal 转换为鉴权主体
func (u *User) Principal() identity.Principal {
	return identity.Principal{
		UserID:     u.ID,
		Role:       u.Role,
		FacilityID: u.FacilityID,
	}
}

// IsActive 判断用户是否可登录
func (u *User) IsActive() bool {
	return u.Status == StatusActive
}
