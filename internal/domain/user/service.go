package user

import (
	"context"
	"regexp"

	"golang.org/x/crypto/bcrypt"

	"github.com/xiebiao/medsupply/internal/domain/identity"
	apperrors "github.com/xiebiao/medsupply/pkg/errors"
)

// Service 用户领域服务
// 设计说明：
// 1. Service包含不属于单个实体的业务逻辑（如密码加密、角色校验）
// 2. Service依赖Repository接口，不依赖具体实现（依赖倒置）
// 3. Service不处理HTTP请求，只处理业务逻辑
type Service interface {
	// Register 用户注册
	// 业务规则：邮箱格式/唯一性、密码强度、角色合法性、机构角色必须关联机构
	Register(ctx context.Context, name, email, password string, role identity.Role, facilityID *uint, phone, department string) (*User, error)

	// Login 用户登录
	Login(ctx context.Context, email, password string) (*User, error)

	// ValidatePassword 验证密码
	ValidatePassword(hashedPassword, plainPassword string) error
}

type service struct {
	repo Repository
}

// NewService 创建用户服务
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// Register 用户注册
func (s *service) Register(ctx context.Context, name, email, password string, role identity.Role, facilityID *uint, phone, department string) (*User, error) {
	// 1. 基础校验
	if len(name) < 2 || len(name) > 100 {
		return nil, apperrors.New(apperrors.ErrCodeInvalidParams, "姓名长度应为2-100个字符")
	}
	if !isValidEmail(email) {
		return nil, apperrors.New(apperrors.ErrCodeInvalidParams, "邮箱格式不正确")
	}
	if len(password) < 6 {
		return nil, ErrWeakPassword
	}

	// 2. 角色校验
	if !role.Valid() {
		return nil, ErrInvalidRole
	}
	// 机构角色必须挂在某个机构下，否则申领单/库存的范围约束无法成立
	if role.IsFacilityScoped() && facilityID == nil {
		return nil, ErrFacilityRequired
	}
	if !role.IsFacilityScoped() {
		facilityID = nil
	}

	// 3. 密码加密
	// bcrypt自动加盐，cost=12平衡安全性与性能
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		return nil, apperrors.Wrap(err, "密码加密失败")
	}

	// 4. 创建用户实体并持久化（邮箱唯一性由数据库UNIQUE索引兜底）
	u := &User{
		Name:       name,
		Email:      email,
		Password:   string(hashedPassword),
		Role:       role,
		FacilityID: facilityID,
		Phone:      phone,
		Department: department,
		Status:     StatusActive,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err // Repository已转换为业务错误
	}

	return u, nil
}

// Login 用户登录
func (s *service) Login(ctx context.Context, email, password string) (*User, error) {
	u, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err // Repository已转换为ErrUserNotFound
	}

	if !u.IsActive() {
		return nil, ErrUserInactive
	}

	if err := s.ValidatePassword(u.Password, password); err != nil {
		return nil, err
	}

	// 记录最近登录时间（失败不影响登录流程）
	_ = s.repo.UpdateLastLogin(ctx, u.ID)

	return u, nil
}

// ValidatePassword 验证密码
func (s *service) ValidatePassword(hashedPassword, plainPassword string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(plainPassword))
	if err != nil {
		if err == bcrypt.ErrMismatchedHashAndPassword {
			return apperrors.ErrInvalidPassword
		}
		return apperrors.Wrap(err, "密码验证失败")
	}
	return nil
}

// isValidEmail 邮箱格式校验
var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

func isValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}
