package mysql

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/xiebiao/medsupply/internal/domain/identity"
	"github.com/xiebiao/medsupply/internal/domain/user"
	apperrors "github.com/xiebiao/medsupply/pkg/errors"
)

// userRepository 用户仓储实现(MySQL)
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository 创建用户仓储
func NewUserRepository(db *gorm.DB) user.Repository {
	return &userRepository{db: db}
}

// Create 创建用户
// 邮箱唯一性由数据库UNIQUE索引保证,冲突时转换为业务错误
func (r *userRepository) Create(ctx context.Context, u *user.User) error {
	model := toUserModel(u)

	if err := getDB(ctx, r.db).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return user.ErrEmailDuplicate
		}
		return apperrors.Wrap(err, "创建用户失败")
	}

	u.ID = model.ID
	u.CreatedAt = model.CreatedAt
	return nil
}

// FindByID 根据ID查找用户
func (r *userRepository) FindByID(ctx context.Context, id uint) (*user.User, error) {
	var model UserModel
	err := getDB(ctx, r.db).First(&model, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, user.ErrUserNotFound
		}
		return nil, apperrors.Wrap(err, "查询用户失败")
	}
	return toUserEntity(&model), nil
}

// FindByEmail 根据邮箱查找用户
func (r *userRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	var model UserModel
	err := getDB(ctx, r.db).Where("email = ?", email).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, user.ErrUserNotFound
		}
		return nil, apperrors.Wrap(err, "查询用户失败")
	}
	return toUserEntity(&model), nil
}

// UpdateLastLogin 记录最近登录时间
func (r *userRepository) UpdateLastLogin(ctx context.Context, id uint) error {
	now := time.Now()
	result := getDB(ctx, r.db).Model(&UserModel{}).Where("id = ?", id).
		Update("last_login", now)
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新登录时间失败")
	}
	return nil
}

// List 分页查询用户列表
func (r *userRepository) List(ctx context.Context, params user.ListParams) ([]*user.User, int64, error) {
	var models []UserModel
	var total int64

	query := getDB(ctx, r.db).Model(&UserModel{})
	if params.Role != "" {
		query = query.Where("role = ?", params.Role)
	}
	if params.FacilityID != nil {
		query = query.Where("facility_id = ?", *params.FacilityID)
	}
	if params.Status != "" {
		query = query.Where("status = ?", params.Status)
	}
	if params.Keyword != "" {
		kw := "%" + params.Keyword + "%"
		query = query.Where("name LIKE ? OR email LIKE ?", kw, kw)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询用户总数失败")
	}

	offset := (params.Page - 1) * params.PageSize
	err := query.Order("created_at DESC").Limit(params.PageSize).Offset(offset).Find(&models).Error
	if err != nil {
		return nil, 0, apperrors.Wrap(err, "查询用户列表失败")
	}

	users := make([]*user.User, len(models))
	for i := range models {
		users[i] = toUserEntity(&models[i])
	}
	return users, total, nil
}

// =========================================
// 辅助函数:模型转换
// =========================================

func toUserModel(u *user.User) *UserModel {
	return &UserModel{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		Password:   u.Password,
		Role:       string(u.Role),
		FacilityID: u.FacilityID,
		Phone:      u.Phone,
		Department: u.Department,
		Status:     string(u.Status),
		LastLogin:  u.LastLogin,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}

func toUserEntity(model *UserModel) *user.User {
	return &user.User{
		ID:         model.ID,
		Name:       model.Name,
		Email:      model.Email,
		Password:   model.Password,
		Role:       identity.Role(model.Role),
		FacilityID: model.FacilityID,
		Phone:      model.Phone,
		Department: model.Department,
		Status:     user.Status(model.Status),
		LastLogin:  model.LastLogin,
		CreatedAt:  model.CreatedAt,
		UpdatedAt:  model.UpdatedAt,
	}
}
