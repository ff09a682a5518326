package user

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/medsupply/internal/domain/identity"
	apperrors "github.com/xiebiao/medsupply/pkg/errors"
)

// memUserRepo 用户内存仓储
type memUserRepo struct {
	users  map[uint]*User
	nextID uint
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[uint]*User), nextID: 1}
}

func (r *memUserRepo) Create(ctx context.Context, u *User) error {
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return ErrEmailDuplicate
		}
	}
	u.ID = r.nextID
	r.nextID++
	r.users[u.ID] = u
	return nil
}

func (r *memUserRepo) FindByID(ctx context.Context, id uint) (*User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return u, nil
}

func (r *memUserRepo) FindByEmail(ctx context.Context, email string) (*User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, ErrUserNotFound
}

func (r *memUserRepo) UpdateLastLogin(ctx context.Context, id uint) error {
	return nil
}

func (r *memUserRepo) List(ctx context.Context, params ListParams) ([]*User, int64, error) {
	return nil, 0, nil
}

// TestService_Register 注册校验
func TestService_Register(t *testing.T) {
	svc := NewService(newMemUserRepo())
	ctx := context.Background()
	fid := uint(2)

	// 正常注册：密码只存哈希
	u, err := svc.Register(ctx, "张伟", "zhangwei@hospital.com", "secret123",
		identity.RoleFacilityAdmin, &fid, "13800000000", "药剂科")
	require.NoError(t, err)
	assert.NotZero(t, u.ID)
	assert.NotEqual(t, "secret123", u.Password)
	assert.Equal(t, StatusActive, u.Status)
	require.NotNil(t, u.FacilityID)
	assert.Equal(t, fid, *u.FacilityID)

	// 邮箱格式
	_, err = svc.Register(ctx, "李娜", "not-an-email", "secret123",
		identity.RoleFacilityUser, &fid, "", "")
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidParams))

	// 弱密码
	_, err = svc.Register(ctx, "李娜", "lina@hospital.com", "123",
		identity.RoleFacilityUser, &fid, "", "")
	assert.ErrorIs(t, err, ErrWeakPassword)

	// 非法角色
	_, err = svc.Register(ctx, "李娜", "lina@hospital.com", "secret123",
		identity.Role("auditor"), &fid, "", "")
	assert.ErrorIs(t, err, ErrInvalidRole)

	// 机构角色必须关联机构
	_, err = svc.Register(ctx, "李娜", "lina@hospital.com", "secret123",
		identity.RoleFacilityUser, nil, "", "")
	assert.ErrorIs(t, err, ErrFacilityRequired)

	// 仓库角色不应携带机构（强制清空）
	admin, err := svc.Register(ctx, "王强", "wangqiang@center.com", "secret123",
		identity.RoleWarehouseAdmin, &fid, "", "")
	require.NoError(t, err)
	assert.Nil(t, admin.FacilityID)

	// 重复邮箱
	_, err = svc.Register(ctx, "张伟", "zhangwei@hospital.com", "secret123",
		identity.RoleFacilityAdmin, &fid, "", "")
	assert.ErrorIs(t, err, ErrEmailDuplicate)
}

// TestService_Login 登录流程
func TestService_Login(t *testing.T) {
	repo := newMemUserRepo()
	svc := NewService(repo)
	ctx := context.Background()
	fid := uint(2)

	registered, err := svc.Register(ctx, "张伟", "zhangwei@hospital.com", "secret123",
		identity.RoleFacilityAdmin, &fid, "", "")
	require.NoError(t, err)

	// 正确密码
	u, err := svc.Login(ctx, "zhangwei@hospital.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, u.ID)

	// 错误密码
	_, err = svc.Login(ctx, "zhangwei@hospital.com", "wrong")
	assert.ErrorIs(t, err, apperrors.ErrInvalidPassword)

	// 不存在的用户
	_, err = svc.Login(ctx, "nobody@hospital.com", "secret123")
	assert.ErrorIs(t, err, ErrUserNotFound)

	// 停用账号
	registered.Status = StatusInactive
	_, err = svc.Login(ctx, "zhangwei@hospital.com", "secret123")
	assert.ErrorIs(t, err, ErrUserInactive)
}
