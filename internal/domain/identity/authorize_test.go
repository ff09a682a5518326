package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "github.com/xiebiao/medsupply/pkg/errors"
)

func facilityPrincipal(role Role, facilityID uint) Principal {
	fid := facilityID
	return Principal{UserID: 1, Role: role, FacilityID: &fid}
}

// TestAuthorize_Capability (角色,操作)能力表
func TestAuthorize_Capability(t *testing.T) {
	warehouseAdmin := Principal{UserID: 1, Role: RoleWarehouseAdmin}
	facilityUser := facilityPrincipal(RoleFacilityUser, 2)

	// 仓库管理员可以审批，普通用户不行
	assert.NoError(t, Authorize(warehouseAdmin, ActionApproveRequisition, Scope{}))
	assert.ErrorIs(t, Authorize(facilityUser, ActionApproveRequisition, Scope{}),
		apperrors.ErrForbidden)

	// 机构管理员可以确认收货，仓库管理员不行（收货是机构侧动作）
	facilityAdmin := facilityPrincipal(RoleFacilityAdmin, 2)
	assert.NoError(t, Authorize(facilityAdmin, ActionConfirmDelivery, Scope{}))
	assert.ErrorIs(t, Authorize(warehouseAdmin, ActionConfirmDelivery, Scope{}),
		apperrors.ErrForbidden)

	// 所有角色都可以提交申领单
	for _, role := range []Role{RoleSuperAdmin, RoleWarehouseAdmin, RoleFacilityAdmin, RoleFacilityUser} {
		p := Principal{UserID: 1, Role: role}
		assert.NoError(t, Authorize(p, ActionSubmitRequisition, Scope{}), "role=%s", role)
	}

	// 未知角色一律拒绝
	unknown := Principal{UserID: 1, Role: Role("auditor")}
	assert.ErrorIs(t, Authorize(unknown, ActionSubmitRequisition, Scope{}),
		apperrors.ErrForbidden)
}

// TestAuthorize_FacilityScope 机构范围：机构角色只能操作本机构资源
func TestAuthorize_FacilityScope(t *testing.T) {
	facilityAdmin := facilityPrincipal(RoleFacilityAdmin, 2)

	own := uint(2)
	other := uint(3)

	assert.NoError(t, Authorize(facilityAdmin, ActionConfirmDelivery, Scope{FacilityID: &own}))
	assert.ErrorIs(t, Authorize(facilityAdmin, ActionConfirmDelivery, Scope{FacilityID: &other}),
		apperrors.ErrForbidden)

	// 超管跳过范围检查
	super := Principal{UserID: 1, Role: RoleSuperAdmin}
	assert.NoError(t, Authorize(super, ActionConfirmDelivery, Scope{FacilityID: &other}))
}

// TestAuthorize_OwnerScope 归属范围：普通用户只能操作自己的资源
func TestAuthorize_OwnerScope(t *testing.T) {
	fid := uint(2)
	facilityUser := Principal{UserID: 10, Role: RoleFacilityUser, FacilityID: &fid}

	// 本人的单
	assert.NoError(t, Authorize(facilityUser, ActionDeleteRequisition,
		Scope{FacilityID: &fid, OwnerID: 10}))

	// 同机构别人的单
	assert.ErrorIs(t, Authorize(facilityUser, ActionDeleteRequisition,
		Scope{FacilityID: &fid, OwnerID: 11}), apperrors.ErrForbidden)

	// 机构管理员可以删本机构任何人的单
	facilityAdmin := Principal{UserID: 20, Role: RoleFacilityAdmin, FacilityID: &fid}
	assert.NoError(t, Authorize(facilityAdmin, ActionDeleteRequisition,
		Scope{FacilityID: &fid, OwnerID: 11}))
}

// TestRole_IsFacilityScoped 角色的机构绑定属性
func TestRole_IsFacilityScoped(t *testing.T) {
	assert.False(t, RoleSuperAdmin.IsFacilityScoped())
	assert.False(t, RoleWarehouseAdmin.IsFacilityScoped())
	assert.True(t, RoleFacilityAdmin.IsFacilityScoped())
	assert.True(t, RoleFacilityUser.IsFacilityScoped())
}
