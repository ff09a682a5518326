package identity

import (
	apperrors "github.com/xiebiao/medsupply/pkg/errors"
)

// Action 需要授权的操作
// 设计说明：
// 每个会产生副作用的用例在执行任何变更前都必须调用Authorize，
// 权限规则集中在本文件的一张(角色,操作)表中，而不是散落在各个Handler里
// 用字符串比较role。资源范围（机构匹配、本人所有）用Scope谓词表达。
type Action string

const (
	ActionSubmitRequisition  Action = "requisition.submit"
	ActionApproveRequisition Action = "requisition.approve"
	ActionRejectRequisition  Action = "requisition.reject"
	ActionDeleteRequisition  Action = "requisition.delete"
	ActionConfirmDelivery    Action = "requisition.deliver"
	ActionCancelDispatch     Action = "dispatch.cancel"
	ActionManageInventory    Action = "inventory.manage"
	ActionAdjustStock        Action = "inventory.adjust"
	ActionDeleteInventory    Action = "inventory.delete"
	ActionManageFacility     Action = "facility.manage"
	ActionListUsers          Action = "user.list"
)

// permissions (角色,操作)能力表
// true表示该角色具备执行该操作的基础能力；
// 资源范围（是否本机构、是否本人）由Scope进一步约束。
var permissions = map[Role]map[Action]bool{
	RoleSuperAdmin: {
		ActionSubmitRequisition:  true,
		ActionApproveRequisition: true,
		ActionRejectRequisition:  true,
		ActionDeleteRequisition:  true,
		ActionConfirmDelivery:    true,
		ActionCancelDispatch:     true,
		ActionManageInventory:    true,
		ActionAdjustStock:        true,
		ActionDeleteInventory:    true,
		ActionManageFacility:     true,
		ActionListUsers:          true,
	},
	RoleWarehouseAdmin: {
		ActionSubmitRequisition:  true,
		ActionApproveRequisition: true,
		ActionRejectRequisition:  true,
		ActionCancelDispatch:     true,
		ActionManageInventory:    true,
		ActionAdjustStock:        true,
		ActionDeleteInventory:    true,
		ActionListUsers:          true,
	},
	RoleFacilityAdmin: {
		ActionSubmitRequisition: true,
		ActionDeleteRequisition: true,
		ActionConfirmDelivery:   true,
		ActionManageInventory:   true,
		ActionAdjustStock:       true,
		ActionListUsers:         true,
	},
	RoleFacilityUser: {
		ActionSubmitRequisition: true,
		ActionDeleteRequisition: true,
	},
}

// Scope 资源范围约束
// FacilityID：资源所属机构（机构角色必须匹配自己的机构）
// OwnerID：资源归属用户（facility_user只能操作自己的资源）
// 零值Scope表示无范围约束（如提交申领单）。
type Scope struct {
	FacilityID *uint
	OwnerID    uint
}

// Authorize 统一授权检查
// 返回nil表示允许；否则返回Forbidden错误，调用方不得执行任何变更。
//
// 检查顺序：
// 1. (角色,操作)能力表
// 2. 机构范围：机构角色操作的资源必须属于自己的机构
// 3. 归属范围：facility_user只能操作自己创建的资源
//
// super_admin跳过范围检查（跨机构全权限）。
func Authorize(p Principal, action Action, scope Scope) error {
	allowed, ok := permissions[p.Role]
	if !ok || !allowed[action] {
		return apperrors.ErrForbidden
	}

	if p.Role == RoleSuperAdmin {
		return nil
	}

	// 机构范围检查
	if p.Role.IsFacilityScoped() && scope.FacilityID != nil {
		if !p.SameFacility(*scope.FacilityID) {
			return apperrors.ErrForbidden
		}
	}

	// 归属范围检查：普通用户只能操作自己的资源
	if p.Role == RoleFacilityUser && scope.OwnerID != 0 && scope.OwnerID != p.UserID {
		return apperrors.ErrForbidden
	}

	return nil
}
