package identity

// Role 系统角色
// 设计说明：
// 1. super_admin：超级管理员，跨机构全权限
// 2. warehouse_admin：中心仓库管理员，负责审批/驳回申领单、管理仓库库存
// 3. facility_admin：机构管理员，负责本机构库存与收货确认
// 4. facility_user：机构普通用户，只能发起和查看自己的申领单
type Role string

const (
	RoleSuperAdmin     Role = "super_admin"
	RoleWarehouseAdmin Role = "warehouse_admin"
	RoleFacilityAdmin  Role = "facility_admin"
	RoleFacilityUser   Role = "facility_user"
)

// Valid 判断角色是否合法
func (r Role) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleWarehouseAdmin, RoleFacilityAdmin, RoleFacilityUser:
		return true
	}
	return false
}

// IsFacilityScoped 判断角色是否绑定到某个机构
// 机构角色的申领单/库存操作必须落在自己的机构内
func (r Role) IsFacilityScoped() bool {
	return r == RoleFacilityAdmin || r == RoleFacilityUser
}

// Principal 当前操作者身份
// 由认证中间件从JWT Claims还原，贯穿整个请求生命周期。
// FacilityID对仓库/超管角色为nil。
type Principal struct {
	UserID     uint
	Role       Role
	FacilityID *uint
}

// SameFacility 判断操作者是否属于指定机构
func (p Principal) SameFacility(facilityID uint) bool {
	return p.FacilityID != nil && *p.FacilityID == facilityID
}
