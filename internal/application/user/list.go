package user

import (
	"context"

	"github.com/xiebiao/medsupply/internal/domain/identity"
	"github.com/xiebiao/medsupply/internal/domain/user"
)

// ListUsersUseCase 用户列表用例
// 机构管理员只能看本机构的用户，仓库/超管可以看全部
type ListUsersUseCase struct {
	userRepo user.Repository
}

// NewListUsersUseCase 创建用户列表用例
func NewListUsersUseCase(userRepo user.Repository) *ListUsersUseCase {
	return &ListUsersUseCase{userRepo: userRepo}
}

// ListUsersRequest 用户列表请求
type ListUsersRequest struct {
	Principal identity.Principal
	Page      int
	PageSize  int
	Role      string
	Status    string
	Keyword   string
}

// Execute 执行查询
func (uc *ListUsersUseCase) Execute(ctx context.Context, req ListUsersRequest) ([]*user.User, int64, error) {
	if err := identity.Authorize(req.Principal, identity.ActionListUsers, identity.Scope{}); err != nil {
		return nil, 0, err
	}

	params := user.ListParams{
		Page:     req.Page,
		PageSize: req.PageSize,
		Role:     req.Role,
		Status:   req.Status,
		Keyword:  req.Keyword,
	}

	// 机构角色强制限定本机构
	if req.Principal.Role.IsFacilityScoped() {
		params.FacilityID = req.Principal.FacilityID
	}

	return uc.userRepo.List(ctx, params)
}
