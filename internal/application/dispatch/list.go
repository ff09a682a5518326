package dispatch

import (
	"context"

	"github.com/xiebiao/medsupply/internal/domain/dispatch"
	"github.com/xiebiao/medsupply/internal/domain/identity"
)

// ListUseCase 发运列表用例
// 机构角色只能看发往本机构的发运记录
type ListUseCase struct {
	dispatchRepo dispatch.Repository
}

// NewListUseCase 创建发运列表用例
func NewListUseCase(dispatchRepo dispatch.Repository) *ListUseCase {
	return &ListUseCase{dispatchRepo: dispatchRepo}
}

// ListRequest 列表请求
type ListRequest struct {
	Principal identity.Principal
	Page      int
	PageSize  int
	Status    string
}

// Execute 执行查询
func (uc *ListUseCase) Execute(ctx context.Context, req ListRequest) ([]*dispatch.Dispatch, int64, error) {
	params := dispatch.ListParams{
		Page:     req.Page,
		PageSize: req.PageSize,
		Status:   req.Status,
	}
	if req.Principal.Role.IsFacilityScoped() {
		params.FacilityID = req.Principal.FacilityID
	}
	return uc.dispatchRepo.List(ctx, params)
}

// GetUseCase 发运详情用例
type GetUseCase struct {
	dispatchRepo dispatch.Repository
}

// NewGetUseCase 创建发运详情用例
func NewGetUseCase(dispatchRepo dispatch.Repository) *GetUseCase {
	return &GetUseCase{dispatchRepo: dispatchRepo}
}

// Execute 查询详情
func (uc *GetUseCase) Execute(ctx context.Context, p identity.Principal, id uint) (*dispatch.Dispatch, error) {
	d, err := uc.dispatchRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Role.IsFacilityScoped() && !p.SameFacility(d.FacilityID) {
		return nil, dispatch.ErrDispatchNotFound
	}
	return d, nil
}
