package requisition

import (
	"context"

	"github.com/xiebiao/medsupply/internal/domain/identity"
	"github.com/xiebiao/medsupply/internal/domain/requisition"
)

// ListUseCase 申领单列表用例
// 角色决定可见范围:
//   - super_admin / warehouse_admin:全部申领单
//   - facility_admin:本机构的申领单
//   - facility_user:自己提交的申领单
type ListUseCase struct {
	reqRepo requisition.Repository
}

// NewListUseCase 创建列表用例
func NewListUseCase(reqRepo requisition.Repository) *ListUseCase {
	return &ListUseCase{reqRepo: reqRepo}
}

// ListRequest 列表请求
type ListRequest struct {
	Principal identity.Principal
	Page      int
	PageSize  int
	Status    string
	Priority  string
}

// Execute 执行查询
func (uc *ListUseCase) Execute(ctx context.Context, req ListRequest) ([]*requisition.Requisition, int64, error) {
	params := requisition.ListParams{
		Page:     req.Page,
		PageSize: req.PageSize,
		Status:   req.Status,
		Priority: req.Priority,
	}

	switch req.Principal.Role {
	case identity.RoleFacilityAdmin:
		params.FacilityID = req.Principal.FacilityID
	case identity.RoleFacilityUser:
		params.FacilityID = req.Principal.FacilityID
		params.RequesterID = req.Principal.UserID
	}

	return uc.reqRepo.List(ctx, params)
}

// GetUseCase 申领单详情用例
type GetUseCase struct {
	reqRepo requisition.Repository
}

// NewGetUseCase 创建详情用例
func NewGetUseCase(reqRepo requisition.Repository) *GetUseCase {
	return &GetUseCase{reqRepo: reqRepo}
}

// Execute 查询详情
// 机构角色只能看本机构的单,普通用户只能看自己的单
func (uc *GetUseCase) Execute(ctx context.Context, p identity.Principal, id uint) (*requisition.Requisition, error) {
	r, err := uc.reqRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if p.Role.IsFacilityScoped() && !p.SameFacility(r.FacilityID) {
		return nil, requisition.ErrRequisitionNotFound
	}
	if p.Role == identity.RoleFacilityUser && r.RequesterID != p.UserID {
		return nil, requisition.ErrRequisitionNotFound
	}

	return r, nil
}
