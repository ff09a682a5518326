package facility

import (
	"context"

	"github.com/xiebiao/medsupply/internal/domain/facility"
	"github.com/xiebiao/medsupply/internal/domain/identity"
	apperrors "github.com/xiebiao/medsupply/pkg/errors"
)

// ManageUseCase 机构管理用例(创建/更新/查询)
type ManageUseCase struct {
	facilityRepo facility.Repository
}

// NewManageUseCase 创建机构管理用例
func NewManageUseCase(facilityRepo facility.Repository) *ManageUseCase {
	return &ManageUseCase{facilityRepo: facilityRepo}
}

// CreateFacilityRequest 创建机构请求
type CreateFacilityRequest struct {
	Principal     identity.Principal
	Name          string
	Location      string
	Type          string
	ContactPerson string
	Phone         string
	Email         string
	Address       string
}

// Create 创建机构
func (uc *ManageUseCase) Create(ctx context.Context, req CreateFacilityRequest) (*facility.Facility, error) {
	if err := identity.Authorize(req.Principal, identity.ActionManageFacility, identity.Scope{}); err != nil {
		return nil, err
	}
	if req.Name == "" {
		return nil, apperrors.New(apperrors.ErrCodeInvalidParams, "机构名称不能为空")
	}

	f := &facility.Facility{
		Name:          req.Name,
		Location:      req.Location,
		Type:          req.Type,
		ContactPerson: req.ContactPerson,
		Phone:         req.Phone,
		Email:         req.Email,
		Address:       req.Address,
		Status:        facility.StatusActive,
	}
	if err := uc.facilityRepo.Create(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

// UpdateFacilityRequest 更新机构请求
type UpdateFacilityRequest struct {
	Principal     identity.Principal
	FacilityID    uint
	Name          string
	Location      string
	Type          string
	ContactPerson string
	Phone         string
	Email         string
	Address       string
	Status        string
}

// Update 更新机构
func (uc *ManageUseCase) Update(ctx context.Context, req UpdateFacilityRequest) error {
	if err := identity.Authorize(req.Principal, identity.ActionManageFacility, identity.Scope{}); err != nil {
		return err
	}

	f, err := uc.facilityRepo.FindByID(ctx, req.FacilityID)
	if err != nil {
		return err
	}

	f.Name = req.Name
	f.Location = req.Location
	f.Type = req.Type
	f.ContactPerson = req.ContactPerson
	f.Phone = req.Phone
	f.Email = req.Email
	f.Address = req.Address
	if req.Status != "" {
		f.Status = facility.Status(req.Status)
	}
	return uc.facilityRepo.Update(ctx, f)
}

// Get 查询机构详情
func (uc *ManageUseCase) Get(ctx context.Context, id uint) (*facility.Facility, error) {
	return uc.facilityRepo.FindByID(ctx, id)
}

// ListFacilitiesRequest 机构列表请求
type ListFacilitiesRequest struct {
	Page     int
	PageSize int
	Type     string
	Status   string
	Keyword  string
}

// List 查询机构列表(所有已登录用户可见,申领时需要选择机构)
func (uc *ManageUseCase) List(ctx context.Context, req ListFacilitiesRequest) ([]*facility.Facility, int64, error) {
	return uc.facilityRepo.List(ctx, facility.ListParams{
		Page:     req.Page,
		PageSize: req.PageSize,
		Type:     req.Type,
		Status:   req.Status,
		Keyword:  req.Keyword,
	})
}
