package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/xiebiao/medsupply/internal/domain/facility"
	apperrors "github.com/xiebiao/medsupply/pkg/errors"
)

// facilityRepository 机构仓储实现(MySQL)
type facilityRepository struct {
	db *gorm.DB
}

// NewFacilityRepository 创建机构仓储
func NewFacilityRepository(db *gorm.DB) facility.Repository {
	return &facilityRepository{db: db}
}

func (r *facilityRepository) Create(ctx context.Context, f *facility.Facility) error {
	model := toFacilityModel(f)
	if err := getDB(ctx, r.db).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return facility.ErrNameDuplicate
		}
		return apperrors.Wrap(err, "创建机构失败")
	}
	f.ID = model.ID
	f.CreatedAt = model.CreatedAt
	return nil
}

func (r *facilityRepository) FindByID(ctx context.Context, id uint) (*facility.Facility, error) {
	var model FacilityModel
	err := getDB(ctx, r.db).First(&model, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, facility.ErrFacilityNotFound
		}
		return nil, apperrors.Wrap(err, "查询机构失败")
	}
	return toFacilityEntity(&model), nil
}

func (r *facilityRepository) Update(ctx context.Context, f *facility.Facility) error {
	result := getDB(ctx, r.db).Model(&FacilityModel{}).Where("id = ?", f.ID).
		Updates(map[string]interface{}{
			"name":           f.Name,
			"location":       f.Location,
			"type":           f.Type,
			"contact_person": f.ContactPerson,
			"phone":          f.Phone,
			"email":          f.Email,
			"address":        f.Address,
			"status":         string(f.Status),
		})
	if result.Error != nil {
		if isDuplicateError(result.Error) {
			return facility.ErrNameDuplicate
		}
		return apperrors.Wrap(result.Error, "更新机构失败")
	}
	if result.RowsAffected == 0 {
		return facility.ErrFacilityNotFound
	}
	return nil
}

func (r *facilityRepository) List(ctx context.Context, params facility.ListParams) ([]*facility.Facility, int64, error) {
	var models []FacilityModel
	var total int64

	query := getDB(ctx, r.db).Model(&FacilityModel{})
	if params.Type != "" {
		query = query.Where("type = ?", params.Type)
	}
	if params.Status != "" {
		query = query.Where("status = ?", params.Status)
	}
	if params.Keyword != "" {
		kw := "%" + params.Keyword + "%"
		query = query.Where("name LIKE ? OR location LIKE ?", kw, kw)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询机构总数失败")
	}

	offset := (params.Page - 1) * params.PageSize
	err := query.Order("created_at DESC").Limit(params.PageSize).Offset(offset).Find(&models).Error
	if err != nil {
		return nil, 0, apperrors.Wrap(err, "查询机构列表失败")
	}

	facilities := make([]*facility.Facility, len(models))
	for i := range models {
		facilities[i] = toFacilityEntity(&models[i])
	}
	return facilities, total, nil
}

func toFacilityModel(f *facility.Facility) *FacilityModel {
	return &FacilityModel{
		ID:            f.ID,
		Name:          f.Name,
		Location:      f.Location,
		Type:          f.Type,
		ContactPerson: f.ContactPerson,
		Phone:         f.Phone,
		Email:         f.Email,
		Address:       f.Address,
		Status:        string(f.Status),
		CreatedAt:     f.CreatedAt,
		UpdatedAt:     f.UpdatedAt,
	}
}

func toFacilityEntity(model *FacilityModel) *facility.Facility {
	return &facility.Facility{
		ID:            model.ID,
		Name:          model.Name,
		Location:      model.Location,
		Type:          model.Type,
		ContactPerson: model.ContactPerson,
		Phone:         model.Phone,
		Email:         model.Email,
		Address:       model.Address,
		Status:        facility.Status(model.Status),
		CreatedAt:     model.CreatedAt,
		UpdatedAt:     model.UpdatedAt,
	}
}
