package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/xiebiao/medsupply/internal/domain/dispatch"
	apperrors "github.com/xiebiao/medsupply/pkg/errors"
)

// dispatchRepository 发运仓储实现(MySQL)
type dispatchRepository struct {
	db *gorm.DB
}

// NewDispatchRepository 创建发运仓储
func NewDispatchRepository(db *gorm.DB) dispatch.Repository {
	return &dispatchRepository{db: db}
}

// Create 创建发运记录
// requisition_id唯一索引保证1:1,冲突转换为业务错误(Conflict)
func (r *dispatchRepository) Create(ctx context.Context, d *dispatch.Dispatch) error {
	model := toDispatchModel(d)
	if err := getDB(ctx, r.db).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return dispatch.ErrDuplicateDispatch
		}
		return apperrors.Wrap(err, "创建发运记录失败")
	}
	d.ID = model.ID
	d.CreatedAt = model.CreatedAt
	return nil
}

func (r *dispatchRepository) FindByID(ctx context.Context, id uint) (*dispatch.Dispatch, error) {
	var model DispatchModel
	err := getDB(ctx, r.db).First(&model, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, dispatch.ErrDispatchNotFound
		}
		return nil, apperrors.Wrap(err, "查询发运记录失败")
	}
	return toDispatchEntity(&model), nil
}

func (r *dispatchRepository) FindByRequisitionID(ctx context.Context, requisitionID uint) (*dispatch.Dispatch, error) {
	var model DispatchModel
	err := getDB(ctx, r.db).Where("requisition_id = ?", requisitionID).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, dispatch.ErrDispatchNotFound
		}
		return nil, apperrors.Wrap(err, "查询发运记录失败")
	}
	return toDispatchEntity(&model), nil
}

// Update 更新发运状态与收货信息
func (r *dispatchRepository) Update(ctx context.Context, d *dispatch.Dispatch) error {
	result := getDB(ctx, r.db).Model(&DispatchModel{}).Where("id = ?", d.ID).
		Updates(map[string]interface{}{
			"status":       string(d.Status),
			"received_by":  d.ReceivedBy,
			"delivered_at": d.DeliveredAt,
		})
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新发运记录失败")
	}
	if result.RowsAffected == 0 {
		return dispatch.ErrDispatchNotFound
	}
	return nil
}

func (r *dispatchRepository) List(ctx context.Context, params dispatch.ListParams) ([]*dispatch.Dispatch, int64, error) {
	var models []DispatchModel
	var total int64

	query := getDB(ctx, r.db).Model(&DispatchModel{})
	if params.Status != "" {
		query = query.Where("status = ?", params.Status)
	}
	if params.FacilityID != nil {
		query = query.Where("facility_id = ?", *params.FacilityID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询发运总数失败")
	}

	offset := (params.Page - 1) * params.PageSize
	err := query.Order("created_at DESC").Limit(params.PageSize).Offset(offset).Find(&models).Error
	if err != nil {
		return nil, 0, apperrors.Wrap(err, "查询发运列表失败")
	}

	dispatches := make([]*dispatch.Dispatch, len(models))
	for i := range models {
		dispatches[i] = toDispatchEntity(&models[i])
	}
	return dispatches, total, nil
}

func (r *dispatchRepository) CountInTransit(ctx context.Context, facilityID *uint) (int64, error) {
	var count int64
	query := getDB(ctx, r.db).Model(&DispatchModel{}).
		Where("status = ?", string(dispatch.StatusInTransit))
	if facilityID != nil {
		query = query.Where("facility_id = ?", *facilityID)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, apperrors.Wrap(err, "统计在途发运失败")
	}
	return count, nil
}

func toDispatchModel(d *dispatch.Dispatch) *DispatchModel {
	return &DispatchModel{
		ID:             d.ID,
		RequisitionID:  d.RequisitionID,
		FacilityID:     d.FacilityID,
		Status:         string(d.Status),
		DispatchedBy:   d.DispatchedBy,
		ReceivedBy:     d.ReceivedBy,
		TrackingNumber: d.TrackingNumber,
		DispatchedAt:   d.DispatchedAt,
		DeliveredAt:    d.DeliveredAt,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
}

func toDispatchEntity(model *DispatchModel) *dispatch.Dispatch {
	return &dispatch.Dispatch{
		ID:             model.ID,
		RequisitionID:  model.RequisitionID,
		FacilityID:     model.FacilityID,
		Status:         dispatch.Status(model.Status),
		DispatchedBy:   model.DispatchedBy,
		ReceivedBy:     model.ReceivedBy,
		TrackingNumber: model.TrackingNumber,
		DispatchedAt:   model.DispatchedAt,
		DeliveredAt:    model.DeliveredAt,
		CreatedAt:      model.CreatedAt,
		UpdatedAt:      model.UpdatedAt,
	}
}
