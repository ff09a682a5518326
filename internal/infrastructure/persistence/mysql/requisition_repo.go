package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/medsupply/internal/domain/requisition"
	apperrors "github.com/xiebiao/medsupply/pkg/errors"
)

// requisitionRepository 申领单仓储实现(MySQL)
// 教学要点:
// 1. Requisition和RequisitionItem是聚合关系,必须一起保存
// 2. 查询时使用Preload预加载明细,避免N+1问题
// 3. FindByIDLock是并发审批防线:锁定主行后重查状态
type requisitionRepository struct {
	db *gorm.DB
}

// NewRequisitionRepository 创建申领单仓储
func NewRequisitionRepository(db *gorm.DB) requisition.Repository {
	return &requisitionRepository{db: db}
}

// Create 创建申领单及明细行
// GORM通过foreignKey自动保存关联的Items
func (r *requisitionRepository) Create(ctx context.Context, req *requisition.Requisition) error {
	model := toRequisitionModel(req)

	if err := getDB(ctx, r.db).Create(model).Error; err != nil {
		return apperrors.Wrap(err, "创建申领单失败")
	}

	// 回填自增ID
	req.ID = model.ID
	req.CreatedAt = model.CreatedAt
	for i := range req.Lines {
		req.Lines[i].ID = model.Items[i].ID
		req.Lines[i].RequisitionID = model.ID
	}
	return nil
}

func (r *requisitionRepository) FindByID(ctx context.Context, id uint) (*requisition.Requisition, error) {
	var model RequisitionModel
	err := getDB(ctx, r.db).Preload("Items").First(&model, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, requisition.ErrRequisitionNotFound
		}
		return nil, apperrors.Wrap(err, "查询申领单失败")
	}
	return toRequisitionEntity(&model), nil
}

// FindByIDLock 锁定申领单行(SELECT ... FOR UPDATE)
// 并发审批场景:两个审批事务串行化,后到者重查状态时看到
// dispatched,状态机拒绝迁移,仓库只扣减一次
func (r *requisitionRepository) FindByIDLock(ctx context.Context, id uint) (*requisition.Requisition, error) {
	var model RequisitionModel
	err := getDB(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Items").
		First(&model, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, requisition.ErrRequisitionNotFound
		}
		return nil, apperrors.Wrap(err, "锁定申领单失败")
	}
	return toRequisitionEntity(&model), nil
}

// SaveApproval 写入审批结果
// 更新主行状态/审批人/审批时间,并逐行写入审批量
func (r *requisitionRepository) SaveApproval(ctx context.Context, req *requisition.Requisition) error {
	db := getDB(ctx, r.db)

	result := db.Model(&RequisitionModel{}).Where("id = ?", req.ID).
		Updates(map[string]interface{}{
			"status":      string(req.Status),
			"approved_by": req.ApprovedBy,
			"approved_at": req.ApprovedAt,
		})
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新申领单失败")
	}
	if result.RowsAffected == 0 {
		return requisition.ErrRequisitionNotFound
	}

	for _, line := range req.Lines {
		err := db.Model(&RequisitionItemModel{}).Where("id = ?", line.ID).
			Update("approved_quantity", line.ApprovedQuantity).Error
		if err != nil {
			return apperrors.Wrap(err, "更新申领明细失败")
		}
	}
	return nil
}

// SaveDelivery 写入送达结果
func (r *requisitionRepository) SaveDelivery(ctx context.Context, req *requisition.Requisition) error {
	db := getDB(ctx, r.db)

	result := db.Model(&RequisitionModel{}).Where("id = ?", req.ID).
		Updates(map[string]interface{}{
			"status":       string(req.Status),
			"delivered_at": req.DeliveredAt,
		})
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新申领单失败")
	}
	if result.RowsAffected == 0 {
		return requisition.ErrRequisitionNotFound
	}

	for _, line := range req.Lines {
		err := db.Model(&RequisitionItemModel{}).Where("id = ?", line.ID).
			Update("delivered_quantity", line.DeliveredQuantity).Error
		if err != nil {
			return apperrors.Wrap(err, "更新申领明细失败")
		}
	}
	return nil
}

// UpdateStatus 仅更新状态(驳回、发运取消回退)
func (r *requisitionRepository) UpdateStatus(ctx context.Context, id uint, status requisition.Status) error {
	result := getDB(ctx, r.db).Model(&RequisitionModel{}).Where("id = ?", id).
		Update("status", string(status))
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新申领单状态失败")
	}
	if result.RowsAffected == 0 {
		return requisition.ErrRequisitionNotFound
	}
	return nil
}

// Delete 删除申领单(明细行由外键级联删除)
func (r *requisitionRepository) Delete(ctx context.Context, id uint) error {
	db := getDB(ctx, r.db)

	// AutoMigrate环境下外键约束可能缺失,显式删除明细兜底
	if err := db.Where("requisition_id = ?", id).Delete(&RequisitionItemModel{}).Error; err != nil {
		return apperrors.Wrap(err, "删除申领明细失败")
	}

	result := db.Delete(&RequisitionModel{}, id)
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "删除申领单失败")
	}
	if result.RowsAffected == 0 {
		return requisition.ErrRequisitionNotFound
	}
	return nil
}

func (r *requisitionRepository) List(ctx context.Context, params requisition.ListParams) ([]*requisition.Requisition, int64, error) {
	var models []RequisitionModel
	var total int64

	query := getDB(ctx, r.db).Model(&RequisitionModel{})
	if params.Status != "" {
		query = query.Where("status = ?", params.Status)
	}
	if params.Priority != "" {
		query = query.Where("priority = ?", params.Priority)
	}
	if params.FacilityID != nil {
		query = query.Where("facility_id = ?", *params.FacilityID)
	}
	if params.RequesterID != 0 {
		query = query.Where("requester_id = ?", params.RequesterID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询申领单总数失败")
	}

	offset := (params.Page - 1) * params.PageSize
	err := query.Preload("Items").
		Order("created_at DESC").
		Limit(params.PageSize).
		Offset(offset).
		Find(&models).Error
	if err != nil {
		return nil, 0, apperrors.Wrap(err, "查询申领单列表失败")
	}

	reqs := make([]*requisition.Requisition, len(models))
	for i := range models {
		reqs[i] = toRequisitionEntity(&models[i])
	}
	return reqs, total, nil
}

// CountByStatus 按状态统计,用于仪表盘
func (r *requisitionRepository) CountByStatus(ctx context.Context, facilityID *uint) (map[requisition.Status]int64, error) {
	type row struct {
		Status string
		Count  int64
	}
	var rows []row

	query := getDB(ctx, r.db).Model(&RequisitionModel{}).
		Select("status, COUNT(*) AS count").
		Group("status")
	if facilityID != nil {
		query = query.Where("facility_id = ?", *facilityID)
	}
	if err := query.Scan(&rows).Error; err != nil {
		return nil, apperrors.Wrap(err, "统计申领单失败")
	}

	counts := make(map[requisition.Status]int64, len(rows))
	for _, r := range rows {
		counts[requisition.Status(r.Status)] = r.Count
	}
	return counts, nil
}

// HasActiveReferences 某物资是否被未完结申领单引用
// 未完结 = pending/approved/dispatched:这三个状态的数量流转尚未结束
// (approved出现在发运取消之后,该单仍引用物资)
func (r *requisitionRepository) HasActiveReferences(ctx context.Context, itemID uint) (bool, error) {
	var count int64
	err := getDB(ctx, r.db).Model(&RequisitionItemModel{}).
		Joins("JOIN requisitions ON requisitions.id = requisition_items.requisition_id").
		Where("requisition_items.item_id = ?", itemID).
		Where("requisitions.status IN ?", []string{
			string(requisition.StatusPending),
			string(requisition.StatusApproved),
			string(requisition.StatusDispatched),
		}).
		Count(&count).Error
	if err != nil {
		return false, apperrors.Wrap(err, "查询申领单引用失败")
	}
	return count > 0, nil
}

// =========================================
// 辅助函数:模型转换
// =========================================

func toRequisitionModel(req *requisition.Requisition) *RequisitionModel {
	items := make([]RequisitionItemModel, len(req.Lines))
	for i, line := range req.Lines {
		items[i] = RequisitionItemModel{
			ID:                line.ID,
			RequisitionID:     line.RequisitionID,
			ItemID:            line.ItemID,
			RequestedQuantity: line.RequestedQuantity,
			ApprovedQuantity:  line.ApprovedQuantity,
			DeliveredQuantity: line.DeliveredQuantity,
			Priority:          string(line.Priority),
		}
	}

	return &RequisitionModel{
		ID:          req.ID,
		RequesterID: req.RequesterID,
		FacilityID:  req.FacilityID,
		Status:      string(req.Status),
		Priority:    string(req.Priority),
		Remarks:     req.Remarks,
		Items:       items,
		ApprovedBy:  req.ApprovedBy,
		ApprovedAt:  req.ApprovedAt,
		DeliveredAt: req.DeliveredAt,
		CreatedAt:   req.CreatedAt,
		UpdatedAt:   req.UpdatedAt,
	}
}

func toRequisitionEntity(model *RequisitionModel) *requisition.Requisition {
	lines := make([]*requisition.Line, len(model.Items))
	for i, item := range model.Items {
		lines[i] = &requisition.Line{
			ID:                item.ID,
			RequisitionID:     item.RequisitionID,
			ItemID:            item.ItemID,
			RequestedQuantity: item.RequestedQuantity,
			ApprovedQuantity:  item.ApprovedQuantity,
			DeliveredQuantity: item.DeliveredQuantity,
			Priority:          requisition.Priority(item.Priority),
		}
	}

	return &requisition.Requisition{
		ID:          model.ID,
		RequesterID: model.RequesterID,
		FacilityID:  model.FacilityID,
		Status:      requisition.Status(model.Status),
		Priority:    requisition.Priority(model.Priority),
		Remarks:     model.Remarks,
		Lines:       lines,
		ApprovedBy:  model.ApprovedBy,
		ApprovedAt:  model.ApprovedAt,
		DeliveredAt: model.DeliveredAt,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
}
