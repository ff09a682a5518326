package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/medsupply/internal/domain/inventory"
	apperrors "github.com/xiebiao/medsupply/pkg/errors"
)

// inventoryRepository 库存仓储实现(MySQL)
// 教学要点:
// 1. 带Lock后缀的方法使用SELECT ... FOR UPDATE,只在事务内有意义
// 2. 流水与数量更新在同一事务内写入(由调用方的TxManager保证)
type inventoryRepository struct {
	db *gorm.DB
}

// NewInventoryRepository 创建库存仓储
func NewInventoryRepository(db *gorm.DB) inventory.Repository {
	return &inventoryRepository{db: db}
}

func (r *inventoryRepository) Create(ctx context.Context, line *inventory.InventoryLine) error {
	model := toInventoryModel(line)
	if err := getDB(ctx, r.db).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return inventory.ErrLineDuplicate
		}
		return apperrors.Wrap(err, "创建库存行失败")
	}
	line.ID = model.ID
	line.CreatedAt = model.CreatedAt
	return nil
}

func (r *inventoryRepository) FindByID(ctx context.Context, id uint) (*inventory.InventoryLine, error) {
	var model InventoryModel
	err := getDB(ctx, r.db).First(&model, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, inventory.ErrInventoryNotFound
		}
		return nil, apperrors.Wrap(err, "查询库存行失败")
	}
	return toInventoryEntity(&model), nil
}

// FindByIDLock 按ID锁定库存行
// 人工调整走这里:不加锁的FindByID读到的数量可能已被并发事务改写,
// 基于旧值写绝对数量会丢失更新,流水的前后快照也对不上台账
func (r *inventoryRepository) FindByIDLock(ctx context.Context, id uint) (*inventory.InventoryLine, error) {
	var model InventoryModel
	err := getDB(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&model, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, inventory.ErrInventoryNotFound
		}
		return nil, apperrors.Wrap(err, "锁定库存行失败")
	}
	return toInventoryEntity(&model), nil
}

// FindWarehouseLineByItemLock 锁定仓库池库存行
// SELECT ... FOR UPDATE:并发扣减时后到的事务在此阻塞,
// 拿到锁后读到的是前一个事务提交后的数量,杜绝超卖
func (r *inventoryRepository) FindWarehouseLineByItemLock(ctx context.Context, itemID uint) (*inventory.InventoryLine, error) {
	var model InventoryModel
	err := getDB(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("item_id = ? AND facility_id IS NULL", itemID).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, inventory.ErrInventoryNotFound
		}
		return nil, apperrors.Wrap(err, "锁定仓库库存失败")
	}
	return toInventoryEntity(&model), nil
}

// FindFacilityLineByItemLock 锁定机构库存行
func (r *inventoryRepository) FindFacilityLineByItemLock(ctx context.Context, facilityID, itemID uint) (*inventory.InventoryLine, error) {
	var model InventoryModel
	err := getDB(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("item_id = ? AND facility_id = ?", itemID, facilityID).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, inventory.ErrInventoryNotFound
		}
		return nil, apperrors.Wrap(err, "锁定机构库存失败")
	}
	return toInventoryEntity(&model), nil
}

func (r *inventoryRepository) UpdateQuantity(ctx context.Context, lineID uint, quantity int) error {
	result := getDB(ctx, r.db).Model(&InventoryModel{}).Where("id = ?", lineID).
		Update("quantity", quantity)
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新库存数量失败")
	}
	if result.RowsAffected == 0 {
		return inventory.ErrInventoryNotFound
	}
	return nil
}

func (r *inventoryRepository) Update(ctx context.Context, line *inventory.InventoryLine) error {
	result := getDB(ctx, r.db).Model(&InventoryModel{}).Where("id = ?", line.ID).
		Updates(map[string]interface{}{
			"min_stock_level": line.MinStockLevel,
			"name":            line.Name,
			"category":        line.Category,
			"unit":            line.Unit,
		})
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新库存行失败")
	}
	if result.RowsAffected == 0 {
		return inventory.ErrInventoryNotFound
	}
	return nil
}

func (r *inventoryRepository) Delete(ctx context.Context, id uint) error {
	result := getDB(ctx, r.db).Delete(&InventoryModel{}, id)
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "删除库存行失败")
	}
	if result.RowsAffected == 0 {
		return inventory.ErrInventoryNotFound
	}
	return nil
}

func (r *inventoryRepository) List(ctx context.Context, params inventory.ListParams) ([]*inventory.InventoryLine, int64, error) {
	var models []InventoryModel
	var total int64

	query := getDB(ctx, r.db).Model(&InventoryModel{})
	if params.Warehouse {
		query = query.Where("facility_id IS NULL")
	} else if params.FacilityID != nil {
		query = query.Where("facility_id = ?", *params.FacilityID)
	}
	if params.Category != "" {
		query = query.Where("category = ?", params.Category)
	}
	if params.LowStock {
		query = query.Where("min_stock_level > 0 AND quantity < min_stock_level")
	}
	if params.Keyword != "" {
		query = query.Where("name LIKE ?", "%"+params.Keyword+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询库存总数失败")
	}

	offset := (params.Page - 1) * params.PageSize
	err := query.Order("name").Limit(params.PageSize).Offset(offset).Find(&models).Error
	if err != nil {
		return nil, 0, apperrors.Wrap(err, "查询库存列表失败")
	}

	lines := make([]*inventory.InventoryLine, len(models))
	for i := range models {
		lines[i] = toInventoryEntity(&models[i])
	}
	return lines, total, nil
}

// CreateMovement 写入流水(仅追加,不提供更新/删除)
func (r *inventoryRepository) CreateMovement(ctx context.Context, m *inventory.StockMovement) error {
	model := &StockMovementModel{
		LineID:     m.LineID,
		ItemID:     m.ItemID,
		FacilityID: m.FacilityID,
		Kind:       string(m.Kind),
		Delta:      m.Delta,
		Previous:   m.Previous,
		New:        m.New,
		ActorID:    m.ActorID,
		Note:       m.Note,
	}
	if err := getDB(ctx, r.db).Create(model).Error; err != nil {
		return apperrors.Wrap(err, "写入库存流水失败")
	}
	m.ID = model.ID
	m.CreatedAt = model.CreatedAt
	return nil
}

func (r *inventoryRepository) ListMovements(ctx context.Context, params inventory.MovementListParams) ([]*inventory.StockMovement, int64, error) {
	var models []StockMovementModel
	var total int64

	query := getDB(ctx, r.db).Model(&StockMovementModel{})
	if params.LineID != 0 {
		query = query.Where("line_id = ?", params.LineID)
	}
	if params.ItemID != 0 {
		query = query.Where("item_id = ?", params.ItemID)
	}
	if params.FacilityID != nil {
		query = query.Where("facility_id = ?", *params.FacilityID)
	}
	if params.Kind != "" {
		query = query.Where("kind = ?", string(params.Kind))
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询流水总数失败")
	}

	offset := (params.Page - 1) * params.PageSize
	err := query.Order("created_at DESC, id DESC").Limit(params.PageSize).Offset(offset).Find(&models).Error
	if err != nil {
		return nil, 0, apperrors.Wrap(err, "查询流水列表失败")
	}

	movements := make([]*inventory.StockMovement, len(models))
	for i := range models {
		movements[i] = toMovementEntity(&models[i])
	}
	return movements, total, nil
}

func (r *inventoryRepository) CountLowStock(ctx context.Context, facilityID *uint) (int64, error) {
	var count int64
	query := getDB(ctx, r.db).Model(&InventoryModel{}).
		Where("min_stock_level > 0 AND quantity < min_stock_level")
	if facilityID != nil {
		query = query.Where("facility_id = ?", *facilityID)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, apperrors.Wrap(err, "统计低库存失败")
	}
	return count, nil
}

// =========================================
// 辅助函数:模型转换
// =========================================

func toInventoryModel(line *inventory.InventoryLine) *InventoryModel {
	return &InventoryModel{
		ID:            line.ID,
		ItemID:        line.ItemID,
		FacilityID:    line.FacilityID,
		Code:          line.Code,
		Name:          line.Name,
		Category:      line.Category,
		Unit:          line.Unit,
		Quantity:      line.Quantity,
		MinStockLevel: line.MinStockLevel,
		CreatedAt:     line.CreatedAt,
		UpdatedAt:     line.UpdatedAt,
	}
}

func toInventoryEntity(model *InventoryModel) *inventory.InventoryLine {
	return &inventory.InventoryLine{
		ID:            model.ID,
		ItemID:        model.ItemID,
		FacilityID:    model.FacilityID,
		Code:          model.Code,
		Name:          model.Name,
		Category:      model.Category,
		Unit:          model.Unit,
		Quantity:      model.Quantity,
		MinStockLevel: model.MinStockLevel,
		CreatedAt:     model.CreatedAt,
		UpdatedAt:     model.UpdatedAt,
	}
}

func toMovementEntity(model *StockMovementModel) *inventory.StockMovement {
	return &inventory.StockMovement{
		ID:         model.ID,
		LineID:     model.LineID,
		ItemID:     model.ItemID,
		FacilityID: model.FacilityID,
		Kind:       inventory.MovementKind(model.Kind),
		Delta:      model.Delta,
		Previous:   model.Previous,
		New:        model.New,
		ActorID:    model.ActorID,
		Note:       model.Note,
		CreatedAt:  model.CreatedAt,
	}
}
