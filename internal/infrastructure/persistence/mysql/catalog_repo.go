package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/xiebiao/medsupply/internal/domain/catalog"
	apperrors "github.com/xiebiao/medsupply/pkg/errors"
)

// catalogRepository 物资主数据仓储实现(MySQL)
type catalogRepository struct {
	db *gorm.DB
}

// NewCatalogRepository 创建物资主数据仓储
func NewCatalogRepository(db *gorm.DB) catalog.Repository {
	return &catalogRepository{db: db}
}

func (r *catalogRepository) Create(ctx context.Context, item *catalog.ItemMaster) error {
	model := toItemMasterModel(item)
	if err := getDB(ctx, r.db).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return catalog.ErrCodeDuplicate
		}
		return apperrors.Wrap(err, "创建物资主数据失败")
	}
	item.ID = model.ID
	item.CreatedAt = model.CreatedAt
	return nil
}

func (r *catalogRepository) FindByID(ctx context.Context, id uint) (*catalog.ItemMaster, error) {
	var model ItemMasterModel
	err := getDB(ctx, r.db).First(&model, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, catalog.ErrItemNotFound
		}
		return nil, apperrors.Wrap(err, "查询物资主数据失败")
	}
	return toItemMasterEntity(&model), nil
}

func (r *catalogRepository) FindByCode(ctx context.Context, code string) (*catalog.ItemMaster, error) {
	var model ItemMasterModel
	err := getDB(ctx, r.db).Where("code = ?", code).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, catalog.ErrItemNotFound
		}
		return nil, apperrors.Wrap(err, "查询物资主数据失败")
	}
	return toItemMasterEntity(&model), nil
}

func (r *catalogRepository) Update(ctx context.Context, item *catalog.ItemMaster) error {
	result := getDB(ctx, r.db).Model(&ItemMasterModel{}).Where("id = ?", item.ID).
		Updates(map[string]interface{}{
			"name":        item.Name,
			"category":    item.Category,
			"unit":        item.Unit,
			"description": item.Description,
		})
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新物资主数据失败")
	}
	if result.RowsAffected == 0 {
		return catalog.ErrItemNotFound
	}
	return nil
}

func (r *catalogRepository) Delete(ctx context.Context, id uint) error {
	result := getDB(ctx, r.db).Delete(&ItemMasterModel{}, id)
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "删除物资主数据失败")
	}
	if result.RowsAffected == 0 {
		return catalog.ErrItemNotFound
	}
	return nil
}

// ListCategories 列出所有已使用的分类（去重）
func (r *catalogRepository) ListCategories(ctx context.Context) ([]string, error) {
	var categories []string
	err := getDB(ctx, r.db).Model(&ItemMasterModel{}).
		Distinct("category").
		Where("category <> ''").
		Order("category").
		Pluck("category", &categories).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "查询分类列表失败")
	}
	return categories, nil
}

func toItemMasterModel(item *catalog.ItemMaster) *ItemMasterModel {
	return &ItemMasterModel{
		ID:          item.ID,
		Code:        item.Code,
		Name:        item.Name,
		Category:    item.Category,
		Unit:        item.Unit,
		Description: item.Description,
		CreatedAt:   item.CreatedAt,
		UpdatedAt:   item.UpdatedAt,
	}
}

func toItemMasterEntity(model *ItemMasterModel) *catalog.ItemMaster {
	return &catalog.ItemMaster{
		ID:          model.ID,
		Code:        model.Code,
		Name:        model.Name,
		Category:    model.Category,
		Unit:        model.Unit,
		Description: model.Description,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
}
