package catalog

import "context"

// Repository 物资主数据仓储接口
type Repository interface {
	Create(ctx context.Context, item *ItemMaster) error
	FindByID(ctx context.Context, id uint) (*ItemMaster, error)
	FindByCode(ctx context.Context, code string) (*ItemMaster, error)
	Update(ctx context.Context, item *ItemMaster) error
	Delete(ctx context.Context, id uint) error

	// ListCategories 列出所有已使用的分类（去重）
	ListCategories(ctx context.Context) ([]string, error)
}
