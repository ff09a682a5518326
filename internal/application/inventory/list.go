package inventory

import (
	"context"

	"github.com/xiebiao/medsupply/internal/domain/catalog"
	"github.com/xiebiao/medsupply/internal/domain/identity"
	"github.com/xiebiao/medsupply/internal/domain/inventory"
)

// ListUseCase 库存列表用例
// 机构角色只能看本机构库存与仓库池(仓库池对所有人可见,
// 申领前需要知道仓库有什么)
type ListUseCase struct {
	inventoryRepo inventory.Repository
}

// NewListUseCase 创建列表用例
func NewListUseCase(inventoryRepo inventory.Repository) *ListUseCase {
	return &ListUseCase{inventoryRepo: inventoryRepo}
}

// ListRequest 列表请求
type ListRequest struct {
	Principal  identity.Principal
	Page       int
	PageSize   int
	Warehouse  bool
	FacilityID *uint
	Category   string
	LowStock   bool
	Keyword    string
}

// Execute 执行查询
func (uc *ListUseCase) Execute(ctx context.Context, req ListRequest) ([]*inventory.InventoryLine, int64, error) {
	params := inventory.ListParams{
		Page:      req.Page,
		PageSize:  req.PageSize,
		Warehouse: req.Warehouse,
		Category:  req.Category,
		LowStock:  req.LowStock,
		Keyword:   req.Keyword,
	}

	if !req.Warehouse {
		if req.Principal.Role.IsFacilityScoped() {
			// 机构角色强制本机构
			params.FacilityID = req.Principal.FacilityID
		} else {
			params.FacilityID = req.FacilityID
		}
	}

	return uc.inventoryRepo.List(ctx, params)
}

// ListMovementsUseCase 库存流水查询用例
type ListMovementsUseCase struct {
	inventoryRepo inventory.Repository
}

// NewListMovementsUseCase 创建流水查询用例
func NewListMovementsUseCase(inventoryRepo inventory.Repository) *ListMovementsUseCase {
	return &ListMovementsUseCase{inventoryRepo: inventoryRepo}
}

// ListMovementsRequest 流水查询请求
type ListMovementsRequest struct {
	Principal identity.Principal
	Page      int
	PageSize  int
	LineID    uint
	ItemID    uint
	Kind      string
}

// Execute 执行查询
func (uc *ListMovementsUseCase) Execute(ctx context.Context, req ListMovementsRequest) ([]*inventory.StockMovement, int64, error) {
	params := inventory.MovementListParams{
		Page:     req.Page,
		PageSize: req.PageSize,
		LineID:   req.LineID,
		ItemID:   req.ItemID,
		Kind:     inventory.MovementKind(req.Kind),
	}

	// 机构角色只能看本机构的流水
	if req.Principal.Role.IsFacilityScoped() {
		params.FacilityID = req.Principal.FacilityID
	}

	return uc.inventoryRepo.ListMovements(ctx, params)
}

// ListCategoriesUseCase 分类列表用例
type ListCategoriesUseCase struct {
	catalogRepo catalog.Repository
}

// NewListCategoriesUseCase 创建分类列表用例
func NewListCategoriesUseCase(catalogRepo catalog.Repository) *ListCategoriesUseCase {
	return &ListCategoriesUseCase{catalogRepo: catalogRepo}
}

// Execute 执行查询
func (uc *ListCategoriesUseCase) Execute(ctx context.Context) ([]string, error) {
	return uc.catalogRepo.ListCategories(ctx)
}
