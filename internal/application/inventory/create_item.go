package inventory

import (
	"context"

	"github.com/xiebiao/medsupply/internal/domain/catalog"
	"github.com/xiebiao/medsupply/internal/domain/identity"
	"github.com/xiebiao/medsupply/internal/domain/inventory"
	apperrors "github.com/xiebiao/medsupply/pkg/errors"
	"github.com/xiebiao/medsupply/pkg/metrics"
)

// CreateItemUseCase 创建物资用例
// 设计说明：
// 一次创建两样东西(同事务):
//  1. 物资主数据(编码全局唯一)
//  2. 仓库池库存行(携带主数据副本)
//
// 初始库存>0时写入一条add流水(previous=0),保证
// "当前数量==流水delta之和"从第一天起成立。
type CreateItemUseCase struct {
	catalogRepo   catalog.Repository
	inventoryRepo inventory.Repository
	txManager     TxManager
}

// NewCreateItemUseCase 创建物资用例
func NewCreateItemUseCase(
	catalogRepo catalog.Repository,
	inventoryRepo inventory.Repository,
	txManager TxManager,
) *CreateItemUseCase {
	return &CreateItemUseCase{
		catalogRepo:   catalogRepo,
		inventoryRepo: inventoryRepo,
		txManager:     txManager,
	}
}

// CreateItemRequest 创建物资请求
type CreateItemRequest struct {
	Principal       identity.Principal
	Code            string
	Name            string
	Category        string
	Unit            string
	Description     string
	InitialQuantity int
	MinStockLevel   int
}

// CreateItemResponse 创建物资响应
type CreateItemResponse struct {
	ItemID   uint   `json:"item_id"`
	LineID   uint   `json:"line_id"`
	Code     string `json:"code"`
	Quantity int    `json:"quantity"`
}

// Execute 执行创建
func (uc *CreateItemUseCase) Execute(ctx context.Context, req CreateItemRequest) (*CreateItemResponse, error) {
	if err := identity.Authorize(req.Principal, identity.ActionManageInventory, identity.Scope{}); err != nil {
		return nil, err
	}
	// 仓库池物资只能由仓库/超管创建
	if req.Principal.Role.IsFacilityScoped() {
		return nil, apperrors.ErrForbidden
	}

	if req.Code == "" || req.Name == "" {
		return nil, apperrors.New(apperrors.ErrCodeInvalidParams, "物资编码和名称不能为空")
	}
	if req.InitialQuantity < 0 || req.MinStockLevel < 0 {
		return nil, apperrors.New(apperrors.ErrCodeInvalidParams, "数量不能为负数")
	}

	master := &catalog.ItemMaster{
		Code:        req.Code,
		Name:        req.Name,
		Category:    req.Category,
		Unit:        req.Unit,
		Description: req.Description,
	}
	line := &inventory.InventoryLine{
		Code:          req.Code,
		Name:          req.Name,
		Category:      req.Category,
		Unit:          req.Unit,
		Quantity:      req.InitialQuantity,
		MinStockLevel: req.MinStockLevel,
	}

	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		if err := uc.catalogRepo.Create(txCtx, master); err != nil {
			return err
		}

		line.ItemID = master.ID
		if err := uc.inventoryRepo.Create(txCtx, line); err != nil {
			return err
		}

		// 初始库存入账流水
		if req.InitialQuantity > 0 {
			m := inventory.NewMovement(line, inventory.MovementAdd, 0, req.InitialQuantity,
				req.Principal.UserID, "初始入库")
			if err := uc.inventoryRepo.CreateMovement(txCtx, m); err != nil {
				return err
			}
			metrics.RecordStockMovement(string(inventory.MovementAdd), "warehouse")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &CreateItemResponse{
		ItemID:   master.ID,
		LineID:   line.ID,
		Code:     master.Code,
		Quantity: line.Quantity,
	}, nil
}
