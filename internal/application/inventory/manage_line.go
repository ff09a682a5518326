package inventory

import (
	"context"

	"github.com/xiebiao/medsupply/internal/domain/catalog"
	"github.com/xiebiao/medsupply/internal/domain/identity"
	"github.com/xiebiao/medsupply/internal/domain/inventory"
	"github.com/xiebiao/medsupply/internal/domain/requisition"
	apperrors "github.com/xiebiao/medsupply/pkg/errors"
)

// UpdateItemUseCase 更新物资用例
// 同时更新主数据与库存行的描述字段/安全库存。
// 数量不在此处更新,数量只能通过调整或申领流转变动。
type UpdateItemUseCase struct {
	catalogRepo   catalog.Repository
	inventoryRepo inventory.Repository
	txManager     TxManager
}

// NewUpdateItemUseCase 创建更新用例
func NewUpdateItemUseCase(
	catalogRepo catalog.Repository,
	inventoryRepo inventory.Repository,
	txManager TxManager,
) *UpdateItemUseCase {
	return &UpdateItemUseCase{
		catalogRepo:   catalogRepo,
		inventoryRepo: inventoryRepo,
		txManager:     txManager,
	}
}

// UpdateItemRequest 更新请求
type UpdateItemRequest struct {
	Principal     identity.Principal
	LineID        uint
	Name          string
	Category      string
	Unit          string
	Description   string
	MinStockLevel int
}

// Execute 执行更新
func (uc *UpdateItemUseCase) Execute(ctx context.Context, req UpdateItemRequest) error {
	line, err := uc.inventoryRepo.FindByID(ctx, req.LineID)
	if err != nil {
		return err
	}
	if err := identity.Authorize(req.Principal, identity.ActionManageInventory,
		identity.Scope{FacilityID: line.FacilityID}); err != nil {
		return err
	}
	if line.IsWarehouse() && req.Principal.Role.IsFacilityScoped() {
		return apperrors.ErrForbidden
	}
	if req.MinStockLevel < 0 {
		return apperrors.New(apperrors.ErrCodeInvalidParams, "安全库存不能为负数")
	}

	return uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		// 仓库池行同时回写主数据,机构行只改本地副本
		if line.IsWarehouse() {
			master, err := uc.catalogRepo.FindByID(txCtx, line.ItemID)
			if err != nil {
				return err
			}
			master.Name = req.Name
			master.Category = req.Category
			master.Unit = req.Unit
			master.Description = req.Description
			if err := uc.catalogRepo.Update(txCtx, master); err != nil {
				return err
			}
		}

		line.Name = req.Name
		line.Category = req.Category
		line.Unit = req.Unit
		line.MinStockLevel = req.MinStockLevel
		return uc.inventoryRepo.Update(txCtx, line)
	})
}

// DeleteLineUseCase 删除库存行用例
// 被未完结(pending/dispatched)申领单引用的物资禁止删除,
// 否则审批/收货时会找不到库存行
type DeleteLineUseCase struct {
	inventoryRepo inventory.Repository
	reqRepo       requisition.Repository
	txManager     TxManager
}

// NewDeleteLineUseCase 创建删除用例
func NewDeleteLineUseCase(
	inventoryRepo inventory.Repository,
	reqRepo requisition.Repository,
	txManager TxManager,
) *DeleteLineUseCase {
	return &DeleteLineUseCase{
		inventoryRepo: inventoryRepo,
		reqRepo:       reqRepo,
		txManager:     txManager,
	}
}

// DeleteLineRequest 删除请求
type DeleteLineRequest struct {
	Principal identity.Principal
	LineID    uint
}

// Execute 执行删除
func (uc *DeleteLineUseCase) Execute(ctx context.Context, req DeleteLineRequest) error {
	line, err := uc.inventoryRepo.FindByID(ctx, req.LineID)
	if err != nil {
		return err
	}
	if err := identity.Authorize(req.Principal, identity.ActionDeleteInventory,
		identity.Scope{FacilityID: line.FacilityID}); err != nil {
		return err
	}

	return uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		inUse, err := uc.reqRepo.HasActiveReferences(txCtx, line.ItemID)
		if err != nil {
			return err
		}
		if inUse {
			return inventory.ErrInventoryInUse
		}
		return uc.inventoryRepo.Delete(txCtx, line.ID)
	})
}
