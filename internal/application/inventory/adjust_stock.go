package inventory

import (
	"context"
	"time"

	"github.com/xiebiao/medsupply/internal/application/event"
	"github.com/xiebiao/medsupply/internal/domain/identity"
	"github.com/xiebiao/medsupply/internal/domain/inventory"
	apperrors "github.com/xiebiao/medsupply/pkg/errors"
	"github.com/xiebiao/medsupply/pkg/metrics"
)

// AdjustStockUseCase 人工库存调整用例
// 设计说明：
// 入库(add)、盘亏(subtract,减到0为止)、盘点覆盖(set)。
// 与申领发货的硬失败扣减不同,人工调整允许subtract钳制:
// 盘亏登记的语义是"照实际改账",而不是"校验可行性"。
// 调整后低于安全库存时发布低库存预警事件。
type AdjustStockUseCase struct {
	inventoryRepo inventory.Repository
	inventorySvc  inventory.Service
	txManager     TxManager
	publisher     event.Publisher
}

// NewAdjustStockUseCase 创建调整用例
func NewAdjustStockUseCase(
	inventoryRepo inventory.Repository,
	inventorySvc inventory.Service,
	txManager TxManager,
	publisher event.Publisher,
) *AdjustStockUseCase {
	return &AdjustStockUseCase{
		inventoryRepo: inventoryRepo,
		inventorySvc:  inventorySvc,
		txManager:     txManager,
		publisher:     publisher,
	}
}

// AdjustStockRequest 调整请求
type AdjustStockRequest struct {
	Principal identity.Principal
	LineID    uint
	Kind      string // add | subtract | set
	Amount    int
	Note      string
}

// AdjustStockResponse 调整响应
type AdjustStockResponse struct {
	LineID   uint `json:"line_id"`
	Previous int  `json:"previous"`
	Quantity int  `json:"quantity"`
}

// Execute 执行调整
func (uc *AdjustStockUseCase) Execute(ctx context.Context, req AdjustStockRequest) (*AdjustStockResponse, error) {
	// 先查出库存行,确定机构范围再鉴权
	target, err := uc.inventoryRepo.FindByID(ctx, req.LineID)
	if err != nil {
		return nil, err
	}
	if err := identity.Authorize(req.Principal, identity.ActionAdjustStock,
		identity.Scope{FacilityID: target.FacilityID}); err != nil {
		return nil, err
	}
	// 机构角色不能调整仓库池
	if target.IsWarehouse() && req.Principal.Role.IsFacilityScoped() {
		return nil, apperrors.ErrForbidden
	}

	var previous int
	var adjusted *inventory.InventoryLine
	err = uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		// 锁内重读数量:鉴权用的无锁读取可能已经过期
		locked, err := uc.inventoryRepo.FindByIDLock(txCtx, req.LineID)
		if err != nil {
			return err
		}
		previous = locked.Quantity

		line, err := uc.inventorySvc.Adjust(txCtx, req.LineID,
			inventory.MovementKind(req.Kind), req.Amount, req.Principal.UserID, req.Note)
		if err != nil {
			return err
		}
		adjusted = line
		return nil
	})
	if err != nil {
		return nil, err
	}

	location := "facility"
	if adjusted.IsWarehouse() {
		location = "warehouse"
	}
	metrics.RecordStockMovement(req.Kind, location)

	// 低库存预警
	if adjusted.IsLowStock() {
		_ = uc.publisher.Publish(event.RouteLowStockAlert, event.LowStockEvent{
			LineID:        adjusted.ID,
			ItemID:        adjusted.ItemID,
			FacilityID:    adjusted.FacilityID,
			ItemName:      adjusted.Name,
			Quantity:      adjusted.Quantity,
			MinStockLevel: adjusted.MinStockLevel,
			OccurredAt:    time.Now(),
		})
	}

	return &AdjustStockResponse{
		LineID:   adjusted.ID,
		Previous: previous,
		Quantity: adjusted.Quantity,
	}, nil
}
