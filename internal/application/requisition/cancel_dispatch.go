package requisition

import (
	"context"
	"fmt"
	"time"

	"github.com/xiebiao/medsupply/internal/application/event"
	"github.com/xiebiao/medsupply/internal/domain/dispatch"
	"github.com/xiebiao/medsupply/internal/domain/identity"
	"github.com/xiebiao/medsupply/internal/domain/inventory"
	"github.com/xiebiao/medsupply/internal/domain/requisition"
	apperrors "github.com/xiebiao/medsupply/pkg/errors"
	"github.com/xiebiao/medsupply/pkg/metrics"
)

// CancelDispatchUseCase 取消发运用例
// 设计说明：
// 取消把发运记录置为cancelled,申领单回退到approved。
// 默认不自动回补仓库库存:取消往往意味着货物已部分出库或在途，
// 自动回补会让账面与实物脱节。restock_on_cancel=true时
// 按各行审批量回补仓库并写入流水,适用于"发货前取消"的部署场景。
type CancelDispatchUseCase struct {
	reqRepo         requisition.Repository
	dispatchRepo    dispatch.Repository
	inventorySvc    inventory.Service
	txManager       TxManager
	publisher       event.Publisher
	restockOnCancel bool
}

// NewCancelDispatchUseCase 创建取消发运用例
func NewCancelDispatchUseCase(
	reqRepo requisition.Repository,
	dispatchRepo dispatch.Repository,
	inventorySvc inventory.Service,
	txManager TxManager,
	publisher event.Publisher,
	restockOnCancel bool,
) *CancelDispatchUseCase {
	return &CancelDispatchUseCase{
		reqRepo:         reqRepo,
		dispatchRepo:    dispatchRepo,
		inventorySvc:    inventorySvc,
		txManager:       txManager,
		publisher:       publisher,
		restockOnCancel: restockOnCancel,
	}
}

// CancelDispatchRequest 取消发运请求
type CancelDispatchRequest struct {
	Principal  identity.Principal
	DispatchID uint
}

// Execute 执行取消
func (uc *CancelDispatchUseCase) Execute(ctx context.Context, req CancelDispatchRequest) error {
	if err := identity.Authorize(req.Principal, identity.ActionCancelDispatch, identity.Scope{}); err != nil {
		return err
	}

	defer metrics.ObserveTransition("cancel_dispatch", time.Now())

	var cancelled *requisition.Requisition
	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		d, err := uc.dispatchRepo.FindByID(txCtx, req.DispatchID)
		if err != nil {
			return err
		}

		// 锁定申领单,与并发的确认送达串行化
		r, err := uc.reqRepo.FindByIDLock(txCtx, d.RequisitionID)
		if err != nil {
			return err
		}
		if !r.Status.CanTransitionTo(requisition.StatusApproved) {
			return apperrors.Newf(apperrors.ErrCodeInvalidTransition,
				"申领单#%d当前状态为%s,不允许取消发运", r.ID, r.Status)
		}

		if err := d.MarkCancelled(); err != nil {
			return err
		}
		if err := uc.dispatchRepo.Update(txCtx, d); err != nil {
			return err
		}

		// 可选回补:按审批量把库存加回仓库池
		if uc.restockOnCancel {
			for _, line := range r.Lines {
				if line.ApprovedQuantity == nil {
					continue
				}
				note := fmt.Sprintf("申领单#%d发运取消回补", r.ID)
				if _, err := uc.inventorySvc.CreditWarehouse(txCtx, line.ItemID,
					*line.ApprovedQuantity, req.Principal.UserID, note); err != nil {
					return err
				}
				metrics.RecordStockMovement(string(inventory.MovementAdd), "warehouse")
			}
		}

		if err := r.TransitionTo(requisition.StatusApproved); err != nil {
			return err
		}
		cancelled = r
		return uc.reqRepo.UpdateStatus(txCtx, r.ID, requisition.StatusApproved)
	})

	metrics.RecordTransition("cancel_dispatch", err == nil)
	if err != nil {
		return err
	}
	metrics.DecDispatchesInTransit()

	_ = uc.publisher.Publish(event.RouteDispatchCancelled, event.RequisitionEvent{
		RequisitionID: cancelled.ID,
		FacilityID:    cancelled.FacilityID,
		Status:        string(cancelled.Status),
		ActorID:       req.Principal.UserID,
		OccurredAt:    time.Now(),
	})
	return nil
}
