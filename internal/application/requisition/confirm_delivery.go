package requisition

import (
	"context"
	"fmt"
	"time"

	"github.com/xiebiao/medsupply/internal/application/event"
	"github.com/xiebiao/medsupply/internal/domain/catalog"
	"github.com/xiebiao/medsupply/internal/domain/dispatch"
	"github.com/xiebiao/medsupply/internal/domain/identity"
	"github.com/xiebiao/medsupply/internal/domain/inventory"
	"github.com/xiebiao/medsupply/internal/domain/requisition"
	apperrors "github.com/xiebiao/medsupply/pkg/errors"
	"github.com/xiebiao/medsupply/pkg/metrics"
)

// ConfirmDeliveryUseCase 确认送达用例
// 设计说明：
// 收货方在一个事务内完成:
//  1. 锁定申领单并重查状态(必须是dispatched)
//  2. 写入各行送达量(送达量≤审批量,允许短交)
//  3. 逐行入账机构库存(机构行不存在时按主数据副本自动建行)
//  4. 发运记录 in_transit → delivered
//  5. 申领单 dispatched → delivered
//
// 短交(送达量<审批量)不回冲仓库:差额留在流水里由人工对账处理。
type ConfirmDeliveryUseCase struct {
	reqRepo      requisition.Repository
	dispatchRepo dispatch.Repository
	catalogRepo  catalog.Repository
	inventorySvc inventory.Service
	txManager    TxManager
	publisher    event.Publisher
}

// NewConfirmDeliveryUseCase 创建确认送达用例
func NewConfirmDeliveryUseCase(
	reqRepo requisition.Repository,
	dispatchRepo dispatch.Repository,
	catalogRepo catalog.Repository,
	inventorySvc inventory.Service,
	txManager TxManager,
	publisher event.Publisher,
) *ConfirmDeliveryUseCase {
	return &ConfirmDeliveryUseCase{
		reqRepo:      reqRepo,
		dispatchRepo: dispatchRepo,
		catalogRepo:  catalogRepo,
		inventorySvc: inventorySvc,
		txManager:    txManager,
		publisher:    publisher,
	}
}

// DeliveryLine 送达明细输入
type DeliveryLine struct {
	LineID            uint
	DeliveredQuantity int
}

// ConfirmDeliveryRequest 确认送达请求
type ConfirmDeliveryRequest struct {
	Principal     identity.Principal
	RequisitionID uint
	Lines         []DeliveryLine
}

// ConfirmDeliveryResponse 确认送达响应
type ConfirmDeliveryResponse struct {
	RequisitionID uint   `json:"requisition_id"`
	Status        string `json:"status"`
	DispatchID    uint   `json:"dispatch_id"`
}

// Execute 执行确认送达
func (uc *ConfirmDeliveryUseCase) Execute(ctx context.Context, req ConfirmDeliveryRequest) (*ConfirmDeliveryResponse, error) {
	defer metrics.ObserveTransition("deliver", time.Now())

	var (
		delivered *requisition.Requisition
		shipment  *dispatch.Dispatch
	)

	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		// 1. 锁定申领单并重查状态
		r, err := uc.reqRepo.FindByIDLock(txCtx, req.RequisitionID)
		if err != nil {
			return err
		}

		// 收货人必须是目的机构的管理员(或超管)
		if err := identity.Authorize(req.Principal, identity.ActionConfirmDelivery,
			identity.Scope{FacilityID: &r.FacilityID}); err != nil {
			return err
		}

		if !r.Status.CanTransitionTo(requisition.StatusDelivered) {
			return apperrors.Newf(apperrors.ErrCodeInvalidTransition,
				"申领单#%d当前状态为%s,不允许确认送达", r.ID, r.Status)
		}

		// 2. 发运记录必须在途
		d, err := uc.dispatchRepo.FindByRequisitionID(txCtx, r.ID)
		if err != nil {
			return err
		}

		// 3. 写入送达量
		deliveries := make(map[uint]int, len(req.Lines))
		for _, l := range req.Lines {
			deliveries[l.LineID] = l.DeliveredQuantity
		}
		for _, line := range r.Lines {
			qty, ok := deliveries[line.ID]
			if !ok {
				return apperrors.Newf(apperrors.ErrCodeInvalidParams,
					"明细行#%d缺少送达数量", line.ID)
			}
			if err := line.SetDelivery(qty); err != nil {
				return err
			}
		}

		// 4. 逐行入账机构库存（整行缺交不产生流水）
		for _, line := range r.Lines {
			if *line.DeliveredQuantity == 0 {
				continue
			}
			master, err := uc.catalogRepo.FindByID(txCtx, line.ItemID)
			if err != nil {
				return err
			}
			note := fmt.Sprintf("申领单#%d收货", r.ID)
			if _, err := uc.inventorySvc.Credit(txCtx, r.FacilityID, master,
				*line.DeliveredQuantity, req.Principal.UserID, note); err != nil {
				return err
			}
			metrics.RecordStockMovement(string(inventory.MovementAdd), "facility")
		}

		// 5. 发运与申领单状态迁移
		now := time.Now()
		if err := d.MarkDelivered(req.Principal.UserID, now); err != nil {
			return err
		}
		if err := uc.dispatchRepo.Update(txCtx, d); err != nil {
			return err
		}

		if err := r.TransitionTo(requisition.StatusDelivered); err != nil {
			return err
		}
		r.DeliveredAt = &now
		if err := uc.reqRepo.SaveDelivery(txCtx, r); err != nil {
			return err
		}

		delivered = r
		shipment = d
		return nil
	})

	metrics.RecordTransition("deliver", err == nil)
	if err != nil {
		return nil, err
	}
	metrics.DecDispatchesInTransit()

	_ = uc.publisher.Publish(event.RouteRequisitionDelivered, event.RequisitionEvent{
		RequisitionID: delivered.ID,
		FacilityID:    delivered.FacilityID,
		Status:        string(delivered.Status),
		ActorID:       req.Principal.UserID,
		OccurredAt:    time.Now(),
	})

	return &ConfirmDeliveryResponse{
		RequisitionID: delivered.ID,
		Status:        string(delivered.Status),
		DispatchID:    shipment.ID,
	}, nil
}
