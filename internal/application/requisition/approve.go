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

// ApproveUseCase 审批申领单用例
// 教学要点:这是整个系统最核心的用例
// 涉及:事务处理、并发控制、跨五张表的原子变更
//
// 审批在一个事务内完成五件事:
//  1. 锁定申领单行并重查状态(防并发重复审批)
//  2. 写入各行审批量(审批量≤申领量)
//  3. 逐行扣减仓库库存(任何一行不足则整体回滚,绝不部分发货)
//  4. 创建发运记录(in_transit)
//  5. 申领单状态 pending → dispatched
type ApproveUseCase struct {
	reqRepo      requisition.Repository
	dispatchRepo dispatch.Repository
	inventorySvc inventory.Service
	txManager    TxManager
	publisher    event.Publisher
}

// NewApproveUseCase 创建审批用例
func NewApproveUseCase(
	reqRepo requisition.Repository,
	dispatchRepo dispatch.Repository,
	inventorySvc inventory.Service,
	txManager TxManager,
	publisher event.Publisher,
) *ApproveUseCase {
	return &ApproveUseCase{
		reqRepo:      reqRepo,
		dispatchRepo: dispatchRepo,
		inventorySvc: inventorySvc,
		txManager:    txManager,
		publisher:    publisher,
	}
}

// ApprovalLine 审批明细输入
type ApprovalLine struct {
	LineID           uint
	ApprovedQuantity int
}

// ApproveRequest 审批请求
type ApproveRequest struct {
	Principal      identity.Principal
	RequisitionID  uint
	Lines          []ApprovalLine
	TrackingNumber string
}

// ApproveResponse 审批响应
type ApproveResponse struct {
	RequisitionID uint   `json:"requisition_id"`
	Status        string `json:"status"`
	DispatchID    uint   `json:"dispatch_id"`
}

// Execute 执行审批
//
// 并发场景:两个管理员同时审批同一张单
//  1. 事务A执行FindByIDLock,锁定申领单行
//  2. 事务B阻塞在同一把锁上
//  3. 事务A完成审批并COMMIT,状态已是dispatched
//  4. 事务B拿到锁,重查状态发现不是pending,状态机拒绝迁移
//
// 结果:恰好一个成功,一个InvalidTransition,仓库只扣减一次
func (uc *ApproveUseCase) Execute(ctx context.Context, req ApproveRequest) (*ApproveResponse, error) {
	if err := identity.Authorize(req.Principal, identity.ActionApproveRequisition, identity.Scope{}); err != nil {
		return nil, err
	}

	defer metrics.ObserveTransition("approve", time.Now())

	var (
		approved *requisition.Requisition
		shipment *dispatch.Dispatch
		lowStock []*inventory.InventoryLine
	)

	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		// 1. 锁定并重查状态
		r, err := uc.reqRepo.FindByIDLock(txCtx, req.RequisitionID)
		if err != nil {
			return err
		}
		if !r.Status.CanTransitionTo(requisition.StatusDispatched) {
			return apperrors.Newf(apperrors.ErrCodeInvalidTransition,
				"申领单#%d当前状态为%s,不允许审批", r.ID, r.Status)
		}

		// 2. 写入审批量(每行都必须给出)
		approvals := make(map[uint]int, len(req.Lines))
		for _, l := range req.Lines {
			approvals[l.LineID] = l.ApprovedQuantity
		}
		for _, line := range r.Lines {
			qty, ok := approvals[line.ID]
			if !ok {
				return apperrors.Newf(apperrors.ErrCodeInvalidParams,
					"明细行#%d缺少审批数量", line.ID)
			}
			if err := line.SetApproval(qty); err != nil {
				return err
			}
		}

		// 3. 逐行扣减仓库库存
		// 任何一行不足即返回InsufficientStock,事务回滚,
		// 已扣减的行一并还原,绝不部分发货
		lowStock = lowStock[:0]
		for _, line := range r.Lines {
			note := fmt.Sprintf("申领单#%d发货", r.ID)
			remaining, err := uc.inventorySvc.Debit(txCtx, line.ItemID, *line.ApprovedQuantity,
				req.Principal.UserID, note)
			if err != nil {
				return err
			}
			metrics.RecordStockMovement(string(inventory.MovementSubtract), "warehouse")
			if remaining.IsLowStock() {
				lowStock = append(lowStock, remaining)
			}
		}

		// 4. 创建发运记录(requisition_id唯一索引保证1:1)
		now := time.Now()
		shipment = &dispatch.Dispatch{
			RequisitionID:  r.ID,
			FacilityID:     r.FacilityID,
			Status:         dispatch.StatusInTransit,
			DispatchedBy:   req.Principal.UserID,
			TrackingNumber: req.TrackingNumber,
			DispatchedAt:   now,
		}
		if err := uc.dispatchRepo.Create(txCtx, shipment); err != nil {
			return err
		}

		// 5. 状态迁移并持久化
		if err := r.TransitionTo(requisition.StatusDispatched); err != nil {
			return err
		}
		approver := req.Principal.UserID
		r.ApprovedBy = &approver
		r.ApprovedAt = &now
		if err := uc.reqRepo.SaveApproval(txCtx, r); err != nil {
			return err
		}

		approved = r
		return nil
	})

	metrics.RecordTransition("approve", err == nil)
	if err != nil {
		return nil, err
	}
	metrics.IncDispatchesInTransit()

	_ = uc.publisher.Publish(event.RouteRequisitionApproved, event.RequisitionEvent{
		RequisitionID: approved.ID,
		FacilityID:    approved.FacilityID,
		Status:        string(approved.Status),
		ActorID:       req.Principal.UserID,
		OccurredAt:    time.Now(),
	})

	// 发货导致仓库跌破安全库存时预警
	for _, line := range lowStock {
		_ = uc.publisher.Publish(event.RouteLowStockAlert, event.LowStockEvent{
			LineID:        line.ID,
			ItemID:        line.ItemID,
			FacilityID:    line.FacilityID,
			ItemName:      line.Name,
			Quantity:      line.Quantity,
			MinStockLevel: line.MinStockLevel,
			OccurredAt:    time.Now(),
		})
	}

	return &ApproveResponse{
		RequisitionID: approved.ID,
		Status:        string(approved.Status),
		DispatchID:    shipment.ID,
	}, nil
}
