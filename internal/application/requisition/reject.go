package requisition

import (
	"context"
	"time"

	"github.com/xiebiao/medsupply/internal/application/event"
	"github.com/xiebiao/medsupply/internal/domain/identity"
	"github.com/xiebiao/medsupply/internal/domain/requisition"
	apperrors "github.com/xiebiao/medsupply/pkg/errors"
	"github.com/xiebiao/medsupply/pkg/metrics"
)

// RejectUseCase 驳回申领单用例
// 驳回是终态,不触碰任何库存
type RejectUseCase struct {
	reqRepo   requisition.Repository
	txManager TxManager
	publisher event.Publisher
}

// NewRejectUseCase 创建驳回用例
func NewRejectUseCase(
	reqRepo requisition.Repository,
	txManager TxManager,
	publisher event.Publisher,
) *RejectUseCase {
	return &RejectUseCase{
		reqRepo:   reqRepo,
		txManager: txManager,
		publisher: publisher,
	}
}

// RejectRequest 驳回请求
type RejectRequest struct {
	Principal     identity.Principal
	RequisitionID uint
	Reason        string
}

// Execute 执行驳回
func (uc *RejectUseCase) Execute(ctx context.Context, req RejectRequest) error {
	if err := identity.Authorize(req.Principal, identity.ActionRejectRequisition, identity.Scope{}); err != nil {
		return err
	}

	defer metrics.ObserveTransition("reject", time.Now())

	var rejected *requisition.Requisition
	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		r, err := uc.reqRepo.FindByIDLock(txCtx, req.RequisitionID)
		if err != nil {
			return err
		}
		if !r.Status.CanTransitionTo(requisition.StatusRejected) {
			return apperrors.Newf(apperrors.ErrCodeInvalidTransition,
				"申领单#%d当前状态为%s,不允许驳回", r.ID, r.Status)
		}
		if err := r.TransitionTo(requisition.StatusRejected); err != nil {
			return err
		}
		rejected = r
		return uc.reqRepo.UpdateStatus(txCtx, r.ID, requisition.StatusRejected)
	})

	metrics.RecordTransition("reject", err == nil)
	if err != nil {
		return err
	}

	_ = uc.publisher.Publish(event.RouteRequisitionRejected, event.RequisitionEvent{
		RequisitionID: rejected.ID,
		FacilityID:    rejected.FacilityID,
		Status:        string(rejected.Status),
		ActorID:       req.Principal.UserID,
		OccurredAt:    time.Now(),
	})
	return nil
}
