package requisition

import (
	"context"

	"github.com/xiebiao/medsupply/internal/domain/identity"
	"github.com/xiebiao/medsupply/internal/domain/requisition"
)

// DeleteUseCase 删除申领单用例
// 只有待审批的申领单可以删除;删除是物理删除(含明细行),
// 不是软迁移:此时尚未产生任何库存流水,无审计需求
type DeleteUseCase struct {
	reqRepo   requisition.Repository
	txManager TxManager
}

// NewDeleteUseCase 创建删除用例
func NewDeleteUseCase(reqRepo requisition.Repository, txManager TxManager) *DeleteUseCase {
	return &DeleteUseCase{reqRepo: reqRepo, txManager: txManager}
}

// DeleteRequest 删除请求
type DeleteRequest struct {
	Principal     identity.Principal
	RequisitionID uint
}

// Execute 执行删除
func (uc *DeleteUseCase) Execute(ctx context.Context, req DeleteRequest) error {
	return uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		r, err := uc.reqRepo.FindByIDLock(txCtx, req.RequisitionID)
		if err != nil {
			return err
		}

		// 归属校验:机构管理员限本机构,普通用户限本人的单
		if err := identity.Authorize(req.Principal, identity.ActionDeleteRequisition,
			identity.Scope{FacilityID: &r.FacilityID, OwnerID: r.RequesterID}); err != nil {
			return err
		}

		if !r.IsDeletable() {
			return requisition.ErrNotDeletable
		}

		return uc.reqRepo.Delete(txCtx, r.ID)
	})
}
