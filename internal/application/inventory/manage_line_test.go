package inventory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/medsupply/internal/domain/inventory"
	"github.com/xiebiao/medsupply/internal/domain/requisition"
)

// memReqRefRepo 只实现引用检查的申领单仓储替身
// 语义与MySQL实现一致：pending/approved/dispatched视为未完结
type memReqRefRepo struct {
	requisition.Repository
	reqs []*requisition.Requisition
}

func (r *memReqRefRepo) HasActiveReferences(ctx context.Context, itemID uint) (bool, error) {
	for _, req := range r.reqs {
		switch req.Status {
		case requisition.StatusPending, requisition.StatusApproved, requisition.StatusDispatched:
		default:
			continue
		}
		for _, line := range req.Lines {
			if line.ItemID == itemID {
				return true, nil
			}
		}
	}
	return false, nil
}

func referencingRequisition(status requisition.Status, itemID uint) *requisition.Requisition {
	return &requisition.Requisition{
		Status: status,
		Lines:  []*requisition.Line{{ItemID: itemID, RequestedQuantity: 5}},
	}
}

// TestDeleteLine_ActiveReferences 被未完结申领单引用的物资禁止删除
//
// 测试场景：
// 1. pending/dispatched引用：拒绝
// 2. approved引用（发运取消后停在该状态的单仍引用物资）：拒绝
// 3. 只剩delivered/rejected引用：放行
func TestDeleteLine_ActiveReferences(t *testing.T) {
	blocking := []requisition.Status{
		requisition.StatusPending,
		requisition.StatusApproved,
		requisition.StatusDispatched,
	}
	for _, status := range blocking {
		repo := newMemInventoryRepo()
		line := repo.addLine(&inventory.InventoryLine{ItemID: 1, Name: "N95口罩", Quantity: 10})
		reqRepo := &memReqRefRepo{reqs: []*requisition.Requisition{
			referencingRequisition(status, 1),
		}}
		uc := NewDeleteLineUseCase(repo, reqRepo, memTx{})

		err := uc.Execute(context.Background(), DeleteLineRequest{
			Principal: warehouseAdmin,
			LineID:    line.ID,
		})
		assert.ErrorIs(t, err, inventory.ErrInventoryInUse, "status=%s", status)

		// 库存行原封不动
		_, err = repo.FindByID(context.Background(), line.ID)
		assert.NoError(t, err)
	}

	// 已完结的引用不阻塞删除
	repo := newMemInventoryRepo()
	line := repo.addLine(&inventory.InventoryLine{ItemID: 1, Name: "N95口罩", Quantity: 10})
	reqRepo := &memReqRefRepo{reqs: []*requisition.Requisition{
		referencingRequisition(requisition.StatusDelivered, 1),
		referencingRequisition(requisition.StatusRejected, 1),
	}}
	uc := NewDeleteLineUseCase(repo, reqRepo, memTx{})

	require.NoError(t, uc.Execute(context.Background(), DeleteLineRequest{
		Principal: warehouseAdmin,
		LineID:    line.ID,
	}))
	_, err := repo.FindByID(context.Background(), line.ID)
	assert.ErrorIs(t, err, inventory.ErrInventoryNotFound)
}
