package report

import (
	"context"

	"github.com/xiebiao/medsupply/internal/domain/dispatch"
	"github.com/xiebiao/medsupply/internal/domain/identity"
	"github.com/xiebiao/medsupply/internal/domain/inventory"
	"github.com/xiebiao/medsupply/internal/domain/requisition"
)

// DashboardUseCase 仪表盘汇总用例
// 设计说明：
// 读操作不要求事务一致性,三个统计查询各自独立执行,
// 允许观察到最终一致的快照。机构角色的统计限定本机构。
type DashboardUseCase struct {
	reqRepo       requisition.Repository
	dispatchRepo  dispatch.Repository
	inventoryRepo inventory.Repository
}

// NewDashboardUseCase 创建仪表盘用例
func NewDashboardUseCase(
	reqRepo requisition.Repository,
	dispatchRepo dispatch.Repository,
	inventoryRepo inventory.Repository,
) *DashboardUseCase {
	return &DashboardUseCase{
		reqRepo:       reqRepo,
		dispatchRepo:  dispatchRepo,
		inventoryRepo: inventoryRepo,
	}
}

// DashboardSummary 仪表盘汇总
type DashboardSummary struct {
	PendingRequisitions    int64 `json:"pending_requisitions"`
	DispatchedRequisitions int64 `json:"dispatched_requisitions"`
	DeliveredRequisitions  int64 `json:"delivered_requisitions"`
	RejectedRequisitions   int64 `json:"rejected_requisitions"`
	InTransitDispatches    int64 `json:"in_transit_dispatches"`
	LowStockLines          int64 `json:"low_stock_lines"`
	TotalInventoryLines    int64 `json:"total_inventory_lines"`
}

// Execute 生成汇总
func (uc *DashboardUseCase) Execute(ctx context.Context, p identity.Principal) (*DashboardSummary, error) {
	var facilityID *uint
	if p.Role.IsFacilityScoped() {
		facilityID = p.FacilityID
	}

	counts, err := uc.reqRepo.CountByStatus(ctx, facilityID)
	if err != nil {
		return nil, err
	}

	inTransit, err := uc.dispatchRepo.CountInTransit(ctx, facilityID)
	if err != nil {
		return nil, err
	}

	lowStock, err := uc.inventoryRepo.CountLowStock(ctx, facilityID)
	if err != nil {
		return nil, err
	}

	// 只取总数，列表结果丢弃
	_, totalLines, err := uc.inventoryRepo.List(ctx, inventory.ListParams{
		Page: 1, PageSize: 1, FacilityID: facilityID,
	})
	if err != nil {
		return nil, err
	}

	return &DashboardSummary{
		PendingRequisitions:    counts[requisition.StatusPending],
		DispatchedRequisitions: counts[requisition.StatusDispatched],
		DeliveredRequisitions:  counts[requisition.StatusDelivered],
		RejectedRequisitions:   counts[requisition.StatusRejected],
		InTransitDispatches:    inTransit,
		LowStockLines:          lowStock,
		TotalInventoryLines:    totalLines,
	}, nil
}
