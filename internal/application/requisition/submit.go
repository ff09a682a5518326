package requisition

import (
	"context"
	"time"

	"github.com/xiebiao/medsupply/internal/application/event"
	"github.com/xiebiao/medsupply/internal/domain/catalog"
	"github.com/xiebiao/medsupply/internal/domain/identity"
	"github.com/xiebiao/medsupply/internal/domain/requisition"
	apperrors "github.com/xiebiao/medsupply/pkg/errors"
)

// SubmitUseCase 提交申领单用例
// 设计说明：
// 提交只创建申领单与明细行，不触碰任何库存:
// 数量流转从审批开始。机构角色的申领机构强制为本人所属机构。
type SubmitUseCase struct {
	reqRepo     requisition.Repository
	catalogRepo catalog.Repository
	txManager   TxManager
	publisher   event.Publisher
}

// NewSubmitUseCase 创建提交用例
func NewSubmitUseCase(
	reqRepo requisition.Repository,
	catalogRepo catalog.Repository,
	txManager TxManager,
	publisher event.Publisher,
) *SubmitUseCase {
	return &SubmitUseCase{
		reqRepo:     reqRepo,
		catalogRepo: catalogRepo,
		txManager:   txManager,
		publisher:   publisher,
	}
}

// SubmitLine 申领明细输入
type SubmitLine struct {
	ItemID   uint
	Quantity int
	Priority string
}

// SubmitRequest 提交请求
type SubmitRequest struct {
	Principal  identity.Principal
	FacilityID uint // 仓库/超管代下单时指定；机构角色忽略此字段
	Priority   string
	Remarks    string
	Lines      []SubmitLine
}

// SubmitResponse 提交响应
type SubmitResponse struct {
	RequisitionID uint   `json:"requisition_id"`
	Status        string `json:"status"`
	LineCount     int    `json:"line_count"`
	CreatedAt     string `json:"created_at"`
}

// Execute 执行提交
func (uc *SubmitUseCase) Execute(ctx context.Context, req SubmitRequest) (*SubmitResponse, error) {
	if err := identity.Authorize(req.Principal, identity.ActionSubmitRequisition, identity.Scope{}); err != nil {
		return nil, err
	}

	// 1. 确定申领机构：机构角色强制本机构
	facilityID := req.FacilityID
	if req.Principal.Role.IsFacilityScoped() {
		facilityID = *req.Principal.FacilityID
	}
	if facilityID == 0 {
		return nil, apperrors.New(apperrors.ErrCodeInvalidParams, "必须指定申领机构")
	}

	// 2. 校验明细
	if len(req.Lines) == 0 {
		return nil, requisition.ErrEmptyLines
	}

	priority := requisition.Priority(req.Priority)
	if req.Priority == "" {
		priority = requisition.PriorityNormal
	}
	if !priority.Valid() {
		return nil, apperrors.New(apperrors.ErrCodeInvalidParams, "非法的优先级")
	}

	lines := make([]*requisition.Line, len(req.Lines))
	for i, l := range req.Lines {
		if l.Quantity <= 0 {
			return nil, requisition.ErrInvalidQuantity
		}
		// 物资必须存在于主数据
		if _, err := uc.catalogRepo.FindByID(ctx, l.ItemID); err != nil {
			return nil, err
		}
		linePriority := requisition.Priority(l.Priority)
		if l.Priority == "" {
			linePriority = priority
		}
		if !linePriority.Valid() {
			return nil, apperrors.New(apperrors.ErrCodeInvalidParams, "非法的明细优先级")
		}
		lines[i] = &requisition.Line{
			ItemID:            l.ItemID,
			RequestedQuantity: l.Quantity,
			Priority:          linePriority,
		}
	}

	// 3. 创建申领单（申领单+明细行同事务）
	newReq := &requisition.Requisition{
		RequesterID: req.Principal.UserID,
		FacilityID:  facilityID,
		Status:      requisition.StatusPending,
		Priority:    priority,
		Remarks:     req.Remarks,
		Lines:       lines,
	}

	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		return uc.reqRepo.Create(txCtx, newReq)
	})
	if err != nil {
		return nil, err
	}

	// 4. 发布事件（失败不影响业务）
	_ = uc.publisher.Publish(event.RouteRequisitionSubmitted, event.RequisitionEvent{
		RequisitionID: newReq.ID,
		FacilityID:    newReq.FacilityID,
		Status:        string(newReq.Status),
		ActorID:       req.Principal.UserID,
		OccurredAt:    time.Now(),
	})

	return &SubmitResponse{
		RequisitionID: newReq.ID,
		Status:        string(newReq.Status),
		LineCount:     len(newReq.Lines),
		CreatedAt:     newReq.CreatedAt.Format("2006-01-02 15:04:05"),
	}, nil
}
