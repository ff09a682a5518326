package requisition

import (
	apperrors "github.com/xiebiao/medsupply/pkg/errors"
)

var (
	// ErrRequisitionNotFound 申领单不存在
	ErrRequisitionNotFound = apperrors.New(apperrors.ErrCodeRequisitionNotFound, "申领单不存在")

	// ErrInvalidTransition 非法状态迁移
	ErrInvalidTransition = apperrors.New(apperrors.ErrCodeInvalidTransition, "当前状态不允许该操作")

	// ErrEmptyLines 申领单必须至少包含一行明细
	ErrEmptyLines = apperrors.New(apperrors.ErrCodeInvalidParams, "申领单至少需要一条明细")

	// ErrInvalidQuantity 明细数量必须为正
	ErrInvalidQuantity = apperrors.New(apperrors.ErrCodeInvalidParams, "申领数量必须大于0")

	// ErrApprovedExceedsRequested 审批量超过请求量
	ErrApprovedExceedsRequested = apperrors.New(apperrors.ErrCodeInvalidParams, "审批数量不能超过申领数量")

	// ErrDeliveredExceedsApproved 送达量超过审批量
	ErrDeliveredExceedsApproved = apperrors.New(apperrors.ErrCodeInvalidParams, "送达数量不能超过审批数量")

	// ErrLineNotApproved 明细行尚未审批
	ErrLineNotApproved = apperrors.New(apperrors.ErrCodeInvalidParams, "明细行尚未审批，不能确认送达")

	// ErrNotDeletable 只有待审批的申领单可以删除
	ErrNotDeletable = apperrors.New(apperrors.ErrCodeInvalidTransition, "只有待审批的申领单可以删除")
)
