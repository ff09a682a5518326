package dispatch

import (
	apperrors "github.com/xiebiao/medsupply/pkg/errors"
)

var (
	// ErrDispatchNotFound 发运记录不存在
	ErrDispatchNotFound = apperrors.New(apperrors.ErrCodeDispatchNotFound, "发运记录不存在")

	// ErrDuplicateDispatch 同一申领单重复创建发运记录
	ErrDuplicateDispatch = apperrors.New(apperrors.ErrCodeDuplicateEntry, "该申领单已存在发运记录")

	// ErrNotInTransit 发运记录不在途，不能送达或取消
	ErrNotInTransit = apperrors.New(apperrors.ErrCodeInvalidTransition, "发运记录不在途中")
)
