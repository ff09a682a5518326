package catalog

import (
	apperrors "github.com/xiebiao/medsupply/pkg/errors"
)

var (
	// ErrItemNotFound 物资主数据不存在
	ErrItemNotFound = apperrors.New(apperrors.ErrCodeItemNotFound, "物资不存在")

	// ErrCodeDuplicate 物资编码重复
	ErrCodeDuplicate = apperrors.New(apperrors.ErrCodeItemCodeDuplicate, "物资编码已存在")
)
