package inventory

import (
	apperrors "github.com/xiebiao/medsupply/pkg/errors"
)

var (
	// ErrInventoryNotFound 库存行不存在
	ErrInventoryNotFound = apperrors.New(apperrors.ErrCodeInventoryNotFound, "库存记录不存在")

	// ErrInsufficientStock 仓库库存不足
	// 申领扣减是硬失败：不钳制、不部分扣减，整单回滚
	ErrInsufficientStock = apperrors.New(apperrors.ErrCodeInsufficientStock, "仓库库存不足")

	// ErrInvalidAdjustKind 非法的调整类型
	ErrInvalidAdjustKind = apperrors.New(apperrors.ErrCodeInvalidParams, "非法的库存调整类型")

	// ErrInvalidAmount 调整数量非法
	ErrInvalidAmount = apperrors.New(apperrors.ErrCodeInvalidParams, "调整数量必须为非负数")

	// ErrInventoryInUse 库存行被未完结申领单引用，禁止删除
	ErrInventoryInUse = apperrors.New(apperrors.ErrCodeInventoryInUse, "该物资存在未完结的申领单，无法删除")

	// ErrLineDuplicate 同一物资在同一位置已有库存行
	ErrLineDuplicate = apperrors.New(apperrors.ErrCodeDuplicateEntry, "该物资在此位置已有库存记录")
)
