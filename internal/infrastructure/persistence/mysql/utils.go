package mysql

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
)

// isDuplicateError 判断是否为MySQL唯一索引冲突错误
// MySQL错误码:
// - 1062: Duplicate entry 'xxx' for key 'yyy'
func isDuplicateError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "Duplicate entry")
}

// getDB 从context获取事务DB,如果没有则使用默认DB
// 各Repository共用这一事务传递机制
func getDB(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value("tx").(*gorm.DB); ok {
		return tx
	}
	return db
}
