package mysql

import (
	"context"

	"gorm.io/gorm"
)

// TxManager 事务管理器
// 设计说明:
// 1. 封装GORM的Transaction方法
// 2. 通过context传递事务DB(避免全局变量)
// 3. 支持嵌套事务(GORM自动使用Savepoint)
//
// 申领单的每个生命周期迁移(审批、确认送达)都必须通过它执行:
// 迁移涉及申领单、明细行、库存行、流水、发运记录五张表,
// 任何一步失败都整体回滚,保证库存与流水永远一致。
type TxManager struct {
	db *gorm.DB
}

// NewTxManager 创建事务管理器
func NewTxManager(db *gorm.DB) *TxManager {
	return &TxManager{db: db}
}

// Transaction 执行事务
// fn返回error时自动ROLLBACK,返回nil时自动COMMIT。
// 事务DB通过context.WithValue注入,Repository的getDB方法从context提取。
func (m *TxManager) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txCtx := context.WithValue(ctx, "tx", tx)
		return fn(txCtx)
	})
}
