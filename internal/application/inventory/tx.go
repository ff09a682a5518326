package inventory

import "context"

// TxManager 事务管理接口（由mysql.TxManager满足）
type TxManager interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}
