package requisition

import "context"

// TxManager 事务管理接口
// 由mysql.TxManager满足。用例层只依赖接口，
// 测试时可用直通实现替代真实数据库事务。
type TxManager interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}
