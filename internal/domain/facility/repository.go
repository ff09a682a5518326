package facility

import "context"

// ListParams 机构列表查询参数
type ListParams struct {
	Page     int
	PageSize int
	Type     string
	Status   string
	Keyword  string // 匹配名称/地点
}

// Repository 机构仓储接口
type Repository interface {
	Create(ctx context.Context, f *Facility) error
	FindByID(ctx context.Context, id uint) (*Facility, error)
	Update(ctx context.Context, f *Facility) error
	List(ctx context.Context, params ListParams) ([]*Facility, int64, error)
}
