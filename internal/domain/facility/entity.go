package facility

import "time"

// Status 机构状态
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// Facility 消耗机构实体（医院科室/下属站点）
// 中心仓库不是Facility：库存行的FacilityID为nil即表示仓库池。
type Facility struct {
	ID            uint
	Name          string
	Location      string
	Type          string // 如 hospital / clinic / health_post
	ContactPerson string
	Phone         string
	Email         string
	Address       string
	Status        Status
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
