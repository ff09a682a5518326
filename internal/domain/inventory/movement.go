package inventory

import "time"

// MovementKind 库存变动类型
type MovementKind string

const (
	MovementAdd      MovementKind = "add"
	MovementSubtract MovementKind = "subtract"
	MovementSet      MovementKind = "set"
)

// Valid 校验变动类型
func (k MovementKind) Valid() bool {
	switch k {
	case MovementAdd, MovementSubtract, MovementSet:
		return true
	}
	return false
}

// StockMovement 库存流水（仅追加）
// 设计说明：
// 每次数量变化都在同一事务内写入一条流水，记录变动前后的数量，
// 使得任意时刻都能从流水重放出当前库存：sum(delta)+初始值==当前数量。
// 流水只增不改不删，审计与对账都以它为准。
type StockMovement struct {
	ID         uint
	LineID     uint // 库存行ID
	ItemID     uint
	FacilityID *uint // 冗余自库存行，便于按机构过滤流水
	Kind       MovementKind
	Delta      int // 有符号变化量，subtract为负
	Previous   int // 变动前数量
	New        int // 变动后数量
	ActorID    uint
	Note       string
	CreatedAt  time.Time
}

// NewMovement 构造一条流水记录
func NewMovement(line *InventoryLine, kind MovementKind, previous, next int, actorID uint, note string) *StockMovement {
	return &StockMovement{
		LineID:     line.ID,
		ItemID:     line.ItemID,
		FacilityID: line.FacilityID,
		Kind:       kind,
		Delta:      next - previous,
		Previous:   previous,
		New:        next,
		ActorID:    actorID,
		Note:       note,
	}
}
