package inventory

import (
	"context"
	"fmt"

	"github.com/xiebiao/medsupply/internal/domain/catalog"
)

// Service 库存领域服务
// 设计说明：
// 三类数量变更的语义刻意区分开：
//  1. Debit：申领发货扣减仓库，库存不足硬失败（绝不钳制），保证
//     "已发货数量一定曾经存在于仓库"这一不变量
//  2. Credit：收货入账机构库存，机构行不存在时按主数据副本自动建行
//  3. Adjust：人工调整（入库/盘亏/盘点），subtract钳制到0
//
// 三者都在调用方开启的事务内执行，并在同一事务内写入流水。
type Service interface {
	// Debit 从仓库池扣减指定物资，qty必须为正
	Debit(ctx context.Context, itemID uint, qty int, actorID uint, note string) (*InventoryLine, error)

	// Credit 向机构库存入账，行不存在时按主数据自动创建
	Credit(ctx context.Context, facilityID uint, master *catalog.ItemMaster, qty int, actorID uint, note string) (*InventoryLine, error)

	// CreditWarehouse 向仓库池回补（发运取消且启用回补策略时使用）
	CreditWarehouse(ctx context.Context, itemID uint, qty int, actorID uint, note string) (*InventoryLine, error)

	// Adjust 人工调整某库存行
	Adjust(ctx context.Context, lineID uint, kind MovementKind, amount int, actorID uint, note string) (*InventoryLine, error)
}

type service struct {
	repo Repository
}

// NewService 创建库存服务
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// Debit 仓库扣减
func (s *service) Debit(ctx context.Context, itemID uint, qty int, actorID uint, note string) (*InventoryLine, error) {
	if qty <= 0 {
		return nil, ErrInvalidAmount
	}

	line, err := s.repo.FindWarehouseLineByItemLock(ctx, itemID)
	if err != nil {
		return nil, err
	}

	// 不足即失败：上层事务回滚，已扣减的其他行一并还原
	if line.Quantity < qty {
		return nil, ErrInsufficientStock
	}

	previous := line.Quantity
	line.Quantity = previous - qty
	if err := s.repo.UpdateQuantity(ctx, line.ID, line.Quantity); err != nil {
		return nil, err
	}

	m := NewMovement(line, MovementSubtract, previous, line.Quantity, actorID, note)
	if err := s.repo.CreateMovement(ctx, m); err != nil {
		return nil, err
	}

	return line, nil
}

// Credit 机构入账
func (s *service) Credit(ctx context.Context, facilityID uint, master *catalog.ItemMaster, qty int, actorID uint, note string) (*InventoryLine, error) {
	if qty <= 0 {
		return nil, ErrInvalidAmount
	}

	line, err := s.repo.FindFacilityLineByItemLock(ctx, facilityID, master.ID)
	if err != nil {
		if err != ErrInventoryNotFound {
			return nil, err
		}
		// 机构首次收到该物资：按主数据副本建行
		fid := facilityID
		line = &InventoryLine{
			ItemID:     master.ID,
			FacilityID: &fid,
			Code:       master.Code,
			Name:       master.Name,
			Category:   master.Category,
			Unit:       master.Unit,
			Quantity:   0,
		}
		if err := s.repo.Create(ctx, line); err != nil {
			return nil, err
		}
	}

	previous := line.Quantity
	line.Quantity = previous + qty
	if err := s.repo.UpdateQuantity(ctx, line.ID, line.Quantity); err != nil {
		return nil, err
	}

	m := NewMovement(line, MovementAdd, previous, line.Quantity, actorID, note)
	if err := s.repo.CreateMovement(ctx, m); err != nil {
		return nil, err
	}

	return line, nil
}

// CreditWarehouse 仓库回补
func (s *service) CreditWarehouse(ctx context.Context, itemID uint, qty int, actorID uint, note string) (*InventoryLine, error) {
	if qty <= 0 {
		return nil, ErrInvalidAmount
	}

	line, err := s.repo.FindWarehouseLineByItemLock(ctx, itemID)
	if err != nil {
		return nil, err
	}

	previous := line.Quantity
	line.Quantity = previous + qty
	if err := s.repo.UpdateQuantity(ctx, line.ID, line.Quantity); err != nil {
		return nil, err
	}

	m := NewMovement(line, MovementAdd, previous, line.Quantity, actorID, note)
	if err := s.repo.CreateMovement(ctx, m); err != nil {
		return nil, err
	}

	return line, nil
}

// Adjust 人工调整
// 锁定读取:并发调整同一行时后到的事务在此阻塞,
// 拿到锁后基于前一个事务提交的数量计算,流水快照始终可重放
func (s *service) Adjust(ctx context.Context, lineID uint, kind MovementKind, amount int, actorID uint, note string) (*InventoryLine, error) {
	if !kind.Valid() {
		return nil, ErrInvalidAdjustKind
	}
	if amount < 0 {
		return nil, ErrInvalidAmount
	}

	line, err := s.repo.FindByIDLock(ctx, lineID)
	if err != nil {
		return nil, err
	}

	previous := line.Quantity
	next, err := line.ApplyAdjust(kind, amount)
	if err != nil {
		return nil, err
	}
	line.Quantity = next

	if err := s.repo.UpdateQuantity(ctx, line.ID, next); err != nil {
		return nil, err
	}

	if note == "" {
		note = fmt.Sprintf("人工调整(%s)", kind)
	}
	m := NewMovement(line, kind, previous, next, actorID, note)
	if err := s.repo.CreateMovement(ctx, m); err != nil {
		return nil, err
	}

	return line, nil
}
