package inventory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/medsupply/internal/application/event"
	"github.com/xiebiao/medsupply/internal/domain/identity"
	"github.com/xiebiao/medsupply/internal/domain/inventory"
	apperrors "github.com/xiebiao/medsupply/pkg/errors"
)

// memTx 直接执行函数的事务替身
type memTx struct{}

func (memTx) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// memInventoryRepo 库存内存仓储
type memInventoryRepo struct {
	lines     map[uint]*inventory.InventoryLine
	movements []*inventory.StockMovement
	nextID    uint
	lockCalls int // 锁定读取次数
}

func newMemInventoryRepo() *memInventoryRepo {
	return &memInventoryRepo{lines: make(map[uint]*inventory.InventoryLine), nextID: 1}
}

func (r *memInventoryRepo) addLine(line *inventory.InventoryLine) *inventory.InventoryLine {
	line.ID = r.nextID
	r.nextID++
	r.lines[line.ID] = line
	return line
}

func (r *memInventoryRepo) Create(ctx context.Context, line *inventory.InventoryLine) error {
	r.addLine(line)
	return nil
}

func (r *memInventoryRepo) FindByID(ctx context.Context, id uint) (*inventory.InventoryLine, error) {
	line, ok := r.lines[id]
	if !ok {
		return nil, inventory.ErrInventoryNotFound
	}
	return line, nil
}

func (r *memInventoryRepo) FindByIDLock(ctx context.Context, id uint) (*inventory.InventoryLine, error) {
	r.lockCalls++
	return r.FindByID(ctx, id)
}

func (r *memInventoryRepo) FindWarehouseLineByItemLock(ctx context.Context, itemID uint) (*inventory.InventoryLine, error) {
	for _, line := range r.lines {
		if line.ItemID == itemID && line.IsWarehouse() {
			return line, nil
		}
	}
	return nil, inventory.ErrInventoryNotFound
}

func (r *memInventoryRepo) FindFacilityLineByItemLock(ctx context.Context, facilityID, itemID uint) (*inventory.InventoryLine, error) {
	for _, line := range r.lines {
		if line.ItemID == itemID && line.FacilityID != nil && *line.FacilityID == facilityID {
			return line, nil
		}
	}
	return nil, inventory.ErrInventoryNotFound
}

func (r *memInventoryRepo) UpdateQuantity(ctx context.Context, lineID uint, quantity int) error {
	line, ok := r.lines[lineID]
	if !ok {
		return inventory.ErrInventoryNotFound
	}
	line.Quantity = quantity
	return nil
}

func (r *memInventoryRepo) Update(ctx context.Context, line *inventory.InventoryLine) error {
	r.lines[line.ID] = line
	return nil
}

func (r *memInventoryRepo) Delete(ctx context.Context, id uint) error {
	delete(r.lines, id)
	return nil
}

func (r *memInventoryRepo) List(ctx context.Context, params inventory.ListParams) ([]*inventory.InventoryLine, int64, error) {
	return nil, 0, nil
}

func (r *memInventoryRepo) CreateMovement(ctx context.Context, m *inventory.StockMovement) error {
	r.movements = append(r.movements, m)
	return nil
}

func (r *memInventoryRepo) ListMovements(ctx context.Context, params inventory.MovementListParams) ([]*inventory.StockMovement, int64, error) {
	return r.movements, int64(len(r.movements)), nil
}

func (r *memInventoryRepo) CountLowStock(ctx context.Context, facilityID *uint) (int64, error) {
	return 0, nil
}

// recordPublisher 记录发布的路由键
type recordPublisher struct {
	routes []string
}

func (p *recordPublisher) Publish(routingKey string, message interface{}) error {
	p.routes = append(p.routes, routingKey)
	return nil
}

func newAdjustFixture() (*memInventoryRepo, *recordPublisher, *AdjustStockUseCase) {
	repo := newMemInventoryRepo()
	publisher := &recordPublisher{}
	uc := NewAdjustStockUseCase(repo, inventory.NewService(repo), memTx{}, publisher)
	return repo, publisher, uc
}

var warehouseAdmin = identity.Principal{UserID: 1, Role: identity.RoleWarehouseAdmin}

func facilityAdminOf(facilityID uint) identity.Principal {
	fid := facilityID
	return identity.Principal{UserID: 10, Role: identity.RoleFacilityAdmin, FacilityID: &fid}
}

// TestAdjustStock_Add 入库
func TestAdjustStock_Add(t *testing.T) {
	repo, _, uc := newAdjustFixture()
	line := repo.addLine(&inventory.InventoryLine{ItemID: 1, Name: "N95口罩", Quantity: 10})

	resp, err := uc.Execute(context.Background(), AdjustStockRequest{
		Principal: warehouseAdmin,
		LineID:    line.ID,
		Kind:      "add",
		Amount:    5,
		Note:      "采购入库",
	})
	require.NoError(t, err)
	assert.Equal(t, 10, resp.Previous)
	assert.Equal(t, 15, resp.Quantity)

	require.Len(t, repo.movements, 1)
	assert.Equal(t, inventory.MovementAdd, repo.movements[0].Kind)
	assert.Equal(t, 5, repo.movements[0].Delta)
	assert.Equal(t, "采购入库", repo.movements[0].Note)
}

// TestAdjustStock_SubtractClamps 盘亏钳制到0，流水记录真实Delta
func TestAdjustStock_SubtractClamps(t *testing.T) {
	repo, _, uc := newAdjustFixture()
	line := repo.addLine(&inventory.InventoryLine{ItemID: 1, Name: "N95口罩", Quantity: 3})

	resp, err := uc.Execute(context.Background(), AdjustStockRequest{
		Principal: warehouseAdmin,
		LineID:    line.ID,
		Kind:      "subtract",
		Amount:    10,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, resp.Quantity)

	// Delta是实际变化量-3，不是请求量-10
	require.Len(t, repo.movements, 1)
	assert.Equal(t, -3, repo.movements[0].Delta)
}

// TestAdjustStock_Set 盘点覆盖
func TestAdjustStock_Set(t *testing.T) {
	repo, _, uc := newAdjustFixture()
	line := repo.addLine(&inventory.InventoryLine{ItemID: 1, Name: "N95口罩", Quantity: 7})

	resp, err := uc.Execute(context.Background(), AdjustStockRequest{
		Principal: warehouseAdmin,
		LineID:    line.ID,
		Kind:      "set",
		Amount:    30,
	})
	require.NoError(t, err)
	assert.Equal(t, 30, resp.Quantity)
	assert.Equal(t, 23, repo.movements[0].Delta)
}

// TestAdjustStock_LedgerReplay 连续调整走锁定读取，流水快照首尾相接
//
// 台账不变量：每条流水的previous等于上一条的new，
// 当前数量等于所有delta之和。调整必须在锁内读数量，
// 否则基于过期值写绝对数量会让这条链断裂。
func TestAdjustStock_LedgerReplay(t *testing.T) {
	repo, _, uc := newAdjustFixture()
	line := repo.addLine(&inventory.InventoryLine{ItemID: 1, Name: "N95口罩", Quantity: 10})

	steps := []AdjustStockRequest{
		{Principal: warehouseAdmin, LineID: line.ID, Kind: "add", Amount: 5},
		{Principal: warehouseAdmin, LineID: line.ID, Kind: "subtract", Amount: 2},
		{Principal: warehouseAdmin, LineID: line.ID, Kind: "set", Amount: 20},
	}
	for _, step := range steps {
		_, err := uc.Execute(context.Background(), step)
		require.NoError(t, err)
	}

	// 每次调整两次锁定读取：用例锁内重读 + 领域服务锁定取行
	assert.Equal(t, 2*len(steps), repo.lockCalls)

	// 快照链：previous[i] == new[i-1]，数量 == 初始 + Σdelta
	require.Len(t, repo.movements, len(steps))
	sum := 0
	prev := 10
	for _, m := range repo.movements {
		assert.Equal(t, prev, m.Previous)
		assert.Equal(t, m.Previous+m.Delta, m.New)
		sum += m.Delta
		prev = m.New
	}
	assert.Equal(t, 10+sum, line.Quantity)
}

// TestAdjustStock_InvalidKind 非法调整类型
func TestAdjustStock_InvalidKind(t *testing.T) {
	repo, _, uc := newAdjustFixture()
	line := repo.addLine(&inventory.InventoryLine{ItemID: 1, Quantity: 7})

	_, err := uc.Execute(context.Background(), AdjustStockRequest{
		Principal: warehouseAdmin,
		LineID:    line.ID,
		Kind:      "transfer",
		Amount:    1,
	})
	assert.ErrorIs(t, err, inventory.ErrInvalidAdjustKind)
	assert.Empty(t, repo.movements)
}

// TestAdjustStock_FacilityScope 机构角色不能动仓库池，也不能动别的机构
func TestAdjustStock_FacilityScope(t *testing.T) {
	repo, _, uc := newAdjustFixture()
	warehouseLine := repo.addLine(&inventory.InventoryLine{ItemID: 1, Quantity: 100})
	fid := uint(2)
	facilityLine := repo.addLine(&inventory.InventoryLine{ItemID: 1, FacilityID: &fid, Quantity: 10})

	// 机构管理员调整仓库池：拒绝
	_, err := uc.Execute(context.Background(), AdjustStockRequest{
		Principal: facilityAdminOf(2),
		LineID:    warehouseLine.ID,
		Kind:      "add",
		Amount:    1,
	})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	// 调整别的机构的库存行：拒绝
	_, err = uc.Execute(context.Background(), AdjustStockRequest{
		Principal: facilityAdminOf(3),
		LineID:    facilityLine.ID,
		Kind:      "add",
		Amount:    1,
	})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	// 本机构的库存行：放行
	_, err = uc.Execute(context.Background(), AdjustStockRequest{
		Principal: facilityAdminOf(2),
		LineID:    facilityLine.ID,
		Kind:      "add",
		Amount:    1,
	})
	assert.NoError(t, err)
}

// TestAdjustStock_LowStockAlert 调整后低于安全库存时发布预警
func TestAdjustStock_LowStockAlert(t *testing.T) {
	repo, publisher, uc := newAdjustFixture()
	line := repo.addLine(&inventory.InventoryLine{ItemID: 1, Name: "N95口罩", Quantity: 20, MinStockLevel: 10})

	// 调整后仍高于安全库存：不预警
	_, err := uc.Execute(context.Background(), AdjustStockRequest{
		Principal: warehouseAdmin,
		LineID:    line.ID,
		Kind:      "subtract",
		Amount:    5,
	})
	require.NoError(t, err)
	assert.NotContains(t, publisher.routes, event.RouteLowStockAlert)

	// 跌破安全库存：预警
	_, err = uc.Execute(context.Background(), AdjustStockRequest{
		Principal: warehouseAdmin,
		LineID:    line.ID,
		Kind:      "subtract",
		Amount:    10,
	})
	require.NoError(t, err)
	assert.Contains(t, publisher.routes, event.RouteLowStockAlert)
}
