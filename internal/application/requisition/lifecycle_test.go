package requisition

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/medsupply/internal/application/event"
	"github.com/xiebiao/medsupply/internal/domain/catalog"
	"github.com/xiebiao/medsupply/internal/domain/dispatch"
	"github.com/xiebiao/medsupply/internal/domain/identity"
	"github.com/xiebiao/medsupply/internal/domain/inventory"
	"github.com/xiebiao/medsupply/internal/domain/requisition"
	apperrors "github.com/xiebiao/medsupply/pkg/errors"
)

// =========================================
// 内存实现（测试替身）
// =========================================
// 用例只依赖接口，这里用内存map替代MySQL：
// 事务语义由用例内的校验顺序保证（任何失败都发生在持久化之前），
// 真正的回滚与行锁在仓储层的集成测试中覆盖。

// memTx 直接执行函数，不提供真实回滚
type memTx struct{}

func (memTx) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// memReqRepo 申领单内存仓储
type memReqRepo struct {
	reqs   map[uint]*requisition.Requisition
	nextID uint
}

func newMemReqRepo() *memReqRepo {
	return &memReqRepo{reqs: make(map[uint]*requisition.Requisition), nextID: 1}
}

func (r *memReqRepo) Create(ctx context.Context, req *requisition.Requisition) error {
	req.ID = r.nextID
	r.nextID++
	// 明细行赋递增ID
	for i, l := range req.Lines {
		l.ID = req.ID*100 + uint(i) + 1
		l.RequisitionID = req.ID
	}
	r.reqs[req.ID] = req
	return nil
}

func (r *memReqRepo) FindByID(ctx context.Context, id uint) (*requisition.Requisition, error) {
	req, ok := r.reqs[id]
	if !ok {
		return nil, requisition.ErrRequisitionNotFound
	}
	return req, nil
}

func (r *memReqRepo) FindByIDLock(ctx context.Context, id uint) (*requisition.Requisition, error) {
	return r.FindByID(ctx, id)
}

func (r *memReqRepo) SaveApproval(ctx context.Context, req *requisition.Requisition) error {
	r.reqs[req.ID] = req
	return nil
}

func (r *memReqRepo) SaveDelivery(ctx context.Context, req *requisition.Requisition) error {
	r.reqs[req.ID] = req
	return nil
}

func (r *memReqRepo) UpdateStatus(ctx context.Context, id uint, status requisition.Status) error {
	req, ok := r.reqs[id]
	if !ok {
		return requisition.ErrRequisitionNotFound
	}
	req.Status = status
	return nil
}

func (r *memReqRepo) Delete(ctx context.Context, id uint) error {
	delete(r.reqs, id)
	return nil
}

func (r *memReqRepo) List(ctx context.Context, params requisition.ListParams) ([]*requisition.Requisition, int64, error) {
	return nil, 0, nil
}

func (r *memReqRepo) CountByStatus(ctx context.Context, facilityID *uint) (map[requisition.Status]int64, error) {
	return map[requisition.Status]int64{}, nil
}

func (r *memReqRepo) HasActiveReferences(ctx context.Context, itemID uint) (bool, error) {
	return false, nil
}

// memDispatchRepo 发运内存仓储
type memDispatchRepo struct {
	dispatches map[uint]*dispatch.Dispatch
	nextID     uint
}

func newMemDispatchRepo() *memDispatchRepo {
	return &memDispatchRepo{dispatches: make(map[uint]*dispatch.Dispatch), nextID: 1}
}

func (r *memDispatchRepo) Create(ctx context.Context, d *dispatch.Dispatch) error {
	for _, existing := range r.dispatches {
		if existing.RequisitionID == d.RequisitionID {
			return dispatch.ErrDuplicateDispatch
		}
	}
	d.ID = r.nextID
	r.nextID++
	r.dispatches[d.ID] = d
	return nil
}

func (r *memDispatchRepo) FindByID(ctx context.Context, id uint) (*dispatch.Dispatch, error) {
	d, ok := r.dispatches[id]
	if !ok {
		return nil, dispatch.ErrDispatchNotFound
	}
	return d, nil
}

func (r *memDispatchRepo) FindByRequisitionID(ctx context.Context, requisitionID uint) (*dispatch.Dispatch, error) {
	for _, d := range r.dispatches {
		if d.RequisitionID == requisitionID {
			return d, nil
		}
	}
	return nil, dispatch.ErrDispatchNotFound
}

func (r *memDispatchRepo) Update(ctx context.Context, d *dispatch.Dispatch) error {
	r.dispatches[d.ID] = d
	return nil
}

func (r *memDispatchRepo) List(ctx context.Context, params dispatch.ListParams) ([]*dispatch.Dispatch, int64, error) {
	return nil, 0, nil
}

func (r *memDispatchRepo) CountInTransit(ctx context.Context, facilityID *uint) (int64, error) {
	return 0, nil
}

// memInventoryRepo 库存内存仓储
type memInventoryRepo struct {
	lines     map[uint]*inventory.InventoryLine
	movements []*inventory.StockMovement
	nextID    uint
}

func newMemInventoryRepo() *memInventoryRepo {
	return &memInventoryRepo{lines: make(map[uint]*inventory.InventoryLine), nextID: 1}
}

// addWarehouseLine 预置一条仓库池库存行
func (r *memInventoryRepo) addWarehouseLine(itemID uint, name string, qty int) *inventory.InventoryLine {
	line := &inventory.InventoryLine{
		ID:       r.nextID,
		ItemID:   itemID,
		Name:     name,
		Quantity: qty,
	}
	r.nextID++
	r.lines[line.ID] = line
	return line
}

func (r *memInventoryRepo) Create(ctx context.Context, line *inventory.InventoryLine) error {
	line.ID = r.nextID
	r.nextID++
	r.lines[line.ID] = line
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

// memCatalogRepo 物资主数据内存仓储
type memCatalogRepo struct {
	items map[uint]*catalog.ItemMaster
}

func newMemCatalogRepo(items ...*catalog.ItemMaster) *memCatalogRepo {
	r := &memCatalogRepo{items: make(map[uint]*catalog.ItemMaster)}
	for _, item := range items {
		r.items[item.ID] = item
	}
	return r
}

func (r *memCatalogRepo) Create(ctx context.Context, item *catalog.ItemMaster) error {
	r.items[item.ID] = item
	return nil
}

func (r *memCatalogRepo) FindByID(ctx context.Context, id uint) (*catalog.ItemMaster, error) {
	item, ok := r.items[id]
	if !ok {
		return nil, catalog.ErrItemNotFound
	}
	return item, nil
}

func (r *memCatalogRepo) FindByCode(ctx context.Context, code string) (*catalog.ItemMaster, error) {
	for _, item := range r.items {
		if item.Code == code {
			return item, nil
		}
	}
	return nil, catalog.ErrItemNotFound
}

func (r *memCatalogRepo) Update(ctx context.Context, item *catalog.ItemMaster) error {
	r.items[item.ID] = item
	return nil
}

func (r *memCatalogRepo) Delete(ctx context.Context, id uint) error {
	delete(r.items, id)
	return nil
}

func (r *memCatalogRepo) ListCategories(ctx context.Context) ([]string, error) {
	return nil, nil
}

// recordPublisher 记录发布的路由键
type recordPublisher struct {
	routes []string
}

func (p *recordPublisher) Publish(routingKey string, message interface{}) error {
	p.routes = append(p.routes, routingKey)
	return nil
}

// =========================================
// 测试夹具
// =========================================

var (
	warehouseAdmin = identity.Principal{UserID: 1, Role: identity.RoleWarehouseAdmin}
	superAdmin     = identity.Principal{UserID: 2, Role: identity.RoleSuperAdmin}
)

func facilityAdminOf(facilityID uint) identity.Principal {
	fid := facilityID
	return identity.Principal{UserID: 10, Role: identity.RoleFacilityAdmin, FacilityID: &fid}
}

func facilityUserOf(userID, facilityID uint) identity.Principal {
	fid := facilityID
	return identity.Principal{UserID: userID, Role: identity.RoleFacilityUser, FacilityID: &fid}
}

// lifecycleFixture 组装一套完整的生命周期用例
type lifecycleFixture struct {
	reqRepo       *memReqRepo
	dispatchRepo  *memDispatchRepo
	inventoryRepo *memInventoryRepo
	catalogRepo   *memCatalogRepo
	publisher     *recordPublisher

	submit  *SubmitUseCase
	approve *ApproveUseCase
	reject  *RejectUseCase
	deliver *ConfirmDeliveryUseCase
	remove  *DeleteUseCase
}

func newLifecycleFixture(items ...*catalog.ItemMaster) *lifecycleFixture {
	f := &lifecycleFixture{
		reqRepo:       newMemReqRepo(),
		dispatchRepo:  newMemDispatchRepo(),
		inventoryRepo: newMemInventoryRepo(),
		catalogRepo:   newMemCatalogRepo(items...),
		publisher:     &recordPublisher{},
	}
	invSvc := inventory.NewService(f.inventoryRepo)
	f.submit = NewSubmitUseCase(f.reqRepo, f.catalogRepo, memTx{}, f.publisher)
	f.approve = NewApproveUseCase(f.reqRepo, f.dispatchRepo, invSvc, memTx{}, f.publisher)
	f.reject = NewRejectUseCase(f.reqRepo, memTx{}, f.publisher)
	f.deliver = NewConfirmDeliveryUseCase(f.reqRepo, f.dispatchRepo, f.catalogRepo, invSvc, memTx{}, f.publisher)
	f.remove = NewDeleteUseCase(f.reqRepo, memTx{})
	return f
}

// cancelUseCase 按回补策略构造取消用例
func (f *lifecycleFixture) cancelUseCase(restock bool) *CancelDispatchUseCase {
	invSvc := inventory.NewService(f.inventoryRepo)
	return NewCancelDispatchUseCase(f.reqRepo, f.dispatchRepo, invSvc, memTx{}, f.publisher, restock)
}

// pendingRequisition 预置一张待审批的申领单
func (f *lifecycleFixture) pendingRequisition(t *testing.T, requester identity.Principal, lines []SubmitLine) *requisition.Requisition {
	t.Helper()
	resp, err := f.submit.Execute(context.Background(), SubmitRequest{
		Principal: requester,
		Lines:     lines,
	})
	require.NoError(t, err)
	r, err := f.reqRepo.FindByID(context.Background(), resp.RequisitionID)
	require.NoError(t, err)
	return r
}

var maskItem = &catalog.ItemMaster{ID: 1, Code: "MED-001", Name: "N95口罩", Category: "consumable", Unit: "盒"}
var gloveItem = &catalog.ItemMaster{ID: 2, Code: "MED-002", Name: "医用手套", Category: "consumable", Unit: "箱"}

// =========================================
// 提交
// =========================================

// TestSubmit_Success 提交只建单，不触碰库存
func TestSubmit_Success(t *testing.T) {
	f := newLifecycleFixture(maskItem, gloveItem)
	f.inventoryRepo.addWarehouseLine(1, maskItem.Name, 100)

	resp, err := f.submit.Execute(context.Background(), SubmitRequest{
		Principal: facilityUserOf(10, 2),
		Priority:  "high",
		Lines: []SubmitLine{
			{ItemID: 1, Quantity: 20},
			{ItemID: 2, Quantity: 5, Priority: "urgent"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, string(requisition.StatusPending), resp.Status)
	assert.Equal(t, 2, resp.LineCount)

	r, err := f.reqRepo.FindByID(context.Background(), resp.RequisitionID)
	require.NoError(t, err)
	// 机构角色的申领机构强制为本人所属机构
	assert.Equal(t, uint(2), r.FacilityID)
	// 明细优先级：未指定的继承表头
	assert.Equal(t, requisition.PriorityHigh, r.Lines[0].Priority)
	assert.Equal(t, requisition.PriorityUrgent, r.Lines[1].Priority)

	// 库存原封不动
	line, _ := f.inventoryRepo.FindWarehouseLineByItemLock(context.Background(), 1)
	assert.Equal(t, 100, line.Quantity)
	assert.Empty(t, f.inventoryRepo.movements)

	assert.Contains(t, f.publisher.routes, event.RouteRequisitionSubmitted)
}

// TestSubmit_Validation 空明细、非法数量、物资不存在
func TestSubmit_Validation(t *testing.T) {
	f := newLifecycleFixture(maskItem)
	requester := facilityUserOf(10, 2)

	_, err := f.submit.Execute(context.Background(), SubmitRequest{
		Principal: requester,
	})
	assert.ErrorIs(t, err, requisition.ErrEmptyLines)

	_, err = f.submit.Execute(context.Background(), SubmitRequest{
		Principal: requester,
		Lines:     []SubmitLine{{ItemID: 1, Quantity: 0}},
	})
	assert.ErrorIs(t, err, requisition.ErrInvalidQuantity)

	_, err = f.submit.Execute(context.Background(), SubmitRequest{
		Principal: requester,
		Lines:     []SubmitLine{{ItemID: 999, Quantity: 1}},
	})
	assert.ErrorIs(t, err, catalog.ErrItemNotFound)
}

// =========================================
// 审批
// =========================================

// TestApprove_Success 审批一次完成扣库存+建发运+状态迁移
func TestApprove_Success(t *testing.T) {
	f := newLifecycleFixture(maskItem, gloveItem)
	f.inventoryRepo.addWarehouseLine(1, maskItem.Name, 100)
	f.inventoryRepo.addWarehouseLine(2, gloveItem.Name, 50)

	r := f.pendingRequisition(t, facilityUserOf(10, 2), []SubmitLine{
		{ItemID: 1, Quantity: 20},
		{ItemID: 2, Quantity: 10},
	})

	resp, err := f.approve.Execute(context.Background(), ApproveRequest{
		Principal:     warehouseAdmin,
		RequisitionID: r.ID,
		Lines: []ApprovalLine{
			{LineID: r.Lines[0].ID, ApprovedQuantity: 20},
			{LineID: r.Lines[1].ID, ApprovedQuantity: 8}, // 部分批准
		},
		TrackingNumber: "SF123456",
	})
	require.NoError(t, err)
	assert.Equal(t, string(requisition.StatusDispatched), resp.Status)

	// 申领单：状态/审批人/审批量
	assert.Equal(t, requisition.StatusDispatched, r.Status)
	require.NotNil(t, r.ApprovedBy)
	assert.Equal(t, warehouseAdmin.UserID, *r.ApprovedBy)
	assert.Equal(t, 20, *r.Lines[0].ApprovedQuantity)
	assert.Equal(t, 8, *r.Lines[1].ApprovedQuantity)

	// 仓库按审批量扣减
	mask, _ := f.inventoryRepo.FindWarehouseLineByItemLock(context.Background(), 1)
	glove, _ := f.inventoryRepo.FindWarehouseLineByItemLock(context.Background(), 2)
	assert.Equal(t, 80, mask.Quantity)
	assert.Equal(t, 42, glove.Quantity)

	// 每行一条subtract流水
	require.Len(t, f.inventoryRepo.movements, 2)
	assert.Equal(t, inventory.MovementSubtract, f.inventoryRepo.movements[0].Kind)
	assert.Equal(t, -20, f.inventoryRepo.movements[0].Delta)

	// 发运记录in_transit，与申领单1:1
	d, err := f.dispatchRepo.FindByID(context.Background(), resp.DispatchID)
	require.NoError(t, err)
	assert.Equal(t, dispatch.StatusInTransit, d.Status)
	assert.Equal(t, r.ID, d.RequisitionID)
	assert.Equal(t, r.FacilityID, d.FacilityID)
	assert.Equal(t, "SF123456", d.TrackingNumber)

	assert.Contains(t, f.publisher.routes, event.RouteRequisitionApproved)
}

// TestApprove_LowStockAlert 发货跌破安全库存时发布预警
func TestApprove_LowStockAlert(t *testing.T) {
	f := newLifecycleFixture(maskItem)
	line := f.inventoryRepo.addWarehouseLine(1, maskItem.Name, 30)
	line.MinStockLevel = 20

	r := f.pendingRequisition(t, facilityUserOf(10, 2), []SubmitLine{
		{ItemID: 1, Quantity: 15},
	})

	// 30-15=15 < 20：预警
	_, err := f.approve.Execute(context.Background(), ApproveRequest{
		Principal:     warehouseAdmin,
		RequisitionID: r.ID,
		Lines:         []ApprovalLine{{LineID: r.Lines[0].ID, ApprovedQuantity: 15}},
	})
	require.NoError(t, err)
	assert.Contains(t, f.publisher.routes, event.RouteLowStockAlert)
}

// TestApprove_InsufficientStock 库存不足硬失败，不部分发货
func TestApprove_InsufficientStock(t *testing.T) {
	f := newLifecycleFixture(maskItem)
	f.inventoryRepo.addWarehouseLine(1, maskItem.Name, 5)

	r := f.pendingRequisition(t, facilityUserOf(10, 2), []SubmitLine{
		{ItemID: 1, Quantity: 20},
	})

	_, err := f.approve.Execute(context.Background(), ApproveRequest{
		Principal:     warehouseAdmin,
		RequisitionID: r.ID,
		Lines:         []ApprovalLine{{LineID: r.Lines[0].ID, ApprovedQuantity: 20}},
	})
	assert.ErrorIs(t, err, inventory.ErrInsufficientStock)

	// 库存原样，没有流水，没有发运记录，状态仍是pending
	line, _ := f.inventoryRepo.FindWarehouseLineByItemLock(context.Background(), 1)
	assert.Equal(t, 5, line.Quantity)
	assert.Empty(t, f.inventoryRepo.movements)
	assert.Empty(t, f.dispatchRepo.dispatches)
	assert.Equal(t, requisition.StatusPending, r.Status)
}

// TestApprove_AlreadyDispatched 并发审批中后到者的结局：
// 拿到行锁后重查状态发现已dispatched，状态机拒绝，仓库只扣减一次
func TestApprove_AlreadyDispatched(t *testing.T) {
	f := newLifecycleFixture(maskItem)
	f.inventoryRepo.addWarehouseLine(1, maskItem.Name, 100)

	r := f.pendingRequisition(t, facilityUserOf(10, 2), []SubmitLine{
		{ItemID: 1, Quantity: 20},
	})
	approval := ApproveRequest{
		Principal:     warehouseAdmin,
		RequisitionID: r.ID,
		Lines:         []ApprovalLine{{LineID: r.Lines[0].ID, ApprovedQuantity: 20}},
	}

	_, err := f.approve.Execute(context.Background(), approval)
	require.NoError(t, err)

	// 第二次审批
	_, err = f.approve.Execute(context.Background(), approval)
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidTransition))

	// 只扣了一次
	line, _ := f.inventoryRepo.FindWarehouseLineByItemLock(context.Background(), 1)
	assert.Equal(t, 80, line.Quantity)
	assert.Len(t, f.inventoryRepo.movements, 1)
	assert.Len(t, f.dispatchRepo.dispatches, 1)
}

// TestApprove_ExceedsRequested 审批量超过申领量
func TestApprove_ExceedsRequested(t *testing.T) {
	f := newLifecycleFixture(maskItem)
	f.inventoryRepo.addWarehouseLine(1, maskItem.Name, 100)

	r := f.pendingRequisition(t, facilityUserOf(10, 2), []SubmitLine{
		{ItemID: 1, Quantity: 10},
	})

	_, err := f.approve.Execute(context.Background(), ApproveRequest{
		Principal:     warehouseAdmin,
		RequisitionID: r.ID,
		Lines:         []ApprovalLine{{LineID: r.Lines[0].ID, ApprovedQuantity: 11}},
	})
	assert.ErrorIs(t, err, requisition.ErrApprovedExceedsRequested)
}

// TestApprove_MissingLine 每一行都必须给出审批量
func TestApprove_MissingLine(t *testing.T) {
	f := newLifecycleFixture(maskItem, gloveItem)
	f.inventoryRepo.addWarehouseLine(1, maskItem.Name, 100)
	f.inventoryRepo.addWarehouseLine(2, gloveItem.Name, 100)

	r := f.pendingRequisition(t, facilityUserOf(10, 2), []SubmitLine{
		{ItemID: 1, Quantity: 10},
		{ItemID: 2, Quantity: 10},
	})

	_, err := f.approve.Execute(context.Background(), ApproveRequest{
		Principal:     warehouseAdmin,
		RequisitionID: r.ID,
		Lines:         []ApprovalLine{{LineID: r.Lines[0].ID, ApprovedQuantity: 10}},
	})
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidParams))
}

// TestApprove_Forbidden 机构角色不能审批
func TestApprove_Forbidden(t *testing.T) {
	f := newLifecycleFixture(maskItem)
	r := f.pendingRequisition(t, facilityUserOf(10, 2), []SubmitLine{
		{ItemID: 1, Quantity: 10},
	})

	_, err := f.approve.Execute(context.Background(), ApproveRequest{
		Principal:     facilityAdminOf(2),
		RequisitionID: r.ID,
		Lines:         []ApprovalLine{{LineID: r.Lines[0].ID, ApprovedQuantity: 10}},
	})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

// =========================================
// 确认送达
// =========================================

// deliverFixture 预置一张已发运的申领单
func deliverFixture(t *testing.T) (*lifecycleFixture, *requisition.Requisition) {
	t.Helper()
	f := newLifecycleFixture(maskItem)
	f.inventoryRepo.addWarehouseLine(1, maskItem.Name, 100)

	r := f.pendingRequisition(t, facilityUserOf(10, 2), []SubmitLine{
		{ItemID: 1, Quantity: 20},
	})
	_, err := f.approve.Execute(context.Background(), ApproveRequest{
		Principal:     warehouseAdmin,
		RequisitionID: r.ID,
		Lines:         []ApprovalLine{{LineID: r.Lines[0].ID, ApprovedQuantity: 20}},
	})
	require.NoError(t, err)
	return f, r
}

// TestConfirmDelivery_Success 收货入账机构库存，首收自动建行
func TestConfirmDelivery_Success(t *testing.T) {
	f, r := deliverFixture(t)

	resp, err := f.deliver.Execute(context.Background(), ConfirmDeliveryRequest{
		Principal:     facilityAdminOf(2),
		RequisitionID: r.ID,
		Lines:         []DeliveryLine{{LineID: r.Lines[0].ID, DeliveredQuantity: 18}}, // 短交
	})
	require.NoError(t, err)
	assert.Equal(t, string(requisition.StatusDelivered), resp.Status)

	// 机构库存行自动创建，携带主数据副本
	line, err := f.inventoryRepo.FindFacilityLineByItemLock(context.Background(), 2, 1)
	require.NoError(t, err)
	assert.Equal(t, 18, line.Quantity)
	assert.Equal(t, maskItem.Code, line.Code)
	assert.Equal(t, maskItem.Name, line.Name)
	assert.Equal(t, maskItem.Unit, line.Unit)

	// 短交不回冲仓库：差额2留在流水里由人工对账
	warehouse, _ := f.inventoryRepo.FindWarehouseLineByItemLock(context.Background(), 1)
	assert.Equal(t, 80, warehouse.Quantity)

	// 发运记录送达
	d, err := f.dispatchRepo.FindByRequisitionID(context.Background(), r.ID)
	require.NoError(t, err)
	assert.Equal(t, dispatch.StatusDelivered, d.Status)
	require.NotNil(t, d.ReceivedBy)

	assert.Equal(t, requisition.StatusDelivered, r.Status)
	assert.Equal(t, 18, *r.Lines[0].DeliveredQuantity)
	assert.Contains(t, f.publisher.routes, event.RouteRequisitionDelivered)
}

// TestConfirmDelivery_ZeroQuantity 整行缺交：送达量0照实记录，不入账
func TestConfirmDelivery_ZeroQuantity(t *testing.T) {
	f, r := deliverFixture(t)

	resp, err := f.deliver.Execute(context.Background(), ConfirmDeliveryRequest{
		Principal:     facilityAdminOf(2),
		RequisitionID: r.ID,
		Lines:         []DeliveryLine{{LineID: r.Lines[0].ID, DeliveredQuantity: 0}},
	})
	require.NoError(t, err)
	assert.Equal(t, string(requisition.StatusDelivered), resp.Status)
	require.NotNil(t, r.Lines[0].DeliveredQuantity)
	assert.Equal(t, 0, *r.Lines[0].DeliveredQuantity)

	// 不产生机构库存行，也不产生入账流水（只有审批时的那条扣减）
	_, err = f.inventoryRepo.FindFacilityLineByItemLock(context.Background(), 2, 1)
	assert.ErrorIs(t, err, inventory.ErrInventoryNotFound)
	assert.Len(t, f.inventoryRepo.movements, 1)
}

// TestConfirmDelivery_WrongFacility 别的机构不能替收
func TestConfirmDelivery_WrongFacility(t *testing.T) {
	f, r := deliverFixture(t)

	_, err := f.deliver.Execute(context.Background(), ConfirmDeliveryRequest{
		Principal:     facilityAdminOf(3),
		RequisitionID: r.ID,
		Lines:         []DeliveryLine{{LineID: r.Lines[0].ID, DeliveredQuantity: 20}},
	})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	assert.Equal(t, requisition.StatusDispatched, r.Status)
}

// TestConfirmDelivery_ExceedsApproved 送达量不能超过审批量
func TestConfirmDelivery_ExceedsApproved(t *testing.T) {
	f, r := deliverFixture(t)

	_, err := f.deliver.Execute(context.Background(), ConfirmDeliveryRequest{
		Principal:     facilityAdminOf(2),
		RequisitionID: r.ID,
		Lines:         []DeliveryLine{{LineID: r.Lines[0].ID, DeliveredQuantity: 21}},
	})
	assert.ErrorIs(t, err, requisition.ErrDeliveredExceedsApproved)
}

// TestConfirmDelivery_NotDispatched 待审批的单不能确认送达
func TestConfirmDelivery_NotDispatched(t *testing.T) {
	f := newLifecycleFixture(maskItem)
	r := f.pendingRequisition(t, facilityUserOf(10, 2), []SubmitLine{
		{ItemID: 1, Quantity: 20},
	})

	_, err := f.deliver.Execute(context.Background(), ConfirmDeliveryRequest{
		Principal:     facilityAdminOf(2),
		RequisitionID: r.ID,
		Lines:         []DeliveryLine{{LineID: r.Lines[0].ID, DeliveredQuantity: 20}},
	})
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidTransition))
}

// =========================================
// 取消发运
// =========================================

// TestCancelDispatch_Default 默认不回补：只回退状态
func TestCancelDispatch_Default(t *testing.T) {
	f, r := deliverFixture(t)
	d, _ := f.dispatchRepo.FindByRequisitionID(context.Background(), r.ID)

	err := f.cancelUseCase(false).Execute(context.Background(), CancelDispatchRequest{
		Principal:  warehouseAdmin,
		DispatchID: d.ID,
	})
	require.NoError(t, err)

	assert.Equal(t, dispatch.StatusCancelled, d.Status)
	assert.Equal(t, requisition.StatusApproved, r.Status)

	// 仓库不回补（审批时已扣到80）
	warehouse, _ := f.inventoryRepo.FindWarehouseLineByItemLock(context.Background(), 1)
	assert.Equal(t, 80, warehouse.Quantity)
	assert.Len(t, f.inventoryRepo.movements, 1, "不应产生回补流水")

	assert.Contains(t, f.publisher.routes, event.RouteDispatchCancelled)
}

// TestCancelDispatch_Restock 启用回补策略：按审批量加回仓库并写流水
func TestCancelDispatch_Restock(t *testing.T) {
	f, r := deliverFixture(t)
	d, _ := f.dispatchRepo.FindByRequisitionID(context.Background(), r.ID)

	err := f.cancelUseCase(true).Execute(context.Background(), CancelDispatchRequest{
		Principal:  warehouseAdmin,
		DispatchID: d.ID,
	})
	require.NoError(t, err)

	warehouse, _ := f.inventoryRepo.FindWarehouseLineByItemLock(context.Background(), 1)
	assert.Equal(t, 100, warehouse.Quantity)

	// 扣减流水 + 回补流水
	require.Len(t, f.inventoryRepo.movements, 2)
	restock := f.inventoryRepo.movements[1]
	assert.Equal(t, inventory.MovementAdd, restock.Kind)
	assert.Equal(t, 20, restock.Delta)
}

// TestCancelDispatch_AlreadyDelivered 已送达的发运不能取消
func TestCancelDispatch_AlreadyDelivered(t *testing.T) {
	f, r := deliverFixture(t)
	_, err := f.deliver.Execute(context.Background(), ConfirmDeliveryRequest{
		Principal:     facilityAdminOf(2),
		RequisitionID: r.ID,
		Lines:         []DeliveryLine{{LineID: r.Lines[0].ID, DeliveredQuantity: 20}},
	})
	require.NoError(t, err)

	d, _ := f.dispatchRepo.FindByRequisitionID(context.Background(), r.ID)
	err = f.cancelUseCase(false).Execute(context.Background(), CancelDispatchRequest{
		Principal:  warehouseAdmin,
		DispatchID: d.ID,
	})
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidTransition))
}

// =========================================
// 驳回与删除
// =========================================

// TestReject 驳回是终态，不触碰库存
func TestReject(t *testing.T) {
	f := newLifecycleFixture(maskItem)
	f.inventoryRepo.addWarehouseLine(1, maskItem.Name, 100)
	r := f.pendingRequisition(t, facilityUserOf(10, 2), []SubmitLine{
		{ItemID: 1, Quantity: 20},
	})

	err := f.reject.Execute(context.Background(), RejectRequest{
		Principal:     warehouseAdmin,
		RequisitionID: r.ID,
		Reason:        "库存优先保障急诊",
	})
	require.NoError(t, err)
	assert.Equal(t, requisition.StatusRejected, r.Status)
	assert.Empty(t, f.inventoryRepo.movements)

	// 驳回后不能再审批
	_, err = f.approve.Execute(context.Background(), ApproveRequest{
		Principal:     warehouseAdmin,
		RequisitionID: r.ID,
		Lines:         []ApprovalLine{{LineID: r.Lines[0].ID, ApprovedQuantity: 20}},
	})
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidTransition))
}

// TestDelete 只有待审批的单可以删除，普通用户只能删自己的
func TestDelete(t *testing.T) {
	f := newLifecycleFixture(maskItem)
	requester := facilityUserOf(10, 2)
	r := f.pendingRequisition(t, requester, []SubmitLine{
		{ItemID: 1, Quantity: 20},
	})

	// 同机构别人的单：拒绝
	other := facilityUserOf(11, 2)
	err := f.remove.Execute(context.Background(), DeleteRequest{
		Principal:     other,
		RequisitionID: r.ID,
	})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	// 本人的单：删除成功
	err = f.remove.Execute(context.Background(), DeleteRequest{
		Principal:     requester,
		RequisitionID: r.ID,
	})
	require.NoError(t, err)
	_, err = f.reqRepo.FindByID(context.Background(), r.ID)
	assert.ErrorIs(t, err, requisition.ErrRequisitionNotFound)
}

// TestDelete_NotPending 已发运的单不能删除
func TestDelete_NotPending(t *testing.T) {
	f, r := deliverFixture(t)

	err := f.remove.Execute(context.Background(), DeleteRequest{
		Principal:     superAdmin,
		RequisitionID: r.ID,
	})
	assert.ErrorIs(t, err, requisition.ErrNotDeletable)
}
