package requisition

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestStatus_CanTransitionTo 状态机迁移表
//
// 测试场景：
// 1. pending可以迁移到dispatched（审批发货）和rejected（驳回）
// 2. dispatched可以迁移到delivered（送达）和approved（发运取消回退）
// 3. approved/delivered/rejected都是终态
func TestStatus_CanTransitionTo(t *testing.T) {
	cases := []struct {
		from    Status
		to      Status
		allowed bool
	}{
		{StatusPending, StatusDispatched, true},
		{StatusPending, StatusRejected, true},
		{StatusPending, StatusDelivered, false},
		{StatusPending, StatusApproved, false},

		{StatusDispatched, StatusDelivered, true},
		{StatusDispatched, StatusApproved, true},
		{StatusDispatched, StatusRejected, false},
		{StatusDispatched, StatusPending, false},

		// 终态不允许任何迁移
		{StatusApproved, StatusDispatched, false},
		{StatusDelivered, StatusPending, false},
		{StatusRejected, StatusPending, false},
	}

	for _, c := range cases {
		assert.Equal(t, c.allowed, c.from.CanTransitionTo(c.to),
			"%s → %s", c.from, c.to)
	}
}

// TestRequisition_TransitionTo 非法迁移返回错误且状态不变
func TestRequisition_TransitionTo(t *testing.T) {
	r := &Requisition{Status: StatusPending}

	// 非法迁移
	err := r.TransitionTo(StatusDelivered)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, StatusPending, r.Status, "失败的迁移不应改变状态")

	// 合法迁移
	require.NoError(t, r.TransitionTo(StatusDispatched))
	assert.Equal(t, StatusDispatched, r.Status)

	// 发运取消回退
	require.NoError(t, r.TransitionTo(StatusApproved))
	assert.Equal(t, StatusApproved, r.Status)

	// approved是终态，不能重新发运
	assert.ErrorIs(t, r.TransitionTo(StatusDispatched), ErrInvalidTransition)
}

// TestLine_SetApproval 审批量边界
func TestLine_SetApproval(t *testing.T) {
	line := &Line{RequestedQuantity: 10}

	// 审批量可以小于请求量（部分批准）
	require.NoError(t, line.SetApproval(6))
	require.NotNil(t, line.ApprovedQuantity)
	assert.Equal(t, 6, *line.ApprovedQuantity)

	// 等于请求量
	require.NoError(t, line.SetApproval(10))
	assert.Equal(t, 10, *line.ApprovedQuantity)

	// 超过请求量
	assert.ErrorIs(t, line.SetApproval(11), ErrApprovedExceedsRequested)

	// 零和负数
	assert.ErrorIs(t, line.SetApproval(0), ErrApprovedExceedsRequested)
	assert.ErrorIs(t, line.SetApproval(-1), ErrApprovedExceedsRequested)
}

// TestLine_SetDelivery 送达量边界
func TestLine_SetDelivery(t *testing.T) {
	line := &Line{RequestedQuantity: 10}

	// 未审批不能写送达量
	assert.ErrorIs(t, line.SetDelivery(5), ErrLineNotApproved)

	require.NoError(t, line.SetApproval(8))

	// 短交：送达量小于审批量是允许的
	require.NoError(t, line.SetDelivery(5))
	require.NotNil(t, line.DeliveredQuantity)
	assert.Equal(t, 5, *line.DeliveredQuantity)

	// 整行缺交：送达量0也照实记录
	require.NoError(t, line.SetDelivery(0))
	assert.Equal(t, 0, *line.DeliveredQuantity)

	// 超过审批量和负数
	assert.ErrorIs(t, line.SetDelivery(9), ErrDeliveredExceedsApproved)
	assert.ErrorIs(t, line.SetDelivery(-1), ErrDeliveredExceedsApproved)
}

// TestRequisition_IsDeletable 只有待审批的单可以删除
func TestRequisition_IsDeletable(t *testing.T) {
	assert.True(t, (&Requisition{Status: StatusPending}).IsDeletable())
	assert.False(t, (&Requisition{Status: StatusDispatched}).IsDeletable())
	assert.False(t, (&Requisition{Status: StatusApproved}).IsDeletable())
	assert.False(t, (&Requisition{Status: StatusDelivered}).IsDeletable())
	assert.False(t, (&Requisition{Status: StatusRejected}).IsDeletable())
}

// TestPriority_Valid 优先级校验
func TestPriority_Valid(t *testing.T) {
	assert.True(t, PriorityNormal.Valid())
	assert.True(t, PriorityHigh.Valid())
	assert.True(t, PriorityUrgent.Valid())
	assert.False(t, Priority("critical").Valid())
	assert.False(t, Priority("").Valid())
}
