package dispatch

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDispatch_MarkDelivered 只有在途的发运可以确认送达
func TestDispatch_MarkDelivered(t *testing.T) {
	d := &Dispatch{Status: StatusInTransit}
	now := time.Now()

	require.NoError(t, d.MarkDelivered(7, now))
	assert.Equal(t, StatusDelivered, d.Status)
	require.NotNil(t, d.ReceivedBy)
	assert.Equal(t, uint(7), *d.ReceivedBy)
	require.NotNil(t, d.DeliveredAt)
	assert.Equal(t, now, *d.DeliveredAt)

	// 重复确认
	assert.ErrorIs(t, d.MarkDelivered(7, now), ErrNotInTransit)
}

// TestDispatch_MarkCancelled 只有在途的发运可以取消
func TestDispatch_MarkCancelled(t *testing.T) {
	d := &Dispatch{Status: StatusInTransit}
	require.NoError(t, d.MarkCancelled())
	assert.Equal(t, StatusCancelled, d.Status)

	// 已取消不能再取消
	assert.ErrorIs(t, d.MarkCancelled(), ErrNotInTransit)

	// 已送达不能取消
	delivered := &Dispatch{Status: StatusDelivered}
	assert.ErrorIs(t, delivered.MarkCancelled(), ErrNotInTransit)
}
