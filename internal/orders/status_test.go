package orders

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(StatusPending, StatusConfirmed))
	assert.True(t, CanTransition(StatusPending, StatusCancelled))
	assert.True(t, CanTransition(StatusConfirmed, StatusReady))
	assert.True(t, CanTransition(StatusReady, StatusCompleted))

	// No skipping ahead, no resurrecting finished orders.
	assert.False(t, CanTransition(StatusPending, StatusReady))
	assert.False(t, CanTransition(StatusReady, StatusCancelled))
	assert.False(t, CanTransition(StatusCompleted, StatusPending))
	assert.False(t, CanTransition(StatusCancelled, StatusConfirmed))
}

func TestValidStatus(t *testing.T) {
	assert.True(t, ValidStatus(StatusPending))
	assert.False(t, ValidStatus(Status("shipped")))
}

func TestMemoryUpdateStatus(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.Insert(ctx, Order{ID: "o1", UserID: "u1", Status: StatusPending}))

	o, from, err := m.UpdateStatus(ctx, "o1", StatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, from)
	assert.Equal(t, StatusConfirmed, o.Status)

	_, _, err = m.UpdateStatus(ctx, "o1", StatusCompleted)
	require.ErrorIs(t, err, ErrInvalidTransition)

	_, _, err = m.UpdateStatus(ctx, "missing", StatusConfirmed)
	require.ErrorIs(t, err, ErrNotFound)
}
