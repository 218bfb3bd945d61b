package cart

import (
	"context"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FilBrou/grandprix-grab-go-sub000/internal/events"
	kafkax "github.com/FilBrou/grandprix-grab-go-sub000/internal/kafka"
	"github.com/FilBrou/grandprix-grab-go-sub000/internal/notify"
)

func itemUpdatedMessage(t *testing.T, p events.ItemUpdatedPayload) kafkago.Message {
	t.Helper()
	env := events.Envelope{
		EventID:      "ev-1",
		EventType:    events.EventItemUpdated,
		EventVersion: 1,
		OccurredAt:   time.Now().UTC(),
		Producer:     "test",
		Payload:      kafkax.MustMarshal(p),
	}
	return kafkago.Message{Value: kafkax.MustMarshal(env)}
}

func TestClamperRemovesDisabledItem(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	notes := notify.NewMemory()
	clamper := NewClamper(store, notes, nil)

	require.NoError(t, store.Put(ctx, "u1", Line{ItemID: "cap", Name: "Casquette", Quantity: 2, UnitPriceCents: 3500}))

	msg := itemUpdatedMessage(t, events.ItemUpdatedPayload{
		ItemID: "cap", Name: "Casquette", Stock: 10, Available: false, PriceCents: 3500,
	})
	require.NoError(t, clamper.HandleItemUpdated(ctx, msg))

	lines, err := store.Lines(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, lines)

	all := notes.All()
	require.Len(t, all, 1)
	assert.Equal(t, notify.TypeCartAdjusted, all[0].Type)
	assert.Equal(t, "u1", all[0].UserID)
}

func TestClamperClampsExcessQuantity(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	notes := notify.NewMemory()
	clamper := NewClamper(store, notes, nil)

	require.NoError(t, store.Put(ctx, "u1", Line{ItemID: "poutine", Name: "Poutine", Quantity: 5, UnitPriceCents: 1200}))

	msg := itemUpdatedMessage(t, events.ItemUpdatedPayload{
		ItemID: "poutine", Name: "Poutine", Stock: 2, Available: true, PriceCents: 1300,
	})
	require.NoError(t, clamper.HandleItemUpdated(ctx, msg))

	line, ok, err := store.Get(ctx, "u1", "poutine")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 2, line.Quantity)
	assert.Equal(t, 1300, line.UnitPriceCents)
	assert.Len(t, notes.All(), 1)
}

func TestClamperIgnoresUnaffectedCarts(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	notes := notify.NewMemory()
	clamper := NewClamper(store, notes, nil)

	require.NoError(t, store.Put(ctx, "u1", Line{ItemID: "cap", Name: "Casquette", Quantity: 1, UnitPriceCents: 3500}))

	msg := itemUpdatedMessage(t, events.ItemUpdatedPayload{
		ItemID: "cap", Name: "Casquette", Stock: 9, Available: true, PriceCents: 3500,
	})
	require.NoError(t, clamper.HandleItemUpdated(ctx, msg))

	line, ok, err := store.Get(ctx, "u1", "cap")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 1, line.Quantity)
	assert.Equal(t, 9, line.AvailableStock)
	assert.Empty(t, notes.All())
}
