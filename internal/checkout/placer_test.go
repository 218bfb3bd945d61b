package checkout

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/FilBrou/grandprix-grab-go-sub000/internal/cart"
	"github.com/FilBrou/grandprix-grab-go-sub000/internal/catalog"
	"github.com/FilBrou/grandprix-grab-go-sub000/internal/checkout/placementlog"
	"github.com/FilBrou/grandprix-grab-go-sub000/internal/events"
	"github.com/FilBrou/grandprix-grab-go-sub000/internal/locations"
	"github.com/FilBrou/grandprix-grab-go-sub000/internal/orders"
)

type capturedEvents struct {
	created []events.OrderCreatedPayload
}

func (c *capturedEvents) OrderCreated(requestID string, p events.OrderCreatedPayload) {
	c.created = append(c.created, p)
}

type fixture struct {
	catalog *catalog.Memory
	orders  *orders.Memory
	carts   *cart.Service
	store   *cart.MemoryStore
	locs    *locations.Memory
	log     *placementlog.Memory
	events  *capturedEvents
	placer  *Placer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cat := catalog.NewMemory(
		catalog.Item{ID: "cap", Name: "Casquette", Category: catalog.CategoryMerch, PriceCents: 1300, Stock: 10, Available: true},
		catalog.Item{ID: "poutine", Name: "Poutine", Category: catalog.CategoryFood, PriceCents: 1200, Stock: 3, Available: true},
	)
	store := cart.NewMemoryStore()
	f := &fixture{
		catalog: cat,
		orders:  orders.NewMemory(),
		store:   store,
		carts:   cart.NewService(store, cat),
		locs:    locations.NewMemory("paddock"),
		log:     placementlog.NewMemory(),
		events:  &capturedEvents{},
	}
	f.placer = NewPlacer(f.orders, f.catalog, f.carts, f.locs, f.log, f.events, nil)
	return f
}

func (f *fixture) fill(t *testing.T, userID string) {
	t.Helper()
	ctx := context.Background()
	_, err := f.carts.AddLine(ctx, userID, "cap", 1)
	require.NoError(t, err)
	_, err = f.carts.AddLine(ctx, userID, "poutine", 1)
	require.NoError(t, err)
}

func TestPlaceHappyPath(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.fill(t, "u1")

	o, err := f.placer.Place(ctx, Request{ExternalID: "ext-1", UserID: "u1", LocationID: "paddock", RequestID: "req-1"})
	require.NoError(t, err)

	assert.Equal(t, orders.StatusPending, o.Status)
	assert.Equal(t, 2500, o.TotalCents)
	require.Len(t, o.Lines, 2)

	// Stock came off both items.
	cap, err := f.catalog.Item(ctx, "cap")
	require.NoError(t, err)
	assert.Equal(t, 9, cap.Stock)
	pou, err := f.catalog.Item(ctx, "poutine")
	require.NoError(t, err)
	assert.Equal(t, 2, pou.Stock)

	// Cart cleared, location remembered, event emitted.
	lines, err := f.carts.Lines(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, lines)
	last, err := f.locs.Last(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "paddock", last)
	require.Len(t, f.events.created, 1)
	assert.Equal(t, o.ID, f.events.created[0].OrderID)

	// Audit log ends in COMPLETED.
	latest, err := f.log.Latest(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, placementlog.StatusCompleted, latest.Status)
}

func TestPlaceRejectsEmptyCart(t *testing.T) {
	f := newFixture(t)
	_, err := f.placer.Place(context.Background(), Request{UserID: "u1", LocationID: "paddock"})
	require.ErrorIs(t, err, ErrEmptyCart)
	assert.Equal(t, 0, f.orders.Count())
}

func TestPlaceRequiresLocation(t *testing.T) {
	f := newFixture(t)
	f.fill(t, "u1")

	_, err := f.placer.Place(context.Background(), Request{UserID: "u1"})
	require.ErrorIs(t, err, ErrLocationRequired)

	_, err = f.placer.Place(context.Background(), Request{UserID: "u1", LocationID: "nowhere"})
	require.ErrorIs(t, err, ErrUnknownLocation)
}

func TestPlaceCompensatesOnStockFailure(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.fill(t, "u1")

	// Another sale empties the poutine stock between cart fill and checkout.
	require.NoError(t, f.catalog.DecrementStock(ctx, "poutine", 3))

	_, err := f.placer.Place(ctx, Request{ExternalID: "ext-1", UserID: "u1", LocationID: "paddock"})
	require.ErrorIs(t, err, catalog.ErrInsufficientStock)

	// No orphan order rows survive the rollback.
	assert.Equal(t, 0, f.orders.Count())

	// The cap decrement was restored.
	cap, err := f.catalog.Item(ctx, "cap")
	require.NoError(t, err)
	assert.Equal(t, 10, cap.Stock)

	// Cart kept intact so the user can retry after editing it.
	lines, err := f.carts.Lines(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, lines, 2)

	// No event for a failed placement.
	assert.Empty(t, f.events.created)
}

// failingLines wraps an OrderStore so line insertion always fails.
type failingLines struct {
	OrderStore
}

func (f *failingLines) InsertLines(ctx context.Context, orderID string, lines []orders.Line) error {
	return context.DeadlineExceeded
}

func TestPlaceDeletesOrderWhenLinesFail(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.fill(t, "u1")

	f.placer.Orders = &failingLines{OrderStore: f.orders}

	_, err := f.placer.Place(ctx, Request{ExternalID: "ext-1", UserID: "u1", LocationID: "paddock"})
	require.Error(t, err)

	// The order row written before the line failure must not survive.
	assert.Equal(t, 0, f.orders.Count())

	// No stock was taken; those steps never ran.
	cap, err := f.catalog.Item(ctx, "cap")
	require.NoError(t, err)
	assert.Equal(t, 10, cap.Stock)

	last, ok := f.log.Last()
	require.True(t, ok)
	assert.Equal(t, placementlog.StatusFailed, last.Status)
}

func TestPlaceIdempotentOnExternalID(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.fill(t, "u1")

	first, err := f.placer.Place(ctx, Request{ExternalID: "ext-1", UserID: "u1", LocationID: "paddock"})
	require.NoError(t, err)

	// The retry must not need a cart and must not touch stock again.
	replay, err := f.placer.Place(ctx, Request{ExternalID: "ext-1", UserID: "u1", LocationID: "paddock"})
	require.NoError(t, err)
	assert.Equal(t, first.ID, replay.ID)
	assert.Equal(t, 1, f.orders.Count())

	cap, err := f.catalog.Item(ctx, "cap")
	require.NoError(t, err)
	assert.Equal(t, 9, cap.Stock)
}

// slowCarts delays the cart read so a second placement can arrive while
// the first is still inside the critical section.
type slowCarts struct {
	Carts
	gate chan struct{}
}

func (s *slowCarts) Lines(ctx context.Context, userID string) ([]cart.Line, error) {
	<-s.gate
	return s.Carts.Lines(ctx, userID)
}

func TestPlaceRejectsConcurrentDoubleSubmit(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.fill(t, "u1")

	gate := make(chan struct{})
	f.placer.Carts = &slowCarts{Carts: f.carts, gate: gate}

	var inFlightRejections atomic.Int32
	var g errgroup.Group
	for i := 0; i < 2; i++ {
		i := i
		g.Go(func() error {
			_, err := f.placer.Place(ctx, Request{
				ExternalID: "ext-" + string(rune('a'+i)),
				UserID:     "u1",
				LocationID: "paddock",
			})
			if err == ErrPlacementInFlight {
				inFlightRejections.Add(1)
				close(gate)
				return nil
			}
			return err
		})
	}
	require.NoError(t, g.Wait())

	assert.Equal(t, int32(1), inFlightRejections.Load())
	assert.Equal(t, 1, f.orders.Count())
}
