package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/FilBrou/grandprix-grab-go-sub000/internal/cart"
	"github.com/FilBrou/grandprix-grab-go-sub000/internal/checkout/placementlog"
	"github.com/FilBrou/grandprix-grab-go-sub000/internal/events"
	"github.com/FilBrou/grandprix-grab-go-sub000/internal/orders"
)

var (
	ErrLocationRequired  = errors.New("checkout: pickup location required")
	ErrUnknownLocation   = errors.New("checkout: unknown or inactive pickup location")
	ErrEmptyCart         = errors.New("checkout: cart is empty")
	ErrPlacementInFlight = errors.New("checkout: a placement is already in progress for this user")
)

// OrderStore is the slice of orders.Repo the placer needs.
type OrderStore interface {
	Insert(ctx context.Context, o orders.Order) error
	InsertLines(ctx context.Context, orderID string, lines []orders.Line) error
	Delete(ctx context.Context, orderID string) error
	DeleteLines(ctx context.Context, orderID string) error
	FindByExternalID(ctx context.Context, externalID string) (orders.Order, bool, error)
}

// StockStore is the slice of catalog.Repo the placer needs.
type StockStore interface {
	DecrementStock(ctx context.Context, id string, qty int) error
	RestoreStock(ctx context.Context, id string, qty int) error
}

// Carts reads and clears the user's cart.
type Carts interface {
	Lines(ctx context.Context, userID string) ([]cart.Line, error)
	Clear(ctx context.Context, userID string) error
}

// Locations validates the pickup point and remembers the user's choice.
type Locations interface {
	Active(ctx context.Context, id string) (bool, error)
	SaveLast(ctx context.Context, userID, locationID string) error
}

// EventSink publishes the order.created event on success.
type EventSink interface {
	OrderCreated(requestID string, p events.OrderCreatedPayload)
}

// Request is one placement attempt.
type Request struct {
	// ExternalID is the client-generated idempotency key. Retrying a
	// placement with the same key returns the already placed order.
	ExternalID string
	UserID     string
	LocationID string
	RequestID  string
}

// Placer turns a cart into an order. The write path runs as a sequence
// of compensable steps so a failure partway through leaves no orphan
// rows and no phantom stock.
type Placer struct {
	Orders    OrderStore
	Stock     StockStore
	Carts     Carts
	Locations Locations
	Log       placementlog.Repository
	Events    EventSink
	Logger    *slog.Logger

	mu       sync.Mutex
	inFlight map[string]struct{}
}

func NewPlacer(o OrderStore, s StockStore, c Carts, l Locations, log placementlog.Repository, ev EventSink, logger *slog.Logger) *Placer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Placer{
		Orders:    o,
		Stock:     s,
		Carts:     c,
		Locations: l,
		Log:       log,
		Events:    ev,
		Logger:    logger,
		inFlight:  make(map[string]struct{}),
	}
}

// Place runs one placement end to end.
func (p *Placer) Place(ctx context.Context, req Request) (orders.Order, error) {
	if req.LocationID == "" {
		return orders.Order{}, ErrLocationRequired
	}
	active, err := p.Locations.Active(ctx, req.LocationID)
	if err != nil {
		return orders.Order{}, fmt.Errorf("checkout: check location: %w", err)
	}
	if !active {
		return orders.Order{}, ErrUnknownLocation
	}

	// Same idempotency key, same order: the retry after a timed-out
	// response must not charge stock twice.
	if req.ExternalID != "" {
		existing, found, err := p.Orders.FindByExternalID(ctx, req.ExternalID)
		if err != nil {
			return orders.Order{}, fmt.Errorf("checkout: idempotency lookup: %w", err)
		}
		if found {
			p.Logger.Info("placement replayed", "external_id", req.ExternalID, "order_id", existing.ID)
			return existing, nil
		}
	}

	if !p.acquire(req.UserID) {
		return orders.Order{}, ErrPlacementInFlight
	}
	defer p.release(req.UserID)

	lines, err := p.Carts.Lines(ctx, req.UserID)
	if err != nil {
		return orders.Order{}, fmt.Errorf("checkout: read cart: %w", err)
	}
	if len(lines) == 0 {
		return orders.Order{}, ErrEmptyCart
	}

	order := buildOrder(req, lines)
	sg := &saga{
		placementID: order.ID,
		userID:      req.UserID,
		requestID:   req.RequestID,
		payload:     string(mustJSON(lines)),
		log:         p.Log,
		logger:      p.Logger,
	}
	steps := []Step{
		&orderStep{repo: p.Orders, order: order},
		&linesStep{repo: p.Orders, orderID: order.ID, lines: order.Lines},
	}
	for _, l := range lines {
		steps = append(steps, &stockStep{stock: p.Stock, itemID: l.ItemID, itemName: l.Name, quantity: l.Quantity})
	}
	if err := sg.run(ctx, steps); err != nil {
		return orders.Order{}, err
	}

	// Past this point the order exists; the remaining work is best
	// effort and must not undo it.
	if err := p.Carts.Clear(ctx, req.UserID); err != nil {
		p.Logger.Error("cart clear failed after placement", "order_id", order.ID, "error", err)
	}
	if err := p.Locations.SaveLast(ctx, req.UserID, req.LocationID); err != nil {
		p.Logger.Error("save last location failed", "order_id", order.ID, "error", err)
	}
	if p.Events != nil {
		p.Events.OrderCreated(req.RequestID, orderCreatedPayload(order, lines))
	}

	p.Logger.Info("order placed", "order_id", order.ID, "user_id", req.UserID, "total_cents", order.TotalCents)
	return order, nil
}

func (p *Placer) acquire(userID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, busy := p.inFlight[userID]; busy {
		return false
	}
	p.inFlight[userID] = struct{}{}
	return true
}

func (p *Placer) release(userID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.inFlight, userID)
}

func buildOrder(req Request, lines []cart.Line) orders.Order {
	o := orders.Order{
		ID:         uuid.NewString(),
		ExternalID: req.ExternalID,
		UserID:     req.UserID,
		LocationID: req.LocationID,
		Status:     orders.StatusPending,
	}
	for _, l := range lines {
		o.Lines = append(o.Lines, orders.Line{
			OrderID:    o.ID,
			ItemID:     l.ItemID,
			Quantity:   l.Quantity,
			PriceCents: l.UnitPriceCents,
		})
		o.TotalCents += l.Quantity * l.UnitPriceCents
	}
	return o
}

func orderCreatedPayload(o orders.Order, lines []cart.Line) events.OrderCreatedPayload {
	p := events.OrderCreatedPayload{
		OrderID:    o.ID,
		ExternalID: o.ExternalID,
		UserID:     o.UserID,
		LocationID: o.LocationID,
		TotalCents: o.TotalCents,
	}
	for _, l := range lines {
		p.Lines = append(p.Lines, events.LineQty{
			ItemID:     l.ItemID,
			Name:       l.Name,
			Quantity:   l.Quantity,
			PriceCents: l.UnitPriceCents,
		})
	}
	return p
}

func mustJSON(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		return []byte("{}")
	}
	return b
}
