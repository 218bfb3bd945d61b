package boardsync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/FilBrou/grandprix-grab-go-sub000/internal/auth"
	"github.com/FilBrou/grandprix-grab-go-sub000/internal/orders"
)

// Binding maps order fields to resolved board column ids.
type Binding struct {
	Client string
	Status string
	Amount string
}

// BindingTitles is the operator-facing configuration: the column titles
// to bind each field to.
type BindingTitles struct {
	Client string
	Status string
	Amount string
}

// BoardAPI is the slice of Client the dispatcher needs.
type BoardAPI interface {
	Columns(ctx context.Context, boardID string) ([]Column, error)
	CreateItem(ctx context.Context, boardID, groupID, name string, columnValues map[string]any) (string, error)
}

// ResolveBinding matches the configured titles against the live board's
// columns and returns the column ids. Matching is case-insensitive on
// title substrings so localised titles still bind. Any unmatched title
// is an error; callers resolve at startup so a bad binding fails the
// process before any order is pushed.
func ResolveBinding(ctx context.Context, api BoardAPI, boardID string, titles BindingTitles) (Binding, error) {
	cols, err := api.Columns(ctx, boardID)
	if err != nil {
		return Binding{}, err
	}
	var b Binding
	var missing []string
	if b.Client = matchColumn(cols, titles.Client); b.Client == "" {
		missing = append(missing, titles.Client)
	}
	if b.Status = matchColumn(cols, titles.Status); b.Status == "" {
		missing = append(missing, titles.Status)
	}
	if b.Amount = matchColumn(cols, titles.Amount); b.Amount == "" {
		missing = append(missing, titles.Amount)
	}
	if len(missing) > 0 {
		return Binding{}, fmt.Errorf("boardsync: board %s has no column matching %q", boardID, strings.Join(missing, ", "))
	}
	return b, nil
}

func matchColumn(cols []Column, title string) string {
	want := strings.ToLower(strings.TrimSpace(title))
	if want == "" {
		return ""
	}
	for _, c := range cols {
		if strings.Contains(strings.ToLower(c.Title), want) {
			return c.ID
		}
	}
	return ""
}

// OrderLister is the slice of orders.Repo the dispatcher needs.
type OrderLister interface {
	ListByDay(ctx context.Context, day string) ([]orders.Order, error)
}

// ProfileReader resolves the customer name shown on the board.
type ProfileReader interface {
	Get(ctx context.Context, userID string) (auth.Profile, error)
}

// Dispatcher pushes orders to the external board. Sync failures never
// touch order state; they are logged and, for on-demand syncs, returned
// to the caller.
type Dispatcher struct {
	API      BoardAPI
	BoardID  string
	GroupID  string
	Binding  Binding
	Profiles ProfileReader
	Orders   OrderLister
	Logger   *slog.Logger
}

// SyncOrder pushes one order as a board item.
func (d *Dispatcher) SyncOrder(ctx context.Context, o orders.Order) error {
	customer := d.customerName(ctx, o.UserID)
	name := fmt.Sprintf("%s — %s", shortRef(o.ID), customer)
	values := map[string]any{
		d.Binding.Client: customer,
		d.Binding.Status: map[string]any{"label": statusLabel(o.Status)},
		d.Binding.Amount: fmt.Sprintf("%.2f", float64(o.TotalCents)/100),
	}
	itemID, err := d.API.CreateItem(ctx, d.BoardID, d.GroupID, name, values)
	if err != nil {
		d.logger().Error("board push failed", "order_id", o.ID, "error", err)
		return err
	}
	d.logger().Info("order pushed to board", "order_id", o.ID, "board_item_id", itemID)
	return nil
}

// SyncToday pushes every order created today. Each failure is collected
// so a single bad order does not stop the batch.
func (d *Dispatcher) SyncToday(ctx context.Context) (int, error) {
	list, err := d.Orders.ListByDay(ctx, time.Now().Format("2006-01-02"))
	if err != nil {
		return 0, fmt.Errorf("boardsync: list today's orders: %w", err)
	}
	var pushed int
	var errs []error
	for _, o := range list {
		if err := d.SyncOrder(ctx, o); err != nil {
			errs = append(errs, fmt.Errorf("order %s: %w", shortRef(o.ID), err))
			continue
		}
		pushed++
	}
	return pushed, errors.Join(errs...)
}

func (d *Dispatcher) customerName(ctx context.Context, userID string) string {
	if d.Profiles == nil {
		return userID
	}
	p, err := d.Profiles.Get(ctx, userID)
	if err != nil {
		return userID
	}
	return p.DisplayName
}

func (d *Dispatcher) logger() *slog.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return slog.Default()
}

func shortRef(orderID string) string {
	if len(orderID) >= 8 {
		return orderID[:8]
	}
	return orderID
}

func statusLabel(s orders.Status) string {
	switch s {
	case orders.StatusPending:
		return "En attente"
	case orders.StatusConfirmed:
		return "Confirmée"
	case orders.StatusReady:
		return "Prête"
	case orders.StatusCompleted:
		return "Remise"
	case orders.StatusCancelled:
		return "Annulée"
	default:
		return string(s)
	}
}
