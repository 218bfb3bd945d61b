package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/FilBrou/grandprix-grab-go-sub000/internal/events"
	"github.com/FilBrou/grandprix-grab-go-sub000/internal/notify"
)

// NotificationWriter records a notification for a user. Satisfied by
// notify.Repo and notify.Memory.
type NotificationWriter interface {
	Insert(ctx context.Context, n notify.Notification) (notify.Notification, error)
}

// Clamper reconciles open carts after a catalog change. When an item
// is disabled or its stock drops below held quantities, the affected
// cart lines are removed or clamped and the holders are notified.
type Clamper struct {
	Store  Store
	Notes  NotificationWriter
	Logger *slog.Logger
}

func NewClamper(store Store, notes NotificationWriter, logger *slog.Logger) *Clamper {
	if logger == nil {
		logger = slog.Default()
	}
	return &Clamper{Store: store, Notes: notes, Logger: logger}
}

// HandleItemUpdated processes one item.updated message.
func (c *Clamper) HandleItemUpdated(ctx context.Context, m kafkago.Message) error {
	var env events.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return fmt.Errorf("cart: decode envelope: %w", err)
	}
	if env.EventType != events.EventItemUpdated {
		return nil
	}
	payload, err := events.UnwrapPayload[events.ItemUpdatedPayload](env)
	if err != nil {
		return fmt.Errorf("cart: decode payload: %w", err)
	}

	holders, err := c.Store.HoldersOf(ctx, payload.ItemID)
	if err != nil {
		return fmt.Errorf("cart: holders of %s: %w", payload.ItemID, err)
	}
	for _, userID := range holders {
		if err := c.reconcile(ctx, userID, payload); err != nil {
			return err
		}
	}
	return nil
}

func (c *Clamper) reconcile(ctx context.Context, userID string, p events.ItemUpdatedPayload) error {
	line, ok, err := c.Store.Get(ctx, userID, p.ItemID)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	switch {
	case !p.Available || p.Stock == 0:
		if err := c.Store.Remove(ctx, userID, p.ItemID); err != nil {
			return err
		}
		c.note(ctx, userID, fmt.Sprintf("%s n'est plus disponible et a été retiré de votre panier.", line.Name))
		c.Logger.Info("cart line removed", "user_id", userID, "item_id", p.ItemID)
	case line.Quantity > p.Stock:
		line.Quantity = p.Stock
		line.UnitPriceCents = p.PriceCents
		line.AvailableStock = p.Stock
		if err := c.Store.Put(ctx, userID, line); err != nil {
			return err
		}
		c.note(ctx, userID, fmt.Sprintf("La quantité de %s dans votre panier a été réduite à %d (stock restant).", line.Name, p.Stock))
		c.Logger.Info("cart line clamped", "user_id", userID, "item_id", p.ItemID, "quantity", p.Stock)
	default:
		line.UnitPriceCents = p.PriceCents
		line.AvailableStock = p.Stock
		if err := c.Store.Put(ctx, userID, line); err != nil {
			return err
		}
	}
	return nil
}

func (c *Clamper) note(ctx context.Context, userID, body string) {
	if c.Notes == nil {
		return
	}
	_, err := c.Notes.Insert(ctx, notify.Notification{
		UserID:  userID,
		Type:    notify.TypeCartAdjusted,
		Title:   "Panier ajusté",
		Message: body,
	})
	if err != nil {
		c.Logger.Error("cart adjustment notification failed", "user_id", userID, "error", err)
	}
}
