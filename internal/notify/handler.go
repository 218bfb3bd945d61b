package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/FilBrou/grandprix-grab-go-sub000/internal/auth"
	"github.com/FilBrou/grandprix-grab-go-sub000/internal/events"
	"github.com/FilBrou/grandprix-grab-go-sub000/internal/redisx"
)

// Inserter records notifications. Satisfied by Repo and Memory.
type Inserter interface {
	Insert(ctx context.Context, n Notification) (Notification, error)
}

// ProfileReader resolves the recipient of a confirmation mail.
type ProfileReader interface {
	Get(ctx context.Context, userID string) (auth.Profile, error)
}

// LocationNamer resolves a pickup point's display name, if known.
type LocationNamer interface {
	Name(ctx context.Context, id string) (string, error)
}

// Handler turns order events into in-app notifications and, for newly
// created orders, a confirmation mail. Redis guards against duplicate
// deliveries when a message is redelivered after a consumer crash.
type Handler struct {
	Notes     Inserter
	Profiles  ProfileReader
	Locations LocationNamer
	Mail      Mailer
	Redis     *redis.Client
	Logger    *slog.Logger
}

// HandleOrderCreated processes one order.created message.
func (h *Handler) HandleOrderCreated(ctx context.Context, m kafkago.Message) error {
	var env events.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return fmt.Errorf("notify: decode envelope: %w", err)
	}
	if env.EventType != events.EventOrderCreated {
		return nil
	}
	fresh, err := h.claim(ctx, "notifier", env.EventID)
	if err != nil {
		return err
	}
	if !fresh {
		h.logger().Info("duplicate event skipped", "event_id", env.EventID)
		return nil
	}

	payload, err := events.UnwrapPayload[events.OrderCreatedPayload](env)
	if err != nil {
		return fmt.Errorf("notify: decode payload: %w", err)
	}

	_, err = h.Notes.Insert(ctx, Notification{
		UserID:  payload.UserID,
		OrderID: payload.OrderID,
		Type:    TypeOrderConfirmed,
		Title:   "Commande confirmée",
		Message: fmt.Sprintf("Votre commande %s est confirmée. Total : %s.", shortRef(payload.OrderID), formatCents(payload.TotalCents)),
	})
	if err != nil {
		return fmt.Errorf("notify: insert confirmation: %w", err)
	}

	h.sendConfirmation(ctx, payload)
	return nil
}

// HandleStatusChanged processes one order.status_changed message.
func (h *Handler) HandleStatusChanged(ctx context.Context, m kafkago.Message) error {
	var env events.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return fmt.Errorf("notify: decode envelope: %w", err)
	}
	if env.EventType != events.EventOrderStatusChange {
		return nil
	}
	fresh, err := h.claim(ctx, "notifier", env.EventID)
	if err != nil {
		return err
	}
	if !fresh {
		return nil
	}

	payload, err := events.UnwrapPayload[events.OrderStatusChangedPayload](env)
	if err != nil {
		return fmt.Errorf("notify: decode payload: %w", err)
	}

	_, err = h.Notes.Insert(ctx, Notification{
		UserID:  payload.UserID,
		OrderID: payload.OrderID,
		Type:    TypeOrderStatus,
		Title:   "Commande mise à jour",
		Message: statusMessage(payload.OrderID, payload.NewStatus),
	})
	if err != nil {
		return fmt.Errorf("notify: insert status change: %w", err)
	}
	return nil
}

// claim marks an event as processed. Returns false when another
// delivery already claimed it. Without redis every delivery is fresh.
func (h *Handler) claim(ctx context.Context, consumer, eventID string) (bool, error) {
	if h.Redis == nil {
		return true, nil
	}
	key := fmt.Sprintf(redisx.KeyDedup, consumer, eventID)
	ok, err := h.Redis.SetNX(ctx, key, time.Now().UTC().Format(time.RFC3339), redisx.TTLDedup).Result()
	if err != nil {
		return false, fmt.Errorf("notify: dedup claim: %w", err)
	}
	return ok, nil
}

// Mail failures are logged, not retried: the in-app notification is the
// durable record and a redelivered message would double-charge SMTP.
func (h *Handler) sendConfirmation(ctx context.Context, p events.OrderCreatedPayload) {
	if h.Mail == nil || h.Profiles == nil {
		return
	}
	profile, err := h.Profiles.Get(ctx, p.UserID)
	if errors.Is(err, auth.ErrProfileNotFound) {
		h.logger().Warn("no profile for confirmation mail", "user_id", p.UserID)
		return
	}
	if err != nil {
		h.logger().Error("profile lookup failed", "user_id", p.UserID, "error", err)
		return
	}

	data := ConfirmationData{
		CustomerName: profile.DisplayName,
		OrderRef:     shortRef(p.OrderID),
		TotalCents:   p.TotalCents,
	}
	for _, l := range p.Lines {
		data.Lines = append(data.Lines, ConfirmationLine{Name: l.Name, Quantity: l.Quantity, PriceCents: l.PriceCents})
	}
	if h.Locations != nil {
		if name, err := h.Locations.Name(ctx, p.LocationID); err == nil {
			data.LocationName = name
		}
	}
	if err := h.Mail.SendOrderConfirmation(ctx, profile.Email, data); err != nil {
		h.logger().Error("confirmation mail failed", "order_id", p.OrderID, "error", err)
	}
}

func (h *Handler) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

func shortRef(orderID string) string {
	if len(orderID) >= 8 {
		return orderID[:8]
	}
	return orderID
}

func statusMessage(orderID, status string) string {
	ref := shortRef(orderID)
	switch status {
	case "ready":
		return fmt.Sprintf("Votre commande %s est prête pour la collecte.", ref)
	case "completed":
		return fmt.Sprintf("Votre commande %s a été remise. Merci !", ref)
	case "cancelled":
		return fmt.Sprintf("Votre commande %s a été annulée.", ref)
	default:
		return fmt.Sprintf("Votre commande %s est maintenant « %s ».", ref, status)
	}
}
