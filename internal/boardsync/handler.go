package boardsync

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/FilBrou/grandprix-grab-go-sub000/internal/events"
	"github.com/FilBrou/grandprix-grab-go-sub000/internal/orders"
	"github.com/FilBrou/grandprix-grab-go-sub000/internal/redisx"
)

// Handler pushes newly created orders to the board as they arrive.
type Handler struct {
	Dispatcher *Dispatcher
	Redis      *redis.Client
	Logger     *slog.Logger
}

// HandleOrderCreated processes one order.created message. A push
// failure is logged but committed anyway: the board is a mirror, and
// the admin bulk sync endpoint can backfill missed orders.
func (h *Handler) HandleOrderCreated(ctx context.Context, m kafkago.Message) error {
	var env events.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return fmt.Errorf("boardsync: decode envelope: %w", err)
	}
	if env.EventType != events.EventOrderCreated {
		return nil
	}
	if h.Redis != nil {
		key := fmt.Sprintf(redisx.KeyDedup, "boardsync", env.EventID)
		fresh, err := h.Redis.SetNX(ctx, key, time.Now().UTC().Format(time.RFC3339), redisx.TTLDedup).Result()
		if err != nil {
			return fmt.Errorf("boardsync: dedup claim: %w", err)
		}
		if !fresh {
			return nil
		}
	}

	payload, err := events.UnwrapPayload[events.OrderCreatedPayload](env)
	if err != nil {
		return fmt.Errorf("boardsync: decode payload: %w", err)
	}

	o := orders.Order{
		ID:         payload.OrderID,
		ExternalID: payload.ExternalID,
		UserID:     payload.UserID,
		LocationID: payload.LocationID,
		Status:     orders.StatusPending,
		TotalCents: payload.TotalCents,
	}
	if err := h.Dispatcher.SyncOrder(ctx, o); err != nil {
		h.logger().Error("board sync skipped after failure", "order_id", o.ID, "error", err)
	}
	return nil
}

func (h *Handler) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}
