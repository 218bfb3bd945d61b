package events

import (
	"encoding/json"
	"time"

	kafkax "github.com/FilBrou/grandprix-grab-go-sub000/internal/kafka"
)

const (
	EventItemUpdated       = "ItemUpdated"
	EventOrderCreated      = "OrderCreated"
	EventOrderStatusChange = "OrderStatusChanged"
)

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	RequestID     string          `json:"request_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

// UnwrapPayload decodes an envelope's payload into a concrete event type.
func UnwrapPayload[T any](env Envelope) (T, error) {
	return kafkax.UnwrapPayload[T](env.Payload)
}

// ---- Payload types per event ----

type LineQty struct {
	ItemID     string `json:"item_id"`
	Name       string `json:"name"`
	Quantity   int    `json:"quantity"`
	PriceCents int    `json:"price_cents"`
}

type ItemUpdatedPayload struct {
	ItemID     string `json:"item_id"`
	Name       string `json:"name"`
	Stock      int    `json:"stock"`
	Available  bool   `json:"available"`
	PriceCents int    `json:"price_cents"`
}

type OrderCreatedPayload struct {
	OrderID    string    `json:"order_id"`
	ExternalID string    `json:"external_id"`
	UserID     string    `json:"user_id"`
	LocationID string    `json:"location_id"`
	Lines      []LineQty `json:"lines"`
	TotalCents int       `json:"total_cents"`
}

type OrderStatusChangedPayload struct {
	OrderID   string `json:"order_id"`
	UserID    string `json:"user_id"`
	OldStatus string `json:"old_status"`
	NewStatus string `json:"new_status"`
}
