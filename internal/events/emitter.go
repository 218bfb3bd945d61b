package events

import (
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/FilBrou/grandprix-grab-go-sub000/internal/kafka"
)

// Publisher is what the Emitter needs from a topic-bound producer.
type Publisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

// Emitter wraps the per-topic producers and builds versioned envelopes.
// Any publisher may be nil; emitting to a nil publisher is a no-op so
// binaries wire only the topics they produce.
type Emitter struct {
	Service       string
	ItemUpdates   Publisher
	OrderCreates  Publisher
	StatusChanges Publisher
}

func (e *Emitter) ItemUpdated(requestID string, p ItemUpdatedPayload) {
	e.publish(e.ItemUpdates, EventItemUpdated, requestID, p.ItemID, p)
}

func (e *Emitter) OrderCreated(requestID string, p OrderCreatedPayload) {
	e.publish(e.OrderCreates, EventOrderCreated, requestID, p.OrderID, p)
}

func (e *Emitter) OrderStatusChanged(requestID string, p OrderStatusChangedPayload) {
	e.publish(e.StatusChanges, EventOrderStatusChange, requestID, p.OrderID, p)
}

func (e *Emitter) publish(pub Publisher, eventType, requestID, correlationID string, payload any) {
	if pub == nil {
		return
	}
	env := Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      e.Service,
		RequestID:     requestID,
		CorrelationID: correlationID,
		Payload:       kafkax.MustMarshal(payload),
	}
	pub.Publish(PartitionKey(correlationID), kafkax.MustMarshal(env),
		kafkago.Header{Key: "x-event-type", Value: []byte(eventType)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
