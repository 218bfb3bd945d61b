package notify

import (
	"context"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FilBrou/grandprix-grab-go-sub000/internal/auth"
	"github.com/FilBrou/grandprix-grab-go-sub000/internal/events"
	kafkax "github.com/FilBrou/grandprix-grab-go-sub000/internal/kafka"
)

type recordedMail struct {
	to   string
	data ConfirmationData
}

type fakeMailer struct{ sent []recordedMail }

func (f *fakeMailer) SendOrderConfirmation(ctx context.Context, to string, data ConfirmationData) error {
	f.sent = append(f.sent, recordedMail{to: to, data: data})
	return nil
}

type staticProfiles struct{}

func (staticProfiles) Get(ctx context.Context, userID string) (auth.Profile, error) {
	return auth.Profile{UserID: userID, Email: "gilles@example.com", DisplayName: "Gilles"}, nil
}

func message(t *testing.T, eventType string, payload any) kafkago.Message {
	t.Helper()
	env := events.Envelope{
		EventID:      "ev-1",
		EventType:    eventType,
		EventVersion: 1,
		OccurredAt:   time.Now().UTC(),
		Producer:     "test",
		Payload:      kafkax.MustMarshal(payload),
	}
	return kafkago.Message{Value: kafkax.MustMarshal(env)}
}

func TestHandleOrderCreated(t *testing.T) {
	notes := NewMemory()
	mail := &fakeMailer{}
	h := &Handler{Notes: notes, Profiles: staticProfiles{}, Mail: mail}

	msg := message(t, events.EventOrderCreated, events.OrderCreatedPayload{
		OrderID:    "11111111-2222-3333-4444-555555555555",
		UserID:     "u1",
		TotalCents: 2500,
		Lines:      []events.LineQty{{ItemID: "cap", Name: "Casquette", Quantity: 1, PriceCents: 2500}},
	})
	require.NoError(t, h.HandleOrderCreated(context.Background(), msg))

	all := notes.All()
	require.Len(t, all, 1)
	assert.Equal(t, TypeOrderConfirmed, all[0].Type)
	assert.Equal(t, "u1", all[0].UserID)
	assert.Contains(t, all[0].Message, "25.00 $")

	require.Len(t, mail.sent, 1)
	assert.Equal(t, "gilles@example.com", mail.sent[0].to)
	assert.Equal(t, "11111111", mail.sent[0].data.OrderRef)
}

func TestHandleOrderCreatedSkipsOtherEvents(t *testing.T) {
	notes := NewMemory()
	h := &Handler{Notes: notes}

	msg := message(t, events.EventItemUpdated, events.ItemUpdatedPayload{ItemID: "cap"})
	require.NoError(t, h.HandleOrderCreated(context.Background(), msg))
	assert.Empty(t, notes.All())
}

func TestHandleStatusChanged(t *testing.T) {
	notes := NewMemory()
	h := &Handler{Notes: notes}

	msg := message(t, events.EventOrderStatusChange, events.OrderStatusChangedPayload{
		OrderID:   "11111111-2222-3333-4444-555555555555",
		UserID:    "u1",
		OldStatus: "confirmed",
		NewStatus: "ready",
	})
	require.NoError(t, h.HandleStatusChanged(context.Background(), msg))

	all := notes.All()
	require.Len(t, all, 1)
	assert.Equal(t, TypeOrderStatus, all[0].Type)
	assert.Contains(t, all[0].Message, "prête")
}
