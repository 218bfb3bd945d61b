// Package placementlog keeps a durable audit trail of order placements.
//
// Every placement writes one row per lifecycle transition, so the log answers
// both "where did placement X stop" after a crash and "what happened to my
// order" when support investigates a complaint.
package placementlog

import (
	"context"
	"time"
)

// Status is the lifecycle state of a placement at the time a row is written.
type Status string

const (
	StatusStarted      Status = "STARTED"
	StatusStepDone     Status = "STEP_DONE"
	StatusCompleted    Status = "COMPLETED"
	StatusCompensating Status = "COMPENSATING"
	StatusFailed       Status = "FAILED"
)

// Entry is a single row in the placement log. Rows are append-only.
type Entry struct {
	// PlacementID identifies one placement attempt; it equals the order ID
	// so the log joins with business data.
	PlacementID string

	UserID string

	Status Status

	// CurrentStep names the step that just ran or failed.
	CurrentStep string

	// Payload is the JSON-serialised cart that started the placement.
	// Written once on STARTED, empty after.
	Payload string

	// ErrorMessage carries the failure detail on FAILED/COMPENSATING rows.
	ErrorMessage string

	// RequestID links the row to the HTTP request that triggered it.
	RequestID string

	UpdatedAt time.Time
}

// Repository stores and queries placement log entries.
type Repository interface {
	Save(ctx context.Context, e Entry) error
	Latest(ctx context.Context, placementID string) (Entry, error)
	History(ctx context.Context, placementID string) ([]Entry, error)
}
