package checkout

import (
	"context"
	"log/slog"
	"time"

	"github.com/FilBrou/grandprix-grab-go-sub000/internal/checkout/placementlog"
)

// Step is a single unit of work in a placement. Each step must be able
// to undo its own effects.
type Step interface {
	Name() string
	Execute(ctx context.Context) error
	Compensate(ctx context.Context) error
}

// saga runs steps sequentially and, on failure, compensates the ones
// that already succeeded in reverse order. Every transition is written
// to the placement log before control moves on.
type saga struct {
	placementID string
	userID      string
	requestID   string
	payload     string
	log         placementlog.Repository
	logger      *slog.Logger
}

func (s *saga) run(ctx context.Context, steps []Step) error {
	s.record(ctx, placementlog.StatusStarted, "", "", s.payload)

	var done []Step
	for _, step := range steps {
		if err := step.Execute(ctx); err != nil {
			s.logger.Warn("placement step failed", "placement_id", s.placementID, "step", step.Name(), "error", err)
			s.record(ctx, placementlog.StatusCompensating, step.Name(), err.Error(), "")
			s.rollback(ctx, done)
			s.record(ctx, placementlog.StatusFailed, step.Name(), err.Error(), "")
			return err
		}
		done = append(done, step)
		s.record(ctx, placementlog.StatusStepDone, step.Name(), "", "")
	}

	s.record(ctx, placementlog.StatusCompleted, "", "", "")
	return nil
}

func (s *saga) rollback(ctx context.Context, done []Step) {
	for i := len(done) - 1; i >= 0; i-- {
		step := done[i]
		if err := step.Compensate(ctx); err != nil {
			// Nothing left to do automatically; the log row plus this
			// line are what the operator works from.
			s.logger.Error("placement compensation failed", "placement_id", s.placementID, "step", step.Name(), "error", err)
			s.record(ctx, placementlog.StatusCompensating, step.Name(), "compensation failed: "+err.Error(), "")
		}
	}
}

// Log writes must not fail the placement; the order flow outlives a
// broken audit trail.
func (s *saga) record(ctx context.Context, status placementlog.Status, step, errMsg, payload string) {
	err := s.log.Save(ctx, placementlog.Entry{
		PlacementID:  s.placementID,
		UserID:       s.userID,
		Status:       status,
		CurrentStep:  step,
		Payload:      payload,
		ErrorMessage: errMsg,
		RequestID:    s.requestID,
		UpdatedAt:    time.Now(),
	})
	if err != nil {
		s.logger.Error("placement log write failed", "placement_id", s.placementID, "error", err)
	}
}
