package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/BruksfildServices01/salon-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/salon-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/salon-scheduler/internal/metrics"
)

const sweepBatch = 200

// Auditor accepts audit events without blocking.
type Auditor interface {
	Dispatch(ev audit.Event)
}

// CompletionWorker marks scheduled appointments as completed once they ended
// more than grace ago. Providers can still flag no-shows inside the grace window.
type CompletionWorker struct {
	ledger   domain.Ledger
	audit    Auditor
	metrics  *metrics.Booking
	log      zerolog.Logger
	interval time.Duration
	grace    time.Duration
	now      func() time.Time
}

func NewCompletionWorker(
	ledger domain.Ledger,
	auditor Auditor,
	m *metrics.Booking,
	log zerolog.Logger,
	interval time.Duration,
	grace time.Duration,
) *CompletionWorker {
	return &CompletionWorker{
		ledger:   ledger,
		audit:    auditor,
		metrics:  m,
		log:      log,
		interval: interval,
		grace:    grace,
		now:      time.Now,
	}
}

// Start blocks until ctx is done.
func (w *CompletionWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := w.Sweep(ctx)
			if err != nil && ctx.Err() == nil {
				w.log.Error().Err(err).Msg("completion sweep failed")
				continue
			}
			if n > 0 {
				w.log.Info().Int("completed", n).Msg("completion sweep")
			}
		}
	}
}

// Sweep completes one batch and returns how many rows changed.
func (w *CompletionWorker) Sweep(ctx context.Context) (int, error) {
	now := w.now()
	cutoff := now.Add(-w.grace)

	ended, err := w.ledger.ListEndedScheduled(ctx, cutoff, sweepBatch)
	if err != nil {
		return 0, fmt.Errorf("list ended appointments: %w", err)
	}

	done := 0
	for i := range ended {
		ap := &ended[i]

		err := w.ledger.UpdateStatus(ctx, ap.ID, domain.StatusScheduled, domain.StatusCompleted, now)
		switch {
		case errors.Is(err, domain.ErrStatusChanged), errors.Is(err, domain.ErrNotFound):
			// someone else touched it first
			continue
		case err != nil:
			w.metrics.AutoCompleted(done)
			return done, fmt.Errorf("complete appointment %d: %w", ap.ID, err)
		}

		done++
		if w.audit != nil {
			id := ap.ID
			w.audit.Dispatch(audit.Event{
				SalonID:  ap.SalonID,
				Action:   audit.ActionAppointmentCompleted,
				Entity:   "appointment",
				EntityID: &id,
				Metadata: map[string]any{"auto": true},
			})
		}
	}

	w.metrics.AutoCompleted(done)
	return done, nil
}
