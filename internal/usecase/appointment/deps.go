package appointment

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"

	domain "github.com/BruksfildServices01/salon-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
)

var tracer = otel.Tracer("salon-scheduler/usecase/appointment")

// HoursProvider resolves a provider's working hours on a date.
type HoursProvider interface {
	For(ctx context.Context, salonID, providerID uint, day time.Time) (domain.WorkingHours, bool, error)
}

// notFoundAs turns a repository miss into a NotFound business error with code.
func notFoundAs(err error, code string) error {
	if errors.Is(err, domain.ErrNotFound) {
		return httperr.NotFound(code)
	}
	return err
}
