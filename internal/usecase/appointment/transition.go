package appointment

import (
	"context"
	"errors"

	domain "github.com/BruksfildServices01/salon-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
	"github.com/BruksfildServices01/salon-scheduler/internal/timezone"
)

// StatusChange is the result of a status transition. Changed is false when
// the request was a no-op (cancelling an already canceled appointment).
type StatusChange struct {
	Appointment *models.Appointment
	Changed     bool
}

// transition applies target to ap and persists it with a compare-and-set on
// the status read. If another writer got there first the fresh row is re-checked.
func transition(
	ctx context.Context,
	ledger domain.Ledger,
	tz *timezone.Salon,
	ap *models.Appointment,
	target domain.Status,
) (StatusChange, error) {

	from := domain.Status(ap.Status)
	now := tz.Now()

	changed, err := domain.Apply(ap, target, now)
	if err != nil {
		return StatusChange{}, err
	}
	if !changed {
		return StatusChange{Appointment: ap}, nil
	}

	err = ledger.UpdateStatus(ctx, ap.ID, from, target, now)
	if err == nil {
		return StatusChange{Appointment: ap, Changed: true}, nil
	}
	if !errors.Is(err, domain.ErrStatusChanged) {
		return StatusChange{}, err
	}

	current, gerr := ledger.Get(ctx, ap.ID)
	if gerr != nil {
		return StatusChange{}, notFoundAs(gerr, "appointment_not_found")
	}
	if _, aerr := domain.Apply(current, target, now); aerr != nil {
		return StatusChange{}, aerr
	}
	// only a concurrent cancel can land here as a no-op
	return StatusChange{Appointment: current}, nil
}
