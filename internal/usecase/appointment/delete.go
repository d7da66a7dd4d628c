package appointment

import (
	"context"

	domain "github.com/BruksfildServices01/salon-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
)

// DeleteAppointment hard-deletes. Only the provider management surface uses it.
type DeleteAppointment struct {
	ledger domain.Ledger
}

func NewDeleteAppointment(ledger domain.Ledger) *DeleteAppointment {
	return &DeleteAppointment{ledger: ledger}
}

// Execute returns the removed row so callers can audit it and refresh caches.
func (uc *DeleteAppointment) Execute(
	ctx context.Context,
	providerID uint,
	appointmentID uint,
) (*models.Appointment, error) {

	ap, err := uc.ledger.Get(ctx, appointmentID)
	if err != nil {
		return nil, notFoundAs(err, "appointment_not_found")
	}
	if ap.ProviderID != providerID {
		return nil, httperr.NotFound("appointment_not_found")
	}

	if err := uc.ledger.Delete(ctx, appointmentID); err != nil {
		return nil, notFoundAs(err, "appointment_not_found")
	}
	return ap, nil
}
