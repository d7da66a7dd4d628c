package appointment

import (
	"context"

	domain "github.com/BruksfildServices01/salon-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/metrics"
	"github.com/BruksfildServices01/salon-scheduler/internal/timezone"
)

// UpdateAppointmentStatus is the provider-side status change: complete, no_show or cancel.
type UpdateAppointmentStatus struct {
	ledger  domain.Ledger
	tz      *timezone.Salon
	metrics *metrics.Booking
}

func NewUpdateAppointmentStatus(
	ledger domain.Ledger,
	tz *timezone.Salon,
	m *metrics.Booking,
) *UpdateAppointmentStatus {
	return &UpdateAppointmentStatus{
		ledger:  ledger,
		tz:      tz,
		metrics: m,
	}
}

func (uc *UpdateAppointmentStatus) Execute(
	ctx context.Context,
	providerID uint,
	appointmentID uint,
	target domain.Status,
) (StatusChange, error) {

	if target == domain.StatusScheduled {
		return StatusChange{}, httperr.Validation("invalid_status")
	}

	ap, err := uc.ledger.Get(ctx, appointmentID)
	if err != nil {
		return StatusChange{}, notFoundAs(err, "appointment_not_found")
	}
	if ap.ProviderID != providerID {
		return StatusChange{}, httperr.NotFound("appointment_not_found")
	}

	res, err := transition(ctx, uc.ledger, uc.tz, ap, target)
	if err != nil {
		return StatusChange{}, err
	}
	if res.Changed {
		uc.metrics.ObserveStatusChange(string(target))
	}
	return res, nil
}
