package appointment

import (
	"context"
	"crypto/subtle"

	domain "github.com/BruksfildServices01/salon-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/metrics"
	"github.com/BruksfildServices01/salon-scheduler/internal/timezone"
)

// CancelInput identifies who cancels: a provider (ProviderID) or the customer
// holding the appointment's manage token.
type CancelInput struct {
	AppointmentID uint
	ProviderID    uint
	ManageToken   string
}

// CancelAppointment soft-cancels. The row is kept for history.
type CancelAppointment struct {
	ledger  domain.Ledger
	tz      *timezone.Salon
	metrics *metrics.Booking
}

func NewCancelAppointment(
	ledger domain.Ledger,
	tz *timezone.Salon,
	m *metrics.Booking,
) *CancelAppointment {
	return &CancelAppointment{
		ledger:  ledger,
		tz:      tz,
		metrics: m,
	}
}

func (uc *CancelAppointment) Execute(ctx context.Context, in CancelInput) (StatusChange, error) {
	ctx, span := tracer.Start(ctx, "booking.cancel")
	defer span.End()

	ap, err := uc.ledger.Get(ctx, in.AppointmentID)
	if err != nil {
		return StatusChange{}, notFoundAs(err, "appointment_not_found")
	}

	switch {
	case in.ProviderID != 0:
		if ap.ProviderID != in.ProviderID {
			return StatusChange{}, httperr.NotFound("appointment_not_found")
		}
	case in.ManageToken == "" ||
		subtle.ConstantTimeCompare([]byte(in.ManageToken), []byte(ap.ManageToken)) != 1:
		return StatusChange{}, httperr.NotFound("appointment_not_found")
	}

	res, err := transition(ctx, uc.ledger, uc.tz, ap, domain.StatusCanceled)
	if err != nil {
		return StatusChange{}, err
	}
	if res.Changed {
		uc.metrics.ObserveStatusChange(string(domain.StatusCanceled))
	}
	return res, nil
}
