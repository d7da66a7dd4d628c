package appointment

import (
	"context"
	"time"

	domain "github.com/BruksfildServices01/salon-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/salon-scheduler/internal/dto"
	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/timezone"
)

type ListAppointmentsByMonth struct {
	ledger domain.Ledger
	tz     *timezone.Salon
}

func NewListAppointmentsByMonth(
	ledger domain.Ledger,
	tz *timezone.Salon,
) *ListAppointmentsByMonth {
	return &ListAppointmentsByMonth{
		ledger: ledger,
		tz:     tz,
	}
}

func (uc *ListAppointmentsByMonth) Execute(
	ctx context.Context,
	providerID uint,
	year int,
	month int,
) ([]dto.AppointmentListDTO, error) {

	if year < 2000 || year > 2100 || month < 1 || month > 12 {
		return nil, httperr.Validation("invalid_date")
	}

	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, uc.tz.Location())
	end := start.AddDate(0, 1, 0)

	return listCalendar(ctx, uc.ledger, providerID, start, end)
}
