package appointment

import (
	"context"
	"time"

	domain "github.com/BruksfildServices01/salon-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/salon-scheduler/internal/dto"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
	"github.com/BruksfildServices01/salon-scheduler/internal/timezone"
)

type ListAppointmentsByDate struct {
	ledger domain.Ledger
	tz     *timezone.Salon
}

func NewListAppointmentsByDate(
	ledger domain.Ledger,
	tz *timezone.Salon,
) *ListAppointmentsByDate {
	return &ListAppointmentsByDate{
		ledger: ledger,
		tz:     tz,
	}
}

func (uc *ListAppointmentsByDate) Execute(
	ctx context.Context,
	providerID uint,
	date string,
) ([]dto.AppointmentListDTO, error) {

	day, err := uc.tz.ParseDate(date)
	if err != nil {
		return nil, err
	}

	start, end := domain.DayBounds(day)
	return listCalendar(ctx, uc.ledger, providerID, start, end)
}

func listCalendar(
	ctx context.Context,
	ledger domain.Ledger,
	providerID uint,
	start time.Time,
	end time.Time,
) ([]dto.AppointmentListDTO, error) {

	appointments, err := ledger.ListForCalendar(ctx, providerID, start, end)
	if err != nil {
		return nil, err
	}

	out := make([]dto.AppointmentListDTO, 0, len(appointments))
	for i := range appointments {
		out = append(out, toListDTO(&appointments[i]))
	}
	return out, nil
}

func toListDTO(ap *models.Appointment) dto.AppointmentListDTO {
	out := dto.AppointmentListDTO{
		ID:           ap.ID,
		Start:        ap.AppointmentStart,
		End:          ap.AppointmentEnd,
		Status:       ap.Status,
		CustomerName: ap.CustomerName(),
		Price:        ap.Price,
		Comment:      ap.Comment,
		Guest:        ap.ClientID != nil,
	}
	if ap.Service != nil {
		out.ServiceName = ap.Service.Name
	}
	return out
}
