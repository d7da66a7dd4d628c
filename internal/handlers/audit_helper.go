package handlers

import (
	"github.com/BruksfildServices01/salon-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/salon-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
	"github.com/BruksfildServices01/salon-scheduler/internal/timezone"
)

// Auditor accepts audit events without blocking.
type Auditor interface {
	Dispatch(ev audit.Event)
}

type noopAuditor struct{}

func (noopAuditor) Dispatch(audit.Event) {}

func orNoop(a Auditor) Auditor {
	if a == nil {
		return noopAuditor{}
	}
	return a
}

func auditAppointment(a Auditor, ap *models.Appointment, actorID *uint, action string) {
	id := ap.ID
	a.Dispatch(audit.Event{
		SalonID:  ap.SalonID,
		ActorID:  actorID,
		Action:   action,
		Entity:   "appointment",
		EntityID: &id,
		Metadata: map[string]any{
			"provider_id": ap.ProviderID,
			"service_id":  ap.ServiceID,
			"start":       ap.AppointmentStart.Format(timezone.DateTimeLayout),
			"status":      ap.Status,
		},
	})
}

func statusAction(s domain.Status) string {
	switch s {
	case domain.StatusCanceled:
		return audit.ActionAppointmentCanceled
	case domain.StatusCompleted:
		return audit.ActionAppointmentCompleted
	case domain.StatusNoShow:
		return audit.ActionAppointmentNoShow
	}
	return "appointment." + string(s)
}
