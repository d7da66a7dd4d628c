package appointment

import (
	"time"

	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
)

// ===============================
// Domain Actions
// ===============================

// Cancel moves ap to canceled. It reports changed=false when ap was canceled already.
func Cancel(ap *models.Appointment, now time.Time) (changed bool, err error) {
	already, err := CanCancel(Status(ap.Status))
	if err != nil || already {
		return false, err
	}

	ap.Status = string(StatusCanceled)
	ap.CanceledAt = &now
	return true, nil
}

func Complete(ap *models.Appointment, now time.Time) error {
	if err := CanComplete(Status(ap.Status)); err != nil {
		return err
	}

	ap.Status = string(StatusCompleted)
	ap.CompletedAt = &now
	return nil
}

// MarkNoShow is only allowed once the appointment's end time has passed.
func MarkNoShow(ap *models.Appointment, now time.Time) error {
	if err := CanMarkNoShow(Status(ap.Status)); err != nil {
		return err
	}
	if now.Before(ap.AppointmentEnd) {
		return httperr.Validation("appointment_not_ended")
	}

	ap.Status = string(StatusNoShow)
	ap.NoShowAt = &now
	return nil
}

// Apply runs the transition to target on ap.
func Apply(ap *models.Appointment, target Status, now time.Time) (changed bool, err error) {
	switch target {
	case StatusCanceled:
		return Cancel(ap, now)
	case StatusCompleted:
		err = Complete(ap, now)
	case StatusNoShow:
		err = MarkNoShow(ap, now)
	default:
		return false, httperr.Validation("invalid_status")
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Overlaps is the half-open interval test used everywhere a booking is checked.
func Overlaps(start, end, otherStart, otherEnd time.Time) bool {
	return start.Before(otherEnd) && end.After(otherStart)
}
