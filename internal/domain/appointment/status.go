package appointment

import "github.com/BruksfildServices01/salon-scheduler/internal/httperr"

// ===============================
// Appointment Status
// ===============================

type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusCompleted Status = "completed"
	StatusCanceled  Status = "canceled"
	StatusNoShow    Status = "no_show"
)

func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusScheduled, StatusCompleted, StatusCanceled, StatusNoShow:
		return st, nil
	}
	return "", httperr.Validation("invalid_status")
}

// IsTerminal reports whether no further transition is allowed.
func (s Status) IsTerminal() bool {
	return s != StatusScheduled
}

// ===============================
// Validations
// ===============================

func CanComplete(current Status) error {
	if current != StatusScheduled {
		return httperr.ErrBusiness("invalid_state")
	}
	return nil
}

func CanMarkNoShow(current Status) error {
	if current != StatusScheduled {
		return httperr.ErrBusiness("invalid_state")
	}
	return nil
}

// CanCancel returns alreadyCanceled=true when the appointment is canceled already,
// which callers treat as a successful no-op.
func CanCancel(current Status) (alreadyCanceled bool, err error) {
	switch current {
	case StatusScheduled:
		return false, nil
	case StatusCanceled:
		return true, nil
	}
	return false, httperr.ErrBusiness("invalid_state")
}

func InitialStatus() Status {
	return StatusScheduled
}
