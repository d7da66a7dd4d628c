package appointment

import (
	"time"

	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
)

// WorkingHours is a validated daily opening window in whole hours, 0 <= Opening < Closing <= 24.
type WorkingHours struct {
	Opening int
	Closing int
}

func NewWorkingHours(opening, closing int) (WorkingHours, error) {
	if opening < 0 || closing > 24 || opening >= closing {
		return WorkingHours{}, httperr.Validation("invalid_working_hours")
	}
	return WorkingHours{Opening: opening, Closing: closing}, nil
}

func (w WorkingHours) OpeningMinute() int { return w.Opening * 60 }
func (w WorkingHours) ClosingMinute() int { return w.Closing * 60 }

// Contains reports whether [startMinute, endMinute) fits inside the window.
func (w WorkingHours) Contains(startMinute, endMinute int) bool {
	return startMinute >= w.OpeningMinute() && endMinute <= w.ClosingMinute() && startMinute < endMinute
}

// ResolveWorkingHours picks the window that applies to providerID on weekday.
// Precedence: provider+weekday, provider, salon+weekday, salon.
// Rows with an invalid window are ignored. ok is false when the provider is closed.
func ResolveWorkingHours(rows []models.WorkingHours, providerID uint, weekday time.Weekday) (WorkingHours, bool) {
	var best *models.WorkingHours
	bestRank := 0

	for i := range rows {
		r := &rows[i]
		rank := rankRow(r, providerID, int(weekday))
		if rank == 0 {
			continue
		}
		if _, err := NewWorkingHours(r.OpeningHour, r.ClosingHour); err != nil {
			continue
		}
		if rank > bestRank {
			best, bestRank = r, rank
		}
	}

	if best == nil {
		return WorkingHours{}, false
	}
	return WorkingHours{Opening: best.OpeningHour, Closing: best.ClosingHour}, true
}

func rankRow(r *models.WorkingHours, providerID uint, weekday int) int {
	if r.Weekday != nil && *r.Weekday != weekday {
		return 0
	}
	dayMatch := r.Weekday != nil

	switch {
	case r.ProviderID != nil && *r.ProviderID == providerID:
		if dayMatch {
			return 4
		}
		return 3
	case r.ProviderID == nil:
		if dayMatch {
			return 2
		}
		return 1
	}
	return 0
}
