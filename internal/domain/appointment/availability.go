package appointment

import (
	"fmt"
	"time"

	"github.com/BruksfildServices01/salon-scheduler/internal/models"
)

const minutesPerDay = 24 * 60

type AvailabilityInput struct {
	ProviderID      uint
	ServiceID       uint
	DurationMinutes int
	Date            time.Time
}

// Interval is a half-open busy range [Start, End) in minutes since midnight.
type Interval struct {
	Start int
	End   int
}

// Slot is a bookable start time in minutes since midnight.
type Slot int

func (s Slot) String() string {
	return fmt.Sprintf("%02d:%02d", int(s)/60, int(s)%60)
}

func (s Slot) Minute() int { return int(s) }

// ParseSlot parses "HH:MM" into a Slot.
func ParseSlot(hhmm string) (Slot, error) {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return 0, err
	}
	return Slot(t.Hour()*60 + t.Minute()), nil
}

// ComputeSlots lists every start s, stepping by granularity from opening, such
// that [s, s+duration) ends by closing and overlaps no busy interval.
// The result is ascending and never nil.
func ComputeSlots(hours WorkingHours, durationMinutes int, busy []Interval, granularityMinutes int) []Slot {
	slots := make([]Slot, 0)
	if durationMinutes <= 0 || granularityMinutes <= 0 {
		return slots
	}

	opening, closing := hours.OpeningMinute(), hours.ClosingMinute()
	if durationMinutes > closing-opening {
		return slots
	}
	for s := opening; s+durationMinutes <= closing; s += granularityMinutes {
		e := s + durationMinutes
		if overlapsAny(s, e, busy) {
			continue
		}
		slots = append(slots, Slot(s))
	}

	return slots
}

func overlapsAny(s, e int, busy []Interval) bool {
	for _, b := range busy {
		if s < b.End && e > b.Start {
			return true
		}
	}
	return false
}

// NotBefore drops slots earlier than minute.
func NotBefore(slots []Slot, minute int) []Slot {
	out := make([]Slot, 0, len(slots))
	for _, s := range slots {
		if int(s) >= minute {
			out = append(out, s)
		}
	}
	return out
}

func FormatSlots(slots []Slot) []string {
	out := make([]string, 0, len(slots))
	for _, s := range slots {
		out = append(out, s.String())
	}
	return out
}

// ContainsSlot reports whether slot is one of slots.
func ContainsSlot(slots []Slot, slot Slot) bool {
	for _, s := range slots {
		if s == slot {
			return true
		}
	}
	return false
}

// DayBounds returns [midnight, next midnight) of day in its location.
func DayBounds(day time.Time) (time.Time, time.Time) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	return start, start.AddDate(0, 0, 1)
}

// MinuteOfDay is the wall-clock minute of t on the day starting at dayStart,
// read in dayStart's location. Instants before the day give 0 and instants
// after it give 24*60, so DST shifts never move a slot off its clock time.
func MinuteOfDay(t, dayStart time.Time) int {
	if t.Before(dayStart) {
		return 0
	}
	t = t.In(dayStart.Location())
	if !sameDate(t, dayStart) {
		return minutesPerDay
	}
	return t.Hour()*60 + t.Minute()
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// BusyIntervals turns scheduled appointments into busy ranges for the day starting at dayStart.
// Canceled, completed and no-show rows never block a slot.
func BusyIntervals(aps []models.Appointment, dayStart time.Time) []Interval {
	out := make([]Interval, 0, len(aps))
	for _, ap := range aps {
		if Status(ap.Status) != StatusScheduled {
			continue
		}
		s := MinuteOfDay(ap.AppointmentStart, dayStart)
		e := MinuteOfDay(ap.AppointmentEnd, dayStart)
		if e <= s {
			continue
		}
		out = append(out, Interval{Start: s, End: e})
	}
	return out
}
