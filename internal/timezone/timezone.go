package timezone

import (
	"time"

	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
)

const DefaultTimezone = "America/Sao_Paulo"

const (
	DateLayout     = "2006-01-02"
	TimeLayout     = "15:04"
	DateTimeLayout = "2006-01-02 15:04"
)

func IsValid(tz string) bool {
	if tz == "" {
		return false
	}
	_, err := time.LoadLocation(tz)
	return err == nil
}

// Location resolves tz, falling back to DefaultTimezone.
func Location(tz string) *time.Location {
	if IsValid(tz) {
		if loc, err := time.LoadLocation(tz); err == nil {
			return loc
		}
	}

	loc, _ := time.LoadLocation(DefaultTimezone)
	return loc
}

// Clock returns the current time. Tests replace it.
type Clock func() time.Time

func SystemClock() time.Time {
	return time.Now()
}

// Salon holds the single configured salon timezone.
type Salon struct {
	loc   *time.Location
	clock Clock
}

func NewSalon(tz string, clock Clock) *Salon {
	if clock == nil {
		clock = SystemClock
	}
	return &Salon{loc: Location(tz), clock: clock}
}

func (s *Salon) Location() *time.Location { return s.loc }

func (s *Salon) Now() time.Time {
	return s.clock().In(s.loc)
}

func (s *Salon) ParseDate(date string) (time.Time, error) {
	d, err := time.ParseInLocation(DateLayout, date, s.loc)
	if err != nil {
		return time.Time{}, httperr.Validation("invalid_date")
	}
	return d, nil
}

func (s *Salon) ParseDateTime(date, hhmm string) (time.Time, error) {
	t, err := time.ParseInLocation(DateTimeLayout, date+" "+hhmm, s.loc)
	if err != nil {
		return time.Time{}, httperr.Validation("invalid_date_or_time")
	}
	return t, nil
}

// SameDay reports whether a and b fall on the same calendar day in the salon timezone.
func (s *Salon) SameDay(a, b time.Time) bool {
	a, b = a.In(s.loc), b.In(s.loc)
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}
