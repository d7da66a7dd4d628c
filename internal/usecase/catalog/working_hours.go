package catalog

import (
	"context"
	"time"

	domain "github.com/BruksfildServices01/salon-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
)

// HoursCache is the working-hours lookup used by availability and commit.
type HoursCache interface {
	For(ctx context.Context, salonID, providerID uint, day time.Time) (domain.WorkingHours, bool, error)
	Invalidate(salonID uint)
}

// DayHours is one window. A nil Weekday applies to every day.
type DayHours struct {
	Weekday *int
	Opening int
	Closing int
}

type WorkingHours struct {
	catalog domain.Catalog
	hours   HoursCache
}

func NewWorkingHours(catalog domain.Catalog, hours HoursCache) *WorkingHours {
	return &WorkingHours{catalog: catalog, hours: hours}
}

// For returns the hours a provider works on day; ok=false means closed.
func (w *WorkingHours) For(ctx context.Context, providerID uint, day time.Time) (domain.WorkingHours, bool, error) {
	provider, err := w.catalog.GetProvider(ctx, providerID)
	if err != nil {
		return domain.WorkingHours{}, false, notFoundAs(err, "provider_not_found")
	}
	return w.hours.For(ctx, provider.SalonID, provider.ID, day)
}

// List returns the provider's own rows followed by the salon defaults.
func (w *WorkingHours) List(ctx context.Context, salonID, providerID uint) ([]models.WorkingHours, error) {
	rows, err := w.catalog.ListWorkingHours(ctx, salonID)
	if err != nil {
		return nil, err
	}

	out := make([]models.WorkingHours, 0, len(rows))
	for _, r := range rows {
		if r.ProviderID == nil || *r.ProviderID == providerID {
			out = append(out, r)
		}
	}
	return out, nil
}

// Replace swaps the provider's rows for days. An empty days slice falls back
// to the salon defaults.
func (w *WorkingHours) Replace(ctx context.Context, salonID, providerID uint, days []DayHours) ([]models.WorkingHours, error) {
	seen := map[int]bool{}
	rows := make([]models.WorkingHours, 0, len(days))

	for _, d := range days {
		if _, err := domain.NewWorkingHours(d.Opening, d.Closing); err != nil {
			return nil, err
		}

		key := -1
		if d.Weekday != nil {
			if *d.Weekday < 0 || *d.Weekday > 6 {
				return nil, httperr.Validation("invalid_working_hours")
			}
			key = *d.Weekday
		}
		if seen[key] {
			return nil, httperr.Validation("invalid_working_hours")
		}
		seen[key] = true

		pid := providerID
		rows = append(rows, models.WorkingHours{
			SalonID:     salonID,
			ProviderID:  &pid,
			Weekday:     d.Weekday,
			OpeningHour: d.Opening,
			ClosingHour: d.Closing,
		})
	}

	pid := providerID
	if err := w.catalog.ReplaceWorkingHours(ctx, salonID, &pid, rows); err != nil {
		return nil, err
	}
	w.hours.Invalidate(salonID)

	return rows, nil
}
