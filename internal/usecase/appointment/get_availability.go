package appointment

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"

	"github.com/BruksfildServices01/salon-scheduler/internal/cache"
	domain "github.com/BruksfildServices01/salon-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/metrics"
	"github.com/BruksfildServices01/salon-scheduler/internal/timezone"
)

const maxDurationMinutes = 24 * 60

type AvailabilityQuery struct {
	ProviderID uint
	// ServiceID wins over DurationMinutes when set.
	ServiceID       uint
	DurationMinutes int
	Date            string
}

type AvailabilityConfig struct {
	GranularityMinutes int
	MinAdvance         time.Duration
}

type GetAvailability struct {
	catalog domain.Catalog
	ledger  domain.Ledger
	hours   HoursProvider
	cache   cache.SlotCache
	tz      *timezone.Salon
	cfg     AvailabilityConfig
	metrics *metrics.Booking
	log     zerolog.Logger
}

func NewGetAvailability(
	catalog domain.Catalog,
	ledger domain.Ledger,
	hours HoursProvider,
	slotCache cache.SlotCache,
	tz *timezone.Salon,
	cfg AvailabilityConfig,
	m *metrics.Booking,
	log zerolog.Logger,
) *GetAvailability {
	if slotCache == nil {
		slotCache = cache.Noop{}
	}
	return &GetAvailability{
		catalog: catalog,
		ledger:  ledger,
		hours:   hours,
		cache:   slotCache,
		tz:      tz,
		cfg:     cfg,
		metrics: m,
		log:     log,
	}
}

// Execute returns the bookable "HH:MM" starts. Past starts are dropped when Date is today.
func (uc *GetAvailability) Execute(ctx context.Context, q AvailabilityQuery) ([]string, error) {
	ctx, span := tracer.Start(ctx, "availability.execute")
	defer span.End()

	day, err := uc.tz.ParseDate(q.Date)
	if err != nil {
		return nil, err
	}

	provider, err := uc.catalog.GetProvider(ctx, q.ProviderID)
	if err != nil {
		return nil, notFoundAs(err, "provider_not_found")
	}
	if !provider.Active {
		return nil, httperr.NotFound("provider_not_found")
	}

	duration := q.DurationMinutes
	if q.ServiceID != 0 {
		svc, err := uc.catalog.GetService(ctx, q.ServiceID)
		if err != nil {
			return nil, notFoundAs(err, "service_not_found")
		}
		if svc.ProviderID != provider.ID {
			return nil, httperr.Validation("service_not_offered")
		}
		if !svc.Available() {
			return nil, httperr.Validation("service_unavailable")
		}
		duration = svc.DurationMinutes
	}
	if duration <= 0 || duration > maxDurationMinutes {
		return nil, httperr.Validation("invalid_duration")
	}

	span.SetAttributes(
		attribute.Int("provider_id", int(provider.ID)),
		attribute.String("date", q.Date),
		attribute.Int("duration_minutes", duration),
	)

	now := uc.tz.Now()
	dayStart, dayEnd := domain.DayBounds(day)
	if !dayEnd.After(now) {
		return []string{}, nil
	}

	slots, err := uc.slots(ctx, provider.SalonID, provider.ID, day, q.Date, duration)
	if err != nil {
		return nil, err
	}

	if uc.tz.SameDay(now, day) {
		slots = domain.NotBefore(slots, earliestMinute(now.Add(uc.cfg.MinAdvance), dayStart))
	}

	return domain.FormatSlots(slots), nil
}

// slots returns the day's slots before the "not in the past" filter, cached per provider/day/duration.
func (uc *GetAvailability) slots(
	ctx context.Context,
	salonID, providerID uint,
	day time.Time,
	date string,
	duration int,
) ([]domain.Slot, error) {

	// The generation is read before the ledger so a list computed across a
	// booking's invalidation is stored under a generation nobody reads.
	gen, err := uc.cache.Generation(ctx, providerID, date)
	cacheable := err == nil
	if err != nil {
		uc.log.Warn().Err(err).Msg("slot cache read failed")
	} else if cached, found, err := uc.cache.Get(ctx, providerID, date, gen, duration); err != nil {
		uc.log.Warn().Err(err).Msg("slot cache read failed")
	} else if found {
		if slots, ok := parseSlots(cached); ok {
			uc.metrics.ObserveAvailability(true)
			return slots, nil
		}
	}
	uc.metrics.ObserveAvailability(false)

	hours, open, err := uc.hours.For(ctx, salonID, providerID, day)
	if err != nil {
		return nil, err
	}

	slots := []domain.Slot{}
	if open {
		dayStart, dayEnd := domain.DayBounds(day)
		booked, err := uc.ledger.FindByProviderAndDateRange(ctx, providerID, dayStart, dayEnd)
		if err != nil {
			return nil, err
		}
		slots = domain.ComputeSlots(hours, duration, domain.BusyIntervals(booked, dayStart), uc.cfg.GranularityMinutes)
	}

	if cacheable {
		if err := uc.cache.Set(ctx, providerID, date, gen, duration, domain.FormatSlots(slots)); err != nil {
			uc.log.Warn().Err(err).Msg("slot cache write failed")
		}
	}
	return slots, nil
}

// Invalidate drops cached availability for the provider on the day of t.
// It runs even when ctx is already canceled, since the write it follows has committed.
func (uc *GetAvailability) Invalidate(ctx context.Context, providerID uint, t time.Time) {
	ctx = context.WithoutCancel(ctx)
	date := t.In(uc.tz.Location()).Format(timezone.DateLayout)
	if err := uc.cache.InvalidateDay(ctx, providerID, date); err != nil {
		uc.log.Warn().Err(err).Uint("provider_id", providerID).Str("date", date).Msg("slot cache invalidation failed")
	}
}

// earliestMinute is the first whole wall-clock minute of the day at or after t.
func earliestMinute(t, dayStart time.Time) int {
	m := domain.MinuteOfDay(t, dayStart)
	if !t.Before(dayStart) && m < 24*60 && (t.Second() != 0 || t.Nanosecond() != 0) {
		m++
	}
	return m
}

func parseSlots(raw []string) ([]domain.Slot, bool) {
	out := make([]domain.Slot, 0, len(raw))
	for _, s := range raw {
		slot, err := domain.ParseSlot(s)
		if err != nil {
			return nil, false
		}
		out = append(out, slot)
	}
	return out, true
}
