package appointment

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	domain "github.com/BruksfildServices01/salon-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/metrics"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
	"github.com/BruksfildServices01/salon-scheduler/internal/timezone"
)

const maxCommentLength = 255

// ======================================================
// INPUT
// ======================================================

type CommitInput struct {
	ProviderID uint
	ServiceID  uint
	Date       string // YYYY-MM-DD
	Time       string // HH:MM
	Customer   domain.Customer
	Comment    string
}

type CommitConfig struct {
	MinAdvance time.Duration
	Timeout    time.Duration
}

// ======================================================
// USE CASE
// ======================================================

// CommitBooking is the only path that creates appointments, for customers and
// providers alike. It writes nothing but the ledger row and, for guests, the
// guest contact.
type CommitBooking struct {
	catalog domain.Catalog
	ledger  domain.Ledger
	hours   HoursProvider
	tz      *timezone.Salon
	cfg     CommitConfig
	metrics *metrics.Booking
}

func NewCommitBooking(
	catalog domain.Catalog,
	ledger domain.Ledger,
	hours HoursProvider,
	tz *timezone.Salon,
	cfg CommitConfig,
	m *metrics.Booking,
) *CommitBooking {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 3 * time.Second
	}
	return &CommitBooking{
		catalog: catalog,
		ledger:  ledger,
		hours:   hours,
		tz:      tz,
		cfg:     cfg,
		metrics: m,
	}
}

// ======================================================
// EXECUTE
// ======================================================

func (uc *CommitBooking) Execute(ctx context.Context, in CommitInput) (*models.Appointment, error) {
	started := time.Now()

	ctx, span := tracer.Start(ctx, "booking.commit")
	defer span.End()
	span.SetAttributes(
		attribute.Int("provider_id", int(in.ProviderID)),
		attribute.Int("service_id", int(in.ServiceID)),
		attribute.String("date", in.Date),
		attribute.String("time", in.Time),
	)

	ap, err := uc.commit(ctx, in)

	uc.metrics.ObserveCommit(commitOutcome(err), time.Since(started))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return ap, err
}

func (uc *CommitBooking) commit(ctx context.Context, in CommitInput) (*models.Appointment, error) {

	// --------------------------------------------------
	// 1. Provider and service
	// --------------------------------------------------
	provider, err := uc.catalog.GetProvider(ctx, in.ProviderID)
	if err != nil {
		return nil, notFoundAs(err, "provider_not_found")
	}
	if !provider.Active {
		return nil, httperr.NotFound("provider_not_found")
	}

	svc, err := uc.catalog.GetService(ctx, in.ServiceID)
	if err != nil {
		return nil, notFoundAs(err, "service_not_found")
	}
	if svc.ProviderID != provider.ID {
		return nil, httperr.Validation("service_not_offered")
	}
	if !svc.Available() {
		return nil, httperr.Validation("service_unavailable")
	}

	// --------------------------------------------------
	// 2. Requested time, in the salon timezone
	// --------------------------------------------------
	start, err := uc.tz.ParseDateTime(in.Date, in.Time)
	if err != nil {
		return nil, err
	}
	end := start.Add(time.Duration(svc.DurationMinutes) * time.Minute)

	if start.Before(uc.tz.Now().Add(uc.cfg.MinAdvance)) {
		return nil, httperr.Validation("too_soon")
	}

	hours, open, err := uc.hours.For(ctx, provider.SalonID, provider.ID, start)
	if err != nil {
		return nil, err
	}
	dayStart, dayEnd := domain.DayBounds(start)
	startMinute, endMinute := domain.MinuteOfDay(start, dayStart), domain.MinuteOfDay(end, dayStart)
	if !open || end.After(dayEnd) || !hours.Contains(startMinute, endMinute) {
		return nil, httperr.Validation("outside_working_hours")
	}

	// --------------------------------------------------
	// 3. Customer
	// --------------------------------------------------
	if err := domain.ValidateCustomer(in.Customer); err != nil {
		return nil, err
	}
	comment := strings.TrimSpace(in.Comment)
	if len(comment) > maxCommentLength {
		return nil, httperr.Validation("comment_too_long")
	}

	ap := &models.Appointment{
		SalonID:          provider.SalonID,
		ProviderID:       provider.ID,
		ServiceID:        svc.ID,
		AppointmentStart: start,
		AppointmentEnd:   end,
		Price:            svc.Price,
		Comment:          comment,
		Status:           string(domain.InitialStatus()),
		ManageToken:      uuid.NewString(),
	}

	switch c := in.Customer.(type) {
	case domain.Registered:
		user, err := uc.catalog.GetUser(ctx, c.UserID)
		if err != nil {
			return nil, notFoundAs(err, "customer_not_found")
		}
		ap.UserID = &user.ID
	case domain.Guest:
		client, err := uc.catalog.GetOrCreateGuest(ctx, provider.SalonID, c)
		if err != nil {
			return nil, err
		}
		ap.ClientID = &client.ID
	}

	// --------------------------------------------------
	// 4. Atomic insert, bounded
	// --------------------------------------------------
	commitCtx, cancel := context.WithTimeout(ctx, uc.cfg.Timeout)
	defer cancel()

	if err := uc.ledger.InsertIfNoConflict(commitCtx, ap); err != nil {
		if ctx.Err() == nil && errors.Is(commitCtx.Err(), context.DeadlineExceeded) {
			return nil, httperr.RetryableConflict("commit_timeout")
		}
		return nil, err
	}

	return ap, nil
}

func commitOutcome(err error) string {
	if err == nil {
		return "ok"
	}
	kind, ok := httperr.KindOf(err)
	if !ok {
		return "error"
	}
	switch kind {
	case httperr.KindConflict:
		return "conflict"
	case httperr.KindNotFound:
		return "not_found"
	}
	return "invalid"
}
