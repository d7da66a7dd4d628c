package wizard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/salon-scheduler/internal/dto"
	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
)

type fakeBackend struct {
	mu      sync.Mutex
	slots   map[string][]string
	commits []string // idempotency keys seen
	commit  func(CommitRequest) (*dto.AppointmentCreatedDTO, error)
	// gate, when set, blocks Commit until closed
	gate    chan struct{}
	entered chan struct{}
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		slots: map[string][]string{"2026-03-10": {"09:00", "09:15", "10:00"}},
		commit: func(r CommitRequest) (*dto.AppointmentCreatedDTO, error) {
			return &dto.AppointmentCreatedDTO{
				Appointment: models.Appointment{ID: 7, ProviderID: r.ProviderID, ServiceID: r.ServiceID, Status: "scheduled"},
				ManageToken: "tok",
			}, nil
		},
	}
}

func (f *fakeBackend) Salon(_ context.Context, slug string) (*models.Salon, error) {
	if slug != "studio" {
		return nil, httperr.NotFound("salon_not_found")
	}
	return &models.Salon{ID: 1, Slug: "studio", Name: "Studio"}, nil
}

func (f *fakeBackend) Providers(context.Context, string) ([]models.Provider, error) {
	return []models.Provider{{ID: 2, SalonID: 1, Name: "Marina", Active: true}}, nil
}

func (f *fakeBackend) Services(context.Context, uint) ([]models.Service, error) {
	return []models.Service{
		{ID: 3, ProviderID: 2, Name: "Corte", DurationMinutes: 30, Status: models.ServiceAvailable},
		{ID: 4, ProviderID: 2, Name: "Escova", DurationMinutes: 45, Status: models.ServiceUnavailable},
	}, nil
}

func (f *fakeBackend) Availability(_ context.Context, _, _ uint, date string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.slots[date]...), nil
}

func (f *fakeBackend) Commit(_ context.Context, r CommitRequest, key string) (*dto.AppointmentCreatedDTO, error) {
	f.mu.Lock()
	f.commits = append(f.commits, key)
	f.mu.Unlock()

	if f.gate != nil {
		close(f.entered)
		<-f.gate
	}
	return f.commit(r)
}

func (f *fakeBackend) setSlots(date string, slots ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.slots[date] = slots
}

func (f *fakeBackend) keys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.commits...)
}

// toConfirm walks a fresh wizard up to Confirm at 09:15.
func toConfirm(t *testing.T, f *fakeBackend) *Wizard {
	t.Helper()
	ctx := context.Background()

	w := New(f)
	n := 0
	w.newKey = func() string { n++; return fmt.Sprintf("key-%d", n) }

	require.NoError(t, w.Start(ctx, "studio"))
	require.NoError(t, w.Continue(ctx))
	require.NoError(t, w.ChooseProvider(ctx, 2))
	require.NoError(t, w.ChooseService(3))
	require.NoError(t, w.ChooseDate(ctx, "2026-03-10"))
	require.NoError(t, w.ChooseTime("09:15"))
	require.NoError(t, w.SetCustomer(Customer{Name: "Ana", Phone: "11999990000"}, ""))
	return w
}

func TestHappyPath(t *testing.T) {
	f := newFakeBackend()
	w := toConfirm(t, f)

	c, ok := w.State().(Confirm)
	require.True(t, ok)
	assert.Equal(t, "09:15", c.Time)
	assert.Equal(t, "Corte", c.Draft.Service.Name)

	require.NoError(t, w.Submit(context.Background()))

	s, ok := w.State().(Success)
	require.True(t, ok)
	assert.Equal(t, uint(7), s.Booking.ID)
	assert.Equal(t, "tok", s.Booking.ManageToken)

	require.NoError(t, w.NewBooking())
	info, ok := w.State().(SalonInfo)
	require.True(t, ok)
	assert.Equal(t, "studio", info.Salon.Slug)
}

func TestChoicesMustBeOnOffer(t *testing.T) {
	ctx := context.Background()
	w := New(newFakeBackend())

	require.NoError(t, w.Start(ctx, "studio"))
	require.NoError(t, w.Continue(ctx))
	assert.ErrorIs(t, w.ChooseProvider(ctx, 99), ErrUnknownChoice)

	require.NoError(t, w.ChooseProvider(ctx, 2))
	assert.ErrorIs(t, w.ChooseService(4), ErrUnknownChoice, "unavailable service")

	require.NoError(t, w.ChooseService(3))
	assert.ErrorIs(t, w.ChooseTime("09:00"), ErrInvalidTransition, "no date chosen yet")

	require.NoError(t, w.ChooseDate(ctx, "2026-03-10"))
	assert.ErrorIs(t, w.ChooseTime("09:05"), ErrUnknownChoice)
	assert.IsType(t, SelectDateTime{}, w.State())
}

func TestOutOfOrderOperationsRejected(t *testing.T) {
	ctx := context.Background()
	w := New(newFakeBackend())

	assert.ErrorIs(t, w.Submit(ctx), ErrInvalidTransition)
	assert.ErrorIs(t, w.Continue(ctx), ErrInvalidTransition)

	require.NoError(t, w.Start(ctx, "studio"))
	assert.ErrorIs(t, w.Back(), ErrInvalidTransition)
	assert.ErrorIs(t, w.SetCustomer(Customer{Name: "x"}, ""), ErrInvalidTransition)
	assert.ErrorIs(t, w.NewBooking(), ErrInvalidTransition)
}

func TestStartUnknownSalonKeepsState(t *testing.T) {
	w := New(newFakeBackend())
	err := w.Start(context.Background(), "nope")

	assert.True(t, httperr.IsBusiness(err, "salon_not_found"))
	assert.IsType(t, Aborted{}, w.State())
}

func TestBackDiscardsOnlyTheLeftStep(t *testing.T) {
	f := newFakeBackend()
	w := toConfirm(t, f)

	require.NoError(t, w.Back())
	dt, ok := w.State().(SelectDateTime)
	require.True(t, ok)
	assert.Equal(t, "2026-03-10", dt.Date)
	assert.Equal(t, "09:15", dt.Time)
	assert.Equal(t, []string{"09:00", "09:15", "10:00"}, dt.Slots)
	assert.Empty(t, dt.Draft.Customer.Name)
	assert.Equal(t, uint(3), dt.Draft.Service.ID)

	require.NoError(t, w.Back())
	svc, ok := w.State().(SelectService)
	require.True(t, ok)
	assert.Equal(t, uint(3), svc.Draft.Service.ID)
	assert.Equal(t, uint(2), svc.Draft.Provider.ID)
	assert.Len(t, svc.Services, 2)

	require.NoError(t, w.Back())
	sp, ok := w.State().(SelectProvider)
	require.True(t, ok)
	assert.Len(t, sp.Providers, 1)

	require.NoError(t, w.Back())
	assert.IsType(t, SalonInfo{}, w.State())
}

func TestCancelFromAnyStep(t *testing.T) {
	w := toConfirm(t, newFakeBackend())

	require.NoError(t, w.Cancel())
	assert.IsType(t, Aborted{}, w.State())
	assert.ErrorIs(t, w.Cancel(), ErrInvalidTransition)
}

func TestSubmitConflictReturnsToDateTimeWithFreshSlots(t *testing.T) {
	f := newFakeBackend()
	f.commit = func(CommitRequest) (*dto.AppointmentCreatedDTO, error) {
		return nil, httperr.Conflict("time_conflict")
	}
	w := toConfirm(t, f)
	f.setSlots("2026-03-10", "09:00", "10:00")

	err := w.Submit(context.Background())
	assert.True(t, httperr.IsBusiness(err, "time_conflict"))

	dt, ok := w.State().(SelectDateTime)
	require.True(t, ok)
	assert.Equal(t, "2026-03-10", dt.Date)
	assert.Empty(t, dt.Time)
	assert.Equal(t, []string{"09:00", "10:00"}, dt.Slots)

	// picking a new time yields a new key
	require.NoError(t, w.ChooseTime("10:00"))
	c := w.State().(Confirm)
	assert.NotEqual(t, f.keys()[0], c.IdempotencyKey())
}

func TestSubmitTransientKeepsDraftAndKey(t *testing.T) {
	f := newFakeBackend()
	calls := 0
	f.commit = func(r CommitRequest) (*dto.AppointmentCreatedDTO, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("connection reset")
		}
		return &dto.AppointmentCreatedDTO{Appointment: models.Appointment{ID: 9}}, nil
	}
	w := toConfirm(t, f)

	require.Error(t, w.Submit(context.Background()))
	assert.IsType(t, Confirm{}, w.State())

	require.NoError(t, w.Submit(context.Background()))
	assert.IsType(t, Success{}, w.State())

	keys := f.keys()
	require.Len(t, keys, 2)
	assert.Equal(t, keys[0], keys[1])
}

func TestSubmitRetryableConflictStaysInConfirm(t *testing.T) {
	f := newFakeBackend()
	f.commit = func(CommitRequest) (*dto.AppointmentCreatedDTO, error) {
		return nil, httperr.RetryableConflict("commit_timeout")
	}
	w := toConfirm(t, f)

	require.Error(t, w.Submit(context.Background()))
	assert.IsType(t, Confirm{}, w.State())
}

func TestSubmitValidationRouting(t *testing.T) {
	cases := []struct {
		code string
		want State
	}{
		{"too_soon", SelectDateTime{}},
		{"outside_working_hours", SelectDateTime{}},
		{"service_unavailable", SelectService{}},
		{"guest_contact_required", Confirm{}},
		{"comment_too_long", Confirm{}},
	}
	for _, tc := range cases {
		t.Run(tc.code, func(t *testing.T) {
			f := newFakeBackend()
			f.commit = func(CommitRequest) (*dto.AppointmentCreatedDTO, error) {
				return nil, httperr.Validation(tc.code)
			}
			w := toConfirm(t, f)

			err := w.Submit(context.Background())
			assert.True(t, httperr.IsBusiness(err, tc.code))
			assert.IsType(t, tc.want, w.State())
		})
	}
}

func TestSubmitNotFoundRouting(t *testing.T) {
	f := newFakeBackend()
	f.commit = func(CommitRequest) (*dto.AppointmentCreatedDTO, error) {
		return nil, httperr.NotFound("provider_not_found")
	}
	w := toConfirm(t, f)

	require.Error(t, w.Submit(context.Background()))
	sp, ok := w.State().(SelectProvider)
	require.True(t, ok)
	assert.Len(t, sp.Providers, 1)
}

func TestSetCustomerChangeRotatesKey(t *testing.T) {
	w := toConfirm(t, newFakeBackend())
	before := w.State().(Confirm).IdempotencyKey()

	require.NoError(t, w.SetCustomer(Customer{Name: "Ana", Phone: "11999990000"}, ""))
	assert.Equal(t, before, w.State().(Confirm).IdempotencyKey())

	require.NoError(t, w.SetCustomer(Customer{Name: "Ana", Email: "ana@example.com"}, ""))
	assert.NotEqual(t, before, w.State().(Confirm).IdempotencyKey())
}

func TestDoubleSubmitIsRejectedWhileInFlight(t *testing.T) {
	f := newFakeBackend()
	w := toConfirm(t, f)
	f.gate = make(chan struct{})
	f.entered = make(chan struct{})

	done := make(chan error, 1)
	go func() { done <- w.Submit(context.Background()) }()
	<-f.entered

	assert.ErrorIs(t, w.Submit(context.Background()), ErrSubmitInFlight)
	assert.ErrorIs(t, w.Back(), ErrSubmitInFlight)
	assert.ErrorIs(t, w.Cancel(), ErrSubmitInFlight)

	close(f.gate)
	require.NoError(t, <-done)
	assert.IsType(t, Success{}, w.State())
	assert.Len(t, f.keys(), 1)
}

func TestSubmitNeedsCustomer(t *testing.T) {
	f := newFakeBackend()
	w := toConfirm(t, f)
	require.NoError(t, w.SetCustomer(Customer{}, ""))

	err := w.Submit(context.Background())
	assert.True(t, httperr.IsBusiness(err, "customer_required"))
	assert.IsType(t, Confirm{}, w.State())
	assert.Empty(t, f.keys(), "backend not called")
}
