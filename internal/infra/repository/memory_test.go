package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/BruksfildServices01/salon-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
)

func TestMemoryStore_ConcurrentInsertOnlyOneWins(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	const attempts = 20
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		ok, taken int
	)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := store.InsertIfNoConflict(ctx, newAppointment())

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case assert.ErrorIs(t, err, domain.ErrTimeConflict):
				taken++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, ok)
	assert.Equal(t, attempts-1, taken)

	ap := newAppointment()
	rows, err := store.FindByProviderAndDateRange(ctx, ap.ProviderID, ap.AppointmentStart, ap.AppointmentEnd)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestMemoryStore_CanceledDoesNotBlock(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	first := newAppointment()
	require.NoError(t, store.InsertIfNoConflict(ctx, first))
	require.NoError(t, store.UpdateStatus(ctx, first.ID, domain.StatusScheduled, domain.StatusCanceled, time.Now()))

	second := newAppointment()
	require.NoError(t, store.InsertIfNoConflict(ctx, second))
	assert.NotEqual(t, first.ID, second.ID)

	err := store.UpdateStatus(ctx, first.ID, domain.StatusScheduled, domain.StatusCanceled, time.Now())
	assert.ErrorIs(t, err, domain.ErrStatusChanged)
}

func TestMemoryStore_AdjacentAppointmentsAllowed(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	a := newAppointment()
	require.NoError(t, store.InsertIfNoConflict(ctx, a))

	b := newAppointment()
	b.AppointmentStart = a.AppointmentEnd
	b.AppointmentEnd = a.AppointmentEnd.Add(45 * time.Minute)
	require.NoError(t, store.InsertIfNoConflict(ctx, b))

	other := newAppointment()
	other.ProviderID = 8
	require.NoError(t, store.InsertIfNoConflict(ctx, other))
}

func TestMemoryStore_GetOrCreateGuest(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	c1, err := store.GetOrCreateGuest(ctx, 1, domain.Guest{Name: "Ana", Email: "Ana@Example.com"})
	require.NoError(t, err)

	c2, err := store.GetOrCreateGuest(ctx, 1, domain.Guest{Name: "Ana B", Email: "ana@example.com", Phone: "123"})
	require.NoError(t, err)
	assert.Equal(t, c1.ID, c2.ID)

	c3, err := store.GetOrCreateGuest(ctx, 2, domain.Guest{Name: "Ana", Email: "ana@example.com"})
	require.NoError(t, err)
	assert.NotEqual(t, c1.ID, c3.ID)
}

func TestMemoryStore_ListForCalendarLoadsDetails(t *testing.T) {
	store := NewMemoryStore()
	demo := SeedDemo(store)
	ctx := context.Background()

	userID := demo.User.ID
	ap := newAppointment()
	ap.ProviderID = demo.Provider.ID
	ap.ServiceID = demo.Services[0].ID
	ap.UserID = &userID
	require.NoError(t, store.InsertIfNoConflict(ctx, ap))

	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	rows, err := store.ListForCalendar(ctx, demo.Provider.ID, day, day.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.NotNil(t, rows[0].Service)
	assert.Equal(t, "Corte", rows[0].Service.Name)
	assert.Equal(t, "Carla Souza", rows[0].CustomerName())
}

func TestMemoryStore_ReplaceWorkingHoursKeepsOtherOwners(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	pid := uint(5)

	store.AddWorkingHours(models.WorkingHours{SalonID: 1, OpeningHour: 9, ClosingHour: 18})
	store.AddWorkingHours(models.WorkingHours{SalonID: 1, ProviderID: &pid, OpeningHour: 10, ClosingHour: 19})

	require.NoError(t, store.ReplaceWorkingHours(ctx, 1, &pid, []models.WorkingHours{
		{SalonID: 1, ProviderID: &pid, OpeningHour: 12, ClosingHour: 20},
	}))

	rows, err := store.ListWorkingHours(ctx, 1)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Nil(t, rows[0].ProviderID)
	assert.Equal(t, 12, rows[1].OpeningHour)
}

func TestMemoryStore_ListEndedScheduled(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	ap := newAppointment()
	require.NoError(t, store.InsertIfNoConflict(ctx, ap))

	rows, err := store.ListEndedScheduled(ctx, ap.AppointmentEnd.Add(-time.Minute), 10)
	require.NoError(t, err)
	assert.Empty(t, rows)

	rows, err = store.ListEndedScheduled(ctx, ap.AppointmentEnd, 10)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
