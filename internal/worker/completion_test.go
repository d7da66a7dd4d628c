package worker

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/salon-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/salon-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/salon-scheduler/internal/infra/repository"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
)

type recordingAuditor struct {
	mu     sync.Mutex
	events []audit.Event
}

func (r *recordingAuditor) Dispatch(ev audit.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func insert(t *testing.T, store *repository.MemoryStore, demo repository.Demo, start time.Time) *models.Appointment {
	t.Helper()
	ap := &models.Appointment{
		SalonID:          demo.Salon.ID,
		ProviderID:       demo.Provider.ID,
		ServiceID:        demo.Services[0].ID,
		UserID:           &demo.User.ID,
		AppointmentStart: start,
		AppointmentEnd:   start.Add(30 * time.Minute),
		Status:           string(domain.StatusScheduled),
	}
	require.NoError(t, store.InsertIfNoConflict(context.Background(), ap))
	return ap
}

func TestSweep_CompletesOnlyPastGrace(t *testing.T) {
	store := repository.NewMemoryStore()
	demo := repository.SeedDemo(store)
	auditor := &recordingAuditor{}
	now := time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC)

	old := insert(t, store, demo, now.Add(-5*time.Hour))
	recent := insert(t, store, demo, now.Add(-time.Hour))
	future := insert(t, store, demo, now.Add(time.Hour))
	canceled := insert(t, store, demo, now.Add(-4*time.Hour))
	require.NoError(t, store.UpdateStatus(context.Background(), canceled.ID, domain.StatusScheduled, domain.StatusCanceled, now))

	w := NewCompletionWorker(store, auditor, nil, zerolog.Nop(), time.Minute, 2*time.Hour)
	w.now = func() time.Time { return now }

	n, err := w.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	status := func(id uint) string {
		ap, err := store.Get(context.Background(), id)
		require.NoError(t, err)
		return ap.Status
	}
	assert.Equal(t, "completed", status(old.ID))
	assert.Equal(t, "scheduled", status(recent.ID))
	assert.Equal(t, "scheduled", status(future.ID))
	assert.Equal(t, "canceled", status(canceled.ID))

	require.Len(t, auditor.events, 1)
	assert.Equal(t, audit.ActionAppointmentCompleted, auditor.events[0].Action)

	n, err = w.Sweep(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestStart_StopsWithContext(t *testing.T) {
	store := repository.NewMemoryStore()
	w := NewCompletionWorker(store, nil, nil, zerolog.Nop(), 5*time.Millisecond, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}
