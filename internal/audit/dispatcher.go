package audit

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/BruksfildServices01/salon-scheduler/internal/metrics"
)

const (
	ActionAppointmentCreated   = "appointment.created"
	ActionAppointmentConflict  = "appointment.conflict"
	ActionAppointmentCanceled  = "appointment.canceled"
	ActionAppointmentCompleted = "appointment.completed"
	ActionAppointmentNoShow    = "appointment.no_show"
	ActionAppointmentDeleted   = "appointment.deleted"
	ActionWorkingHoursUpdated  = "working_hours.updated"
	ActionServiceCreated       = "service.created"
	ActionServiceUpdated       = "service.updated"
)

type Event struct {
	SalonID  uint
	ActorID  *uint
	Action   string
	Entity   string
	EntityID *uint
	Metadata any
}

// Dispatcher writes audit events off the request path. When the queue is
// full the event is dropped; auditing never fails a request.
type Dispatcher struct {
	sink    Sink
	queue   chan Event
	log     zerolog.Logger
	metrics *metrics.Booking

	wg        sync.WaitGroup
	closeOnce sync.Once
}

func NewDispatcher(sink Sink, size int, log zerolog.Logger, m *metrics.Booking) *Dispatcher {
	if size <= 0 {
		size = 100
	}
	d := &Dispatcher{
		sink:    sink,
		queue:   make(chan Event, size),
		log:     log,
		metrics: m,
	}

	d.wg.Add(1)
	go d.worker()
	return d
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()

	for ev := range d.queue {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := d.sink.Write(ctx, entryFor(ev)); err != nil {
			d.log.Error().Err(err).Str("action", ev.Action).Msg("audit write failed")
		}
		cancel()
	}
}

func (d *Dispatcher) Dispatch(ev Event) {
	defer func() {
		// Dispatch after Close
		if recover() != nil {
			d.metrics.AuditDropped()
		}
	}()

	select {
	case d.queue <- ev:
	default:
		d.metrics.AuditDropped()
		d.log.Warn().Str("action", ev.Action).Msg("audit queue full, dropping event")
	}
}

// Close stops accepting events and waits for the queue to drain.
func (d *Dispatcher) Close() {
	d.closeOnce.Do(func() {
		close(d.queue)
	})
	d.wg.Wait()
}
