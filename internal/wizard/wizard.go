package wizard

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/BruksfildServices01/salon-scheduler/internal/dto"
	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
)

var (
	ErrSubmitInFlight    = errors.New("wizard: a submit is already in flight")
	ErrInvalidTransition = errors.New("wizard: not allowed at this step")
	ErrUnknownChoice     = errors.New("wizard: choice is not on offer")
)

// CommitRequest is what Submit sends to the backend.
type CommitRequest struct {
	ProviderID uint
	ServiceID  uint
	Date       string
	Time       string
	Comment    string
	Customer   Customer
}

// Backend is the booking API as seen by the wizard.
type Backend interface {
	Salon(ctx context.Context, slug string) (*models.Salon, error)
	Providers(ctx context.Context, slug string) ([]models.Provider, error)
	Services(ctx context.Context, providerID uint) ([]models.Service, error)
	Availability(ctx context.Context, providerID, serviceID uint, date string) ([]string, error)
	Commit(ctx context.Context, req CommitRequest, idempotencyKey string) (*dto.AppointmentCreatedDTO, error)
}

// Wizard drives one customer's booking. Methods are safe for concurrent use;
// at most one Submit runs at a time.
type Wizard struct {
	backend Backend
	newKey  func() string

	mu         sync.Mutex
	state      State
	submitting bool
}

func New(backend Backend) *Wizard {
	return &Wizard{
		backend: backend,
		newKey:  uuid.NewString,
		state:   Aborted{},
	}
}

func (w *Wizard) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// transition runs fn on the current state under the lock, refusing while a
// submit is running.
func (w *Wizard) transition(fn func(State) (State, error)) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.submitting {
		return ErrSubmitInFlight
	}
	next, err := fn(w.state)
	if err != nil {
		return err
	}
	w.state = next
	return nil
}

func invalid(s State, op string) error {
	return fmt.Errorf("%w: %s from %s", ErrInvalidTransition, op, s.Step())
}

// ======================================================
// FORWARD
// ======================================================

// Start opens the salon identified by slug. It resets any previous flow.
func (w *Wizard) Start(ctx context.Context, slug string) error {
	salon, err := w.backend.Salon(ctx, slug)
	if err != nil {
		return err
	}
	return w.transition(func(State) (State, error) {
		return SalonInfo{Salon: *salon}, nil
	})
}

// Continue leaves the salon page for the provider list.
func (w *Wizard) Continue(ctx context.Context) error {
	s, ok := w.State().(SalonInfo)
	if !ok {
		return invalid(w.State(), "continue")
	}

	providers, err := w.backend.Providers(ctx, s.Salon.Slug)
	if err != nil {
		return err
	}

	return w.transition(func(cur State) (State, error) {
		if _, ok := cur.(SalonInfo); !ok {
			return nil, invalid(cur, "continue")
		}
		return SelectProvider{Salon: s.Salon, Providers: providers}, nil
	})
}

func (w *Wizard) ChooseProvider(ctx context.Context, providerID uint) error {
	s, ok := w.State().(SelectProvider)
	if !ok {
		return invalid(w.State(), "choose provider")
	}

	var provider *models.Provider
	for i := range s.Providers {
		if s.Providers[i].ID == providerID {
			provider = &s.Providers[i]
		}
	}
	if provider == nil {
		return ErrUnknownChoice
	}

	services, err := w.backend.Services(ctx, provider.ID)
	if err != nil {
		return err
	}

	return w.transition(func(cur State) (State, error) {
		if _, ok := cur.(SelectProvider); !ok {
			return nil, invalid(cur, "choose provider")
		}
		return SelectService{
			Draft:    Draft{Salon: s.Salon, Provider: *provider, providers: s.Providers},
			Services: services,
		}, nil
	})
}

// ChooseService accepts only available services from the listed ones.
func (w *Wizard) ChooseService(serviceID uint) error {
	return w.transition(func(cur State) (State, error) {
		s, ok := cur.(SelectService)
		if !ok {
			return nil, invalid(cur, "choose service")
		}
		for _, svc := range s.Services {
			if svc.ID == serviceID && svc.Available() {
				d := s.Draft
				d.Service = svc
				d.services = s.Services
				return SelectDateTime{Draft: d}, nil
			}
		}
		return nil, ErrUnknownChoice
	})
}

// ChooseDate fetches the slots for date and clears any held time.
func (w *Wizard) ChooseDate(ctx context.Context, date string) error {
	s, ok := w.State().(SelectDateTime)
	if !ok {
		return invalid(w.State(), "choose date")
	}

	slots, err := w.backend.Availability(ctx, s.Draft.Provider.ID, s.Draft.Service.ID, date)
	if err != nil {
		return err
	}

	return w.transition(func(cur State) (State, error) {
		if _, ok := cur.(SelectDateTime); !ok {
			return nil, invalid(cur, "choose date")
		}
		return SelectDateTime{Draft: s.Draft, Date: date, Slots: slots}, nil
	})
}

// ChooseTime moves to Confirm. hhmm must be in the current slot list.
func (w *Wizard) ChooseTime(hhmm string) error {
	return w.transition(func(cur State) (State, error) {
		s, ok := cur.(SelectDateTime)
		if !ok || s.Date == "" {
			return nil, invalid(cur, "choose time")
		}
		for _, slot := range s.Slots {
			if slot == hhmm {
				return Confirm{
					Draft: s.Draft,
					Date:  s.Date,
					Time:  hhmm,
					slots: s.Slots,
					key:   w.newKey(),
				}, nil
			}
		}
		return nil, ErrUnknownChoice
	})
}

// SetCustomer records who the booking is for. The key is kept: it identifies
// the slot being booked, not the form contents.
func (w *Wizard) SetCustomer(c Customer, comment string) error {
	return w.transition(func(cur State) (State, error) {
		s, ok := cur.(Confirm)
		if !ok {
			return nil, invalid(cur, "set customer")
		}
		if s.Draft.Customer != c || s.Draft.Comment != comment {
			s.key = w.newKey()
		}
		s.Draft.Customer = c
		s.Draft.Comment = comment
		return s, nil
	})
}

// ======================================================
// SUBMIT
// ======================================================

// Submit commits the confirmed draft. The returned error is what the user
// should see; the wizard has already moved to the step where it can be fixed.
func (w *Wizard) Submit(ctx context.Context) error {
	w.mu.Lock()
	if w.submitting {
		w.mu.Unlock()
		return ErrSubmitInFlight
	}
	s, ok := w.state.(Confirm)
	if !ok {
		w.mu.Unlock()
		return invalid(w.state, "submit")
	}
	if s.Draft.Customer.UserID == 0 && s.Draft.Customer.Name == "" {
		w.mu.Unlock()
		return httperr.Validation("customer_required")
	}
	w.submitting = true
	w.mu.Unlock()

	booking, err := w.backend.Commit(ctx, CommitRequest{
		ProviderID: s.Draft.Provider.ID,
		ServiceID:  s.Draft.Service.ID,
		Date:       s.Date,
		Time:       s.Time,
		Comment:    s.Draft.Comment,
		Customer:   s.Draft.Customer,
	}, s.key)

	var next State
	if err == nil {
		next = Success{Salon: s.Draft.Salon, Booking: *booking}
	} else {
		next = w.afterFailure(ctx, s, err)
	}

	w.mu.Lock()
	w.state = next
	w.submitting = false
	w.mu.Unlock()

	return err
}

// afterFailure picks the step a failed submit returns to.
func (w *Wizard) afterFailure(ctx context.Context, s Confirm, err error) State {
	var be httperr.BusinessError
	if !errors.As(err, &be) || be.Retryable {
		// transient: same draft, same key
		return s
	}

	switch be.Kind {
	case httperr.KindConflict:
		return w.refetchSlots(ctx, s)

	case httperr.KindNotFound:
		switch be.Code {
		case "provider_not_found":
			return w.backToProviders(ctx, s)
		case "service_not_found":
			return w.backToServices(ctx, s)
		}
		return s

	default:
		switch be.Code {
		case "too_soon", "outside_working_hours", "invalid_date", "invalid_date_or_time":
			return w.refetchSlots(ctx, s)
		case "service_unavailable", "service_not_offered":
			return w.backToServices(ctx, s)
		}
		// customer fields: fix them in place
		return s
	}
}

func (w *Wizard) refetchSlots(ctx context.Context, s Confirm) State {
	slots, err := w.backend.Availability(ctx, s.Draft.Provider.ID, s.Draft.Service.ID, s.Date)
	if err != nil {
		slots = nil
	}
	return SelectDateTime{Draft: s.Draft, Date: s.Date, Slots: slots}
}

func (w *Wizard) backToServices(ctx context.Context, s Confirm) State {
	d := s.Draft
	d.Service = models.Service{}
	if services, err := w.backend.Services(ctx, d.Provider.ID); err == nil {
		d.services = services
	}
	return SelectService{Draft: d, Services: d.services}
}

func (w *Wizard) backToProviders(ctx context.Context, s Confirm) State {
	providers, err := w.backend.Providers(ctx, s.Draft.Salon.Slug)
	if err != nil {
		providers = s.Draft.providers
	}
	return SelectProvider{Salon: s.Draft.Salon, Providers: providers}
}

// ======================================================
// BACK / CANCEL / RESTART
// ======================================================

// Back returns one step, discarding only what the step being left chose.
func (w *Wizard) Back() error {
	return w.transition(func(cur State) (State, error) {
		switch s := cur.(type) {
		case SelectProvider:
			return SalonInfo{Salon: s.Salon}, nil
		case SelectService:
			return SelectProvider{Salon: s.Draft.Salon, Providers: s.Draft.providers}, nil
		case SelectDateTime:
			// the service stays highlighted; date, time and slots go
			return SelectService{Draft: s.Draft, Services: s.Draft.services}, nil
		case Confirm:
			d := s.Draft
			d.Customer, d.Comment = Customer{}, ""
			return SelectDateTime{Draft: d, Date: s.Date, Slots: s.slots, Time: s.Time}, nil
		}
		return nil, invalid(cur, "back")
	})
}

// Cancel aborts from any non-terminal step.
func (w *Wizard) Cancel() error {
	return w.transition(func(cur State) (State, error) {
		if terminal(cur) {
			return nil, invalid(cur, "cancel")
		}
		return Aborted{}, nil
	})
}

// NewBooking starts over at the same salon after a success.
func (w *Wizard) NewBooking() error {
	return w.transition(func(cur State) (State, error) {
		s, ok := cur.(Success)
		if !ok {
			return nil, invalid(cur, "new booking")
		}
		return SalonInfo{Salon: s.Salon}, nil
	})
}
