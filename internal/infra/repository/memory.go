package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	domain "github.com/BruksfildServices01/salon-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
)

// MemoryStore keeps the whole catalog and ledger in process. One mutex guards
// everything, which makes InsertIfNoConflict atomic.
type MemoryStore struct {
	mu     sync.Mutex
	nextID uint

	salons       map[uint]models.Salon
	providers    map[uint]models.Provider
	services     map[uint]models.Service
	hours        map[uint]models.WorkingHours
	users        map[uint]models.User
	clients      map[uint]models.Client
	appointments map[uint]models.Appointment
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		salons:       map[uint]models.Salon{},
		providers:    map[uint]models.Provider{},
		services:     map[uint]models.Service{},
		hours:        map[uint]models.WorkingHours{},
		users:        map[uint]models.User{},
		clients:      map[uint]models.Client{},
		appointments: map[uint]models.Appointment{},
	}
}

func (m *MemoryStore) id() uint {
	m.nextID++
	return m.nextID
}

// --------------------------------------------------
// Fixtures
// --------------------------------------------------

func (m *MemoryStore) AddSalon(s models.Salon) models.Salon {
	m.mu.Lock()
	defer m.mu.Unlock()
	s.ID = m.id()
	m.salons[s.ID] = s
	return s
}

func (m *MemoryStore) AddProvider(p models.Provider) models.Provider {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.ID = m.id()
	m.providers[p.ID] = p
	return p
}

func (m *MemoryStore) AddService(s models.Service) models.Service {
	m.mu.Lock()
	defer m.mu.Unlock()
	s.ID = m.id()
	m.services[s.ID] = s
	return s
}

func (m *MemoryStore) AddWorkingHours(wh models.WorkingHours) models.WorkingHours {
	m.mu.Lock()
	defer m.mu.Unlock()
	wh.ID = m.id()
	m.hours[wh.ID] = wh
	return wh
}

func (m *MemoryStore) AddUser(u models.User) models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	u.ID = m.id()
	m.users[u.ID] = u
	return u
}

// --------------------------------------------------
// Ledger
// --------------------------------------------------

func (m *MemoryStore) FindByProviderAndDateRange(
	_ context.Context,
	providerID uint,
	start time.Time,
	end time.Time,
) ([]models.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]models.Appointment, 0)
	for _, ap := range m.appointments {
		if ap.ProviderID == providerID && domain.Overlaps(ap.AppointmentStart, ap.AppointmentEnd, start, end) {
			out = append(out, ap)
		}
	}
	sortByStart(out)
	return out, nil
}

func (m *MemoryStore) InsertIfNoConflict(_ context.Context, ap *models.Appointment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, other := range m.appointments {
		if other.ProviderID != ap.ProviderID || other.Status != string(domain.StatusScheduled) {
			continue
		}
		if domain.Overlaps(ap.AppointmentStart, ap.AppointmentEnd, other.AppointmentStart, other.AppointmentEnd) {
			return domain.ErrTimeConflict
		}
	}

	now := time.Now()
	ap.ID = m.id()
	ap.CreatedAt, ap.UpdatedAt = now, now
	stored := *ap
	stored.Provider, stored.Service, stored.User, stored.Client = nil, nil, nil, nil
	m.appointments[ap.ID] = stored
	return nil
}

func (m *MemoryStore) Get(_ context.Context, id uint) (*models.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ap, ok := m.appointments[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &ap, nil
}

func (m *MemoryStore) UpdateStatus(_ context.Context, id uint, from, to domain.Status, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	ap, ok := m.appointments[id]
	if !ok {
		return domain.ErrNotFound
	}
	if ap.Status != string(from) {
		return domain.ErrStatusChanged
	}

	ap.Status = string(to)
	ap.UpdatedAt = at
	switch to {
	case domain.StatusCanceled:
		ap.CanceledAt = &at
	case domain.StatusCompleted:
		ap.CompletedAt = &at
	case domain.StatusNoShow:
		ap.NoShowAt = &at
	}
	m.appointments[id] = ap
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.appointments[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.appointments, id)
	return nil
}

func (m *MemoryStore) ListForCalendar(
	_ context.Context,
	providerID uint,
	start time.Time,
	end time.Time,
) ([]models.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]models.Appointment, 0)
	for _, ap := range m.appointments {
		if ap.ProviderID != providerID || ap.AppointmentStart.Before(start) || !ap.AppointmentStart.Before(end) {
			continue
		}
		if s, ok := m.services[ap.ServiceID]; ok {
			ap.Service = &s
		}
		if ap.UserID != nil {
			if u, ok := m.users[*ap.UserID]; ok {
				ap.User = &u
			}
		}
		if ap.ClientID != nil {
			if c, ok := m.clients[*ap.ClientID]; ok {
				ap.Client = &c
			}
		}
		out = append(out, ap)
	}
	sortByStart(out)
	return out, nil
}

func (m *MemoryStore) ListEndedScheduled(_ context.Context, before time.Time, limit int) ([]models.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]models.Appointment, 0)
	for _, ap := range m.appointments {
		if ap.Status == string(domain.StatusScheduled) && !ap.AppointmentEnd.After(before) {
			out = append(out, ap)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AppointmentEnd.Before(out[j].AppointmentEnd) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// --------------------------------------------------
// Catalog
// --------------------------------------------------

func (m *MemoryStore) GetSalon(_ context.Context, id uint) (*models.Salon, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.salons[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &s, nil
}

func (m *MemoryStore) GetSalonBySlug(_ context.Context, slug string) (*models.Salon, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, s := range m.salons {
		if s.Slug == slug {
			return &s, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MemoryStore) ListProviders(_ context.Context, salonID uint) ([]models.Provider, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]models.Provider, 0)
	for _, p := range m.providers {
		if p.SalonID == salonID && p.Active {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *MemoryStore) GetProvider(_ context.Context, id uint) (*models.Provider, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.providers[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

func (m *MemoryStore) ListServices(_ context.Context, providerID uint) ([]models.Service, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]models.Service, 0)
	for _, s := range m.services {
		if s.ProviderID == providerID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryStore) GetService(_ context.Context, id uint) (*models.Service, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.services[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &s, nil
}

func (m *MemoryStore) CreateService(_ context.Context, s *models.Service) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s.ID = m.id()
	s.CreatedAt, s.UpdatedAt = time.Now(), time.Now()
	m.services[s.ID] = *s
	return nil
}

func (m *MemoryStore) UpdateService(_ context.Context, s *models.Service) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.services[s.ID]; !ok {
		return domain.ErrNotFound
	}
	s.UpdatedAt = time.Now()
	m.services[s.ID] = *s
	return nil
}

func (m *MemoryStore) ServiceInUse(_ context.Context, serviceID uint) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, ap := range m.appointments {
		if ap.ServiceID == serviceID {
			return true, nil
		}
	}
	return false, nil
}

func (m *MemoryStore) ListWorkingHours(_ context.Context, salonID uint) ([]models.WorkingHours, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]models.WorkingHours, 0)
	for _, wh := range m.hours {
		if wh.SalonID == salonID {
			out = append(out, wh)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryStore) ReplaceWorkingHours(_ context.Context, salonID uint, providerID *uint, rows []models.WorkingHours) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, wh := range m.hours {
		if wh.SalonID != salonID {
			continue
		}
		if sameOwner(wh.ProviderID, providerID) {
			delete(m.hours, id)
		}
	}
	for i := range rows {
		rows[i].ID = m.id()
		m.hours[rows[i].ID] = rows[i]
	}
	return nil
}

func (m *MemoryStore) GetUser(_ context.Context, id uint) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &u, nil
}

func (m *MemoryStore) GetOrCreateGuest(_ context.Context, salonID uint, g domain.Guest) (*models.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	g = g.Normalized()
	for _, c := range m.clients {
		if c.SalonID != salonID {
			continue
		}
		if g.Email != "" && strings.EqualFold(c.Email, g.Email) {
			return &c, nil
		}
	}
	for _, c := range m.clients {
		if c.SalonID == salonID && g.Phone != "" && c.Phone == g.Phone {
			return &c, nil
		}
	}

	c := models.Client{
		ID:        m.id(),
		SalonID:   salonID,
		Name:      g.Name,
		Email:     g.Email,
		Phone:     g.Phone,
		CreatedAt: time.Now(),
	}
	m.clients[c.ID] = c
	return &c, nil
}

func sameOwner(a, b *uint) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func sortByStart(aps []models.Appointment) {
	sort.Slice(aps, func(i, j int) bool {
		return aps[i].AppointmentStart.Before(aps[j].AppointmentStart)
	})
}

var (
	_ domain.Ledger  = (*MemoryStore)(nil)
	_ domain.Catalog = (*MemoryStore)(nil)
)
