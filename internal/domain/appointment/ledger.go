package appointment

import (
	"context"
	"errors"
	"time"

	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
)

var (
	// ErrNotFound is returned by repositories when a row does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrTimeConflict is returned by InsertIfNoConflict when the slot is taken.
	ErrTimeConflict = httperr.Conflict("time_conflict")

	// ErrStatusChanged is returned by UpdateStatus when the row left the expected status.
	ErrStatusChanged = httperr.Conflict("status_changed")
)

// Ledger is the single source of truth for appointments and the only place
// where concurrent bookings are serialized.
type Ledger interface {
	// FindByProviderAndDateRange returns the provider's appointments overlapping [start, end), any status.
	FindByProviderAndDateRange(ctx context.Context, providerID uint, start, end time.Time) ([]models.Appointment, error)

	// InsertIfNoConflict atomically re-checks for an overlapping scheduled
	// appointment and inserts ap, or returns ErrTimeConflict.
	InsertIfNoConflict(ctx context.Context, ap *models.Appointment) error

	Get(ctx context.Context, id uint) (*models.Appointment, error)

	// UpdateStatus is a compare-and-set from -> to.
	UpdateStatus(ctx context.Context, id uint, from, to Status, at time.Time) error

	Delete(ctx context.Context, id uint) error

	// ListForCalendar is FindByProviderAndDateRange with service and customer loaded.
	ListForCalendar(ctx context.Context, providerID uint, start, end time.Time) ([]models.Appointment, error)

	// ListEndedScheduled returns scheduled appointments that ended before the given time.
	ListEndedScheduled(ctx context.Context, before time.Time, limit int) ([]models.Appointment, error)
}

// Catalog is the read-mostly data the booking flow depends on.
type Catalog interface {
	GetSalon(ctx context.Context, id uint) (*models.Salon, error)
	GetSalonBySlug(ctx context.Context, slug string) (*models.Salon, error)

	ListProviders(ctx context.Context, salonID uint) ([]models.Provider, error)
	GetProvider(ctx context.Context, id uint) (*models.Provider, error)

	ListServices(ctx context.Context, providerID uint) ([]models.Service, error)
	GetService(ctx context.Context, id uint) (*models.Service, error)
	CreateService(ctx context.Context, s *models.Service) error
	UpdateService(ctx context.Context, s *models.Service) error
	ServiceInUse(ctx context.Context, serviceID uint) (bool, error)

	ListWorkingHours(ctx context.Context, salonID uint) ([]models.WorkingHours, error)
	ReplaceWorkingHours(ctx context.Context, salonID uint, providerID *uint, rows []models.WorkingHours) error

	GetUser(ctx context.Context, id uint) (*models.User, error)
	GetOrCreateGuest(ctx context.Context, salonID uint, g Guest) (*models.Client, error)
}
