package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	domain "github.com/BruksfildServices01/salon-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
)

type AppointmentGormRepository struct {
	db *gorm.DB
}

func NewAppointmentGormRepository(db *gorm.DB) *AppointmentGormRepository {
	return &AppointmentGormRepository{db: db}
}

// --------------------------------------------------
// Reads
// --------------------------------------------------

func (r *AppointmentGormRepository) FindByProviderAndDateRange(
	ctx context.Context,
	providerID uint,
	start time.Time,
	end time.Time,
) ([]models.Appointment, error) {

	var apps []models.Appointment
	if err := r.db.WithContext(ctx).
		Where(
			"provider_id = ? AND appointment_start < ? AND appointment_end > ?",
			providerID, end, start,
		).
		Order("appointment_start ASC").
		Find(&apps).Error; err != nil {
		return nil, fmt.Errorf("find appointments: %w", err)
	}

	return apps, nil
}

func (r *AppointmentGormRepository) ListForCalendar(
	ctx context.Context,
	providerID uint,
	start time.Time,
	end time.Time,
) ([]models.Appointment, error) {

	var apps []models.Appointment
	if err := r.db.WithContext(ctx).
		Preload("Service").
		Preload("User").
		Preload("Client").
		Where(
			"provider_id = ? AND appointment_start >= ? AND appointment_start < ?",
			providerID, start, end,
		).
		Order("appointment_start ASC").
		Find(&apps).Error; err != nil {
		return nil, fmt.Errorf("list calendar: %w", err)
	}

	return apps, nil
}

func (r *AppointmentGormRepository) ListEndedScheduled(
	ctx context.Context,
	before time.Time,
	limit int,
) ([]models.Appointment, error) {

	var apps []models.Appointment
	if err := r.db.WithContext(ctx).
		Where("status = ? AND appointment_end <= ?", string(domain.StatusScheduled), before).
		Order("appointment_end ASC").
		Limit(limit).
		Find(&apps).Error; err != nil {
		return nil, fmt.Errorf("list ended appointments: %w", err)
	}

	return apps, nil
}

func (r *AppointmentGormRepository) Get(
	ctx context.Context,
	id uint,
) (*models.Appointment, error) {

	var ap models.Appointment
	if err := r.db.WithContext(ctx).First(&ap, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &ap, nil
}

// --------------------------------------------------
// Writes
// --------------------------------------------------

// InsertIfNoConflict serializes bookings per provider and day with a
// transaction-scoped advisory lock, re-checks overlap, then inserts.
// The appointments_no_overlap exclusion constraint backs this up for
// bookings that cross midnight.
func (r *AppointmentGormRepository) InsertIfNoConflict(
	ctx context.Context,
	ap *models.Appointment,
) error {

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {

		if err := tx.Exec(
			"SELECT pg_advisory_xact_lock(?, ?)",
			int32(ap.ProviderID), dayKey(ap.AppointmentStart),
		).Error; err != nil {
			return err
		}

		var count int64
		if err := tx.
			Model(&models.Appointment{}).
			Where(
				"provider_id = ? AND status = ? AND appointment_start < ? AND appointment_end > ?",
				ap.ProviderID, string(domain.StatusScheduled), ap.AppointmentEnd, ap.AppointmentStart,
			).
			Count(&count).Error; err != nil {
			return err
		}

		if count > 0 {
			return domain.ErrTimeConflict
		}

		return tx.Create(ap).Error
	})

	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrTimeConflict),
		httperr.IsExclusionConflict(err),
		httperr.IsSerializationFailure(err):
		return domain.ErrTimeConflict
	}
	return fmt.Errorf("insert appointment: %w", err)
}

func (r *AppointmentGormRepository) UpdateStatus(
	ctx context.Context,
	id uint,
	from domain.Status,
	to domain.Status,
	at time.Time,
) error {

	updates := map[string]any{
		"status":     string(to),
		"updated_at": at,
	}
	switch to {
	case domain.StatusCanceled:
		updates["canceled_at"] = at
	case domain.StatusCompleted:
		updates["completed_at"] = at
	case domain.StatusNoShow:
		updates["no_show_at"] = at
	}

	res := r.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Where("id = ? AND status = ?", id, string(from)).
		Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("update appointment status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrStatusChanged
	}
	return nil
}

func (r *AppointmentGormRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Appointment{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete appointment: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// dayKey identifies the calendar day of t as yyyymmdd in t's location.
func dayKey(t time.Time) int32 {
	return int32(t.Year()*10000 + int(t.Month())*100 + t.Day())
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrNotFound
	}
	return err
}

// Compile-time check
var _ domain.Ledger = (*AppointmentGormRepository)(nil)
