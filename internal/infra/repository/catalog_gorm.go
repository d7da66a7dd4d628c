package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	domain "github.com/BruksfildServices01/salon-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
)

type CatalogGormRepository struct {
	db *gorm.DB
}

func NewCatalogGormRepository(db *gorm.DB) *CatalogGormRepository {
	return &CatalogGormRepository{db: db}
}

// --------------------------------------------------
// Salon / Provider
// --------------------------------------------------

func (r *CatalogGormRepository) GetSalon(ctx context.Context, id uint) (*models.Salon, error) {
	var salon models.Salon
	if err := r.db.WithContext(ctx).First(&salon, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &salon, nil
}

func (r *CatalogGormRepository) GetSalonBySlug(ctx context.Context, slug string) (*models.Salon, error) {
	var salon models.Salon
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&salon).Error; err != nil {
		return nil, notFound(err)
	}
	return &salon, nil
}

func (r *CatalogGormRepository) ListProviders(ctx context.Context, salonID uint) ([]models.Provider, error) {
	var providers []models.Provider
	if err := r.db.WithContext(ctx).
		Where("salon_id = ? AND active = ?", salonID, true).
		Order("name ASC").
		Find(&providers).Error; err != nil {
		return nil, fmt.Errorf("list providers: %w", err)
	}
	return providers, nil
}

func (r *CatalogGormRepository) GetProvider(ctx context.Context, id uint) (*models.Provider, error) {
	var p models.Provider
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

// --------------------------------------------------
// Services
// --------------------------------------------------

func (r *CatalogGormRepository) ListServices(ctx context.Context, providerID uint) ([]models.Service, error) {
	var services []models.Service
	if err := r.db.WithContext(ctx).
		Where("provider_id = ?", providerID).
		Order("id ASC").
		Find(&services).Error; err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	return services, nil
}

func (r *CatalogGormRepository) GetService(ctx context.Context, id uint) (*models.Service, error) {
	var s models.Service
	if err := r.db.WithContext(ctx).First(&s, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &s, nil
}

func (r *CatalogGormRepository) CreateService(ctx context.Context, s *models.Service) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *CatalogGormRepository) UpdateService(ctx context.Context, s *models.Service) error {
	return r.db.WithContext(ctx).Save(s).Error
}

func (r *CatalogGormRepository) ServiceInUse(ctx context.Context, serviceID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Where("service_id = ?", serviceID).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("count service usage: %w", err)
	}
	return count > 0, nil
}

// --------------------------------------------------
// Working hours
// --------------------------------------------------

func (r *CatalogGormRepository) ListWorkingHours(ctx context.Context, salonID uint) ([]models.WorkingHours, error) {
	var rows []models.WorkingHours
	if err := r.db.WithContext(ctx).
		Where("salon_id = ?", salonID).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list working hours: %w", err)
	}
	return rows, nil
}

// ReplaceWorkingHours swaps the rows owned by providerID (nil = salon defaults).
func (r *CatalogGormRepository) ReplaceWorkingHours(
	ctx context.Context,
	salonID uint,
	providerID *uint,
	rows []models.WorkingHours,
) error {

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx.Where("salon_id = ?", salonID)
		if providerID == nil {
			q = q.Where("provider_id IS NULL")
		} else {
			q = q.Where("provider_id = ?", *providerID)
		}
		if err := q.Delete(&models.WorkingHours{}).Error; err != nil {
			return err
		}

		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error
	})
}

// --------------------------------------------------
// Customers
// --------------------------------------------------

func (r *CatalogGormRepository) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

// GetOrCreateGuest matches an existing guest by email, then by phone.
func (r *CatalogGormRepository) GetOrCreateGuest(
	ctx context.Context,
	salonID uint,
	g domain.Guest,
) (*models.Client, error) {

	g = g.Normalized()
	db := r.db.WithContext(ctx)

	var client models.Client
	if g.Email != "" {
		err := db.Where("salon_id = ? AND email = ?", salonID, g.Email).First(&client).Error
		if err == nil {
			return &client, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}
	if g.Phone != "" {
		err := db.Where("salon_id = ? AND phone = ?", salonID, g.Phone).First(&client).Error
		if err == nil {
			return &client, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	client = models.Client{
		SalonID: salonID,
		Name:    g.Name,
		Email:   g.Email,
		Phone:   g.Phone,
	}
	if err := db.Create(&client).Error; err != nil {
		return nil, fmt.Errorf("create guest: %w", err)
	}
	return &client, nil
}

var _ domain.Catalog = (*CatalogGormRepository)(nil)
