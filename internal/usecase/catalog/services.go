package catalog

import (
	"context"
	"errors"
	"strings"

	domain "github.com/BruksfildServices01/salon-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
)

const (
	minServiceMinutes = 5
	maxServiceMinutes = 12 * 60
)

// --------- Inputs ---------

type ServiceInput struct {
	Name            string
	Description     string
	DurationMinutes int
	Price           float64
	Status          string
}

// ServicePatch carries only the fields being changed.
type ServicePatch struct {
	Name            *string
	Description     *string
	DurationMinutes *int
	Price           *float64
	Status          *string
}

// --------- Services ---------

type Services struct {
	catalog domain.Catalog
}

func NewServices(catalog domain.Catalog) *Services {
	return &Services{catalog: catalog}
}

func (s *Services) List(ctx context.Context, providerID uint) ([]models.Service, error) {
	if _, err := s.catalog.GetProvider(ctx, providerID); err != nil {
		return nil, notFoundAs(err, "provider_not_found")
	}
	return s.catalog.ListServices(ctx, providerID)
}

func (s *Services) Create(ctx context.Context, providerID uint, in ServiceInput) (*models.Service, error) {
	svc := &models.Service{
		ProviderID:      providerID,
		Name:            strings.TrimSpace(in.Name),
		Description:     strings.TrimSpace(in.Description),
		DurationMinutes: in.DurationMinutes,
		Price:           in.Price,
		Status:          in.Status,
	}
	if svc.Status == "" {
		svc.Status = models.ServiceAvailable
	}
	if err := validateService(svc); err != nil {
		return nil, err
	}

	if err := s.catalog.CreateService(ctx, svc); err != nil {
		return nil, err
	}
	return svc, nil
}

// Update applies patch. Once a service has appointments its name, duration
// and price are frozen; only the description and availability may change.
func (s *Services) Update(ctx context.Context, providerID, serviceID uint, patch ServicePatch) (*models.Service, error) {
	svc, err := s.catalog.GetService(ctx, serviceID)
	if err != nil {
		return nil, notFoundAs(err, "service_not_found")
	}
	if svc.ProviderID != providerID {
		return nil, httperr.NotFound("service_not_found")
	}

	before := *svc

	if patch.Name != nil {
		svc.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Description != nil {
		svc.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.DurationMinutes != nil {
		svc.DurationMinutes = *patch.DurationMinutes
	}
	if patch.Price != nil {
		svc.Price = *patch.Price
	}
	if patch.Status != nil {
		svc.Status = *patch.Status
	}

	if err := validateService(svc); err != nil {
		return nil, err
	}

	if svc.Name != before.Name || svc.DurationMinutes != before.DurationMinutes || svc.Price != before.Price {
		inUse, err := s.catalog.ServiceInUse(ctx, svc.ID)
		if err != nil {
			return nil, err
		}
		if inUse {
			return nil, httperr.Conflict("service_in_use")
		}
	}

	if err := s.catalog.UpdateService(ctx, svc); err != nil {
		return nil, notFoundAs(err, "service_not_found")
	}
	return svc, nil
}

func validateService(svc *models.Service) error {
	if svc.Name == "" {
		return httperr.Validation("invalid_request")
	}
	if svc.DurationMinutes < minServiceMinutes || svc.DurationMinutes > maxServiceMinutes {
		return httperr.Validation("invalid_duration")
	}
	if svc.Price < 0 {
		return httperr.Validation("invalid_price")
	}
	if svc.Status != models.ServiceAvailable && svc.Status != models.ServiceUnavailable {
		return httperr.Validation("invalid_status")
	}
	return nil
}

func notFoundAs(err error, code string) error {
	if errors.Is(err, domain.ErrNotFound) {
		return httperr.NotFound(code)
	}
	return err
}
