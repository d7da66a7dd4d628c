package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/salon-scheduler/internal/audit"
	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
	ucCatalog "github.com/BruksfildServices01/salon-scheduler/internal/usecase/catalog"
)

type ServiceHandler struct {
	services *ucCatalog.Services
	audit    Auditor
}

func NewServiceHandler(services *ucCatalog.Services, auditor Auditor) *ServiceHandler {
	return &ServiceHandler{services: services, audit: orNoop(auditor)}
}

// --------- Requests ---------

type CreateServiceRequest struct {
	Name            string  `json:"name" binding:"required"`
	Description     string  `json:"description"`
	DurationMinutes int     `json:"duration_minutes" binding:"required"`
	Price           float64 `json:"price"`
	Status          string  `json:"status" binding:"omitempty,oneof=available unavailable"`
}

type UpdateServiceRequest struct {
	Name            *string  `json:"name,omitempty"`
	Description     *string  `json:"description,omitempty"`
	DurationMinutes *int     `json:"duration_minutes,omitempty"`
	Price           *float64 `json:"price,omitempty"`
	Status          *string  `json:"status,omitempty"`
}

// --------- Handlers ---------

func (h *ServiceHandler) List(c *gin.Context) {
	providerID, _ := actor(c)

	services, err := h.services.List(c.Request.Context(), providerID)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.List(c, services)
}

func (h *ServiceHandler) Create(c *gin.Context) {
	providerID, salonID := actor(c)

	var req CreateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", httperr.Message("invalid_request"))
		return
	}

	svc, err := h.services.Create(c.Request.Context(), providerID, ucCatalog.ServiceInput{
		Name:            req.Name,
		Description:     req.Description,
		DurationMinutes: req.DurationMinutes,
		Price:           req.Price,
		Status:          req.Status,
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	h.auditService(salonID, providerID, svc, audit.ActionServiceCreated)
	c.JSON(http.StatusCreated, svc)
}

func (h *ServiceHandler) Update(c *gin.Context) {
	providerID, salonID := actor(c)

	id, ok := idParam(c, "id")
	if !ok {
		httperr.Respond(c, httperr.NotFound("service_not_found"))
		return
	}

	var req UpdateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", httperr.Message("invalid_request"))
		return
	}

	svc, err := h.services.Update(c.Request.Context(), providerID, id, ucCatalog.ServicePatch{
		Name:            req.Name,
		Description:     req.Description,
		DurationMinutes: req.DurationMinutes,
		Price:           req.Price,
		Status:          req.Status,
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	h.auditService(salonID, providerID, svc, audit.ActionServiceUpdated)
	c.JSON(http.StatusOK, svc)
}

func (h *ServiceHandler) auditService(salonID, providerID uint, svc *models.Service, action string) {
	id := svc.ID
	h.audit.Dispatch(audit.Event{
		SalonID:  salonID,
		ActorID:  &providerID,
		Action:   action,
		Entity:   "service",
		EntityID: &id,
		Metadata: map[string]any{
			"name":             svc.Name,
			"duration_minutes": svc.DurationMinutes,
			"price":            svc.Price,
			"status":           svc.Status,
		},
	})
}
