package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	domain "github.com/BruksfildServices01/salon-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
	"github.com/BruksfildServices01/salon-scheduler/internal/timezone"
	ucAppointment "github.com/BruksfildServices01/salon-scheduler/internal/usecase/appointment"
)

// ======================================================
// DEPENDENCIES
// ======================================================

type HoursReader interface {
	For(ctx context.Context, providerID uint, day time.Time) (domain.WorkingHours, bool, error)
}

type ServiceLister interface {
	List(ctx context.Context, providerID uint) ([]models.Service, error)
}

type AvailabilityQuerier interface {
	Execute(ctx context.Context, q ucAppointment.AvailabilityQuery) ([]string, error)
}

// ======================================================
// HANDLER
// ======================================================

// PublicHandler serves the provider reads the booking flow needs.
type PublicHandler struct {
	hours        HoursReader
	services     ServiceLister
	availability AvailabilityQuerier
	tz           *timezone.Salon
}

func NewPublicHandler(
	hours HoursReader,
	services ServiceLister,
	availability AvailabilityQuerier,
	tz *timezone.Salon,
) *PublicHandler {
	return &PublicHandler{
		hours:        hours,
		services:     services,
		availability: availability,
		tz:           tz,
	}
}

type WorkingHoursResponse struct {
	OpeningHour int `json:"openingHour"`
	ClosingHour int `json:"closingHour"`
}

// WorkingHours answers for ?date= (default today). A closed day is 404.
func (h *PublicHandler) WorkingHours(c *gin.Context) {
	providerID, ok := idParam(c, "id")
	if !ok {
		httperr.Respond(c, httperr.NotFound("provider_not_found"))
		return
	}

	day := h.tz.Now()
	if raw := c.Query("date"); raw != "" {
		d, err := h.tz.ParseDate(raw)
		if err != nil {
			httperr.Respond(c, err)
			return
		}
		day = d
	}

	wh, open, err := h.hours.For(c.Request.Context(), providerID, day)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	if !open {
		httperr.Respond(c, httperr.NotFound("working_hours_not_found"))
		return
	}

	c.JSON(http.StatusOK, WorkingHoursResponse{OpeningHour: wh.Opening, ClosingHour: wh.Closing})
}

func (h *PublicHandler) Services(c *gin.Context) {
	providerID, ok := idParam(c, "id")
	if !ok {
		httperr.Respond(c, httperr.NotFound("provider_not_found"))
		return
	}

	services, err := h.services.List(c.Request.Context(), providerID)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, services)
}

// Availability takes date plus either serviceDuration (minutes) or service_id.
func (h *PublicHandler) Availability(c *gin.Context) {
	providerID, ok := idParam(c, "id")
	if !ok {
		httperr.Respond(c, httperr.NotFound("provider_not_found"))
		return
	}

	date := c.Query("date")
	if date == "" {
		httperr.BadRequest(c, "missing_date", httperr.Message("missing_date"))
		return
	}

	q := ucAppointment.AvailabilityQuery{ProviderID: providerID, Date: date}

	if serviceID, ok := queryUint(c, "service_id"); ok {
		q.ServiceID = serviceID
	} else if raw := c.Query("serviceDuration"); raw != "" {
		d, err := strconv.Atoi(raw)
		if err != nil {
			httperr.Respond(c, httperr.Validation("invalid_duration"))
			return
		}
		q.DurationMinutes = d
	} else {
		httperr.BadRequest(c, "missing_params", httperr.Message("missing_params"))
		return
	}

	slots, err := h.availability.Execute(c.Request.Context(), q)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, slots)
}
