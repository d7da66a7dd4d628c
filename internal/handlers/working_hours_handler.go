package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/salon-scheduler/internal/audit"
	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	ucCatalog "github.com/BruksfildServices01/salon-scheduler/internal/usecase/catalog"
)

type WorkingHoursHandler struct {
	hours *ucCatalog.WorkingHours
	audit Auditor
}

func NewWorkingHoursHandler(hours *ucCatalog.WorkingHours, auditor Auditor) *WorkingHoursHandler {
	return &WorkingHoursHandler{hours: hours, audit: orNoop(auditor)}
}

// WorkingDayConfig is one window; omit weekday for every day.
type WorkingDayConfig struct {
	Weekday     *int `json:"weekday" binding:"omitempty,min=0,max=6"`
	OpeningHour int  `json:"opening_hour" binding:"min=0,max=23"`
	ClosingHour int  `json:"closing_hour" binding:"required,min=1,max=24"`
}

type WorkingHoursUpdateRequest struct {
	Days []WorkingDayConfig `json:"days" binding:"dive"`
}

func (h *WorkingHoursHandler) Get(c *gin.Context) {
	providerID, salonID := actor(c)

	rows, err := h.hours.List(c.Request.Context(), salonID, providerID)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

// Update replaces the provider's own windows. An empty list falls back to the salon defaults.
func (h *WorkingHoursHandler) Update(c *gin.Context) {
	providerID, salonID := actor(c)

	var req WorkingHoursUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_working_hours", httperr.Message("invalid_working_hours"))
		return
	}

	days := make([]ucCatalog.DayHours, 0, len(req.Days))
	for _, d := range req.Days {
		days = append(days, ucCatalog.DayHours{Weekday: d.Weekday, Opening: d.OpeningHour, Closing: d.ClosingHour})
	}

	rows, err := h.hours.Replace(c.Request.Context(), salonID, providerID, days)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	h.audit.Dispatch(audit.Event{
		SalonID:  salonID,
		ActorID:  &providerID,
		Action:   audit.ActionWorkingHoursUpdated,
		Entity:   "working_hours",
		Metadata: req.Days,
	})

	c.JSON(http.StatusOK, rows)
}
