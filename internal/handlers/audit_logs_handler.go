package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/salon-scheduler/internal/audit"
	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/timezone"
)

// ======================================================
// HANDLER
// ======================================================

type AuditLogsHandler struct {
	reader audit.Reader
	tz     *timezone.Salon
}

func NewAuditLogsHandler(reader audit.Reader, tz *timezone.Salon) *AuditLogsHandler {
	return &AuditLogsHandler{reader: reader, tz: tz}
}

func (h *AuditLogsHandler) List(c *gin.Context) {
	_, salonID := actor(c)

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page <= 0 {
		page = 1
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	f := audit.Filter{
		SalonID: salonID,
		Action:  c.Query("action"),
		Entity:  c.Query("entity"),
		Page:    page,
		Limit:   limit,
	}

	// --------------------------------------------------
	// Date range, inclusive, in the salon timezone
	// --------------------------------------------------

	if raw := c.Query("from"); raw != "" {
		from, err := h.tz.ParseDate(raw)
		if err != nil {
			httperr.Respond(c, err)
			return
		}
		f.From = &from
	}

	if raw := c.Query("to"); raw != "" {
		to, err := h.tz.ParseDate(raw)
		if err != nil {
			httperr.Respond(c, err)
			return
		}
		to = to.AddDate(0, 0, 1)
		f.To = &to
	}

	logs, total, err := h.reader.List(c.Request.Context(), f)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"page":  page,
		"limit": limit,
		"total": total,
		"logs":  logs,
	})
}
