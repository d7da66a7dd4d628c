package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/salon-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/salon-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/salon-scheduler/internal/dto"
	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/salon-scheduler/internal/timezone"
	ucAppointment "github.com/BruksfildServices01/salon-scheduler/internal/usecase/appointment"
)

// SlotInvalidator drops cached availability after the ledger changes.
type SlotInvalidator interface {
	Invalidate(ctx context.Context, providerID uint, t time.Time)
}

// ======================================================
// HANDLER
// ======================================================

type AppointmentHandler struct {
	commit      *ucAppointment.CommitBooking
	cancel      *ucAppointment.CancelAppointment
	status      *ucAppointment.UpdateAppointmentStatus
	remove      *ucAppointment.DeleteAppointment
	listByDate  *ucAppointment.ListAppointmentsByDate
	listByMonth *ucAppointment.ListAppointmentsByMonth

	catalog domain.Catalog
	slots   SlotInvalidator
	audit   Auditor
	tz      *timezone.Salon
}

func NewAppointmentHandler(
	commit *ucAppointment.CommitBooking,
	cancel *ucAppointment.CancelAppointment,
	status *ucAppointment.UpdateAppointmentStatus,
	remove *ucAppointment.DeleteAppointment,
	listByDate *ucAppointment.ListAppointmentsByDate,
	listByMonth *ucAppointment.ListAppointmentsByMonth,
	catalog domain.Catalog,
	slots SlotInvalidator,
	auditor Auditor,
	tz *timezone.Salon,
) *AppointmentHandler {
	return &AppointmentHandler{
		commit:      commit,
		cancel:      cancel,
		status:      status,
		remove:      remove,
		listByDate:  listByDate,
		listByMonth: listByMonth,
		catalog:     catalog,
		slots:       slots,
		audit:       orNoop(auditor),
		tz:          tz,
	}
}

// ======================================================
// REQUESTS
// ======================================================

// CustomerRequest is either {user_id} or a guest {name, email?, phone?}.
type CustomerRequest struct {
	UserID uint   `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email" binding:"omitempty,email"`
	Phone  string `json:"phone"`
}

func (r *CustomerRequest) toDomain() domain.Customer {
	if r == nil {
		return nil
	}
	if r.UserID != 0 {
		return domain.Registered{UserID: r.UserID}
	}
	if r.Name == "" && r.Email == "" && r.Phone == "" {
		return nil
	}
	return domain.Guest{
		Name:  strings.TrimSpace(r.Name),
		Email: strings.TrimSpace(r.Email),
		Phone: strings.TrimSpace(r.Phone),
	}
}

type CreateAppointmentRequest struct {
	ProviderID uint             `json:"provider_id"`
	ServiceID  uint             `json:"service_id" binding:"required"`
	Date       string           `json:"appointment_date" binding:"required,isodate"`
	Time       string           `json:"appointment_time" binding:"required,hhmm"`
	Comment    string           `json:"comment" binding:"max=255"`
	Customer   *CustomerRequest `json:"customer"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// ======================================================
// CREATE
// ======================================================

// Create is the public booking endpoint.
func (h *AppointmentHandler) Create(c *gin.Context) {
	var req CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", httperr.Message("invalid_request"))
		return
	}
	if req.ProviderID == 0 {
		httperr.BadRequest(c, "invalid_request", httperr.Message("invalid_request"))
		return
	}

	h.create(c, req, nil)
}

// CreateManual lets a provider book on their own calendar, e.g. a walk-in.
func (h *AppointmentHandler) CreateManual(c *gin.Context) {
	providerID, _ := actor(c)

	var req CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", httperr.Message("invalid_request"))
		return
	}
	req.ProviderID = providerID

	h.create(c, req, &providerID)
}

func (h *AppointmentHandler) create(c *gin.Context, req CreateAppointmentRequest, actorID *uint) {
	ctx := c.Request.Context()

	ap, err := h.commit.Execute(ctx, ucAppointment.CommitInput{
		ProviderID: req.ProviderID,
		ServiceID:  req.ServiceID,
		Date:       req.Date,
		Time:       req.Time,
		Customer:   req.Customer.toDomain(),
		Comment:    req.Comment,
	})
	if err != nil {
		if httperr.IsBusiness(err, "time_conflict") {
			h.auditConflict(ctx, req, actorID)
		}
		httperr.Respond(c, err)
		return
	}

	h.slots.Invalidate(ctx, ap.ProviderID, ap.AppointmentStart)
	auditAppointment(h.audit, ap, actorID, audit.ActionAppointmentCreated)

	httpresp.Created(c, dto.AppointmentCreatedDTO{
		Appointment: *ap,
		ManageToken: ap.ManageToken,
	})
}

func (h *AppointmentHandler) auditConflict(ctx context.Context, req CreateAppointmentRequest, actorID *uint) {
	provider, err := h.catalog.GetProvider(ctx, req.ProviderID)
	if err != nil {
		return
	}
	h.audit.Dispatch(audit.Event{
		SalonID: provider.SalonID,
		ActorID: actorID,
		Action:  audit.ActionAppointmentConflict,
		Entity:  "appointment",
		Metadata: map[string]any{
			"provider_id": req.ProviderID,
			"service_id":  req.ServiceID,
			"date":        req.Date,
			"time":        req.Time,
		},
	})
}

// ======================================================
// CANCEL (CUSTOMER)
// ======================================================

// CancelByToken soft-cancels using the manage token from ?token= or X-Manage-Token.
func (h *AppointmentHandler) CancelByToken(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		httperr.Respond(c, httperr.NotFound("appointment_not_found"))
		return
	}

	token := c.Query("token")
	if token == "" {
		token = c.GetHeader("X-Manage-Token")
	}

	res, err := h.cancel.Execute(c.Request.Context(), ucAppointment.CancelInput{
		AppointmentID: id,
		ManageToken:   token,
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	h.afterStatusChange(c.Request.Context(), res, nil, domain.StatusCanceled)
	c.JSON(http.StatusOK, dto.StatusChangeDTO{Appointment: res.Appointment, Changed: res.Changed})
}

// ======================================================
// PROVIDER CALENDAR
// ======================================================

func (h *AppointmentHandler) ListByDate(c *gin.Context) {
	providerID, _ := actor(c)

	date := c.Query("date")
	if date == "" {
		httperr.BadRequest(c, "missing_date", httperr.Message("missing_date"))
		return
	}

	list, err := h.listByDate.Execute(c.Request.Context(), providerID, date)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.List(c, list)
}

func (h *AppointmentHandler) ListByMonth(c *gin.Context) {
	providerID, _ := actor(c)

	year, errY := strconv.Atoi(c.Query("year"))
	month, errM := strconv.Atoi(c.Query("month"))
	if errY != nil || errM != nil {
		httperr.BadRequest(c, "missing_params", httperr.Message("missing_params"))
		return
	}

	list, err := h.listByMonth.Execute(c.Request.Context(), providerID, year, month)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.List(c, list)
}

// UpdateStatus handles complete, no_show and cancel from the provider.
func (h *AppointmentHandler) UpdateStatus(c *gin.Context) {
	providerID, _ := actor(c)

	id, ok := idParam(c, "id")
	if !ok {
		httperr.Respond(c, httperr.NotFound("appointment_not_found"))
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", httperr.Message("invalid_request"))
		return
	}
	target, err := domain.ParseStatus(req.Status)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	res, err := h.status.Execute(c.Request.Context(), providerID, id, target)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	h.afterStatusChange(c.Request.Context(), res, &providerID, target)
	c.JSON(http.StatusOK, dto.StatusChangeDTO{Appointment: res.Appointment, Changed: res.Changed})
}

// Delete is the hard delete used for provider management.
func (h *AppointmentHandler) Delete(c *gin.Context) {
	providerID, _ := actor(c)

	id, ok := idParam(c, "id")
	if !ok {
		httperr.Respond(c, httperr.NotFound("appointment_not_found"))
		return
	}

	ap, err := h.remove.Execute(c.Request.Context(), providerID, id)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	h.slots.Invalidate(c.Request.Context(), ap.ProviderID, ap.AppointmentStart)
	auditAppointment(h.audit, ap, &providerID, audit.ActionAppointmentDeleted)

	c.JSON(http.StatusOK, gin.H{"deleted": true, "id": ap.ID})
}

func (h *AppointmentHandler) afterStatusChange(
	ctx context.Context,
	res ucAppointment.StatusChange,
	actorID *uint,
	target domain.Status,
) {
	if !res.Changed {
		return
	}
	ap := res.Appointment
	// any status other than scheduled frees the interval
	if target != domain.StatusScheduled {
		h.slots.Invalidate(ctx, ap.ProviderID, ap.AppointmentStart)
	}
	auditAppointment(h.audit, ap, actorID, statusAction(target))
}

