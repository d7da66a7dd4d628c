package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	domain "github.com/BruksfildServices01/salon-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
)

type MeHandler struct {
	catalog domain.Catalog
}

func NewMeHandler(catalog domain.Catalog) *MeHandler {
	return &MeHandler{catalog: catalog}
}

func (h *MeHandler) GetMe(c *gin.Context) {
	providerID, salonID := actor(c)
	ctx := c.Request.Context()

	provider, err := h.catalog.GetProvider(ctx, providerID)
	if err != nil {
		httperr.Respond(c, notFoundAs(err, "provider_not_found"))
		return
	}
	if provider.SalonID != salonID {
		httperr.Write(c, http.StatusForbidden, "forbidden", httperr.Message("forbidden"))
		return
	}

	salon, err := h.catalog.GetSalon(ctx, salonID)
	if err != nil {
		httperr.Respond(c, notFoundAs(err, "salon_not_found"))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"provider": gin.H{
			"id":     provider.ID,
			"name":   provider.Name,
			"email":  provider.Email,
			"phone":  provider.Phone,
			"active": provider.Active,
		},
		"salon": gin.H{
			"id":      salon.ID,
			"name":    salon.Name,
			"slug":    salon.Slug,
			"phone":   salon.Phone,
			"address": salon.Address,
		},
	})
}
