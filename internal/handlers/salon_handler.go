package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	domain "github.com/BruksfildServices01/salon-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
)

type SalonHandler struct {
	catalog domain.Catalog
}

func NewSalonHandler(catalog domain.Catalog) *SalonHandler {
	return &SalonHandler{catalog: catalog}
}

func (h *SalonHandler) salon(c *gin.Context) (*models.Salon, bool) {
	salon, err := h.catalog.GetSalonBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		httperr.Respond(c, notFoundAs(err, "salon_not_found"))
		return nil, false
	}
	return salon, true
}

func (h *SalonHandler) Get(c *gin.Context) {
	salon, ok := h.salon(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, salon)
}

// ListProviders returns the salon's active providers.
func (h *SalonHandler) ListProviders(c *gin.Context) {
	salon, ok := h.salon(c)
	if !ok {
		return
	}

	providers, err := h.catalog.ListProviders(c.Request.Context(), salon.ID)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	active := make([]models.Provider, 0, len(providers))
	for _, p := range providers {
		if p.Active {
			active = append(active, p)
		}
	}
	c.JSON(http.StatusOK, active)
}
