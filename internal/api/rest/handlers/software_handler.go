package handlers

import (
	"net/http"

	"github.com/Dhoini/licensing-backend/internal/service"
	"github.com/Dhoini/licensing-backend/pkg/logger"
	"github.com/gin-gonic/gin"
)

// SoftwareHandler exposes the software catalog
type SoftwareHandler struct {
	service service.CatalogService
	log     *logger.Logger
}

// NewSoftwareHandler creates a new software handler
func NewSoftwareHandler(svc service.CatalogService, log *logger.Logger) *SoftwareHandler {
	return &SoftwareHandler{
		service: svc,
		log:     log,
	}
}

// GetSoftwares returns the full software catalog
func (h *SoftwareHandler) GetSoftwares(c *gin.Context) {
	list, err := h.service.ListSoftware(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, list)
}
