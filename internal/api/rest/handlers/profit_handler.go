package handlers

import (
	"net/http"
	"strconv"

	"github.com/Dhoini/licensing-backend/internal/service"
	"github.com/Dhoini/licensing-backend/pkg/logger"
	"github.com/gin-gonic/gin"
)

// ProfitHandler exposes profit aggregation
type ProfitHandler struct {
	service service.ProfitService
	log     *logger.Logger
}

// NewProfitHandler creates a new profit handler
func NewProfitHandler(svc service.ProfitService, log *logger.Logger) *ProfitHandler {
	return &ProfitHandler{
		service: svc,
		log:     log,
	}
}

// GetProfit returns the aggregated profit in the requested currency,
// optionally filtered to one software product.
func (h *ProfitHandler) GetProfit(c *gin.Context) {
	currency := c.Query("currency")
	if currency == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Currency code is required"})
		return
	}

	var softwareID *int64
	if raw := c.Query("software_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid software ID format"})
			return
		}
		softwareID = &id
	}

	report, err := h.service.Calculate(c.Request.Context(), currency, softwareID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, report)
}
