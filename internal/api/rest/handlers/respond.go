package handlers

import (
	"errors"
	"net/http"

	"github.com/Dhoini/licensing-backend/internal/domain"
	"github.com/Dhoini/licensing-backend/pkg/logger"
	"github.com/gin-gonic/gin"
)

// respondError translates a business error to a status code. The message
// reaches the caller unmodified; anything outside the taxonomy is a 500.
func respondError(c *gin.Context, log *logger.Logger, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrBadRequest):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		log.Error("Unhandled error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
