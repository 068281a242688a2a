package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Dhoini/licensing-backend/internal/domain"
	"github.com/Dhoini/licensing-backend/pkg/logger"
	"github.com/gin-gonic/gin"
)

func TestRespondError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	log := logger.New(logger.FATAL)

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{"not found", domain.NotFound("Contract not found"), http.StatusNotFound, "Contract not found"},
		{"bad request", domain.BadRequest("Contract has expired"), http.StatusBadRequest, "Contract has expired"},
		{"conflict", domain.Conflict("Person already exists"), http.StatusConflict, "Person already exists"},
		{"unknown", errors.New("connection refused"), http.StatusInternalServerError, "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			respondError(c, log, tt.err)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if !strings.Contains(w.Body.String(), tt.wantBody) {
				t.Errorf("body = %q, want it to contain %q", w.Body.String(), tt.wantBody)
			}
		})
	}
}
