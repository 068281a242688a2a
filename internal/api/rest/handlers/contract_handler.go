package handlers

import (
	"net/http"
	"time"

	"github.com/Dhoini/licensing-backend/internal/service"
	"github.com/Dhoini/licensing-backend/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// ContractRequest is the request body for a contract purchase
type ContractRequest struct {
	ClientID            int64           `json:"client_id" binding:"required"`
	SoftwareID          int64           `json:"software_id" binding:"required"`
	SoftwareVersion     decimal.Decimal `json:"software_version" binding:"required"`
	StartDate           time.Time       `json:"start_date" binding:"required"`
	EndDate             time.Time       `json:"end_date" binding:"required"`
	UpdateYears         int             `json:"update_years" binding:"required"`
	IsInstalment        bool            `json:"is_instalment"`
	InstalmentsQuantity int             `json:"instalments_quantity"`
}

// ContractHandler exposes the contract engine
type ContractHandler struct {
	service service.ContractService
	log     *logger.Logger
}

// NewContractHandler creates a new contract handler
func NewContractHandler(svc service.ContractService, log *logger.Logger) *ContractHandler {
	return &ContractHandler{
		service: svc,
		log:     log,
	}
}

// CreateContract creates a new contract with a computed price
func (h *ContractHandler) CreateContract(c *gin.Context) {
	var req ContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("Invalid request: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	contract, err := h.service.Create(c.Request.Context(), service.CreateContractRequest{
		ClientID:            req.ClientID,
		SoftwareID:          req.SoftwareID,
		SoftwareVersion:     req.SoftwareVersion,
		StartDate:           req.StartDate,
		EndDate:             req.EndDate,
		UpdateYears:         req.UpdateYears,
		IsInstalment:        req.IsInstalment,
		InstalmentsQuantity: req.InstalmentsQuantity,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, contract)
}

// PayContract records a payment against a contract
func (h *ContractHandler) PayContract(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	payment, err := h.service.Pay(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, payment)
}

// DeleteContract hard-deletes a contract and its payments
func (h *ContractHandler) DeleteContract(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.log, err)
		return
	}

	c.Status(http.StatusOK)
}
