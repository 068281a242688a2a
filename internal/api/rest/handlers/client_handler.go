package handlers

import (
	"net/http"
	"strconv"

	"github.com/Dhoini/licensing-backend/internal/service"
	"github.com/Dhoini/licensing-backend/pkg/logger"
	"github.com/gin-gonic/gin"
)

// PersonRequest is the request body for person registration and update
type PersonRequest struct {
	FirstName   string `json:"first_name" binding:"required"`
	LastName    string `json:"last_name" binding:"required"`
	Pesel       string `json:"pesel" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	Address     string `json:"address" binding:"required"`
	PhoneNumber string `json:"phone_number" binding:"required"`
}

// CompanyRequest is the request body for company registration and update
type CompanyRequest struct {
	CompanyName string `json:"company_name" binding:"required"`
	KRS         string `json:"krs" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	Address     string `json:"address" binding:"required"`
	PhoneNumber string `json:"phone_number" binding:"required"`
}

// ClientHandler exposes the client registry
type ClientHandler struct {
	service service.ClientService
	log     *logger.Logger
}

// NewClientHandler creates a new client handler
func NewClientHandler(svc service.ClientService, log *logger.Logger) *ClientHandler {
	return &ClientHandler{
		service: svc,
		log:     log,
	}
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return 0, false
	}
	return id, true
}

// CreatePerson registers a new person client
func (h *ClientHandler) CreatePerson(c *gin.Context) {
	var req PersonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("Invalid request: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	client, err := h.service.AddPerson(c.Request.Context(), service.PersonInput{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Pesel:       req.Pesel,
		Email:       req.Email,
		Address:     req.Address,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, client)
}

// UpdatePerson updates an existing person client
func (h *ClientHandler) UpdatePerson(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req PersonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("Invalid request: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.service.UpdatePerson(c.Request.Context(), id, service.PersonInput{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Pesel:       req.Pesel,
		Email:       req.Email,
		Address:     req.Address,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.Status(http.StatusOK)
}

// DeletePerson soft-deletes a person client
func (h *ClientHandler) DeletePerson(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.service.DeletePerson(c.Request.Context(), id); err != nil {
		respondError(c, h.log, err)
		return
	}

	c.Status(http.StatusOK)
}

// CreateCompany registers a new company client
func (h *ClientHandler) CreateCompany(c *gin.Context) {
	var req CompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("Invalid request: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	client, err := h.service.AddCompany(c.Request.Context(), service.CompanyInput{
		CompanyName: req.CompanyName,
		KRS:         req.KRS,
		Email:       req.Email,
		Address:     req.Address,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, client)
}

// UpdateCompany updates an existing company client
func (h *ClientHandler) UpdateCompany(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req CompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("Invalid request: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.service.UpdateCompany(c.Request.Context(), id, service.CompanyInput{
		CompanyName: req.CompanyName,
		KRS:         req.KRS,
		Email:       req.Email,
		Address:     req.Address,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.Status(http.StatusOK)
}

// DeleteCompany soft-deletes a company client
func (h *ClientHandler) DeleteCompany(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteCompany(c.Request.Context(), id); err != nil {
		respondError(c, h.log, err)
		return
	}

	c.Status(http.StatusOK)
}
