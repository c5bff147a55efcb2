package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	apierrors "github.com/teamtasker/team-task-service/internal/errors"
	"github.com/teamtasker/team-task-service/internal/middleware"
	"github.com/teamtasker/team-task-service/internal/services"
)

type RegistrationHandler struct {
	registrationService *services.RegistrationService
}

func NewRegistrationHandler(registrationService *services.RegistrationService) *RegistrationHandler {
	return &RegistrationHandler{
		registrationService: registrationService,
	}
}

// Register registers the caller immediately with the shared password
func (h *RegistrationHandler) Register(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	var req struct {
		Name     string `json:"name" binding:"required"`
		Username string `json:"username"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "name and password are required")
		return
	}

	if err := h.registrationService.RegisterWithPassword(userID, req.Name, req.Username, req.Password); err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "registered"})
}

// RequestRegistration files a registration request for later review
func (h *RegistrationHandler) RequestRegistration(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	var req struct {
		Name     string `json:"name" binding:"required"`
		Username string `json:"username"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "name is required")
		return
	}

	request, err := h.registrationService.RequestRegistration(userID, req.Name, req.Username)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"request": request})
}

// ListPending returns the registration requests awaiting review
func (h *RegistrationHandler) ListPending(c *gin.Context) {
	reviewerID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	requests, err := h.registrationService.ListPending(reviewerID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"requests": requests})
}

// ApproveRequest approves a pending request and registers the user
func (h *RegistrationHandler) ApproveRequest(c *gin.Context) {
	reviewerID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}
	requestID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.registrationService.ApproveRequest(requestID, reviewerID); err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "request approved"})
}

// RejectRequest rejects a pending request
func (h *RegistrationHandler) RejectRequest(c *gin.Context) {
	reviewerID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}
	requestID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.registrationService.RejectRequest(requestID, reviewerID); err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "request rejected"})
}
