package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/teamtasker/team-task-service/internal/dto"
	apierrors "github.com/teamtasker/team-task-service/internal/errors"
	"github.com/teamtasker/team-task-service/internal/middleware"
	"github.com/teamtasker/team-task-service/internal/models"
	"github.com/teamtasker/team-task-service/internal/services"
)

type UserHandler struct {
	membershipService *services.MembershipService
}

func NewUserHandler(membershipService *services.MembershipService) *UserHandler {
	return &UserHandler{
		membershipService: membershipService,
	}
}

// ListUsers returns all non-deleted users; without_group=true narrows to
// users with no group membership
func (h *UserHandler) ListUsers(c *gin.Context) {
	var (
		users []models.User
		err   error
	)
	if c.Query("without_group") == "true" {
		users, err = h.membershipService.ListUsersWithoutGroup()
	} else {
		users, err = h.membershipService.ListUsers()
	}
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": dto.ToUserDTOs(users)})
}

// GetUser returns one user
func (h *UserHandler) GetUser(c *gin.Context) {
	userID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	user, err := h.membershipService.GetUser(userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": dto.ToUserDTO(*user)})
}

// SetUserName updates a user's display name
func (h *UserHandler) SetUserName(c *gin.Context) {
	userID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "name is required")
		return
	}

	if err := h.membershipService.SetUserName(userID, req.Name); err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "name updated"})
}

// ListAssignableUsers returns the users the caller may assign tasks to
func (h *UserHandler) ListAssignableUsers(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	users, err := h.membershipService.ListAssignableUsers(userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": dto.ToUserDTOs(users)})
}

// BanUser flags the user banned and runs the consistency cascade
func (h *UserHandler) BanUser(c *gin.Context) {
	actorID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}
	userID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	counts, err := h.membershipService.BanUser(c.Request.Context(), userID, actorID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "user banned",
		"tasks":   dto.CascadeResultDTO{Cancelled: counts.Cancelled, Updated: counts.Updated},
	})
}

// UnbanUser clears the banned flag without restoring memberships or tasks
func (h *UserHandler) UnbanUser(c *gin.Context) {
	actorID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}
	userID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.membershipService.UnbanUser(userID, actorID); err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "user unbanned"})
}

// DeleteUser runs the ban cascade and flags the user deleted
func (h *UserHandler) DeleteUser(c *gin.Context) {
	actorID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}
	userID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	counts, err := h.membershipService.DeleteUser(c.Request.Context(), userID, actorID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "user deleted",
		"tasks":   dto.CascadeResultDTO{Cancelled: counts.Cancelled, Updated: counts.Updated},
	})
}

// CancelUserTasks runs only the task portion of the cascade
func (h *UserHandler) CancelUserTasks(c *gin.Context) {
	userID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	counts, err := h.membershipService.CancelUserTasks(userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "user tasks cancelled",
		"tasks":   dto.CascadeResultDTO{Cancelled: counts.Cancelled, Updated: counts.Updated},
	})
}
