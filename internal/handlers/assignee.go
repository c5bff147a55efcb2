package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	apierrors "github.com/teamtasker/team-task-service/internal/errors"
	"github.com/teamtasker/team-task-service/internal/models"
	"github.com/teamtasker/team-task-service/internal/services"
)

type AssigneeHandler struct {
	assigneeService *services.AssigneeService
}

func NewAssigneeHandler(assigneeService *services.AssigneeService) *AssigneeHandler {
	return &AssigneeHandler{
		assigneeService: assigneeService,
	}
}

// AddAssignees assigns users to a task with an initial pending status
func (h *AssigneeHandler) AddAssignees(c *gin.Context) {
	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		UserIDs []uint64 `json:"user_ids" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "user_ids is required")
		return
	}

	if err := h.assigneeService.AddAssignees(taskID, req.UserIDs); err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "assignees added"})
}

// ListStatuses returns every assignee's status for a task
func (h *AssigneeHandler) ListStatuses(c *gin.Context) {
	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	statuses, err := h.assigneeService.ListStatuses(taskID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"statuses": statuses})
}

// GetStatus returns one assignee's status on a task
func (h *AssigneeHandler) GetStatus(c *gin.Context) {
	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	userID, ok := parseIDParam(c, "user_id")
	if !ok {
		return
	}

	status, err := h.assigneeService.GetStatus(taskID, userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user_id": userID, "status": status})
}

// SetStatus updates one assignee's status and reports the new aggregate
func (h *AssigneeHandler) SetStatus(c *gin.Context) {
	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	userID, ok := parseIDParam(c, "user_id")
	if !ok {
		return
	}

	var req struct {
		Status models.TaskStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "status is required")
		return
	}

	aggregate, err := h.assigneeService.SetStatus(taskID, userID, req.Status)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id":     userID,
		"status":      req.Status,
		"task_status": aggregate,
	})
}

// RemoveAssignee removes one assignee from a task
func (h *AssigneeHandler) RemoveAssignee(c *gin.Context) {
	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	userID, ok := parseIDParam(c, "user_id")
	if !ok {
		return
	}

	if err := h.assigneeService.RemoveAssignee(taskID, userID); err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "assignee removed"})
}
