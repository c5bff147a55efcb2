package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/teamtasker/team-task-service/internal/dto"
	apierrors "github.com/teamtasker/team-task-service/internal/errors"
	"github.com/teamtasker/team-task-service/internal/middleware"
	"github.com/teamtasker/team-task-service/internal/models"
	"github.com/teamtasker/team-task-service/internal/services"
	"github.com/teamtasker/team-task-service/internal/utils"
)

type TaskHandler struct {
	taskService  *services.TaskService
	groupService *services.GroupService
}

func NewTaskHandler(taskService *services.TaskService, groupService *services.GroupService) *TaskHandler {
	return &TaskHandler{
		taskService:  taskService,
		groupService: groupService,
	}
}

// CreateTask creates a task in a group, with optional initial assignees
func (h *TaskHandler) CreateTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	var req struct {
		Title       string   `json:"title" binding:"required"`
		Description string   `json:"description" binding:"required"`
		Date        string   `json:"date" binding:"required"`
		Time        string   `json:"time" binding:"required"`
		GroupID     uint64   `json:"group_id" binding:"required"`
		AssigneeIDs []uint64 `json:"assignee_ids"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "title, description, date, time and group_id are required")
		return
	}

	task, err := h.taskService.CreateTask(services.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Date:        req.Date,
		Time:        req.Time,
		GroupID:     req.GroupID,
		CreatorID:   userID,
		AssigneeIDs: req.AssigneeIDs,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"task": dto.ToTaskDTO(*task)})
}

// GetTask returns one task with its relations
func (h *TaskHandler) GetTask(c *gin.Context) {
	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	task, err := h.taskService.GetTask(taskID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"task": dto.ToTaskDTO(*task)})
}

// ListTasks returns active tasks, optionally filtered by group
func (h *TaskHandler) ListTasks(c *gin.Context) {
	var (
		tasks []models.Task
		err   error
	)

	if groupIDStr := c.Query("group_id"); groupIDStr != "" {
		groupID, parseErr := strconv.ParseUint(groupIDStr, 10, 64)
		if parseErr != nil {
			apierrors.BadRequest(c, "invalid group_id")
			return
		}
		tasks, err = h.taskService.ListGroupTasks(groupID)
	} else {
		tasks, err = h.taskService.ListAllTasks()
	}
	if err != nil {
		handleServiceError(c, err)
		return
	}

	respondTaskPage(c, tasks)
}

// ListMyTasks returns the caller's active assigned tasks, or the archived
// ones when archived=true. With scope=created the same applies to tasks the
// caller created. With scope=groups the active tasks of all the caller's
// groups are returned in one response.
func (h *TaskHandler) ListMyTasks(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	archived := c.Query("archived") == "true"
	scope := c.DefaultQuery("scope", "assigned")

	var (
		tasks []models.Task
		err   error
	)
	switch {
	case scope == "created" && archived:
		tasks, err = h.taskService.ListArchivedCreatedTasks(userID)
	case scope == "created":
		tasks, err = h.taskService.ListCreatedTasks(userID)
	case scope == "groups":
		var groups []models.Group
		groups, err = h.groupService.ListUserGroups(c.Request.Context(), userID)
		if err == nil {
			ids := make([]uint64, len(groups))
			for i, g := range groups {
				ids[i] = g.ID
			}
			tasks, err = h.taskService.ListGroupsTasks(ids)
		}
	case archived:
		tasks, err = h.taskService.ListArchivedUserTasks(userID)
	default:
		tasks, err = h.taskService.ListUserTasks(userID)
	}
	if err != nil {
		handleServiceError(c, err)
		return
	}

	respondTaskPage(c, tasks)
}

// UpdateTask updates one editable field of a task
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}
	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		Field string      `json:"field" binding:"required"`
		Value interface{} `json:"value"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "field is required")
		return
	}

	if err := h.taskService.UpdateTaskField(taskID, req.Field, req.Value, userID); err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "task updated"})
}

// DeleteTask removes a task and its dependent rows
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}
	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.taskService.DeleteTask(taskID, userID); err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "task deleted"})
}

// ForceStatus overrides the task's aggregate status
func (h *TaskHandler) ForceStatus(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}
	taskID, ok := parseIDParam(c, "id")
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

	if err := h.taskService.ForceStatus(taskID, req.Status, userID); err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "status updated", "status": req.Status})
}

// AddMedia attaches a media reference to a task
func (h *TaskHandler) AddMedia(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}
	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		FileID   string `json:"file_id" binding:"required"`
		FileType string `json:"file_type" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "file_id and file_type are required")
		return
	}

	if err := h.taskService.AddMedia(taskID, req.FileID, req.FileType, userID); err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "media added"})
}

// ListMedia returns the task's media references
func (h *TaskHandler) ListMedia(c *gin.Context) {
	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	media, err := h.taskService.ListMedia(taskID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"media": media})
}

// RemoveMedia detaches one media reference from a task
func (h *TaskHandler) RemoveMedia(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}
	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	mediaID, ok := parseIDParam(c, "media_id")
	if !ok {
		return
	}

	if err := h.taskService.RemoveMedia(taskID, mediaID, userID); err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "media removed"})
}

// ListHistory returns a task's audit trail, newest first
func (h *TaskHandler) ListHistory(c *gin.Context) {
	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	history, err := h.taskService.ListHistory(taskID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"history": history})
}

func respondTaskPage(c *gin.Context, tasks []models.Task) {
	params := utils.GetPaginationParams(c)
	start, end := utils.PageBounds(len(tasks), params)

	c.JSON(http.StatusOK, gin.H{
		"tasks": dto.ToTaskListItemDTOs(tasks[start:end]),
		"pagination": utils.PaginationResponse{
			Page:  params.Page,
			Limit: params.Limit,
			Total: int64(len(tasks)),
		},
	})
}
