package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/teamtasker/team-task-service/internal/dto"
	apierrors "github.com/teamtasker/team-task-service/internal/errors"
	"github.com/teamtasker/team-task-service/internal/middleware"
	"github.com/teamtasker/team-task-service/internal/services"
)

type GroupHandler struct {
	groupService      *services.GroupService
	membershipService *services.MembershipService
}

func NewGroupHandler(groupService *services.GroupService, membershipService *services.MembershipService) *GroupHandler {
	return &GroupHandler{
		groupService:      groupService,
		membershipService: membershipService,
	}
}

// CreateGroup creates a group, optionally with an initial admin
func (h *GroupHandler) CreateGroup(c *gin.Context) {
	var req struct {
		Name    string  `json:"name" binding:"required"`
		AdminID *uint64 `json:"admin_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "name is required")
		return
	}

	group, err := h.groupService.CreateGroup(c.Request.Context(), req.Name, req.AdminID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"group": dto.ToGroupDTO(*group)})
}

// ListGroups returns all groups
func (h *GroupHandler) ListGroups(c *gin.Context) {
	groups, err := h.groupService.ListGroups(c.Request.Context())
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"groups": dto.ToGroupDTOs(groups)})
}

// GetGroup returns one group
func (h *GroupHandler) GetGroup(c *gin.Context) {
	groupID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	group, err := h.groupService.GetGroup(groupID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"group": dto.ToGroupDTO(*group)})
}

// RenameGroup changes a group's name
func (h *GroupHandler) RenameGroup(c *gin.Context) {
	groupID, ok := parseIDParam(c, "id")
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

	if err := h.groupService.RenameGroup(c.Request.Context(), groupID, req.Name); err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "group renamed"})
}

// DeleteGroup removes a group; tasks keep their group reference
func (h *GroupHandler) DeleteGroup(c *gin.Context) {
	groupID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.groupService.DeleteGroup(c.Request.Context(), groupID); err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "group deleted"})
}

// ListMembers returns the group's members, admins included
func (h *GroupHandler) ListMembers(c *gin.Context) {
	groupID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	members, err := h.groupService.ListMembers(groupID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"members": dto.ToUserDTOs(members)})
}

// AddMember links a user to the group
func (h *GroupHandler) AddMember(c *gin.Context) {
	groupID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		UserID uint64 `json:"user_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "user_id is required")
		return
	}

	if err := h.membershipService.AddUserToGroup(c.Request.Context(), req.UserID, groupID); err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "member added"})
}

// RemoveMember unlinks a user from the group
func (h *GroupHandler) RemoveMember(c *gin.Context) {
	groupID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	userID, ok := parseIDParam(c, "user_id")
	if !ok {
		return
	}

	if err := h.membershipService.RemoveUserFromGroup(c.Request.Context(), userID, groupID); err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "member removed"})
}

// AddAdmin grants admin rights on the group
func (h *GroupHandler) AddAdmin(c *gin.Context) {
	groupID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		UserID  uint64 `json:"user_id" binding:"required"`
		Promote bool   `json:"promote"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "user_id is required")
		return
	}

	if err := h.membershipService.AddGroupAdmin(c.Request.Context(), groupID, req.UserID, req.Promote); err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "admin added"})
}

// RemoveAdmin revokes admin rights on the group
func (h *GroupHandler) RemoveAdmin(c *gin.Context) {
	groupID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	userID, ok := parseIDParam(c, "user_id")
	if !ok {
		return
	}

	if err := h.membershipService.RemoveGroupAdmin(groupID, userID); err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "admin removed"})
}

// ListMyGroups returns the groups the caller belongs to
func (h *GroupHandler) ListMyGroups(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	groups, err := h.groupService.ListUserGroups(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"groups": dto.ToGroupDTOs(groups)})
}

// ListMyAdminGroups returns the groups the caller administers
func (h *GroupHandler) ListMyAdminGroups(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	groups, err := h.groupService.ListAdminGroups(userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"groups": dto.ToGroupDTOs(groups)})
}
