package dto

import (
	"time"

	"github.com/teamtasker/team-task-service/internal/models"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID         uint64 `json:"id"`
	Name       string `json:"name"`
	Username   string `json:"username,omitempty"`
	Registered bool   `json:"registered"`
	Banned     bool   `json:"banned"`
}

// GroupDTO represents a group in API responses
type GroupDTO struct {
	ID      uint64  `json:"id"`
	Name    string  `json:"name"`
	AdminID *uint64 `json:"admin_id,omitempty"`
}

// AssigneeDTO represents one assignee status record in API responses
type AssigneeDTO struct {
	UserID          uint64            `json:"user_id"`
	Status          models.TaskStatus `json:"status"`
	AssignedAt      time.Time         `json:"assigned_at"`
	StatusUpdatedAt time.Time         `json:"status_updated_at"`
}

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID          uint64            `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Date        string            `json:"date"`
	Time        string            `json:"time"`
	Status      models.TaskStatus `json:"status"`
	GroupID     uint64            `json:"group_id"`
	CreatedBy   uint64            `json:"created_by"`
	AssignedIDs []uint64          `json:"assigned_ids"`
	HasMedia    bool              `json:"has_media"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
	Creator     *UserDTO          `json:"creator,omitempty"`
	Group       *GroupDTO         `json:"group,omitempty"`
	Assignees   []AssigneeDTO     `json:"assignees,omitempty"`
}

// TaskListItemDTO represents a task in list responses (minimal data)
type TaskListItemDTO struct {
	ID          uint64            `json:"id"`
	Title       string            `json:"title"`
	Date        string            `json:"date"`
	Time        string            `json:"time"`
	Status      models.TaskStatus `json:"status"`
	GroupID     uint64            `json:"group_id"`
	CreatedBy   uint64            `json:"created_by"`
	AssignedIDs []uint64          `json:"assigned_ids"`
	HasMedia    bool              `json:"has_media"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// CascadeResultDTO reports how a lifecycle cascade touched the user's tasks
type CascadeResultDTO struct {
	Cancelled int `json:"cancelled"`
	Updated   int `json:"updated"`
}

// Conversion functions

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:         user.ID,
		Name:       user.Name,
		Username:   user.Username,
		Registered: user.Registered,
		Banned:     user.Banned,
	}
}

// ToUserDTOs converts a slice of User models to UserDTOs
func ToUserDTOs(users []models.User) []UserDTO {
	dtos := make([]UserDTO, len(users))
	for i, user := range users {
		dtos[i] = ToUserDTO(user)
	}
	return dtos
}

// ToGroupDTO converts a Group model to GroupDTO
func ToGroupDTO(group models.Group) GroupDTO {
	return GroupDTO{
		ID:      group.ID,
		Name:    group.Name,
		AdminID: group.AdminID,
	}
}

// ToGroupDTOs converts a slice of Group models to GroupDTOs
func ToGroupDTOs(groups []models.Group) []GroupDTO {
	dtos := make([]GroupDTO, len(groups))
	for i, group := range groups {
		dtos[i] = ToGroupDTO(group)
	}
	return dtos
}

// ToAssigneeDTO converts a TaskAssignee model to AssigneeDTO
func ToAssigneeDTO(assignee models.TaskAssignee) AssigneeDTO {
	return AssigneeDTO{
		UserID:          assignee.UserID,
		Status:          assignee.Status,
		AssignedAt:      assignee.AssignedAt,
		StatusUpdatedAt: assignee.StatusUpdatedAt,
	}
}

// ToTaskDTO converts a Task model to TaskDTO with loaded relations
func ToTaskDTO(task models.Task) TaskDTO {
	dto := TaskDTO{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Date:        task.Date,
		Time:        task.Time,
		Status:      task.Status,
		GroupID:     task.GroupID,
		CreatedBy:   task.CreatedBy,
		AssignedIDs: task.AssignedIDs(),
		HasMedia:    task.HasMedia,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}

	if task.Creator.ID != 0 {
		creator := ToUserDTO(task.Creator)
		dto.Creator = &creator
	}
	if task.Group.ID != 0 {
		group := ToGroupDTO(task.Group)
		dto.Group = &group
	}
	for _, assignee := range task.Assignees {
		dto.Assignees = append(dto.Assignees, ToAssigneeDTO(assignee))
	}

	return dto
}

// ToTaskListItemDTO converts a Task model to TaskListItemDTO
func ToTaskListItemDTO(task models.Task) TaskListItemDTO {
	return TaskListItemDTO{
		ID:          task.ID,
		Title:       task.Title,
		Date:        task.Date,
		Time:        task.Time,
		Status:      task.Status,
		GroupID:     task.GroupID,
		CreatedBy:   task.CreatedBy,
		AssignedIDs: task.AssignedIDs(),
		HasMedia:    task.HasMedia,
		UpdatedAt:   task.UpdatedAt,
	}
}

// ToTaskListItemDTOs converts a slice of Task models to TaskListItemDTOs
func ToTaskListItemDTOs(tasks []models.Task) []TaskListItemDTO {
	dtos := make([]TaskListItemDTO, len(tasks))
	for i, task := range tasks {
		dtos[i] = ToTaskListItemDTO(task)
	}
	return dtos
}
