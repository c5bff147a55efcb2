package services

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/teamtasker/team-task-service/internal/models"
	"github.com/teamtasker/team-task-service/internal/permissions"
	"github.com/teamtasker/team-task-service/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrTaskNotFound       = errors.New("task not found")
	ErrTaskFieldsRequired = errors.New("title, description, date and time are required")
	ErrTaskEditDenied     = errors.New("user is not allowed to modify this task")
	ErrForceStatusDenied  = errors.New("only an admin may force the status of a task with assignees")
	ErrFieldNotEditable   = errors.New("field cannot be updated directly")
	ErrMediaLimitReached  = errors.New("task already has the maximum number of media attachments")
	ErrMediaNotFound      = errors.New("media attachment not found")
)

// CreateTaskInput represents the data needed to create a task
type CreateTaskInput struct {
	Title       string   `json:"title" binding:"required"`
	Description string   `json:"description" binding:"required"`
	Date        string   `json:"date" binding:"required"`
	Time        string   `json:"time" binding:"required"`
	GroupID     uint64   `json:"group_id" binding:"required"`
	CreatorID   uint64   `json:"creator_id" binding:"required"`
	AssigneeIDs []uint64 `json:"assignee_ids"`
}

type TaskService struct {
	taskRepo  repository.TaskRepository
	groupRepo repository.GroupRepository
	userRepo  repository.UserRepository
	checker   *permissions.Checker
	log       *logrus.Logger
}

// NewTaskService creates a new TaskService
func NewTaskService(taskRepo repository.TaskRepository, groupRepo repository.GroupRepository, userRepo repository.UserRepository, checker *permissions.Checker, log *logrus.Logger) *TaskService {
	return &TaskService{
		taskRepo:  taskRepo,
		groupRepo: groupRepo,
		userRepo:  userRepo,
		checker:   checker,
		log:       log,
	}
}

// CreateTask creates a task together with its initial assignee rows. The
// task status is never taken from the caller; it is derived from the
// assignee rows inside the creating transaction.
func (s *TaskService) CreateTask(input CreateTaskInput) (*models.Task, error) {
	if input.Title == "" || input.Description == "" || input.Date == "" || input.Time == "" {
		return nil, ErrTaskFieldsRequired
	}

	if _, err := s.groupRepo.FindByID(input.GroupID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, fmt.Errorf("failed to check group: %w", err)
	}

	exists, err := s.userRepo.Exists(input.CreatorID)
	if err != nil {
		return nil, fmt.Errorf("failed to check creator: %w", err)
	}
	if !exists {
		placeholder := &models.User{ID: input.CreatorID, Name: fmt.Sprintf("User_%d", input.CreatorID)}
		if err := s.userRepo.Create(placeholder); err != nil {
			return nil, fmt.Errorf("failed to create placeholder user %d: %w", input.CreatorID, err)
		}
	}

	task := &models.Task{
		Title:       input.Title,
		Description: input.Description,
		Date:        input.Date,
		Time:        input.Time,
		GroupID:     input.GroupID,
		CreatedBy:   input.CreatorID,
	}

	if err := s.taskRepo.Create(task, uniqueUint64(input.AssigneeIDs)); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"task_id":  task.ID,
		"group_id": task.GroupID,
		"creator":  task.CreatedBy,
	}).Info("task created")
	return task, nil
}

// GetTask returns a single task with its relations preloaded.
func (s *TaskService) GetTask(taskID uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID, "Assignees", "Media", "Group", "Creator")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return task, nil
}

// ListGroupTasks returns the active tasks of one group, most recently
// updated first.
func (s *TaskService) ListGroupTasks(groupID uint64) ([]models.Task, error) {
	return s.listTasks(repository.TaskFilter{
		GroupIDs:        []uint64{groupID},
		ExcludeStatuses: []models.TaskStatus{models.TaskStatusCancelled, models.TaskStatusCompleted},
		OrderByUpdated:  true,
	})
}

// ListGroupsTasks returns the active tasks across several groups in one
// query.
func (s *TaskService) ListGroupsTasks(groupIDs []uint64) ([]models.Task, error) {
	if len(groupIDs) == 0 {
		return []models.Task{}, nil
	}
	return s.listTasks(repository.TaskFilter{
		GroupIDs:        groupIDs,
		ExcludeStatuses: []models.TaskStatus{models.TaskStatusCancelled, models.TaskStatusCompleted},
		OrderByUpdated:  true,
	})
}

// ListUserTasks returns the active tasks the user is currently assigned to.
func (s *TaskService) ListUserTasks(userID uint64) ([]models.Task, error) {
	return s.listTasks(repository.TaskFilter{
		AssignedUserID:  &userID,
		ExcludeStatuses: []models.TaskStatus{models.TaskStatusCancelled, models.TaskStatusCompleted},
		OrderByUpdated:  true,
	})
}

// ListCreatedTasks returns the active tasks created by the user.
func (s *TaskService) ListCreatedTasks(userID uint64) ([]models.Task, error) {
	return s.listTasks(repository.TaskFilter{
		CreatedBy:       &userID,
		ExcludeStatuses: []models.TaskStatus{models.TaskStatusCancelled, models.TaskStatusCompleted},
		OrderByUpdated:  true,
	})
}

// ListAllTasks returns every task that is not cancelled.
func (s *TaskService) ListAllTasks() ([]models.Task, error) {
	return s.listTasks(repository.TaskFilter{
		ExcludeStatuses: []models.TaskStatus{models.TaskStatusCancelled},
		OrderByUpdated:  true,
	})
}

// ListArchivedUserTasks returns the completed and cancelled tasks the user
// is assigned to, completed first.
func (s *TaskService) ListArchivedUserTasks(userID uint64) ([]models.Task, error) {
	return s.listArchived(repository.TaskFilter{AssignedUserID: &userID, OrderByUpdated: true})
}

// ListArchivedCreatedTasks returns the completed and cancelled tasks
// created by the user, completed first.
func (s *TaskService) ListArchivedCreatedTasks(userID uint64) ([]models.Task, error) {
	return s.listArchived(repository.TaskFilter{CreatedBy: &userID, OrderByUpdated: true})
}

func (s *TaskService) listArchived(filter repository.TaskFilter) ([]models.Task, error) {
	completed := models.TaskStatusCompleted
	filter.Status = &completed
	tasks, err := s.listTasks(filter)
	if err != nil {
		return nil, err
	}

	cancelled := models.TaskStatusCancelled
	filter.Status = &cancelled
	rest, err := s.listTasks(filter)
	if err != nil {
		return nil, err
	}
	return append(tasks, rest...), nil
}

func (s *TaskService) listTasks(filter repository.TaskFilter) ([]models.Task, error) {
	tasks, err := s.taskRepo.List(filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// UpdateTaskField updates a single editable column of a task. The status
// column is never editable through this path.
func (s *TaskService) UpdateTaskField(taskID uint64, field string, value interface{}, actorID uint64) error {
	allowed, err := s.canEdit(taskID, actorID)
	if err != nil {
		return err
	}
	if !allowed {
		return ErrTaskEditDenied
	}

	if err := s.taskRepo.UpdateField(taskID, field, value); err != nil {
		switch {
		case errors.Is(err, repository.ErrFieldNotAllowed):
			return ErrFieldNotEditable
		case errors.Is(err, gorm.ErrRecordNotFound):
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to update task field: %w", err)
	}

	s.log.WithFields(logrus.Fields{"task_id": taskID, "field": field, "actor": actorID}).
		Info("task field updated")
	return nil
}

// DeleteTask removes the task and all its dependent rows.
func (s *TaskService) DeleteTask(taskID, actorID uint64) error {
	allowed, err := s.canEdit(taskID, actorID)
	if err != nil {
		return err
	}
	if !allowed {
		return ErrTaskEditDenied
	}

	if err := s.taskRepo.Delete(taskID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to delete task: %w", err)
	}

	s.log.WithFields(logrus.Fields{"task_id": taskID, "actor": actorID}).
		Info("task deleted")
	return nil
}

// ForceStatus overrides the task status without touching the assignee rows.
// For a task that has assignees only an elevated caller may force the
// status, since the next assignee mutation recomputes the aggregate and
// discards the override.
func (s *TaskService) ForceStatus(taskID uint64, status models.TaskStatus, actorID uint64) error {
	if !status.Valid() {
		return ErrInvalidStatusValue
	}

	count, err := s.taskRepo.CountAssignees(taskID)
	if err != nil {
		return fmt.Errorf("failed to count assignees: %w", err)
	}
	if count > 0 {
		elevated, err := s.checker.IsElevated(actorID)
		if err != nil {
			return fmt.Errorf("failed to check permissions: %w", err)
		}
		if !elevated {
			return ErrForceStatusDenied
		}
	}

	if err := s.taskRepo.ForceStatus(taskID, status, actorID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to force task status: %w", err)
	}

	s.log.WithFields(logrus.Fields{"task_id": taskID, "status": status, "actor": actorID}).
		Warn("task status forced")
	return nil
}

// AddMedia attaches a media reference to the task, capped at
// models.MaxMediaPerTask per task.
func (s *TaskService) AddMedia(taskID uint64, fileID, fileType string, actorID uint64) error {
	allowed, err := s.canEdit(taskID, actorID)
	if err != nil {
		return err
	}
	if !allowed {
		return ErrTaskEditDenied
	}

	media := &models.TaskMedia{TaskID: taskID, FileID: fileID, FileType: fileType}
	if err := s.taskRepo.AddMedia(media); err != nil {
		switch {
		case errors.Is(err, repository.ErrMediaLimitReached):
			return ErrMediaLimitReached
		case errors.Is(err, gorm.ErrRecordNotFound):
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to add media: %w", err)
	}
	return nil
}

// ListMedia returns the media attached to a task.
func (s *TaskService) ListMedia(taskID uint64) ([]models.TaskMedia, error) {
	media, err := s.taskRepo.ListMedia(taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to list media: %w", err)
	}
	return media, nil
}

// RemoveMedia detaches one media reference from the task.
func (s *TaskService) RemoveMedia(taskID, mediaID, actorID uint64) error {
	allowed, err := s.canEdit(taskID, actorID)
	if err != nil {
		return err
	}
	if !allowed {
		return ErrTaskEditDenied
	}

	if err := s.taskRepo.RemoveMedia(mediaID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMediaNotFound
		}
		return fmt.Errorf("failed to remove media: %w", err)
	}
	return nil
}

// ListHistory returns the audit trail of a task, newest first.
func (s *TaskService) ListHistory(taskID uint64) ([]models.TaskHistory, error) {
	history, err := s.taskRepo.ListHistory(taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to list task history: %w", err)
	}
	return history, nil
}

func (s *TaskService) canEdit(taskID, actorID uint64) (bool, error) {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, ErrTaskNotFound
		}
		return false, fmt.Errorf("failed to get task: %w", err)
	}

	allowed, err := s.checker.CanEditTask(actorID, task)
	if err != nil {
		return false, fmt.Errorf("failed to check permissions: %w", err)
	}
	return allowed, nil
}
