package services

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/teamtasker/team-task-service/internal/models"
	"github.com/teamtasker/team-task-service/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrNotAssigned        = errors.New("user is not an assignee of this task")
	ErrInvalidStatusValue = errors.New("status must be one of pending, in_progress, completed, cancelled")
	ErrNoAssigneesGiven   = errors.New("at least one user ID is required")
)

// AssigneeService is the registry of per-(task, user) status records. Every
// mutation it performs recomputes the task's aggregate status in the same
// transaction.
type AssigneeService struct {
	assigneeRepo repository.AssigneeRepository
	userRepo     repository.UserRepository
	log          *logrus.Logger
}

// NewAssigneeService creates a new AssigneeService
func NewAssigneeService(assigneeRepo repository.AssigneeRepository, userRepo repository.UserRepository, log *logrus.Logger) *AssigneeService {
	return &AssigneeService{
		assigneeRepo: assigneeRepo,
		userRepo:     userRepo,
		log:          log,
	}
}

// AddAssignees assigns users to the task with an initial pending status.
// Users already assigned keep their current status. Unknown user IDs get a
// placeholder row so the foreign key holds; the chat layer refreshes names
// on first contact.
func (s *AssigneeService) AddAssignees(taskID uint64, userIDs []uint64) error {
	userIDs = uniqueUint64(userIDs)
	if len(userIDs) == 0 {
		return ErrNoAssigneesGiven
	}

	for _, userID := range userIDs {
		exists, err := s.userRepo.Exists(userID)
		if err != nil {
			return fmt.Errorf("failed to check user %d: %w", userID, err)
		}
		if !exists {
			placeholder := &models.User{ID: userID, Name: fmt.Sprintf("User_%d", userID)}
			if err := s.userRepo.Create(placeholder); err != nil {
				return fmt.Errorf("failed to create placeholder user %d: %w", userID, err)
			}
		}
	}

	if err := s.assigneeRepo.AddAssignees(taskID, userIDs, models.TaskStatusPending); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to add assignees: %w", err)
	}

	s.log.WithFields(logrus.Fields{"task_id": taskID, "count": len(userIDs)}).
		Info("assignees added")
	return nil
}

// GetStatus returns one assignee's status. ErrNotAssigned is distinct from
// every valid status value, so callers can tell "not an assignee" apart from
// "assignee is pending".
func (s *AssigneeService) GetStatus(taskID, userID uint64) (models.TaskStatus, error) {
	status, err := s.assigneeRepo.GetStatus(taskID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrNotAssigned
		}
		return "", fmt.Errorf("failed to get assignee status: %w", err)
	}
	return status, nil
}

// SetStatus updates one assignee's status and returns the recomputed
// aggregate. An invalid status or a missing assignee row leaves everything
// unchanged.
func (s *AssigneeService) SetStatus(taskID, userID uint64, status models.TaskStatus) (models.TaskStatus, error) {
	aggregate, err := s.assigneeRepo.SetStatus(taskID, userID, status)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrInvalidStatus):
			return "", ErrInvalidStatusValue
		case errors.Is(err, gorm.ErrRecordNotFound):
			return "", ErrNotAssigned
		}
		return "", fmt.Errorf("failed to set assignee status: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"task_id":   taskID,
		"user_id":   userID,
		"status":    status,
		"aggregate": aggregate,
	}).Info("assignee status updated")
	return aggregate, nil
}

// RemoveAssignee deletes the assignee row; the aggregate is recomputed over
// the remaining assignees.
func (s *AssigneeService) RemoveAssignee(taskID, userID uint64) error {
	if err := s.assigneeRepo.Remove(taskID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotAssigned
		}
		return fmt.Errorf("failed to remove assignee: %w", err)
	}

	s.log.WithFields(logrus.Fields{"task_id": taskID, "user_id": userID}).
		Info("assignee removed")
	return nil
}

// ListStatuses returns userID to status for every current assignee; an
// unknown task yields an empty mapping.
func (s *AssigneeService) ListStatuses(taskID uint64) (map[uint64]models.TaskStatus, error) {
	statuses, err := s.assigneeRepo.ListStatuses(taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignee statuses: %w", err)
	}
	return statuses, nil
}

// uniqueUint64 removes duplicate values from a slice of uint64
func uniqueUint64(values []uint64) []uint64 {
	seen := make(map[uint64]struct{}, len(values))
	result := make([]uint64, 0, len(values))

	for _, v := range values {
		if _, exists := seen[v]; exists {
			continue
		}
		seen[v] = struct{}{}
		result = append(result, v)
	}

	return result
}
