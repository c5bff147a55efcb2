package repository

import (
	"errors"
	"time"

	"github.com/teamtasker/team-task-service/internal/models"
	"gorm.io/gorm"
)

// ErrInvalidStatus is returned when a status value outside the four
// recognized ones is offered; the existing row is left unchanged.
var ErrInvalidStatus = errors.New("assignee repository: invalid status value")

// GormAssigneeRepository is a GORM implementation of AssigneeRepository
type GormAssigneeRepository struct {
	db *gorm.DB
}

// NewAssigneeRepository creates a new AssigneeRepository
func NewAssigneeRepository(db *gorm.DB) AssigneeRepository {
	return &GormAssigneeRepository{db: db}
}

// AddAssignees inserts one status row per user not already assigned to the
// task. Existing pairs are left untouched, so re-adding never resets a
// status. The aggregate and the legacy list are refreshed in the same
// transaction.
func (r *GormAssigneeRepository) AddAssignees(taskID uint64, userIDs []uint64, initial models.TaskStatus) error {
	if len(userIDs) == 0 {
		return nil
	}
	if !initial.Valid() {
		return ErrInvalidStatus
	}

	return r.db.Transaction(func(tx *gorm.DB) error {
		var exists int64
		if err := tx.Model(&models.Task{}).
			Where("id = ?", taskID).
			Count(&exists).Error; err != nil {
			return err
		}
		if exists == 0 {
			return gorm.ErrRecordNotFound
		}

		if err := insertAssigneesTx(tx, taskID, userIDs, initial); err != nil {
			return err
		}
		if _, err := recomputeStatusTx(tx, taskID); err != nil {
			return err
		}
		return syncAssignedListTx(tx, taskID)
	})
}

// GetStatus returns the user's status on the task. gorm.ErrRecordNotFound
// distinguishes "not an assignee" from any valid status value.
func (r *GormAssigneeRepository) GetStatus(taskID, userID uint64) (models.TaskStatus, error) {
	var row models.TaskAssignee
	if err := r.db.Where("task_id = ? AND user_id = ?", taskID, userID).
		First(&row).Error; err != nil {
		return "", err
	}
	return row.Status, nil
}

// SetStatus updates one assignee's status, recomputes the task's aggregate
// status over all assignee rows, and persists both in one transaction. It
// returns the new aggregate.
func (r *GormAssigneeRepository) SetStatus(taskID, userID uint64, status models.TaskStatus) (models.TaskStatus, error) {
	if !status.Valid() {
		return "", ErrInvalidStatus
	}

	var aggregate models.TaskStatus
	err := r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.TaskAssignee{}).
			Where("task_id = ? AND user_id = ?", taskID, userID).
			Updates(map[string]interface{}{
				"status":            status,
				"status_updated_at": time.Now(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		var err error
		aggregate, err = recomputeStatusTx(tx, taskID)
		return err
	})
	if err != nil {
		return "", err
	}
	return aggregate, nil
}

// Remove deletes the assignee row and recomputes the aggregate over the
// remaining assignees.
func (r *GormAssigneeRepository) Remove(taskID, userID uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("task_id = ? AND user_id = ?", taskID, userID).
			Delete(&models.TaskAssignee{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		if _, err := recomputeStatusTx(tx, taskID); err != nil {
			return err
		}
		return syncAssignedListTx(tx, taskID)
	})
}

// ListStatuses returns userID to status for every current assignee of the
// task. An unknown task yields an empty map, not an error.
func (r *GormAssigneeRepository) ListStatuses(taskID uint64) (map[uint64]models.TaskStatus, error) {
	var rows []models.TaskAssignee
	if err := r.db.Where("task_id = ?", taskID).Find(&rows).Error; err != nil {
		return nil, err
	}

	statuses := make(map[uint64]models.TaskStatus, len(rows))
	for _, row := range rows {
		statuses[row.UserID] = row.Status
	}
	return statuses, nil
}
