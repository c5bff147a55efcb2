package repository

import (
	"fmt"
	"time"

	"github.com/teamtasker/team-task-service/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrFieldNotAllowed is returned when UpdateField is asked to touch a column
// that is not directly writable (status and the assignee list have their own
// paths).
var ErrFieldNotAllowed = fmt.Errorf("task repository: field not allowed")

// allowedTaskFields are the columns UpdateField may write. The status column
// is owned by the aggregator; assigned_to_list overwrites are permitted for
// backward compatibility but do not touch per-assignee status rows.
var allowedTaskFields = map[string]bool{
	"title":            true,
	"description":      true,
	"date":             true,
	"time":             true,
	"group_id":         true,
	"has_media":        true,
	"assigned_to_list": true,
}

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// recomputeStatusTx derives the aggregate status from the task's current
// assignee rows and persists it onto the task row, inside the caller's
// transaction so the two can never disagree across a commit boundary.
func recomputeStatusTx(tx *gorm.DB, taskID uint64) (models.TaskStatus, error) {
	var statuses []models.TaskStatus
	if err := tx.Model(&models.TaskAssignee{}).
		Where("task_id = ?", taskID).
		Pluck("status", &statuses).Error; err != nil {
		return "", err
	}

	agg := models.AggregateStatus(statuses)
	if err := tx.Model(&models.Task{}).
		Where("id = ?", taskID).
		Update("status", agg).Error; err != nil {
		return "", err
	}
	return agg, nil
}

// syncAssignedListTx rebuilds the legacy assigned_to_list column from the
// assignee rows. The column is a derived view; this is its only writer apart
// from the compatibility overwrite in UpdateField.
func syncAssignedListTx(tx *gorm.DB, taskID uint64) error {
	var ids []uint64
	if err := tx.Model(&models.TaskAssignee{}).
		Where("task_id = ?", taskID).
		Order("user_id").
		Pluck("user_id", &ids).Error; err != nil {
		return err
	}

	return tx.Model(&models.Task{}).
		Where("id = ?", taskID).
		Update("assigned_to_list", models.EncodeAssignedIDs(ids)).Error
}

func addHistoryTx(tx *gorm.DB, taskID uint64, action, oldValue, newValue string, changedBy uint64) error {
	return tx.Create(&models.TaskHistory{
		TaskID:    taskID,
		Action:    action,
		OldValue:  oldValue,
		NewValue:  newValue,
		ChangedBy: changedBy,
	}).Error
}

// insertAssigneesTx inserts assignee rows, ignoring pairs that already exist.
func insertAssigneesTx(tx *gorm.DB, taskID uint64, userIDs []uint64, initial models.TaskStatus) error {
	if len(userIDs) == 0 {
		return nil
	}

	now := time.Now()
	rows := make([]models.TaskAssignee, len(userIDs))
	for i, userID := range userIDs {
		rows[i] = models.TaskAssignee{
			TaskID:          taskID,
			UserID:          userID,
			Status:          initial,
			StatusUpdatedAt: now,
		}
	}

	return tx.
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "task_id"}, {Name: "user_id"}},
			DoNothing: true,
		}).
		Create(&rows).Error
}

// Create inserts the task, its initial assignees and a history entry in one
// transaction. The aggregate status starts at pending and is recomputed once
// the assignees are in place.
func (r *GormTaskRepository) Create(task *models.Task, assigneeIDs []uint64) error {
	task.Status = models.TaskStatusPending
	task.AssignedToList = models.EncodeAssignedIDs(nil)

	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(task).Error; err != nil {
			return err
		}

		if err := addHistoryTx(tx, task.ID, "created", "", task.Description, task.CreatedBy); err != nil {
			return err
		}

		if len(assigneeIDs) == 0 {
			return nil
		}

		if err := insertAssigneesTx(tx, task.ID, assigneeIDs, models.TaskStatusPending); err != nil {
			return err
		}
		if _, err := recomputeStatusTx(tx, task.ID); err != nil {
			return err
		}
		if err := syncAssignedListTx(tx, task.ID); err != nil {
			return err
		}

		task.Status = models.TaskStatusPending
		task.AssignedToList = models.EncodeAssignedIDs(assigneeIDs)
		return nil
	})
}

// FindByID finds a task by ID with optional preloading
func (r *GormTaskRepository) FindByID(id uint64, preload ...string) (*models.Task, error) {
	var task models.Task
	query := r.db

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&task, id).Error; err != nil {
		return nil, err
	}

	return &task, nil
}

// List retrieves tasks matching the filter, newest first
func (r *GormTaskRepository) List(filter TaskFilter) ([]models.Task, error) {
	query := r.db.Model(&models.Task{})

	if len(filter.GroupIDs) > 0 {
		query = query.Where("tasks.group_id IN ?", filter.GroupIDs)
	}
	if filter.CreatedBy != nil {
		query = query.Where("tasks.created_by = ?", *filter.CreatedBy)
	}
	if filter.AssignedUserID != nil {
		assigneeSubQuery := r.db.Model(&models.TaskAssignee{}).
			Select("1").
			Where("task_assignees.task_id = tasks.id").
			Where("task_assignees.user_id = ?", *filter.AssignedUserID)
		query = query.Where("EXISTS (?)", assigneeSubQuery)
	}
	if filter.Status != nil {
		query = query.Where("tasks.status = ?", *filter.Status)
	}
	if len(filter.ExcludeStatuses) > 0 {
		query = query.Where("tasks.status NOT IN ?", filter.ExcludeStatuses)
	}

	if filter.OrderByUpdated {
		query = query.Order("tasks.updated_at DESC")
	} else {
		query = query.Order("tasks.created_at DESC")
	}

	var tasks []models.Task
	if err := query.Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// UpdateField updates one allowed task field. Writing assigned_to_list here
// is the legacy raw overwrite: it does not create or remove status rows.
func (r *GormTaskRepository) UpdateField(taskID uint64, field string, value interface{}) error {
	if !allowedTaskFields[field] {
		return ErrFieldNotAllowed
	}

	res := r.db.Model(&models.Task{}).
		Where("id = ?", taskID).
		Update(field, value)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes the task and everything hanging off it.
func (r *GormTaskRepository) Delete(taskID uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", taskID).Delete(&models.TaskHistory{}).Error; err != nil {
			return err
		}
		if err := tx.Where("task_id = ?", taskID).Delete(&models.TaskAssignee{}).Error; err != nil {
			return err
		}
		if err := tx.Where("task_id = ?", taskID).Delete(&models.TaskMedia{}).Error; err != nil {
			return err
		}

		res := tx.Delete(&models.Task{}, taskID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// ForceStatus writes the aggregate status directly. The registry overwrites
// it again on the next assignee mutation; gating who may call this lives in
// the service layer.
func (r *GormTaskRepository) ForceStatus(taskID uint64, status models.TaskStatus, changedBy uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var task models.Task
		if err := tx.First(&task, taskID).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.Task{}).
			Where("id = ?", taskID).
			Update("status", status).Error; err != nil {
			return err
		}

		return addHistoryTx(tx, taskID, "status_forced", string(task.Status), string(status), changedBy)
	})
}

// CountAssignees returns the task's current assignee count
func (r *GormTaskRepository) CountAssignees(taskID uint64) (int64, error) {
	var count int64
	err := r.db.Model(&models.TaskAssignee{}).
		Where("task_id = ?", taskID).
		Count(&count).Error
	return count, err
}

// AddMedia attaches a media reference and keeps the has_media flag in sync.
func (r *GormTaskRepository) AddMedia(media *models.TaskMedia) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.TaskMedia{}).
			Where("task_id = ?", media.TaskID).
			Count(&count).Error; err != nil {
			return err
		}
		if count >= models.MaxMediaPerTask {
			return ErrMediaLimitReached
		}

		if err := tx.Create(media).Error; err != nil {
			return err
		}

		return tx.Model(&models.Task{}).
			Where("id = ?", media.TaskID).
			Update("has_media", true).Error
	})
}

// ErrMediaLimitReached is returned when a task already carries the maximum
// number of media references.
var ErrMediaLimitReached = fmt.Errorf("task repository: media limit reached")

// ListMedia returns the task's media references in added order
func (r *GormTaskRepository) ListMedia(taskID uint64) ([]models.TaskMedia, error) {
	var media []models.TaskMedia
	if err := r.db.Where("task_id = ?", taskID).
		Order("added_at").
		Find(&media).Error; err != nil {
		return nil, err
	}
	return media, nil
}

// RemoveMedia detaches one media reference, clearing has_media when it was
// the last one.
func (r *GormTaskRepository) RemoveMedia(mediaID uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var media models.TaskMedia
		if err := tx.First(&media, mediaID).Error; err != nil {
			return err
		}

		if err := tx.Delete(&models.TaskMedia{}, mediaID).Error; err != nil {
			return err
		}

		var remaining int64
		if err := tx.Model(&models.TaskMedia{}).
			Where("task_id = ?", media.TaskID).
			Count(&remaining).Error; err != nil {
			return err
		}
		if remaining == 0 {
			return tx.Model(&models.Task{}).
				Where("id = ?", media.TaskID).
				Update("has_media", false).Error
		}
		return nil
	})
}

// ListHistory returns the task's audit entries, newest first
func (r *GormTaskRepository) ListHistory(taskID uint64) ([]models.TaskHistory, error) {
	var history []models.TaskHistory
	if err := r.db.Where("task_id = ?", taskID).
		Order("changed_at DESC, id DESC").
		Find(&history).Error; err != nil {
		return nil, err
	}
	return history, nil
}
