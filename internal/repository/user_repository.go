package repository

import (
	"github.com/teamtasker/team-task-service/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormUserRepository is a GORM implementation of UserRepository
type GormUserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &GormUserRepository{db: db}
}

// Create inserts a new user row
func (r *GormUserRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

// Upsert inserts the user or refreshes name/username on conflict
func (r *GormUserRepository) Upsert(user *models.User) error {
	return r.db.
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "username", "registered"}),
		}).
		Create(user).Error
}

// FindByID finds a user by ID
func (r *GormUserRepository) FindByID(id uint64) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// Exists reports whether the user row is present
func (r *GormUserRepository) Exists(id uint64) (bool, error) {
	var count int64
	err := r.db.Model(&models.User{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// SetName updates the display name
func (r *GormUserRepository) SetName(id uint64, name string) error {
	res := r.db.Model(&models.User{}).Where("id = ?", id).Update("name", name)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListAll returns all non-deleted users, banned included, with their group
// memberships preloaded. Deleted users stay out of every listing.
func (r *GormUserRepository) ListAll() ([]models.User, error) {
	var users []models.User
	err := r.db.Preload("Groups.Group").
		Where("deleted = ?", false).
		Order("name").
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

// ListWithoutGroup returns non-deleted users with no membership rows
func (r *GormUserRepository) ListWithoutGroup() ([]models.User, error) {
	var users []models.User
	err := r.db.
		Where("deleted = ?", false).
		Where("id NOT IN (?)", r.db.Model(&models.UserGroup{}).Select("user_id")).
		Order("name").
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

// BanCascade flags the user banned and removes them from every admin pairing
// and every membership, then cancels or updates their tasks. The whole
// cascade commits or rolls back as one unit.
func (r *GormUserRepository) BanCascade(userID uint64) (CascadeCounts, error) {
	return r.cascade(userID, false)
}

// DeleteCascade performs the ban cascade and additionally flags the user
// deleted. The row is retained so historical task references stay
// resolvable.
func (r *GormUserRepository) DeleteCascade(userID uint64) (CascadeCounts, error) {
	return r.cascade(userID, true)
}

func (r *GormUserRepository) cascade(userID uint64, markDeleted bool) (CascadeCounts, error) {
	var counts CascadeCounts
	err := r.db.Transaction(func(tx *gorm.DB) error {
		flags := map[string]interface{}{"banned": true}
		if markDeleted {
			flags["deleted"] = true
		}

		res := tx.Model(&models.User{}).Where("id = ?", userID).Updates(flags)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		if err := tx.Where("admin_id = ?", userID).Delete(&models.GroupAdmin{}).Error; err != nil {
			return err
		}
		// The primary-admin pointer must stay within the group's admin set
		// or be null; the removed user no longer qualifies anywhere.
		if err := tx.Model(&models.Group{}).
			Where("admin_id = ?", userID).
			Update("admin_id", nil).Error; err != nil {
			return err
		}

		if err := tx.Where("user_id = ?", userID).Delete(&models.UserGroup{}).Error; err != nil {
			return err
		}

		var err error
		counts, err = cancelUserTasksTx(tx, userID)
		return err
	})
	if err != nil {
		return CascadeCounts{}, err
	}
	return counts, nil
}

// Unban clears the banned flag only. Group and admin memberships removed by
// the ban cascade are not restored; they must be re-added explicitly.
func (r *GormUserRepository) Unban(userID uint64) error {
	res := r.db.Model(&models.User{}).
		Where("id = ?", userID).
		Update("banned", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CancelUserTasks runs only the task portion of the cascade
func (r *GormUserRepository) CancelUserTasks(userID uint64) (CascadeCounts, error) {
	var counts CascadeCounts
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var err error
		counts, err = cancelUserTasksTx(tx, userID)
		return err
	})
	if err != nil {
		return CascadeCounts{}, err
	}
	return counts, nil
}

// cancelUserTasksTx cancels every task the user created, cancels tasks where
// they were the sole assignee, and detaches them from tasks that have other
// assignees. Each task is counted in exactly one bucket; tasks already
// cancelled are skipped.
func cancelUserTasksTx(tx *gorm.DB, userID uint64) (CascadeCounts, error) {
	var counts CascadeCounts

	var creatorTaskIDs []uint64
	if err := tx.Model(&models.Task{}).
		Where("created_by = ? AND status != ?", userID, models.TaskStatusCancelled).
		Pluck("id", &creatorTaskIDs).Error; err != nil {
		return counts, err
	}

	if len(creatorTaskIDs) > 0 {
		// The task loses its responsible party, so the aggregate is forced
		// to cancelled regardless of how far assignees have gotten.
		if err := tx.Model(&models.Task{}).
			Where("id IN ?", creatorTaskIDs).
			Update("status", models.TaskStatusCancelled).Error; err != nil {
			return counts, err
		}
		for _, taskID := range creatorTaskIDs {
			if err := addHistoryTx(tx, taskID, "cancelled", "", "creator removed", userID); err != nil {
				return counts, err
			}
		}
		counts.Cancelled += len(creatorTaskIDs)
	}

	creatorSet := make(map[uint64]struct{}, len(creatorTaskIDs))
	for _, id := range creatorTaskIDs {
		creatorSet[id] = struct{}{}
	}

	var assignedTaskIDs []uint64
	if err := tx.Model(&models.TaskAssignee{}).
		Joins("JOIN tasks ON tasks.id = task_assignees.task_id").
		Where("task_assignees.user_id = ? AND tasks.status != ?", userID, models.TaskStatusCancelled).
		Pluck("task_assignees.task_id", &assignedTaskIDs).Error; err != nil {
		return counts, err
	}

	for _, taskID := range assignedTaskIDs {
		if _, counted := creatorSet[taskID]; counted {
			continue
		}

		var total int64
		if err := tx.Model(&models.TaskAssignee{}).
			Where("task_id = ?", taskID).
			Count(&total).Error; err != nil {
			return counts, err
		}

		if total <= 1 {
			// Sole assignee: cancel their row so the aggregate derives to
			// cancelled through the normal recompute.
			if err := tx.Model(&models.TaskAssignee{}).
				Where("task_id = ? AND user_id = ?", taskID, userID).
				Update("status", models.TaskStatusCancelled).Error; err != nil {
				return counts, err
			}
			if _, err := recomputeStatusTx(tx, taskID); err != nil {
				return counts, err
			}
			counts.Cancelled++
			continue
		}

		if err := tx.Where("task_id = ? AND user_id = ?", taskID, userID).
			Delete(&models.TaskAssignee{}).Error; err != nil {
			return counts, err
		}
		if _, err := recomputeStatusTx(tx, taskID); err != nil {
			return counts, err
		}
		if err := syncAssignedListTx(tx, taskID); err != nil {
			return counts, err
		}
		counts.Updated++
	}

	return counts, nil
}
