package repository

import (
	"errors"

	"github.com/teamtasker/team-task-service/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormGroupRepository is a GORM implementation of GroupRepository
type GormGroupRepository struct {
	db *gorm.DB
}

// NewGroupRepository creates a new GroupRepository
func NewGroupRepository(db *gorm.DB) GroupRepository {
	return &GormGroupRepository{db: db}
}

// Create creates a new group
func (r *GormGroupRepository) Create(group *models.Group) error {
	return r.db.Create(group).Error
}

// FindByID finds a group by ID
func (r *GormGroupRepository) FindByID(id uint64) (*models.Group, error) {
	var group models.Group
	if err := r.db.First(&group, id).Error; err != nil {
		return nil, err
	}
	return &group, nil
}

// ListAll returns all groups ordered by name
func (r *GormGroupRepository) ListAll() ([]models.Group, error) {
	var groups []models.Group
	if err := r.db.Order("name").Find(&groups).Error; err != nil {
		return nil, err
	}
	return groups, nil
}

// Rename updates the group name
func (r *GormGroupRepository) Rename(id uint64, name string) error {
	res := r.db.Model(&models.Group{}).
		Where("id = ?", id).
		Update("name", name)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes the group and every membership and admin row referencing
// it. Tasks created under the group keep their group reference; display
// logic resolves it to an unknown group.
func (r *GormGroupRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("group_id = ?", id).Delete(&models.UserGroup{}).Error; err != nil {
			return err
		}
		if err := tx.Where("group_id = ?", id).Delete(&models.GroupAdmin{}).Error; err != nil {
			return err
		}

		res := tx.Delete(&models.Group{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// AddMember links a user to a group. An existing link is a benign no-op, not
// an error.
func (r *GormGroupRepository) AddMember(userID, groupID uint64) error {
	return r.db.
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "group_id"}},
			DoNothing: true,
		}).
		Create(&models.UserGroup{UserID: userID, GroupID: groupID}).Error
}

// RemoveMember unlinks a user from a group. Tasks the user is assigned to in
// that group are untouched; membership governs who can be newly assigned.
func (r *GormGroupRepository) RemoveMember(userID, groupID uint64) error {
	res := r.db.Where("user_id = ? AND group_id = ?", userID, groupID).
		Delete(&models.UserGroup{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListMembers returns the group's members merged with its admins, since an
// admin belongs to the group whether or not a membership row exists.
func (r *GormGroupRepository) ListMembers(groupID uint64) ([]models.User, error) {
	var members []models.User
	err := r.db.Model(&models.User{}).
		Joins("JOIN user_groups ON user_groups.user_id = users.id").
		Where("user_groups.group_id = ? AND users.deleted = ?", groupID, false).
		Find(&members).Error
	if err != nil {
		return nil, err
	}

	var admins []models.User
	err = r.db.Model(&models.User{}).
		Joins("JOIN group_admins ON group_admins.admin_id = users.id").
		Where("group_admins.group_id = ? AND users.deleted = ?", groupID, false).
		Find(&admins).Error
	if err != nil {
		return nil, err
	}

	seen := make(map[uint64]struct{}, len(members))
	for _, u := range members {
		seen[u.ID] = struct{}{}
	}
	for _, u := range admins {
		if _, ok := seen[u.ID]; !ok {
			members = append(members, u)
			seen[u.ID] = struct{}{}
		}
	}
	return members, nil
}

// ListUserGroups returns the groups a user belongs to
func (r *GormGroupRepository) ListUserGroups(userID uint64) ([]models.Group, error) {
	var groups []models.Group
	err := r.db.Model(&models.Group{}).
		Joins("JOIN user_groups ON user_groups.group_id = groups.id").
		Where("user_groups.user_id = ?", userID).
		Order("groups.name").
		Find(&groups).Error
	if err != nil {
		return nil, err
	}
	return groups, nil
}

// HasGroup reports whether the user belongs to any group
func (r *GormGroupRepository) HasGroup(userID uint64) (bool, error) {
	var count int64
	err := r.db.Model(&models.UserGroup{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count > 0, err
}

// AddAdmin adds the admin pairing and a membership row for the admin, both
// idempotent. The primary-admin pointer is filled when empty; promote forces
// it onto the new admin but an existing different primary is never demoted
// implicitly by a plain add.
func (r *GormGroupRepository) AddAdmin(groupID, adminID uint64, promote bool) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var group models.Group
		if err := tx.First(&group, groupID).Error; err != nil {
			return err
		}

		if err := tx.
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "group_id"}, {Name: "admin_id"}},
				DoNothing: true,
			}).
			Create(&models.GroupAdmin{GroupID: groupID, AdminID: adminID}).Error; err != nil {
			return err
		}

		if err := tx.
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "user_id"}, {Name: "group_id"}},
				DoNothing: true,
			}).
			Create(&models.UserGroup{UserID: adminID, GroupID: groupID}).Error; err != nil {
			return err
		}

		if group.AdminID == nil || promote {
			return tx.Model(&models.Group{}).
				Where("id = ?", groupID).
				Update("admin_id", adminID).Error
		}
		return nil
	})
}

// RemoveAdmin removes the pairing. When the removed admin was the group's
// primary admin, a remaining admin is promoted into the pointer, or it is
// nulled when the set emptied.
func (r *GormGroupRepository) RemoveAdmin(groupID, adminID uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("group_id = ? AND admin_id = ?", groupID, adminID).
			Delete(&models.GroupAdmin{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		var group models.Group
		if err := tx.First(&group, groupID).Error; err != nil {
			return err
		}
		if group.AdminID == nil || *group.AdminID != adminID {
			return nil
		}

		var replacement models.GroupAdmin
		err := tx.Where("group_id = ?", groupID).First(&replacement).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		var newPrimary *uint64
		if err == nil {
			newPrimary = &replacement.AdminID
		}
		return tx.Model(&models.Group{}).
			Where("id = ?", groupID).
			Update("admin_id", newPrimary).Error
	})
}

// ListAdmins returns admin user IDs for a group
func (r *GormGroupRepository) ListAdmins(groupID uint64) ([]uint64, error) {
	var adminIDs []uint64
	err := r.db.Model(&models.GroupAdmin{}).
		Where("group_id = ?", groupID).
		Pluck("admin_id", &adminIDs).Error
	if err != nil {
		return nil, err
	}
	return adminIDs, nil
}

// ListAdminGroups returns groups the user administers
func (r *GormGroupRepository) ListAdminGroups(adminID uint64) ([]models.Group, error) {
	var groups []models.Group
	err := r.db.Model(&models.Group{}).
		Joins("JOIN group_admins ON group_admins.group_id = groups.id").
		Where("group_admins.admin_id = ?", adminID).
		Order("groups.name").
		Find(&groups).Error
	if err != nil {
		return nil, err
	}
	return groups, nil
}

// IsAdmin reports whether the user administers the given group, or any group
// when groupID is nil
func (r *GormGroupRepository) IsAdmin(userID uint64, groupID *uint64) (bool, error) {
	query := r.db.Model(&models.GroupAdmin{}).Where("admin_id = ?", userID)
	if groupID != nil {
		query = query.Where("group_id = ?", *groupID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
