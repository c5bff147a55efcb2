package permissions

import (
	"fmt"

	"github.com/teamtasker/team-task-service/internal/models"
	"github.com/teamtasker/team-task-service/internal/repository"
)

// Checker answers capability questions for a caller-supplied identity. Roles
// are data, not types: super admins come from configuration, group admins
// from the GroupAdmin table.
type Checker struct {
	superAdmins map[uint64]struct{}
	groupRepo   repository.GroupRepository
}

// NewChecker creates a Checker over the configured super-admin set.
func NewChecker(superAdminIDs []uint64, groupRepo repository.GroupRepository) *Checker {
	set := make(map[uint64]struct{}, len(superAdminIDs))
	for _, id := range superAdminIDs {
		set[id] = struct{}{}
	}
	return &Checker{superAdmins: set, groupRepo: groupRepo}
}

// IsSuperAdmin reports whether the user is in the configured super-admin set.
func (c *Checker) IsSuperAdmin(userID uint64) bool {
	_, ok := c.superAdmins[userID]
	return ok
}

// IsGroupAdmin reports whether the user administers the given group, or any
// group when groupID is nil.
func (c *Checker) IsGroupAdmin(userID uint64, groupID *uint64) (bool, error) {
	return c.groupRepo.IsAdmin(userID, groupID)
}

// IsElevated reports whether the user may bypass normal ownership checks:
// super admins and admins of any group qualify.
func (c *Checker) IsElevated(userID uint64) (bool, error) {
	if c.IsSuperAdmin(userID) {
		return true, nil
	}
	return c.groupRepo.IsAdmin(userID, nil)
}

// CanEditTask reports whether the user may edit or delete the task: super
// admins always, the creator always, and admins of the task's group.
func (c *Checker) CanEditTask(userID uint64, task *models.Task) (bool, error) {
	if task == nil {
		return false, nil
	}
	if c.IsSuperAdmin(userID) {
		return true, nil
	}
	if task.CreatedBy == userID {
		return true, nil
	}

	ok, err := c.groupRepo.IsAdmin(userID, &task.GroupID)
	if err != nil {
		return false, fmt.Errorf("failed to check group admin: %w", err)
	}
	return ok, nil
}
