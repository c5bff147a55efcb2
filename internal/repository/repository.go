package repository

import (
	"github.com/teamtasker/team-task-service/internal/models"
)

// CascadeCounts reports what a ban/delete cascade did to the user's tasks.
// A task lands in at most one bucket: Cancelled for tasks the user created or
// was the sole assignee of, Updated for tasks where only the user's assignee
// row was removed.
type CascadeCounts struct {
	Cancelled int `json:"cancelled"`
	Updated   int `json:"updated"`
}

// TaskFilter holds filtering options for listing tasks
type TaskFilter struct {
	GroupIDs        []uint64
	CreatedBy       *uint64
	AssignedUserID  *uint64
	Status          *models.TaskStatus
	ExcludeStatuses []models.TaskStatus
	OrderByUpdated  bool
}

// UserRepository defines the interface for user data access and the
// membership-consistency cascades triggered by user lifecycle events.
type UserRepository interface {
	// Create inserts a new user row
	Create(user *models.User) error

	// Upsert inserts the user or refreshes name/username on conflict
	Upsert(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// Exists reports whether the user row is present
	Exists(id uint64) (bool, error)

	// SetName updates the display name
	SetName(id uint64, name string) error

	// ListAll returns all non-deleted users with their group memberships
	ListAll() ([]models.User, error)

	// ListWithoutGroup returns non-deleted users with no membership rows
	ListWithoutGroup() ([]models.User, error)

	// BanCascade flags the user banned and runs the full consistency
	// cascade (admin pairings, memberships, task cancellation) atomically
	BanCascade(userID uint64) (CascadeCounts, error)

	// DeleteCascade performs the ban cascade and flags the user deleted
	DeleteCascade(userID uint64) (CascadeCounts, error)

	// Unban clears the banned flag only; memberships are not restored
	Unban(userID uint64) error

	// CancelUserTasks runs only the task portion of the cascade
	CancelUserTasks(userID uint64) (CascadeCounts, error)
}

// GroupRepository defines the interface for group, membership and admin data
// access. Multi-step mutations run in a single transaction.
type GroupRepository interface {
	// Create creates a new group
	Create(group *models.Group) error

	// FindByID finds a group by ID
	FindByID(id uint64) (*models.Group, error)

	// ListAll returns all groups ordered by name
	ListAll() ([]models.Group, error)

	// Rename updates the group name
	Rename(id uint64, name string) error

	// Delete removes the group and all membership/admin rows referencing
	// it; tasks keep their group reference
	Delete(id uint64) error

	// AddMember links a user to a group; an existing link is a no-op
	AddMember(userID, groupID uint64) error

	// RemoveMember unlinks a user from a group
	RemoveMember(userID, groupID uint64) error

	// ListMembers returns the group's members, admins included
	ListMembers(groupID uint64) ([]models.User, error)

	// ListUserGroups returns the groups a user belongs to
	ListUserGroups(userID uint64) ([]models.Group, error)

	// HasGroup reports whether the user belongs to any group
	HasGroup(userID uint64) (bool, error)

	// AddAdmin adds an admin pairing, joins the admin to the group as a
	// member, and fills the primary-admin pointer when empty or promote
	// is requested
	AddAdmin(groupID, adminID uint64, promote bool) error

	// RemoveAdmin removes the pairing; if the removed admin was primary,
	// another admin is promoted or the pointer is nulled
	RemoveAdmin(groupID, adminID uint64) error

	// ListAdmins returns admin user IDs for a group
	ListAdmins(groupID uint64) ([]uint64, error)

	// ListAdminGroups returns groups the user administers
	ListAdminGroups(adminID uint64) ([]models.Group, error)

	// IsAdmin reports whether the user administers the given group, or
	// any group when groupID is nil
	IsAdmin(userID uint64, groupID *uint64) (bool, error)
}

// TaskRepository defines the interface for task data access. Every mutation
// that touches assignee rows recomputes the task's aggregate status and the
// legacy assignee list in the same transaction.
type TaskRepository interface {
	// Create inserts the task with aggregate status pending, assigns the
	// initial assignees, and records a history entry, atomically
	Create(task *models.Task, assigneeIDs []uint64) error

	// FindByID finds a task by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Task, error)

	// List retrieves tasks matching the filter, newest first
	List(filter TaskFilter) ([]models.Task, error)

	// UpdateField updates one allowed task field
	UpdateField(taskID uint64, field string, value interface{}) error

	// Delete removes the task with its assignee, media and history rows
	Delete(taskID uint64) error

	// ForceStatus sets the aggregate status directly, bypassing
	// aggregation, and records who did it
	ForceStatus(taskID uint64, status models.TaskStatus, changedBy uint64) error

	// CountAssignees returns the task's current assignee count
	CountAssignees(taskID uint64) (int64, error)

	// AddMedia attaches a media reference, capped per task
	AddMedia(media *models.TaskMedia) error

	// ListMedia returns the task's media references in added order
	ListMedia(taskID uint64) ([]models.TaskMedia, error)

	// RemoveMedia detaches one media reference
	RemoveMedia(mediaID uint64) error

	// ListHistory returns the task's audit entries, newest first
	ListHistory(taskID uint64) ([]models.TaskHistory, error)
}

// AssigneeRepository is the registry of per-(task, user) status records.
type AssigneeRepository interface {
	// AddAssignees inserts one row per user not already assigned;
	// duplicates are ignored, and the aggregate status is recomputed
	AddAssignees(taskID uint64, userIDs []uint64, initial models.TaskStatus) error

	// GetStatus returns the user's status on the task, or
	// gorm.ErrRecordNotFound when the user is not an assignee
	GetStatus(taskID, userID uint64) (models.TaskStatus, error)

	// SetStatus updates one assignee's status and recomputes the
	// aggregate in the same transaction
	SetStatus(taskID, userID uint64, status models.TaskStatus) (models.TaskStatus, error)

	// Remove deletes the assignee row and recomputes the aggregate over
	// the remaining assignees
	Remove(taskID, userID uint64) error

	// ListStatuses returns userID to status for every current assignee;
	// empty for unknown tasks
	ListStatuses(taskID uint64) (map[uint64]models.TaskStatus, error)
}

// RegistrationRepository defines the interface for self-registration requests.
type RegistrationRepository interface {
	// Create files a request; a second request for the same user conflicts
	Create(req *models.RegistrationRequest) error

	// ListPending returns requests awaiting review, newest first
	ListPending() ([]models.RegistrationRequest, error)

	// FindByUserID returns the user's latest request
	FindByUserID(userID uint64) (*models.RegistrationRequest, error)

	// Approve marks the request approved and upserts the registered user
	Approve(requestID, reviewerID uint64) error

	// Reject marks the request rejected
	Reject(requestID, reviewerID uint64) error
}
