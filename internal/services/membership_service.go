package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/teamtasker/team-task-service/internal/cache"
	"github.com/teamtasker/team-task-service/internal/models"
	"github.com/teamtasker/team-task-service/internal/permissions"
	"github.com/teamtasker/team-task-service/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrNotMember         = errors.New("user is not a member of this group")
	ErrNotGroupAdmin     = errors.New("user is not an admin of this group")
	ErrCannotTouchSelf   = errors.New("a user cannot ban or delete themselves")
	ErrActionNotAllowed  = errors.New("caller is not allowed to perform this action")
	ErrUserAlreadyActive = errors.New("user is not banned")
)

// MembershipService keeps group membership, admin rights and the users'
// task footprint consistent through lifecycle events. Bans and deletes run
// the full cascade in one transaction and report what happened to the
// user's tasks.
type MembershipService struct {
	userRepo  repository.UserRepository
	groupRepo repository.GroupRepository
	checker   *permissions.Checker
	cache     *cache.Cache
	log       *logrus.Logger
}

// NewMembershipService creates a new MembershipService
func NewMembershipService(userRepo repository.UserRepository, groupRepo repository.GroupRepository, checker *permissions.Checker, c *cache.Cache, log *logrus.Logger) *MembershipService {
	return &MembershipService{
		userRepo:  userRepo,
		groupRepo: groupRepo,
		checker:   checker,
		cache:     c,
		log:       log,
	}
}

// BanUser flags the user banned, strips their admin pairings and
// memberships, and cancels or reassigns their tasks, all atomically. The
// returned counts describe the task side of the cascade.
func (s *MembershipService) BanUser(ctx context.Context, userID, actorID uint64) (repository.CascadeCounts, error) {
	if err := s.checkCascadeAllowed(userID, actorID); err != nil {
		return repository.CascadeCounts{}, err
	}

	counts, err := s.userRepo.BanCascade(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return repository.CascadeCounts{}, ErrUserNotFound
		}
		return repository.CascadeCounts{}, fmt.Errorf("failed to ban user: %w", err)
	}

	s.invalidateMembership(ctx, userID)
	s.log.WithFields(logrus.Fields{
		"user_id":   userID,
		"actor":     actorID,
		"cancelled": counts.Cancelled,
		"updated":   counts.Updated,
	}).Warn("user banned")
	return counts, nil
}

// DeleteUser runs the ban cascade and additionally flags the user deleted,
// hiding them from directory listings. The row itself stays so task history
// keeps resolving.
func (s *MembershipService) DeleteUser(ctx context.Context, userID, actorID uint64) (repository.CascadeCounts, error) {
	if err := s.checkCascadeAllowed(userID, actorID); err != nil {
		return repository.CascadeCounts{}, err
	}

	counts, err := s.userRepo.DeleteCascade(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return repository.CascadeCounts{}, ErrUserNotFound
		}
		return repository.CascadeCounts{}, fmt.Errorf("failed to delete user: %w", err)
	}

	s.invalidateMembership(ctx, userID)
	s.log.WithFields(logrus.Fields{
		"user_id":   userID,
		"actor":     actorID,
		"cancelled": counts.Cancelled,
		"updated":   counts.Updated,
	}).Warn("user deleted")
	return counts, nil
}

// UnbanUser clears the banned flag. Memberships, admin rights and cancelled
// tasks are not restored; they have to be granted again explicitly.
func (s *MembershipService) UnbanUser(userID, actorID uint64) error {
	if !s.checker.IsSuperAdmin(actorID) {
		return ErrActionNotAllowed
	}

	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to get user: %w", err)
	}
	if !user.Banned {
		return ErrUserAlreadyActive
	}

	if err := s.userRepo.Unban(userID); err != nil {
		return fmt.Errorf("failed to unban user: %w", err)
	}

	s.log.WithFields(logrus.Fields{"user_id": userID, "actor": actorID}).Info("user unbanned")
	return nil
}

// CancelUserTasks runs only the task portion of the cascade, without
// touching the user's flags or memberships.
func (s *MembershipService) CancelUserTasks(userID uint64) (repository.CascadeCounts, error) {
	counts, err := s.userRepo.CancelUserTasks(userID)
	if err != nil {
		return repository.CascadeCounts{}, fmt.Errorf("failed to cancel user tasks: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"user_id":   userID,
		"cancelled": counts.Cancelled,
		"updated":   counts.Updated,
	}).Info("user tasks cancelled")
	return counts, nil
}

// AddUserToGroup links the user to the group. Linking an existing member is
// a no-op.
func (s *MembershipService) AddUserToGroup(ctx context.Context, userID, groupID uint64) error {
	exists, err := s.userRepo.Exists(userID)
	if err != nil {
		return fmt.Errorf("failed to check user: %w", err)
	}
	if !exists {
		return ErrUserNotFound
	}

	if _, err := s.groupRepo.FindByID(groupID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrGroupNotFound
		}
		return fmt.Errorf("failed to check group: %w", err)
	}

	if err := s.groupRepo.AddMember(userID, groupID); err != nil {
		return fmt.Errorf("failed to add member: %w", err)
	}

	s.invalidateMembership(ctx, userID)
	s.log.WithFields(logrus.Fields{"user_id": userID, "group_id": groupID}).Info("member added")
	return nil
}

// RemoveUserFromGroup unlinks the user from the group. Admin rights for the
// group are removed first so the primary-admin pointer never dangles.
func (s *MembershipService) RemoveUserFromGroup(ctx context.Context, userID, groupID uint64) error {
	isAdmin, err := s.groupRepo.IsAdmin(userID, &groupID)
	if err != nil {
		return fmt.Errorf("failed to check admin: %w", err)
	}
	if isAdmin {
		if err := s.groupRepo.RemoveAdmin(groupID, userID); err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to remove admin pairing: %w", err)
		}
	}

	if err := s.groupRepo.RemoveMember(userID, groupID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotMember
		}
		return fmt.Errorf("failed to remove member: %w", err)
	}

	s.invalidateMembership(ctx, userID)
	s.log.WithFields(logrus.Fields{"user_id": userID, "group_id": groupID}).Info("member removed")
	return nil
}

// AddGroupAdmin grants admin rights on the group, joining the user as a
// member if needed. When promote is set, or the group has no primary admin
// yet, the user becomes the primary admin.
func (s *MembershipService) AddGroupAdmin(ctx context.Context, groupID, adminID uint64, promote bool) error {
	exists, err := s.userRepo.Exists(adminID)
	if err != nil {
		return fmt.Errorf("failed to check user: %w", err)
	}
	if !exists {
		return ErrUserNotFound
	}

	if err := s.groupRepo.AddAdmin(groupID, adminID, promote); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrGroupNotFound
		}
		return fmt.Errorf("failed to add admin: %w", err)
	}

	s.invalidateMembership(ctx, adminID)
	s.log.WithFields(logrus.Fields{"group_id": groupID, "admin_id": adminID}).Info("group admin added")
	return nil
}

// RemoveGroupAdmin revokes admin rights on the group. If the removed admin
// was the primary one, another admin is promoted, or the pointer is nulled
// when none remain. Membership is kept.
func (s *MembershipService) RemoveGroupAdmin(groupID, adminID uint64) error {
	if err := s.groupRepo.RemoveAdmin(groupID, adminID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotGroupAdmin
		}
		return fmt.Errorf("failed to remove admin: %w", err)
	}

	s.log.WithFields(logrus.Fields{"group_id": groupID, "admin_id": adminID}).Info("group admin removed")
	return nil
}

// ListUsers returns all non-deleted users with their memberships.
func (s *MembershipService) ListUsers() ([]models.User, error) {
	users, err := s.userRepo.ListAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// ListUsersWithoutGroup returns non-deleted users that belong to no group.
func (s *MembershipService) ListUsersWithoutGroup() ([]models.User, error) {
	users, err := s.userRepo.ListWithoutGroup()
	if err != nil {
		return nil, fmt.Errorf("failed to list users without group: %w", err)
	}
	return users, nil
}

// GetUser returns a single user.
func (s *MembershipService) GetUser(userID uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// SetUserName updates the user's display name.
func (s *MembershipService) SetUserName(userID uint64, name string) error {
	if err := s.userRepo.SetName(userID, name); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to set user name: %w", err)
	}
	return nil
}

// ListAssignableUsers returns the users the caller may assign tasks to,
// scoped by capability: super admins see everyone, group admins see the
// members of the groups they administer, regular users see the members of
// their own groups. Banned users are never assignable.
func (s *MembershipService) ListAssignableUsers(userID uint64) ([]models.User, error) {
	if s.checker.IsSuperAdmin(userID) {
		users, err := s.userRepo.ListAll()
		if err != nil {
			return nil, fmt.Errorf("failed to list users: %w", err)
		}
		return filterBanned(users), nil
	}

	groups, err := s.groupRepo.ListAdminGroups(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list admin groups: %w", err)
	}
	if len(groups) == 0 {
		if groups, err = s.groupRepo.ListUserGroups(userID); err != nil {
			return nil, fmt.Errorf("failed to list user groups: %w", err)
		}
	}

	seen := make(map[uint64]struct{})
	var users []models.User
	for _, group := range groups {
		members, err := s.groupRepo.ListMembers(group.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to list members of group %d: %w", group.ID, err)
		}
		for _, member := range members {
			if _, ok := seen[member.ID]; ok {
				continue
			}
			seen[member.ID] = struct{}{}
			users = append(users, member)
		}
	}

	if _, ok := seen[userID]; !ok {
		if self, err := s.userRepo.FindByID(userID); err == nil {
			users = append(users, *self)
		}
	}

	return filterBanned(users), nil
}

func (s *MembershipService) checkCascadeAllowed(userID, actorID uint64) error {
	if userID == actorID {
		return ErrCannotTouchSelf
	}
	if s.checker.IsSuperAdmin(userID) {
		return ErrActionNotAllowed
	}
	elevated, err := s.checker.IsElevated(actorID)
	if err != nil {
		return fmt.Errorf("failed to check permissions: %w", err)
	}
	if !elevated {
		return ErrActionNotAllowed
	}
	return nil
}

// invalidateMembership drops the cached group listings affected by a
// membership change. Invalidation is synchronous so readers never see the
// pre-change memberships after the call returns.
func (s *MembershipService) invalidateMembership(ctx context.Context, userID uint64) {
	s.cache.Invalidate(ctx, cache.KeyAllGroups, cache.UserGroupsKey(userID))
}

func filterBanned(users []models.User) []models.User {
	result := make([]models.User, 0, len(users))
	for _, u := range users {
		if u.Banned {
			continue
		}
		result = append(result, u)
	}
	return result
}
