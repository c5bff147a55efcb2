package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/teamtasker/team-task-service/internal/cache"
	"github.com/teamtasker/team-task-service/internal/models"
	"github.com/teamtasker/team-task-service/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrGroupNotFound  = errors.New("group not found")
	ErrGroupNameTaken = errors.New("a group with this name already exists")
	ErrGroupNameEmpty = errors.New("group name is required")
)

// GroupService manages groups and fronts the group listings with a
// read-through cache. Every write goes through and invalidates the affected
// keys before returning.
type GroupService struct {
	groupRepo repository.GroupRepository
	cache     *cache.Cache
	log       *logrus.Logger
}

// NewGroupService creates a new GroupService
func NewGroupService(groupRepo repository.GroupRepository, c *cache.Cache, log *logrus.Logger) *GroupService {
	return &GroupService{
		groupRepo: groupRepo,
		cache:     c,
		log:       log,
	}
}

// CreateGroup creates a group, optionally with an initial admin.
func (s *GroupService) CreateGroup(ctx context.Context, name string, adminID *uint64) (*models.Group, error) {
	if name == "" {
		return nil, ErrGroupNameEmpty
	}

	group := &models.Group{Name: name}
	if err := s.groupRepo.Create(group); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrGroupNameTaken
		}
		return nil, fmt.Errorf("failed to create group: %w", err)
	}

	if adminID != nil {
		if err := s.groupRepo.AddAdmin(group.ID, *adminID, true); err != nil {
			return nil, fmt.Errorf("failed to add initial admin: %w", err)
		}
		group.AdminID = adminID
		s.cache.Invalidate(ctx, cache.UserGroupsKey(*adminID))
	}

	s.cache.Invalidate(ctx, cache.KeyAllGroups)
	s.log.WithFields(logrus.Fields{"group_id": group.ID, "name": name}).Info("group created")
	return group, nil
}

// GetGroup returns a single group.
func (s *GroupService) GetGroup(groupID uint64) (*models.Group, error) {
	group, err := s.groupRepo.FindByID(groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, fmt.Errorf("failed to get group: %w", err)
	}
	return group, nil
}

// ListGroups returns all groups, served from cache when possible.
func (s *GroupService) ListGroups(ctx context.Context) ([]models.Group, error) {
	var groups []models.Group
	if s.cache.Get(ctx, cache.KeyAllGroups, &groups) {
		return groups, nil
	}

	groups, err := s.groupRepo.ListAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}

	s.cache.Set(ctx, cache.KeyAllGroups, groups)
	return groups, nil
}

// ListUserGroups returns the groups a user belongs to, served from cache
// when possible.
func (s *GroupService) ListUserGroups(ctx context.Context, userID uint64) ([]models.Group, error) {
	key := cache.UserGroupsKey(userID)

	var groups []models.Group
	if s.cache.Get(ctx, key, &groups) {
		return groups, nil
	}

	groups, err := s.groupRepo.ListUserGroups(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list user groups: %w", err)
	}

	s.cache.Set(ctx, key, groups)
	return groups, nil
}

// ListAdminGroups returns the groups a user administers.
func (s *GroupService) ListAdminGroups(userID uint64) ([]models.Group, error) {
	groups, err := s.groupRepo.ListAdminGroups(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list admin groups: %w", err)
	}
	return groups, nil
}

// RenameGroup changes the group name.
func (s *GroupService) RenameGroup(ctx context.Context, groupID uint64, name string) error {
	if name == "" {
		return ErrGroupNameEmpty
	}

	if err := s.groupRepo.Rename(groupID, name); err != nil {
		switch {
		case errors.Is(err, gorm.ErrDuplicatedKey):
			return ErrGroupNameTaken
		case errors.Is(err, gorm.ErrRecordNotFound):
			return ErrGroupNotFound
		}
		return fmt.Errorf("failed to rename group: %w", err)
	}

	s.cache.Invalidate(ctx, cache.KeyAllGroups)
	s.log.WithFields(logrus.Fields{"group_id": groupID, "name": name}).Info("group renamed")
	return nil
}

// DeleteGroup removes the group together with its membership and admin
// rows. Tasks keep their group reference and stay visible in per-user
// listings.
func (s *GroupService) DeleteGroup(ctx context.Context, groupID uint64) error {
	if err := s.groupRepo.Delete(groupID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrGroupNotFound
		}
		return fmt.Errorf("failed to delete group: %w", err)
	}

	s.cache.Invalidate(ctx, cache.KeyAllGroups)
	s.cache.InvalidatePattern(ctx, cache.PatternUserGroups)
	s.log.WithField("group_id", groupID).Info("group deleted")
	return nil
}

// ListMembers returns the group's members, admins included.
func (s *GroupService) ListMembers(groupID uint64) ([]models.User, error) {
	if _, err := s.groupRepo.FindByID(groupID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, fmt.Errorf("failed to get group: %w", err)
	}

	members, err := s.groupRepo.ListMembers(groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	return members, nil
}
