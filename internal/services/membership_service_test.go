package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"github.com/teamtasker/team-task-service/internal/models"
	"github.com/teamtasker/team-task-service/internal/repository"
)

type MembershipServiceTestSuite struct {
	suite.Suite
	env *testEnv
	svc *MembershipService
	ctx context.Context
}

func (suite *MembershipServiceTestSuite) SetupTest() {
	suite.env = newTestEnv(suite.T())
	suite.svc = suite.env.membershipService()
	suite.ctx = context.Background()

	suite.env.seedUser(suite.T(), 1, "Alice")
	suite.env.seedUser(suite.T(), 2, "Bob")
	suite.env.seedUser(suite.T(), 3, "Carol")
	suite.env.seedGroup(suite.T(), "Team")
}

func (suite *MembershipServiceTestSuite) TestBanUserPermissionChecks() {
	_, err := suite.svc.BanUser(suite.ctx, 2, 2)
	assert.ErrorIs(suite.T(), err, ErrCannotTouchSelf)

	// A plain user cannot ban anyone
	_, err = suite.svc.BanUser(suite.ctx, 2, 3)
	assert.ErrorIs(suite.T(), err, ErrActionNotAllowed)

	// Nobody bans a super admin
	_, err = suite.svc.BanUser(suite.ctx, superAdminID, 1)
	assert.ErrorIs(suite.T(), err, ErrActionNotAllowed)
}

func (suite *MembershipServiceTestSuite) TestBanUserRunsCascade() {
	suite.Require().NoError(suite.svc.AddUserToGroup(suite.ctx, 2, 1))

	task := &models.Task{
		Title: "T", Description: "d", Date: "2025-06-01", Time: "12:00",
		GroupID: 1, CreatedBy: 2,
	}
	suite.Require().NoError(suite.env.taskRepo.Create(task, nil))

	counts, err := suite.svc.BanUser(suite.ctx, 2, superAdminID)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), repository.CascadeCounts{Cancelled: 1, Updated: 0}, counts)

	user, err := suite.svc.GetUser(2)
	suite.Require().NoError(err)
	assert.True(suite.T(), user.Banned)
}

func (suite *MembershipServiceTestSuite) TestGroupAdminMayBanWithinReach() {
	suite.Require().NoError(suite.svc.AddGroupAdmin(suite.ctx, 1, 3, false))

	_, err := suite.svc.BanUser(suite.ctx, 2, 3)
	suite.Require().NoError(err)
}

func (suite *MembershipServiceTestSuite) TestUnbanRequiresSuperAdmin() {
	_, err := suite.svc.BanUser(suite.ctx, 2, superAdminID)
	suite.Require().NoError(err)

	err = suite.svc.UnbanUser(2, 1)
	assert.ErrorIs(suite.T(), err, ErrActionNotAllowed)

	suite.Require().NoError(suite.svc.UnbanUser(2, superAdminID))

	err = suite.svc.UnbanUser(2, superAdminID)
	assert.ErrorIs(suite.T(), err, ErrUserAlreadyActive)
}

func (suite *MembershipServiceTestSuite) TestDeleteUserHidesFromListings() {
	_, err := suite.svc.DeleteUser(suite.ctx, 3, superAdminID)
	suite.Require().NoError(err)

	users, err := suite.svc.ListUsers()
	suite.Require().NoError(err)
	for _, u := range users {
		assert.NotEqualValues(suite.T(), 3, u.ID)
	}
}

func (suite *MembershipServiceTestSuite) TestRemoveUserFromGroupDropsAdminRights() {
	suite.Require().NoError(suite.svc.AddGroupAdmin(suite.ctx, 1, 2, false))

	suite.Require().NoError(suite.svc.RemoveUserFromGroup(suite.ctx, 2, 1))

	group, err := suite.env.groupRepo.FindByID(1)
	suite.Require().NoError(err)
	assert.Nil(suite.T(), group.AdminID)

	err = suite.svc.RemoveUserFromGroup(suite.ctx, 2, 1)
	assert.ErrorIs(suite.T(), err, ErrNotMember)
}

func (suite *MembershipServiceTestSuite) TestAddUserToGroupValidation() {
	err := suite.svc.AddUserToGroup(suite.ctx, 999, 1)
	assert.ErrorIs(suite.T(), err, ErrUserNotFound)

	err = suite.svc.AddUserToGroup(suite.ctx, 1, 999)
	assert.ErrorIs(suite.T(), err, ErrGroupNotFound)
}

func (suite *MembershipServiceTestSuite) TestListAssignableUsersScoping() {
	group2 := suite.env.seedGroup(suite.T(), "Other")

	suite.Require().NoError(suite.svc.AddUserToGroup(suite.ctx, 1, 1))
	suite.Require().NoError(suite.svc.AddUserToGroup(suite.ctx, 2, 1))
	suite.Require().NoError(suite.svc.AddUserToGroup(suite.ctx, 3, group2.ID))

	// A regular member sees their own group's members
	users, err := suite.svc.ListAssignableUsers(1)
	suite.Require().NoError(err)
	ids := userIDs(users)
	assert.ElementsMatch(suite.T(), []uint64{1, 2}, ids)

	// A super admin sees everyone
	users, err = suite.svc.ListAssignableUsers(superAdminID)
	suite.Require().NoError(err)
	assert.Len(suite.T(), users, 3)

	// Banned users drop out of the pool
	_, err = suite.svc.BanUser(suite.ctx, 2, superAdminID)
	suite.Require().NoError(err)

	users, err = suite.svc.ListAssignableUsers(superAdminID)
	suite.Require().NoError(err)
	assert.ElementsMatch(suite.T(), []uint64{1, 3}, userIDs(users))
}

func (suite *MembershipServiceTestSuite) TestListAssignableUsersGroupAdmin() {
	group2 := suite.env.seedGroup(suite.T(), "Other")
	suite.Require().NoError(suite.svc.AddUserToGroup(suite.ctx, 2, 1))
	suite.Require().NoError(suite.svc.AddUserToGroup(suite.ctx, 3, group2.ID))
	suite.Require().NoError(suite.svc.AddGroupAdmin(suite.ctx, 1, 1, false))

	// Admin of group 1 sees its members but not group 2's
	users, err := suite.svc.ListAssignableUsers(1)
	suite.Require().NoError(err)
	assert.ElementsMatch(suite.T(), []uint64{1, 2}, userIDs(users))
}

func userIDs(users []models.User) []uint64 {
	ids := make([]uint64, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}
	return ids
}

func TestMembershipServiceTestSuite(t *testing.T) {
	suite.Run(t, new(MembershipServiceTestSuite))
}
