package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"github.com/teamtasker/team-task-service/internal/models"
	"gorm.io/gorm"
)

type GroupRepositoryTestSuite struct {
	suite.Suite
	db   *gorm.DB
	repo GroupRepository
}

func (suite *GroupRepositoryTestSuite) SetupTest() {
	suite.db = newTestDB(suite.T())
	suite.repo = NewGroupRepository(suite.db)

	createUser(suite.T(), suite.db, 1, "Alice")
	createUser(suite.T(), suite.db, 2, "Bob")
	createUser(suite.T(), suite.db, 3, "Carol")
}

func (suite *GroupRepositoryTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *GroupRepositoryTestSuite) primaryAdmin(groupID uint64) *uint64 {
	group, err := suite.repo.FindByID(groupID)
	suite.Require().NoError(err)
	return group.AdminID
}

func (suite *GroupRepositoryTestSuite) TestCreateDuplicateName() {
	suite.Require().NoError(suite.repo.Create(&models.Group{Name: "Team"}))

	err := suite.repo.Create(&models.Group{Name: "Team"})
	assert.ErrorIs(suite.T(), err, gorm.ErrDuplicatedKey)
}

func (suite *GroupRepositoryTestSuite) TestAddMemberIdempotent() {
	group := createGroup(suite.T(), suite.db, "Team")

	suite.Require().NoError(suite.repo.AddMember(1, group.ID))
	suite.Require().NoError(suite.repo.AddMember(1, group.ID))

	var count int64
	suite.db.Model(&models.UserGroup{}).Where("group_id = ?", group.ID).Count(&count)
	assert.EqualValues(suite.T(), 1, count)
}

func (suite *GroupRepositoryTestSuite) TestRemoveMemberNotLinked() {
	group := createGroup(suite.T(), suite.db, "Team")

	err := suite.repo.RemoveMember(1, group.ID)
	assert.ErrorIs(suite.T(), err, gorm.ErrRecordNotFound)
}

func (suite *GroupRepositoryTestSuite) TestAddAdminFillsEmptyPrimary() {
	group := createGroup(suite.T(), suite.db, "Team")
	assert.Nil(suite.T(), suite.primaryAdmin(group.ID))

	suite.Require().NoError(suite.repo.AddAdmin(group.ID, 1, false))

	primary := suite.primaryAdmin(group.ID)
	suite.Require().NotNil(primary)
	assert.EqualValues(suite.T(), 1, *primary)

	// The admin becomes a member too
	has, err := suite.repo.HasGroup(1)
	suite.Require().NoError(err)
	assert.True(suite.T(), has)
}

func (suite *GroupRepositoryTestSuite) TestAddAdminDoesNotDemoteExistingPrimary() {
	group := createGroup(suite.T(), suite.db, "Team")
	suite.Require().NoError(suite.repo.AddAdmin(group.ID, 1, false))

	suite.Require().NoError(suite.repo.AddAdmin(group.ID, 2, false))
	primary := suite.primaryAdmin(group.ID)
	suite.Require().NotNil(primary)
	assert.EqualValues(suite.T(), 1, *primary)

	// Explicit promotion moves the pointer
	suite.Require().NoError(suite.repo.AddAdmin(group.ID, 2, true))
	primary = suite.primaryAdmin(group.ID)
	suite.Require().NotNil(primary)
	assert.EqualValues(suite.T(), 2, *primary)
}

func (suite *GroupRepositoryTestSuite) TestRemoveAdminPromotesReplacement() {
	group := createGroup(suite.T(), suite.db, "Team")
	suite.Require().NoError(suite.repo.AddAdmin(group.ID, 1, false))
	suite.Require().NoError(suite.repo.AddAdmin(group.ID, 2, false))

	suite.Require().NoError(suite.repo.RemoveAdmin(group.ID, 1))

	// The pointer never dangles: the remaining admin takes over
	primary := suite.primaryAdmin(group.ID)
	suite.Require().NotNil(primary)
	assert.EqualValues(suite.T(), 2, *primary)
}

func (suite *GroupRepositoryTestSuite) TestRemoveLastAdminNullsPrimary() {
	group := createGroup(suite.T(), suite.db, "Team")
	suite.Require().NoError(suite.repo.AddAdmin(group.ID, 1, false))

	suite.Require().NoError(suite.repo.RemoveAdmin(group.ID, 1))

	assert.Nil(suite.T(), suite.primaryAdmin(group.ID))

	isAdmin, err := suite.repo.IsAdmin(1, &group.ID)
	suite.Require().NoError(err)
	assert.False(suite.T(), isAdmin)
}

func (suite *GroupRepositoryTestSuite) TestRemoveAdminNotPaired() {
	group := createGroup(suite.T(), suite.db, "Team")

	err := suite.repo.RemoveAdmin(group.ID, 1)
	assert.ErrorIs(suite.T(), err, gorm.ErrRecordNotFound)
}

func (suite *GroupRepositoryTestSuite) TestListMembersIncludesAdminsOnce() {
	group := createGroup(suite.T(), suite.db, "Team")
	suite.Require().NoError(suite.repo.AddMember(1, group.ID))
	suite.Require().NoError(suite.repo.AddAdmin(group.ID, 1, false))
	suite.Require().NoError(suite.repo.AddAdmin(group.ID, 2, false))

	members, err := suite.repo.ListMembers(group.ID)
	suite.Require().NoError(err)

	ids := make([]uint64, len(members))
	for i, m := range members {
		ids[i] = m.ID
	}
	assert.ElementsMatch(suite.T(), []uint64{1, 2}, ids)
}

func (suite *GroupRepositoryTestSuite) TestDeleteGroupKeepsTasks() {
	group := createGroup(suite.T(), suite.db, "Team")
	suite.Require().NoError(suite.repo.AddMember(1, group.ID))
	suite.Require().NoError(suite.repo.AddAdmin(group.ID, 2, false))

	taskRepo := NewTaskRepository(suite.db)
	task := createTask(suite.T(), suite.db, taskRepo, group.ID, 1, 2)

	suite.Require().NoError(suite.repo.Delete(group.ID))

	_, err := suite.repo.FindByID(group.ID)
	assert.ErrorIs(suite.T(), err, gorm.ErrRecordNotFound)

	var count int64
	suite.db.Model(&models.UserGroup{}).Where("group_id = ?", group.ID).Count(&count)
	assert.Zero(suite.T(), count)
	suite.db.Model(&models.GroupAdmin{}).Where("group_id = ?", group.ID).Count(&count)
	assert.Zero(suite.T(), count)

	// The task survives and still references the vanished group
	var reloaded models.Task
	suite.Require().NoError(suite.db.First(&reloaded, task.ID).Error)
	assert.Equal(suite.T(), group.ID, reloaded.GroupID)
	assert.Equal(suite.T(), models.TaskStatusPending, reloaded.Status)
}

func (suite *GroupRepositoryTestSuite) TestIsAdminAnyGroup() {
	group := createGroup(suite.T(), suite.db, "Team")
	suite.Require().NoError(suite.repo.AddAdmin(group.ID, 1, false))

	isAdmin, err := suite.repo.IsAdmin(1, nil)
	suite.Require().NoError(err)
	assert.True(suite.T(), isAdmin)

	isAdmin, err = suite.repo.IsAdmin(3, nil)
	suite.Require().NoError(err)
	assert.False(suite.T(), isAdmin)
}

func TestGroupRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(GroupRepositoryTestSuite))
}
