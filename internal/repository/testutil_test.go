package repository

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/teamtasker/team-task-service/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB creates an in-memory SQLite database with the full schema.
// TranslateError is on so duplicate keys surface as gorm.ErrDuplicatedKey,
// matching the production configuration.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError:                           true,
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.Group{},
		&models.UserGroup{},
		&models.GroupAdmin{},
		&models.Task{},
		&models.TaskAssignee{},
		&models.TaskMedia{},
		&models.TaskHistory{},
		&models.RegistrationRequest{},
	)
	require.NoError(t, err)

	return db
}

func createUser(t *testing.T, db *gorm.DB, id uint64, name string) *models.User {
	t.Helper()
	user := &models.User{ID: id, Name: name, Registered: true}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createGroup(t *testing.T, db *gorm.DB, name string) *models.Group {
	t.Helper()
	group := &models.Group{Name: name}
	require.NoError(t, db.Create(group).Error)
	return group
}

func createTask(t *testing.T, db *gorm.DB, repo TaskRepository, groupID, creatorID uint64, assigneeIDs ...uint64) *models.Task {
	t.Helper()
	task := &models.Task{
		Title:       "Test Task",
		Description: "test description",
		Date:        "2025-06-01",
		Time:        "12:00",
		GroupID:     groupID,
		CreatedBy:   creatorID,
	}
	require.NoError(t, repo.Create(task, assigneeIDs))
	return task
}

func taskStatus(t *testing.T, db *gorm.DB, taskID uint64) models.TaskStatus {
	t.Helper()
	var task models.Task
	require.NoError(t, db.First(&task, taskID).Error)
	return task.Status
}
