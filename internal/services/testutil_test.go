package services

import (
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"github.com/teamtasker/team-task-service/internal/cache"
	"github.com/teamtasker/team-task-service/internal/models"
	"github.com/teamtasker/team-task-service/internal/permissions"
	"github.com/teamtasker/team-task-service/internal/repository"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const superAdminID uint64 = 900

// testEnv wires the service stack against an in-memory SQLite database. The
// cache runs with a nil Redis client, exercising the degraded path.
type testEnv struct {
	db               *gorm.DB
	userRepo         repository.UserRepository
	groupRepo        repository.GroupRepository
	taskRepo         repository.TaskRepository
	assigneeRepo     repository.AssigneeRepository
	registrationRepo repository.RegistrationRepository
	checker          *permissions.Checker
	cache            *cache.Cache
	log              *logrus.Logger
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError:                           true,
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB, err := db.DB()
		require.NoError(t, err)
		sqlDB.Close()
	})

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Group{},
		&models.UserGroup{},
		&models.GroupAdmin{},
		&models.Task{},
		&models.TaskAssignee{},
		&models.TaskMedia{},
		&models.TaskHistory{},
		&models.RegistrationRequest{},
	))

	groupRepo := repository.NewGroupRepository(db)

	log := logrus.New()
	log.SetOutput(io.Discard)

	return &testEnv{
		db:               db,
		userRepo:         repository.NewUserRepository(db),
		groupRepo:        groupRepo,
		taskRepo:         repository.NewTaskRepository(db),
		assigneeRepo:     repository.NewAssigneeRepository(db),
		registrationRepo: repository.NewRegistrationRepository(db),
		checker:          permissions.NewChecker([]uint64{superAdminID}, groupRepo),
		cache:            cache.New(nil, time.Minute),
		log:              log,
	}
}

func (e *testEnv) taskService() *TaskService {
	return NewTaskService(e.taskRepo, e.groupRepo, e.userRepo, e.checker, e.log)
}

func (e *testEnv) assigneeService() *AssigneeService {
	return NewAssigneeService(e.assigneeRepo, e.userRepo, e.log)
}

func (e *testEnv) groupService() *GroupService {
	return NewGroupService(e.groupRepo, e.cache, e.log)
}

func (e *testEnv) membershipService() *MembershipService {
	return NewMembershipService(e.userRepo, e.groupRepo, e.checker, e.cache, e.log)
}

func (e *testEnv) registrationService(passwordHash string) *RegistrationService {
	return NewRegistrationService(e.registrationRepo, e.userRepo, e.checker, passwordHash, e.log)
}

func (e *testEnv) seedUser(t *testing.T, id uint64, name string) {
	t.Helper()
	require.NoError(t, e.db.Create(&models.User{ID: id, Name: name, Registered: true}).Error)
}

func (e *testEnv) seedGroup(t *testing.T, name string) *models.Group {
	t.Helper()
	group := &models.Group{Name: name}
	require.NoError(t, e.db.Create(group).Error)
	return group
}
