package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"github.com/teamtasker/team-task-service/internal/cache"
	"github.com/teamtasker/team-task-service/internal/constants"
	"github.com/teamtasker/team-task-service/internal/middleware"
	"github.com/teamtasker/team-task-service/internal/models"
	"github.com/teamtasker/team-task-service/internal/permissions"
	"github.com/teamtasker/team-task-service/internal/repository"
	"github.com/teamtasker/team-task-service/internal/services"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testSuperAdminID uint64 = 900

// newTestApp builds the full route surface against an in-memory SQLite
// database, mirroring the wiring in cmd/server.
func newTestApp(t *testing.T) (*gin.Engine, *gorm.DB) {
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

	log := logrus.New()
	log.SetOutput(io.Discard)

	userRepo := repository.NewUserRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	assigneeRepo := repository.NewAssigneeRepository(db)
	registrationRepo := repository.NewRegistrationRepository(db)

	checker := permissions.NewChecker([]uint64{testSuperAdminID}, groupRepo)
	groupCache := cache.New(nil, time.Minute)

	taskService := services.NewTaskService(taskRepo, groupRepo, userRepo, checker, log)
	assigneeService := services.NewAssigneeService(assigneeRepo, userRepo, log)
	groupService := services.NewGroupService(groupRepo, groupCache, log)
	membershipService := services.NewMembershipService(userRepo, groupRepo, checker, groupCache, log)
	registrationService := services.NewRegistrationService(registrationRepo, userRepo, checker, "", log)

	taskHandler := NewTaskHandler(taskService, groupService)
	assigneeHandler := NewAssigneeHandler(assigneeService)
	groupHandler := NewGroupHandler(groupService, membershipService)
	userHandler := NewUserHandler(membershipService)
	registrationHandler := NewRegistrationHandler(registrationService)

	gin.SetMode(gin.TestMode)
	r := gin.New()

	api := r.Group("/api", middleware.RequireIdentity())
	{
		registration := api.Group("/registration")
		{
			registration.POST("/requests", registrationHandler.RequestRegistration)
			registration.GET("/requests", registrationHandler.ListPending)
			registration.POST("/requests/:id/approve", registrationHandler.ApproveRequest)
			registration.POST("/requests/:id/reject", registrationHandler.RejectRequest)
		}

		users := api.Group("/users")
		{
			users.GET("", userHandler.ListUsers)
			users.GET("/assignable", userHandler.ListAssignableUsers)
			users.GET("/me/tasks", taskHandler.ListMyTasks)
			users.GET("/me/groups", groupHandler.ListMyGroups)
			users.GET("/:id", userHandler.GetUser)
			users.POST("/:id/ban", userHandler.BanUser)
			users.POST("/:id/unban", userHandler.UnbanUser)
			users.DELETE("/:id", userHandler.DeleteUser)
		}

		groups := api.Group("/groups")
		{
			groups.POST("", groupHandler.CreateGroup)
			groups.GET("", groupHandler.ListGroups)
			groups.GET("/:id/members", groupHandler.ListMembers)
			groups.POST("/:id/members", groupHandler.AddMember)
			groups.DELETE("/:id/members/:user_id", groupHandler.RemoveMember)
			groups.POST("/:id/admins", groupHandler.AddAdmin)
			groups.DELETE("/:id/admins/:user_id", groupHandler.RemoveAdmin)
			groups.DELETE("/:id", groupHandler.DeleteGroup)
		}

		tasks := api.Group("/tasks")
		{
			tasks.POST("", taskHandler.CreateTask)
			tasks.GET("", taskHandler.ListTasks)
			tasks.GET("/:id", taskHandler.GetTask)
			tasks.PATCH("/:id", taskHandler.UpdateTask)
			tasks.DELETE("/:id", taskHandler.DeleteTask)
			tasks.PUT("/:id/status", taskHandler.ForceStatus)
			tasks.POST("/:id/assignees", assigneeHandler.AddAssignees)
			tasks.GET("/:id/assignees", assigneeHandler.ListStatuses)
			tasks.GET("/:id/assignees/:user_id", assigneeHandler.GetStatus)
			tasks.PUT("/:id/assignees/:user_id", assigneeHandler.SetStatus)
			tasks.DELETE("/:id/assignees/:user_id", assigneeHandler.RemoveAssignee)
		}
	}

	return r, db
}

// doRequest performs a request as the given user and decodes the JSON body.
func doRequest(t *testing.T, r *gin.Engine, method, url string, body interface{}, userID uint64) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, url, reader)
	req.Header.Set("Content-Type", "application/json")
	if userID != 0 {
		req.Header.Set(constants.HeaderUserID, strconv.FormatUint(userID, 10))
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	response := map[string]interface{}{}
	if w.Body.Len() > 0 && w.Header().Get("Content-Type") != "" {
		_ = json.Unmarshal(w.Body.Bytes(), &response)
	}
	return w, response
}

func seedUser(t *testing.T, db *gorm.DB, id uint64, name string) {
	t.Helper()
	require.NoError(t, db.Create(&models.User{ID: id, Name: name, Registered: true}).Error)
}

func seedGroup(t *testing.T, db *gorm.DB, name string) *models.Group {
	t.Helper()
	group := &models.Group{Name: name}
	require.NoError(t, db.Create(group).Error)
	return group
}
