package main

import (
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/teamtasker/team-task-service/internal/cache"
	"github.com/teamtasker/team-task-service/internal/config"
	"github.com/teamtasker/team-task-service/internal/database"
	"github.com/teamtasker/team-task-service/internal/handlers"
	"github.com/teamtasker/team-task-service/internal/middleware"
	"github.com/teamtasker/team-task-service/internal/permissions"
	"github.com/teamtasker/team-task-service/internal/repository"
	"github.com/teamtasker/team-task-service/internal/services"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg := config.Load()

	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	if cfg.GinMode == "release" {
		log.SetLevel(logrus.InfoLevel)
	} else {
		log.SetLevel(logrus.DebugLevel)
	}

	gin.SetMode(cfg.GinMode)

	if err := database.Connect(cfg); err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}
	if err := database.Migrate(); err != nil {
		log.WithError(err).Fatal("failed to run migrations")
	}
	if err := database.AddIndexes(database.GetDB()); err != nil {
		log.WithError(err).Fatal("failed to add indexes")
	}

	// The service degrades to uncached reads when Redis is unreachable.
	redisClient := cache.NewRedisClient(cfg.RedisHost + ":" + cfg.RedisPort)
	if redisClient == nil {
		log.Warn("redis unavailable, running without cache")
	}
	groupCache := cache.New(redisClient, cfg.CacheTTL)

	db := database.GetDB()
	userRepo := repository.NewUserRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	assigneeRepo := repository.NewAssigneeRepository(db)
	registrationRepo := repository.NewRegistrationRepository(db)

	checker := permissions.NewChecker(cfg.SuperAdminIDs, groupRepo)

	taskService := services.NewTaskService(taskRepo, groupRepo, userRepo, checker, log)
	assigneeService := services.NewAssigneeService(assigneeRepo, userRepo, log)
	groupService := services.NewGroupService(groupRepo, groupCache, log)
	membershipService := services.NewMembershipService(userRepo, groupRepo, checker, groupCache, log)
	registrationService := services.NewRegistrationService(registrationRepo, userRepo, checker, cfg.RegistrationPasswordHash, log)

	taskHandler := handlers.NewTaskHandler(taskService, groupService)
	assigneeHandler := handlers.NewAssigneeHandler(assigneeService)
	groupHandler := handlers.NewGroupHandler(groupService, membershipService)
	userHandler := handlers.NewUserHandler(membershipService)
	registrationHandler := handlers.NewRegistrationHandler(registrationService)

	r := gin.Default()

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "Team Task Service is running",
		})
	})

	api := r.Group("/api", middleware.RequireIdentity())
	{
		registration := api.Group("/registration")
		{
			registration.POST("/register", registrationHandler.Register)
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
			users.GET("/me/admin-groups", groupHandler.ListMyAdminGroups)
			users.GET("/:id", userHandler.GetUser)
			users.PUT("/:id/name", userHandler.SetUserName)
			users.POST("/:id/ban", userHandler.BanUser)
			users.POST("/:id/unban", userHandler.UnbanUser)
			users.DELETE("/:id", userHandler.DeleteUser)
			users.POST("/:id/cancel-tasks", userHandler.CancelUserTasks)
		}

		groups := api.Group("/groups")
		{
			groups.POST("", groupHandler.CreateGroup)
			groups.GET("", groupHandler.ListGroups)
			groups.GET("/:id", groupHandler.GetGroup)
			groups.PUT("/:id/name", groupHandler.RenameGroup)
			groups.DELETE("/:id", groupHandler.DeleteGroup)
			groups.GET("/:id/members", groupHandler.ListMembers)
			groups.POST("/:id/members", groupHandler.AddMember)
			groups.DELETE("/:id/members/:user_id", groupHandler.RemoveMember)
			groups.POST("/:id/admins", groupHandler.AddAdmin)
			groups.DELETE("/:id/admins/:user_id", groupHandler.RemoveAdmin)
		}

		tasks := api.Group("/tasks")
		{
			tasks.POST("", taskHandler.CreateTask)
			tasks.GET("", taskHandler.ListTasks)
			tasks.GET("/:id", taskHandler.GetTask)
			tasks.PATCH("/:id", taskHandler.UpdateTask)
			tasks.DELETE("/:id", taskHandler.DeleteTask)
			tasks.PUT("/:id/status", taskHandler.ForceStatus)
			tasks.GET("/:id/history", taskHandler.ListHistory)

			tasks.POST("/:id/media", taskHandler.AddMedia)
			tasks.GET("/:id/media", taskHandler.ListMedia)
			tasks.DELETE("/:id/media/:media_id", taskHandler.RemoveMedia)

			tasks.POST("/:id/assignees", assigneeHandler.AddAssignees)
			tasks.GET("/:id/assignees", assigneeHandler.ListStatuses)
			tasks.GET("/:id/assignees/:user_id", assigneeHandler.GetStatus)
			tasks.PUT("/:id/assignees/:user_id", assigneeHandler.SetStatus)
			tasks.DELETE("/:id/assignees/:user_id", assigneeHandler.RemoveAssignee)
		}
	}

	log.WithField("port", cfg.Port).Info("starting server")
	if err := r.Run(":" + cfg.Port); err != nil {
		log.WithError(err).Fatal("server exited")
	}
}
