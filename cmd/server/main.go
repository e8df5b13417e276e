package main

import (
	"log"

	"github.com/gin-contrib/sessions"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/mizunoha/task-board-api/internal/config"
	"github.com/mizunoha/task-board-api/internal/constants"
	"github.com/mizunoha/task-board-api/internal/database"
	"github.com/mizunoha/task-board-api/internal/handlers"
	"github.com/mizunoha/task-board-api/internal/middleware"
	"github.com/mizunoha/task-board-api/internal/repository"
	"github.com/mizunoha/task-board-api/internal/services"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize Gin router
	r := gin.Default()

	// Setup session middleware with Redis
	redisAddr := cfg.RedisHost + ":" + cfg.RedisPort
	store, err := redisStore.NewStore(
		10,        // Redis pool size
		"tcp",     // network type
		redisAddr, // Redis address from config
		"",        // password (empty = no password)
		[]byte(cfg.SessionSecret), // authentication key
	)
	if err != nil {
		log.Fatalf("Failed to create Redis store: %v", err)
	}
	// Configure session options based on environment
	isProduction := cfg.GinMode == "release"
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   constants.SessionMaxAge,
		HttpOnly: true,
		Secure:   isProduction, // true in production (HTTPS), false in development
		SameSite: 2,            // SameSite=Lax (1=Strict, 2=Lax, 3=None)
	})
	r.Use(sessions.Sessions(constants.SessionName, store))

	// Initialize repositories
	taskRepo := repository.NewTaskRepository(database.GetDB())
	userRepo := repository.NewUserRepository(database.GetDB())

	// Initialize AI service
	var aiService *services.AIService
	if cfg.OpenAIAPIKey != "" {
		aiService = services.NewAIService(cfg.OpenAIAPIKey)
	}

	// Initialize services and handlers
	authHandler := handlers.NewAuthHandler(services.NewAuthService(userRepo))
	taskHandler := handlers.NewTaskHandler(services.NewTaskService(taskRepo, userRepo, aiService))
	userHandler := handlers.NewUserHandler(userRepo)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "Task Board API is running",
		})
	})

	// API routes
	api := r.Group("/api")
	{
		// Auth routes
		auth := api.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", middleware.RequireAuth(), authHandler.GetCurrentUser)
		}

		// User roster (protected, read-only)
		api.GET("/users", middleware.RequireAuth(), userHandler.ListUsers)

		// Per-user dashboard
		api.GET("/dashboard", middleware.RequireAuth(), taskHandler.Dashboard)

		// Task routes (protected)
		tasks := api.Group("/tasks")
		tasks.Use(middleware.RequireAuth())
		{
			tasks.GET("", middleware.RequireAdmin(), taskHandler.ListTasks)
			tasks.POST("", middleware.RequireAdmin(), taskHandler.CreateTask)
			tasks.POST("/command", middleware.RequireAdmin(), taskHandler.CreateTaskFromCommand)
			tasks.GET("/:id", middleware.RequireTaskAccess(), taskHandler.GetTask)
			tasks.PATCH("/:id", middleware.RequireAdmin(), middleware.RequireTaskAccess(), taskHandler.UpdateTask)
			tasks.DELETE("/:id", middleware.RequireAdmin(), middleware.RequireTaskAccess(), taskHandler.DeleteTask)
			tasks.POST("/:id/subtasks", middleware.RequireTaskAccess(), taskHandler.CreateSubtask)
			tasks.POST("/:id/report", middleware.RequireTaskAccess(), taskHandler.ReportTask)
			tasks.POST("/:id/approve", middleware.RequireAdmin(), middleware.RequireTaskAccess(), taskHandler.ApproveTask)
			tasks.POST("/:id/send-back", middleware.RequireAdmin(), middleware.RequireTaskAccess(), taskHandler.SendBackTask)
			tasks.POST("/:id/toggle", middleware.RequireTaskAccess(), taskHandler.ToggleSubtask)
		}
	}

	// Start server
	log.Println("Server starting on :8080")
	if err := r.Run(":8080"); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
