package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/vigilancia/guard-roster-backend/internal/config"
	"github.com/vigilancia/guard-roster-backend/internal/database"
	"github.com/vigilancia/guard-roster-backend/internal/handlers"
	"github.com/vigilancia/guard-roster-backend/internal/middleware"
	"github.com/vigilancia/guard-roster-backend/internal/services"
	"github.com/vigilancia/guard-roster-backend/pkg/jwt"
	"github.com/vigilancia/guard-roster-backend/pkg/validator"
)

var (
	version   = "1.0.0"
	buildTime = "unknown"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	logger.Info("Starting Guard Roster Backend")
	logger.Infof("Version: %s, Build Time: %s", version, buildTime)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	// Set log level
	logLevel, err := logrus.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		logger.Warn("Invalid log level, using INFO")
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Set Gin mode
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	// Initialize database connection
	logger.Info("Connecting to database...")
	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	// Initialize repositories
	guardRepository := database.NewGuardRepository(db)
	scheduleRepository := database.NewScheduleRepository(db)
	absenceRepository := database.NewAbsenceRepository(db)
	adminConfigRepository := database.NewAdminConfigRepository(db)

	// Initialize services
	logger.Info("Initializing services...")
	jwtService := jwt.NewService(
		cfg.JWT.Secret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)
	phoneValidator := validator.NewPhoneValidator()
	auditService := services.NewAuditService(db, cfg.Security.EnableAuditLog)
	guardService := services.NewGuardService(guardRepository, scheduleRepository, absenceRepository, phoneValidator, cfg.Security.BcryptCost, logger)
	authService := services.NewAuthService(guardRepository, adminConfigRepository, jwtService, logger)
	availabilityService := services.NewAvailabilityService(scheduleRepository, logger)
	scheduleService := services.NewScheduleService(scheduleRepository, guardRepository, logger)
	absenceService := services.NewAbsenceService(absenceRepository, scheduleRepository, logger)
	overviewService := services.NewOverviewService(scheduleRepository, absenceRepository, logger)
	logger.Info("Services initialized")

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, guardService, auditService, logger)
	guardHandler := handlers.NewGuardHandler(guardService, auditService, logger)
	availabilityHandler := handlers.NewAvailabilityHandler(availabilityService, logger)
	scheduleHandler := handlers.NewScheduleHandler(scheduleService, overviewService, auditService, logger)
	absenceHandler := handlers.NewAbsenceHandler(absenceService, guardService, auditService, logger)
	dashboardHandler := handlers.NewDashboardHandler(guardService, scheduleService, absenceService, logger)

	// Initialize Gin router
	router := gin.New()

	// Middleware
	router.Use(gin.Recovery())
	router.Use(requestLogger(logger))

	// CORS configuration
	corsConfig := cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	router.Use(cors.New(corsConfig))

	// Health check endpoint
	router.GET("/health", healthCheckHandler(db))

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Authentication routes (public)
		auth := v1.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.Refresh)

			protected := auth.Group("")
			protected.Use(middleware.AuthMiddleware(jwtService))
			{
				protected.POST("/change-password", authHandler.ChangePassword)
			}
		}

		// Authenticated routes (admin or guard)
		authed := v1.Group("")
		authed.Use(middleware.AuthMiddleware(jwtService))
		{
			authed.GET("/availability/:year/:month", availabilityHandler.GetMonth)
			authed.POST("/schedules", scheduleHandler.Submit)
			authed.GET("/schedules/mine", scheduleHandler.Mine)
			authed.POST("/absences", absenceHandler.Report)
			authed.GET("/absences/open", absenceHandler.ListOpen)
			authed.POST("/absences/:id/cover", absenceHandler.Cover)
			authed.GET("/dashboard", dashboardHandler.Stats)
		}

		// Admin-only routes
		admin := v1.Group("")
		admin.Use(middleware.AuthMiddleware(jwtService), middleware.RequireRole(jwt.RoleAdmin))
		{
			admin.POST("/guards", guardHandler.Register)
			admin.GET("/guards", guardHandler.List)
			admin.PUT("/guards/:id/status", guardHandler.UpdateStatus)
			admin.DELETE("/guards/:id", guardHandler.Delete)

			admin.GET("/schedules/pending", scheduleHandler.Pending)
			admin.POST("/schedules/approve-month", scheduleHandler.ApproveMonth)
			admin.POST("/schedules/:id/approve", scheduleHandler.Approve)
			admin.DELETE("/schedules/:id", scheduleHandler.Reject)

			admin.GET("/overview/:year/:month", scheduleHandler.Overview)
		}
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Infof("Server starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited successfully")
}

// requestLogger middleware for logging HTTP requests
func requestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)

		fields := logrus.Fields{
			"status":     c.Writer.Status(),
			"method":     c.Request.Method,
			"path":       path,
			"query":      query,
			"ip":         c.ClientIP(),
			"latency_ms": latency.Milliseconds(),
			"user_agent": c.Request.UserAgent(),
		}

		if userCtx, exists := middleware.GetUserContext(c); exists {
			fields["user_id"] = userCtx.UserID
			fields["role"] = userCtx.Role
		}

		entry := logger.WithFields(fields)

		status := c.Writer.Status()
		switch {
		case len(c.Errors) > 0:
			entry.Error(c.Errors.String())
		case status >= 500:
			entry.Error("Request completed with server error")
		case status >= 400:
			entry.Warn("Request completed with client error")
		default:
			entry.Info("Request completed successfully")
		}
	}
}

// healthCheckHandler returns a health check endpoint
func healthCheckHandler(db database.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"database": "unhealthy",
				"error":    err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"database":  "healthy",
			"version":   version,
			"timestamp": time.Now().Unix(),
		})
	}
}
