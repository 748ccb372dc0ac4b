package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/khetbazaar/estate-admin-api/internal/auth"
	"github.com/khetbazaar/estate-admin-api/internal/config"
	"github.com/khetbazaar/estate-admin-api/internal/database"
	"github.com/khetbazaar/estate-admin-api/internal/geojson"
	"github.com/khetbazaar/estate-admin-api/internal/handlers"
	"github.com/khetbazaar/estate-admin-api/internal/logger"
	"github.com/khetbazaar/estate-admin-api/internal/mailer"
	"github.com/khetbazaar/estate-admin-api/internal/middleware"
	"github.com/khetbazaar/estate-admin-api/internal/repository"
	"github.com/khetbazaar/estate-admin-api/internal/services"
	"github.com/redis/go-redis/v9"
)

const (
	shutdownTimeout = 30 * time.Second
)

func main() {
	// Load .env if present; real environment variables take precedence
	_ = godotenv.Load()

	// Load configuration from environment variables
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize structured logger
	log := logger.New(cfg.Server.Env)
	log.Info("Starting estate admin API", map[string]interface{}{
		"version":     handlers.APIVersion,
		"environment": cfg.Server.Env,
		"port":        cfg.Server.Port,
	})

	// Create database connection pool
	ctx := context.Background()
	db, err := database.NewPostgresPool(ctx, cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", err, map[string]interface{}{
			"host": cfg.Database.Host,
			"port": cfg.Database.Port,
			"name": cfg.Database.Name,
		})
	}
	defer db.Close()

	log.Info("Database connection established", map[string]interface{}{
		"host":     cfg.Database.Host,
		"port":     cfg.Database.Port,
		"database": cfg.Database.Name,
		"pool_min": cfg.Database.PoolMin,
		"pool_max": cfg.Database.PoolMax,
	})

	// Setup Gin router
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Add middleware in order: RequestID -> Logger -> Recovery -> CORS
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log))
	router.Use(middleware.Recovery(log))
	router.Use(middleware.CORS(cfg.CORS.Origins))

	// Register health check routes
	healthHandler := handlers.NewHealthHandler(db, cfg.Server.Env)
	router.GET("/health", healthHandler.Health)
	router.GET("/health/ready", healthHandler.Ready)
	router.GET("/api/v1/info", healthHandler.Info)

	// Mail delivery: real SMTP when configured, no-op otherwise
	var sender mailer.Sender = mailer.NopSender{}
	if cfg.Mail.Host != "" {
		sender = mailer.NewSMTPSender(cfg.Mail)
		log.Info("SMTP mail sender configured", map[string]interface{}{
			"host": cfg.Mail.Host,
			"port": cfg.Mail.Port,
		})
	} else {
		log.Warn("No SMTP server configured, outgoing mail will be discarded", nil)
	}
	dispatcher := mailer.NewDispatcher(sender, log)

	// Initialize repository and service layers
	tokens := auth.NewTokenIssuer(cfg.Auth.Secret)
	converter := geojson.NewConverter(log)

	propertyRepo := repository.NewPropertyRepository(db)
	userRepo := repository.NewUserRepository(db)

	propertyService := services.NewPropertyService(propertyRepo, converter, dispatcher, log)
	authService := services.NewAuthService(userRepo, tokens, dispatcher, cfg.Auth, log)
	exportService := services.NewExportService(userRepo, log)

	// Initialize handlers
	propertyHandler := handlers.NewPropertyHandler(propertyService)
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(exportService)

	// Register auth routes, rate limited when redis is configured
	authGroup := router.Group("/auth/admin")
	if cfg.Redis.Addr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
		})
		defer redisClient.Close()

		authGroup.Use(middleware.AuthRateLimiter(redisClient, "auth", cfg.Redis.AuthRateLimit))
		log.Info("Auth rate limiting enabled", map[string]interface{}{
			"addr":  cfg.Redis.Addr,
			"limit": cfg.Redis.AuthRateLimit,
		})
	}
	{
		authGroup.POST("/signup", authHandler.Signup)
		authGroup.POST("/login", authHandler.Login)
	}

	// Register admin routes behind the bearer token role gate
	admin := router.Group("/admin")
	admin.Use(middleware.RequireAdmin(tokens))
	{
		admin.PATCH("/properties/:id", propertyHandler.UpdateStatus)
		admin.POST("/properties/:id/status", propertyHandler.UpdateStatusNotify)
		admin.GET("/properties/:status", propertyHandler.ListByStatus)
		admin.GET("/user-properties/counts", propertyHandler.StatusCounts)
		admin.GET("/users/export", userHandler.ExportUsers)
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server listening", map[string]interface{}{
			"port": cfg.Server.Port,
			"addr": srv.Addr,
		})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start", err, nil)
		}
	}()

	// Wait for interrupt signal (SIGINT or SIGTERM)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	// Graceful shutdown
	log.Info("Shutting down server...", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", err, map[string]interface{}{
			"timeout": shutdownTimeout.String(),
		})
	}

	log.Info("Server exited", nil)
}
