package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "martilhaven-backend/internal/api/http"
	"martilhaven-backend/internal/cache"
	"martilhaven-backend/internal/config"
	"martilhaven-backend/internal/logger"
	"martilhaven-backend/internal/repository/postgres"
	"martilhaven-backend/internal/security"
	"martilhaven-backend/internal/service"

	_ "github.com/lib/pq"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting MartilHaven Backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress())
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)
	logger.Info("Email configuration", "provider", cfg.Email.Provider)

	// Initialize Database
	logger.Debug("Connecting to database...", "connection_string", fmt.Sprintf("%s@%s:%d/%s", cfg.Database.User, cfg.Database.Host, cfg.Database.Port, cfg.Database.Database))
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	if cfg.Database.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	}

	// Initialize Repositories
	store := postgres.NewStore(db)

	// Test database connection
	pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	err = store.Ping(pingCtx)
	cancelPing()
	if err != nil {
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	if cfg.Database.MigrationsPath != "" {
		logger.Info("Applying migrations", "path", cfg.Database.MigrationsPath)
		if err := postgres.MigrateUp(cfg.Database.MigrationsPath, cfg.GetDatabaseConnectionString()); err != nil {
			logger.Error("Failed to migrate database", "error", err)
			log.Fatalf("Failed to migrate database: %v", err)
		}
	}

	// Initialize Security
	tokenManager := security.NewTokenManager(
		cfg.JWT.Secret,
		time.Duration(cfg.JWT.AccessTokenExpiry)*time.Minute,
		time.Duration(cfg.JWT.RefreshTokenExpiry)*time.Minute,
	)

	// Initialize Display Cache
	displayCache := cache.NewNoopCache()
	if cfg.Redis.Addr != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		redisCache, err := cache.NewRedisCache(ctx, cfg.Redis)
		cancel()
		if err != nil {
			logger.Warn("Redis unavailable, display cache disabled", "addr", cfg.Redis.Addr, "error", err)
		} else {
			logger.Info("Display cache connected", "addr", cfg.Redis.Addr)
			displayCache = redisCache
		}
	}
	defer displayCache.Close()

	// Initialize Services
	emailSvc := service.NewEmailService(service.NewMailerFromConfig(cfg))
	locks := service.NewResourceLocker()

	services := httpapi.Services{
		Auth:          service.NewAuthService(store.UserRepository, tokenManager),
		Users:         service.NewUserService(store.UserRepository),
		Properties:    service.NewPropertyService(store.PropertyRepository, store.BookingRepository, locks),
		Bookings:      service.NewBookingService(store.BookingRepository, store.PropertyRepository, store.UserRepository, store.NotificationRepository, emailSvc, locks),
		Forklifts:     service.NewForkliftService(store.ForkliftRepository, store.OperationRepository, locks),
		Operators:     service.NewOperatorService(store.OperatorRepository, store.OperationRepository),
		Operations:    service.NewOperationService(store.OperationRepository, store.ForkliftRepository, store.OperatorRepository, locks),
		Queries:       service.NewQueryService(store.UserRepository, store.PropertyRepository, store.BookingRepository, store.ForkliftRepository, store.OperatorRepository, store.OperationRepository),
		Notifications: service.NewNotificationService(store.NotificationRepository),
	}

	// Set up HTTP server
	router := httpapi.NewRouter(services, tokenManager, displayCache)
	srv := &http.Server{
		Addr:         cfg.GetServerAddress(),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP server listening", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error", "error", err)
			log.Fatalf("Failed to serve: %v", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// Graceful shutdown
	logger.Info("Shutting down HTTP server...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("HTTP server shutdown failed", "error", err)
	}
	logger.Info("HTTP server stopped. Goodbye!")
}
