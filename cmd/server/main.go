package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vocabdrill/internal/auth"
	"vocabdrill/internal/config"
	"vocabdrill/internal/database"
	"vocabdrill/internal/handlers"
	"vocabdrill/internal/repository"
	"vocabdrill/internal/scheduler"
	"vocabdrill/internal/security"
	"vocabdrill/internal/service"

	"github.com/go-co-op/gocron"
)

func main() {
	// Load configuration
	cfg := config.Load()

	if cfg.TokenSecret == "" {
		log.Fatal("TOKEN_SECRET must be set")
	}

	// Initialize database with config (supports sqlite, postgres, mysql)
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	log.Printf("Database connection established (type: %s)", cfg.DatabaseType)

	// Run migrations
	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Migrations completed successfully")

	// Initialize repositories
	itemRepo := repository.NewItemRepository(db)
	stateRepo := repository.NewStateRepository(db)
	snapshotRepo := repository.NewSnapshotRepository(db)
	deviceRepo := repository.NewDeviceRepository(db)
	flagRepo := repository.NewFlagRepository(db)

	// Initialize the scheduling engine
	params := scheduler.DefaultParams()
	clock := scheduler.SystemClock()
	processor := scheduler.NewProcessor(stateRepo, itemRepo, params, clock)
	builder := scheduler.NewBuilder(stateRepo, snapshotRepo, itemRepo, flagRepo, params, clock, cfg.QueueLimit, cfg.FreshnessWindow)
	controller := scheduler.NewController(builder, snapshotRepo, flagRepo, deviceRepo, clock)

	// Initialize services
	emailService, err := service.NewEmailService(cfg.SESRegion, cfg.SESFromEmail, cfg.SESFromName, cfg.Debug)
	if err != nil {
		log.Fatalf("Failed to initialize email service: %v", err)
	}
	reminderService := service.NewReminderService(deviceRepo, stateRepo, emailService, cfg.ReminderThreshold)

	// Initialize handlers
	tokens := auth.NewTokenIssuer(cfg.TokenSecret, cfg.TokenTTL)
	limiter := security.NewRateLimiter(60, time.Minute)
	middleware := handlers.NewMiddleware(tokens, deviceRepo, limiter, cfg.AdminSecret)
	deviceHandler := handlers.NewDeviceHandler(deviceRepo, tokens, cfg.TokenTTL)
	queueHandler := handlers.NewQueueHandler(controller)
	submissionHandler := handlers.NewSubmissionHandler(processor)
	adminHandler := handlers.NewAdminHandler(controller, flagRepo)

	// Setup routes
	mux := http.NewServeMux()

	// Device registration and token exchange
	mux.HandleFunc("POST /api/devices/register", middleware.RateLimit(deviceHandler.Register))
	mux.HandleFunc("POST /api/devices/token", middleware.RateLimit(deviceHandler.Token))

	// Device-authenticated routes
	mux.HandleFunc("GET /api/queue", middleware.RequireDevice(middleware.RateLimit(queueHandler.GetQueue)))
	mux.HandleFunc("POST /api/submissions", middleware.RequireDevice(middleware.RateLimit(submissionHandler.Submit)))

	// Admin routes
	mux.HandleFunc("POST /admin/queues/regenerate", middleware.RequireAdmin(adminHandler.RegenerateQueues))
	mux.HandleFunc("POST /admin/flags/{category}", middleware.RequireAdmin(adminHandler.SetFlag))

	// Wrap with logging middleware
	handler := handlers.Logging(mux)

	// Background jobs: periodic queue sweep and daily reminder pass
	jobs := gocron.NewScheduler(time.UTC)
	jobs.Every(cfg.SweepInterval).Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.SweepInterval)
		defer cancel()

		result, err := controller.RegenerateAll(ctx)
		if err != nil {
			log.Printf("Queue sweep aborted: %v", err)
			return
		}
		log.Printf("Queue sweep complete: %d rebuilt, %d failed", result.Processed, result.Failed)
	})
	jobs.Every(1).Day().At(reminderTime(cfg.ReminderHourUTC)).Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		result, err := reminderService.Run(ctx, time.Now().UTC())
		if err != nil {
			log.Printf("Reminder pass aborted: %v", err)
			return
		}
		log.Printf("Reminder pass complete: %d checked, %d sent, %d failed", result.Checked, result.Sent, result.Failed)
	})
	jobs.StartAsync()

	// Start server
	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on http://localhost%s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")
	jobs.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}

func reminderTime(hourUTC int) string {
	if hourUTC < 0 || hourUTC > 23 {
		hourUTC = 7
	}
	return time.Date(0, 1, 1, hourUTC, 0, 0, 0, time.UTC).Format("15:04")
}
