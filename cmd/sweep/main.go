package main

import (
	"context"
	"flag"
	"log"
	"time"

	"vocabdrill/internal/config"
	"vocabdrill/internal/database"
	"vocabdrill/internal/repository"
	"vocabdrill/internal/scheduler"
)

// One-shot queue regeneration, intended for cron or operator use when the
// in-process sweep is not enough (bulk catalog imports, flag flips).
func main() {
	timeout := flag.Duration("timeout", 10*time.Minute, "Abort the sweep after this long")
	flag.Parse()

	cfg := config.Load()

	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	itemRepo := repository.NewItemRepository(db)
	stateRepo := repository.NewStateRepository(db)
	snapshotRepo := repository.NewSnapshotRepository(db)
	deviceRepo := repository.NewDeviceRepository(db)
	flagRepo := repository.NewFlagRepository(db)

	params := scheduler.DefaultParams()
	clock := scheduler.SystemClock()
	builder := scheduler.NewBuilder(stateRepo, snapshotRepo, itemRepo, flagRepo, params, clock, cfg.QueueLimit, cfg.FreshnessWindow)
	controller := scheduler.NewController(builder, snapshotRepo, flagRepo, deviceRepo, clock)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	start := time.Now()
	result, err := controller.RegenerateAll(ctx)
	if err != nil {
		log.Fatalf("Sweep failed after %d devices: %v", result.Processed+result.Failed, err)
	}

	log.Printf("Sweep complete in %s: %d rebuilt, %d failed", time.Since(start).Round(time.Millisecond), result.Processed, result.Failed)
}
