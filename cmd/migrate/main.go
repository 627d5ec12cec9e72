package main

import (
	"flag"
	"log"

	"martilhaven-backend/internal/config"
	"martilhaven-backend/internal/logger"
	"martilhaven-backend/internal/repository/postgres"
)

func main() {
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	direction := flag.String("direction", "up", "Migration direction: 'up' or 'down'")
	steps := flag.Int("steps", 1, "Number of migrations to roll back with -direction=down (0 rolls back everything)")
	path := flag.String("path", "", "Migrations source URL; defaults to database.migrations_path or file://migrations")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)

	source := *path
	if source == "" {
		source = cfg.Database.MigrationsPath
	}
	if source == "" {
		source = "file://migrations"
	}

	logger.Info("Running migrations", "direction", *direction, "source", source, "database", cfg.Database.Database)
	switch *direction {
	case "up":
		err = postgres.MigrateUp(source, cfg.GetDatabaseConnectionString())
	case "down":
		err = postgres.MigrateDown(source, cfg.GetDatabaseConnectionString(), *steps)
	default:
		log.Fatalf("Unknown migration direction: %s", *direction)
	}
	if err != nil {
		logger.Error("Migration failed", "error", err)
		log.Fatalf("Migration failed: %v", err)
	}
	logger.Info("Migrations finished")
}
