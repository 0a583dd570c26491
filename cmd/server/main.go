// Package main implements the entry point for the spaced-repetition
// scheduling server. It exposes the review API, runs the overdue sweeper
// and reminder planner on a schedule, and processes notification delivery
// tasks in the background.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/wordloop/srs-api/internal/config"
	"github.com/wordloop/srs-api/internal/platform/logger"
	"github.com/wordloop/srs-api/internal/platform/postgres"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}
}

// run loads configuration, sets up core dependencies, and starts the
// application. Split from main so errors flow through a single exit path.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.Setup(cfg.Server.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	appLogger.Info("server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"strategy", cfg.SRS.Strategy)

	db, err := openDatabase(cfg.Database.URL, appLogger)
	if err != nil {
		return err
	}

	if err := postgres.RunMigrations(db); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}
	appLogger.Info("database migrations applied")

	app, err := newApplication(cfg, appLogger, db)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	return app.Run(context.Background())
}

// openDatabase opens and verifies the database connection.
func openDatabase(url string, log *slog.Logger) (*sql.DB, error) {
	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info("database connection established")
	return db, nil
}
