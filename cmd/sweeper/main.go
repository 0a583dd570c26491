// Package main implements a standalone overdue sweep runner. The server
// already sweeps on a schedule; this binary runs a single pass and exits,
// for cron jobs and manual operations.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/wordloop/srs-api/internal/config"
	"github.com/wordloop/srs-api/internal/domain/srs"
	"github.com/wordloop/srs-api/internal/platform/logger"
	"github.com/wordloop/srs-api/internal/platform/postgres"
	"github.com/wordloop/srs-api/internal/service/sweep"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Sweep failed: %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.Setup(cfg.Server.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	db, err := sql.Open("pgx", cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			appLogger.Error("error closing database connection", "error", err)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	params := srs.NewParams(srs.ParamsConfig{
		IntervalTable:       cfg.SRS.IntervalTable,
		OverduePenalty:      cfg.SRS.OverduePenalty,
		WrongAnswerCooldown: time.Duration(cfg.SRS.WrongAnswerCooldownHours) * time.Hour,
		OverdueWindow:       time.Duration(cfg.SRS.OverdueWindowHours) * time.Hour,
	})

	sweeper := sweep.NewSweeper(
		db,
		postgres.NewPostgresCardStore(db, appLogger),
		postgres.NewPostgresUserStore(db, appLogger),
		params,
		cfg.Sweep.BatchLimit,
		nil,
		appLogger,
	)

	result, err := sweeper.Run(ctx)
	if err != nil {
		return fmt.Errorf("sweep failed: %w", err)
	}

	appLogger.Info("sweep completed",
		"marked_overdue", result.MarkedOverdue,
		"hard_reset", result.HardReset,
		"users_flagged", result.UsersFlagged)
	return nil
}
