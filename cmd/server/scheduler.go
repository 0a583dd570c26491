package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"
)

// backgroundScheduler drives the periodic maintenance jobs: the overdue
// sweeper and the reminder planner.
type backgroundScheduler struct {
	scheduler *gocron.Scheduler
	app       *application
	logger    *slog.Logger
}

func newBackgroundScheduler(app *application, logger *slog.Logger) *backgroundScheduler {
	return &backgroundScheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		app:       app,
		logger:    logger.With(slog.String("component", "scheduler")),
	}
}

// Start registers the jobs and begins running them in the background.
func (s *backgroundScheduler) Start() {
	sweepInterval := s.app.config.Sweep.IntervalMinutes
	if sweepInterval <= 0 {
		sweepInterval = 15
	}
	planInterval := s.app.config.Notification.PlanIntervalMinutes
	if planInterval <= 0 {
		planInterval = 1
	}

	if _, err := s.scheduler.Every(sweepInterval).Minutes().Do(s.runSweep); err != nil {
		s.logger.Error("failed to schedule overdue sweep", "error", err)
	}
	if _, err := s.scheduler.Every(planInterval).Minutes().Do(s.runPlanner); err != nil {
		s.logger.Error("failed to schedule reminder planning", "error", err)
	}

	s.scheduler.StartAsync()
	s.logger.Info("background jobs scheduled",
		"sweep_interval_minutes", sweepInterval,
		"plan_interval_minutes", planInterval)
}

// Stop terminates all scheduled jobs.
func (s *backgroundScheduler) Stop() {
	s.scheduler.Stop()
}

func (s *backgroundScheduler) runSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	result, err := s.app.sweeper.Run(ctx)
	if err != nil {
		s.logger.Error("overdue sweep failed", "error", err)
		return
	}
	s.logger.Info("overdue sweep completed",
		"marked_overdue", result.MarkedOverdue,
		"hard_reset", result.HardReset,
		"users_flagged", result.UsersFlagged)
}

func (s *backgroundScheduler) runPlanner() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if err := s.app.planner.Run(ctx); err != nil {
		s.logger.Error("reminder planning failed", "error", err)
	}
}
