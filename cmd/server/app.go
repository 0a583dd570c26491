package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/wordloop/srs-api/internal/config"
	"github.com/wordloop/srs-api/internal/domain/srs"
	"github.com/wordloop/srs-api/internal/events"
	"github.com/wordloop/srs-api/internal/platform/clock"
	"github.com/wordloop/srs-api/internal/platform/postgres"
	"github.com/wordloop/srs-api/internal/platform/telegram"
	"github.com/wordloop/srs-api/internal/service"
	"github.com/wordloop/srs-api/internal/service/reminder"
	"github.com/wordloop/srs-api/internal/service/review"
	"github.com/wordloop/srs-api/internal/service/sweep"
	"github.com/wordloop/srs-api/internal/store"
	"github.com/wordloop/srs-api/internal/task"
)

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB
	clock  clock.Clock

	// Stores
	userStore        store.UserStore
	cardStore        store.CardStore
	wrongAnswerStore store.WrongAnswerStore
	taskStore        *postgres.PostgresTaskStore

	// Services
	cardService   service.CardService
	reviewService review.Service
	sweeper       *sweep.Sweeper
	planner       *reminder.Planner

	// Event system
	eventEmitter *events.InMemoryEventEmitter

	// Background processing
	taskRunner *task.TaskRunner
	scheduler  *backgroundScheduler
}

// newApplication creates a new application instance with all dependencies
// initialized. Core dependencies like configuration, logger, and database
// connection must be established before calling this.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
		clock:  clock.SystemClock{},
	}

	// Stores
	app.userStore = postgres.NewPostgresUserStore(db, logger)
	app.cardStore = postgres.NewPostgresCardStore(db, logger)
	app.wrongAnswerStore = postgres.NewPostgresWrongAnswerStore(db, logger)
	app.taskStore = postgres.NewPostgresTaskStore(db)

	// Scheduling policy
	params := srs.NewParams(srsParamsConfig(&cfg.SRS))
	policy, err := srs.NewPolicy(cfg.SRS.Strategy, params)
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduling policy: %w", err)
	}
	logger.Info("scheduling policy initialized", "strategy", cfg.SRS.Strategy)

	// Event emitter
	app.eventEmitter = events.NewInMemoryEventEmitter(logger)

	// Notification delivery channel
	var notifier reminder.Notifier
	if cfg.Notification.TelegramToken != "" {
		bot, err := tgbotapi.NewBotAPI(cfg.Notification.TelegramToken)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize telegram bot: %w", err)
		}
		notifier = telegram.NewNotifier(bot, app.userStore, logger)
		logger.Info("telegram notification channel initialized")
	} else {
		notifier = reminder.NewLogNotifier(logger)
		logger.Info("no telegram token configured, notifications will be logged only")
	}

	// Task runner with delivery task rehydration
	dispatcher := reminder.NewDispatcher(app.userStore, notifier, app.clock, logger)
	taskFactory := task.NewNotificationTaskFactory(dispatcher, logger)
	app.taskStore.RegisterExecuteFunc(task.TaskTypeNotificationDispatch, taskFactory.ExecuteFunc)

	app.taskRunner = task.NewTaskRunner(app.taskStore, task.TaskRunnerConfig{
		WorkerCount: cfg.Task.WorkerCount,
		QueueSize:   cfg.Task.QueueSize,
		MaxAttempts: cfg.Task.MaxAttempts,
		RetryDelay:  time.Duration(cfg.Task.RetryDelaySeconds) * time.Second,
	}, logger)

	app.eventEmitter.RegisterHandler(
		task.NewNotificationEventHandler(taskFactory, app.taskRunner, logger),
	)

	// Services
	app.cardService, err = service.NewCardService(
		app.cardStore,
		app.userStore,
		app.wrongAnswerStore,
		app.clock,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create card service: %w", err)
	}

	app.reviewService = review.NewService(
		db,
		app.cardStore,
		app.userStore,
		app.wrongAnswerStore,
		policy,
		app.eventEmitter,
		app.clock,
		logger,
	)

	app.sweeper = sweep.NewSweeper(
		db,
		app.cardStore,
		app.userStore,
		params,
		cfg.Sweep.BatchLimit,
		app.clock,
		logger,
	)

	app.planner = reminder.NewPlanner(
		app.cardStore,
		app.userStore,
		app.eventEmitter,
		time.Duration(cfg.Notification.PlanIntervalMinutes)*time.Minute,
		app.clock,
		logger,
	)
	// The planner listens for completed reviews to suppress reminders for
	// recently active users.
	app.eventEmitter.RegisterHandler(app.planner)

	app.scheduler = newBackgroundScheduler(app, logger)

	logger.Info("application initialized successfully")
	return app, nil
}

// Run starts background processing and the HTTP server, blocking until
// shutdown.
func (app *application) Run(ctx context.Context) error {
	// Start recovers delivery tasks left over from a previous run before
	// the workers begin draining the queue.
	if err := app.taskRunner.Start(); err != nil {
		return fmt.Errorf("failed to start task runner: %w", err)
	}

	app.scheduler.Start()

	router := app.setupRouter()
	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.scheduler != nil {
		app.scheduler.Stop()
	}

	if app.taskRunner != nil {
		app.taskRunner.Stop()
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", "error", err)
		}
	}

	app.logger.Info("application shutdown completed")
}

// srsParamsConfig converts configuration overrides into policy parameters.
// Zero values fall back to the policy defaults.
func srsParamsConfig(cfg *config.SRSConfig) srs.ParamsConfig {
	return srs.ParamsConfig{
		IntervalTable:       cfg.IntervalTable,
		EasyMultiplier:      cfg.EasyMultiplier,
		MediumMultiplier:    cfg.MediumMultiplier,
		HardMultiplier:      cfg.HardMultiplier,
		OverduePenalty:      cfg.OverduePenalty,
		MasterySuccessRate:  cfg.MasterySuccessRate,
		MasteryMinAttempts:  cfg.MasteryMinAttempts,
		WrongAnswerCooldown: time.Duration(cfg.WrongAnswerCooldownHours) * time.Hour,
		OverdueWindow:       time.Duration(cfg.OverdueWindowHours) * time.Hour,
		ReviewCooldown:      time.Duration(cfg.ReviewCooldownMinutes) * time.Minute,
	}
}
