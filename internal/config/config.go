package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server       ServerConfig       `mapstructure:"server" validate:"required"`
	Database     DatabaseConfig     `mapstructure:"database" validate:"required"`
	SRS          SRSConfig          `mapstructure:"srs"`
	Sweep        SweepConfig        `mapstructure:"sweep"`
	Notification NotificationConfig `mapstructure:"notification"`
	Task         TaskConfig         `mapstructure:"task"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required"`
}

// SRSConfig selects the scheduling strategy and overrides its tuning
// parameters. Zero values fall back to the policy defaults.
type SRSConfig struct {
	Strategy string `mapstructure:"strategy" validate:"omitempty,oneof=waiting interval"`

	IntervalTable []int `mapstructure:"interval_table"`

	EasyMultiplier   float64 `mapstructure:"easy_multiplier" validate:"omitempty,gt=0"`
	MediumMultiplier float64 `mapstructure:"medium_multiplier" validate:"omitempty,gt=0"`
	HardMultiplier   float64 `mapstructure:"hard_multiplier" validate:"omitempty,gt=0"`

	OverduePenalty float64 `mapstructure:"overdue_penalty" validate:"omitempty,gt=0,lte=1"`

	MasterySuccessRate float64 `mapstructure:"mastery_success_rate" validate:"omitempty,gt=0,lte=1"`
	MasteryMinAttempts int     `mapstructure:"mastery_min_attempts" validate:"omitempty,gt=0"`

	WrongAnswerCooldownHours int `mapstructure:"wrong_answer_cooldown_hours" validate:"omitempty,gt=0"`
	OverdueWindowHours       int `mapstructure:"overdue_window_hours" validate:"omitempty,gt=0"`
	ReviewCooldownMinutes    int `mapstructure:"review_cooldown_minutes" validate:"omitempty,gt=0"`
}

// SweepConfig tunes the overdue sweeper schedule.
type SweepConfig struct {
	IntervalMinutes int `mapstructure:"interval_minutes" validate:"omitempty,gt=0"`
	BatchLimit      int `mapstructure:"batch_limit" validate:"omitempty,gt=0"`
}

// NotificationConfig contains reminder planning and delivery settings.
type NotificationConfig struct {
	// TelegramToken enables the Telegram delivery channel when set.
	TelegramToken string `mapstructure:"telegram_token"`

	// PlanIntervalMinutes is the reminder planning tick.
	PlanIntervalMinutes int `mapstructure:"plan_interval_minutes" validate:"omitempty,gt=0"`
}

// TaskConfig tunes the background task runner.
type TaskConfig struct {
	WorkerCount       int `mapstructure:"worker_count" validate:"omitempty,gt=0"`
	QueueSize         int `mapstructure:"queue_size" validate:"omitempty,gt=0"`
	MaxAttempts       int `mapstructure:"max_attempts" validate:"omitempty,gt=0"`
	RetryDelaySeconds int `mapstructure:"retry_delay_seconds" validate:"omitempty,gt=0"`
}
