package srs

import (
	"time"

	"github.com/wordloop/srs-api/internal/domain"
)

// Params defines all configurable parameters for the scheduling policy
type Params struct {
	// IntervalTable holds the per-stage review interval in days. Index 0 is
	// a newly introduced card; the last index is the mastery stage. The
	// values must be monotonically increasing.
	IntervalTable []int

	// Per-difficulty multipliers applied to the base interval.
	DifficultyMultiplier map[domain.Difficulty]float64

	// OverduePenalty shrinks the next interval when the card was already
	// overdue at review time; a late review earns a shorter interval than
	// an on-time one.
	OverduePenalty float64

	// Escalated wrong-answer regression
	WrongStreakPenaltyThreshold int

	// Mastery criteria
	MasterySuccessRate float64
	MasteryMinAttempts int

	// Timing windows
	WrongAnswerCooldown time.Duration
	OverdueWindow       time.Duration
	ReviewCooldown      time.Duration

	// Batch sizing
	OverdueShareOfGoal float64
	MinimumShareOfGoal float64
}

// ParamsConfig allows overriding the default parameters when creating a new
// Params instance
type ParamsConfig struct {
	IntervalTable []int

	EasyMultiplier   float64
	MediumMultiplier float64
	HardMultiplier   float64

	OverduePenalty              float64
	WrongStreakPenaltyThreshold int

	MasterySuccessRate float64
	MasteryMinAttempts int

	WrongAnswerCooldown time.Duration
	OverdueWindow       time.Duration
	ReviewCooldown      time.Duration
}

// NewDefaultParams creates a new Params instance with default values.
// The interval table extends the stage delays observed in long-term
// retention curves (3, 7, 14, 30, 60, 120 days) with a one-day stage 0.
func NewDefaultParams() *Params {
	return &Params{
		IntervalTable: []int{1, 3, 7, 14, 30, 60, 120},

		DifficultyMultiplier: map[domain.Difficulty]float64{
			domain.DifficultyEasy:   1.3,
			domain.DifficultyMedium: 1.0,
			domain.DifficultyHard:   0.8,
		},

		OverduePenalty:              0.7,
		WrongStreakPenaltyThreshold: 3,

		MasterySuccessRate: 0.85,
		MasteryMinAttempts: 5,

		WrongAnswerCooldown: 24 * time.Hour,
		OverdueWindow:       24 * time.Hour,
		ReviewCooldown:      time.Hour,

		OverdueShareOfGoal: 0.7,
		MinimumShareOfGoal: 0.5,
	}
}

// NewParams creates a new Params instance with custom configuration
func NewParams(config ParamsConfig) *Params {
	params := NewDefaultParams()

	if len(config.IntervalTable) > 0 {
		params.IntervalTable = config.IntervalTable
	}

	if config.EasyMultiplier > 0 {
		params.DifficultyMultiplier[domain.DifficultyEasy] = config.EasyMultiplier
	}
	if config.MediumMultiplier > 0 {
		params.DifficultyMultiplier[domain.DifficultyMedium] = config.MediumMultiplier
	}
	if config.HardMultiplier > 0 {
		params.DifficultyMultiplier[domain.DifficultyHard] = config.HardMultiplier
	}

	if config.OverduePenalty > 0 {
		params.OverduePenalty = config.OverduePenalty
	}
	if config.WrongStreakPenaltyThreshold > 0 {
		params.WrongStreakPenaltyThreshold = config.WrongStreakPenaltyThreshold
	}

	if config.MasterySuccessRate > 0 {
		params.MasterySuccessRate = config.MasterySuccessRate
	}
	if config.MasteryMinAttempts > 0 {
		params.MasteryMinAttempts = config.MasteryMinAttempts
	}

	if config.WrongAnswerCooldown > 0 {
		params.WrongAnswerCooldown = config.WrongAnswerCooldown
	}
	if config.OverdueWindow > 0 {
		params.OverdueWindow = config.OverdueWindow
	}
	if config.ReviewCooldown > 0 {
		params.ReviewCooldown = config.ReviewCooldown
	}

	return params
}

// MaxStage is the last valid index of the interval table.
func (p *Params) MaxStage() int {
	return len(p.IntervalTable) - 1
}

// ClampStage forces a stage into the interval table's valid index range.
func (p *Params) ClampStage(stage int) int {
	if stage < 0 {
		return 0
	}
	if stage > p.MaxStage() {
		return p.MaxStage()
	}
	return stage
}
