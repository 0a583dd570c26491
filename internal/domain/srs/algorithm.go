package srs

import (
	"math"
	"time"

	"github.com/wordloop/srs-api/internal/domain"
)

// Schedule is the result of applying the scheduling policy to one review:
// the card's new stage and the timestamps that govern when it next becomes
// reviewable. Exactly one of NextReviewAt/WaitingUntil drives eligibility;
// the waiting-period strategy sets both so callers can display the full
// review date while the waiting deadline remains authoritative.
type Schedule struct {
	NewStage     int
	NextReviewAt *time.Time
	WaitingUntil *time.Time
}

// advanceStage computes the stage after a correct answer.
//
// The stage moves up one position, or two when the learner reported the
// card as easy and the double advance still lands inside the table. The
// result is always clamped to the table's last index.
func advanceStage(currentStage int, difficulty domain.Difficulty, params *Params) int {
	step := 1
	if difficulty == domain.DifficultyEasy && currentStage+2 <= params.MaxStage() {
		step = 2
	}
	return params.ClampStage(currentStage + step)
}

// regressStage computes the stage after a wrong answer under the interval
// strategy.
//
// The stage moves down one position, or two when the card already carried a
// wrong streak at or above the penalty threshold before this event. The
// result is floored at zero.
func regressStage(currentStage, wrongStreakBefore int, params *Params) int {
	step := 1
	if wrongStreakBefore >= params.WrongStreakPenaltyThreshold {
		step = 2
	}
	return params.ClampStage(currentStage - step)
}

// scaledIntervalDays converts a stage into a concrete interval, applying
// the difficulty multiplier and, for cards reviewed late, the overdue
// penalty. Reviewing late always yields a shorter next interval than
// reviewing on time.
func scaledIntervalDays(stage int, difficulty domain.Difficulty, wasOverdue bool, params *Params) float64 {
	days := float64(params.IntervalTable[params.ClampStage(stage)])

	if m, ok := params.DifficultyMultiplier[difficulty]; ok {
		days *= m
	}

	if wasOverdue {
		days *= params.OverduePenalty
	}

	return days
}

// durationFromDays converts fractional days into a duration using pure
// duration arithmetic, deliberately ignoring calendar-day boundaries.
func durationFromDays(days float64) time.Duration {
	return time.Duration(math.Round(days * 24 * float64(time.Hour.Nanoseconds())))
}

// evaluateMastery decides whether a card has earned mastery: it must sit at
// the table's final stage with a lifetime success rate at or above the
// threshold, and it must have accumulated the minimum number of attempts.
// The attempt floor stops a short lucky streak from mastering a card.
func evaluateMastery(card *domain.Card, params *Params) bool {
	if card.Stage < params.MaxStage() {
		return false
	}

	if card.TotalReviews() < params.MasteryMinAttempts {
		return false
	}

	return card.SuccessRate() >= params.MasterySuccessRate
}
