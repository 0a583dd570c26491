package srs

import (
	"errors"
	"fmt"
	"time"

	"github.com/wordloop/srs-api/internal/domain"
)

// Common errors
var (
	ErrNilCard           = errors.New("card cannot be nil")
	ErrInvalidDifficulty = errors.New("invalid difficulty")
	ErrUnknownStrategy   = errors.New("unknown scheduling strategy")
)

// Strategy names accepted by NewPolicy.
const (
	StrategyWaiting  = "waiting"
	StrategyInterval = "interval"
)

// Policy computes review schedules. The two observed scheduling flavors
// (direct next-review intervals vs. the waiting-period/overdue two-phase
// variant) are implementations of this single interface, selected once by
// configuration rather than duplicated across call sites.
type Policy interface {
	// ComputeNextReview returns the card's schedule after one review event.
	ComputeNextReview(card *domain.Card, review domain.Review, now time.Time) (*Schedule, error)

	// EvaluateMastery reports whether the card (with counters already
	// updated for the current review) has met the mastery criteria.
	EvaluateMastery(card *domain.Card) bool

	// Params exposes the policy's tuning parameters.
	Params() *Params
}

// NewPolicy selects a policy implementation by strategy name.
func NewPolicy(strategy string, params *Params) (Policy, error) {
	if params == nil {
		params = NewDefaultParams()
	}

	switch strategy {
	case StrategyWaiting, "":
		return NewWaitingPolicy(params), nil
	case StrategyInterval:
		return NewIntervalPolicy(params), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, strategy)
	}
}

// waitingPolicy is the stage-delay flavor: a correct answer starts a
// waiting period one day short of the full interval, and a wrong answer
// imposes a flat 24-hour cool-down and resets the stage to zero. This is
// the default strategy.
type waitingPolicy struct {
	params *Params
}

// NewWaitingPolicy creates the waiting-period policy.
func NewWaitingPolicy(params *Params) Policy {
	if params == nil {
		params = NewDefaultParams()
	}
	return &waitingPolicy{params: params}
}

func (p *waitingPolicy) ComputeNextReview(
	card *domain.Card,
	review domain.Review,
	now time.Time,
) (*Schedule, error) {
	if card == nil {
		return nil, ErrNilCard
	}
	if review.Difficulty != "" && !review.Difficulty.Valid() {
		return nil, ErrInvalidDifficulty
	}

	if !review.Correct {
		// Wrong answers always reset to stage 0 with a flat one-day
		// cool-down, regardless of the prior stage.
		waiting := now.Add(p.params.WrongAnswerCooldown)
		return &Schedule{
			NewStage:     0,
			WaitingUntil: &waiting,
		}, nil
	}

	newStage := advanceStage(card.Stage, review.Difficulty, p.params)
	intervalDays := p.params.IntervalTable[newStage]

	// The card waits (interval - 1) days before it may become overdue; the
	// full interval marks the nominal review date.
	waiting := now.Add(durationFromDays(float64(intervalDays - 1)))
	next := now.Add(durationFromDays(float64(intervalDays)))

	return &Schedule{
		NewStage:     newStage,
		NextReviewAt: &next,
		WaitingUntil: &waiting,
	}, nil
}

func (p *waitingPolicy) EvaluateMastery(card *domain.Card) bool {
	return evaluateMastery(card, p.params)
}

func (p *waitingPolicy) Params() *Params {
	return p.params
}

// intervalPolicy is the direct-interval flavor: every review schedules the
// full next interval immediately, scaled by perceived difficulty and by the
// overdue penalty when the review arrived late.
type intervalPolicy struct {
	params *Params
}

// NewIntervalPolicy creates the direct-interval policy.
func NewIntervalPolicy(params *Params) Policy {
	if params == nil {
		params = NewDefaultParams()
	}
	return &intervalPolicy{params: params}
}

func (p *intervalPolicy) ComputeNextReview(
	card *domain.Card,
	review domain.Review,
	now time.Time,
) (*Schedule, error) {
	if card == nil {
		return nil, ErrNilCard
	}
	if review.Difficulty != "" && !review.Difficulty.Valid() {
		return nil, ErrInvalidDifficulty
	}

	difficulty := review.Difficulty
	if difficulty == "" {
		difficulty = domain.DifficultyMedium
	}

	var newStage int
	if review.Correct {
		newStage = advanceStage(card.Stage, difficulty, p.params)
	} else {
		newStage = regressStage(card.Stage, card.WrongStreakCount, p.params)
	}

	days := scaledIntervalDays(newStage, difficulty, card.IsOverdue, p.params)
	next := now.Add(durationFromDays(days))

	return &Schedule{
		NewStage:     newStage,
		NextReviewAt: &next,
	}, nil
}

func (p *intervalPolicy) EvaluateMastery(card *domain.Card) bool {
	return evaluateMastery(card, p.params)
}

func (p *intervalPolicy) Params() *Params {
	return p.params
}
