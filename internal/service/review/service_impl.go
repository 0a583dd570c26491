package review

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/wordloop/srs-api/internal/domain"
	"github.com/wordloop/srs-api/internal/domain/srs"
	"github.com/wordloop/srs-api/internal/events"
	"github.com/wordloop/srs-api/internal/platform/clock"
	"github.com/wordloop/srs-api/internal/platform/logger"
	"github.com/wordloop/srs-api/internal/store"
)

// Verify interface compliance at compile time
var _ Service = (*reviewServiceImpl)(nil)

// ReviewCompletedPayload is the payload of review-completed events.
type ReviewCompletedPayload struct {
	UserID   uuid.UUID `json:"user_id"`
	CardID   uuid.UUID `json:"card_id"`
	Correct  bool      `json:"correct"`
	NewStage int       `json:"new_stage"`
	Mastered bool      `json:"mastered"`
}

// reviewServiceImpl implements the Service interface.
type reviewServiceImpl struct {
	db               *sql.DB
	cardStore        store.CardStore
	userStore        store.UserStore
	wrongAnswerStore store.WrongAnswerStore
	policy           srs.Policy
	emitter          events.EventEmitter
	clock            clock.Clock
	logger           *slog.Logger
}

// NewService creates a new review Service implementation.
// The emitter may be nil; events are then skipped.
func NewService(
	db *sql.DB,
	cardStore store.CardStore,
	userStore store.UserStore,
	wrongAnswerStore store.WrongAnswerStore,
	policy srs.Policy,
	emitter events.EventEmitter,
	clk clock.Clock,
	log *slog.Logger,
) Service {
	if db == nil {
		panic("db cannot be nil")
	}
	if cardStore == nil {
		panic("cardStore cannot be nil")
	}
	if userStore == nil {
		panic("userStore cannot be nil")
	}
	if wrongAnswerStore == nil {
		panic("wrongAnswerStore cannot be nil")
	}
	if policy == nil {
		panic("policy cannot be nil")
	}
	if clk == nil {
		clk = clock.SystemClock{}
	}
	if log == nil {
		log = slog.Default()
	}

	return &reviewServiceImpl{
		db:               db,
		cardStore:        cardStore,
		userStore:        userStore,
		wrongAnswerStore: wrongAnswerStore,
		policy:           policy,
		emitter:          emitter,
		clock:            clk,
		logger:           log.With(slog.String("component", "review_service")),
	}
}

// SubmitReview implements Service.SubmitReview.
func (s *reviewServiceImpl) SubmitReview(
	ctx context.Context,
	userID uuid.UUID,
	cardID uuid.UUID,
	request ReviewRequest,
) (*ReviewResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	log.Debug("processing review",
		slog.String("user_id", userID.String()),
		slog.String("card_id", cardID.String()),
		slog.Bool("correct", request.Correct))

	if request.Difficulty != "" && !request.Difficulty.Valid() {
		log.Warn("invalid review difficulty",
			slog.String("card_id", cardID.String()),
			slog.String("difficulty", string(request.Difficulty)))
		return nil, ErrInvalidDifficulty
	}

	if request.ResponseTimeSec < 0 || request.ResponseTimeSec > domain.MaxResponseTimeSec {
		log.Warn("invalid response time",
			slog.String("card_id", cardID.String()),
			slog.Float64("response_time_sec", request.ResponseTimeSec))
		return nil, ErrInvalidResponseTime
	}

	now := s.clock.Now()
	result := &ReviewResult{Status: StatusApplied}

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		cards := s.cardStore.WithTx(tx)

		card, err := cards.GetForUpdate(ctx, cardID)
		if err != nil {
			if store.IsNotFoundError(err) {
				return ErrCardNotFound
			}
			return fmt.Errorf("failed to get card: %w", err)
		}

		if card.UserID != userID {
			log.Warn("user does not own card",
				slog.String("user_id", userID.String()),
				slog.String("card_id", cardID.String()),
				slog.String("owner_id", card.UserID.String()))
			return ErrCardNotOwned
		}

		if card.LastReviewedAt != nil &&
			now.Sub(*card.LastReviewedAt) < s.policy.Params().ReviewCooldown {
			return ErrDuplicateReview
		}

		// A card still inside its waiting period is acknowledged without
		// any mutation.
		if card.IsWaiting(now) {
			result.Status = StatusWaiting
			result.Card = card
			return nil
		}

		updated, newlyMastered, err := s.applyReview(card, request, now)
		if err != nil {
			return fmt.Errorf("failed to apply review: %w", err)
		}

		if err := cards.Update(ctx, updated); err != nil {
			return fmt.Errorf("failed to persist card: %w", err)
		}

		result.Card = updated
		result.NewlyMastered = newlyMastered
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrCardNotFound) ||
			errors.Is(err, ErrCardNotOwned) ||
			errors.Is(err, ErrDuplicateReview) {
			return nil, err
		}

		log.Error("failed to submit review",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("card_id", cardID.String()))
		return nil, NewSubmitReviewError("failed to process review", err)
	}

	if result.Status == StatusWaiting {
		log.Debug("card still waiting, review acknowledged without change",
			slog.String("card_id", cardID.String()))
		return result, nil
	}

	// Side effects run after the commit. They are best-effort: a failure
	// here is logged and never undoes the card mutation.
	s.recordWrongAnswer(ctx, result.Card, request, now, log)
	s.bumpStreak(ctx, userID, now, log)
	s.emitReviewCompleted(ctx, result, request, log)

	log.Debug("review processed",
		slog.String("card_id", cardID.String()),
		slog.Int("new_stage", result.Card.Stage),
		slog.Bool("newly_mastered", result.NewlyMastered))

	return result, nil
}

// applyReview computes the card's next state on a copy. The schedule is
// derived from the pre-review state; counters and mastery reflect the
// current answer.
func (s *reviewServiceImpl) applyReview(
	card *domain.Card,
	request ReviewRequest,
	now time.Time,
) (*domain.Card, bool, error) {
	reviewEvent := domain.Review{
		Correct:         request.Correct,
		Difficulty:      request.Difficulty,
		ResponseTimeSec: request.ResponseTimeSec,
	}

	schedule, err := s.policy.ComputeNextReview(card, reviewEvent, now)
	if err != nil {
		return nil, false, err
	}

	updated := card.Clone()

	if request.Correct {
		updated.CorrectTotal++
		updated.WrongStreakCount = 0
		updated.IsFromWrongAnswer = false
	} else {
		updated.WrongTotal++
		updated.WrongStreakCount++
		updated.IsFromWrongAnswer = true
	}

	updated.Stage = schedule.NewStage
	updated.NextReviewAt = schedule.NextReviewAt
	updated.WaitingUntil = schedule.WaitingUntil
	updated.IsOverdue = false
	updated.OverdueDeadline = nil
	updated.LastReviewedAt = &now
	updated.UpdatedAt = now

	newlyMastered := false
	if request.Correct && !updated.IsMastered && s.policy.EvaluateMastery(updated) {
		updated.IsMastered = true
		updated.MasteredAt = &now
		updated.MasterCycles++
		// Mastered cards leave the review rotation until demoted.
		updated.NextReviewAt = nil
		updated.WaitingUntil = nil
		newlyMastered = true
	}

	return updated, newlyMastered, nil
}

// recordWrongAnswer appends a wrong-answer record with a 24-hour review
// window. Attempts are numbered per card.
func (s *reviewServiceImpl) recordWrongAnswer(
	ctx context.Context,
	card *domain.Card,
	request ReviewRequest,
	now time.Time,
	log *slog.Logger,
) {
	if request.Correct {
		return
	}

	count, err := s.wrongAnswerStore.CountForCard(ctx, card.UserID, card.ID)
	if err != nil {
		log.Error("failed to count wrong answers",
			slog.String("card_id", card.ID.String()),
			slog.String("error", err.Error()))
		return
	}

	wa, err := domain.NewWrongAnswer(card, count+1, now)
	if err != nil {
		log.Error("failed to build wrong answer record",
			slog.String("card_id", card.ID.String()),
			slog.String("error", err.Error()))
		return
	}

	if err := s.wrongAnswerStore.Create(ctx, wa); err != nil {
		log.Error("failed to save wrong answer record",
			slog.String("card_id", card.ID.String()),
			slog.String("error", err.Error()))
	}
}

// bumpStreak advances the user's day-based study streak.
func (s *reviewServiceImpl) bumpStreak(
	ctx context.Context,
	userID uuid.UUID,
	now time.Time,
	log *slog.Logger,
) {
	user, err := s.userStore.Get(ctx, userID)
	if err != nil {
		log.Error("failed to load user for streak bump",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()))
		return
	}

	if !user.BumpStreak(now) {
		return
	}

	user.UpdatedAt = now
	if err := s.userStore.Update(ctx, user); err != nil {
		log.Error("failed to save streak bump",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()))
	}
}

// emitReviewCompleted publishes a review-completed event for downstream
// consumers like the reminder planner.
func (s *reviewServiceImpl) emitReviewCompleted(
	ctx context.Context,
	result *ReviewResult,
	request ReviewRequest,
	log *slog.Logger,
) {
	if s.emitter == nil {
		return
	}

	event, err := events.NewEvent(events.EventTypeReviewCompleted, ReviewCompletedPayload{
		UserID:   result.Card.UserID,
		CardID:   result.Card.ID,
		Correct:  request.Correct,
		NewStage: result.Card.Stage,
		Mastered: result.Card.IsMastered,
	})
	if err != nil {
		log.Error("failed to build review-completed event",
			slog.String("error", err.Error()))
		return
	}

	if err := s.emitter.EmitEvent(ctx, event); err != nil {
		log.Error("failed to emit review-completed event",
			slog.String("event_id", event.ID.String()),
			slog.String("error", err.Error()))
	}
}
