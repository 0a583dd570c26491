// Package sweep implements the overdue sweeper: a periodic batch state
// machine that moves cards from expired waiting periods into the overdue
// state, hard-resets cards whose overdue deadline lapsed without a review,
// and refreshes the per-user overdue flags.
//
// The sweeper never schedules itself; an external scheduler (cmd/sweeper)
// drives Run. Runs are idempotent, so overlapping invocations are wasteful
// but not unsafe.
package sweep

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/wordloop/srs-api/internal/domain"
	"github.com/wordloop/srs-api/internal/domain/srs"
	"github.com/wordloop/srs-api/internal/platform/clock"
	"github.com/wordloop/srs-api/internal/platform/logger"
	"github.com/wordloop/srs-api/internal/store"
)

// DefaultBatchLimit bounds how many cards one sweep phase processes.
const DefaultBatchLimit = 1000

// Result summarizes one sweep run.
type Result struct {
	MarkedOverdue int
	HardReset     int
	UsersFlagged  int
}

// Sweeper runs the overdue state machine over the card population.
type Sweeper struct {
	db         *sql.DB
	cardStore  store.CardStore
	userStore  store.UserStore
	params     *srs.Params
	batchLimit int
	clock      clock.Clock
	logger     *slog.Logger
}

// NewSweeper creates a Sweeper. A batchLimit of zero or less falls back to
// DefaultBatchLimit.
func NewSweeper(
	db *sql.DB,
	cardStore store.CardStore,
	userStore store.UserStore,
	params *srs.Params,
	batchLimit int,
	clk clock.Clock,
	log *slog.Logger,
) *Sweeper {
	if db == nil {
		panic("db cannot be nil")
	}
	if cardStore == nil {
		panic("cardStore cannot be nil")
	}
	if userStore == nil {
		panic("userStore cannot be nil")
	}
	if params == nil {
		params = srs.NewDefaultParams()
	}
	if batchLimit <= 0 {
		batchLimit = DefaultBatchLimit
	}
	if clk == nil {
		clk = clock.SystemClock{}
	}
	if log == nil {
		log = slog.Default()
	}

	return &Sweeper{
		db:         db,
		cardStore:  cardStore,
		userStore:  userStore,
		params:     params,
		batchLimit: batchLimit,
		clock:      clk,
		logger:     log.With(slog.String("component", "overdue_sweeper")),
	}
}

// Run executes one sweep: expired waiting periods become overdue, lapsed
// overdue deadlines hard-reset, and the per-user overdue flags are
// recomputed. Per-card failures are logged and skipped so one bad row never
// stalls the batch.
func (s *Sweeper) Run(ctx context.Context) (*Result, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	now := s.clock.Now()
	result := &Result{}

	log.Debug("starting overdue sweep", slog.Time("now", now))

	marked, err := s.markOverdue(ctx, now, log)
	if err != nil {
		return result, fmt.Errorf("failed to mark overdue cards: %w", err)
	}
	result.MarkedOverdue = marked

	reset, err := s.hardResetExpired(ctx, now, log)
	if err != nil {
		return result, fmt.Errorf("failed to hard-reset expired cards: %w", err)
	}
	result.HardReset = reset

	flagged, err := s.refreshOverdueFlags(ctx, log)
	if err != nil {
		return result, fmt.Errorf("failed to refresh overdue flags: %w", err)
	}
	result.UsersFlagged = flagged

	log.Info("overdue sweep finished",
		slog.Int("marked_overdue", result.MarkedOverdue),
		slog.Int("hard_reset", result.HardReset),
		slog.Int("users_flagged", result.UsersFlagged))

	return result, nil
}

// markOverdue flips cards whose waiting period has elapsed into the
// overdue state and starts their grace deadline.
func (s *Sweeper) markOverdue(ctx context.Context, now time.Time, log *slog.Logger) (int, error) {
	cards, err := s.cardStore.ListWaitingExpired(ctx, now, s.batchLimit)
	if err != nil {
		return 0, err
	}

	marked := 0
	for _, card := range cards {
		err := s.mutateCard(ctx, card.ID, func(c *domain.Card) bool {
			// Re-check under lock; a concurrent review may have already
			// rescheduled the card.
			if c.IsOverdue || c.IsMastered || c.IsWaiting(now) || c.WaitingUntil == nil {
				return false
			}

			deadline := now.Add(s.params.OverdueWindow)
			c.IsOverdue = true
			c.OverdueDeadline = &deadline
			c.WaitingUntil = nil
			c.UpdatedAt = now
			return true
		})
		if err != nil {
			log.Error("failed to mark card overdue",
				slog.String("card_id", card.ID.String()),
				slog.String("error", err.Error()))
			continue
		}
		marked++
	}

	return marked, nil
}

// hardResetExpired resets cards whose overdue deadline passed without a
// review: back to stage 0, flagged as coming from a wrong answer, with the
// wrong streak extended.
func (s *Sweeper) hardResetExpired(ctx context.Context, now time.Time, log *slog.Logger) (int, error) {
	cards, err := s.cardStore.ListOverdueExpired(ctx, now, s.batchLimit)
	if err != nil {
		return 0, err
	}

	reset := 0
	for _, card := range cards {
		err := s.mutateCard(ctx, card.ID, func(c *domain.Card) bool {
			if !c.IsOverdue || c.OverdueDeadline == nil || c.OverdueDeadline.After(now) {
				return false
			}

			c.Stage = 0
			c.IsOverdue = false
			c.OverdueDeadline = nil
			c.WaitingUntil = nil
			c.NextReviewAt = nil
			c.IsFromWrongAnswer = true
			c.WrongStreakCount++
			c.UpdatedAt = now
			return true
		})
		if err != nil {
			log.Error("failed to hard-reset card",
				slog.String("card_id", card.ID.String()),
				slog.String("error", err.Error()))
			continue
		}
		reset++
	}

	return reset, nil
}

// mutateCard applies fn to a row-locked copy of the card and persists it
// when fn reports a change.
func (s *Sweeper) mutateCard(ctx context.Context, cardID uuid.UUID, fn func(*domain.Card) bool) error {
	return store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		cards := s.cardStore.WithTx(tx)

		card, err := cards.GetForUpdate(ctx, cardID)
		if err != nil {
			return err
		}

		if !fn(card) {
			return nil
		}

		return cards.Update(ctx, card)
	})
}

// refreshOverdueFlags recomputes the cached per-user overdue flag from the
// card population.
func (s *Sweeper) refreshOverdueFlags(ctx context.Context, log *slog.Logger) (int, error) {
	userIDs, err := s.cardStore.ListUsersWithOverdue(ctx)
	if err != nil {
		return 0, err
	}

	if err := s.userStore.SetOverdueFlags(ctx, userIDs); err != nil {
		return 0, err
	}

	log.Debug("overdue flags refreshed", slog.Int("user_count", len(userIDs)))
	return len(userIDs), nil
}
