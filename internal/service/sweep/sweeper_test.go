package sweep_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wordloop/srs-api/internal/domain"
	"github.com/wordloop/srs-api/internal/mocks"
	"github.com/wordloop/srs-api/internal/service/sweep"
)

type sweepFixture struct {
	sweeper *sweep.Sweeper
	cards   *mocks.MockCardStore
	users   *mocks.MockUserStore
	now     time.Time
}

func newSweepFixture(t *testing.T) *sweepFixture {
	t.Helper()

	now := time.Date(2025, 3, 10, 3, 0, 0, 0, time.UTC)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	f := &sweepFixture{
		cards: mocks.NewMockCardStore(),
		users: mocks.NewMockUserStore(),
		now:   now,
	}
	f.sweeper = sweep.NewSweeper(
		mocks.NewTxDB(), f.cards, f.users, nil, 0, mocks.NewMockClock(now), log)
	return f
}

func (f *sweepFixture) addCard(t *testing.T, userID uuid.UUID, mutate func(*domain.Card)) *domain.Card {
	t.Helper()
	card, err := domain.NewCard(userID, domain.ItemTypeVocab, 1, f.now.Add(-72*time.Hour))
	require.NoError(t, err)
	if mutate != nil {
		mutate(card)
	}
	f.cards.AddCard(card)
	return card
}

func TestSweeperMarksExpiredWaitingOverdue(t *testing.T) {
	t.Parallel()
	f := newSweepFixture(t)
	userID := uuid.New()

	expired := f.now.Add(-time.Hour)
	stillWaiting := f.now.Add(time.Hour)

	done := f.addCard(t, userID, func(c *domain.Card) {
		c.WaitingUntil = &expired
	})
	waiting := f.addCard(t, userID, func(c *domain.Card) {
		c.WaitingUntil = &stillWaiting
	})

	result, err := f.sweeper.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.MarkedOverdue)

	got, err := f.cards.GetByID(context.Background(), done.ID)
	require.NoError(t, err)
	assert.True(t, got.IsOverdue)
	assert.Nil(t, got.WaitingUntil)
	require.NotNil(t, got.OverdueDeadline)
	assert.Equal(t, f.now.Add(24*time.Hour), *got.OverdueDeadline)

	untouched, err := f.cards.GetByID(context.Background(), waiting.ID)
	require.NoError(t, err)
	assert.False(t, untouched.IsOverdue)
	require.NotNil(t, untouched.WaitingUntil)
}

func TestSweeperSkipsMasteredCards(t *testing.T) {
	t.Parallel()
	f := newSweepFixture(t)
	userID := uuid.New()

	expired := f.now.Add(-time.Hour)
	mastered := f.addCard(t, userID, func(c *domain.Card) {
		c.IsMastered = true
		c.WaitingUntil = &expired
	})

	result, err := f.sweeper.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, result.MarkedOverdue)

	got, err := f.cards.GetByID(context.Background(), mastered.ID)
	require.NoError(t, err)
	assert.False(t, got.IsOverdue)
}

func TestSweeperHardResetsLapsedDeadlines(t *testing.T) {
	t.Parallel()
	f := newSweepFixture(t)
	userID := uuid.New()

	lapsed := f.now.Add(-time.Hour)
	pending := f.now.Add(time.Hour)

	doomed := f.addCard(t, userID, func(c *domain.Card) {
		c.Stage = 4
		c.IsOverdue = true
		c.OverdueDeadline = &lapsed
		c.WrongStreakCount = 1
	})
	graced := f.addCard(t, userID, func(c *domain.Card) {
		c.Stage = 3
		c.IsOverdue = true
		c.OverdueDeadline = &pending
	})

	result, err := f.sweeper.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.HardReset)

	got, err := f.cards.GetByID(context.Background(), doomed.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Stage)
	assert.False(t, got.IsOverdue)
	assert.Nil(t, got.OverdueDeadline)
	assert.Nil(t, got.NextReviewAt)
	assert.True(t, got.IsFromWrongAnswer)
	assert.Equal(t, 2, got.WrongStreakCount)

	kept, err := f.cards.GetByID(context.Background(), graced.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, kept.Stage)
	assert.True(t, kept.IsOverdue)
}

func TestSweeperRefreshesOverdueFlags(t *testing.T) {
	t.Parallel()
	f := newSweepFixture(t)

	flagged := uuid.New()
	clear := uuid.New()

	f.users.AddUser(&domain.User{ID: flagged, NotificationTime: "09:00"})
	f.users.AddUser(&domain.User{ID: clear, NotificationTime: "09:00", HasOverdueCards: true})

	deadline := f.now.Add(6 * time.Hour)
	f.addCard(t, flagged, func(c *domain.Card) {
		c.IsOverdue = true
		c.OverdueDeadline = &deadline
	})
	f.addCard(t, clear, nil)

	result, err := f.sweeper.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.UsersFlagged)
	assert.Equal(t, []uuid.UUID{flagged}, f.users.LastOverdueFlags)

	flaggedUser, err := f.users.Get(context.Background(), flagged)
	require.NoError(t, err)
	assert.True(t, flaggedUser.HasOverdueCards)

	clearUser, err := f.users.Get(context.Background(), clear)
	require.NoError(t, err)
	assert.False(t, clearUser.HasOverdueCards, "stale flag is cleared")
}

func TestSweeperRunIsIdempotent(t *testing.T) {
	t.Parallel()
	f := newSweepFixture(t)
	userID := uuid.New()

	expired := f.now.Add(-time.Hour)
	f.addCard(t, userID, func(c *domain.Card) {
		c.WaitingUntil = &expired
	})

	first, err := f.sweeper.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, first.MarkedOverdue)

	// The card is now overdue with a future deadline; a second run within
	// the grace window changes nothing.
	second, err := f.sweeper.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, second.MarkedOverdue)
	assert.Equal(t, 0, second.HardReset)
}
