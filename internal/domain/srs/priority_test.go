package srs

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wordloop/srs-api/internal/domain"
)

func priorityCard(t *testing.T, mutate func(*domain.Card)) *domain.Card {
	t.Helper()
	card, err := domain.NewCard(uuid.New(), domain.ItemTypeVocab, 1, time.Now().UTC())
	require.NoError(t, err)
	if mutate != nil {
		mutate(card)
	}
	return card
}

func TestSortDueCardsOrdering(t *testing.T) {
	t.Parallel()
	base := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	early := base.Add(-2 * time.Hour)
	late := base.Add(-1 * time.Hour)

	overdue := priorityCard(t, func(c *domain.Card) {
		c.IsOverdue = true
		c.NextReviewAt = &late
	})
	streaky := priorityCard(t, func(c *domain.Card) {
		c.WrongStreakCount = 2
		c.NextReviewAt = &late
	})
	earlier := priorityCard(t, func(c *domain.Card) {
		c.NextReviewAt = &early
		c.Stage = 4
	})
	lowStage := priorityCard(t, func(c *domain.Card) {
		c.NextReviewAt = &late
		c.Stage = 1
	})
	struggling := priorityCard(t, func(c *domain.Card) {
		c.NextReviewAt = &late
		c.Stage = 2
		c.CorrectTotal = 1
		c.WrongTotal = 3
	})
	steady := priorityCard(t, func(c *domain.Card) {
		c.NextReviewAt = &late
		c.Stage = 2
		c.CorrectTotal = 4
		c.WrongTotal = 0
	})

	cards := []*domain.Card{steady, struggling, lowStage, earlier, streaky, overdue}
	SortDueCards(cards)

	want := []*domain.Card{overdue, streaky, earlier, lowStage, struggling, steady}
	require.Len(t, cards, len(want))
	for i := range want {
		assert.Same(t, want[i], cards[i], "position %d", i)
	}
}

func TestSortDueCardsNilDueSortsFirst(t *testing.T) {
	t.Parallel()
	due := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	scheduled := priorityCard(t, func(c *domain.Card) {
		c.NextReviewAt = &due
	})
	immediate := priorityCard(t, nil)

	cards := []*domain.Card{scheduled, immediate}
	SortDueCards(cards)

	assert.Same(t, immediate, cards[0])
	assert.Same(t, scheduled, cards[1])
}

func TestSortDueCardsIDTiebreak(t *testing.T) {
	t.Parallel()

	a := priorityCard(t, nil)
	b := priorityCard(t, nil)

	cards := []*domain.Card{a, b}
	SortDueCards(cards)
	assert.True(t, cards[0].ID.String() < cards[1].ID.String())
}

func TestBatchSize(t *testing.T) {
	t.Parallel()
	params := NewDefaultParams()

	testCases := []struct {
		name string
		req  BatchRequest
		want int
	}{
		{
			name: "goal bounds a large queue",
			req:  BatchRequest{DailyGoal: 20, DueCount: 100},
			want: 20,
		},
		{
			name: "queue smaller than goal",
			req:  BatchRequest{DailyGoal: 20, DueCount: 7},
			want: 7,
		},
		{
			name: "time budget cuts below goal",
			req:  BatchRequest{DailyGoal: 20, DueCount: 100, MinutesAvailable: 10, MinutesPerCard: 2},
			// time allows 5 but the minimum share of the goal holds 10
			want: 10,
		},
		{
			name: "overdue floor raises a time-limited session",
			req:  BatchRequest{DailyGoal: 20, DueCount: 100, OverdueCount: 12, MinutesAvailable: 4, MinutesPerCard: 2},
			want: 12,
		},
		{
			name: "overdue floor capped at share of goal",
			req:  BatchRequest{DailyGoal: 20, DueCount: 100, OverdueCount: 50, MinutesAvailable: 4, MinutesPerCard: 2},
			// cap = 20 * 0.7
			want: 14,
		},
		{
			name: "floor never exceeds due count",
			req:  BatchRequest{DailyGoal: 20, DueCount: 3, OverdueCount: 12, MinutesAvailable: 2, MinutesPerCard: 2},
			want: 3,
		},
		{
			name: "no due cards",
			req:  BatchRequest{DailyGoal: 20, DueCount: 0},
			want: 0,
		},
		{
			name: "no goal",
			req:  BatchRequest{DailyGoal: 0, DueCount: 10},
			want: 0,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, BatchSize(tc.req, params))
		})
	}
}
