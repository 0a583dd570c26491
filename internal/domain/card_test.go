package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCard(t *testing.T) {
	t.Parallel()
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	userID := uuid.New()

	card, err := NewCard(userID, ItemTypeVocab, 42, now)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, card.ID)
	assert.Equal(t, userID, card.UserID)
	assert.Equal(t, ItemTypeVocab, card.ItemType)
	assert.Equal(t, int64(42), card.ItemID)
	assert.Equal(t, 0, card.Stage)
	assert.Nil(t, card.NextReviewAt)
	assert.Nil(t, card.WaitingUntil)
	assert.Equal(t, now, card.CreatedAt)

	// A fresh card is immediately reviewable.
	assert.Equal(t, CardStateReady, card.State(now))
	assert.Nil(t, card.DueAt())
}

func TestNewCardValidation(t *testing.T) {
	t.Parallel()
	now := time.Now().UTC()
	userID := uuid.New()

	testCases := []struct {
		name     string
		userID   uuid.UUID
		itemType string
		itemID   int64
		wantErr  error
	}{
		{"nil user", uuid.Nil, ItemTypeVocab, 1, ErrCardUserIDEmpty},
		{"unknown item type", userID, "grammar", 1, ErrCardItemTypeInvalid},
		{"zero item ID", userID, ItemTypeIdiom, 0, ErrCardItemIDInvalid},
		{"negative item ID", userID, ItemTypePhrase, -3, ErrCardItemIDInvalid},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewCard(tc.userID, tc.itemType, tc.itemID, now)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestCardState(t *testing.T) {
	t.Parallel()
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	future := now.Add(time.Hour)
	past := now.Add(-time.Hour)

	testCases := []struct {
		name string
		card Card
		want CardState
	}{
		{"fresh card", Card{}, CardStateReady},
		{"waiting", Card{WaitingUntil: &future}, CardStateWaiting},
		{"waiting elapsed", Card{WaitingUntil: &past}, CardStateReady},
		{"overdue", Card{IsOverdue: true}, CardStateOverdue},
		// Overdue takes precedence over an unexpired waiting deadline and
		// mastered over everything.
		{"overdue wins over waiting", Card{IsOverdue: true, WaitingUntil: &future}, CardStateOverdue},
		{"mastered wins", Card{IsMastered: true, IsOverdue: true, WaitingUntil: &future}, CardStateMastered},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.card.State(now))
		})
	}
}

func TestCardIsWaiting(t *testing.T) {
	t.Parallel()
	now := time.Now().UTC()
	future := now.Add(time.Minute)

	card := Card{}
	assert.False(t, card.IsWaiting(now))

	card.WaitingUntil = &future
	assert.True(t, card.IsWaiting(now))
	assert.False(t, card.IsWaiting(future), "deadline instant itself is not waiting")
}

func TestCardSuccessRate(t *testing.T) {
	t.Parallel()

	card := Card{}
	assert.Zero(t, card.SuccessRate())

	card.CorrectTotal = 3
	card.WrongTotal = 1
	assert.InDelta(t, 0.75, card.SuccessRate(), 1e-9)
	assert.Equal(t, 4, card.TotalReviews())
}

func TestCardDueAt(t *testing.T) {
	t.Parallel()
	waiting := time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC)
	next := time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC)

	card := Card{NextReviewAt: &next}
	require.NotNil(t, card.DueAt())
	assert.Equal(t, next, *card.DueAt())

	// The waiting deadline is authoritative when both are set.
	card.WaitingUntil = &waiting
	assert.Equal(t, waiting, *card.DueAt())
}

func TestCardClone(t *testing.T) {
	t.Parallel()
	now := time.Now().UTC()
	card, err := NewCard(uuid.New(), ItemTypeVocab, 7, now)
	require.NoError(t, err)
	waiting := now.Add(48 * time.Hour)
	card.WaitingUntil = &waiting

	clone := card.Clone()
	require.Equal(t, card, clone)

	// Mutating the clone's pointers must not touch the original.
	*clone.WaitingUntil = now
	assert.Equal(t, waiting, *card.WaitingUntil)
}
