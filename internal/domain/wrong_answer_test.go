package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWrongAnswer(t *testing.T) {
	t.Parallel()
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	card, err := NewCard(uuid.New(), ItemTypeIdiom, 9, now)
	require.NoError(t, err)

	wa, err := NewWrongAnswer(card, 2, now)
	require.NoError(t, err)

	assert.Equal(t, card.UserID, wa.UserID)
	assert.Equal(t, card.ID, wa.CardID)
	assert.Equal(t, card.ItemType, wa.ItemType)
	assert.Equal(t, card.ItemID, wa.ItemID)
	assert.Equal(t, 2, wa.Attempt)
	assert.Equal(t, now, wa.ReviewWindowStart)
	assert.Equal(t, now.Add(24*time.Hour), wa.ReviewWindowEnd)
}

func TestWrongAnswerWindowActive(t *testing.T) {
	t.Parallel()
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	card, err := NewCard(uuid.New(), ItemTypeVocab, 1, now)
	require.NoError(t, err)
	wa, err := NewWrongAnswer(card, 1, now)
	require.NoError(t, err)

	assert.True(t, wa.WindowActive(now), "window opens immediately")
	assert.True(t, wa.WindowActive(now.Add(23*time.Hour)))
	assert.False(t, wa.WindowActive(now.Add(24*time.Hour)), "window end is exclusive")
	assert.False(t, wa.WindowActive(now.Add(-time.Minute)))
}

func TestWrongAnswerValidate(t *testing.T) {
	t.Parallel()
	now := time.Now().UTC()

	wa := WrongAnswer{
		ID:                uuid.New(),
		UserID:            uuid.New(),
		CardID:            uuid.New(),
		ReviewWindowStart: now,
		ReviewWindowEnd:   now,
	}
	assert.ErrorIs(t, wa.Validate(), ErrWrongAnswerBadWindow)
}
