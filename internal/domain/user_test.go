package domain

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserValidate(t *testing.T) {
	t.Parallel()

	user := User{ID: uuid.New(), NotificationTime: "09:00"}
	assert.NoError(t, user.Validate())

	user.NotificationTime = ""
	assert.NoError(t, user.Validate(), "empty notification time falls back to the default")

	user.NotificationTime = "25:00"
	assert.ErrorIs(t, user.Validate(), ErrUserNotificationTimeFormat)

	user = User{}
	assert.ErrorIs(t, user.Validate(), ErrUserIDEmpty)
}

func TestBumpStreak(t *testing.T) {
	t.Parallel()
	day1 := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	user := User{ID: uuid.New()}

	// First ever study day starts the streak.
	assert.True(t, user.BumpStreak(day1))
	assert.Equal(t, 1, user.StreakDays)

	// Second review the same day is a no-op.
	assert.False(t, user.BumpStreak(day1.Add(5*time.Hour)))
	assert.Equal(t, 1, user.StreakDays)

	// The next day extends the streak.
	assert.True(t, user.BumpStreak(day1.Add(24*time.Hour)))
	assert.Equal(t, 2, user.StreakDays)

	// A multi-day gap restarts it.
	assert.True(t, user.BumpStreak(day1.Add(5*24*time.Hour)))
	assert.Equal(t, 1, user.StreakDays)
}

func TestBumpStreakAcrossDSTTransitions(t *testing.T) {
	t.Parallel()
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// Clocks spring forward on 2025-03-09, so the midnight-to-midnight gap
	// into 2025-03-10 is only 23 hours.
	user := User{ID: uuid.New()}
	assert.True(t, user.BumpStreak(time.Date(2025, 3, 9, 9, 0, 0, 0, loc)))
	assert.True(t, user.BumpStreak(time.Date(2025, 3, 10, 9, 0, 0, 0, loc)))
	assert.Equal(t, 2, user.StreakDays, "shorter DST day still counts as the next day")

	// Clocks fall back on 2025-11-02, making the gap into 2025-11-03 a
	// 25-hour one.
	user = User{ID: uuid.New()}
	assert.True(t, user.BumpStreak(time.Date(2025, 11, 2, 9, 0, 0, 0, loc)))
	assert.True(t, user.BumpStreak(time.Date(2025, 11, 3, 9, 0, 0, 0, loc)))
	assert.Equal(t, 2, user.StreakDays, "longer DST day still counts as the next day")
}
