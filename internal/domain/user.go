package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// User validation errors
var (
	ErrUserIDEmpty                = errors.New("user ID cannot be empty")
	ErrUserNotificationTimeFormat = errors.New("user notification time must be HH:MM")
)

// User carries the slice of user state the scheduling engine needs:
// notification preferences, the quiet-hours policy, the study streak, and
// the cached overdue flag maintained by the sweeper. Account identity and
// credentials live elsewhere.
type User struct {
	ID uuid.UUID `json:"id"`

	// TelegramChatID is the delivery target for reminder notifications.
	// Zero means the user has no notification channel configured.
	TelegramChatID int64 `json:"telegram_chat_id,omitempty"`

	// NotificationTime is the preferred local delivery time for review
	// reminders, in HH:MM form.
	NotificationTime string `json:"notification_time"`

	QuietHours QuietHoursSettings `json:"quiet_hours"`

	// StreakDays counts consecutive study days; LastStudyDate anchors the
	// day-based comparison.
	StreakDays    int        `json:"streak_days"`
	LastStudyDate *time.Time `json:"last_study_date,omitempty"`

	// HasOverdueCards is a cached flag recomputed by the overdue sweeper so
	// notification decisions avoid a full card scan.
	HasOverdueCards bool `json:"has_overdue_cards"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate checks if the User has valid data.
func (u *User) Validate() error {
	if u.ID == uuid.Nil {
		return ErrUserIDEmpty
	}

	if u.NotificationTime != "" {
		if _, err := ParseClockTime(u.NotificationTime); err != nil {
			return ErrUserNotificationTimeFormat
		}
	}

	return nil
}

// BumpStreak advances the day-based study streak for a review happening at
// now. Same-day reviews leave the streak untouched; a review on the day
// after the last study day extends it; any longer gap restarts it at 1.
// Returns true when the stored streak state changed.
func (u *User) BumpStreak(now time.Time) bool {
	today := startOfDay(now)

	if u.LastStudyDate != nil {
		last := startOfDay(*u.LastStudyDate)
		if last.Equal(today) {
			return false
		}
		// Compare calendar days, not a fixed duration, so DST transitions
		// (23h or 25h days) do not break a valid streak.
		if last.AddDate(0, 0, 1).Equal(today) {
			u.StreakDays++
		} else {
			u.StreakDays = 1
		}
	} else {
		u.StreakDays = 1
	}

	u.LastStudyDate = &today
	return true
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
