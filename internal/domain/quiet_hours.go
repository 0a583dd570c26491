package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// CategoryEmergency bypasses every quiet-hours schedule when the user has
// enabled the emergency override.
const CategoryEmergency = "emergency"

// ErrClockTimeFormat is returned when a clock time is not valid HH:MM.
var ErrClockTimeFormat = errors.New("clock time must be HH:MM")

// ClockTime is a time of day expressed as minutes since midnight. Window
// membership for overnight spans is evaluated with modular comparison, so
// a 22:00-07:00 window correctly wraps across midnight.
type ClockTime int

// ParseClockTime parses "HH:MM" into a ClockTime.
func ParseClockTime(s string) (ClockTime, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, ErrClockTimeFormat
	}

	hours, err := strconv.Atoi(parts[0])
	if err != nil || hours < 0 || hours > 23 {
		return 0, ErrClockTimeFormat
	}

	minutes, err := strconv.Atoi(parts[1])
	if err != nil || minutes < 0 || minutes > 59 {
		return 0, ErrClockTimeFormat
	}

	return ClockTime(hours*60 + minutes), nil
}

// ClockTimeOf extracts the time-of-day component of t.
func ClockTimeOf(t time.Time) ClockTime {
	return ClockTime(t.Hour()*60 + t.Minute())
}

// String renders the clock time back to HH:MM.
func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

// QuietHoursSchedule is one named recurring window during which only the
// allow-listed notification categories may be delivered.
type QuietHoursSchedule struct {
	Name      string `json:"name"`
	StartTime string `json:"start_time"` // HH:MM
	EndTime   string `json:"end_time"`   // HH:MM
	// DaysOfWeek uses time.Weekday numbering, Sunday = 0.
	DaysOfWeek        []time.Weekday `json:"days_of_week"`
	Enabled           bool           `json:"enabled"`
	AllowedCategories []string       `json:"allowed_categories"`
}

// ActiveAt reports whether the schedule's window covers the given instant.
// Overnight windows (start > end) are active from start through midnight
// and again from midnight through end; the day-of-week check applies to
// the day the window started on for the pre-midnight half and the current
// day otherwise.
func (s *QuietHoursSchedule) ActiveAt(at time.Time) bool {
	if !s.Enabled {
		return false
	}

	start, err := ParseClockTime(s.StartTime)
	if err != nil {
		return false
	}
	end, err := ParseClockTime(s.EndTime)
	if err != nil {
		return false
	}

	now := ClockTimeOf(at)

	if start > end {
		// Overnight wrap: 22:00-07:00 covers [22:00, 24:00) on the start
		// day and [00:00, 07:00] on the following day.
		if now >= start {
			return s.coversDay(at.Weekday())
		}
		if now <= end {
			return s.coversDay(at.AddDate(0, 0, -1).Weekday())
		}
		return false
	}

	return now >= start && now <= end && s.coversDay(at.Weekday())
}

// Allows reports whether the category is on the schedule's allow-list.
func (s *QuietHoursSchedule) Allows(category string) bool {
	for _, allowed := range s.AllowedCategories {
		if allowed == category {
			return true
		}
	}
	return false
}

func (s *QuietHoursSchedule) coversDay(day time.Weekday) bool {
	for _, d := range s.DaysOfWeek {
		if d == day {
			return true
		}
	}
	return false
}

// QuietHoursSettings is a user's full quiet-hours policy: a set of named
// schedules plus the global emergency override.
type QuietHoursSettings struct {
	Enabled         bool                 `json:"enabled"`
	Schedules       []QuietHoursSchedule `json:"schedules"`
	EmergencyBypass bool                 `json:"emergency_bypass"`
}

// IsQuietTime reports whether any schedule's window covers the instant.
func (q *QuietHoursSettings) IsQuietTime(at time.Time) bool {
	if !q.Enabled {
		return false
	}
	for i := range q.Schedules {
		if q.Schedules[i].ActiveAt(at) {
			return true
		}
	}
	return false
}

// AllowsNotification decides whether a notification in the given category
// may be delivered at the given instant. Every active schedule must
// explicitly allow the category; the emergency category bypasses all
// schedules when the override is enabled.
func (q *QuietHoursSettings) AllowsNotification(category string, at time.Time) bool {
	if !q.Enabled {
		return true
	}

	if category == CategoryEmergency && q.EmergencyBypass {
		return true
	}

	for i := range q.Schedules {
		if q.Schedules[i].ActiveAt(at) && !q.Schedules[i].Allows(category) {
			return false
		}
	}

	return true
}
