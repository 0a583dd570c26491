// Package reminder plans and dispatches review notifications. The planner
// decides what each user should be told and when, the quiet-hours policy
// decides whether a message may go out, and a narrow Notifier interface
// performs the actual delivery.
package reminder

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// Notification kinds produced by the planner.
const (
	// KindDueCard reminds about a single card that came due.
	KindDueCard = "due_card"

	// KindDueSummary batches several simultaneously due cards into one
	// message.
	KindDueSummary = "due_summary"

	// KindLookAhead previews tomorrow's review load, sent an hour before
	// the user's preferred time.
	KindLookAhead = "look_ahead"

	// KindOverdueAlert warns about cards in the overdue grace window.
	KindOverdueAlert = "overdue_alert"
)

// Notification categories checked against quiet-hours schedules.
const (
	// CategoryReminder is the default category for routine reminders.
	CategoryReminder = "reminder"
)

// Notifier delivers a message to a user over some channel.
// Implementations live under internal/platform.
type Notifier interface {
	// Send delivers the message. Failure means the message did not reach
	// the user; the caller decides whether to retry.
	Send(ctx context.Context, userID uuid.UUID, message string) error
}

// LogNotifier writes notifications to the log instead of delivering them.
// It is the fallback channel when no delivery transport is configured.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a LogNotifier.
func NewLogNotifier(log *slog.Logger) *LogNotifier {
	if log == nil {
		log = slog.Default()
	}
	return &LogNotifier{logger: log.With(slog.String("component", "log_notifier"))}
}

var _ Notifier = (*LogNotifier)(nil)

// Send implements Notifier.Send by logging the message.
func (n *LogNotifier) Send(ctx context.Context, userID uuid.UUID, message string) error {
	n.logger.Info("notification",
		"user_id", userID,
		"message", message)
	return nil
}
