package reminder

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/wordloop/srs-api/internal/platform/clock"
	"github.com/wordloop/srs-api/internal/platform/logger"
	"github.com/wordloop/srs-api/internal/store"
	"github.com/wordloop/srs-api/internal/task"
)

// Dispatcher performs notification deliveries for the task layer. It
// re-checks the quiet-hours policy at send time, since a queued task may
// execute after the user's quiet window opened.
type Dispatcher struct {
	userStore store.UserStore
	notifier  Notifier
	clock     clock.Clock
	logger    *slog.Logger
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(
	userStore store.UserStore,
	notifier Notifier,
	clk clock.Clock,
	log *slog.Logger,
) *Dispatcher {
	if userStore == nil {
		panic("userStore cannot be nil")
	}
	if notifier == nil {
		panic("notifier cannot be nil")
	}
	if clk == nil {
		clk = clock.SystemClock{}
	}
	if log == nil {
		log = slog.Default()
	}

	return &Dispatcher{
		userStore: userStore,
		notifier:  notifier,
		clock:     clk,
		logger:    log.With(slog.String("component", "reminder_dispatcher")),
	}
}

// Deliver implements task.NotificationDeliverer. A quiet-hours suppression
// at send time is not an error; the message is simply dropped.
func (d *Dispatcher) Deliver(ctx context.Context, payload task.NotificationPayload) error {
	log := logger.FromContextOrDefault(ctx, d.logger)

	user, err := d.userStore.Get(ctx, payload.UserID)
	if err != nil {
		return fmt.Errorf("failed to load user for delivery: %w", err)
	}

	now := d.clock.Now()
	if !user.QuietHours.AllowsNotification(payload.Category, now) {
		log.Info("notification suppressed at delivery time",
			slog.String("user_id", payload.UserID.String()),
			slog.String("kind", payload.Kind),
			slog.String("category", payload.Category))
		return nil
	}

	if err := d.notifier.Send(ctx, payload.UserID, payload.Message); err != nil {
		return fmt.Errorf("failed to send notification: %w", err)
	}

	log.Debug("notification delivered",
		slog.String("user_id", payload.UserID.String()),
		slog.String("kind", payload.Kind))

	return nil
}

// Ensure Dispatcher implements task.NotificationDeliverer
var _ task.NotificationDeliverer = (*Dispatcher)(nil)
