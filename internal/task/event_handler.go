package task

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/wordloop/srs-api/internal/events"
)

// NotificationEventHandler implements the events.EventHandler interface,
// turning notification dispatch events into background tasks. The reminder
// planner emits events instead of submitting tasks directly, so it never
// depends on this package.
type NotificationEventHandler struct {
	factory *NotificationTaskFactory
	runner  *TaskRunner
	logger  *slog.Logger
}

// NewNotificationEventHandler creates a handler that builds tasks with the
// given factory and submits them to the given runner.
func NewNotificationEventHandler(
	factory *NotificationTaskFactory,
	runner *TaskRunner,
	logger *slog.Logger,
) *NotificationEventHandler {
	return &NotificationEventHandler{
		factory: factory,
		runner:  runner,
		logger:  logger.With("component", "notification_event_handler"),
	}
}

// HandleEvent processes notification dispatch events by creating and
// submitting delivery tasks. Events of other types are ignored.
func (h *NotificationEventHandler) HandleEvent(ctx context.Context, event *events.Event) error {
	if event.Type != events.EventTypeNotificationDispatch {
		h.logger.Debug("ignoring event with unsupported type",
			"event_type", event.Type,
			"event_id", event.ID)
		return nil
	}

	var payload NotificationPayload
	if err := event.UnmarshalPayload(&payload); err != nil {
		h.logger.Error("failed to unmarshal payload",
			"error", err,
			"event_id", event.ID)
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	t, err := h.factory.CreateTask(payload)
	if err != nil {
		h.logger.Error("failed to create notification task",
			"error", err,
			"user_id", payload.UserID,
			"event_id", event.ID)
		return fmt.Errorf("failed to create notification task: %w", err)
	}

	if err := h.runner.Submit(ctx, t); err != nil {
		h.logger.Error("failed to submit notification task",
			"error", err,
			"task_id", t.ID(),
			"event_id", event.ID)
		return fmt.Errorf("failed to submit notification task: %w", err)
	}

	h.logger.Debug("notification task submitted",
		"task_id", t.ID(),
		"user_id", payload.UserID,
		"kind", payload.Kind,
		"event_id", event.ID)

	return nil
}

// Ensure NotificationEventHandler implements events.EventHandler
var _ events.EventHandler = (*NotificationEventHandler)(nil)
