package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// Common errors
var (
	ErrNilDeliverer = errors.New("deliverer cannot be nil")
	ErrNilLogger    = errors.New("logger cannot be nil")
	ErrEmptyUserID  = errors.New("user ID cannot be empty")
	ErrEmptyMessage = errors.New("message cannot be empty")
)

// NotificationPayload is the serialized data stored in a notification
// dispatch task. Category feeds the quiet-hours check at delivery time;
// Kind names the reminder flavor for logging and formatting.
type NotificationPayload struct {
	UserID   uuid.UUID `json:"user_id"`
	Kind     string    `json:"kind"`
	Category string    `json:"category"`
	Message  string    `json:"message"`
}

// NotificationDeliverer performs the actual delivery of a reminder.
// Implementations re-check quiet hours at send time, since a task may sit
// in the queue long enough for the user's quiet window to open.
type NotificationDeliverer interface {
	Deliver(ctx context.Context, payload NotificationPayload) error
}

// NotificationDispatchTask implements the Task interface for delivering a
// single reminder notification.
type NotificationDispatchTask struct {
	id        uuid.UUID
	payload   NotificationPayload
	deliverer NotificationDeliverer
	logger    *slog.Logger
	status    TaskStatus
}

// NewNotificationDispatchTask creates a new notification dispatch task
func NewNotificationDispatchTask(
	payload NotificationPayload,
	deliverer NotificationDeliverer,
	logger *slog.Logger,
) (*NotificationDispatchTask, error) {
	if deliverer == nil {
		return nil, ErrNilDeliverer
	}
	if logger == nil {
		return nil, ErrNilLogger
	}
	if payload.UserID == uuid.Nil {
		return nil, ErrEmptyUserID
	}
	if payload.Message == "" {
		return nil, ErrEmptyMessage
	}

	return &NotificationDispatchTask{
		id:        uuid.New(),
		payload:   payload,
		deliverer: deliverer,
		logger: logger.With(
			"task_type", TaskTypeNotificationDispatch,
			"user_id", payload.UserID,
			"kind", payload.Kind,
		),
		status: TaskStatusPending,
	}, nil
}

// ID returns the task's unique identifier
func (t *NotificationDispatchTask) ID() uuid.UUID {
	return t.id
}

// Type returns the task type identifier
func (t *NotificationDispatchTask) Type() string {
	return TaskTypeNotificationDispatch
}

// Payload returns the task data as a byte slice
func (t *NotificationDispatchTask) Payload() []byte {
	data, err := json.Marshal(t.payload)
	if err != nil {
		t.logger.Error("failed to marshal notification payload", "error", err)
		return nil
	}
	return data
}

// Status returns the current task status
func (t *NotificationDispatchTask) Status() TaskStatus {
	return t.status
}

// Execute delivers the notification
func (t *NotificationDispatchTask) Execute(ctx context.Context) error {
	t.status = TaskStatusProcessing

	if err := t.deliverer.Deliver(ctx, t.payload); err != nil {
		t.status = TaskStatusFailed
		return fmt.Errorf("failed to deliver notification: %w", err)
	}

	t.status = TaskStatusCompleted
	return nil
}

// Ensure NotificationDispatchTask implements Task
var _ Task = (*NotificationDispatchTask)(nil)

// NotificationTaskFactory creates NotificationDispatchTask instances
type NotificationTaskFactory struct {
	deliverer NotificationDeliverer
	logger    *slog.Logger
}

// NewNotificationTaskFactory creates a new factory for notification
// dispatch tasks
func NewNotificationTaskFactory(
	deliverer NotificationDeliverer,
	logger *slog.Logger,
) *NotificationTaskFactory {
	return &NotificationTaskFactory{
		deliverer: deliverer,
		logger:    logger.With("component", "notification_task_factory"),
	}
}

// CreateTask creates a new NotificationDispatchTask for the given payload
func (f *NotificationTaskFactory) CreateTask(payload NotificationPayload) (Task, error) {
	return NewNotificationDispatchTask(payload, f.deliverer, f.logger)
}

// ExecuteFunc builds an execution function from a serialized payload.
// The task store uses it to rehydrate tasks recovered from the database
// after a restart, preserving their stored IDs.
func (f *NotificationTaskFactory) ExecuteFunc(data []byte) (func(ctx context.Context) error, error) {
	var payload NotificationPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal notification payload: %w", err)
	}

	return func(ctx context.Context) error {
		if err := f.deliverer.Deliver(ctx, payload); err != nil {
			return fmt.Errorf("failed to deliver notification: %w", err)
		}
		return nil
	}, nil
}
