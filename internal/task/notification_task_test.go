package task_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wordloop/srs-api/internal/events"
	"github.com/wordloop/srs-api/internal/mocks"
	"github.com/wordloop/srs-api/internal/task"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type recordingDeliverer struct {
	delivered []task.NotificationPayload
	err       error
}

func (d *recordingDeliverer) Deliver(_ context.Context, payload task.NotificationPayload) error {
	if d.err != nil {
		return d.err
	}
	d.delivered = append(d.delivered, payload)
	return nil
}

func testPayload() task.NotificationPayload {
	return task.NotificationPayload{
		UserID:   uuid.New(),
		Kind:     "due_summary",
		Category: "reminder",
		Message:  "You have 2 cards ready for review.",
	}
}

func TestNotificationDispatchTaskExecute(t *testing.T) {
	t.Parallel()

	deliverer := &recordingDeliverer{}
	payload := testPayload()

	nt, err := task.NewNotificationDispatchTask(payload, deliverer, discardLogger())
	require.NoError(t, err)
	assert.Equal(t, task.TaskTypeNotificationDispatch, nt.Type())
	assert.Equal(t, task.TaskStatusPending, nt.Status())

	require.NoError(t, nt.Execute(context.Background()))
	assert.Equal(t, task.TaskStatusCompleted, nt.Status())
	require.Len(t, deliverer.delivered, 1)
	assert.Equal(t, payload, deliverer.delivered[0])
}

func TestNotificationDispatchTaskExecuteFailure(t *testing.T) {
	t.Parallel()

	failure := errors.New("chat unreachable")
	nt, err := task.NewNotificationDispatchTask(testPayload(), &recordingDeliverer{err: failure}, discardLogger())
	require.NoError(t, err)

	err = nt.Execute(context.Background())
	assert.ErrorIs(t, err, failure)
	assert.Equal(t, task.TaskStatusFailed, nt.Status())
}

func TestNewNotificationDispatchTaskValidation(t *testing.T) {
	t.Parallel()

	deliverer := &recordingDeliverer{}

	_, err := task.NewNotificationDispatchTask(testPayload(), nil, discardLogger())
	assert.ErrorIs(t, err, task.ErrNilDeliverer)

	payload := testPayload()
	payload.UserID = uuid.Nil
	_, err = task.NewNotificationDispatchTask(payload, deliverer, discardLogger())
	assert.ErrorIs(t, err, task.ErrEmptyUserID)

	payload = testPayload()
	payload.Message = ""
	_, err = task.NewNotificationDispatchTask(payload, deliverer, discardLogger())
	assert.ErrorIs(t, err, task.ErrEmptyMessage)
}

func TestNotificationTaskPayloadRoundTrip(t *testing.T) {
	t.Parallel()

	payload := testPayload()
	nt, err := task.NewNotificationDispatchTask(payload, &recordingDeliverer{}, discardLogger())
	require.NoError(t, err)

	var got task.NotificationPayload
	require.NoError(t, json.Unmarshal(nt.Payload(), &got))
	assert.Equal(t, payload, got)
}

func TestExecuteFuncRehydratesStoredPayload(t *testing.T) {
	t.Parallel()

	deliverer := &recordingDeliverer{}
	factory := task.NewNotificationTaskFactory(deliverer, discardLogger())

	payload := testPayload()
	data, err := json.Marshal(payload)
	require.NoError(t, err)

	fn, err := factory.ExecuteFunc(data)
	require.NoError(t, err)
	require.NoError(t, fn(context.Background()))
	require.Len(t, deliverer.delivered, 1)
	assert.Equal(t, payload, deliverer.delivered[0])

	_, err = factory.ExecuteFunc([]byte("not json"))
	assert.Error(t, err)
}

func TestNotificationEventHandler(t *testing.T) {
	t.Parallel()

	deliverer := &recordingDeliverer{}
	factory := task.NewNotificationTaskFactory(deliverer, discardLogger())
	store := mocks.NewMockTaskStore()
	runner := newTestRunner(store)
	handler := task.NewNotificationEventHandler(factory, runner, discardLogger())

	// Events of other types pass through without side effects.
	other, err := events.NewEvent(events.EventTypeReviewCompleted, nil)
	require.NoError(t, err)
	require.NoError(t, handler.HandleEvent(context.Background(), other))
	assert.Empty(t, store.Tasks)

	payload := testPayload()
	event, err := events.NewEvent(events.EventTypeNotificationDispatch, payload)
	require.NoError(t, err)
	require.NoError(t, handler.HandleEvent(context.Background(), event))

	// The task was persisted before queueing.
	assert.Len(t, store.Tasks, 1)
}
