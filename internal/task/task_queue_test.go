package task

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type queueTask struct {
	id uuid.UUID
}

func (t *queueTask) ID() uuid.UUID      { return t.id }
func (t *queueTask) Type() string       { return "queue_test" }
func (t *queueTask) Payload() []byte    { return nil }
func (t *queueTask) Status() TaskStatus { return TaskStatusPending }
func (t *queueTask) Execute(ctx context.Context) error {
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestTaskQueueEnqueue(t *testing.T) {
	t.Parallel()
	q := NewTaskQueue(2, discardLogger())

	require.NoError(t, q.Enqueue(&queueTask{id: uuid.New()}))
	require.NoError(t, q.Enqueue(&queueTask{id: uuid.New()}))
	assert.Len(t, q.GetChannel(), 2)
}

func TestTaskQueueFull(t *testing.T) {
	t.Parallel()
	q := NewTaskQueue(1, discardLogger())

	require.NoError(t, q.Enqueue(&queueTask{id: uuid.New()}))
	err := q.Enqueue(&queueTask{id: uuid.New()})
	assert.ErrorIs(t, err, ErrQueueFull)
}

func TestTaskQueueClosed(t *testing.T) {
	t.Parallel()
	q := NewTaskQueue(1, discardLogger())
	q.Close()

	err := q.Enqueue(&queueTask{id: uuid.New()})
	assert.ErrorIs(t, err, ErrQueueClosed)
}

func TestTaskQueueCloseIsIdempotent(t *testing.T) {
	t.Parallel()
	q := NewTaskQueue(1, discardLogger())
	q.Close()
	q.Close()

	_, ok := <-q.GetChannel()
	assert.False(t, ok, "channel is closed")
}
