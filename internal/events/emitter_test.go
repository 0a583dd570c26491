package events

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingHandler struct {
	seen []*Event
	err  error
}

func (h *recordingHandler) HandleEvent(_ context.Context, event *Event) error {
	h.seen = append(h.seen, event)
	return h.err
}

func testEmitter() *InMemoryEventEmitter {
	return NewInMemoryEventEmitter(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestEmitEventNoHandlers(t *testing.T) {
	t.Parallel()
	emitter := testEmitter()

	event, err := NewEvent(EventTypeReviewCompleted, map[string]string{"user_id": "u1"})
	require.NoError(t, err)

	assert.NoError(t, emitter.EmitEvent(context.Background(), event))
}

func TestEmitEventReachesAllHandlers(t *testing.T) {
	t.Parallel()
	emitter := testEmitter()

	first := &recordingHandler{}
	second := &recordingHandler{}
	emitter.RegisterHandler(first)
	emitter.RegisterHandler(second)

	event, err := NewEvent(EventTypeNotificationDispatch, map[string]int{"count": 3})
	require.NoError(t, err)

	require.NoError(t, emitter.EmitEvent(context.Background(), event))
	require.Len(t, first.seen, 1)
	require.Len(t, second.seen, 1)
	assert.Same(t, event, first.seen[0])
}

func TestEmitEventFailingHandlerDoesNotStopDelivery(t *testing.T) {
	t.Parallel()
	emitter := testEmitter()

	failure := errors.New("handler blew up")
	failing := &recordingHandler{err: failure}
	healthy := &recordingHandler{}
	emitter.RegisterHandler(failing)
	emitter.RegisterHandler(healthy)

	event, err := NewEvent(EventTypeReviewCompleted, nil)
	require.NoError(t, err)

	err = emitter.EmitEvent(context.Background(), event)
	assert.ErrorIs(t, err, failure)
	assert.Len(t, healthy.seen, 1, "remaining handlers still run")
}

func TestEventUnmarshalPayload(t *testing.T) {
	t.Parallel()

	type payload struct {
		UserID string `json:"user_id"`
		Count  int    `json:"count"`
	}

	event, err := NewEvent(EventTypeReviewCompleted, payload{UserID: "u1", Count: 2})
	require.NoError(t, err)

	var got payload
	require.NoError(t, event.UnmarshalPayload(&got))
	assert.Equal(t, payload{UserID: "u1", Count: 2}, got)
}
