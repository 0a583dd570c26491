package task_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wordloop/srs-api/internal/mocks"
	"github.com/wordloop/srs-api/internal/task"
)

type stubTask struct {
	id       uuid.UUID
	attempts atomic.Int32
	execute  func(attempt int32) error
}

func newStubTask(execute func(attempt int32) error) *stubTask {
	return &stubTask{id: uuid.New(), execute: execute}
}

func (t *stubTask) ID() uuid.UUID           { return t.id }
func (t *stubTask) Type() string            { return "stub" }
func (t *stubTask) Payload() []byte         { return nil }
func (t *stubTask) Status() task.TaskStatus { return task.TaskStatusPending }

func (t *stubTask) Execute(ctx context.Context) error {
	return t.execute(t.attempts.Add(1))
}

func newTestRunner(store task.TaskStore) *task.TaskRunner {
	return task.NewTaskRunner(store, task.TaskRunnerConfig{
		WorkerCount: 1,
		QueueSize:   10,
		MaxAttempts: 3,
		RetryDelay:  10 * time.Millisecond,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestTaskRunnerCompletesTask(t *testing.T) {
	t.Parallel()
	store := mocks.NewMockTaskStore()
	runner := newTestRunner(store)

	stub := newStubTask(func(int32) error { return nil })

	require.NoError(t, runner.Start())
	defer runner.Stop()

	require.NoError(t, runner.Submit(context.Background(), stub))

	assert.Eventually(t, func() bool {
		return store.Status(stub.ID()) == task.TaskStatusCompleted
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, int32(1), stub.attempts.Load())
}

func TestTaskRunnerRetriesThenSucceeds(t *testing.T) {
	t.Parallel()
	store := mocks.NewMockTaskStore()
	runner := newTestRunner(store)

	stub := newStubTask(func(attempt int32) error {
		if attempt < 2 {
			return errors.New("transient failure")
		}
		return nil
	})

	require.NoError(t, runner.Start())
	defer runner.Stop()

	require.NoError(t, runner.Submit(context.Background(), stub))

	assert.Eventually(t, func() bool {
		return store.Status(stub.ID()) == task.TaskStatusCompleted
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, int32(2), stub.attempts.Load())
}

func TestTaskRunnerExhaustsAttempts(t *testing.T) {
	t.Parallel()
	store := mocks.NewMockTaskStore()
	runner := newTestRunner(store)

	var handled atomic.Bool
	runner.SetErrorHandler(func(task.Task, error) {
		handled.Store(true)
	})

	stub := newStubTask(func(int32) error {
		return errors.New("permanent failure")
	})

	require.NoError(t, runner.Start())
	defer runner.Stop()

	require.NoError(t, runner.Submit(context.Background(), stub))

	assert.Eventually(t, func() bool {
		return store.Status(stub.ID()) == task.TaskStatusFailed
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, int32(3), stub.attempts.Load())
	assert.True(t, handled.Load(), "error handler fires after the last attempt")
}

func TestTaskRunnerStartDeliversRecoveredTaskOnce(t *testing.T) {
	t.Parallel()
	store := mocks.NewMockTaskStore()

	recovered := newStubTask(func(int32) error { return nil })
	store.Tasks[recovered.ID()] = recovered
	store.Statuses[recovered.ID()] = task.TaskStatusPending

	runner := newTestRunner(store)
	require.NoError(t, runner.Start())
	defer runner.Stop()

	assert.Eventually(t, func() bool {
		return store.Status(recovered.ID()) == task.TaskStatusCompleted
	}, 2*time.Second, 10*time.Millisecond)

	// A task surviving a restart must run exactly once, not once per
	// recovery pass.
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(1), recovered.attempts.Load())
}

func TestTaskRunnerSubmitReportsFullQueue(t *testing.T) {
	t.Parallel()
	store := mocks.NewMockTaskStore()
	runner := task.NewTaskRunner(store, task.TaskRunnerConfig{
		WorkerCount: 1,
		QueueSize:   1,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	// The runner is never started, so nothing drains the queue.
	require.NoError(t, runner.Submit(context.Background(), newStubTask(func(int32) error { return nil })))

	err := runner.Submit(context.Background(), newStubTask(func(int32) error { return nil }))
	require.Error(t, err)
	assert.ErrorIs(t, err, task.ErrQueueFull)
}

func TestTaskRunnerSubmitAfterStop(t *testing.T) {
	t.Parallel()
	store := mocks.NewMockTaskStore()
	runner := newTestRunner(store)

	require.NoError(t, runner.Start())
	runner.Stop()

	err := runner.Submit(context.Background(), newStubTask(func(int32) error { return nil }))
	require.Error(t, err)
	assert.ErrorIs(t, err, task.ErrQueueClosed)
}

func TestTaskRunnerRecoversUnfinishedTasks(t *testing.T) {
	t.Parallel()
	store := mocks.NewMockTaskStore()

	pending := newStubTask(func(int32) error { return nil })
	interrupted := newStubTask(func(int32) error { return nil })
	store.Tasks[pending.ID()] = pending
	store.Statuses[pending.ID()] = task.TaskStatusPending
	store.Tasks[interrupted.ID()] = interrupted
	store.Statuses[interrupted.ID()] = task.TaskStatusProcessing

	runner := newTestRunner(store)
	require.NoError(t, runner.Start())
	defer runner.Stop()

	assert.Eventually(t, func() bool {
		return store.Status(pending.ID()) == task.TaskStatusCompleted &&
			store.Status(interrupted.ID()) == task.TaskStatusCompleted
	}, 2*time.Second, 10*time.Millisecond)
}
