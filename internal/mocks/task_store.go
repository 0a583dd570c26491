package mocks

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wordloop/srs-api/internal/task"
)

// MockTaskStore implements task.TaskStore for testing
type MockTaskStore struct {
	// Function fields for customizable behavior
	SaveTaskFn           func(ctx context.Context, t task.Task) error
	UpdateTaskStatusFn   func(ctx context.Context, taskID uuid.UUID, status task.TaskStatus, errorMsg string) error
	GetPendingTasksFn    func(ctx context.Context) ([]task.Task, error)
	GetProcessingTasksFn func(ctx context.Context, olderThan time.Duration) ([]task.Task, error)

	// Data for default implementation
	mu       sync.Mutex
	Tasks    map[uuid.UUID]task.Task
	Statuses map[uuid.UUID]task.TaskStatus
	Errors   map[uuid.UUID]string
}

var _ task.TaskStore = (*MockTaskStore)(nil)

// NewMockTaskStore creates a new mock store with initialized defaults
func NewMockTaskStore() *MockTaskStore {
	return &MockTaskStore{
		Tasks:    make(map[uuid.UUID]task.Task),
		Statuses: make(map[uuid.UUID]task.TaskStatus),
		Errors:   make(map[uuid.UUID]string),
	}
}

// Status returns the recorded status for a task ID.
func (m *MockTaskStore) Status(id uuid.UUID) task.TaskStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Statuses[id]
}

// SaveTask implements the TaskStore interface
func (m *MockTaskStore) SaveTask(ctx context.Context, t task.Task) error {
	if m.SaveTaskFn != nil {
		return m.SaveTaskFn(ctx, t)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.Tasks[t.ID()] = t
	m.Statuses[t.ID()] = t.Status()
	return nil
}

// UpdateTaskStatus implements the TaskStore interface
func (m *MockTaskStore) UpdateTaskStatus(
	ctx context.Context,
	taskID uuid.UUID,
	status task.TaskStatus,
	errorMsg string,
) error {
	if m.UpdateTaskStatusFn != nil {
		return m.UpdateTaskStatusFn(ctx, taskID, status, errorMsg)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.Statuses[taskID] = status
	m.Errors[taskID] = errorMsg
	return nil
}

// GetPendingTasks implements the TaskStore interface
func (m *MockTaskStore) GetPendingTasks(ctx context.Context) ([]task.Task, error) {
	if m.GetPendingTasksFn != nil {
		return m.GetPendingTasksFn(ctx)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var pending []task.Task
	for id, t := range m.Tasks {
		if m.Statuses[id] == task.TaskStatusPending {
			pending = append(pending, t)
		}
	}
	return pending, nil
}

// GetProcessingTasks implements the TaskStore interface
func (m *MockTaskStore) GetProcessingTasks(ctx context.Context, olderThan time.Duration) ([]task.Task, error) {
	if m.GetProcessingTasksFn != nil {
		return m.GetProcessingTasksFn(ctx, olderThan)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var processing []task.Task
	for id, t := range m.Tasks {
		if m.Statuses[id] == task.TaskStatusProcessing {
			processing = append(processing, t)
		}
	}
	return processing, nil
}

// WithTx implements the TaskStore interface by returning the same mock.
func (m *MockTaskStore) WithTx(tx *sql.Tx) task.TaskStore {
	return m
}
