package mocks

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wordloop/srs-api/internal/domain"
	"github.com/wordloop/srs-api/internal/store"
)

// MockWrongAnswerStore implements store.WrongAnswerStore for testing
type MockWrongAnswerStore struct {
	// Function fields for customizable behavior
	CreateFn       func(ctx context.Context, wa *domain.WrongAnswer) error
	CountForCardFn func(ctx context.Context, userID, cardID uuid.UUID) (int, error)
	ListActiveFn   func(ctx context.Context, userID uuid.UUID, now time.Time) ([]*domain.WrongAnswer, error)

	// Data for default implementation
	mu      sync.Mutex
	Records []*domain.WrongAnswer
}

var _ store.WrongAnswerStore = (*MockWrongAnswerStore)(nil)

// NewMockWrongAnswerStore creates a new mock store with initialized defaults
func NewMockWrongAnswerStore() *MockWrongAnswerStore {
	return &MockWrongAnswerStore{}
}

// Create implements the WrongAnswerStore interface
func (m *MockWrongAnswerStore) Create(ctx context.Context, wa *domain.WrongAnswer) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, wa)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.Records = append(m.Records, wa)
	return nil
}

// CountForCard implements the WrongAnswerStore interface
func (m *MockWrongAnswerStore) CountForCard(ctx context.Context, userID, cardID uuid.UUID) (int, error) {
	if m.CountForCardFn != nil {
		return m.CountForCardFn(ctx, userID, cardID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	count := 0
	for _, record := range m.Records {
		if record.UserID == userID && record.CardID == cardID {
			count++
		}
	}
	return count, nil
}

// ListActive implements the WrongAnswerStore interface
func (m *MockWrongAnswerStore) ListActive(
	ctx context.Context,
	userID uuid.UUID,
	now time.Time,
) ([]*domain.WrongAnswer, error) {
	if m.ListActiveFn != nil {
		return m.ListActiveFn(ctx, userID, now)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var active []*domain.WrongAnswer
	for _, record := range m.Records {
		if record.UserID == userID && record.WindowActive(now) {
			active = append(active, record)
		}
	}
	return active, nil
}

// WithTx implements the WrongAnswerStore interface by returning the same
// mock.
func (m *MockWrongAnswerStore) WithTx(tx *sql.Tx) store.WrongAnswerStore {
	return m
}
