package mocks

import (
	"context"
	"database/sql"
	"sync"

	"github.com/google/uuid"
	"github.com/wordloop/srs-api/internal/domain"
	"github.com/wordloop/srs-api/internal/store"
)

// MockUserStore implements store.UserStore for testing
type MockUserStore struct {
	// Function fields for customizable behavior
	CreateFn          func(ctx context.Context, user *domain.User) error
	GetFn             func(ctx context.Context, id uuid.UUID) (*domain.User, error)
	UpdateFn          func(ctx context.Context, user *domain.User) error
	SetOverdueFlagsFn func(ctx context.Context, userIDs []uuid.UUID) error
	HasOverdueFn      func(ctx context.Context, id uuid.UUID) (bool, error)
	ListIDsFn         func(ctx context.Context) ([]uuid.UUID, error)

	// Data for default implementation
	mu    sync.Mutex
	Users map[uuid.UUID]*domain.User

	// LastOverdueFlags records the argument of the most recent
	// SetOverdueFlags call.
	LastOverdueFlags []uuid.UUID
}

var _ store.UserStore = (*MockUserStore)(nil)

// NewMockUserStore creates a new mock store with initialized defaults
func NewMockUserStore() *MockUserStore {
	return &MockUserStore{
		Users: make(map[uuid.UUID]*domain.User),
	}
}

// AddUser seeds the mock with a user, keyed by ID.
func (m *MockUserStore) AddUser(user *domain.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Users[user.ID] = user
}

// Create implements the UserStore interface
func (m *MockUserStore) Create(ctx context.Context, user *domain.User) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, user)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.Users[user.ID]; exists {
		return store.ErrDuplicate
	}
	m.Users[user.ID] = user
	return nil
}

// Get implements the UserStore interface
func (m *MockUserStore) Get(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if m.GetFn != nil {
		return m.GetFn(ctx, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.Users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	return user, nil
}

// Update implements the UserStore interface
func (m *MockUserStore) Update(ctx context.Context, user *domain.User) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, user)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.Users[user.ID]; !ok {
		return store.ErrUserNotFound
	}
	m.Users[user.ID] = user
	return nil
}

// SetOverdueFlags implements the UserStore interface
func (m *MockUserStore) SetOverdueFlags(ctx context.Context, userIDs []uuid.UUID) error {
	if m.SetOverdueFlagsFn != nil {
		return m.SetOverdueFlagsFn(ctx, userIDs)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.LastOverdueFlags = userIDs
	flagged := make(map[uuid.UUID]bool, len(userIDs))
	for _, id := range userIDs {
		flagged[id] = true
	}
	for id, user := range m.Users {
		user.HasOverdueCards = flagged[id]
	}
	return nil
}

// HasOverdueCards implements the UserStore interface
func (m *MockUserStore) HasOverdueCards(ctx context.Context, id uuid.UUID) (bool, error) {
	if m.HasOverdueFn != nil {
		return m.HasOverdueFn(ctx, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.Users[id]
	if !ok {
		return false, store.ErrUserNotFound
	}
	return user.HasOverdueCards, nil
}

// ListIDs implements the UserStore interface
func (m *MockUserStore) ListIDs(ctx context.Context) ([]uuid.UUID, error) {
	if m.ListIDsFn != nil {
		return m.ListIDsFn(ctx)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make([]uuid.UUID, 0, len(m.Users))
	for id := range m.Users {
		ids = append(ids, id)
	}
	return ids, nil
}

// WithTx implements the UserStore interface by returning the same mock.
func (m *MockUserStore) WithTx(tx *sql.Tx) store.UserStore {
	return m
}
