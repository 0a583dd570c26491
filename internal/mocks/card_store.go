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

// MockCardStore implements store.CardStore for testing
type MockCardStore struct {
	// Function fields for customizable behavior
	CreateFn               func(ctx context.Context, card *domain.Card) error
	GetByIDFn              func(ctx context.Context, id uuid.UUID) (*domain.Card, error)
	GetForUpdateFn         func(ctx context.Context, id uuid.UUID) (*domain.Card, error)
	UpdateFn               func(ctx context.Context, card *domain.Card) error
	ListDueFn              func(ctx context.Context, userID uuid.UUID, now time.Time, limit int) ([]*domain.Card, error)
	ListWaitingExpiredFn   func(ctx context.Context, now time.Time, limit int) ([]*domain.Card, error)
	ListOverdueExpiredFn   func(ctx context.Context, now time.Time, limit int) ([]*domain.Card, error)
	ListUsersWithOverdueFn func(ctx context.Context) ([]uuid.UUID, error)
	GetStatsFn             func(ctx context.Context, userID uuid.UUID) (*domain.CardStats, error)
	CountDueOnFn           func(ctx context.Context, userID uuid.UUID, dayStart, dayEnd time.Time) (int, error)

	// Data for default implementation
	mu    sync.Mutex
	Cards map[uuid.UUID]*domain.Card
}

var _ store.CardStore = (*MockCardStore)(nil)

// NewMockCardStore creates a new mock store with initialized defaults
func NewMockCardStore() *MockCardStore {
	return &MockCardStore{
		Cards: make(map[uuid.UUID]*domain.Card),
	}
}

// AddCard seeds the mock with a card, keyed by its ID.
func (m *MockCardStore) AddCard(card *domain.Card) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Cards[card.ID] = card.Clone()
}

// Create implements the CardStore interface
func (m *MockCardStore) Create(ctx context.Context, card *domain.Card) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, card)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.Cards {
		if existing.UserID == card.UserID &&
			existing.ItemType == card.ItemType &&
			existing.ItemID == card.ItemID {
			return store.ErrCardExists
		}
	}
	m.Cards[card.ID] = card.Clone()
	return nil
}

// GetByID implements the CardStore interface
func (m *MockCardStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Card, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	card, ok := m.Cards[id]
	if !ok {
		return nil, store.ErrCardNotFound
	}
	return card.Clone(), nil
}

// GetForUpdate implements the CardStore interface. The default
// implementation behaves like GetByID; row locking is not simulated.
func (m *MockCardStore) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Card, error) {
	if m.GetForUpdateFn != nil {
		return m.GetForUpdateFn(ctx, id)
	}
	return m.GetByID(ctx, id)
}

// Update implements the CardStore interface
func (m *MockCardStore) Update(ctx context.Context, card *domain.Card) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, card)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.Cards[card.ID]; !ok {
		return store.ErrCardNotFound
	}
	m.Cards[card.ID] = card.Clone()
	return nil
}

// ListDue implements the CardStore interface
func (m *MockCardStore) ListDue(
	ctx context.Context,
	userID uuid.UUID,
	now time.Time,
	limit int,
) ([]*domain.Card, error) {
	if m.ListDueFn != nil {
		return m.ListDueFn(ctx, userID, now, limit)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var due []*domain.Card
	for _, card := range m.Cards {
		if card.UserID != userID || card.IsMastered {
			continue
		}
		eligible := card.IsOverdue ||
			(card.WaitingUntil != nil && !card.WaitingUntil.After(now)) ||
			(card.WaitingUntil == nil && (card.NextReviewAt == nil || !card.NextReviewAt.After(now)))
		if !eligible {
			continue
		}
		due = append(due, card.Clone())
		if limit > 0 && len(due) >= limit {
			break
		}
	}
	return due, nil
}

// ListWaitingExpired implements the CardStore interface
func (m *MockCardStore) ListWaitingExpired(
	ctx context.Context,
	now time.Time,
	limit int,
) ([]*domain.Card, error) {
	if m.ListWaitingExpiredFn != nil {
		return m.ListWaitingExpiredFn(ctx, now, limit)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var expired []*domain.Card
	for _, card := range m.Cards {
		if card.IsMastered || card.IsOverdue || card.WaitingUntil == nil {
			continue
		}
		if card.WaitingUntil.After(now) {
			continue
		}
		expired = append(expired, card.Clone())
		if limit > 0 && len(expired) >= limit {
			break
		}
	}
	return expired, nil
}

// ListOverdueExpired implements the CardStore interface
func (m *MockCardStore) ListOverdueExpired(
	ctx context.Context,
	now time.Time,
	limit int,
) ([]*domain.Card, error) {
	if m.ListOverdueExpiredFn != nil {
		return m.ListOverdueExpiredFn(ctx, now, limit)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var expired []*domain.Card
	for _, card := range m.Cards {
		if !card.IsOverdue || card.OverdueDeadline == nil {
			continue
		}
		if card.OverdueDeadline.After(now) {
			continue
		}
		expired = append(expired, card.Clone())
		if limit > 0 && len(expired) >= limit {
			break
		}
	}
	return expired, nil
}

// ListUsersWithOverdue implements the CardStore interface
func (m *MockCardStore) ListUsersWithOverdue(ctx context.Context) ([]uuid.UUID, error) {
	if m.ListUsersWithOverdueFn != nil {
		return m.ListUsersWithOverdueFn(ctx)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	seen := make(map[uuid.UUID]bool)
	var users []uuid.UUID
	for _, card := range m.Cards {
		if card.IsOverdue && !seen[card.UserID] {
			seen[card.UserID] = true
			users = append(users, card.UserID)
		}
	}
	return users, nil
}

// GetStats implements the CardStore interface
func (m *MockCardStore) GetStats(ctx context.Context, userID uuid.UUID) (*domain.CardStats, error) {
	if m.GetStatsFn != nil {
		return m.GetStatsFn(ctx, userID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	stats := &domain.CardStats{}
	for _, card := range m.Cards {
		if card.UserID != userID {
			continue
		}
		stats.Total++
		switch {
		case card.IsMastered:
			stats.Mastered++
		case card.Stage == 0:
			stats.New++
		case card.Stage <= domain.LearningBandMax:
			stats.Learning++
		default:
			stats.Mature++
		}
	}
	return stats, nil
}

// CountDueOn implements the CardStore interface
func (m *MockCardStore) CountDueOn(
	ctx context.Context,
	userID uuid.UUID,
	dayStart, dayEnd time.Time,
) (int, error) {
	if m.CountDueOnFn != nil {
		return m.CountDueOnFn(ctx, userID, dayStart, dayEnd)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	count := 0
	for _, card := range m.Cards {
		if card.UserID != userID || card.IsMastered {
			continue
		}
		dueAt := card.DueAt()
		if dueAt == nil {
			continue
		}
		if !dueAt.Before(dayStart) && dueAt.Before(dayEnd) {
			count++
		}
	}
	return count, nil
}

// WithTx implements the CardStore interface by returning the same mock.
func (m *MockCardStore) WithTx(tx *sql.Tx) store.CardStore {
	return m
}
