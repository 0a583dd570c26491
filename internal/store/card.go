package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/wordloop/srs-api/internal/domain"
)

// CardStore defines the interface for card data persistence.
type CardStore interface {
	// Create saves a new card. Returns ErrCardExists when a card with the
	// same (user, item type, item ID) triple already exists.
	Create(ctx context.Context, card *domain.Card) error

	// GetByID retrieves a card by its unique ID.
	// Returns ErrCardNotFound if the card does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Card, error)

	// GetForUpdate retrieves a card with a row-level lock using
	// SELECT FOR UPDATE. It must be used within a transaction whenever the
	// caller intends to update the row; the lock serializes concurrent
	// mutation of the same card, which the review service and the overdue
	// sweeper both rely on.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Card, error)

	// Update persists every mutable field of an existing card.
	// Returns ErrCardNotFound if the card does not exist.
	Update(ctx context.Context, card *domain.Card) error

	// ListDue returns the user's non-mastered cards that are eligible for
	// review at the given instant: overdue cards, cards whose waiting
	// period elapsed, and cards with no schedule yet. Ordering is the
	// store's natural order; callers apply the prioritization rule.
	// A non-positive limit means no limit.
	ListDue(ctx context.Context, userID uuid.UUID, now time.Time, limit int) ([]*domain.Card, error)

	// ListWaitingExpired returns cards (across all users) whose waiting
	// period has elapsed but are not yet flagged overdue. Used by the
	// overdue sweeper.
	ListWaitingExpired(ctx context.Context, now time.Time, limit int) ([]*domain.Card, error)

	// ListOverdueExpired returns cards flagged overdue whose overdue
	// deadline has passed without a review. Used by the overdue sweeper for
	// hard resets.
	ListOverdueExpired(ctx context.Context, now time.Time, limit int) ([]*domain.Card, error)

	// ListUsersWithOverdue returns the IDs of every user currently holding
	// at least one overdue card.
	ListUsersWithOverdue(ctx context.Context) ([]uuid.UUID, error)

	// GetStats groups the user's cards by stage band.
	GetStats(ctx context.Context, userID uuid.UUID) (*domain.CardStats, error)

	// CountDueOn returns how many of the user's cards come due within the
	// given day window. Used for the look-ahead reminder.
	CountDueOn(ctx context.Context, userID uuid.UUID, dayStart, dayEnd time.Time) (int, error)

	// WithTx returns a new CardStore instance that uses the provided
	// transaction. The transaction is created and managed by the caller
	// (typically a service).
	WithTx(tx *sql.Tx) CardStore
}
