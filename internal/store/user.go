package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/wordloop/srs-api/internal/domain"
)

// UserStore defines the interface for the engine's slice of user state:
// notification preferences, quiet hours, streaks, and the cached overdue
// flag.
type UserStore interface {
	// Create saves a new user record.
	// Returns ErrDuplicate if the user already exists.
	Create(ctx context.Context, user *domain.User) error

	// Get retrieves a user by ID.
	// Returns ErrUserNotFound if the user does not exist.
	Get(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// Update persists the user's mutable engine state (notification
	// preferences, quiet hours, streak).
	// Returns ErrUserNotFound if the user does not exist.
	Update(ctx context.Context, user *domain.User) error

	// SetOverdueFlags sets has_overdue_cards to true for exactly the given
	// users and false for everyone else, in one statement. The overdue
	// sweeper calls this after each sweep.
	SetOverdueFlags(ctx context.Context, userIDs []uuid.UUID) error

	// HasOverdueCards reads the cached overdue flag.
	// Returns ErrUserNotFound if the user does not exist.
	HasOverdueCards(ctx context.Context, id uuid.UUID) (bool, error)

	// ListIDs returns the IDs of all users. The reminder planner walks
	// this set once per tick.
	ListIDs(ctx context.Context) ([]uuid.UUID, error)

	// WithTx returns a new UserStore instance that uses the provided
	// transaction.
	WithTx(tx *sql.Tx) UserStore
}
