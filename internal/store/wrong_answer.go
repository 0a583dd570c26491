package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/wordloop/srs-api/internal/domain"
)

// WrongAnswerStore defines the interface for wrong-answer record
// persistence. Records are append-only history; the engine never updates
// or deletes them.
type WrongAnswerStore interface {
	// Create appends a wrong-answer record.
	Create(ctx context.Context, wa *domain.WrongAnswer) error

	// CountForCard returns how many wrong-answer records exist for the
	// card, used to number the next attempt.
	CountForCard(ctx context.Context, userID, cardID uuid.UUID) (int, error)

	// ListActive returns the user's records whose review window is open at
	// the given instant, most recent first.
	ListActive(ctx context.Context, userID uuid.UUID, now time.Time) ([]*domain.WrongAnswer, error)

	// WithTx returns a new WrongAnswerStore instance that uses the provided
	// transaction.
	WithTx(tx *sql.Tx) WrongAnswerStore
}
