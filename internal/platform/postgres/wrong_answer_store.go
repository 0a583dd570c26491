package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/wordloop/srs-api/internal/domain"
	"github.com/wordloop/srs-api/internal/store"
)

// PostgresWrongAnswerStore implements the store.WrongAnswerStore interface
// using a PostgreSQL database as the storage backend.
type PostgresWrongAnswerStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresWrongAnswerStore creates a new PostgreSQL implementation of
// the WrongAnswerStore interface.
func NewPostgresWrongAnswerStore(db store.DBTX, logger *slog.Logger) *PostgresWrongAnswerStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresWrongAnswerStore{
		db:     db,
		logger: logger.With(slog.String("component", "wrong_answer_store")),
	}
}

// Ensure PostgresWrongAnswerStore implements store.WrongAnswerStore interface
var _ store.WrongAnswerStore = (*PostgresWrongAnswerStore)(nil)

// WithTx implements store.WrongAnswerStore.WithTx
func (s *PostgresWrongAnswerStore) WithTx(tx *sql.Tx) store.WrongAnswerStore {
	return &PostgresWrongAnswerStore{
		db:     tx,
		logger: s.logger,
	}
}

// Create implements store.WrongAnswerStore.Create
func (s *PostgresWrongAnswerStore) Create(ctx context.Context, wa *domain.WrongAnswer) error {
	if err := wa.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO wrong_answers (id, user_id, card_id, item_type, item_id,
			wrong_at, review_window_start, review_window_end, attempt)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := s.db.ExecContext(ctx, query,
		wa.ID,
		wa.UserID,
		wa.CardID,
		wa.ItemType,
		wa.ItemID,
		wa.WrongAt,
		wa.ReviewWindowStart,
		wa.ReviewWindowEnd,
		wa.Attempt,
	)
	if err != nil {
		s.logger.Error("failed to create wrong answer record",
			"card_id", wa.CardID,
			"error", err)
		return MapError(err)
	}

	return nil
}

// CountForCard implements store.WrongAnswerStore.CountForCard
func (s *PostgresWrongAnswerStore) CountForCard(ctx context.Context, userID, cardID uuid.UUID) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM wrong_answers
		WHERE user_id = $1 AND card_id = $2
	`

	var count int
	err := s.db.QueryRowContext(ctx, query, userID, cardID).Scan(&count)
	if err != nil {
		s.logger.Error("failed to count wrong answers",
			"card_id", cardID,
			"error", err)
		return 0, MapError(err)
	}

	return count, nil
}

// ListActive implements store.WrongAnswerStore.ListActive
func (s *PostgresWrongAnswerStore) ListActive(ctx context.Context, userID uuid.UUID, now time.Time) ([]*domain.WrongAnswer, error) {
	query := `
		SELECT id, user_id, card_id, item_type, item_id,
			wrong_at, review_window_start, review_window_end, attempt
		FROM wrong_answers
		WHERE user_id = $1
		  AND review_window_start <= $2
		  AND review_window_end > $2
		ORDER BY wrong_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query, userID, now)
	if err != nil {
		s.logger.Error("failed to query active wrong answers",
			"user_id", userID,
			"error", err)
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var records []*domain.WrongAnswer
	for rows.Next() {
		var wa domain.WrongAnswer
		if err := rows.Scan(
			&wa.ID,
			&wa.UserID,
			&wa.CardID,
			&wa.ItemType,
			&wa.ItemID,
			&wa.WrongAt,
			&wa.ReviewWindowStart,
			&wa.ReviewWindowEnd,
			&wa.Attempt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan wrong answer row: %w", err)
		}
		records = append(records, &wa)
	}

	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return records, nil
}
