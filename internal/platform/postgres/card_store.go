package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/wordloop/srs-api/internal/domain"
	"github.com/wordloop/srs-api/internal/store"
)

// cardColumns is the column list shared by every card SELECT, in scan order.
const cardColumns = `id, user_id, item_type, item_id, stage,
	next_review_at, waiting_until, is_overdue, overdue_deadline,
	is_from_wrong_answer, wrong_streak_count, correct_total, wrong_total,
	is_mastered, master_cycles, mastered_at, last_reviewed_at,
	created_at, updated_at`

// psql builds queries with PostgreSQL-style $n placeholders.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// PostgresCardStore implements the store.CardStore interface
// using a PostgreSQL database as the storage backend.
type PostgresCardStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresCardStore creates a new PostgreSQL implementation of the
// CardStore interface. It accepts a database connection or transaction that
// should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresCardStore(db store.DBTX, logger *slog.Logger) *PostgresCardStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresCardStore{
		db:     db,
		logger: logger.With(slog.String("component", "card_store")),
	}
}

// Ensure PostgresCardStore implements store.CardStore interface
var _ store.CardStore = (*PostgresCardStore)(nil)

// WithTx implements store.CardStore.WithTx
func (s *PostgresCardStore) WithTx(tx *sql.Tx) store.CardStore {
	return &PostgresCardStore{
		db:     tx,
		logger: s.logger,
	}
}

// Create implements store.CardStore.Create
// It validates the card and inserts it. The unique constraint on
// (user_id, item_type, item_id) maps to store.ErrCardExists.
func (s *PostgresCardStore) Create(ctx context.Context, card *domain.Card) error {
	if err := card.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO cards (` + cardColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
	`

	_, err := s.db.ExecContext(ctx, query,
		card.ID,
		card.UserID,
		card.ItemType,
		card.ItemID,
		card.Stage,
		nullTime(card.NextReviewAt),
		nullTime(card.WaitingUntil),
		card.IsOverdue,
		nullTime(card.OverdueDeadline),
		card.IsFromWrongAnswer,
		card.WrongStreakCount,
		card.CorrectTotal,
		card.WrongTotal,
		card.IsMastered,
		card.MasterCycles,
		nullTime(card.MasteredAt),
		nullTime(card.LastReviewedAt),
		card.CreatedAt,
		card.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			s.logger.Debug("card already exists",
				"user_id", card.UserID,
				"item_type", card.ItemType,
				"item_id", card.ItemID)
			return MapUniqueViolation(err, store.ErrCardExists)
		}
		s.logger.Error("failed to create card",
			"card_id", card.ID,
			"error", err)
		return MapError(err)
	}

	return nil
}

// GetByID implements store.CardStore.GetByID
func (s *PostgresCardStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Card, error) {
	return s.getByID(ctx, id, false)
}

// GetForUpdate implements store.CardStore.GetForUpdate
// It must be called within a transaction; the row stays locked until the
// transaction commits or rolls back.
func (s *PostgresCardStore) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Card, error) {
	return s.getByID(ctx, id, true)
}

func (s *PostgresCardStore) getByID(ctx context.Context, id uuid.UUID, forUpdate bool) (*domain.Card, error) {
	query := `SELECT ` + cardColumns + ` FROM cards WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	card, err := scanCard(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrCardNotFound
		}
		s.logger.Error("failed to get card",
			"card_id", id,
			"error", err)
		return nil, MapError(err)
	}

	return card, nil
}

// Update implements store.CardStore.Update
// It persists every mutable field of the card.
func (s *PostgresCardStore) Update(ctx context.Context, card *domain.Card) error {
	if err := card.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		UPDATE cards
		SET stage = $1,
			next_review_at = $2,
			waiting_until = $3,
			is_overdue = $4,
			overdue_deadline = $5,
			is_from_wrong_answer = $6,
			wrong_streak_count = $7,
			correct_total = $8,
			wrong_total = $9,
			is_mastered = $10,
			master_cycles = $11,
			mastered_at = $12,
			last_reviewed_at = $13,
			updated_at = $14
		WHERE id = $15
	`

	result, err := s.db.ExecContext(ctx, query,
		card.Stage,
		nullTime(card.NextReviewAt),
		nullTime(card.WaitingUntil),
		card.IsOverdue,
		nullTime(card.OverdueDeadline),
		card.IsFromWrongAnswer,
		card.WrongStreakCount,
		card.CorrectTotal,
		card.WrongTotal,
		card.IsMastered,
		card.MasterCycles,
		nullTime(card.MasteredAt),
		nullTime(card.LastReviewedAt),
		card.UpdatedAt,
		card.ID,
	)
	if err != nil {
		s.logger.Error("failed to update card",
			"card_id", card.ID,
			"error", err)
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "card"); err != nil {
		return store.ErrCardNotFound
	}

	return nil
}

// ListDue implements store.CardStore.ListDue
// A card is due when it is overdue, or its waiting period elapsed, or it
// has no schedule yet. Mastered cards never come back through here.
func (s *PostgresCardStore) ListDue(ctx context.Context, userID uuid.UUID, now time.Time, limit int) ([]*domain.Card, error) {
	builder := psql.Select(cardColumns).
		From("cards").
		Where(sq.Eq{"user_id": userID}).
		Where(sq.Eq{"is_mastered": false}).
		Where(sq.Or{
			sq.Eq{"is_overdue": true},
			sq.LtOrEq{"waiting_until": now},
			sq.And{
				sq.Eq{"waiting_until": nil},
				sq.Or{
					sq.Eq{"next_review_at": nil},
					sq.LtOrEq{"next_review_at": now},
				},
			},
		}).
		OrderBy("waiting_until ASC NULLS FIRST", "id ASC")

	if limit > 0 {
		builder = builder.Limit(uint64(limit))
	}

	return s.queryCards(ctx, builder)
}

// ListWaitingExpired implements store.CardStore.ListWaitingExpired
func (s *PostgresCardStore) ListWaitingExpired(ctx context.Context, now time.Time, limit int) ([]*domain.Card, error) {
	builder := psql.Select(cardColumns).
		From("cards").
		Where(sq.Eq{"is_mastered": false}).
		Where(sq.Eq{"is_overdue": false}).
		Where(sq.LtOrEq{"waiting_until": now}).
		OrderBy("waiting_until ASC", "id ASC")

	if limit > 0 {
		builder = builder.Limit(uint64(limit))
	}

	return s.queryCards(ctx, builder)
}

// ListOverdueExpired implements store.CardStore.ListOverdueExpired
func (s *PostgresCardStore) ListOverdueExpired(ctx context.Context, now time.Time, limit int) ([]*domain.Card, error) {
	builder := psql.Select(cardColumns).
		From("cards").
		Where(sq.Eq{"is_overdue": true}).
		Where(sq.LtOrEq{"overdue_deadline": now}).
		OrderBy("overdue_deadline ASC", "id ASC")

	if limit > 0 {
		builder = builder.Limit(uint64(limit))
	}

	return s.queryCards(ctx, builder)
}

func (s *PostgresCardStore) queryCards(ctx context.Context, builder sq.SelectBuilder) ([]*domain.Card, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build card query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		s.logger.Error("failed to query cards", "error", err)
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var cards []*domain.Card
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			s.logger.Error("failed to scan card row", "error", err)
			return nil, fmt.Errorf("failed to scan card row: %w", err)
		}
		cards = append(cards, card)
	}

	if err := rows.Err(); err != nil {
		s.logger.Error("error iterating card rows", "error", err)
		return nil, MapError(err)
	}

	return cards, nil
}

// ListUsersWithOverdue implements store.CardStore.ListUsersWithOverdue
func (s *PostgresCardStore) ListUsersWithOverdue(ctx context.Context) ([]uuid.UUID, error) {
	query := `SELECT DISTINCT user_id FROM cards WHERE is_overdue = TRUE`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		s.logger.Error("failed to query users with overdue cards", "error", err)
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var userIDs []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan user ID: %w", err)
		}
		userIDs = append(userIDs, id)
	}

	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return userIDs, nil
}

// GetStats implements store.CardStore.GetStats
// Banding matches domain.StageBand: stage 0 is new, stages 1..3 are
// learning, above that is mature. Mastered cards are banded separately.
func (s *PostgresCardStore) GetStats(ctx context.Context, userID uuid.UUID) (*domain.CardStats, error) {
	query := `
		SELECT
			COUNT(*) FILTER (WHERE NOT is_mastered AND stage = 0),
			COUNT(*) FILTER (WHERE NOT is_mastered AND stage BETWEEN 1 AND $2),
			COUNT(*) FILTER (WHERE NOT is_mastered AND stage > $2),
			COUNT(*) FILTER (WHERE is_mastered),
			COUNT(*)
		FROM cards
		WHERE user_id = $1
	`

	stats := &domain.CardStats{}
	err := s.db.QueryRowContext(ctx, query, userID, domain.LearningBandMax).
		Scan(&stats.New, &stats.Learning, &stats.Mature, &stats.Mastered, &stats.Total)
	if err != nil {
		s.logger.Error("failed to get card stats",
			"user_id", userID,
			"error", err)
		return nil, MapError(err)
	}

	return stats, nil
}

// CountDueOn implements store.CardStore.CountDueOn
func (s *PostgresCardStore) CountDueOn(ctx context.Context, userID uuid.UUID, dayStart, dayEnd time.Time) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM cards
		WHERE user_id = $1
		  AND NOT is_mastered
		  AND COALESCE(waiting_until, next_review_at) >= $2
		  AND COALESCE(waiting_until, next_review_at) < $3
	`

	var count int
	err := s.db.QueryRowContext(ctx, query, userID, dayStart, dayEnd).Scan(&count)
	if err != nil {
		s.logger.Error("failed to count due cards",
			"user_id", userID,
			"error", err)
		return 0, MapError(err)
	}

	return count, nil
}

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCard(row rowScanner) (*domain.Card, error) {
	var card domain.Card
	var nextReviewAt, waitingUntil, overdueDeadline sql.NullTime
	var masteredAt, lastReviewedAt sql.NullTime

	err := row.Scan(
		&card.ID,
		&card.UserID,
		&card.ItemType,
		&card.ItemID,
		&card.Stage,
		&nextReviewAt,
		&waitingUntil,
		&card.IsOverdue,
		&overdueDeadline,
		&card.IsFromWrongAnswer,
		&card.WrongStreakCount,
		&card.CorrectTotal,
		&card.WrongTotal,
		&card.IsMastered,
		&card.MasterCycles,
		&masteredAt,
		&lastReviewedAt,
		&card.CreatedAt,
		&card.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	card.NextReviewAt = timePtr(nextReviewAt)
	card.WaitingUntil = timePtr(waitingUntil)
	card.OverdueDeadline = timePtr(overdueDeadline)
	card.MasteredAt = timePtr(masteredAt)
	card.LastReviewedAt = timePtr(lastReviewedAt)

	return &card, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}
