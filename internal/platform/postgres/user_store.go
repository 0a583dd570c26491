package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/wordloop/srs-api/internal/domain"
	"github.com/wordloop/srs-api/internal/store"
)

// PostgresUserStore implements the store.UserStore interface
// using a PostgreSQL database as the storage backend. Quiet-hours settings
// are stored as a JSONB document since schedules are read and written as a
// unit.
type PostgresUserStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresUserStore creates a new PostgreSQL implementation of the
// UserStore interface. It accepts a database connection or transaction that
// should be initialized and managed by the caller.
func NewPostgresUserStore(db store.DBTX, logger *slog.Logger) *PostgresUserStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresUserStore{
		db:     db,
		logger: logger.With(slog.String("component", "user_store")),
	}
}

// Ensure PostgresUserStore implements store.UserStore interface
var _ store.UserStore = (*PostgresUserStore)(nil)

// WithTx implements store.UserStore.WithTx
func (s *PostgresUserStore) WithTx(tx *sql.Tx) store.UserStore {
	return &PostgresUserStore{
		db:     tx,
		logger: s.logger,
	}
}

// Create implements store.UserStore.Create
func (s *PostgresUserStore) Create(ctx context.Context, user *domain.User) error {
	if err := user.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	quietHours, err := json.Marshal(user.QuietHours)
	if err != nil {
		return fmt.Errorf("failed to marshal quiet hours: %w", err)
	}

	query := `
		INSERT INTO users (id, telegram_chat_id, notification_time, quiet_hours,
			streak_days, last_study_date, has_overdue_cards, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err = s.db.ExecContext(ctx, query,
		user.ID,
		user.TelegramChatID,
		user.NotificationTime,
		quietHours,
		user.StreakDays,
		nullTime(user.LastStudyDate),
		user.HasOverdueCards,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		s.logger.Error("failed to create user",
			"user_id", user.ID,
			"error", err)
		return MapError(err)
	}

	return nil
}

// Get implements store.UserStore.Get
func (s *PostgresUserStore) Get(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	query := `
		SELECT id, telegram_chat_id, notification_time, quiet_hours,
			streak_days, last_study_date, has_overdue_cards, created_at, updated_at
		FROM users
		WHERE id = $1
	`

	var user domain.User
	var quietHours []byte
	var lastStudyDate sql.NullTime

	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&user.ID,
		&user.TelegramChatID,
		&user.NotificationTime,
		&quietHours,
		&user.StreakDays,
		&lastStudyDate,
		&user.HasOverdueCards,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrUserNotFound
		}
		s.logger.Error("failed to get user",
			"user_id", id,
			"error", err)
		return nil, MapError(err)
	}

	if len(quietHours) > 0 {
		if err := json.Unmarshal(quietHours, &user.QuietHours); err != nil {
			return nil, fmt.Errorf("failed to unmarshal quiet hours: %w", err)
		}
	}

	user.LastStudyDate = timePtr(lastStudyDate)

	return &user, nil
}

// Update implements store.UserStore.Update
func (s *PostgresUserStore) Update(ctx context.Context, user *domain.User) error {
	if err := user.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	quietHours, err := json.Marshal(user.QuietHours)
	if err != nil {
		return fmt.Errorf("failed to marshal quiet hours: %w", err)
	}

	query := `
		UPDATE users
		SET telegram_chat_id = $1,
			notification_time = $2,
			quiet_hours = $3,
			streak_days = $4,
			last_study_date = $5,
			has_overdue_cards = $6,
			updated_at = $7
		WHERE id = $8
	`

	result, err := s.db.ExecContext(ctx, query,
		user.TelegramChatID,
		user.NotificationTime,
		quietHours,
		user.StreakDays,
		nullTime(user.LastStudyDate),
		user.HasOverdueCards,
		user.UpdatedAt,
		user.ID,
	)
	if err != nil {
		s.logger.Error("failed to update user",
			"user_id", user.ID,
			"error", err)
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "user"); err != nil {
		return store.ErrUserNotFound
	}

	return nil
}

// SetOverdueFlags implements store.UserStore.SetOverdueFlags
// It flips has_overdue_cards in a single statement so the flag is never
// half-applied across users.
func (s *PostgresUserStore) SetOverdueFlags(ctx context.Context, userIDs []uuid.UUID) error {
	ids := make([]string, len(userIDs))
	for i, id := range userIDs {
		ids[i] = id.String()
	}

	query := `
		UPDATE users
		SET has_overdue_cards = (id = ANY($1::uuid[])),
			updated_at = NOW()
		WHERE has_overdue_cards <> (id = ANY($1::uuid[]))
	`

	_, err := s.db.ExecContext(ctx, query, pq.Array(ids))
	if err != nil {
		s.logger.Error("failed to set overdue flags",
			"user_count", len(userIDs),
			"error", err)
		return MapError(err)
	}

	return nil
}

// ListIDs implements store.UserStore.ListIDs
func (s *PostgresUserStore) ListIDs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM users ORDER BY created_at ASC`)
	if err != nil {
		s.logger.Error("failed to list user IDs", "error", err)
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan user ID: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return ids, nil
}

// HasOverdueCards implements store.UserStore.HasOverdueCards
func (s *PostgresUserStore) HasOverdueCards(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `SELECT has_overdue_cards FROM users WHERE id = $1`

	var flag bool
	err := s.db.QueryRowContext(ctx, query, id).Scan(&flag)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, store.ErrUserNotFound
		}
		s.logger.Error("failed to read overdue flag",
			"user_id", id,
			"error", err)
		return false, MapError(err)
	}

	return flag, nil
}
