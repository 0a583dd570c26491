package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/wordloop/srs-api/internal/domain"
	"github.com/wordloop/srs-api/internal/domain/srs"
	"github.com/wordloop/srs-api/internal/platform/clock"
	"github.com/wordloop/srs-api/internal/platform/logger"
	"github.com/wordloop/srs-api/internal/store"
)

// Card-level sentinel errors surfaced by the card service.
var (
	// ErrCardExists indicates the (user, item type, item ID) triple is
	// already scheduled.
	ErrCardExists = errors.New("card already exists for this item")

	// ErrCardNotFound indicates that the card does not exist.
	ErrCardNotFound = errors.New("card not found")

	// ErrInvalidItem indicates an unknown item type or non-positive item ID.
	ErrInvalidItem = errors.New("invalid learning item")
)

// CardServiceError is a custom error type for card service errors.
type CardServiceError struct {
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface for CardServiceError.
func (e *CardServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("card service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("card service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *CardServiceError) Unwrap() error {
	return e.Err
}

// NewCardServiceError creates a new CardServiceError.
func NewCardServiceError(operation, message string, err error) *CardServiceError {
	return &CardServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// CardService provides the card lifecycle operations: introducing items
// into the rotation, listing what is due, and reporting progress.
type CardService interface {
	// CreateCard introduces a learning item into the user's rotation.
	// The new card is stage 0 and immediately due.
	// Returns ErrCardExists when the item is already scheduled.
	CreateCard(ctx context.Context, userID uuid.UUID, itemType string, itemID int64) (*domain.Card, error)

	// GetCard retrieves a card by its ID.
	GetCard(ctx context.Context, cardID uuid.UUID) (*domain.Card, error)

	// GetDueCards returns the user's due cards in priority order: overdue
	// first, then by wrong streak, due time, stage, and success rate.
	// A non-positive limit means no limit.
	GetDueCards(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.Card, error)

	// GetCardStats groups the user's cards by stage band.
	GetCardStats(ctx context.Context, userID uuid.UUID) (*domain.CardStats, error)

	// HasOverdueCards reads the cached per-user overdue flag maintained by
	// the overdue sweeper.
	HasOverdueCards(ctx context.Context, userID uuid.UUID) (bool, error)

	// ListWrongAnswers returns the user's wrong-answer records whose
	// review window is still open.
	ListWrongAnswers(ctx context.Context, userID uuid.UUID) ([]*domain.WrongAnswer, error)
}

// cardServiceImpl implements the CardService interface
type cardServiceImpl struct {
	cardStore        store.CardStore
	userStore        store.UserStore
	wrongAnswerStore store.WrongAnswerStore
	clock            clock.Clock
	logger           *slog.Logger
}

// NewCardService creates a new CardService.
func NewCardService(
	cardStore store.CardStore,
	userStore store.UserStore,
	wrongAnswerStore store.WrongAnswerStore,
	clk clock.Clock,
	log *slog.Logger,
) (CardService, error) {
	if cardStore == nil {
		return nil, errors.New("cardStore cannot be nil")
	}
	if userStore == nil {
		return nil, errors.New("userStore cannot be nil")
	}
	if wrongAnswerStore == nil {
		return nil, errors.New("wrongAnswerStore cannot be nil")
	}
	if clk == nil {
		clk = clock.SystemClock{}
	}
	if log == nil {
		log = slog.Default()
	}

	return &cardServiceImpl{
		cardStore:        cardStore,
		userStore:        userStore,
		wrongAnswerStore: wrongAnswerStore,
		clock:            clk,
		logger:           log.With(slog.String("component", "card_service")),
	}, nil
}

// CreateCard implements CardService.CreateCard
func (s *cardServiceImpl) CreateCard(
	ctx context.Context,
	userID uuid.UUID,
	itemType string,
	itemID int64,
) (*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	card, err := domain.NewCard(userID, itemType, itemID, s.clock.Now())
	if err != nil {
		log.Warn("invalid card parameters",
			slog.String("user_id", userID.String()),
			slog.String("item_type", itemType),
			slog.Int64("item_id", itemID),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %v", ErrInvalidItem, err)
	}

	if err := s.cardStore.Create(ctx, card); err != nil {
		if store.IsDuplicateError(err) {
			log.Debug("card already exists",
				slog.String("user_id", userID.String()),
				slog.String("item_type", itemType),
				slog.Int64("item_id", itemID))
			return nil, ErrCardExists
		}

		log.Error("failed to create card",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()))
		return nil, NewCardServiceError("create_card", "failed to save card", err)
	}

	log.Info("card created",
		slog.String("card_id", card.ID.String()),
		slog.String("user_id", userID.String()),
		slog.String("item_type", itemType),
		slog.Int64("item_id", itemID))

	return card, nil
}

// GetCard implements CardService.GetCard
func (s *cardServiceImpl) GetCard(ctx context.Context, cardID uuid.UUID) (*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	card, err := s.cardStore.GetByID(ctx, cardID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, ErrCardNotFound
		}

		log.Error("failed to get card",
			slog.String("card_id", cardID.String()),
			slog.String("error", err.Error()))
		return nil, NewCardServiceError("get_card", "failed to load card", err)
	}

	return card, nil
}

// GetDueCards implements CardService.GetDueCards
func (s *cardServiceImpl) GetDueCards(
	ctx context.Context,
	userID uuid.UUID,
	limit int,
) ([]*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	// Fetch without a limit so prioritization sees the full due set, then
	// cut the batch after sorting.
	cards, err := s.cardStore.ListDue(ctx, userID, s.clock.Now(), 0)
	if err != nil {
		log.Error("failed to list due cards",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()))
		return nil, NewCardServiceError("get_due_cards", "failed to list due cards", err)
	}

	srs.SortDueCards(cards)

	if limit > 0 && len(cards) > limit {
		cards = cards[:limit]
	}

	return cards, nil
}

// GetCardStats implements CardService.GetCardStats
func (s *cardServiceImpl) GetCardStats(ctx context.Context, userID uuid.UUID) (*domain.CardStats, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	stats, err := s.cardStore.GetStats(ctx, userID)
	if err != nil {
		log.Error("failed to get card stats",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()))
		return nil, NewCardServiceError("get_card_stats", "failed to load stats", err)
	}

	return stats, nil
}

// HasOverdueCards implements CardService.HasOverdueCards
func (s *cardServiceImpl) HasOverdueCards(ctx context.Context, userID uuid.UUID) (bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	flag, err := s.userStore.HasOverdueCards(ctx, userID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return false, err
		}

		log.Error("failed to read overdue flag",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()))
		return false, NewCardServiceError("has_overdue_cards", "failed to read overdue flag", err)
	}

	return flag, nil
}

// ListWrongAnswers implements CardService.ListWrongAnswers
func (s *cardServiceImpl) ListWrongAnswers(ctx context.Context, userID uuid.UUID) ([]*domain.WrongAnswer, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	records, err := s.wrongAnswerStore.ListActive(ctx, userID, s.clock.Now())
	if err != nil {
		log.Error("failed to list wrong answers",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()))
		return nil, NewCardServiceError("list_wrong_answers", "failed to list wrong answers", err)
	}

	return records, nil
}
