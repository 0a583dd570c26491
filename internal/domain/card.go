package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Item types a card can schedule.
const (
	ItemTypeVocab  = "vocab"
	ItemTypeIdiom  = "idiom"
	ItemTypePhrase = "phrase"
)

// Card-specific validation errors
var (
	// ErrCardIDEmpty is returned when a card ID is empty or nil.
	ErrCardIDEmpty = errors.New("card ID cannot be empty")

	// ErrCardUserIDEmpty is returned when a card's user ID is empty or nil.
	ErrCardUserIDEmpty = errors.New("card user ID cannot be empty")

	// ErrCardItemTypeInvalid is returned when a card's item type is not one
	// of the known item types.
	ErrCardItemTypeInvalid = errors.New("card item type must be vocab, idiom, or phrase")

	// ErrCardItemIDInvalid is returned when a card's item ID is not positive.
	ErrCardItemIDInvalid = errors.New("card item ID must be positive")

	// ErrCardStageNegative is returned when a card's stage is negative.
	ErrCardStageNegative = errors.New("card stage cannot be negative")

	// ErrCardCountersNegative is returned when any lifetime counter is negative.
	ErrCardCountersNegative = errors.New("card counters cannot be negative")

	// ErrCardOverdueWhileWaiting is returned when a card is flagged overdue
	// while its waiting period has not yet elapsed. Exactly one of the
	// waiting and overdue dispositions may hold at a time.
	ErrCardOverdueWhileWaiting = errors.New("card cannot be overdue while still waiting")
)

// Card is the schedulable state for one (user, learning item) pair.
// The stage indexes an ordered interval table; WaitingUntil and
// OverdueDeadline implement the two-phase "waiting then overdue then hard
// reset" lifecycle managed by the review service and the overdue sweeper.
type Card struct {
	ID       uuid.UUID `json:"id"`
	UserID   uuid.UUID `json:"user_id"`
	ItemType string    `json:"item_type"`
	ItemID   int64     `json:"item_id"`

	Stage             int        `json:"stage"`
	NextReviewAt      *time.Time `json:"next_review_at,omitempty"`
	WaitingUntil      *time.Time `json:"waiting_until,omitempty"`
	IsOverdue         bool       `json:"is_overdue"`
	OverdueDeadline   *time.Time `json:"overdue_deadline,omitempty"`
	IsFromWrongAnswer bool       `json:"is_from_wrong_answer"`

	WrongStreakCount int `json:"wrong_streak_count"`
	CorrectTotal     int `json:"correct_total"`
	WrongTotal       int `json:"wrong_total"`

	IsMastered   bool       `json:"is_mastered"`
	MasterCycles int        `json:"master_cycles"`
	MasteredAt   *time.Time `json:"mastered_at,omitempty"`

	LastReviewedAt *time.Time `json:"last_reviewed_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// NewCard creates a stage-0 card for the given identity triple. New cards
// carry no waiting period, so they are eligible for review immediately.
func NewCard(userID uuid.UUID, itemType string, itemID int64, now time.Time) (*Card, error) {
	card := &Card{
		ID:        uuid.New(),
		UserID:    userID,
		ItemType:  itemType,
		ItemID:    itemID,
		Stage:     0,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := card.Validate(); err != nil {
		return nil, err
	}

	return card, nil
}

// Validate checks if the Card has valid data.
// Returns an error if any field fails validation.
func (c *Card) Validate() error {
	if c.ID == uuid.Nil {
		return ErrCardIDEmpty
	}

	if c.UserID == uuid.Nil {
		return ErrCardUserIDEmpty
	}

	if !isValidItemType(c.ItemType) {
		return ErrCardItemTypeInvalid
	}

	if c.ItemID <= 0 {
		return ErrCardItemIDInvalid
	}

	if c.Stage < 0 {
		return ErrCardStageNegative
	}

	if c.WrongStreakCount < 0 || c.CorrectTotal < 0 || c.WrongTotal < 0 || c.MasterCycles < 0 {
		return ErrCardCountersNegative
	}

	return nil
}

// CardState classifies a card's current disposition.
type CardState string

// Possible card states. At most one applies at any instant.
const (
	CardStateReady    CardState = "ready"
	CardStateWaiting  CardState = "waiting"
	CardStateOverdue  CardState = "overdue"
	CardStateMastered CardState = "mastered"
)

// State reports the card's disposition at the given instant. Mastered wins
// over everything; overdue wins over waiting.
func (c *Card) State(now time.Time) CardState {
	if c.IsMastered {
		return CardStateMastered
	}
	if c.IsOverdue {
		return CardStateOverdue
	}
	if c.WaitingUntil != nil && c.WaitingUntil.After(now) {
		return CardStateWaiting
	}
	return CardStateReady
}

// IsWaiting reports whether the card's waiting period is still running.
func (c *Card) IsWaiting(now time.Time) bool {
	return c.WaitingUntil != nil && c.WaitingUntil.After(now)
}

// TotalReviews is the number of reviews ever processed for this card.
func (c *Card) TotalReviews() int {
	return c.CorrectTotal + c.WrongTotal
}

// SuccessRate is the lifetime share of correct answers, zero when the card
// has never been reviewed.
func (c *Card) SuccessRate() float64 {
	total := c.TotalReviews()
	if total == 0 {
		return 0
	}
	return float64(c.CorrectTotal) / float64(total)
}

// DueAt returns the timestamp governing when the card next becomes
// reviewable: the waiting deadline when one is set, otherwise the scheduled
// review time. Nil means the card is due immediately.
func (c *Card) DueAt() *time.Time {
	if c.WaitingUntil != nil {
		return c.WaitingUntil
	}
	return c.NextReviewAt
}

// Clone returns a deep copy of the card. Services compute new states on a
// copy so a failed persistence attempt never leaves a half-mutated card.
func (c *Card) Clone() *Card {
	clone := *c
	clone.NextReviewAt = copyTime(c.NextReviewAt)
	clone.WaitingUntil = copyTime(c.WaitingUntil)
	clone.OverdueDeadline = copyTime(c.OverdueDeadline)
	clone.MasteredAt = copyTime(c.MasteredAt)
	clone.LastReviewedAt = copyTime(c.LastReviewedAt)
	return &clone
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

func isValidItemType(itemType string) bool {
	switch itemType {
	case ItemTypeVocab, ItemTypeIdiom, ItemTypePhrase:
		return true
	default:
		return false
	}
}
