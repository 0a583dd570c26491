package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Wrong-answer validation errors
var (
	ErrWrongAnswerIDEmpty     = errors.New("wrong answer ID cannot be empty")
	ErrWrongAnswerUserIDEmpty = errors.New("wrong answer user ID cannot be empty")
	ErrWrongAnswerCardIDEmpty = errors.New("wrong answer card ID cannot be empty")
	ErrWrongAnswerBadWindow   = errors.New("wrong answer review window end must be after start")
)

// WrongAnswer records a single failed review for the "review your mistakes"
// flow. Each failure appends a new record; the review window bounds the
// period in which the mistake is offered back to the learner.
type WrongAnswer struct {
	ID                uuid.UUID `json:"id"`
	UserID            uuid.UUID `json:"user_id"`
	CardID            uuid.UUID `json:"card_id"`
	ItemType          string    `json:"item_type"`
	ItemID            int64     `json:"item_id"`
	WrongAt           time.Time `json:"wrong_at"`
	ReviewWindowStart time.Time `json:"review_window_start"`
	ReviewWindowEnd   time.Time `json:"review_window_end"`
	Attempt           int       `json:"attempt"`
}

// NewWrongAnswer creates a wrong-answer record whose review window opens
// immediately and closes 24 hours later.
func NewWrongAnswer(card *Card, attempt int, now time.Time) (*WrongAnswer, error) {
	wa := &WrongAnswer{
		ID:                uuid.New(),
		UserID:            card.UserID,
		CardID:            card.ID,
		ItemType:          card.ItemType,
		ItemID:            card.ItemID,
		WrongAt:           now,
		ReviewWindowStart: now,
		ReviewWindowEnd:   now.Add(24 * time.Hour),
		Attempt:           attempt,
	}

	if err := wa.Validate(); err != nil {
		return nil, err
	}

	return wa, nil
}

// Validate checks if the WrongAnswer has valid data.
func (w *WrongAnswer) Validate() error {
	if w.ID == uuid.Nil {
		return ErrWrongAnswerIDEmpty
	}

	if w.UserID == uuid.Nil {
		return ErrWrongAnswerUserIDEmpty
	}

	if w.CardID == uuid.Nil {
		return ErrWrongAnswerCardIDEmpty
	}

	if !w.ReviewWindowEnd.After(w.ReviewWindowStart) {
		return ErrWrongAnswerBadWindow
	}

	return nil
}

// WindowActive reports whether the review window is open at the given time.
func (w *WrongAnswer) WindowActive(now time.Time) bool {
	return !now.Before(w.ReviewWindowStart) && now.Before(w.ReviewWindowEnd)
}
