package api

import (
	"time"

	"github.com/wordloop/srs-api/internal/domain"
)

// CardResponse represents the response data for a card.
type CardResponse struct {
	ID                string     `json:"id"`
	UserID            string     `json:"user_id"`
	ItemType          string     `json:"item_type"`
	ItemID            int64      `json:"item_id"`
	Stage             int        `json:"stage"`
	State             string     `json:"state"`
	NextReviewAt      *time.Time `json:"next_review_at,omitempty"`
	WaitingUntil      *time.Time `json:"waiting_until,omitempty"`
	IsOverdue         bool       `json:"is_overdue"`
	OverdueDeadline   *time.Time `json:"overdue_deadline,omitempty"`
	IsFromWrongAnswer bool       `json:"is_from_wrong_answer"`
	WrongStreakCount  int        `json:"wrong_streak_count"`
	CorrectTotal      int        `json:"correct_total"`
	WrongTotal        int        `json:"wrong_total"`
	IsMastered        bool       `json:"is_mastered"`
	MasterCycles      int        `json:"master_cycles"`
	LastReviewedAt    *time.Time `json:"last_reviewed_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// cardToResponse converts a domain card to its API representation.
// The state is evaluated at the given instant.
func cardToResponse(card *domain.Card, now time.Time) CardResponse {
	return CardResponse{
		ID:                card.ID.String(),
		UserID:            card.UserID.String(),
		ItemType:          card.ItemType,
		ItemID:            card.ItemID,
		Stage:             card.Stage,
		State:             string(card.State(now)),
		NextReviewAt:      card.NextReviewAt,
		WaitingUntil:      card.WaitingUntil,
		IsOverdue:         card.IsOverdue,
		OverdueDeadline:   card.OverdueDeadline,
		IsFromWrongAnswer: card.IsFromWrongAnswer,
		WrongStreakCount:  card.WrongStreakCount,
		CorrectTotal:      card.CorrectTotal,
		WrongTotal:        card.WrongTotal,
		IsMastered:        card.IsMastered,
		MasterCycles:      card.MasterCycles,
		LastReviewedAt:    card.LastReviewedAt,
		CreatedAt:         card.CreatedAt,
		UpdatedAt:         card.UpdatedAt,
	}
}

// WrongAnswerResponse represents the response data for a wrong-answer
// record.
type WrongAnswerResponse struct {
	ID                string    `json:"id"`
	CardID            string    `json:"card_id"`
	ItemType          string    `json:"item_type"`
	ItemID            int64     `json:"item_id"`
	WrongAt           time.Time `json:"wrong_at"`
	ReviewWindowStart time.Time `json:"review_window_start"`
	ReviewWindowEnd   time.Time `json:"review_window_end"`
	Attempt           int       `json:"attempt"`
}

func wrongAnswerToResponse(wa *domain.WrongAnswer) WrongAnswerResponse {
	return WrongAnswerResponse{
		ID:                wa.ID.String(),
		CardID:            wa.CardID.String(),
		ItemType:          wa.ItemType,
		ItemID:            wa.ItemID,
		WrongAt:           wa.WrongAt,
		ReviewWindowStart: wa.ReviewWindowStart,
		ReviewWindowEnd:   wa.ReviewWindowEnd,
		Attempt:           wa.Attempt,
	}
}
