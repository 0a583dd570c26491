package review

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/wordloop/srs-api/internal/domain"
)

// ReviewRequest represents one submitted answer for a card.
type ReviewRequest struct {
	// Correct reports whether the learner answered correctly.
	Correct bool `json:"correct"`

	// Difficulty is the learner's perceived difficulty. Optional; empty
	// means the policy's default applies.
	Difficulty domain.Difficulty `json:"difficulty,omitempty"`

	// ResponseTimeSec is how long the answer took, in seconds.
	// Must lie within [0, 300].
	ResponseTimeSec float64 `json:"response_time_sec,omitempty"`
}

// ReviewStatus classifies the outcome of a submitted review.
type ReviewStatus string

// Possible review statuses.
const (
	// StatusApplied means the review mutated the card's schedule.
	StatusApplied ReviewStatus = "applied"

	// StatusWaiting means the card's waiting period has not elapsed, so
	// the review was acknowledged without changing the card.
	StatusWaiting ReviewStatus = "waiting"
)

// ReviewResult is the outcome of SubmitReview.
type ReviewResult struct {
	Status ReviewStatus `json:"status"`
	Card   *domain.Card `json:"card"`

	// NewlyMastered is true when this review pushed the card over the
	// mastery criteria.
	NewlyMastered bool `json:"newly_mastered"`
}

// Service processes card reviews: it validates the request, applies the
// scheduling policy inside a row-locked transaction, and triggers the
// post-commit side effects (wrong-answer records, streak bumps, events).
type Service interface {
	// SubmitReview processes a user's answer for a card.
	//
	// Returns:
	//   - (*ReviewResult, nil): the review outcome, including the card's
	//     updated state
	//   - (nil, ErrCardNotFound): if the card does not exist
	//   - (nil, ErrCardNotOwned): if the user does not own the card
	//   - (nil, ErrInvalidDifficulty): if the difficulty is unknown
	//   - (nil, ErrInvalidResponseTime): if the response time is out of bounds
	//   - (nil, ErrDuplicateReview): if the card was reviewed too recently
	//
	// A card inside its waiting period is not an error: the result carries
	// StatusWaiting and the card unchanged.
	SubmitReview(
		ctx context.Context,
		userID uuid.UUID,
		cardID uuid.UUID,
		request ReviewRequest,
	) (*ReviewResult, error)
}

// Common error types for the review service
var (
	// ErrCardNotFound indicates that the card does not exist.
	ErrCardNotFound = errors.New("card not found")

	// ErrCardNotOwned indicates that the user does not own the card.
	ErrCardNotOwned = errors.New("unauthorized access: card not owned by user")

	// ErrInvalidDifficulty indicates an unknown difficulty value.
	ErrInvalidDifficulty = errors.New("invalid difficulty")

	// ErrInvalidResponseTime indicates a response time outside [0, 300]s.
	ErrInvalidResponseTime = errors.New("invalid response time")

	// ErrDuplicateReview indicates the card was already reviewed within
	// the review cool-down window.
	ErrDuplicateReview = errors.New("card was already reviewed recently")
)

// ServiceError wraps errors from the review service with additional
// context, so consumers can differentiate failure modes using errors.As
// instead of string matching.
type ServiceError struct {
	// Operation is the operation that failed (e.g., "submit_review")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s operation failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s operation failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewSubmitReviewError returns a new ServiceError for the submit_review
// operation.
func NewSubmitReviewError(message string, err error) *ServiceError {
	return &ServiceError{
		Operation: "submit_review",
		Message:   message,
		Err:       err,
	}
}
