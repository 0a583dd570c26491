package api

import (
	"errors"
	"net/http"

	"github.com/wordloop/srs-api/internal/service"
	"github.com/wordloop/srs-api/internal/service/review"
	"github.com/wordloop/srs-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status
// codes based on the error type. This prevents leaking internal error
// types or messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Authorization errors
	case errors.Is(err, review.ErrCardNotOwned):
		return http.StatusForbidden

	// Not found errors
	case errors.Is(err, store.ErrUserNotFound),
		errors.Is(err, store.ErrCardNotFound),
		errors.Is(err, service.ErrCardNotFound),
		errors.Is(err, review.ErrCardNotFound):
		return http.StatusNotFound

	// Conflict errors
	case errors.Is(err, store.ErrCardExists),
		errors.Is(err, service.ErrCardExists),
		errors.Is(err, review.ErrDuplicateReview):
		return http.StatusConflict

	// Bad request errors
	case errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, service.ErrInvalidItem),
		errors.Is(err, review.ErrInvalidDifficulty),
		errors.Is(err, review.ErrInvalidResponseTime):
		return http.StatusBadRequest

	// Transient persistence failures
	case errors.Is(err, store.ErrUnavailable):
		return http.StatusServiceUnavailable

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal
// details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, review.ErrCardNotOwned):
		return "You do not own this card"

	case errors.Is(err, store.ErrUserNotFound):
		return "User not found"

	case errors.Is(err, store.ErrCardNotFound),
		errors.Is(err, service.ErrCardNotFound),
		errors.Is(err, review.ErrCardNotFound):
		return "Card not found"

	case errors.Is(err, store.ErrCardExists),
		errors.Is(err, service.ErrCardExists):
		return "Card already exists for this item"

	case errors.Is(err, review.ErrDuplicateReview):
		return "Card was already reviewed recently"

	case errors.Is(err, review.ErrInvalidDifficulty):
		return "Invalid difficulty"

	case errors.Is(err, review.ErrInvalidResponseTime):
		return "Invalid response time"

	case errors.Is(err, service.ErrInvalidItem):
		return "Invalid learning item"

	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"

	case errors.Is(err, store.ErrUnavailable):
		return "Service temporarily unavailable"

	default:
		return "An unexpected error occurred"
	}
}
