// Package api provides HTTP handlers for the API.
package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/wordloop/srs-api/internal/api/shared"
	"github.com/wordloop/srs-api/internal/domain"
	"github.com/wordloop/srs-api/internal/platform/clock"
	"github.com/wordloop/srs-api/internal/platform/logger"
	"github.com/wordloop/srs-api/internal/service"
	"github.com/wordloop/srs-api/internal/service/review"
)

// CardHandler handles card-related HTTP requests
type CardHandler struct {
	cardService   service.CardService
	reviewService review.Service
	clock         clock.Clock
	logger        *slog.Logger
}

// NewCardHandler creates a new CardHandler
func NewCardHandler(
	cardService service.CardService,
	reviewService review.Service,
	clk clock.Clock,
	logger *slog.Logger,
) *CardHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for CardHandler")
	}
	if clk == nil {
		clk = clock.SystemClock{}
	}

	return &CardHandler{
		cardService:   cardService,
		reviewService: reviewService,
		clock:         clk,
		logger:        logger.With(slog.String("component", "card_handler")),
	}
}

// CreateCardRequest represents the request body for scheduling a new card
type CreateCardRequest struct {
	ItemType string `json:"item_type" validate:"required"`
	ItemID   int64  `json:"item_id"   validate:"required,gt=0"`
}

// CreateCard handles POST /users/{userID}/cards requests
// It introduces a learning item into the user's review rotation.
func (h *CardHandler) CreateCard(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := h.pathUserID(w, r)
	if !ok {
		return
	}

	var req CreateCardRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Warn("invalid request body", slog.String("error", err.Error()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		log.Warn("request validation failed", slog.String("error", err.Error()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	card, err := h.cardService.CreateCard(r.Context(), userID, req.ItemType, req.ItemID)
	if err != nil {
		statusCode := MapErrorToStatusCode(err)
		safeMessage := GetSafeErrorMessage(err)
		shared.RespondWithErrorAndLog(w, r, statusCode, safeMessage, err)
		return
	}

	log.Debug("card created",
		slog.String("user_id", userID.String()),
		slog.String("card_id", card.ID.String()))
	shared.RespondWithJSON(w, r, http.StatusCreated, cardToResponse(card, h.clock.Now()))
}

// GetDueCards handles GET /users/{userID}/cards/due requests
// It returns the user's due cards in review priority order. An optional
// "limit" query parameter caps the batch size.
func (h *CardHandler) GetDueCards(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := h.pathUserID(w, r)
	if !ok {
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			log.Warn("invalid limit query parameter", slog.String("limit", raw))
			shared.RespondWithError(w, r, http.StatusBadRequest, "Limit must be a non-negative integer")
			return
		}
		limit = parsed
	}

	cards, err := h.cardService.GetDueCards(r.Context(), userID, limit)
	if err != nil {
		statusCode := MapErrorToStatusCode(err)
		safeMessage := GetSafeErrorMessage(err)
		shared.RespondWithErrorAndLog(w, r, statusCode, safeMessage, err)
		return
	}

	now := h.clock.Now()
	responses := make([]CardResponse, 0, len(cards))
	for _, card := range cards {
		responses = append(responses, cardToResponse(card, now))
	}

	log.Debug("due cards retrieved",
		slog.String("user_id", userID.String()),
		slog.Int("count", len(responses)))
	shared.RespondWithJSON(w, r, http.StatusOK, responses)
}

// GetCardStats handles GET /users/{userID}/cards/stats requests
// It returns the user's card counts grouped by learning stage band.
func (h *CardHandler) GetCardStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.pathUserID(w, r)
	if !ok {
		return
	}

	stats, err := h.cardService.GetCardStats(r.Context(), userID)
	if err != nil {
		statusCode := MapErrorToStatusCode(err)
		safeMessage := GetSafeErrorMessage(err)
		shared.RespondWithErrorAndLog(w, r, statusCode, safeMessage, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, stats)
}

// OverdueStatusResponse reports whether the user currently has overdue
// cards awaiting rescue review.
type OverdueStatusResponse struct {
	HasOverdueCards bool `json:"has_overdue_cards"`
}

// GetOverdueStatus handles GET /users/{userID}/overdue requests
func (h *CardHandler) GetOverdueStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.pathUserID(w, r)
	if !ok {
		return
	}

	hasOverdue, err := h.cardService.HasOverdueCards(r.Context(), userID)
	if err != nil {
		statusCode := MapErrorToStatusCode(err)
		safeMessage := GetSafeErrorMessage(err)
		shared.RespondWithErrorAndLog(w, r, statusCode, safeMessage, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, OverdueStatusResponse{HasOverdueCards: hasOverdue})
}

// ListWrongAnswers handles GET /users/{userID}/wrong-answers requests
// It returns the user's wrong-answer records whose review window is
// still open.
func (h *CardHandler) ListWrongAnswers(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.pathUserID(w, r)
	if !ok {
		return
	}

	records, err := h.cardService.ListWrongAnswers(r.Context(), userID)
	if err != nil {
		statusCode := MapErrorToStatusCode(err)
		safeMessage := GetSafeErrorMessage(err)
		shared.RespondWithErrorAndLog(w, r, statusCode, safeMessage, err)
		return
	}

	responses := make([]WrongAnswerResponse, 0, len(records))
	for _, record := range records {
		responses = append(responses, wrongAnswerToResponse(record))
	}

	shared.RespondWithJSON(w, r, http.StatusOK, responses)
}

// SubmitReviewRequest represents the request body for submitting a
// review answer
type SubmitReviewRequest struct {
	Correct         *bool   `json:"correct"                     validate:"required"`
	Difficulty      string  `json:"difficulty,omitempty"        validate:"omitempty,oneof=easy medium hard"`
	ResponseTimeSec float64 `json:"response_time_sec,omitempty" validate:"omitempty,gte=0"`
}

// SubmitReviewResponse represents the response for a processed review
type SubmitReviewResponse struct {
	Status        string       `json:"status"`
	Card          CardResponse `json:"card"`
	NewlyMastered bool         `json:"newly_mastered"`
}

// SubmitReview handles POST /users/{userID}/cards/{id}/review requests
// It records a review answer and reschedules the card.
func (h *CardHandler) SubmitReview(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := h.pathUserID(w, r)
	if !ok {
		return
	}

	pathCardID := chi.URLParam(r, "id")
	cardID, err := uuid.Parse(pathCardID)
	if err != nil {
		log.Warn("invalid card ID format", slog.String("card_id", pathCardID))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid card ID format")
		return
	}

	var req SubmitReviewRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Warn("invalid request body", slog.String("error", err.Error()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		log.Warn("request validation failed", slog.String("error", err.Error()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	result, err := h.reviewService.SubmitReview(r.Context(), userID, cardID, review.ReviewRequest{
		Correct:         *req.Correct,
		Difficulty:      domain.Difficulty(req.Difficulty),
		ResponseTimeSec: req.ResponseTimeSec,
	})
	if err != nil {
		statusCode := MapErrorToStatusCode(err)
		safeMessage := GetSafeErrorMessage(err)
		if statusCode == http.StatusInternalServerError {
			safeMessage = "Failed to submit review"
		}
		shared.RespondWithErrorAndLog(w, r, statusCode, safeMessage, err)
		return
	}

	log.Debug("review submitted",
		slog.String("user_id", userID.String()),
		slog.String("card_id", cardID.String()),
		slog.String("status", string(result.Status)),
		slog.Bool("correct", *req.Correct))
	shared.RespondWithJSON(w, r, http.StatusOK, SubmitReviewResponse{
		Status:        string(result.Status),
		Card:          cardToResponse(result.Card, h.clock.Now()),
		NewlyMastered: result.NewlyMastered,
	})
}

// pathUserID extracts and parses the {userID} URL segment. On failure it
// writes a 400 response and returns false.
func (h *CardHandler) pathUserID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	raw := chi.URLParam(r, "userID")
	userID, err := uuid.Parse(raw)
	if err != nil || userID == uuid.Nil {
		log.Warn("invalid user ID in URL path", slog.String("user_id", raw))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid user ID format")
		return uuid.Nil, false
	}
	return userID, true
}
