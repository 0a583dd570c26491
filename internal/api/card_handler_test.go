package api_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wordloop/srs-api/internal/api"
	"github.com/wordloop/srs-api/internal/domain"
	"github.com/wordloop/srs-api/internal/domain/srs"
	"github.com/wordloop/srs-api/internal/events"
	"github.com/wordloop/srs-api/internal/mocks"
	"github.com/wordloop/srs-api/internal/service"
	"github.com/wordloop/srs-api/internal/service/review"
)

type apiFixture struct {
	router *chi.Mux
	cards  *mocks.MockCardStore
	users  *mocks.MockUserStore
	wrong  *mocks.MockWrongAnswerStore
	now    time.Time
	userID uuid.UUID
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()

	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	clk := mocks.NewMockClock(now)

	f := &apiFixture{
		cards:  mocks.NewMockCardStore(),
		users:  mocks.NewMockUserStore(),
		wrong:  mocks.NewMockWrongAnswerStore(),
		now:    now,
		userID: uuid.New(),
	}
	f.users.AddUser(&domain.User{ID: f.userID, NotificationTime: "09:00"})

	cardService, err := service.NewCardService(f.cards, f.users, f.wrong, clk, log)
	require.NoError(t, err)

	policy, err := srs.NewPolicy(srs.StrategyWaiting, nil)
	require.NoError(t, err)
	reviewService := review.NewService(
		mocks.NewTxDB(), f.cards, f.users, f.wrong, policy,
		events.NewInMemoryEventEmitter(log), clk, log)

	handler := api.NewCardHandler(cardService, reviewService, clk, log)

	r := chi.NewRouter()
	r.Route("/api/users/{userID}", func(r chi.Router) {
		r.Post("/cards", handler.CreateCard)
		r.Get("/cards/due", handler.GetDueCards)
		r.Get("/cards/stats", handler.GetCardStats)
		r.Post("/cards/{id}/review", handler.SubmitReview)
		r.Get("/overdue", handler.GetOverdueStatus)
		r.Get("/wrong-answers", handler.ListWrongAnswers)
	})
	f.router = r
	return f
}

func (f *apiFixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func (f *apiFixture) addDueCard(t *testing.T, itemID int64) *domain.Card {
	t.Helper()
	card, err := domain.NewCard(f.userID, domain.ItemTypeVocab, itemID, f.now.Add(-48*time.Hour))
	require.NoError(t, err)
	f.cards.AddCard(card)
	return card
}

func TestCreateCardEndpoint(t *testing.T) {
	t.Parallel()
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodPost, "/api/users/"+f.userID.String()+"/cards",
		`{"item_type":"vocab","item_id":42}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp api.CardResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, f.userID.String(), resp.UserID)
	assert.Equal(t, "vocab", resp.ItemType)
	assert.Equal(t, int64(42), resp.ItemID)
	assert.Equal(t, 0, resp.Stage)
	assert.Equal(t, "ready", resp.State)

	// Creating the same item again conflicts.
	rec = f.do(t, http.MethodPost, "/api/users/"+f.userID.String()+"/cards",
		`{"item_type":"vocab","item_id":42}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCreateCardEndpointBadRequests(t *testing.T) {
	t.Parallel()
	f := newAPIFixture(t)
	base := "/api/users/" + f.userID.String() + "/cards"

	testCases := []struct {
		name string
		path string
		body string
	}{
		{"malformed body", base, `{"item_type":`},
		{"missing item type", base, `{"item_id":42}`},
		{"zero item id", base, `{"item_type":"vocab"}`},
		{"bad user id", "/api/users/not-a-uuid/cards", `{"item_type":"vocab","item_id":1}`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec := f.do(t, http.MethodPost, tc.path, tc.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestGetDueCardsEndpoint(t *testing.T) {
	t.Parallel()
	f := newAPIFixture(t)
	f.addDueCard(t, 1)
	f.addDueCard(t, 2)

	rec := f.do(t, http.MethodGet, "/api/users/"+f.userID.String()+"/cards/due", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp []api.CardResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp, 2)

	rec = f.do(t, http.MethodGet, "/api/users/"+f.userID.String()+"/cards/due?limit=1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp, 1)

	rec = f.do(t, http.MethodGet, "/api/users/"+f.userID.String()+"/cards/due?limit=-1", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetCardStatsEndpoint(t *testing.T) {
	t.Parallel()
	f := newAPIFixture(t)
	f.addDueCard(t, 1)

	rec := f.do(t, http.MethodGet, "/api/users/"+f.userID.String()+"/cards/stats", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var stats domain.CardStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 1, stats.New)
	assert.Equal(t, 1, stats.Total)
}

func TestGetOverdueStatusEndpoint(t *testing.T) {
	t.Parallel()
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodGet, "/api/users/"+f.userID.String()+"/overdue", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp api.OverdueStatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.HasOverdueCards)
}

func TestSubmitReviewEndpoint(t *testing.T) {
	t.Parallel()
	f := newAPIFixture(t)
	card := f.addDueCard(t, 1)
	path := "/api/users/" + f.userID.String() + "/cards/" + card.ID.String() + "/review"

	rec := f.do(t, http.MethodPost, path, `{"correct":true,"difficulty":"easy"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp api.SubmitReviewResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "applied", resp.Status)
	assert.Equal(t, 2, resp.Card.Stage)
	assert.Equal(t, "waiting", resp.Card.State)
	assert.False(t, resp.NewlyMastered)
}

func TestSubmitReviewEndpointErrors(t *testing.T) {
	t.Parallel()
	f := newAPIFixture(t)
	card := f.addDueCard(t, 1)

	otherUser := uuid.New()
	f.users.AddUser(&domain.User{ID: otherUser, NotificationTime: "09:00"})

	reviewPath := func(userID uuid.UUID, cardID string) string {
		return "/api/users/" + userID.String() + "/cards/" + cardID + "/review"
	}

	// Missing the correct field fails validation.
	rec := f.do(t, http.MethodPost, reviewPath(f.userID, card.ID.String()), `{"difficulty":"easy"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Unknown difficulty fails validation.
	rec = f.do(t, http.MethodPost, reviewPath(f.userID, card.ID.String()), `{"correct":true,"difficulty":"brutal"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Malformed card ID.
	rec = f.do(t, http.MethodPost, reviewPath(f.userID, "not-a-uuid"), `{"correct":true}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Unknown card.
	rec = f.do(t, http.MethodPost, reviewPath(f.userID, uuid.New().String()), `{"correct":true}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Someone else's card.
	rec = f.do(t, http.MethodPost, reviewPath(otherUser, card.ID.String()), `{"correct":true}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestListWrongAnswersEndpoint(t *testing.T) {
	t.Parallel()
	f := newAPIFixture(t)
	card := f.addDueCard(t, 1)

	wa, err := domain.NewWrongAnswer(card, 1, f.now.Add(-time.Hour))
	require.NoError(t, err)
	require.NoError(t, f.wrong.Create(context.Background(), wa))

	rec := f.do(t, http.MethodGet, "/api/users/"+f.userID.String()+"/wrong-answers", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp []api.WrongAnswerResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 1)
	assert.Equal(t, card.ID.String(), resp[0].CardID)
	assert.Equal(t, 1, resp[0].Attempt)
}
