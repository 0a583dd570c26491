package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/wordloop/srs-api/internal/api"
	apiMiddleware "github.com/wordloop/srs-api/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes
// and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	cardHandler := api.NewCardHandler(app.cardService, app.reviewService, app.clock, app.logger)

	r.Route("/api", func(r chi.Router) {
		r.Route("/users/{userID}", func(r chi.Router) {
			r.Post("/cards", cardHandler.CreateCard)
			r.Get("/cards/due", cardHandler.GetDueCards)
			r.Get("/cards/stats", cardHandler.GetCardStats)
			r.Post("/cards/{id}/review", cardHandler.SubmitReview)
			r.Get("/overdue", cardHandler.GetOverdueStatus)
			r.Get("/wrong-answers", cardHandler.ListWrongAnswers)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}
