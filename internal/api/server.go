package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/studydeck/studydeck/internal/db"
	"github.com/studydeck/studydeck/internal/services"
)

// Server holds the HTTP handlers' dependencies.
type Server struct {
	DB             *db.DB
	ProfileService services.ProfileService
	DeckService    services.DeckService
	CardService    services.CardService
	ReviewService  services.ReviewService
	StatsService   services.StatsService
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)
	r.Use(securityHeadersMiddleware)

	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)

	r.Route("/api", func(r chi.Router) {
		// Profile selection is open; everything else needs a profile cookie.
		r.Get("/profiles", s.handleListProfiles)
		r.Post("/profiles", s.handleCreateProfile)
		r.Post("/profiles/{id}/select", s.handleSelectProfile)
		r.Delete("/profiles/{id}", s.handleDeleteProfile)

		r.Group(func(r chi.Router) {
			r.Use(s.profileMiddleware)

			r.Get("/decks", s.handleListDecks)
			r.Post("/decks", s.handleCreateDeck)
			r.Get("/decks/{id}", s.handleGetDeck)
			r.Patch("/decks/{id}", s.handleUpdateDeck)
			r.Delete("/decks/{id}", s.handleDeleteDeck)

			r.Get("/decks/{id}/cards", s.handleListCards)
			r.Post("/decks/{id}/cards", s.handleCreateCard)
			r.Get("/decks/{id}/study/next", s.handleNextCard)
			r.Get("/decks/{id}/study/queue", s.handleStudyQueue)

			r.Get("/cards/{id}", s.handleGetCard)
			r.Patch("/cards/{id}", s.handleUpdateCard)
			r.Delete("/cards/{id}", s.handleDeleteCard)
			r.Get("/cards/{id}/preview", s.handlePreview)
			r.Post("/cards/{id}/review", s.handleReviewCard)

			r.Get("/stats", s.handleStats)
		})
	})

	return r
}
