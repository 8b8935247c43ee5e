package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/studydeck/studydeck/internal/logger"
	"github.com/studydeck/studydeck/internal/services"
)

func (s *Server) handleNextCard(w http.ResponseWriter, r *http.Request) {
	profile := profileFromContext(r.Context())

	card, err := s.ReviewService.NextCard(r.Context(), profile.ID, chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	if card == nil {
		logger.FromContext(r.Context()).Debug("no cards due for review")
		respondJSON(w, r, http.StatusNoContent, nil)
		return
	}
	respondJSON(w, r, http.StatusOK, card)
}

func (s *Server) handleStudyQueue(w http.ResponseWriter, r *http.Request) {
	profile := profileFromContext(r.Context())

	queue, err := s.ReviewService.StudyQueue(r.Context(), profile.ID, chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, map[string]any{"cards": queue})
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	profile := profileFromContext(r.Context())

	preview, err := s.ReviewService.Preview(r.Context(), profile.ID, chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, preview)
}

func (s *Server) handleReviewCard(w http.ResponseWriter, r *http.Request) {
	profile := profileFromContext(r.Context())
	cardID := chi.URLParam(r, "id")

	var in services.SubmitReviewInput
	if err := decodeJSON(r, &in); err != nil {
		handleError(w, r, err)
		return
	}

	log := logger.FromContext(r.Context()).WithFields(map[string]any{
		"card_id": cardID,
		"rating":  in.Rating,
	})
	log.Debug("reviewing card")

	review, err := s.ReviewService.SubmitReview(r.Context(), profile.ID, cardID, in)
	if err != nil {
		handleError(w, r, err)
		return
	}

	log.Info("card reviewed successfully")
	respondJSON(w, r, http.StatusOK, review)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	profile := profileFromContext(r.Context())

	stats, err := s.StatsService.StudyStats(r.Context(), profile.ID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, stats)
}
