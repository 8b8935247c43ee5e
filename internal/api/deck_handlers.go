package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/studydeck/studydeck/internal/models"
	"github.com/studydeck/studydeck/internal/services"
)

func (s *Server) handleListDecks(w http.ResponseWriter, r *http.Request) {
	profile := profileFromContext(r.Context())

	filter := models.DeckFilter{
		ProfileID:  profile.ID,
		Title:      r.URL.Query().Get("title"),
		PublicOnly: r.URL.Query().Get("public") == "true",
	}

	decks, err := s.DeckService.ListDecks(r.Context(), filter)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, map[string]any{"decks": decks})
}

func (s *Server) handleGetDeck(w http.ResponseWriter, r *http.Request) {
	deck, err := s.DeckService.GetDeck(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, deck)
}

func (s *Server) handleCreateDeck(w http.ResponseWriter, r *http.Request) {
	profile := profileFromContext(r.Context())

	var in services.CreateDeckInput
	if err := decodeJSON(r, &in); err != nil {
		handleError(w, r, err)
		return
	}

	deck, err := s.DeckService.CreateDeck(r.Context(), profile.ID, in)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusCreated, deck)
}

func (s *Server) handleUpdateDeck(w http.ResponseWriter, r *http.Request) {
	profile := profileFromContext(r.Context())

	var in services.UpdateDeckInput
	if err := decodeJSON(r, &in); err != nil {
		handleError(w, r, err)
		return
	}

	deck, err := s.DeckService.UpdateDeck(r.Context(), profile.ID, chi.URLParam(r, "id"), in)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, deck)
}

func (s *Server) handleDeleteDeck(w http.ResponseWriter, r *http.Request) {
	profile := profileFromContext(r.Context())

	if err := s.DeckService.DeleteDeck(r.Context(), profile.ID, chi.URLParam(r, "id")); err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusNoContent, nil)
}
