package handler

import (
	"net/http"

	"github.com/skjutsgruppen/rideshare/backend/internal/domain"
)

// SuggestionList is the body of GET /feed/{id}/suggestions.
type SuggestionList struct {
	Data []domain.Suggestion `json:"data"`
}

// CreateSuggestionRequest is the body of POST /feed/{id}/suggestions.
type CreateSuggestionRequest struct {
	TripItemID int    `json:"tripItemId"`
	Text       string `json:"text"`
}

// ListSuggestions handles GET /feed/{id}/suggestions.
func (s *Server) ListSuggestions(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		badParam(w, err)
		return
	}

	out, err := s.suggestions.List(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err, "feed item not found")
		return
	}
	writeJSON(w, http.StatusOK, SuggestionList{Data: out})
}

// CreateSuggestion handles POST /feed/{id}/suggestions.
// The suggesting user comes from the bearer token.
func (s *Server) CreateSuggestion(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, err := pathInt(r, "id")
	if err != nil {
		badParam(w, err)
		return
	}

	var body CreateSuggestionRequest
	if !decodeBody(w, r, &body) {
		return
	}
	if body.TripItemID <= 0 {
		writeJSON(w, http.StatusUnprocessableEntity, requestBody("tripItemId is required"))
		return
	}

	created, err := s.suggestions.Create(r.Context(), user, id, body.TripItemID, body.Text)
	if err != nil {
		s.writeServiceError(w, r, err, "feed item not found")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}
