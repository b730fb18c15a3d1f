package handler

import (
	"net/http"

	"github.com/skjutsgruppen/rideshare/backend/internal/domain"
)

// TripList is the body of POST /asks.
type TripList struct {
	Data []domain.Trip `json:"data"`
}

// CreateAsk handles POST /asks. The asking user comes from the bearer token.
func (s *Server) CreateAsk(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var body domain.AskRequest
	if !decodeBody(w, r, &body) {
		return
	}

	created, err := s.asks.Create(r.Context(), user, body)
	if err != nil {
		s.writeServiceError(w, r, err, "ask not found")
		return
	}

	trips := make([]domain.Trip, 0, len(created))
	for _, rec := range created {
		if rec.Trip != nil {
			trips = append(trips, *rec.Trip)
		}
	}
	writeJSON(w, http.StatusCreated, TripList{Data: trips})
}
