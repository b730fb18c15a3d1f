package handler

import (
	"net/http"

	"github.com/skjutsgruppen/rideshare/backend/internal/domain"
)

// CardList is the body of GET /search.
type CardList struct {
	Data []Card `json:"data"`
}

// Search handles GET /search?from=&to=&direction=&dates=&resultsStyle=&limit=.
// An unknown resultsStyle falls back to card layout.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	from, err := queryString(r, "from")
	if err != nil {
		badParam(w, err)
		return
	}
	to, err := queryString(r, "to")
	if err != nil {
		badParam(w, err)
		return
	}
	direction, err := queryString(r, "direction")
	if err != nil {
		badParam(w, err)
		return
	}
	dates, err := queryDates(r, "dates")
	if err != nil {
		badParam(w, err)
		return
	}
	style, err := queryString(r, "resultsStyle")
	if err != nil {
		badParam(w, err)
		return
	}
	limit, err := queryInt(r, "limit")
	if err != nil {
		badParam(w, err)
		return
	}

	q := domain.SearchQuery{From: from, To: to, Direction: direction, Dates: dates}
	if limit != nil {
		q.Limit = *limit
	}
	results, err := s.search.Search(r.Context(), q, domain.ParseResultsStyle(style))
	if err != nil {
		s.writeServiceError(w, r, err, "no results")
		return
	}
	writeJSON(w, http.StatusOK, CardList{Data: toCards(results)})
}
