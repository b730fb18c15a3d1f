package handler

import (
	"net/http"

	"github.com/skjutsgruppen/rideshare/backend/internal/domain"
)

// Pagination describes the page returned by a list endpoint.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
}

// CardPage is the body of GET /feed.
type CardPage struct {
	Data       []Card     `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// ListFeed handles GET /feed.
// Supports ?page= and ?limit= query parameters (defaults: page=1, limit=20, max=100).
func (s *Server) ListFeed(w http.ResponseWriter, r *http.Request) {
	page, err := queryInt(r, "page")
	if err != nil {
		badParam(w, err)
		return
	}
	limit, err := queryInt(r, "limit")
	if err != nil {
		badParam(w, err)
		return
	}

	params := domain.NewPaginationParams(page, limit)
	cards, total, err := s.feed.List(r.Context(), params)
	if err != nil {
		s.writeServiceError(w, r, err, "feed not found")
		return
	}

	writeJSON(w, http.StatusOK, CardPage{
		Data: toCards(cards),
		Pagination: Pagination{
			Page:  params.Page,
			Limit: params.Limit,
			Total: int(total),
		},
	})
}
