package handler

import (
	"net/http"

	"github.com/skjutsgruppen/rideshare/backend/internal/domain"
)

// CommentList is the body of GET /feed/{id}/comments.
type CommentList struct {
	Data []domain.Comment `json:"data"`
}

// CreateCommentRequest is the body of POST /feed/{id}/comments.
type CreateCommentRequest struct {
	Text string `json:"text"`
}

// ListComments handles GET /feed/{id}/comments.
func (s *Server) ListComments(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		badParam(w, err)
		return
	}

	comments, err := s.comments.List(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err, "feed item not found")
		return
	}
	writeJSON(w, http.StatusOK, CommentList{Data: comments})
}

// CreateComment handles POST /feed/{id}/comments.
func (s *Server) CreateComment(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, err := pathInt(r, "id")
	if err != nil {
		badParam(w, err)
		return
	}

	var body CreateCommentRequest
	if !decodeBody(w, r, &body) {
		return
	}

	created, err := s.comments.Create(r.Context(), user, id, body.Text)
	if err != nil {
		s.writeServiceError(w, r, err, "feed item not found")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}
