// Package handler implements the HTTP handlers for the ride-sharing API.
// All handlers are methods on Server. Methods are split into domain-specific
// files (feed.go, search.go, report.go, etc.) but all share the same Server
// struct so they can access its dependencies.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/skjutsgruppen/rideshare/backend/internal/dispatch"
	"github.com/skjutsgruppen/rideshare/backend/internal/domain"
	"github.com/skjutsgruppen/rideshare/backend/internal/metrics"
	"github.com/skjutsgruppen/rideshare/backend/internal/middleware"
	"github.com/skjutsgruppen/rideshare/backend/internal/report"
	"github.com/skjutsgruppen/rideshare/backend/openapi"
)

// FeedServicer defines the feed operations the handler depends on.
// Defining the interface here (in the consumer package) lets handler tests
// inject a mock without touching the database or service layer.
type FeedServicer interface {
	List(ctx context.Context, p domain.PaginationParams) ([]dispatch.Variant, int64, error)
}

// SearchServicer defines the search operations the handler depends on.
type SearchServicer interface {
	Search(ctx context.Context, q domain.SearchQuery, style domain.ResultsStyle) ([]dispatch.Variant, error)
}

// AskServicer defines the ask operations the handler depends on.
type AskServicer interface {
	Create(ctx context.Context, user domain.User, in domain.AskRequest) ([]domain.FeedRecord, error)
}

// CommentServicer defines the comment operations the handler depends on.
type CommentServicer interface {
	Create(ctx context.Context, author domain.User, feedItemID int, text string) (domain.Comment, error)
	List(ctx context.Context, feedItemID int) ([]domain.Comment, error)
}

// SuggestionServicer defines the suggestion operations the handler depends on.
type SuggestionServicer interface {
	Create(ctx context.Context, author domain.User, feedItemID, tripItemID int, text string) (domain.Suggestion, error)
	List(ctx context.Context, feedItemID int) ([]domain.Suggestion, error)
}

// ReportSessions holds open report sessions. *report.Registry implements it.
type ReportSessions interface {
	Open(target domain.ReportTarget, reporter domain.User) *report.Session
	Get(id uuid.UUID, ownerID int) (*report.Session, error)
	Close(id uuid.UUID, ownerID int) error
}

// Deps are the collaborators of a Server. Nil services leave their routes
// unusable; tests set only what they exercise.
type Deps struct {
	Feed        FeedServicer
	Search      SearchServicer
	Asks        AskServicer
	Comments    CommentServicer
	Suggestions SuggestionServicer
	Reports     ReportSessions
	Log         *slog.Logger
	// SubmitWait bounds how long a report submission blocks before the
	// request returns 202. Defaults to 5s.
	SubmitWait time.Duration
}

// Server serves every API endpoint.
type Server struct {
	feed        FeedServicer
	search      SearchServicer
	asks        AskServicer
	comments    CommentServicer
	suggestions SuggestionServicer
	reports     ReportSessions
	log         *slog.Logger
	submitWait  time.Duration
}

// NewServer constructs the Server with all its dependencies.
func NewServer(d Deps) *Server {
	if d.Log == nil {
		d.Log = slog.Default()
	}
	if d.SubmitWait <= 0 {
		d.SubmitWait = defaultSubmitWait
	}
	return &Server{
		feed:        d.Feed,
		search:      d.Search,
		asks:        d.Asks,
		comments:    d.Comments,
		suggestions: d.Suggestions,
		reports:     d.Reports,
		log:         d.Log,
		submitWait:  d.SubmitWait,
	}
}

// Routes returns the API router. auth guards every route that acts on
// behalf of a user; limit additionally throttles opening and submitting reports.
func (s *Server) Routes(auth, limit func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", s.GetOpenAPI)
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	r.Get("/feed", s.ListFeed)
	r.Get("/feed/{id}/comments", s.ListComments)
	r.Get("/feed/{id}/suggestions", s.ListSuggestions)
	r.Get("/search", s.Search)

	r.Group(func(r chi.Router) {
		r.Use(auth)
		r.Post("/asks", s.CreateAsk)
		r.Post("/feed/{id}/comments", s.CreateComment)
		r.Post("/feed/{id}/suggestions", s.CreateSuggestion)

		r.Route("/reports/sessions", func(r chi.Router) {
			r.With(limit).Post("/", s.OpenReportSession)
			r.Get("/{id}", s.GetReportSession)
			r.Delete("/{id}", s.CloseReportSession)
			r.With(limit).Post("/{id}/submit", s.SubmitReportSession)
		})
	})
	return r
}

// GetOpenAPI handles GET /openapi.yaml.
func (s *Server) GetOpenAPI(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(openapi.OpenAPI)
}

// currentUser returns the authenticated user, writing 401 when there is none.
func currentUser(w http.ResponseWriter, r *http.Request) (domain.User, bool) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: ErrorDetail{Code: "unauthorized", Message: "authentication required"}})
	}
	return user, ok
}
