package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/skjutsgruppen/rideshare/backend/internal/dispatch"
	"github.com/skjutsgruppen/rideshare/backend/internal/domain"
	"github.com/skjutsgruppen/rideshare/backend/internal/metrics"
	"github.com/skjutsgruppen/rideshare/backend/internal/repo"
)

const listingSearch = "search"

// SearchService runs route searches and dispatches the results.
type SearchService struct {
	search repo.SearchRepo
	log    *slog.Logger
}

// NewSearchService constructs a SearchService backed by the provided SearchRepo.
func NewSearchService(r repo.SearchRepo, log *slog.Logger) *SearchService {
	return &SearchService{search: r, log: log}
}

// Search finds trips, groups and public transport links between from and to
// and renders them in the given results style. Direction and dates narrow
// the trips further.
// Returns domain.ErrValidation when from, to and direction are all blank.
// Always returns a non-nil slice.
func (s *SearchService) Search(ctx context.Context, q domain.SearchQuery, style domain.ResultsStyle) ([]dispatch.Variant, error) {
	q.From = strings.TrimSpace(q.From)
	q.To = strings.TrimSpace(q.To)
	q.Direction = strings.TrimSpace(q.Direction)
	if q.From == "" && q.To == "" && q.Direction == "" {
		return nil, fmt.Errorf("%w: from, to or direction is required", domain.ErrValidation)
	}
	q.Limit = domain.ClampLimit(q.Limit)

	records, err := s.search.Search(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("service.SearchService.Search: %w", err)
	}

	results := make([]dispatch.Variant, 0, len(records))
	for _, rec := range records {
		v, ok := dispatch.Search(rec, style, searchActions(rec))
		if !ok {
			metrics.RecordCardSkipped(listingSearch)
			s.log.DebugContext(ctx, "search record has no card",
				"id", rec.ID,
				"type", rec.Type,
				"style", style,
			)
			continue
		}
		metrics.RecordCard(listingSearch, string(v.Kind()))
		results = append(results, v)
	}
	return results, nil
}

func searchActions(rec domain.SearchRecord) dispatch.Handlers {
	switch {
	case rec.Type.Valid():
		return actions(string(domain.FeedableTrip), rec.ID)
	case rec.URL != "":
		return dispatch.Handlers{}
	}
	return actions(string(domain.FeedableGroup), rec.ID)
}
