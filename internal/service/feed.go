// Package service contains the business logic for the ride-sharing API.
// Services validate inputs, enforce business rules, and orchestrate repo calls.
// No SQL lives here: services depend on repo interfaces, not implementations.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/skjutsgruppen/rideshare/backend/internal/dispatch"
	"github.com/skjutsgruppen/rideshare/backend/internal/domain"
	"github.com/skjutsgruppen/rideshare/backend/internal/metrics"
	"github.com/skjutsgruppen/rideshare/backend/internal/repo"
)

const listingFeed = "feed"

// FeedService turns stored feed entries into presentation variants.
type FeedService struct {
	feed repo.FeedRepo
	log  *slog.Logger
}

// NewFeedService constructs a FeedService backed by the provided FeedRepo.
func NewFeedService(r repo.FeedRepo, log *slog.Logger) *FeedService {
	return &FeedService{feed: r, log: log}
}

// List returns one page of the home feed as cards, newest first.
// Records that match no variant are dropped from the page; total still
// counts them, since it describes the stored feed rather than the page.
// The page size follows domain.ClampLimit. Always returns a non-nil slice.
func (s *FeedService) List(ctx context.Context, p domain.PaginationParams) ([]dispatch.Variant, int64, error) {
	if p.Page < 1 {
		p.Page = 1
	}
	p.Limit = domain.ClampLimit(p.Limit)

	records, total, err := s.feed.ListPaged(ctx, p)
	if err != nil {
		return nil, 0, fmt.Errorf("service.FeedService.List: %w", err)
	}

	cards := make([]dispatch.Variant, 0, len(records))
	for _, rec := range records {
		v, ok := dispatch.Feed(rec, feedActions(rec))
		if !ok {
			metrics.RecordCardSkipped(listingFeed)
			s.log.DebugContext(ctx, "feed record has no card",
				"id", rec.ID,
				"feedable", rec.Feedable,
			)
			continue
		}
		metrics.RecordCard(listingFeed, string(v.Kind()))
		cards = append(cards, v)
	}
	return cards, total, nil
}

// feedActions builds the press and share actions for a feed entry.
// Actions are "open:<kind>:<id>" and "share:<kind>:<id>".
func feedActions(rec domain.FeedRecord) dispatch.Handlers {
	switch {
	case rec.Trip != nil:
		return actions(string(domain.FeedableTrip), rec.Trip.ID)
	case rec.Group != nil:
		return actions(string(domain.FeedableGroup), rec.Group.ID)
	}
	return dispatch.Handlers{}
}

func actions(kind string, id int) dispatch.Handlers {
	return dispatch.Handlers{
		OnPress:      dispatch.Action(fmt.Sprintf("open:%s:%d", kind, id)),
		OnSharePress: dispatch.Action(fmt.Sprintf("share:%s:%d", kind, id)),
	}
}
