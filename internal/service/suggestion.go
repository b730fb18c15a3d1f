package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/skjutsgruppen/rideshare/backend/internal/domain"
	"github.com/skjutsgruppen/rideshare/backend/internal/repo"
)

// SuggestionService lets users point a ride request at an offered ride.
type SuggestionService struct {
	feed        repo.FeedRepo
	suggestions repo.SuggestionRepo
}

// NewSuggestionService constructs a SuggestionService.
func NewSuggestionService(feed repo.FeedRepo, suggestions repo.SuggestionRepo) *SuggestionService {
	return &SuggestionService{feed: feed, suggestions: suggestions}
}

// Create suggests the offered ride tripItemID for the ride request feedItemID
// on behalf of author. The note is optional.
// Returns domain.ErrNotFound if the request does not exist and
// domain.ErrValidation if either item is of the wrong kind.
func (s *SuggestionService) Create(ctx context.Context, author domain.User, feedItemID, tripItemID int, text string) (domain.Suggestion, error) {
	text = strings.TrimSpace(text)
	if len([]rune(text)) > maxCommentLength {
		return domain.Suggestion{}, fmt.Errorf("%w: text must be at most %d characters", domain.ErrValidation, maxCommentLength)
	}
	if tripItemID == feedItemID {
		return domain.Suggestion{}, fmt.Errorf("%w: a ride request cannot suggest itself", domain.ErrValidation)
	}

	ask, err := s.feed.GetByID(ctx, feedItemID)
	if err != nil {
		return domain.Suggestion{}, fmt.Errorf("service.SuggestionService.Create: %w", err)
	}
	if !isTrip(ask, domain.TripTypeWanted) {
		return domain.Suggestion{}, fmt.Errorf("%w: only ride requests take suggestions", domain.ErrValidation)
	}

	offer, err := s.feed.GetByID(ctx, tripItemID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return domain.Suggestion{}, fmt.Errorf("%w: suggested ride does not exist", domain.ErrValidation)
	case err != nil:
		return domain.Suggestion{}, fmt.Errorf("service.SuggestionService.Create: %w", err)
	case !isTrip(offer, domain.TripTypeOffer):
		return domain.Suggestion{}, fmt.Errorf("%w: only offered rides can be suggested", domain.ErrValidation)
	}

	sg, err := s.suggestions.Create(ctx, domain.Suggestion{
		FeedItemID: feedItemID,
		TripItemID: tripItemID,
		Text:       text,
		User:       &author,
	})
	if err != nil {
		return domain.Suggestion{}, fmt.Errorf("service.SuggestionService.Create: %w", err)
	}
	return sg, nil
}

// List returns the suggestions under a ride request, oldest first.
// Returns domain.ErrNotFound if the feed item does not exist.
func (s *SuggestionService) List(ctx context.Context, feedItemID int) ([]domain.Suggestion, error) {
	out, err := s.suggestions.ListByFeedItem(ctx, feedItemID)
	if err != nil {
		return nil, fmt.Errorf("service.SuggestionService.List: %w", err)
	}
	if out == nil {
		return []domain.Suggestion{}, nil
	}
	return out, nil
}

func isTrip(rec domain.FeedRecord, tt domain.TripType) bool {
	return rec.Feedable == domain.FeedableTrip && rec.Trip != nil && rec.Trip.Type == tt
}
