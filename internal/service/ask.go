package service

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/skjutsgruppen/rideshare/backend/internal/domain"
	"github.com/skjutsgruppen/rideshare/backend/internal/repo"
)

// AskService publishes ride requests to the feed.
type AskService struct {
	feed repo.FeedRepo
}

// NewAskService constructs an AskService backed by the provided FeedRepo.
func NewAskService(r repo.FeedRepo) *AskService {
	return &AskService{feed: r}
}

// Create publishes one wanted trip per date on behalf of user.
// The earliest date is stored first; later dates point at it via ParentID.
// An ask never offers seats, so Seats is always 0.
// All trips are stored in one transaction: either every date is published
// or none is.
// Returns domain.ErrValidation if input violates business rules.
func (s *AskService) Create(ctx context.Context, user domain.User, in domain.AskRequest) ([]domain.FeedRecord, error) {
	if err := validateAsk(in); err != nil {
		return nil, err
	}

	dates := slices.Clone(in.Dates)
	slices.SortFunc(dates, func(a, b time.Time) int { return a.Compare(b) })
	dates = slices.CompactFunc(dates, func(a, b time.Time) bool { return a.Equal(b) })

	var created []domain.FeedRecord
	err := s.feed.InTx(ctx, func(feed repo.FeedRepo) error {
		created = make([]domain.FeedRecord, 0, len(dates))
		var parentID *int
		for _, d := range dates {
			trip := domain.Trip{
				Type:        domain.TripTypeWanted,
				Description: strings.TrimSpace(in.Description),
				Direction:   strings.TrimSpace(in.Direction),
				TripStart:   in.TripStart,
				TripEnd:     in.TripEnd,
				Date:        d,
				Time:        in.Time,
				Seats:       0,
				ParentID:    parentID,
				ReturnTrip:  in.ReturnTrip,
				User:        &user,
			}
			rec, err := feed.Create(ctx, domain.FeedRecord{Feedable: domain.FeedableTrip, Trip: &trip})
			if err != nil {
				return err
			}
			if parentID == nil && rec.Trip != nil {
				id := rec.Trip.ID
				parentID = &id
			}
			created = append(created, rec)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("service.AskService.Create: %w", err)
	}
	return created, nil
}

// validateAsk enforces the rules for a ride request.
//   - Both endpoints must be known, by place name or by direction.
//   - At least one date is required.
func validateAsk(in domain.AskRequest) error {
	endpoints := domain.Trip{Direction: strings.TrimSpace(in.Direction), TripStart: in.TripStart, TripEnd: in.TripEnd}
	start, end := endpoints.Endpoints()
	if strings.TrimSpace(start) == "" {
		return fmt.Errorf("%w: start place or direction is required", domain.ErrValidation)
	}
	if strings.TrimSpace(end) == "" {
		return fmt.Errorf("%w: end place or direction is required", domain.ErrValidation)
	}
	if len(in.Dates) == 0 {
		return fmt.Errorf("%w: at least one date is required", domain.ErrValidation)
	}
	for _, d := range in.Dates {
		if d.IsZero() {
			return fmt.Errorf("%w: dates must not be empty", domain.ErrValidation)
		}
	}
	return nil
}
