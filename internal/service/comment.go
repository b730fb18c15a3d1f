package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/skjutsgruppen/rideshare/backend/internal/domain"
	"github.com/skjutsgruppen/rideshare/backend/internal/repo"
)

// maxCommentLength bounds a comment in runes.
const maxCommentLength = 2000

// CommentService implements business logic for comments under feed items.
type CommentService struct {
	comments repo.CommentRepo
}

// NewCommentService constructs a CommentService backed by the provided CommentRepo.
func NewCommentService(r repo.CommentRepo) *CommentService {
	return &CommentService{comments: r}
}

// Create posts text under the feed item on behalf of author.
// Returns domain.ErrValidation for blank or oversized text and
// domain.ErrNotFound if the feed item does not exist.
func (s *CommentService) Create(ctx context.Context, author domain.User, feedItemID int, text string) (domain.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return domain.Comment{}, fmt.Errorf("%w: text is required", domain.ErrValidation)
	}
	if len([]rune(text)) > maxCommentLength {
		return domain.Comment{}, fmt.Errorf("%w: text must be at most %d characters", domain.ErrValidation, maxCommentLength)
	}

	c, err := s.comments.Create(ctx, domain.Comment{FeedItemID: feedItemID, Text: text, User: &author})
	if err != nil {
		return domain.Comment{}, fmt.Errorf("service.CommentService.Create: %w", err)
	}
	return c, nil
}

// List returns the comments of a feed item, oldest first.
// Returns domain.ErrNotFound if the feed item does not exist.
// Otherwise always returns a non-nil slice so callers can safely range over it.
func (s *CommentService) List(ctx context.Context, feedItemID int) ([]domain.Comment, error) {
	comments, err := s.comments.ListByFeedItem(ctx, feedItemID)
	if err != nil {
		return nil, fmt.Errorf("service.CommentService.List: %w", err)
	}
	if comments == nil {
		return []domain.Comment{}, nil
	}
	return comments, nil
}
