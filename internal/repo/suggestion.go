package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/skjutsgruppen/rideshare/backend/internal/domain"
)

// SuggestionRepo defines the persistence operations for ride suggestions.
type SuggestionRepo interface {
	// Create stores a suggestion and returns it with the suggested trip attached.
	// Returns domain.ErrNotFound if either feed item does not exist.
	Create(ctx context.Context, sg domain.Suggestion) (domain.Suggestion, error)

	// ListByFeedItem returns the suggestions made under a ride request, oldest first.
	// Returns domain.ErrNotFound if the feed item does not exist.
	ListByFeedItem(ctx context.Context, feedItemID int) ([]domain.Suggestion, error)
}

type pgSuggestionRepo struct {
	db db
}

// NewSuggestionRepo constructs a SuggestionRepo backed by the provided db connection.
func NewSuggestionRepo(db db) SuggestionRepo {
	return &pgSuggestionRepo{db: db}
}

// Create inserts the suggestion and joins the suggested trip in one statement.
func (r *pgSuggestionRepo) Create(ctx context.Context, sg domain.Suggestion) (domain.Suggestion, error) {
	const q = `
		WITH ins AS (
			INSERT INTO suggestions (feed_item_id, trip_item_id, author, text)
			VALUES (@feed_item_id, @trip_item_id, @author, @text)
			RETURNING id, feed_item_id, trip_item_id, author, text, created_at
		)
		SELECT ins.id, ins.feed_item_id, ins.trip_item_id, fi.trip, ins.author, ins.text, ins.created_at
		FROM ins
		JOIN feed_items fi ON fi.id = ins.trip_item_id`

	args := pgx.NamedArgs{
		"feed_item_id": sg.FeedItemID,
		"trip_item_id": sg.TripItemID,
		"author":       sg.User,
		"text":         sg.Text,
	}

	result, err := scanSuggestion(r.db.QueryRow(ctx, q, args))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			return domain.Suggestion{}, fmt.Errorf("repo.SuggestionRepo.Create: %w", domain.ErrNotFound)
		}
		return domain.Suggestion{}, fmt.Errorf("repo.SuggestionRepo.Create: %w", err)
	}
	return result, nil
}

// ListByFeedItem returns the suggestions of a ride request ordered by created_at ascending.
func (r *pgSuggestionRepo) ListByFeedItem(ctx context.Context, feedItemID int) ([]domain.Suggestion, error) {
	const q = `
		SELECT s.id, s.feed_item_id, s.trip_item_id, fi.trip, s.author, s.text, s.created_at
		FROM suggestions s
		JOIN feed_items fi ON fi.id = s.trip_item_id
		WHERE s.feed_item_id = @feed_item_id
		ORDER BY s.created_at, s.id`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"feed_item_id": feedItemID})
	if err != nil {
		return nil, fmt.Errorf("repo.SuggestionRepo.ListByFeedItem: %w", err)
	}
	defer rows.Close()

	out := []domain.Suggestion{}
	for rows.Next() {
		sg, err := scanSuggestion(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.SuggestionRepo.ListByFeedItem: scan: %w", err)
		}
		out = append(out, sg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.SuggestionRepo.ListByFeedItem: rows: %w", err)
	}
	if len(out) > 0 {
		return out, nil
	}

	ok, err := feedItemExists(ctx, r.db, feedItemID)
	if err != nil {
		return nil, fmt.Errorf("repo.SuggestionRepo.ListByFeedItem: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("repo.SuggestionRepo.ListByFeedItem: %w", domain.ErrNotFound)
	}
	return out, nil
}

func scanSuggestion(s scanner) (domain.Suggestion, error) {
	var (
		sg           domain.Suggestion
		trip, author []byte
	)
	if err := s.Scan(&sg.ID, &sg.FeedItemID, &sg.TripItemID, &trip, &author, &sg.Text, &sg.Date); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Suggestion{}, domain.ErrNotFound
		}
		return domain.Suggestion{}, err
	}
	if trip != nil {
		sg.Trip = &domain.Trip{}
		if err := json.Unmarshal(trip, sg.Trip); err != nil {
			return domain.Suggestion{}, fmt.Errorf("decode trip: %w", err)
		}
		if sg.Trip.ID == 0 {
			sg.Trip.ID = sg.TripItemID
		}
	}
	sg.User = &domain.User{}
	if err := json.Unmarshal(author, sg.User); err != nil {
		return domain.Suggestion{}, fmt.Errorf("decode author: %w", err)
	}
	return sg, nil
}
