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

// pgForeignKeyViolation is the SQLSTATE raised when a referenced row is missing.
const pgForeignKeyViolation = "23503"

// CommentRepo defines the persistence operations for comments on feed items.
type CommentRepo interface {
	// Create inserts a comment and returns it with its DB-generated id and date.
	// Returns domain.ErrNotFound if the feed item does not exist.
	Create(ctx context.Context, c domain.Comment) (domain.Comment, error)

	// ListByFeedItem returns the comments of a feed item, oldest first.
	// Returns domain.ErrNotFound if the feed item does not exist.
	ListByFeedItem(ctx context.Context, feedItemID int) ([]domain.Comment, error)
}

// pgCommentRepo is the Postgres implementation of CommentRepo.
type pgCommentRepo struct {
	db db
}

// NewCommentRepo constructs a CommentRepo backed by the provided db connection.
func NewCommentRepo(db db) CommentRepo {
	return &pgCommentRepo{db: db}
}

// Create inserts a comment. The author is stored as a JSONB snapshot.
func (r *pgCommentRepo) Create(ctx context.Context, c domain.Comment) (domain.Comment, error) {
	const q = `
		INSERT INTO comments (feed_item_id, author, text)
		VALUES (@feed_item_id, @author, @text)
		RETURNING id, feed_item_id, author, text, created_at`

	args := pgx.NamedArgs{
		"feed_item_id": c.FeedItemID,
		"author":       c.User,
		"text":         c.Text,
	}

	result, err := scanComment(r.db.QueryRow(ctx, q, args))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			return domain.Comment{}, fmt.Errorf("repo.CommentRepo.Create: %w", domain.ErrNotFound)
		}
		return domain.Comment{}, fmt.Errorf("repo.CommentRepo.Create: %w", err)
	}
	return result, nil
}

// ListByFeedItem returns all comments of a feed item ordered by created_at ascending.
func (r *pgCommentRepo) ListByFeedItem(ctx context.Context, feedItemID int) ([]domain.Comment, error) {
	const q = `
		SELECT id, feed_item_id, author, text, created_at
		FROM comments
		WHERE feed_item_id = @feed_item_id
		ORDER BY created_at, id`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"feed_item_id": feedItemID})
	if err != nil {
		return nil, fmt.Errorf("repo.CommentRepo.ListByFeedItem: %w", err)
	}
	defer rows.Close()

	comments := []domain.Comment{}
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.CommentRepo.ListByFeedItem: scan: %w", err)
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.CommentRepo.ListByFeedItem: rows: %w", err)
	}
	if len(comments) > 0 {
		return comments, nil
	}

	ok, err := feedItemExists(ctx, r.db, feedItemID)
	if err != nil {
		return nil, fmt.Errorf("repo.CommentRepo.ListByFeedItem: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("repo.CommentRepo.ListByFeedItem: %w", domain.ErrNotFound)
	}
	return comments, nil
}

// feedItemExists reports whether a feed item with the given id is stored.
func feedItemExists(ctx context.Context, q db, id int) (bool, error) {
	var ok bool
	err := q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM feed_items WHERE id = @id)`, pgx.NamedArgs{"id": id}).Scan(&ok)
	return ok, err
}

func scanComment(s scanner) (domain.Comment, error) {
	var (
		c      domain.Comment
		author []byte
	)
	if err := s.Scan(&c.ID, &c.FeedItemID, &author, &c.Text, &c.Date); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Comment{}, domain.ErrNotFound
		}
		return domain.Comment{}, err
	}
	c.User = &domain.User{}
	if err := json.Unmarshal(author, c.User); err != nil {
		return domain.Comment{}, fmt.Errorf("decode author: %w", err)
	}
	return c, nil
}
