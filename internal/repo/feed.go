// Package repo contains all database access logic for the ride-sharing feed API.
// Each resource has its own file with an interface and a Postgres implementation.
// No business logic lives here, only SQL and type mapping.
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

// db is the minimal interface satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test.
// Begin on a pgx.Tx opens a savepoint, so InTx nests inside a test transaction.
type db interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// FeedRepo defines the persistence operations for feed items.
type FeedRepo interface {
	// Create inserts a feed item and returns the persisted record with its
	// DB-generated id and created_at.
	Create(ctx context.Context, rec domain.FeedRecord) (domain.FeedRecord, error)

	// GetByID retrieves a single feed item.
	// Returns domain.ErrNotFound if no item with that ID exists.
	GetByID(ctx context.Context, id int) (domain.FeedRecord, error)

	// ListPaged returns one page of feed items, newest first, and the total count.
	ListPaged(ctx context.Context, p domain.PaginationParams) ([]domain.FeedRecord, int64, error)

	// InTx runs fn against a FeedRepo bound to a single transaction.
	// The transaction commits when fn returns nil and rolls back otherwise.
	InTx(ctx context.Context, fn func(FeedRepo) error) error
}

// pgFeedRepo is the Postgres implementation of FeedRepo.
type pgFeedRepo struct {
	db db
}

// NewFeedRepo constructs a FeedRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewFeedRepo(db db) FeedRepo {
	return &pgFeedRepo{db: db}
}

// Create inserts a feed item. The nested Trip or Group is stored as JSONB;
// nil pointers become NULL.
func (r *pgFeedRepo) Create(ctx context.Context, rec domain.FeedRecord) (domain.FeedRecord, error) {
	const q = `
		INSERT INTO feed_items (feedable, trip, grp)
		VALUES (@feedable, @trip, @grp)
		RETURNING id, feedable, trip, grp, created_at`

	args := pgx.NamedArgs{
		"feedable": string(rec.Feedable),
		"trip":     rec.Trip,
		"grp":      rec.Group,
	}

	result, err := scanFeedRecord(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.FeedRecord{}, fmt.Errorf("repo.FeedRepo.Create: %w", err)
	}
	return result, nil
}

// GetByID retrieves a feed item by primary key.
func (r *pgFeedRepo) GetByID(ctx context.Context, id int) (domain.FeedRecord, error) {
	const q = `
		SELECT id, feedable, trip, grp, created_at
		FROM feed_items
		WHERE id = @id`

	result, err := scanFeedRecord(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.FeedRecord{}, fmt.Errorf("repo.FeedRepo.GetByID: %w", err)
	}
	return result, nil
}

// InTx runs fn inside a transaction on r.db.
func (r *pgFeedRepo) InTx(ctx context.Context, fn func(FeedRepo) error) error {
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		return fn(&pgFeedRepo{db: tx})
	})
	if err != nil {
		return fmt.Errorf("repo.FeedRepo.InTx: %w", err)
	}
	return nil
}

// ListPaged returns one page of feed items ordered by created_at descending.
func (r *pgFeedRepo) ListPaged(ctx context.Context, p domain.PaginationParams) ([]domain.FeedRecord, int64, error) {
	const countQ = `SELECT count(*) FROM feed_items`
	const q = `
		SELECT id, feedable, trip, grp, created_at
		FROM feed_items
		ORDER BY created_at DESC, id DESC
		LIMIT @limit OFFSET @offset`

	var total int64
	if err := r.db.QueryRow(ctx, countQ).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repo.FeedRepo.ListPaged: count: %w", err)
	}

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"limit": p.Limit, "offset": p.Offset()})
	if err != nil {
		return nil, 0, fmt.Errorf("repo.FeedRepo.ListPaged: %w", err)
	}
	defer rows.Close()

	recs := []domain.FeedRecord{}
	for rows.Next() {
		rec, err := scanFeedRecord(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("repo.FeedRepo.ListPaged: scan: %w", err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("repo.FeedRepo.ListPaged: rows: %w", err)
	}
	return recs, total, nil
}

// scanner is satisfied by both pgx.Row and pgx.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanFeedRecord maps a feed_items row into a domain.FeedRecord.
// A nested subject stored without its own id takes the feed item's id.
func scanFeedRecord(s scanner) (domain.FeedRecord, error) {
	var (
		rec       domain.FeedRecord
		feedable  string
		trip, grp []byte
	)

	err := s.Scan(&rec.ID, &feedable, &trip, &grp, &rec.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.FeedRecord{}, domain.ErrNotFound
		}
		return domain.FeedRecord{}, err
	}
	rec.Feedable = domain.Feedable(feedable)

	if trip != nil {
		rec.Trip = &domain.Trip{}
		if err := json.Unmarshal(trip, rec.Trip); err != nil {
			return domain.FeedRecord{}, fmt.Errorf("decode trip: %w", err)
		}
		if rec.Trip.ID == 0 {
			rec.Trip.ID = rec.ID
		}
	}
	if grp != nil {
		rec.Group = &domain.Group{}
		if err := json.Unmarshal(grp, rec.Group); err != nil {
			return domain.FeedRecord{}, fmt.Errorf("decode group: %w", err)
		}
		if rec.Group.ID == 0 {
			rec.Group.ID = rec.ID
		}
	}
	return rec, nil
}
