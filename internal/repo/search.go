package repo

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/skjutsgruppen/rideshare/backend/internal/domain"
)

// SearchRepo finds trips, groups and public transport links along a route.
type SearchRepo interface {
	// Search returns matching trips, then groups, then public transport links.
	// Each kind is limited to q.Limit rows. Direction and Dates narrow trips only.
	Search(ctx context.Context, q domain.SearchQuery) ([]domain.SearchRecord, error)
}

// pgSearchRepo is the Postgres implementation of SearchRepo.
type pgSearchRepo struct {
	db db
}

// NewSearchRepo constructs a SearchRepo backed by the provided db connection.
func NewSearchRepo(db db) SearchRepo {
	return &pgSearchRepo{db: db}
}

// Filters match user text as a plain case-insensitive substring via
// position(), so LIKE wildcards in the input have no special meaning.
// Trip endpoints without a geocoded name are matched on their direction.
// Departure days are compared in UTC.
const (
	tripRouteFilter = `
		(@from::text = '' OR position(lower(@from::text) IN lower(COALESCE(NULLIF(trip->'TripStart'->>'name', ''), trip->>'direction', ''))) > 0)
		AND (@to::text = '' OR position(lower(@to::text) IN lower(COALESCE(NULLIF(trip->'TripEnd'->>'name', ''), trip->>'direction', ''))) > 0)
		AND (@direction::text = '' OR position(lower(@direction::text) IN lower(COALESCE(trip->>'direction', ''))) > 0)
		AND (COALESCE(cardinality(@dates::date[]), 0) = 0
			OR (((trip->>'date')::timestamptz AT TIME ZONE 'UTC')::date) = ANY(@dates::date[]))`
	groupRouteFilter = `
		(@from::text = '' OR position(lower(@from::text) IN lower(COALESCE(grp->'TripStart'->>'name', ''))) > 0)
		AND (@to::text = '' OR position(lower(@to::text) IN lower(COALESCE(grp->'TripEnd'->>'name', ''))) > 0)`
	publicTransportFilter = `
		(@from::text = '' OR position(lower(@from::text) IN lower(from_name)) > 0)
		AND (@to::text = '' OR position(lower(@to::text) IN lower(to_name)) > 0)`
)

// Search runs one query per result kind and concatenates the results.
func (r *pgSearchRepo) Search(ctx context.Context, q domain.SearchQuery) ([]domain.SearchRecord, error) {
	args := pgx.NamedArgs{
		"from":      q.From,
		"to":        q.To,
		"direction": q.Direction,
		"dates":     q.Dates,
		"limit":     q.Limit,
	}
	out := []domain.SearchRecord{}

	trips, err := r.searchTrips(ctx, args)
	if err != nil {
		return nil, fmt.Errorf("repo.SearchRepo.Search: trips: %w", err)
	}
	out = append(out, trips...)

	groups, err := r.searchGroups(ctx, args)
	if err != nil {
		return nil, fmt.Errorf("repo.SearchRepo.Search: groups: %w", err)
	}
	out = append(out, groups...)

	links, err := r.searchPublicTransport(ctx, args)
	if err != nil {
		return nil, fmt.Errorf("repo.SearchRepo.Search: public transport: %w", err)
	}
	return append(out, links...), nil
}

func (r *pgSearchRepo) searchTrips(ctx context.Context, args pgx.NamedArgs) ([]domain.SearchRecord, error) {
	q := `
		SELECT id, trip
		FROM feed_items
		WHERE feedable = 'trip' AND ` + tripRouteFilter + `
		ORDER BY created_at DESC, id DESC
		LIMIT @limit`

	return r.collectJSON(ctx, q, args, func(id int, raw []byte) (domain.SearchRecord, error) {
		var t domain.Trip
		if err := json.Unmarshal(raw, &t); err != nil {
			return domain.SearchRecord{}, fmt.Errorf("decode trip: %w", err)
		}
		if t.ID == 0 {
			t.ID = id
		}
		return domain.SearchRecord{
			ID:          t.ID,
			Type:        t.Type,
			Description: t.Description,
			Direction:   t.Direction,
			TripStart:   t.TripStart,
			TripEnd:     t.TripEnd,
			Date:        t.Date,
			Seats:       t.Seats,
			Photo:       t.Photo,
			MapPhoto:    t.MapPhoto,
			User:        t.User,
		}, nil
	})
}

func (r *pgSearchRepo) searchGroups(ctx context.Context, args pgx.NamedArgs) ([]domain.SearchRecord, error) {
	q := `
		SELECT id, grp
		FROM feed_items
		WHERE feedable = 'group' AND ` + groupRouteFilter + `
		ORDER BY created_at DESC, id DESC
		LIMIT @limit`

	return r.collectJSON(ctx, q, args, func(id int, raw []byte) (domain.SearchRecord, error) {
		var g domain.Group
		if err := json.Unmarshal(raw, &g); err != nil {
			return domain.SearchRecord{}, fmt.Errorf("decode group: %w", err)
		}
		if g.ID == 0 {
			g.ID = id
		}
		return domain.SearchRecord{
			ID:          g.ID,
			Name:        g.Name,
			Description: g.Description,
			TripStart:   g.TripStart,
			TripEnd:     g.TripEnd,
			Photo:       g.Photo,
			MapPhoto:    g.MapPhoto,
			User:        g.User,
		}, nil
	})
}

func (r *pgSearchRepo) searchPublicTransport(ctx context.Context, args pgx.NamedArgs) ([]domain.SearchRecord, error) {
	q := `
		SELECT id, name, url
		FROM public_transports
		WHERE ` + publicTransportFilter + `
		ORDER BY name
		LIMIT @limit`

	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.SearchRecord
	for rows.Next() {
		var rec domain.SearchRecord
		if err := rows.Scan(&rec.ID, &rec.Name, &rec.URL); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// collectJSON runs q, which must select (id, jsonb), and maps every row with fn.
func (r *pgSearchRepo) collectJSON(ctx context.Context, q string, args pgx.NamedArgs, fn func(int, []byte) (domain.SearchRecord, error)) ([]domain.SearchRecord, error) {
	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.SearchRecord
	for rows.Next() {
		var (
			id  int
			raw []byte
		)
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		rec, err := fn(id, raw)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
