package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/skjutsgruppen/rideshare/backend/internal/domain"
)

// ReportRepo defines the persistence operations for content reports.
type ReportRepo interface {
	// Create inserts a report and returns it with its DB-generated id and created_at.
	Create(ctx context.Context, r domain.Report) (domain.Report, error)
}

// pgReportRepo is the Postgres implementation of ReportRepo.
type pgReportRepo struct {
	db db
}

// NewReportRepo constructs a ReportRepo backed by the provided db connection.
func NewReportRepo(db db) ReportRepo {
	return &pgReportRepo{db: db}
}

// Create inserts a report row.
func (r *pgReportRepo) Create(ctx context.Context, rep domain.Report) (domain.Report, error) {
	const q = `
		INSERT INTO reports (reporter_id, description, reportable, reportable_id)
		VALUES (@reporter_id, @description, @reportable, @reportable_id)
		RETURNING id, reporter_id, description, reportable, reportable_id, created_at`

	args := pgx.NamedArgs{
		"reporter_id":   rep.ReporterID,
		"description":   rep.Description,
		"reportable":    rep.Reportable,
		"reportable_id": rep.ReportableID,
	}

	var (
		out domain.Report
		id  pgtype.UUID
	)
	err := r.db.QueryRow(ctx, q, args).Scan(
		&id, &out.ReporterID, &out.Description, &out.Reportable, &out.ReportableID, &out.CreatedAt,
	)
	if err != nil {
		return domain.Report{}, fmt.Errorf("repo.ReportRepo.Create: %w", err)
	}
	out.ID = uuid.UUID(id.Bytes)
	return out, nil
}
