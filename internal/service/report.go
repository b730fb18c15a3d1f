package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/skjutsgruppen/rideshare/backend/internal/domain"
	"github.com/skjutsgruppen/rideshare/backend/internal/metrics"
	"github.com/skjutsgruppen/rideshare/backend/internal/repo"
)

// ReportService stores reports for moderation. It is the submitter behind
// every report session.
type ReportService struct {
	reports repo.ReportRepo
	log     *slog.Logger
}

// NewReportService constructs a ReportService backed by the provided ReportRepo.
func NewReportService(r repo.ReportRepo, log *slog.Logger) *ReportService {
	return &ReportService{reports: r, log: log}
}

// Submit validates and persists a report.
// Validation errors carry a message meant for the reporter after the
// "validation error: " prefix.
func (s *ReportService) Submit(ctx context.Context, r domain.Report) (domain.Report, error) {
	r.Description = strings.TrimSpace(r.Description)
	if err := validateReport(r); err != nil {
		metrics.RecordReport(r.Reportable, "rejected")
		return domain.Report{}, err
	}

	stored, err := s.reports.Create(ctx, r)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			metrics.RecordReport(r.Reportable, "failed")
		}
		return domain.Report{}, fmt.Errorf("service.ReportService.Submit: %w", err)
	}

	metrics.RecordReport(stored.Reportable, "reported")
	s.log.InfoContext(ctx, "report filed",
		"report_id", stored.ID,
		"reportable", stored.Reportable,
		"reportable_id", stored.ReportableID,
		"reporter_id", stored.ReporterID,
	)
	return stored, nil
}

func validateReport(r domain.Report) error {
	switch {
	case r.Description == "":
		return fmt.Errorf("%w: description required", domain.ErrValidation)
	case r.ReporterID <= 0:
		return fmt.Errorf("%w: reporter is required", domain.ErrValidation)
	case r.Reportable == "":
		return fmt.Errorf("%w: reportable is required", domain.ErrValidation)
	}
	return nil
}
