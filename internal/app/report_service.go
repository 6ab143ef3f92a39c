// internal/app/report_service.go
package app

import (
	"context"
	"fmt"

	"deadline_notifier/internal/domain/notification"
)

// ReportService is the query surface the external reporting/admin UI reads:
// runs by organization, status, and creation time, plus per-run targets and
// summaries. It never mutates anything.
type ReportService struct {
	runRepo notification.Repository
}

func NewReportService(runRepo notification.Repository) *ReportService {
	return &ReportService{runRepo: runRepo}
}

// ListRuns returns runs matching the filter, most recent first.
func (s *ReportService) ListRuns(ctx context.Context, filter notification.RunFilter) ([]*notification.Run, error) {
	runs, err := s.runRepo.ListRuns(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list notification runs: %w", err)
	}
	return runs, nil
}

// RunDetails returns one run together with its targets in recorded order.
func (s *ReportService) RunDetails(ctx context.Context, runID int64) (*notification.Run, []*notification.Target, error) {
	run, err := s.runRepo.GetRunByID(ctx, runID)
	if err != nil {
		return nil, nil, err
	}
	targets, err := s.runRepo.ListTargetsByRun(ctx, runID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list targets for run %d: %w", runID, err)
	}
	return run, targets, nil
}

// RunSummary returns the operator-facing aggregate for one run.
func (s *ReportService) RunSummary(ctx context.Context, runID int64) (notification.Summary, error) {
	run, err := s.runRepo.GetRunByID(ctx, runID)
	if err != nil {
		return notification.Summary{}, err
	}
	return run.Summary(), nil
}
