// internal/app/run_tracker.go
package app

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"deadline_notifier/internal/domain/notification"

	"github.com/sirupsen/logrus"
)

// RunTracker owns the NotificationRun and its NotificationTarget records for
// the duration of a run. No other component mutates run counters; under the
// sequential processing model no locking is needed.
type RunTracker struct {
	repo   notification.Repository
	logger *logrus.Logger
}

func NewRunTracker(repo notification.Repository, logger *logrus.Logger) *RunTracker {
	return &RunTracker{repo: repo, logger: logger}
}

// StartRun creates the in_progress run record.
func (t *RunTracker) StartRun(ctx context.Context, organizationID int64, trigger notification.TriggerType, initiatedBy sql.NullInt64) (*notification.Run, error) {
	run := &notification.Run{
		OrganizationID: organizationID,
		Trigger:        trigger,
		InitiatedBy:    initiatedBy,
		Status:         notification.RunStatusInProgress,
	}
	if err := t.repo.CreateRun(ctx, run); err != nil {
		return nil, fmt.Errorf("failed to create notification run: %w", err)
	}
	t.logger.Infof("Notification run %d started for organization %d (trigger: %s).", run.ID, organizationID, trigger)
	return run, nil
}

// AddClassified accumulates per-scope classification counts on the run.
func (t *RunTracker) AddClassified(run *notification.Run, overdue, upcoming int) {
	run.ClassifiedOverdue += overdue
	run.ClassifiedUpcoming += upcoming
}

// RecordTarget writes one terminal target row and bumps the matching run
// counter. The target row is written exactly once and never updated.
func (t *RunTracker) RecordTarget(ctx context.Context, run *notification.Run, target *notification.Target) error {
	target.RunID = run.ID
	if err := t.repo.CreateTarget(ctx, target); err != nil {
		return fmt.Errorf("failed to record notification target for scope %q: %w", target.Scope.Name, err)
	}
	switch target.Status {
	case notification.TargetStatusSuccess:
		run.SuccessfulCount++
	case notification.TargetStatusFailed:
		run.FailedCount++
	case notification.TargetStatusSkipped:
		run.SkippedCount++
	}
	return nil
}

// FinalizeRun folds the target outcomes into the terminal run status and
// persists the final counters. The run is immutable afterwards.
func (t *RunTracker) FinalizeRun(ctx context.Context, run *notification.Run) error {
	run.Status = notification.FoldStatus(run.SuccessfulCount, run.FailedCount, run.SkippedCount)
	run.CompletedAt = sql.NullTime{Time: time.Now(), Valid: true}
	if err := t.repo.UpdateRun(ctx, run); err != nil {
		return fmt.Errorf("failed to finalize notification run %d: %w", run.ID, err)
	}
	t.logger.Infof("Run %d finalized: status=%s, successful=%d, failed=%d, skipped=%d, success rate %.1f%%.",
		run.ID, run.Status, run.SuccessfulCount, run.FailedCount, run.SkippedCount, run.SuccessRate())
	return nil
}
