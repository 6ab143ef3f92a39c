// internal/domain/notification/run.go
package notification

import (
	"database/sql"
	"math"
	"time"
)

// Run is one bulk-send attempt for one organization at one point in time.
// Corresponds to the 'notification_runs' table. Created at run start, mutated
// only by the run tracker as targets complete, immutable once Status is
// terminal.
type Run struct {
	ID             int64
	OrganizationID int64
	Trigger        TriggerType
	InitiatedBy    sql.NullInt64 // null for scheduled runs

	// Classification counters accumulated across all scopes of the run.
	ClassifiedOverdue  int
	ClassifiedUpcoming int

	// Target outcome counters. Status is always the fold of these three.
	SuccessfulCount int
	FailedCount     int
	SkippedCount    int

	Status      RunStatus
	CreatedAt   time.Time
	CompletedAt sql.NullTime
}

// FoldStatus derives the terminal run status from target outcome counters.
// A run that notified nobody is not a success, so all-skipped and all-failed
// alike fold to RunStatusFailed.
func FoldStatus(successful, failed, skipped int) RunStatus {
	switch {
	case successful > 0 && failed == 0 && skipped == 0:
		return RunStatusCompleted
	case successful > 0:
		return RunStatusPartial
	default:
		return RunStatusFailed
	}
}

// TotalProcessed returns the number of targets recorded for the run.
func (r *Run) TotalProcessed() int {
	return r.SuccessfulCount + r.FailedCount + r.SkippedCount
}

// SuccessRate returns the percentage of successful targets, rounded to one
// decimal. Zero targets yields 0.
func (r *Run) SuccessRate() float64 {
	total := r.TotalProcessed()
	if total == 0 {
		return 0
	}
	return math.Round(float64(r.SuccessfulCount)/float64(total)*1000) / 10
}

// Summary is the run-level view consumed by operators and the reporting UI.
type Summary struct {
	Successful  int
	Failed      int
	Skipped     int
	SuccessRate float64
}

// Summary builds the operator-facing aggregate for the run.
func (r *Run) Summary() Summary {
	return Summary{
		Successful:  r.SuccessfulCount,
		Failed:      r.FailedCount,
		Skipped:     r.SkippedCount,
		SuccessRate: r.SuccessRate(),
	}
}
