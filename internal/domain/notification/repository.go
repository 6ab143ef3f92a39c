// internal/domain/notification/repository.go
package notification

import (
	"context"
	"database/sql"
)

// RunFilter narrows ListRuns. Zero-valued fields are ignored.
type RunFilter struct {
	OrganizationID sql.NullInt64
	Status         RunStatus
	CreatedAfter   sql.NullTime
	CreatedBefore  sql.NullTime
	Limit          int
}

// Repository defines persistence operations for NotificationRun and
// NotificationTarget.
type Repository interface {
	CreateRun(ctx context.Context, run *Run) error
	UpdateRun(ctx context.Context, run *Run) error
	GetRunByID(ctx context.Context, id int64) (*Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]*Run, error)

	// CreateTarget writes one terminal target row. Targets are never updated.
	CreateTarget(ctx context.Context, target *Target) error
	ListTargetsByRun(ctx context.Context, runID int64) ([]*Target, error)
}
