// internal/domain/notification/target.go
package notification

import (
	"database/sql"
	"time"
)

// Target is one delivery attempt within a run, scoped to a subdivision or
// department, or to the organization as a whole. Corresponds to the
// 'notification_targets' table. Terminal on first write: the row is created
// only once the outcome is known and is never updated afterwards.
type Target struct {
	ID    int64
	RunID int64
	Scope Scope

	Status     TargetStatus
	SkipReason SkipReason // set only when Status is TargetStatusSkipped

	Recipients     []string // deduplicated, serialized as JSON in the repository
	RecipientCount int
	Subject        string
	ErrorMessage   string

	SentAt    sql.NullTime
	CreatedAt time.Time
}
