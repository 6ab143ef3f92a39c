// internal/domain/notification/shared_types.go
package notification

import "database/sql"

// TriggerType records what initiated a notification run.
type TriggerType string

const (
	TriggerScheduled TriggerType = "scheduled"
	TriggerManual    TriggerType = "manual"
)

// RunStatus is the lifecycle state of a NotificationRun.
// A run starts in_progress and ends in exactly one terminal state.
type RunStatus string

const (
	RunStatusInProgress RunStatus = "in_progress"
	RunStatusCompleted  RunStatus = "completed"
	RunStatusPartial    RunStatus = "partial"
	RunStatusFailed     RunStatus = "failed"
)

// TargetStatus is the terminal outcome of one delivery attempt within a run.
// Targets are written once the outcome is known and never updated.
type TargetStatus string

const (
	TargetStatusSuccess TargetStatus = "success"
	TargetStatusFailed  TargetStatus = "failed"
	TargetStatusSkipped TargetStatus = "skipped"
)

// SkipReason explains a skipped target. Closed set; present only when the
// target status is skipped.
type SkipReason string

const (
	SkipNoRecipients        SkipReason = "no_recipients"
	SkipNoSubjectData       SkipReason = "no_subject_data"
	SkipTemplateNotFound    SkipReason = "template_not_found"
	SkipDocGenerationFailed SkipReason = "doc_generation_failed"
)

// Scope is the organizational unit one notification target is evaluated for:
// the organization as a whole, or narrowed to a subdivision and optionally a
// department within it.
type Scope struct {
	OrganizationID int64
	SubdivisionID  sql.NullInt64
	DepartmentID   sql.NullInt64
	Name           string // display name, used in logs and audit records only
}

// OrganizationWide reports whether the scope covers the whole organization.
func (s Scope) OrganizationWide() bool {
	return !s.SubdivisionID.Valid
}
