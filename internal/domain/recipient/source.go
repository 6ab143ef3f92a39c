// internal/domain/recipient/source.go
package recipient

import (
	"context"

	"deadline_notifier/internal/domain/notification"
)

// Source yields zero or more raw e-mail strings for a scope, or fails.
// Sources are independent: the aggregator treats a failing source as empty
// and continues with the remaining ones.
type Source interface {
	Name() string
	Collect(ctx context.Context, scope notification.Scope) ([]string, error)
}

// Level identifies the scope level that ended up supplying a source's
// addresses, for display and audit purposes only.
type Level string

const (
	LevelDepartment   Level = "department"
	LevelSubdivision  Level = "subdivision"
	LevelOrganization Level = "organization"
)

// ScopeLevel returns the narrowest level present in the scope.
func ScopeLevel(scope notification.Scope) Level {
	switch {
	case scope.DepartmentID.Valid:
		return LevelDepartment
	case scope.SubdivisionID.Valid:
		return LevelSubdivision
	default:
		return LevelOrganization
	}
}
