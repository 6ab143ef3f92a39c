// internal/domain/directory/directory.go
package directory

import (
	"database/sql"
	"time"
)

// Organization is the top-level organizational unit notifications are run for.
type Organization struct {
	ID        int64
	ShortName string
	FullName  string
	CreatedAt time.Time
}

// Subdivision is a structural subdivision within an organization.
type Subdivision struct {
	ID             int64
	OrganizationID int64
	Name           string
}

// Department is a department within a subdivision.
type Department struct {
	ID            int64
	SubdivisionID int64
	Name          string
}

// Employee is the minimal employee record the notification core needs:
// enough to resolve responsible persons as recipients.
type Employee struct {
	ID                     int64
	OrganizationID         int64
	SubdivisionID          sql.NullInt64
	DepartmentID           sql.NullInt64
	FullName               string
	Email                  sql.NullString
	IsActive               bool
	ResponsibleForTracking bool // position flag: receives compliance notices
}
