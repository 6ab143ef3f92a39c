// internal/domain/directory/repository.go
package directory

import "context"

// Repository defines read operations over the organizational structure.
// Access-rights filtering happens outside this core; implementations return
// what the caller is allowed to see.
type Repository interface {
	ListOrganizations(ctx context.Context) ([]*Organization, error)
	GetOrganizationByID(ctx context.Context, id int64) (*Organization, error)
	ListSubdivisions(ctx context.Context, organizationID int64) ([]*Subdivision, error)
	ListDepartments(ctx context.Context, subdivisionID int64) ([]*Department, error)
}
