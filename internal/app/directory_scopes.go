// internal/app/directory_scopes.go
package app

import (
	"context"
	"database/sql"
	"fmt"

	"deadline_notifier/internal/domain/directory"
	"deadline_notifier/internal/domain/notification"
)

// DirectoryScopeProvider derives the scope list of a run from the
// organizational structure: the organization-wide scope first, then one scope
// per subdivision, each followed by its departments. The order is stable so
// targets are recorded deterministically.
type DirectoryScopeProvider struct {
	repo directory.Repository
}

func NewDirectoryScopeProvider(repo directory.Repository) *DirectoryScopeProvider {
	return &DirectoryScopeProvider{repo: repo}
}

func (p *DirectoryScopeProvider) ScopesForOrganization(ctx context.Context, organizationID int64) ([]notification.Scope, error) {
	org, err := p.repo.GetOrganizationByID(ctx, organizationID)
	if err != nil {
		return nil, err
	}

	scopes := []notification.Scope{{
		OrganizationID: organizationID,
		Name:           org.ShortName,
	}}

	subdivisions, err := p.repo.ListSubdivisions(ctx, organizationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list subdivisions for organization %d: %w", organizationID, err)
	}
	for _, sub := range subdivisions {
		scopes = append(scopes, notification.Scope{
			OrganizationID: organizationID,
			SubdivisionID:  sql.NullInt64{Int64: sub.ID, Valid: true},
			Name:           sub.Name,
		})

		departments, err := p.repo.ListDepartments(ctx, sub.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to list departments for subdivision %d: %w", sub.ID, err)
		}
		for _, dep := range departments {
			scopes = append(scopes, notification.Scope{
				OrganizationID: organizationID,
				SubdivisionID:  sql.NullInt64{Int64: sub.ID, Valid: true},
				DepartmentID:   sql.NullInt64{Int64: dep.ID, Valid: true},
				Name:           sub.Name + " / " + dep.Name,
			})
		}
	}
	return scopes, nil
}
