package app

import (
	"context"
	"testing"

	"deadline_notifier/internal/domain/directory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type structuredDirectory struct {
	fakeDirectory
	subdivisions map[int64][]*directory.Subdivision
	departments  map[int64][]*directory.Department
}

func (f *structuredDirectory) ListSubdivisions(_ context.Context, orgID int64) ([]*directory.Subdivision, error) {
	return f.subdivisions[orgID], nil
}

func (f *structuredDirectory) ListDepartments(_ context.Context, subID int64) ([]*directory.Department, error) {
	return f.departments[subID], nil
}

func TestScopesForOrganizationOrdering(t *testing.T) {
	repo := &structuredDirectory{
		fakeDirectory: fakeDirectory{orgs: []*directory.Organization{{ID: 1, ShortName: "ACME"}}},
		subdivisions: map[int64][]*directory.Subdivision{
			1: {
				{ID: 10, OrganizationID: 1, Name: "north"},
				{ID: 20, OrganizationID: 1, Name: "south"},
			},
		},
		departments: map[int64][]*directory.Department{
			10: {{ID: 100, SubdivisionID: 10, Name: "maintenance"}},
		},
	}

	scopes, err := NewDirectoryScopeProvider(repo).ScopesForOrganization(context.Background(), 1)

	require.NoError(t, err)
	require.Len(t, scopes, 4)

	assert.Equal(t, "ACME", scopes[0].Name)
	assert.True(t, scopes[0].OrganizationWide())

	assert.Equal(t, "north", scopes[1].Name)
	assert.Equal(t, int64(10), scopes[1].SubdivisionID.Int64)
	assert.False(t, scopes[1].DepartmentID.Valid)

	assert.Equal(t, "north / maintenance", scopes[2].Name)
	assert.Equal(t, int64(100), scopes[2].DepartmentID.Int64)

	assert.Equal(t, "south", scopes[3].Name)
}
