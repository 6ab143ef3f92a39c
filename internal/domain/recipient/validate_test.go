package recipient

import (
	"database/sql"
	"testing"

	"deadline_notifier/internal/domain/notification"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected string
		wantErr  bool
	}{
		{"plain address", "user@example.com", "user@example.com", false},
		{"trims whitespace", "  user@example.com \n", "user@example.com", false},
		{"lower-cases", "User@Example.COM", "user@example.com", false},
		{"internationalized domain", "user@пример.рф", "user@пример.рф", false},
		{"empty", "", "", true},
		{"whitespace only", "   ", "", true},
		{"missing @", "user.example.com", "", true},
		{"leading @", "@example.com", "", true},
		{"trailing @", "user@", "", true},
		{"adjacent dots", "user..name@example.com", "", true},
		{"leading dot", ".user@example.com", "", true},
		{"trailing dot", "user@example.com.", "", true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			email, err := Normalize(tc.raw)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, email)
		})
	}
}

func TestScopeLevel(t *testing.T) {
	orgWide := notification.Scope{OrganizationID: 1}
	assert.Equal(t, LevelOrganization, ScopeLevel(orgWide))

	sub := notification.Scope{OrganizationID: 1, SubdivisionID: sql.NullInt64{Int64: 2, Valid: true}}
	assert.Equal(t, LevelSubdivision, ScopeLevel(sub))

	dep := sub
	dep.DepartmentID = sql.NullInt64{Int64: 3, Valid: true}
	assert.Equal(t, LevelDepartment, ScopeLevel(dep))
}
