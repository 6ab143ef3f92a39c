package app

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"deadline_notifier/internal/domain/notification"
	"deadline_notifier/internal/domain/recipient"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func orgScope(orgID int64) notification.Scope {
	return notification.Scope{OrganizationID: orgID, Name: "org"}
}

func departmentScope(orgID, subID, depID int64) notification.Scope {
	return notification.Scope{
		OrganizationID: orgID,
		SubdivisionID:  sql.NullInt64{Int64: subID, Valid: true},
		DepartmentID:   sql.NullInt64{Int64: depID, Valid: true},
		Name:           "dep",
	}
}

func TestCollectDeduplicatesAcrossSources(t *testing.T) {
	a := NewRecipientAggregator(testLogger())
	sources := []SourceEntry{
		{Source: &fakeSource{name: "one", collect: func(notification.Scope) ([]string, error) {
			return []string{"A@x.com", "b@x.com"}, nil
		}}},
		{Source: &fakeSource{name: "two", collect: func(notification.Scope) ([]string, error) {
			return []string{"a@x.com", "c@x.com"}, nil
		}}},
	}

	result := a.Collect(context.Background(), orgScope(1), sources)

	assert.Equal(t, []string{"a@x.com", "b@x.com", "c@x.com"}, result.Emails)
	assert.Equal(t, 0, result.RejectedCount)
}

func TestCollectContinuesPastFailingSource(t *testing.T) {
	a := NewRecipientAggregator(testLogger())
	sources := []SourceEntry{
		{Source: &fakeSource{name: "broken", collect: func(notification.Scope) ([]string, error) {
			return nil, fmt.Errorf("query failed")
		}}},
		{Source: &fakeSource{name: "working", collect: func(notification.Scope) ([]string, error) {
			return []string{"a@x.com"}, nil
		}}},
	}

	result := a.Collect(context.Background(), orgScope(1), sources)

	assert.Equal(t, []string{"a@x.com"}, result.Emails)
}

func TestCollectRejectsMalformedAddresses(t *testing.T) {
	a := NewRecipientAggregator(testLogger())
	sources := []SourceEntry{
		{Source: &fakeSource{name: "mixed", collect: func(notification.Scope) ([]string, error) {
			return []string{"good@x.com", "no-at-sign", "bad..dots@x.com", ""}, nil
		}}},
	}

	result := a.Collect(context.Background(), orgScope(1), sources)

	assert.Equal(t, []string{"good@x.com"}, result.Emails)
	assert.Equal(t, 3, result.RejectedCount)
}

func TestCollectEmptyScopeIsNotAnError(t *testing.T) {
	a := NewRecipientAggregator(testLogger())
	sources := []SourceEntry{
		{Source: &fakeSource{name: "empty", collect: func(notification.Scope) ([]string, error) {
			return nil, nil
		}}},
	}

	result := a.Collect(context.Background(), orgScope(1), sources)

	assert.Empty(t, result.Emails)
	assert.Equal(t, 0, result.RejectedCount)
}

func TestCollectFallbackWidensScope(t *testing.T) {
	// Nothing at department or subdivision level; the organization level has
	// an address. Only the first non-empty level contributes.
	src := &fakeSource{name: "responsible", collect: func(scope notification.Scope) ([]string, error) {
		if !scope.SubdivisionID.Valid {
			return []string{"boss@x.com"}, nil
		}
		return nil, nil
	}}
	a := NewRecipientAggregator(testLogger())

	result := a.Collect(context.Background(), departmentScope(1, 2, 3), []SourceEntry{{Source: src, ScopeFallback: true}})

	assert.Equal(t, []string{"boss@x.com"}, result.Emails)
	assert.Equal(t, recipient.LevelOrganization, result.FallbackLevels["responsible"])
	require.Len(t, src.calls, 3)
	assert.True(t, src.calls[0].DepartmentID.Valid)
	assert.True(t, src.calls[1].SubdivisionID.Valid)
	assert.False(t, src.calls[1].DepartmentID.Valid)
	assert.False(t, src.calls[2].SubdivisionID.Valid)
}

func TestCollectFallbackStopsAtFirstNonEmptyLevel(t *testing.T) {
	src := &fakeSource{name: "responsible", collect: func(scope notification.Scope) ([]string, error) {
		if scope.DepartmentID.Valid {
			return []string{"dep@x.com"}, nil
		}
		return []string{"wider@x.com"}, nil
	}}
	a := NewRecipientAggregator(testLogger())

	result := a.Collect(context.Background(), departmentScope(1, 2, 3), []SourceEntry{{Source: src, ScopeFallback: true}})

	assert.Equal(t, []string{"dep@x.com"}, result.Emails)
	assert.Equal(t, recipient.LevelDepartment, result.FallbackLevels["responsible"])
	assert.Len(t, src.calls, 1)
}

func TestCollectNonFallbackSourceQueriesExactScope(t *testing.T) {
	src := &fakeSource{name: "subdivision_emails", collect: func(notification.Scope) ([]string, error) {
		return nil, nil
	}}
	a := NewRecipientAggregator(testLogger())

	a.Collect(context.Background(), departmentScope(1, 2, 3), []SourceEntry{{Source: src}})

	require.Len(t, src.calls, 1)
	assert.True(t, src.calls[0].DepartmentID.Valid)
}
