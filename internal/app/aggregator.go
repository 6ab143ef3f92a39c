// internal/app/aggregator.go
package app

import (
	"context"
	"database/sql"
	"sort"

	"deadline_notifier/internal/domain/notification"
	"deadline_notifier/internal/domain/recipient"

	"github.com/sirupsen/logrus"
)

// SourceEntry pairs a recipient source with its aggregation behaviour.
// ScopeFallback widens an empty department-level result to the subdivision,
// then to the organization, merging at the first non-empty level only. In the
// current setup only the responsible-employee source narrows by scope, so
// only it carries the flag.
type SourceEntry struct {
	Source        recipient.Source
	ScopeFallback bool
}

// AggregateResult is the outcome of collecting recipients for one scope.
type AggregateResult struct {
	Emails        []string // deduplicated, lower-cased, sorted for stable audit records
	RejectedCount int      // raw candidates dropped by validation, for operator warnings
	// FallbackLevels records, per source that contributed addresses, the scope
	// level that supplied them. Display/audit only.
	FallbackLevels map[string]recipient.Level
}

// RecipientAggregator queries independently-failing recipient sources and
// merges their results into one deduplicated set. One broken source never
// aborts the others, and a scope with no recipients at all is a valid empty
// result, not an error.
type RecipientAggregator struct {
	logger *logrus.Logger
}

func NewRecipientAggregator(logger *logrus.Logger) *RecipientAggregator {
	return &RecipientAggregator{logger: logger}
}

// Collect invokes every source in order for the given scope and returns the
// merged set of valid addresses.
func (a *RecipientAggregator) Collect(ctx context.Context, scope notification.Scope, sources []SourceEntry) AggregateResult {
	seen := make(map[string]struct{})
	result := AggregateResult{FallbackLevels: make(map[string]recipient.Level)}

	for _, entry := range sources {
		raws, level, err := a.collectFromSource(ctx, scope, entry)
		if err != nil {
			a.logger.Warnf("Recipient source %s failed for scope %q (org %d): %v. Continuing with remaining sources.",
				entry.Source.Name(), scope.Name, scope.OrganizationID, err)
			continue
		}

		accepted := 0
		for _, raw := range raws {
			email, err := recipient.Normalize(raw)
			if err != nil {
				result.RejectedCount++
				a.logger.Warnf("Dropping malformed recipient from source %s: %v", entry.Source.Name(), err)
				continue
			}
			if _, dup := seen[email]; !dup {
				seen[email] = struct{}{}
				result.Emails = append(result.Emails, email)
			}
			accepted++
		}
		if accepted > 0 {
			result.FallbackLevels[entry.Source.Name()] = level
		}
	}

	sort.Strings(result.Emails)
	a.logger.Infof("Collected %d unique recipient(s) for scope %q (org %d), %d rejected.",
		len(result.Emails), scope.Name, scope.OrganizationID, result.RejectedCount)
	return result
}

// collectFromSource queries one source, widening the scope level by level for
// fallback sources until something comes back. The returned level is the one
// that actually supplied the addresses.
func (a *RecipientAggregator) collectFromSource(ctx context.Context, scope notification.Scope, entry SourceEntry) ([]string, recipient.Level, error) {
	if !entry.ScopeFallback {
		raws, err := entry.Source.Collect(ctx, scope)
		return raws, recipient.ScopeLevel(scope), err
	}

	for _, s := range wideningScopes(scope) {
		raws, err := entry.Source.Collect(ctx, s)
		if err != nil {
			return nil, "", err
		}
		if len(raws) > 0 {
			if lvl := recipient.ScopeLevel(s); lvl != recipient.ScopeLevel(scope) {
				a.logger.Infof("Source %s found nothing at %s level for scope %q, using %s level.",
					entry.Source.Name(), recipient.ScopeLevel(scope), scope.Name, lvl)
			}
			return raws, recipient.ScopeLevel(s), nil
		}
	}
	return nil, "", nil
}

// wideningScopes returns the scope followed by its broader variants:
// department cleared first, then subdivision.
func wideningScopes(scope notification.Scope) []notification.Scope {
	scopes := []notification.Scope{scope}
	if scope.DepartmentID.Valid {
		s := scope
		s.DepartmentID = sql.NullInt64{}
		scopes = append(scopes, s)
	}
	if scope.SubdivisionID.Valid {
		s := scope
		s.DepartmentID = sql.NullInt64{}
		s.SubdivisionID = sql.NullInt64{}
		scopes = append(scopes, s)
	}
	return scopes
}
