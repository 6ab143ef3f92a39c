package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"deadline_notifier/internal/domain/notification"
)

// SubdivisionEmailSource yields the notification addresses configured directly
// on a subdivision. It contributes nothing for organization-wide scopes.
type SubdivisionEmailSource struct {
	db *sql.DB
}

func NewSubdivisionEmailSource(db *sql.DB) *SubdivisionEmailSource {
	return &SubdivisionEmailSource{db: db}
}

func (s *SubdivisionEmailSource) Name() string { return "subdivision_emails" }

func (s *SubdivisionEmailSource) Collect(ctx context.Context, scope notification.Scope) ([]string, error) {
	if !scope.SubdivisionID.Valid {
		return nil, nil
	}

	query := `SELECT email FROM subdivision_emails
               WHERE subdivision_id = $1 AND is_active = TRUE ORDER BY email`
	rows, err := s.db.QueryContext(ctx, query, scope.SubdivisionID.Int64)
	if err != nil {
		return nil, fmt.Errorf("error querying subdivision emails: %w", err)
	}
	defer rows.Close()

	emails := make([]string, 0)
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, fmt.Errorf("error scanning subdivision email: %w", err)
		}
		emails = append(emails, email)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating subdivision emails: %w", err)
	}
	return emails, nil
}

// ResponsibleEmployeeSource yields the addresses of active employees flagged
// as responsible for deadline tracking at exactly the scope's level. The
// aggregator handles widening to broader levels when this returns nothing.
type ResponsibleEmployeeSource struct {
	db *sql.DB
}

func NewResponsibleEmployeeSource(db *sql.DB) *ResponsibleEmployeeSource {
	return &ResponsibleEmployeeSource{db: db}
}

func (s *ResponsibleEmployeeSource) Name() string { return "responsible_employees" }

func (s *ResponsibleEmployeeSource) Collect(ctx context.Context, scope notification.Scope) ([]string, error) {
	query := `SELECT email FROM employees
               WHERE organization_id = $1 AND is_active = TRUE AND responsible_for_tracking = TRUE
                 AND email IS NOT NULL AND email <> ''`
	args := []interface{}{scope.OrganizationID}

	switch {
	case scope.DepartmentID.Valid:
		query += ` AND subdivision_id = $2 AND department_id = $3`
		args = append(args, scope.SubdivisionID.Int64, scope.DepartmentID.Int64)
	case scope.SubdivisionID.Valid:
		query += ` AND subdivision_id = $2 AND department_id IS NULL`
		args = append(args, scope.SubdivisionID.Int64)
	}
	query += ` ORDER BY email`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying responsible employees: %w", err)
	}
	defer rows.Close()

	emails := make([]string, 0)
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, fmt.Errorf("error scanning responsible employee email: %w", err)
		}
		emails = append(emails, email)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating responsible employees: %w", err)
	}
	return emails, nil
}

// OrganizationSettingsSource yields the general recipient list configured on
// the organization's e-mail settings. Missing or disabled settings contribute
// nothing rather than failing the aggregation.
type OrganizationSettingsSource struct {
	settings *PostgresSettingsRepository
}

func NewOrganizationSettingsSource(settings *PostgresSettingsRepository) *OrganizationSettingsSource {
	return &OrganizationSettingsSource{settings: settings}
}

func (s *OrganizationSettingsSource) Name() string { return "organization_settings" }

func (s *OrganizationSettingsSource) Collect(ctx context.Context, scope notification.Scope) ([]string, error) {
	cfg, err := s.settings.SettingsForOrganization(ctx, scope.OrganizationID)
	if err != nil {
		if errors.Is(err, ErrSettingsNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if !cfg.IsActive {
		return nil, nil
	}
	return cfg.RecipientEmails, nil
}
