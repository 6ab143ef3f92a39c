package database

import (
	"context"
	"database/sql"
	"fmt"

	"deadline_notifier/internal/domain/directory"
)

// Custom errors
var ErrOrganizationNotFound = fmt.Errorf("organization not found")

type PostgresDirectoryRepository struct {
	db *sql.DB
}

func NewPostgresDirectoryRepository(db *sql.DB) *PostgresDirectoryRepository {
	return &PostgresDirectoryRepository{db: db}
}

func (r *PostgresDirectoryRepository) ListOrganizations(ctx context.Context) ([]*directory.Organization, error) {
	query := `SELECT id, short_name, full_name, created_at
               FROM organizations ORDER BY short_name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error listing organizations: %w", err)
	}
	defer rows.Close()

	orgs := make([]*directory.Organization, 0)
	for rows.Next() {
		org := &directory.Organization{}
		if err := rows.Scan(&org.ID, &org.ShortName, &org.FullName, &org.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning organization: %w", err)
		}
		orgs = append(orgs, org)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating organizations: %w", err)
	}
	return orgs, nil
}

func (r *PostgresDirectoryRepository) GetOrganizationByID(ctx context.Context, id int64) (*directory.Organization, error) {
	query := `SELECT id, short_name, full_name, created_at
               FROM organizations WHERE id = $1`
	org := &directory.Organization{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&org.ID, &org.ShortName, &org.FullName, &org.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrOrganizationNotFound
		}
		return nil, fmt.Errorf("error getting organization by ID: %w", err)
	}
	return org, nil
}

func (r *PostgresDirectoryRepository) ListSubdivisions(ctx context.Context, organizationID int64) ([]*directory.Subdivision, error) {
	query := `SELECT id, organization_id, name
               FROM subdivisions WHERE organization_id = $1 ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query, organizationID)
	if err != nil {
		return nil, fmt.Errorf("error listing subdivisions: %w", err)
	}
	defer rows.Close()

	subs := make([]*directory.Subdivision, 0)
	for rows.Next() {
		sub := &directory.Subdivision{}
		if err := rows.Scan(&sub.ID, &sub.OrganizationID, &sub.Name); err != nil {
			return nil, fmt.Errorf("error scanning subdivision: %w", err)
		}
		subs = append(subs, sub)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating subdivisions: %w", err)
	}
	return subs, nil
}

func (r *PostgresDirectoryRepository) ListDepartments(ctx context.Context, subdivisionID int64) ([]*directory.Department, error) {
	query := `SELECT id, subdivision_id, name
               FROM departments WHERE subdivision_id = $1 ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query, subdivisionID)
	if err != nil {
		return nil, fmt.Errorf("error listing departments: %w", err)
	}
	defer rows.Close()

	deps := make([]*directory.Department, 0)
	for rows.Next() {
		dep := &directory.Department{}
		if err := rows.Scan(&dep.ID, &dep.SubdivisionID, &dep.Name); err != nil {
			return nil, fmt.Errorf("error scanning department: %w", err)
		}
		deps = append(deps, dep)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating departments: %w", err)
	}
	return deps, nil
}
