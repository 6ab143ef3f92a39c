package database

import (
	"context"
	"database/sql"
	"fmt"

	"deadline_notifier/internal/domain/deadline"
	"deadline_notifier/internal/domain/notification"
)

// PostgresDeadlineRepository reads the tracked deadline records one scope is
// evaluated against. Organization-wide scopes see records not attached to any
// subdivision; narrower scopes see exactly their own records.
type PostgresDeadlineRepository struct {
	db *sql.DB
}

func NewPostgresDeadlineRepository(db *sql.DB) *PostgresDeadlineRepository {
	return &PostgresDeadlineRepository{db: db}
}

func (r *PostgresDeadlineRepository) DeadlinesForScope(ctx context.Context, scope notification.Scope) ([]deadline.Record, error) {
	query := `SELECT name, detail, base_date, periodicity_months, warning_window_days
               FROM tracked_deadlines WHERE organization_id = $1`
	args := []interface{}{scope.OrganizationID}

	switch {
	case scope.DepartmentID.Valid:
		query += ` AND subdivision_id = $2 AND department_id = $3`
		args = append(args, scope.SubdivisionID.Int64, scope.DepartmentID.Int64)
	case scope.SubdivisionID.Valid:
		query += ` AND subdivision_id = $2 AND department_id IS NULL`
		args = append(args, scope.SubdivisionID.Int64)
	default:
		query += ` AND subdivision_id IS NULL`
	}
	query += ` ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying tracked deadlines: %w", err)
	}
	defer rows.Close()

	records := make([]deadline.Record, 0)
	for rows.Next() {
		var rec deadline.Record
		var baseDate sql.NullTime
		var detail sql.NullString
		if err := rows.Scan(&rec.Name, &detail, &baseDate, &rec.PeriodicityMonths, &rec.WarningWindowDays); err != nil {
			return nil, fmt.Errorf("error scanning tracked deadline: %w", err)
		}
		rec.Detail = detail.String
		if baseDate.Valid {
			t := baseDate.Time
			rec.BaseDate = &t
		}
		records = append(records, rec)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tracked deadlines: %w", err)
	}
	return records, nil
}
