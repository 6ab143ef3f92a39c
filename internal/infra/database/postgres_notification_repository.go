package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"

	"deadline_notifier/internal/domain/notification"
)

// Custom errors
var ErrRunNotFound = fmt.Errorf("notification run not found")

type PostgresNotificationRepository struct {
	db *sql.DB
}

func NewPostgresNotificationRepository(db *sql.DB) *PostgresNotificationRepository {
	return &PostgresNotificationRepository{db: db}
}

func (r *PostgresNotificationRepository) CreateRun(ctx context.Context, run *notification.Run) error {
	query := `INSERT INTO notification_runs (organization_id, trigger_type, initiated_by, classified_overdue, classified_upcoming,
                                             successful_count, failed_count, skipped_count, status)
               VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
               RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		run.OrganizationID, run.Trigger, run.InitiatedBy,
		run.ClassifiedOverdue, run.ClassifiedUpcoming,
		run.SuccessfulCount, run.FailedCount, run.SkippedCount, run.Status,
	).Scan(&run.ID, &run.CreatedAt)
	if err != nil {
		return fmt.Errorf("error creating notification run: %w", err)
	}
	return nil
}

func (r *PostgresNotificationRepository) UpdateRun(ctx context.Context, run *notification.Run) error {
	query := `UPDATE notification_runs
               SET classified_overdue = $1, classified_upcoming = $2,
                   successful_count = $3, failed_count = $4, skipped_count = $5,
                   status = $6, completed_at = $7
               WHERE id = $8`

	res, err := r.db.ExecContext(ctx, query,
		run.ClassifiedOverdue, run.ClassifiedUpcoming,
		run.SuccessfulCount, run.FailedCount, run.SkippedCount,
		run.Status, run.CompletedAt, run.ID,
	)
	if err != nil {
		return fmt.Errorf("error updating notification run %d: %w", run.ID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error checking update of notification run %d: %w", run.ID, err)
	}
	if affected == 0 {
		return ErrRunNotFound
	}
	return nil
}

func (r *PostgresNotificationRepository) GetRunByID(ctx context.Context, id int64) (*notification.Run, error) {
	query := `SELECT id, organization_id, trigger_type, initiated_by, classified_overdue, classified_upcoming,
                      successful_count, failed_count, skipped_count, status, created_at, completed_at
               FROM notification_runs WHERE id = $1`
	run := &notification.Run{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&run.ID, &run.OrganizationID, &run.Trigger, &run.InitiatedBy,
		&run.ClassifiedOverdue, &run.ClassifiedUpcoming,
		&run.SuccessfulCount, &run.FailedCount, &run.SkippedCount,
		&run.Status, &run.CreatedAt, &run.CompletedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrRunNotFound
		}
		return nil, fmt.Errorf("error getting notification run by ID: %w", err)
	}
	return run, nil
}

func (r *PostgresNotificationRepository) ListRuns(ctx context.Context, filter notification.RunFilter) ([]*notification.Run, error) {
	query := `SELECT id, organization_id, trigger_type, initiated_by, classified_overdue, classified_upcoming,
                      successful_count, failed_count, skipped_count, status, created_at, completed_at
               FROM notification_runs`

	var conditions []string
	var args []interface{}
	if filter.OrganizationID.Valid {
		args = append(args, filter.OrganizationID.Int64)
		conditions = append(conditions, "organization_id = $"+strconv.Itoa(len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, "status = $"+strconv.Itoa(len(args)))
	}
	if filter.CreatedAfter.Valid {
		args = append(args, filter.CreatedAfter.Time)
		conditions = append(conditions, "created_at >= $"+strconv.Itoa(len(args)))
	}
	if filter.CreatedBefore.Valid {
		args = append(args, filter.CreatedBefore.Time)
		conditions = append(conditions, "created_at <= $"+strconv.Itoa(len(args)))
	}
	for i, cond := range conditions {
		if i == 0 {
			query += " WHERE " + cond
		} else {
			query += " AND " + cond
		}
	}
	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += " LIMIT $" + strconv.Itoa(len(args))
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing notification runs: %w", err)
	}
	defer rows.Close()

	runs := make([]*notification.Run, 0)
	for rows.Next() {
		run := &notification.Run{}
		if err := rows.Scan(
			&run.ID, &run.OrganizationID, &run.Trigger, &run.InitiatedBy,
			&run.ClassifiedOverdue, &run.ClassifiedUpcoming,
			&run.SuccessfulCount, &run.FailedCount, &run.SkippedCount,
			&run.Status, &run.CreatedAt, &run.CompletedAt,
		); err != nil {
			return nil, fmt.Errorf("error scanning notification run: %w", err)
		}
		runs = append(runs, run)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating notification runs: %w", err)
	}
	return runs, nil
}

func (r *PostgresNotificationRepository) CreateTarget(ctx context.Context, target *notification.Target) error {
	recipients, err := json.Marshal(target.Recipients)
	if err != nil {
		return fmt.Errorf("error encoding target recipients: %w", err)
	}

	query := `INSERT INTO notification_targets (run_id, subdivision_id, department_id, scope_name, status, skip_reason,
                                                recipients, recipient_count, subject, error_message, sent_at)
               VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
               RETURNING id, created_at`

	err = r.db.QueryRowContext(ctx, query,
		target.RunID, target.Scope.SubdivisionID, target.Scope.DepartmentID, target.Scope.Name,
		target.Status, nullString(string(target.SkipReason)),
		string(recipients), target.RecipientCount, target.Subject,
		nullString(target.ErrorMessage), target.SentAt,
	).Scan(&target.ID, &target.CreatedAt)
	if err != nil {
		return fmt.Errorf("error creating notification target: %w", err)
	}
	return nil
}

func (r *PostgresNotificationRepository) ListTargetsByRun(ctx context.Context, runID int64) ([]*notification.Target, error) {
	query := `SELECT t.id, t.run_id, r.organization_id, t.subdivision_id, t.department_id, t.scope_name,
                      t.status, t.skip_reason, t.recipients, t.recipient_count, t.subject, t.error_message,
                      t.sent_at, t.created_at
               FROM notification_targets t
               JOIN notification_runs r ON r.id = t.run_id
               WHERE t.run_id = $1 ORDER BY t.id`

	rows, err := r.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("error listing targets for run %d: %w", runID, err)
	}
	defer rows.Close()

	targets := make([]*notification.Target, 0)
	for rows.Next() {
		target := &notification.Target{}
		var skipReason, errorMessage sql.NullString
		var recipients string
		if err := rows.Scan(
			&target.ID, &target.RunID, &target.Scope.OrganizationID,
			&target.Scope.SubdivisionID, &target.Scope.DepartmentID, &target.Scope.Name,
			&target.Status, &skipReason, &recipients, &target.RecipientCount,
			&target.Subject, &errorMessage, &target.SentAt, &target.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("error scanning notification target: %w", err)
		}
		target.SkipReason = notification.SkipReason(skipReason.String)
		target.ErrorMessage = errorMessage.String
		if err := json.Unmarshal([]byte(recipients), &target.Recipients); err != nil {
			return nil, fmt.Errorf("error decoding recipients for target %d: %w", target.ID, err)
		}
		targets = append(targets, target)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating targets for run %d: %w", runID, err)
	}
	return targets, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
