package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"deadline_notifier/internal/domain/mail"
)

// Custom errors
var ErrSettingsNotFound = fmt.Errorf("email settings not found for organization")

// Defaults applied when the stored settings leave a field NULL.
const (
	defaultSendDelaySeconds  = 1.0
	defaultMaxRetries        = 3
	defaultConnectionTimeout = 30 * time.Second
)

type PostgresSettingsRepository struct {
	db *sql.DB
}

func NewPostgresSettingsRepository(db *sql.DB) *PostgresSettingsRepository {
	return &PostgresSettingsRepository{db: db}
}

// SettingsForOrganization loads the outbound e-mail configuration of one
// organization. The recipient_emails column stores one address per line.
func (r *PostgresSettingsRepository) SettingsForOrganization(ctx context.Context, organizationID int64) (*mail.Settings, error) {
	query := `SELECT organization_id, smtp_host, smtp_port, smtp_username, smtp_password, use_tls, use_ssl,
                      from_address, recipient_emails, send_delay_seconds, max_retries, connection_timeout_seconds, is_active
               FROM email_settings WHERE organization_id = $1`

	s := &mail.Settings{}
	var fromAddress, recipientEmails sql.NullString
	var delaySeconds sql.NullFloat64
	var maxRetries, timeoutSeconds sql.NullInt64
	err := r.db.QueryRowContext(ctx, query, organizationID).Scan(
		&s.OrganizationID, &s.Host, &s.Port, &s.Username, &s.Password, &s.UseTLS, &s.UseSSL,
		&fromAddress, &recipientEmails, &delaySeconds, &maxRetries, &timeoutSeconds, &s.IsActive,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrSettingsNotFound
		}
		return nil, fmt.Errorf("error getting email settings for organization %d: %w", organizationID, err)
	}

	s.FromAddress = fromAddress.String
	for _, line := range strings.Split(recipientEmails.String, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			s.RecipientEmails = append(s.RecipientEmails, line)
		}
	}

	s.DelaySeconds = defaultSendDelaySeconds
	if delaySeconds.Valid {
		s.DelaySeconds = delaySeconds.Float64
	}
	s.MaxRetries = defaultMaxRetries
	if maxRetries.Valid {
		s.MaxRetries = int(maxRetries.Int64)
	}
	s.ConnectionTimeout = defaultConnectionTimeout
	if timeoutSeconds.Valid {
		s.ConnectionTimeout = time.Duration(timeoutSeconds.Int64) * time.Second
	}

	return s, nil
}
