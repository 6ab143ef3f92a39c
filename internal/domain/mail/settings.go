// internal/domain/mail/settings.go
package mail

import "time"

// Settings is the per-organization outbound e-mail configuration, loaded once
// at run start and passed explicitly into the dispatcher. Never ambient state.
type Settings struct {
	OrganizationID int64

	Host     string
	Port     int
	Username string
	Password string
	UseTLS   bool // STARTTLS; mutually exclusive with UseSSL
	UseSSL   bool

	FromAddress     string
	RecipientEmails []string // general notification recipients configured on the organization

	DelaySeconds      float64 // minimum interval between sends in a run
	MaxRetries        int
	ConnectionTimeout time.Duration

	IsActive bool
}

// From returns the sender address, falling back to the SMTP username when no
// explicit from-address is configured.
func (s *Settings) From() string {
	if s.FromAddress != "" {
		return s.FromAddress
	}
	return s.Username
}

// Usable reports whether the settings can carry a run's sends at all.
func (s *Settings) Usable() bool {
	return s.IsActive && s.Host != ""
}
