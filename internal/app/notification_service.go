// internal/app/notification_service.go
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"deadline_notifier/internal/domain/deadline"
	"deadline_notifier/internal/domain/directory"
	"deadline_notifier/internal/domain/mail"
	"deadline_notifier/internal/domain/notification"
	idb "deadline_notifier/internal/infra/database"

	"github.com/sirupsen/logrus"
)

// maxStoredErrorLen bounds the error text written to a target record;
// operators see a truncated message, never a full trace.
const maxStoredErrorLen = 1000

// Render failure taxonomy. A missing template and a failed document build are
// expected skip outcomes; any other render error becomes a failed target.
var (
	ErrTemplateNotFound = errors.New("email template not found")
	ErrDocGeneration    = errors.New("document generation failed")
)

// ScopeProvider yields the scopes one run iterates, in a stable order.
type ScopeProvider interface {
	ScopesForOrganization(ctx context.Context, organizationID int64) ([]notification.Scope, error)
}

// DeadlineProvider hands the orchestrator the deadline records of a scope,
// already filtered by access rights (out of scope here).
type DeadlineProvider interface {
	DeadlinesForScope(ctx context.Context, scope notification.Scope) ([]deadline.Record, error)
}

// SettingsProvider loads an organization's outbound e-mail settings.
type SettingsProvider interface {
	SettingsForOrganization(ctx context.Context, organizationID int64) (*mail.Settings, error)
}

// ReportItem is one classified deadline line in the rendered report.
type ReportItem struct {
	Name      string
	Detail    string
	NextDate  *time.Time
	DaysUntil int
}

// ReportContext is the template context handed to the renderer.
type ReportContext struct {
	OrganizationName string
	ScopeName        string
	Date             time.Time
	Overdue          []ReportItem
	Upcoming         []ReportItem
}

// RenderedMessage is the renderer's output; the orchestrator fills in the
// envelope (from/to) before dispatch.
type RenderedMessage struct {
	Subject    string
	BodyText   string
	BodyHTML   string
	Attachment *mail.Attachment
}

// Renderer turns a report context into message content. Implementations may
// fail with ErrTemplateNotFound or ErrDocGeneration to request a skip.
type Renderer interface {
	Render(ctx context.Context, rc ReportContext) (*RenderedMessage, error)
}

// TransportFactory builds a transport from per-organization settings. One
// transport (and one connection) serves a whole run.
type TransportFactory func(settings *mail.Settings) mail.Transport

// NotificationService orchestrates one notification run per organization:
// classify deadlines per scope, aggregate recipients, render, dispatch, and
// record the audit trail. Every per-scope problem degrades to a recorded
// target outcome; the run always completes.
type NotificationService struct {
	tracker      *RunTracker
	aggregator   *RecipientAggregator
	directory    directory.Repository
	scopes       ScopeProvider
	deadlines    DeadlineProvider
	settings     SettingsProvider
	renderer     Renderer
	newTransport TransportFactory
	sources      []SourceEntry
	logger       *logrus.Logger

	now func() time.Time
}

func NewNotificationService(
	tracker *RunTracker,
	aggregator *RecipientAggregator,
	dirRepo directory.Repository,
	scopes ScopeProvider,
	deadlines DeadlineProvider,
	settings SettingsProvider,
	renderer Renderer,
	newTransport TransportFactory,
	sources []SourceEntry,
	logger *logrus.Logger,
) *NotificationService {
	return &NotificationService{
		tracker:      tracker,
		aggregator:   aggregator,
		directory:    dirRepo,
		scopes:       scopes,
		deadlines:    deadlines,
		settings:     settings,
		renderer:     renderer,
		newTransport: newTransport,
		sources:      sources,
		logger:       logger,
		now:          time.Now,
	}
}

// RunForAllOrganizations executes one run per organization. A failing
// organization is logged and does not stop the others.
func (s *NotificationService) RunForAllOrganizations(ctx context.Context, trigger notification.TriggerType, initiatedBy sql.NullInt64) error {
	orgs, err := s.directory.ListOrganizations(ctx)
	if err != nil {
		return fmt.Errorf("failed to list organizations: %w", err)
	}
	for _, org := range orgs {
		if _, err := s.RunForOrganization(ctx, org, trigger, initiatedBy); err != nil {
			s.logger.Errorf("Notification run for organization %d (%s) aborted: %v", org.ID, org.ShortName, err)
		}
	}
	return nil
}

// RunForOrganization executes one complete run for the organization and
// returns the finalized run record. Only programming-contract violations
// produce a non-nil error; delivery and rendering problems end up as target
// outcomes instead.
func (s *NotificationService) RunForOrganization(ctx context.Context, org *directory.Organization, trigger notification.TriggerType, initiatedBy sql.NullInt64) (*notification.Run, error) {
	run, err := s.tracker.StartRun(ctx, org.ID, trigger, initiatedBy)
	if err != nil {
		return nil, err
	}

	settings, err := s.settings.SettingsForOrganization(ctx, org.ID)
	switch {
	case errors.Is(err, idb.ErrSettingsNotFound):
		s.logger.Warnf("No e-mail settings configured for organization %s. Run %d ends with no targets.", org.ShortName, run.ID)
		return run, s.tracker.FinalizeRun(ctx, run)
	case err != nil:
		s.logger.Errorf("Could not load e-mail settings for organization %s: %v. Run %d ends with no targets.", org.ShortName, err, run.ID)
		return run, s.tracker.FinalizeRun(ctx, run)
	case !settings.Usable():
		s.logger.Warnf("E-mail sending disabled or SMTP host missing for organization %s. Run %d ends with no targets.", org.ShortName, run.ID)
		return run, s.tracker.FinalizeRun(ctx, run)
	}

	dispatcher := NewDispatcher(s.newTransport(settings), DispatchConfig{
		DelaySeconds: settings.DelaySeconds,
		MaxRetries:   settings.MaxRetries,
	}, s.logger)
	if err := dispatcher.Open(); err != nil {
		s.logger.Errorf("Could not open transport for organization %s: %v. Run %d ends with no targets.", org.ShortName, err, run.ID)
		return run, s.tracker.FinalizeRun(ctx, run)
	}
	defer dispatcher.Close()

	scopes, err := s.scopes.ScopesForOrganization(ctx, org.ID)
	if err != nil {
		s.logger.Errorf("Could not list scopes for organization %s: %v. Run %d ends with no targets.", org.ShortName, err, run.ID)
		return run, s.tracker.FinalizeRun(ctx, run)
	}

	for _, scope := range scopes {
		if err := s.processScope(ctx, run, scope, org, settings, dispatcher); err != nil {
			// Contract violation: finalize what we have and escalate.
			if ferr := s.tracker.FinalizeRun(ctx, run); ferr != nil {
				s.logger.Errorf("Could not finalize aborted run %d: %v", run.ID, ferr)
			}
			return run, err
		}
	}

	return run, s.tracker.FinalizeRun(ctx, run)
}

// processScope evaluates one scope and records exactly one target. All
// expected problems degrade to a skipped or failed target; the returned
// error is non-nil only for contract violations that must abort the run.
func (s *NotificationService) processScope(ctx context.Context, run *notification.Run, scope notification.Scope, org *directory.Organization, settings *mail.Settings, dispatcher *Dispatcher) error {
	records, err := s.deadlines.DeadlinesForScope(ctx, scope)
	if err != nil {
		s.recordTarget(ctx, run, failedTarget(scope, fmt.Sprintf("deadline lookup failed: %v", err)))
		return nil
	}

	referenceDate := s.now()
	var overdue, upcoming []ReportItem
	for _, rec := range records {
		c := rec.Classify(referenceDate)
		switch c.Status {
		case deadline.StatusOverdue:
			overdue = append(overdue, reportItem(rec, c))
		case deadline.StatusUpcoming:
			upcoming = append(upcoming, reportItem(rec, c))
		}
	}
	s.tracker.AddClassified(run, len(overdue), len(upcoming))

	if len(overdue) == 0 && len(upcoming) == 0 {
		s.logger.Infof("Nothing requires notice for scope %q (org %s); skipping.", scope.Name, org.ShortName)
		s.recordTarget(ctx, run, skippedTarget(scope, notification.SkipNoSubjectData, ""))
		return nil
	}

	agg := s.aggregator.Collect(ctx, scope, s.sources)
	if agg.RejectedCount > 0 {
		s.logger.Warnf("%d malformed recipient address(es) dropped for scope %q.", agg.RejectedCount, scope.Name)
	}
	if len(agg.Emails) == 0 {
		s.logger.Warnf("No recipients found for scope %q (org %s); skipping.", scope.Name, org.ShortName)
		s.recordTarget(ctx, run, skippedTarget(scope, notification.SkipNoRecipients, ""))
		return nil
	}

	rendered, err := s.renderer.Render(ctx, ReportContext{
		OrganizationName: org.ShortName,
		ScopeName:        scope.Name,
		Date:             referenceDate,
		Overdue:          overdue,
		Upcoming:         upcoming,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrTemplateNotFound):
			s.recordTarget(ctx, run, skippedTarget(scope, notification.SkipTemplateNotFound, err.Error()))
		case errors.Is(err, ErrDocGeneration):
			s.recordTarget(ctx, run, skippedTarget(scope, notification.SkipDocGenerationFailed, err.Error()))
		default:
			s.recordTarget(ctx, run, failedTarget(scope, fmt.Sprintf("render failed: %v", err)))
		}
		return nil
	}

	result, err := dispatcher.Send(ctx, &mail.Message{
		From:       settings.From(),
		To:         agg.Emails,
		Subject:    rendered.Subject,
		BodyText:   rendered.BodyText,
		BodyHTML:   rendered.BodyHTML,
		Attachment: rendered.Attachment,
	})
	if err != nil {
		return err
	}

	target := &notification.Target{
		Scope:          scope,
		Recipients:     agg.Emails,
		RecipientCount: len(agg.Emails),
		Subject:        rendered.Subject,
	}
	if result.OK {
		target.Status = notification.TargetStatusSuccess
		target.SentAt = sql.NullTime{Time: s.now(), Valid: true}
		s.logger.Infof("Notification sent for scope %q (org %s) to %d recipient(s) in %d attempt(s).",
			scope.Name, org.ShortName, len(agg.Emails), result.Attempts)
	} else {
		target.Status = notification.TargetStatusFailed
		target.ErrorMessage = truncateError(result.ErrorMessage)
	}
	s.recordTarget(ctx, run, target)
	return nil
}

// recordTarget persists a target outcome. An audit-write failure is logged
// and swallowed: the run must always complete over all scopes.
func (s *NotificationService) recordTarget(ctx context.Context, run *notification.Run, target *notification.Target) {
	if err := s.tracker.RecordTarget(ctx, run, target); err != nil {
		s.logger.Errorf("Could not record target outcome: %v", err)
	}
}

func reportItem(rec deadline.Record, c deadline.Classification) ReportItem {
	return ReportItem{
		Name:      rec.Name,
		Detail:    rec.Detail,
		NextDate:  c.NextDate,
		DaysUntil: c.DaysUntil,
	}
}

func skippedTarget(scope notification.Scope, reason notification.SkipReason, errMsg string) *notification.Target {
	return &notification.Target{
		Scope:        scope,
		Status:       notification.TargetStatusSkipped,
		SkipReason:   reason,
		ErrorMessage: truncateError(errMsg),
	}
}

func failedTarget(scope notification.Scope, errMsg string) *notification.Target {
	return &notification.Target{
		Scope:        scope,
		Status:       notification.TargetStatusFailed,
		ErrorMessage: truncateError(errMsg),
	}
}

func truncateError(msg string) string {
	if len(msg) > maxStoredErrorLen {
		return msg[:maxStoredErrorLen]
	}
	return msg
}
