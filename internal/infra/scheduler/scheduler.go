package scheduler

import (
	"context"
	"database/sql"
	"time"

	"deadline_notifier/internal/domain/notification"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// runTimeout bounds one full scheduled pass over all organizations.
const runTimeout = 30 * time.Minute

// RunService is the part of the application layer the scheduler triggers.
type RunService interface {
	RunForAllOrganizations(ctx context.Context, trigger notification.TriggerType, initiatedBy sql.NullInt64) error
}

type NotificationScheduler struct {
	cronEngine        *cron.Cron
	runService        RunService
	logger            *logrus.Logger
	cronScheduledRuns string
}

func NewNotificationScheduler(runService RunService, logger *logrus.Logger, cronScheduledRuns string) *NotificationScheduler {
	return &NotificationScheduler{
		cronEngine:        cron.New(cron.WithLocation(time.Local)), // Use server's local time for cron
		runService:        runService,
		logger:            logger,
		cronScheduledRuns: cronScheduledRuns,
	}
}

func (s *NotificationScheduler) Start() {
	s.logger.Info("Starting notification scheduler...")

	_, err := s.cronEngine.AddFunc(s.cronScheduledRuns, func() {
		s.logger.Info("Cron job triggered: scheduled notification runs for all organizations.")
		ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
		defer cancel()
		if err := s.runService.RunForAllOrganizations(ctx, notification.TriggerScheduled, sql.NullInt64{}); err != nil {
			s.logger.Errorf("Scheduled notification runs failed: %v", err)
		}
	})
	if err != nil {
		s.logger.Fatalf("Could not add scheduled-runs cron job: %v", err)
	}

	s.cronEngine.Start()
	s.logger.Infof("Notification scheduler started, spec: %q.", s.cronScheduledRuns)
}

// Stop halts the cron engine and waits for a running job to finish.
func (s *NotificationScheduler) Stop() {
	s.logger.Info("Stopping notification scheduler...")
	ctx := s.cronEngine.Stop()
	<-ctx.Done()
	s.logger.Info("Notification scheduler stopped.")
}
