package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"deadline_notifier/internal/app"
	"deadline_notifier/internal/domain/notification"
	"deadline_notifier/internal/infra/config"
	idb "deadline_notifier/internal/infra/database"
	"deadline_notifier/internal/infra/logger"
	"deadline_notifier/internal/infra/render"
	"deadline_notifier/internal/infra/scheduler"
	"deadline_notifier/internal/infra/smtp"

	"github.com/sirupsen/logrus"
)

// manualRunTimeout bounds one operator-triggered run from the command line.
const manualRunTimeout = 30 * time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Get().Fatalf("Could not load application configuration: %v", err)
	}
	logger.Init(cfg)
	log := logger.Get()
	log.Infof("Configuration loaded. LogLevel: %s, Environment: %s", cfg.LogLevel, cfg.Environment)

	// Initialize Database Connection
	db, err := idb.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Could not connect to database: %v", err)
	}
	defer db.Close()
	log.Info("Database connection established successfully.")

	// Initialize Repositories
	notificationRepo := idb.NewPostgresNotificationRepository(db)
	directoryRepo := idb.NewPostgresDirectoryRepository(db)
	settingsRepo := idb.NewPostgresSettingsRepository(db)
	deadlineRepo := idb.NewPostgresDeadlineRepository(db)

	// Recipient sources, queried in order. Only the responsible-employee
	// source widens to broader scope levels when its own level is empty.
	sources := []app.SourceEntry{
		{Source: idb.NewSubdivisionEmailSource(db)},
		{Source: idb.NewResponsibleEmployeeSource(db), ScopeFallback: true},
		{Source: idb.NewOrganizationSettingsSource(settingsRepo)},
	}

	// Application services
	tracker := app.NewRunTracker(notificationRepo, log)
	aggregator := app.NewRecipientAggregator(log)
	scopes := app.NewDirectoryScopeProvider(directoryRepo)
	notifService := app.NewNotificationService(
		tracker,
		aggregator,
		directoryRepo,
		scopes,
		deadlineRepo,
		settingsRepo,
		render.NewTextRenderer(),
		smtp.NewTransport,
		sources,
		log,
	)
	reportService := app.NewReportService(notificationRepo)

	// Subcommands cover the operator surface; no arguments means daemon mode.
	if len(os.Args) > 1 {
		runCommand(os.Args[1], os.Args[2:], notifService, reportService, directoryRepo, log)
		return
	}

	notifScheduler := scheduler.NewNotificationScheduler(notifService, log, cfg.CronSpecScheduledRuns)
	notifScheduler.Start()

	log.Info("Application setup complete. Scheduler is running.")

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down application...")
	notifScheduler.Stop()
	log.Info("Application shut down gracefully.")
}

// runCommand executes one operator command and exits: a manual notification
// run, or a read-only report over past runs.
func runCommand(cmd string, args []string, notifService *app.NotificationService, reportService *app.ReportService, directoryRepo *idb.PostgresDirectoryRepository, log *logrus.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), manualRunTimeout)
	defer cancel()

	switch cmd {
	case "run":
		if len(args) == 0 {
			if err := notifService.RunForAllOrganizations(ctx, notification.TriggerManual, sql.NullInt64{}); err != nil {
				log.Fatalf("Manual run failed: %v", err)
			}
			return
		}
		orgID := parseID(args[0], "organization id", log)
		org, err := directoryRepo.GetOrganizationByID(ctx, orgID)
		if err != nil {
			log.Fatalf("Could not load organization %d: %v", orgID, err)
		}
		run, err := notifService.RunForOrganization(ctx, org, notification.TriggerManual, sql.NullInt64{})
		if err != nil {
			log.Fatalf("Manual run for organization %s failed: %v", org.ShortName, err)
		}
		summary := run.Summary()
		fmt.Printf("Run %d: %s (%d sent, %d failed, %d skipped, %.1f%% success)\n",
			run.ID, run.Status, summary.Successful, summary.Failed, summary.Skipped, summary.SuccessRate)

	case "runs":
		filter := notification.RunFilter{Limit: 20}
		if len(args) > 0 {
			filter.OrganizationID = sql.NullInt64{Int64: parseID(args[0], "organization id", log), Valid: true}
		}
		runs, err := reportService.ListRuns(ctx, filter)
		if err != nil {
			log.Fatalf("Could not list runs: %v", err)
		}
		for _, run := range runs {
			fmt.Printf("%d\torg=%d\t%s\t%s\t%s\tsent=%d failed=%d skipped=%d\n",
				run.ID, run.OrganizationID, run.Trigger, run.Status,
				run.CreatedAt.Format("2006-01-02 15:04"),
				run.SuccessfulCount, run.FailedCount, run.SkippedCount)
		}

	case "targets":
		if len(args) == 0 {
			log.Fatal("Usage: notifier targets <run-id>")
		}
		runID := parseID(args[0], "run id", log)
		run, targets, err := reportService.RunDetails(ctx, runID)
		if err != nil {
			log.Fatalf("Could not load run %d: %v", runID, err)
		}
		fmt.Printf("Run %d (org %d): %s\n", run.ID, run.OrganizationID, run.Status)
		for _, t := range targets {
			line := fmt.Sprintf("  %s\t%s", t.Scope.Name, t.Status)
			if t.SkipReason != "" {
				line += "\t" + string(t.SkipReason)
			}
			if t.ErrorMessage != "" {
				line += "\t" + t.ErrorMessage
			}
			fmt.Println(line)
		}

	default:
		log.Fatalf("Unknown command %q. Commands: run [org-id], runs [org-id], targets <run-id>.", cmd)
	}
}

func parseID(raw, what string, log *logrus.Logger) int64 {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		log.Fatalf("Invalid %s %q: %v", what, raw, err)
	}
	return id
}
