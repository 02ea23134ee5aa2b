package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"ftcguard/internal/compliance"
	"ftcguard/internal/domain"
	"ftcguard/internal/infra/config"
)

const defaultReportWindow = 24 * time.Hour

// ReportScheduler periodically builds a compliance report from recent
// ledger validations and logs it.
type ReportScheduler struct {
	cron   *cron.Cron
	ledger *Ledger
	window time.Duration
	logger *slog.Logger

	schedule string
}

// NewReportScheduler creates a scheduler from config. Call Start to
// begin running the cron job.
func NewReportScheduler(cfg config.ReportsConfig, ledger *Ledger, logger *slog.Logger) *ReportScheduler {
	window := cfg.Window
	if window <= 0 {
		window = defaultReportWindow
	}
	return &ReportScheduler{
		cron:     cron.New(),
		ledger:   ledger,
		window:   window,
		logger:   logger,
		schedule: cfg.Schedule,
	}
}

// Start registers the cron job and starts the scheduler.
func (s *ReportScheduler) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.run); err != nil {
		return fmt.Errorf("invalid report schedule %q: %w", s.schedule, err)
	}
	s.cron.Start()
	s.logger.Info("report scheduler started", "schedule", s.schedule, "window", s.window)
	return nil
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *ReportScheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *ReportScheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	report, err := s.BuildReport(ctx)
	if err != nil {
		s.logger.Error("scheduled compliance report failed", "error", err)
		return
	}

	s.logger.Info("compliance report",
		"compliant", report.CompliantCount,
		"non_compliant", report.NonCompliantCount,
		"rate", report.ComplianceRate,
		"issues", len(report.Issues),
	)
}

// BuildReport aggregates validations from the configured window into a
// compliance report. Shared by the cron job and the report endpoint.
func (s *ReportScheduler) BuildReport(ctx context.Context) (domain.ComplianceReport, error) {
	entries, err := s.ledger.RecentValidations(ctx, time.Now().Add(-s.window), 0)
	if err != nil {
		return domain.ComplianceReport{}, err
	}
	return compliance.GenerateReport(entries), nil
}
