package usecase

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ftcguard/internal/domain"
	"ftcguard/internal/infra/config"
)

func timeAgo(t *testing.T) time.Time {
	t.Helper()
	return time.Now().Add(-time.Hour)
}

func TestSchedulerBuildReport(t *testing.T) {
	ledger := newTestLedger(t)
	ctx := context.Background()

	require.NoError(t, ledger.RecordValidation(ctx, "a", domain.PlatformBlog,
		domain.ValidationResult{IsValid: true}))
	require.NoError(t, ledger.RecordValidation(ctx, "b", domain.PlatformBlog,
		domain.ValidationResult{Issues: []string{"Missing FTC disclosure statement"}}))

	s := NewReportScheduler(config.ReportsConfig{Schedule: "0 6 * * *"}, ledger, slog.Default())

	report, err := s.BuildReport(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, report.CompliantCount)
	assert.Equal(t, 1, report.NonCompliantCount)
	assert.Equal(t, 50.0, report.ComplianceRate)
	assert.Equal(t, []string{"b: Missing FTC disclosure statement"}, report.Issues)
}

func TestSchedulerStartStop(t *testing.T) {
	ledger := newTestLedger(t)
	s := NewReportScheduler(config.ReportsConfig{Schedule: "@hourly"}, ledger, slog.Default())

	require.NoError(t, s.Start())
	s.Stop()
}

func TestSchedulerInvalidSchedule(t *testing.T) {
	ledger := newTestLedger(t)
	s := NewReportScheduler(config.ReportsConfig{Schedule: "not a cron expr"}, ledger, slog.Default())

	assert.Error(t, s.Start())
}
