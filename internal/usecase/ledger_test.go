package usecase

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ftcguard/internal/domain"
)

func newTestLedger(t *testing.T) *Ledger {
	t.Helper()
	ledger, err := NewLedger(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { ledger.Close() })
	return ledger
}

func TestLedgerCostSummary(t *testing.T) {
	ledger := newTestLedger(t)
	ctx := context.Background()

	require.NoError(t, ledger.RecordCost(ctx, domain.CostEstimate{
		Provider: "openai", Model: "gpt-4o-mini", USD: 0.002,
		Usage: domain.Usage{InputTokens: 100, OutputTokens: 200},
	}))
	require.NoError(t, ledger.RecordCost(ctx, domain.CostEstimate{
		Provider: "openai", Model: "gpt-4o-mini", USD: 0.003,
	}))
	require.NoError(t, ledger.RecordCost(ctx, domain.CostEstimate{
		Provider: "elevenlabs", Model: "eleven_multilingual_v2", USD: 0.011,
		Usage: domain.Usage{Characters: 100},
	}))

	summary, err := ledger.CostSummary(ctx)
	require.NoError(t, err)
	require.Len(t, summary, 2)

	// Ordered by spend descending.
	assert.Equal(t, "elevenlabs", summary[0].Provider)
	assert.Equal(t, 1, summary[0].Calls)
	assert.InDelta(t, 0.011, summary[0].TotalUSD, 1e-9)

	assert.Equal(t, "openai", summary[1].Provider)
	assert.Equal(t, 2, summary[1].Calls)
	assert.InDelta(t, 0.005, summary[1].TotalUSD, 1e-9)
}

func TestLedgerValidationsRoundTrip(t *testing.T) {
	ledger := newTestLedger(t)
	ctx := context.Background()

	require.NoError(t, ledger.RecordValidation(ctx, "post-1", domain.PlatformBlog,
		domain.ValidationResult{IsValid: true, HasDisclosure: true}))
	require.NoError(t, ledger.RecordValidation(ctx, "post-2", domain.PlatformTikTok,
		domain.ValidationResult{
			HasDisclosure: true,
			Issues:        []string{"Disclosure may be too vague or unclear"},
		}))

	entries, err := ledger.RecentValidations(ctx, time.Now().Add(-time.Hour), 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "post-1", entries[0].ContentID)
	assert.True(t, entries[0].Result.IsValid)

	assert.Equal(t, "post-2", entries[1].ContentID)
	assert.False(t, entries[1].Result.IsValid)
	assert.True(t, entries[1].Result.HasDisclosure)
	assert.Equal(t, []string{"Disclosure may be too vague or unclear"}, entries[1].Result.Issues)
}

func TestLedgerRecentValidationsWindow(t *testing.T) {
	ledger := newTestLedger(t)
	ctx := context.Background()

	require.NoError(t, ledger.RecordValidation(ctx, "old", domain.PlatformBlog,
		domain.ValidationResult{IsValid: true}))

	entries, err := ledger.RecentValidations(ctx, time.Now().Add(time.Hour), 0)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLedgerEmptySummary(t *testing.T) {
	ledger := newTestLedger(t)

	summary, err := ledger.CostSummary(context.Background())
	require.NoError(t, err)
	assert.Empty(t, summary)
}
