package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ftcguard/internal/adapter/llm"
	"ftcguard/internal/adapter/publish"
	"ftcguard/internal/adapter/voice"
	"ftcguard/internal/compliance"
	"ftcguard/internal/domain"
	"ftcguard/internal/infra/config"
	"ftcguard/internal/infra/secrets"
)

func newTestPipeline(t *testing.T, complianceCfg config.ComplianceConfig) (*Pipeline, *Ledger) {
	t.Helper()
	logger := slog.Default()

	reg, err := llm.BuildRegistry(context.Background(), config.ProvidersConfig{
		MockMode: true,
		Text:     []config.ProviderConfig{{Name: "openai", Type: "openai"}},
	}, secrets.NewEnvResolver(), logger)
	require.NoError(t, err)

	validator := compliance.NewValidator()
	injector := compliance.NewInjector(validator)
	ledger := newTestLedger(t)

	pipeline := NewPipeline(
		reg,
		voice.NewMockVoiceProvider("elevenlabs", logger),
		publish.NewMockVideoPublisher("youtube", complianceCfg.AutoInject, validator, injector, logger),
		validator,
		injector,
		ledger,
		complianceCfg,
		logger,
	)
	return pipeline, ledger
}

func TestPipelineRunInjectsAndValidates(t *testing.T) {
	pipeline, ledger := newTestPipeline(t, config.ComplianceConfig{AutoInject: true})

	result, err := pipeline.Run(context.Background(), PipelineRequest{
		Prompt:   "Write a post about desk lamps.",
		Platform: domain.PlatformBlog,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, result.ContentID)
	assert.True(t, strings.HasPrefix(result.Content, "MOCK RESPONSE"))
	assert.True(t, result.Validation.HasDisclosure, "auto-inject should add a disclosure")
	assert.True(t, result.Validation.IsValid)
	require.Len(t, result.Costs, 1)
	assert.Equal(t, 0.0, result.TotalUSD)

	entries, err := ledger.RecentValidations(context.Background(), timeAgo(t), 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, result.ContentID, entries[0].ContentID)

	summary, err := ledger.CostSummary(context.Background())
	require.NoError(t, err)
	require.Len(t, summary, 1)
	assert.Equal(t, 1, summary[0].Calls)
}

func TestPipelineRunWithoutInjection(t *testing.T) {
	pipeline, _ := newTestPipeline(t, config.ComplianceConfig{AutoInject: false})

	result, err := pipeline.Run(context.Background(), PipelineRequest{
		Prompt: "Write a post about desk lamps.",
	})
	require.NoError(t, err)

	// Mock output has no disclosure; failure surfaces as data.
	assert.False(t, result.Validation.IsValid)
	assert.False(t, result.Validation.HasDisclosure)
	assert.Contains(t, result.Validation.Issues, "Missing FTC disclosure statement")
}

func TestPipelineRunRejectsBadInput(t *testing.T) {
	pipeline, _ := newTestPipeline(t, config.ComplianceConfig{AutoInject: true})

	_, err := pipeline.Run(context.Background(), PipelineRequest{Prompt: "   "})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	_, err = pipeline.Run(context.Background(), PipelineRequest{
		Prompt:   "hi",
		Platform: domain.Platform("myspace"),
	})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestPipelineRunUnknownProvider(t *testing.T) {
	pipeline, _ := newTestPipeline(t, config.ComplianceConfig{AutoInject: true})

	_, err := pipeline.Run(context.Background(), PipelineRequest{
		Prompt:   "hi",
		Provider: "no-such-provider",
	})
	assert.True(t, errors.Is(err, domain.ErrProviderNotFound))
}

func TestPipelineRunSynthesize(t *testing.T) {
	pipeline, _ := newTestPipeline(t, config.ComplianceConfig{AutoInject: true})

	result, err := pipeline.Run(context.Background(), PipelineRequest{
		Prompt:     "Narrate a desk lamp review.",
		Platform:   domain.PlatformYouTube,
		Synthesize: true,
	})
	require.NoError(t, err)

	assert.Equal(t, "mock://audio/sample.mp3", result.AudioURL)
	assert.Len(t, result.Costs, 2)
}

func TestPipelineRunPublish(t *testing.T) {
	pipeline, _ := newTestPipeline(t, config.ComplianceConfig{AutoInject: true})

	result, err := pipeline.Run(context.Background(), PipelineRequest{
		Prompt:   "Review three webcams.",
		Platform: domain.PlatformYouTube,
		Publish:  true,
		Title:    "Webcam Review",
	})
	require.NoError(t, err)

	require.NotNil(t, result.Published)
	assert.Equal(t, "mock-video-id", result.Published.VideoID)
}

func TestPipelineRunSkipsPublishWhenNonCompliant(t *testing.T) {
	pipeline, _ := newTestPipeline(t, config.ComplianceConfig{AutoInject: false})

	result, err := pipeline.Run(context.Background(), PipelineRequest{
		Prompt:  "Review three webcams.",
		Publish: true,
		Title:   "Webcam Review",
	})
	require.NoError(t, err)

	assert.False(t, result.Validation.IsValid)
	assert.Nil(t, result.Published)
}

func TestPipelineValidateEndpoint(t *testing.T) {
	pipeline, ledger := newTestPipeline(t, config.ComplianceConfig{AutoInject: true})

	result, err := pipeline.Validate(context.Background(), "caption-1",
		"#ad #affiliate\nAs an Amazon Associate, I earn from qualifying purchases.",
		domain.PlatformTikTok, domain.ContentSocial)
	require.NoError(t, err)
	assert.True(t, result.IsValid)

	entries, err := ledger.RecentValidations(context.Background(), timeAgo(t), 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "caption-1", entries[0].ContentID)
}

func TestPipelineDisclose(t *testing.T) {
	pipeline, _ := newTestPipeline(t, config.ComplianceConfig{
		AutoInject: true,
		Position:   "top",
		CustomDisclosures: map[string]string{
			"blog": "Affiliate links ahead; purchases may earn a commission.",
		},
	})

	out, err := pipeline.Disclose("Lamp review body.", domain.ContentBlog, nil)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "Affiliate links ahead"))
	assert.True(t, strings.HasSuffix(out, "Lamp review body."))

	_, err = pipeline.Disclose("x", domain.ContentType("podcast"), nil)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}
