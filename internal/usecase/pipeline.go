package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/oklog/ulid/v2"

	"ftcguard/internal/adapter/llm"
	"ftcguard/internal/compliance"
	"ftcguard/internal/domain"
	"ftcguard/internal/infra/config"
	"ftcguard/internal/infra/tracer"
)

// PipelineRequest describes one content production run.
type PipelineRequest struct {
	// ContentID identifies the content in the ledger; generated when empty.
	ContentID string `json:"content_id,omitempty"`
	Prompt    string `json:"prompt"`
	System    string `json:"system,omitempty"`
	// Provider selects a text provider by name; empty means default.
	Provider    string             `json:"provider,omitempty"`
	Platform    domain.Platform    `json:"platform,omitempty"`
	ContentType domain.ContentType `json:"content_type,omitempty"`
	// Synthesize requests text-to-speech of the final content.
	Synthesize bool `json:"synthesize,omitempty"`
	// Publish requests a video publish with the final content as
	// description. Skipped when validation fails and auto-inject is off.
	Publish  bool   `json:"publish,omitempty"`
	Title    string `json:"title,omitempty"`
	VideoURL string `json:"video_url,omitempty"`
}

// PipelineResult is the outcome of a pipeline run. Validation failures
// appear here as data; only provider and infrastructure failures
// surface as errors.
type PipelineResult struct {
	ContentID  string                  `json:"content_id"`
	Content    string                  `json:"content"`
	Validation domain.ValidationResult `json:"validation"`
	AudioURL   string                  `json:"audio_url,omitempty"`
	Published  *domain.PublishResult   `json:"published,omitempty"`
	Costs      []domain.CostEstimate   `json:"costs,omitempty"`
	TotalUSD   float64                 `json:"total_usd"`
}

// Pipeline wires text generation, disclosure enforcement, validation,
// and optional synthesis/publishing into one run, with every provider
// cost recorded in the ledger.
type Pipeline struct {
	texts     *llm.Registry
	voice     domain.VoiceProvider
	publisher domain.VideoPublisher
	validator *compliance.Validator
	injector  *compliance.Injector
	ledger    *Ledger
	cfg       config.ComplianceConfig
	logger    *slog.Logger
}

// NewPipeline creates a pipeline.
func NewPipeline(texts *llm.Registry, voice domain.VoiceProvider, publisher domain.VideoPublisher, validator *compliance.Validator, injector *compliance.Injector, ledger *Ledger, cfg config.ComplianceConfig, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		texts:     texts,
		voice:     voice,
		publisher: publisher,
		validator: validator,
		injector:  injector,
		ledger:    ledger,
		cfg:       cfg,
		logger:    logger,
	}
}

// Run executes the pipeline.
func (p *Pipeline) Run(ctx context.Context, req PipelineRequest) (*PipelineResult, error) {
	ctx, span := tracer.StartSpan(ctx, "pipeline.run")
	defer span.End()

	if strings.TrimSpace(req.Prompt) == "" {
		err := fmt.Errorf("%w: empty prompt", domain.ErrInvalidInput)
		tracer.RecordError(span, err)
		return nil, err
	}
	if req.Platform == "" {
		req.Platform = domain.PlatformBlog
	}
	if !req.Platform.Valid() {
		err := fmt.Errorf("%w: unknown platform %q", domain.ErrInvalidInput, req.Platform)
		tracer.RecordError(span, err)
		return nil, err
	}
	if req.ContentType == "" {
		req.ContentType = contentTypeFor(req.Platform)
	}
	if !req.ContentType.Valid() {
		err := fmt.Errorf("%w: unknown content type %q", domain.ErrInvalidInput, req.ContentType)
		tracer.RecordError(span, err)
		return nil, err
	}

	result := &PipelineResult{ContentID: req.ContentID}
	if result.ContentID == "" {
		result.ContentID = ulid.Make().String()
	}

	provider, err := p.texts.Get(req.Provider)
	if err != nil {
		tracer.RecordError(span, err)
		return nil, err
	}

	generated, err := provider.Generate(ctx, domain.GenerateRequest{
		Prompt: req.Prompt,
		System: req.System,
	})
	if err != nil {
		tracer.RecordError(span, err)
		return nil, err
	}
	p.addCost(ctx, result, generated.Cost)

	result.Content = generated.Text
	if p.cfg.AutoInject {
		result.Content = p.injector.EnsureDisclosure(result.Content, req.Platform)
	}

	result.Validation = p.validate(result.Content, req.Platform, req.ContentType)
	if err := p.ledger.RecordValidation(ctx, result.ContentID, req.Platform, result.Validation); err != nil {
		p.logger.Error("ledger validation write failed", "error", err)
	}

	if req.Synthesize {
		audio, err := p.voice.Synthesize(ctx, domain.SynthesizeRequest{Text: result.Content})
		if err != nil {
			tracer.RecordError(span, err)
			return nil, err
		}
		result.AudioURL = audio.AudioURL
		p.addCost(ctx, result, audio.Cost)
	}

	if req.Publish {
		if !result.Validation.IsValid && !p.cfg.AutoInject {
			p.logger.Warn("skipping publish, content is non-compliant",
				"content_id", result.ContentID, "issues", result.Validation.Issues)
		} else {
			published, err := p.publisher.Publish(ctx, domain.PublishRequest{
				Title:       req.Title,
				Description: result.Content,
				VideoURL:    req.VideoURL,
				Platform:    req.Platform,
			})
			if err != nil {
				tracer.RecordError(span, err)
				return nil, err
			}
			result.Published = published
		}
	}

	tracer.SetOK(span)
	p.logger.Info("pipeline run completed",
		"content_id", result.ContentID,
		"platform", req.Platform,
		"valid", result.Validation.IsValid,
		"usd", result.TotalUSD,
	)
	return result, nil
}

// Validate runs the content-type-appropriate validation without any
// generation. Used by the gateway's validate endpoint.
func (p *Pipeline) Validate(ctx context.Context, contentID, content string, platform domain.Platform, contentType domain.ContentType) (domain.ValidationResult, error) {
	if platform == "" {
		platform = domain.PlatformBlog
	}
	if contentType == "" {
		contentType = contentTypeFor(platform)
	}
	if !platform.Valid() || !contentType.Valid() {
		return domain.ValidationResult{}, fmt.Errorf("%w: platform %q / content type %q",
			domain.ErrInvalidInput, platform, contentType)
	}

	result := p.validate(content, platform, contentType)

	if contentID == "" {
		contentID = ulid.Make().String()
	}
	if err := p.ledger.RecordValidation(ctx, contentID, platform, result); err != nil {
		p.logger.Error("ledger validation write failed", "error", err)
	}
	return result, nil
}

// Disclose applies disclosure injection to content and returns the
// result. Used by the gateway's disclose endpoint.
func (p *Pipeline) Disclose(content string, contentType domain.ContentType, injectCfg *compliance.InjectConfig) (string, error) {
	if contentType == "" {
		contentType = domain.ContentBlog
	}
	if !contentType.Valid() {
		return "", fmt.Errorf("%w: unknown content type %q", domain.ErrInvalidInput, contentType)
	}
	if injectCfg == nil {
		injectCfg = p.defaultInjectConfig(contentType)
	}
	return p.injector.AddDisclosure(content, contentType, injectCfg), nil
}

func (p *Pipeline) defaultInjectConfig(contentType domain.ContentType) *compliance.InjectConfig {
	cfg := &compliance.InjectConfig{
		Enabled:  true,
		Position: compliance.PositionBottom,
	}
	switch p.cfg.Position {
	case "top":
		cfg.Position = compliance.PositionTop
	case "both":
		cfg.Position = compliance.PositionBoth
	}
	if custom, ok := p.cfg.CustomDisclosures[string(contentType)]; ok {
		cfg.CustomText = custom
	}
	return cfg
}

func (p *Pipeline) validate(content string, platform domain.Platform, contentType domain.ContentType) domain.ValidationResult {
	switch contentType {
	case domain.ContentVideo:
		return p.validator.ValidateVideoScript(content)
	case domain.ContentSocial:
		return p.validator.ValidateSocialCaption(content, platform)
	default:
		return p.validator.Validate(content)
	}
}

func (p *Pipeline) addCost(ctx context.Context, result *PipelineResult, est domain.CostEstimate) {
	result.Costs = append(result.Costs, est)
	result.TotalUSD += est.USD
	if err := p.ledger.RecordCost(ctx, est); err != nil {
		p.logger.Error("ledger cost write failed", "error", err)
	}
}

// contentTypeFor maps a platform to its natural content type.
func contentTypeFor(platform domain.Platform) domain.ContentType {
	switch platform {
	case domain.PlatformYouTube:
		return domain.ContentVideo
	case domain.PlatformTikTok, domain.PlatformInstagram:
		return domain.ContentSocial
	default:
		return domain.ContentBlog
	}
}
