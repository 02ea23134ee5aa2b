package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel/trace"

	"ftcguard/internal/adapter/resilient"
	"ftcguard/internal/domain"
	"ftcguard/internal/infra/config"
	"ftcguard/internal/infra/tracer"
)

const defaultAnthropicVersion = "2023-06-01"

const defaultAnthropicMaxTokens = 4096

// AnthropicProvider implements domain.TextProvider for the Anthropic
// Messages API.
type AnthropicProvider struct {
	name    string
	model   string
	apiKey  string
	baseURL string
	version string
	client  *http.Client
	logger  *slog.Logger
	policy  resilient.Policy
}

// NewAnthropicProvider creates a provider for the Anthropic Messages API.
func NewAnthropicProvider(cfg config.ProviderConfig, logger *slog.Logger) *AnthropicProvider {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.anthropic.com"
	}

	return &AnthropicProvider{
		name:    cfg.Name,
		model:   cfg.Model,
		apiKey:  cfg.APIKey,
		baseURL: baseURL,
		version: defaultAnthropicVersion,
		client:  resilient.NewHTTPClient(cfg),
		logger:  logger,
		policy:  resilient.Policy{Logger: logger},
	}
}

// Generate implements domain.TextProvider.
func (p *AnthropicProvider) Generate(ctx context.Context, req domain.GenerateRequest) (*domain.GenerateResult, error) {
	ctx, span := tracer.StartSpan(ctx, "text.generate",
		trace.WithAttributes(
			tracer.StringAttr("provider.name", p.name),
			tracer.StringAttr("provider.model", p.modelFor(req)),
		),
	)
	defer span.End()

	result, err := resilient.Do(ctx, "llm.anthropic.generate", p.policy,
		func(ctx context.Context) (*domain.GenerateResult, error) {
			return p.generateOnce(ctx, req)
		})
	if err != nil {
		tracer.RecordError(span, err)
		return nil, err
	}

	tracer.SetOK(span)
	logGenerated(p.logger, p.name, result)
	return result, nil
}

func (p *AnthropicProvider) generateOnce(ctx context.Context, req domain.GenerateRequest) (*domain.GenerateResult, error) {
	model := p.modelFor(req)

	body, err := json.Marshal(toAnthropicRequest(req, model))
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	headers := map[string]string{
		"x-api-key":         p.apiKey,
		"anthropic-version": p.version,
	}

	respBody, err := resilient.DoJSON(ctx, p.client, p.baseURL+"/v1/messages", body, headers)
	if err != nil {
		return nil, err
	}

	var antResp anthropicResponse
	if err := json.Unmarshal(respBody, &antResp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	return fromAnthropicResponse(antResp, model), nil
}

func (p *AnthropicProvider) modelFor(req domain.GenerateRequest) string {
	if req.Model != "" {
		return req.Model
	}
	return p.model
}

// Name implements domain.TextProvider.
func (p *AnthropicProvider) Name() string { return p.name }

// Configured implements domain.TextProvider.
func (p *AnthropicProvider) Configured() bool { return p.apiKey != "" }

// --- Anthropic API wire types ---

type anthropicRequest struct {
	Model       string             `json:"model"`
	Messages    []anthropicMessage `json:"messages"`
	System      string             `json:"system,omitempty"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature *float64           `json:"temperature,omitempty"`
}

type anthropicMessage struct {
	Role    string             `json:"role"`
	Content []anthropicContent `json:"content"`
}

type anthropicContent struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

type anthropicResponse struct {
	ID      string             `json:"id"`
	Model   string             `json:"model"`
	Content []anthropicContent `json:"content"`
	Usage   anthropicUsage     `json:"usage"`
}

type anthropicUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

func toAnthropicRequest(req domain.GenerateRequest, model string) anthropicRequest {
	antReq := anthropicRequest{
		Model:     model,
		System:    req.System,
		MaxTokens: req.MaxTokens,
		Messages: []anthropicMessage{
			{Role: "user", Content: []anthropicContent{{Type: "text", Text: req.Prompt}}},
		},
	}
	if antReq.MaxTokens <= 0 {
		antReq.MaxTokens = defaultAnthropicMaxTokens
	}
	if req.Temperature > 0 {
		antReq.Temperature = &req.Temperature
	}
	return antReq
}

func fromAnthropicResponse(resp anthropicResponse, model string) *domain.GenerateResult {
	result := &domain.GenerateResult{}
	for _, block := range resp.Content {
		if block.Type == "text" {
			result.Text = block.Text
			break
		}
	}

	result.Cost = CostFor("anthropic", model, domain.Usage{
		InputTokens:  resp.Usage.InputTokens,
		OutputTokens: resp.Usage.OutputTokens,
	})
	return result
}
