// Package llm implements domain.TextProvider adapters for the OpenAI,
// Anthropic, and Amazon Bedrock APIs, plus a deterministic mock. All
// network calls run under the shared retry policy and map HTTP failures
// to domain errors.
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

// OpenAIProvider implements domain.TextProvider for any
// OpenAI-compatible chat completions API.
type OpenAIProvider struct {
	name    string
	model   string
	apiKey  string
	baseURL string
	client  *http.Client
	logger  *slog.Logger
	policy  resilient.Policy
}

// NewOpenAIProvider creates a provider with configured timeouts.
func NewOpenAIProvider(cfg config.ProviderConfig, logger *slog.Logger) *OpenAIProvider {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}

	return &OpenAIProvider{
		name:    cfg.Name,
		model:   cfg.Model,
		apiKey:  cfg.APIKey,
		baseURL: baseURL,
		client:  resilient.NewHTTPClient(cfg),
		logger:  logger,
		policy:  resilient.Policy{Logger: logger},
	}
}

// Generate implements domain.TextProvider.
func (p *OpenAIProvider) Generate(ctx context.Context, req domain.GenerateRequest) (*domain.GenerateResult, error) {
	ctx, span := tracer.StartSpan(ctx, "text.generate",
		trace.WithAttributes(
			tracer.StringAttr("provider.name", p.name),
			tracer.StringAttr("provider.model", p.modelFor(req)),
		),
	)
	defer span.End()

	result, err := resilient.Do(ctx, "llm.openai.generate", p.policy,
		func(ctx context.Context) (*domain.GenerateResult, error) {
			return p.generateOnce(ctx, req)
		})
	if err != nil {
		tracer.RecordError(span, err)
		return nil, err
	}

	span.SetAttributes(
		tracer.IntAttr("usage.input_tokens", result.Cost.Usage.InputTokens),
		tracer.IntAttr("usage.output_tokens", result.Cost.Usage.OutputTokens),
		tracer.FloatAttr("usage.usd", result.Cost.USD),
	)
	tracer.SetOK(span)
	logGenerated(p.logger, p.name, result)

	return result, nil
}

func (p *OpenAIProvider) generateOnce(ctx context.Context, req domain.GenerateRequest) (*domain.GenerateResult, error) {
	model := p.modelFor(req)

	body, err := json.Marshal(toOpenAIRequest(req, model))
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	headers := map[string]string{}
	if p.apiKey != "" {
		headers["Authorization"] = "Bearer " + p.apiKey
	}

	respBody, err := resilient.DoJSON(ctx, p.client, p.baseURL+"/chat/completions", body, headers)
	if err != nil {
		return nil, err
	}

	var oaiResp openaiResponse
	if err := json.Unmarshal(respBody, &oaiResp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	return fromOpenAIResponse(oaiResp, req, model), nil
}

func (p *OpenAIProvider) modelFor(req domain.GenerateRequest) string {
	if req.Model != "" {
		return req.Model
	}
	return p.model
}

// Name implements domain.TextProvider.
func (p *OpenAIProvider) Name() string { return p.name }

// Configured implements domain.TextProvider.
func (p *OpenAIProvider) Configured() bool { return p.apiKey != "" }

// --- OpenAI API wire types ---

type openaiRequest struct {
	Model       string          `json:"model"`
	Messages    []openaiMessage `json:"messages"`
	MaxTokens   int             `json:"max_tokens,omitempty"`
	Temperature *float64        `json:"temperature,omitempty"`
}

type openaiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openaiResponse struct {
	ID      string         `json:"id"`
	Model   string         `json:"model"`
	Choices []openaiChoice `json:"choices"`
	Usage   openaiUsage    `json:"usage"`
}

type openaiChoice struct {
	Index        int           `json:"index"`
	Message      openaiMessage `json:"message"`
	FinishReason string        `json:"finish_reason"`
}

type openaiUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

func toOpenAIRequest(req domain.GenerateRequest, model string) openaiRequest {
	msgs := make([]openaiMessage, 0, 2)
	if req.System != "" {
		msgs = append(msgs, openaiMessage{Role: "system", Content: req.System})
	}
	msgs = append(msgs, openaiMessage{Role: "user", Content: req.Prompt})

	oaiReq := openaiRequest{
		Model:    model,
		Messages: msgs,
	}
	if req.MaxTokens > 0 {
		oaiReq.MaxTokens = req.MaxTokens
	}
	if req.Temperature > 0 {
		oaiReq.Temperature = &req.Temperature
	}
	return oaiReq
}

func fromOpenAIResponse(resp openaiResponse, req domain.GenerateRequest, model string) *domain.GenerateResult {
	result := &domain.GenerateResult{}
	if len(resp.Choices) > 0 {
		result.Text = resp.Choices[0].Message.Content
	}

	usage := domain.Usage{
		InputTokens:  resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
	}
	if usage.InputTokens == 0 && usage.OutputTokens == 0 {
		prompt := req.Prompt
		if req.System != "" {
			prompt = req.System + "\n" + prompt
		}
		usage.InputTokens = EstimateTokens(model, prompt)
		usage.OutputTokens = EstimateTokens(model, result.Text)
	}
	result.Cost = CostFor("openai", model, usage)

	return result
}

func logGenerated(logger *slog.Logger, provider string, result *domain.GenerateResult) {
	logger.Info("text generated",
		"provider", provider,
		"model", result.Cost.Model,
		"input_tokens", result.Cost.Usage.InputTokens,
		"output_tokens", result.Cost.Usage.OutputTokens,
		"usd", result.Cost.USD,
	)
}
