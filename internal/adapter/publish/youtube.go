// Package publish implements domain.VideoPublisher adapters. Publishers
// gate uploads on disclosure compliance: a description that fails
// validation is either auto-corrected (when injection is enabled) or
// rejected outright.
package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"ftcguard/internal/adapter/resilient"
	"ftcguard/internal/compliance"
	"ftcguard/internal/domain"
	"ftcguard/internal/infra/config"
	"ftcguard/internal/infra/tracer"
)

// YouTubePublisher implements domain.VideoPublisher for the YouTube
// Data API videos.insert call.
type YouTubePublisher struct {
	name       string
	apiKey     string
	baseURL    string
	autoInject bool
	validator  *compliance.Validator
	injector   *compliance.Injector
	client     *http.Client
	logger     *slog.Logger
	policy     resilient.Policy
}

// NewYouTubePublisher creates a publisher with configured timeouts.
// When autoInject is true, descriptions missing a disclosure get the
// platform template appended instead of being rejected.
func NewYouTubePublisher(cfg config.ProviderConfig, autoInject bool, validator *compliance.Validator, injector *compliance.Injector, logger *slog.Logger) *YouTubePublisher {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://www.googleapis.com/youtube/v3"
	}

	return &YouTubePublisher{
		name:       cfg.Name,
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		autoInject: autoInject,
		validator:  validator,
		injector:   injector,
		client:     resilient.NewHTTPClient(cfg),
		logger:     logger,
		policy:     resilient.Policy{Logger: logger},
	}
}

// Publish implements domain.VideoPublisher.
func (p *YouTubePublisher) Publish(ctx context.Context, req domain.PublishRequest) (*domain.PublishResult, error) {
	ctx, span := tracer.StartSpan(ctx, "publish.video")
	defer span.End()

	description, err := p.enforceDisclosure(req)
	if err != nil {
		tracer.RecordError(span, err)
		return nil, err
	}
	req.Description = description

	result, err := resilient.Do(ctx, "publish.youtube.insert", p.policy,
		func(ctx context.Context) (*domain.PublishResult, error) {
			return p.publishOnce(ctx, req)
		})
	if err != nil {
		tracer.RecordError(span, err)
		return nil, err
	}

	tracer.SetOK(span)
	p.logger.Info("video published",
		"provider", p.name, "video_id", result.VideoID, "url", result.PublicURL)
	return result, nil
}

// enforceDisclosure validates the outgoing description and either
// injects the platform disclosure or rejects the request.
func (p *YouTubePublisher) enforceDisclosure(req domain.PublishRequest) (string, error) {
	platform := req.Platform
	if platform == "" {
		platform = domain.PlatformYouTube
	}

	result := p.validator.Validate(req.Description)
	if result.HasDisclosure {
		return req.Description, nil
	}

	if !p.autoInject {
		return "", fmt.Errorf("%w: description has no FTC disclosure and auto-inject is disabled",
			domain.ErrInvalidInput)
	}

	p.logger.Info("injecting disclosure before publish", "platform", platform)
	return p.injector.EnsureDisclosure(req.Description, platform), nil
}

// --- YouTube Data API wire types ---

type youtubeInsertRequest struct {
	Snippet youtubeSnippet `json:"snippet"`
	Status  youtubeStatus  `json:"status"`
}

type youtubeSnippet struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags,omitempty"`
	CategoryID  string   `json:"categoryId"`
}

type youtubeStatus struct {
	PrivacyStatus string `json:"privacyStatus"`
}

type youtubeInsertResponse struct {
	ID string `json:"id"`
}

func (p *YouTubePublisher) publishOnce(ctx context.Context, req domain.PublishRequest) (*domain.PublishResult, error) {
	body, err := json.Marshal(youtubeInsertRequest{
		Snippet: youtubeSnippet{
			Title:       req.Title,
			Description: req.Description,
			Tags:        req.Tags,
			CategoryID:  "26", // Howto & Style
		},
		Status: youtubeStatus{PrivacyStatus: "public"},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	headers := map[string]string{
		"Authorization": "Bearer " + p.apiKey,
	}

	respBody, err := resilient.DoJSON(ctx, p.client, p.baseURL+"/videos?part=snippet,status", body, headers)
	if err != nil {
		return nil, err
	}

	var resp youtubeInsertResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	return &domain.PublishResult{
		VideoID:   resp.ID,
		PublicURL: "https://youtu.be/" + resp.ID,
	}, nil
}

// Name implements domain.VideoPublisher.
func (p *YouTubePublisher) Name() string { return p.name }

// Configured implements domain.VideoPublisher.
func (p *YouTubePublisher) Configured() bool { return p.apiKey != "" }
