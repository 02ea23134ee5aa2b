// Package voice implements domain.VoiceProvider adapters for
// text-to-speech synthesis.
package voice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"ftcguard/internal/adapter/resilient"
	"ftcguard/internal/domain"
	"ftcguard/internal/infra/config"
	"ftcguard/internal/infra/tracer"
)

// pricePer1KChars is the ElevenLabs synthesis price in USD per 1000
// input characters.
const pricePer1KChars = 0.11

const defaultVoiceID = "21m00Tcm4TlvDq8ikWAM"

// maxAudioBody caps the synthesized audio size read from the API.
const maxAudioBody = 50 * 1024 * 1024 // 50 MB

// ElevenLabsProvider implements domain.VoiceProvider for the ElevenLabs
// text-to-speech API. Synthesized audio is written to the output
// directory and the result carries its path.
type ElevenLabsProvider struct {
	name    string
	apiKey  string
	baseURL string
	voiceID string
	outDir  string
	client  *http.Client
	logger  *slog.Logger
	policy  resilient.Policy
}

// NewElevenLabsProvider creates a provider with configured timeouts.
func NewElevenLabsProvider(cfg config.ProviderConfig, outDir string, logger *slog.Logger) *ElevenLabsProvider {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.elevenlabs.io"
	}
	voiceID := cfg.VoiceID
	if voiceID == "" {
		voiceID = defaultVoiceID
	}
	if outDir == "" {
		outDir = os.TempDir()
	}

	return &ElevenLabsProvider{
		name:    cfg.Name,
		apiKey:  cfg.APIKey,
		baseURL: baseURL,
		voiceID: voiceID,
		outDir:  outDir,
		client:  resilient.NewHTTPClient(cfg),
		logger:  logger,
		policy:  resilient.Policy{Logger: logger},
	}
}

// Synthesize implements domain.VoiceProvider.
func (p *ElevenLabsProvider) Synthesize(ctx context.Context, req domain.SynthesizeRequest) (*domain.SynthesizeResult, error) {
	ctx, span := tracer.StartSpan(ctx, "voice.synthesize")
	defer span.End()

	result, err := resilient.Do(ctx, "voice.elevenlabs.synthesize", p.policy,
		func(ctx context.Context) (*domain.SynthesizeResult, error) {
			return p.synthesizeOnce(ctx, req)
		})
	if err != nil {
		tracer.RecordError(span, err)
		return nil, err
	}

	tracer.SetOK(span)
	p.logger.Info("speech synthesized",
		"provider", p.name,
		"chars", result.Cost.Usage.Characters,
		"usd", result.Cost.USD,
		"audio", result.AudioURL,
	)
	return result, nil
}

type elevenLabsRequest struct {
	Text          string                  `json:"text"`
	ModelID       string                  `json:"model_id,omitempty"`
	VoiceSettings *elevenLabsVoiceSetting `json:"voice_settings,omitempty"`
}

type elevenLabsVoiceSetting struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

func (p *ElevenLabsProvider) synthesizeOnce(ctx context.Context, req domain.SynthesizeRequest) (*domain.SynthesizeResult, error) {
	voiceID := req.VoiceID
	if voiceID == "" {
		voiceID = p.voiceID
	}

	elReq := elevenLabsRequest{Text: req.Text}
	if req.Stability > 0 {
		elReq.VoiceSettings = &elevenLabsVoiceSetting{
			Stability:       req.Stability,
			SimilarityBoost: 0.75,
		}
	}

	body, err := json.Marshal(elReq)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := p.baseURL + "/v1/text-to-speech/" + voiceID
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "audio/mpeg")
	httpReq.Header.Set("xi-api-key", p.apiKey)

	httpResp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		errBody, _ := io.ReadAll(io.LimitReader(httpResp.Body, 4096))
		return nil, resilient.MapHTTPError(httpResp.StatusCode, errBody)
	}

	audio, err := io.ReadAll(io.LimitReader(httpResp.Body, maxAudioBody))
	if err != nil {
		return nil, fmt.Errorf("read audio: %w", err)
	}

	path := filepath.Join(p.outDir, fmt.Sprintf("tts-%d.mp3", time.Now().UnixNano()))
	if err := os.WriteFile(path, audio, 0o644); err != nil {
		return nil, fmt.Errorf("write audio file: %w", err)
	}

	chars := len(req.Text)
	return &domain.SynthesizeResult{
		AudioURL: path,
		Cost: domain.CostEstimate{
			Usage:    domain.Usage{Characters: chars},
			USD:      float64(chars) / 1000 * pricePer1KChars,
			Provider: "elevenlabs",
			Model:    "eleven_multilingual_v2",
		},
	}, nil
}

// Name implements domain.VoiceProvider.
func (p *ElevenLabsProvider) Name() string { return p.name }

// Configured implements domain.VoiceProvider.
func (p *ElevenLabsProvider) Configured() bool { return p.apiKey != "" }
