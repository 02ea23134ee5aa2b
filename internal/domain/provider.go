package domain

import "context"

// TextProvider is the interface for any text-generation backend.
type TextProvider interface {
	// Generate sends a request and returns the generated text with cost.
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error)
	// Name returns the provider's identifier (e.g., "openai", "anthropic").
	Name() string
	// Configured reports whether the provider holds real credentials.
	// Mock providers always return false.
	Configured() bool
}

// GenerateRequest is a provider-agnostic text generation request.
type GenerateRequest struct {
	Prompt      string  `json:"prompt"`
	System      string  `json:"system,omitempty"`
	Model       string  `json:"model,omitempty"`
	MaxTokens   int     `json:"max_tokens,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`
}

// GenerateResult is the outcome of a successful text generation call.
type GenerateResult struct {
	Text string       `json:"text"`
	Cost CostEstimate `json:"cost"`
}

// VoiceProvider is the interface for any speech-synthesis backend.
type VoiceProvider interface {
	Synthesize(ctx context.Context, req SynthesizeRequest) (*SynthesizeResult, error)
	Name() string
	Configured() bool
}

// SynthesizeRequest is a provider-agnostic text-to-speech request.
type SynthesizeRequest struct {
	Text      string  `json:"text"`
	VoiceID   string  `json:"voice_id,omitempty"`
	Stability float64 `json:"stability,omitempty"`
}

// SynthesizeResult is the outcome of a successful synthesis call.
type SynthesizeResult struct {
	AudioURL string       `json:"audio_url"`
	Cost     CostEstimate `json:"cost"`
}

// ProductProvider is the interface for affiliate product search backends.
type ProductProvider interface {
	SearchProducts(ctx context.Context, query string, limit int) ([]Product, error)
	Name() string
	Configured() bool
}

// Product is one affiliate product search hit.
type Product struct {
	ASIN         string  `json:"asin"`
	Title        string  `json:"title"`
	AffiliateURL string  `json:"affiliate_url"`
	Price        float64 `json:"price,omitempty"`
}

// VideoPublisher is the interface for video/social publishing backends.
type VideoPublisher interface {
	Publish(ctx context.Context, req PublishRequest) (*PublishResult, error)
	Name() string
	Configured() bool
}

// PublishRequest describes a video upload with its public-facing text.
type PublishRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	VideoURL    string   `json:"video_url"`
	Platform    Platform `json:"platform"`
	Tags        []string `json:"tags,omitempty"`
}

// PublishResult is the outcome of a successful publish call.
type PublishResult struct {
	VideoID   string `json:"video_id"`
	PublicURL string `json:"public_url"`
}
