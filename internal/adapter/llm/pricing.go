package llm

import (
	"strings"

	"github.com/pkoukk/tiktoken-go"

	"ftcguard/internal/domain"
)

// modelPrice holds USD prices per 1K tokens.
type modelPrice struct {
	input  float64
	output float64
}

// Published per-1K-token prices. Unknown models fall back to the
// provider default so cost tracking degrades to an estimate instead of
// silently reporting zero.
var modelPrices = map[string]modelPrice{
	// OpenAI
	"gpt-4o":       {input: 0.0025, output: 0.01},
	"gpt-4o-mini":  {input: 0.00015, output: 0.0006},
	"gpt-4.1":      {input: 0.002, output: 0.008},
	"gpt-4.1-mini": {input: 0.0004, output: 0.0016},

	// Anthropic
	"claude-sonnet-4-20250514": {input: 0.003, output: 0.015},
	"claude-3-5-sonnet-latest": {input: 0.003, output: 0.015},
	"claude-3-5-haiku-latest":  {input: 0.0008, output: 0.004},

	// Bedrock model IDs
	"anthropic.claude-3-5-sonnet-20241022-v2:0": {input: 0.003, output: 0.015},
	"anthropic.claude-3-haiku-20240307-v1:0":    {input: 0.00025, output: 0.00125},
	"amazon.nova-lite-v1:0":                     {input: 0.00006, output: 0.00024},
	"amazon.nova-pro-v1:0":                      {input: 0.0008, output: 0.0032},
}

var providerDefaultPrices = map[string]modelPrice{
	"openai":    {input: 0.0025, output: 0.01},
	"anthropic": {input: 0.003, output: 0.015},
	"bedrock":   {input: 0.003, output: 0.015},
}

// CostFor computes a cost estimate from reported token usage. Prices
// are looked up by model first, then by provider type default.
func CostFor(providerType, model string, usage domain.Usage) domain.CostEstimate {
	price, ok := modelPrices[model]
	if !ok {
		price = providerDefaultPrices[providerType]
	}

	usd := float64(usage.InputTokens)/1000*price.input +
		float64(usage.OutputTokens)/1000*price.output

	return domain.CostEstimate{
		Usage:    usage,
		USD:      usd,
		Provider: providerType,
		Model:    model,
	}
}

// EstimateTokens counts tokens in text using the model's tokenizer.
// Used when a provider response omits usage figures. Falls back to
// cl100k_base for models tiktoken does not know, and to a chars/4
// heuristic if even that fails (tiktoken loads encodings lazily).
func EstimateTokens(model, text string) int {
	if text == "" {
		return 0
	}

	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, err = tiktoken.GetEncoding("cl100k_base")
	}
	if err != nil {
		return len(text) / 4
	}
	return len(enc.Encode(text, nil, nil))
}

// normalizeType lowercases a provider type for price lookups.
func normalizeType(t string) string { return strings.ToLower(strings.TrimSpace(t)) }
