package domain

// Usage captures the consumption a provider reported for one call.
// Token fields apply to text providers, Characters to voice providers.
type Usage struct {
	InputTokens  int `json:"input_tokens,omitempty"`
	OutputTokens int `json:"output_tokens,omitempty"`
	Characters   int `json:"characters,omitempty"`
}

// TotalTokens returns the combined token count.
func (u Usage) TotalTokens() int { return u.InputTokens + u.OutputTokens }

// CostEstimate is the monetary estimate derived from reported usage and a
// provider price table. Mock-mode calls always carry a zero estimate.
type CostEstimate struct {
	Usage    Usage   `json:"usage"`
	USD      float64 `json:"usd"`
	Provider string  `json:"provider"`
	Model    string  `json:"model,omitempty"`
}

// Zero reports whether the estimate carries no cost.
func (c CostEstimate) Zero() bool { return c.USD == 0 }
