package models

import "time"

// InferenceLog records one language-model call or routing decision for
// observability and cost tracking.
type InferenceLog struct {
	ID           int64     `json:"id"`
	Provider     string    `json:"provider"`
	Model        string    `json:"model"`
	Operation    string    `json:"operation"`
	TokensUsed   int       `json:"tokens_used"`
	InputTokens  *int      `json:"input_tokens,omitempty"`
	OutputTokens *int      `json:"output_tokens,omitempty"`
	CostUSD      *float64  `json:"cost_usd,omitempty"`
	LatencyMs    *int      `json:"latency_ms,omitempty"`
	Status       string    `json:"status"` // "success" or "error"
	ErrorMessage *string   `json:"error_message,omitempty"`
	Metadata     string    `json:"metadata,omitempty"` // JSON blob
	CreatedAt    time.Time `json:"created_at"`
}
