// Package inference records language-model call outcomes for cost tracking.
package inference

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/LOCALPULSE/localpulse/internal/models"
)

// Repository persists inference log records. A nil repository is valid: the
// logger then writes to the structured log only.
type Repository interface {
	Create(ctx context.Context, log models.InferenceLog) error
}

// Logger logs inference calls, asynchronously when a repository is present.
type Logger struct {
	repo   Repository
	logger *slog.Logger
}

// NewLogger creates a new inference logger.
func NewLogger(repo Repository, logger *slog.Logger) *Logger {
	return &Logger{
		repo:   repo,
		logger: logger,
	}
}

// LogCallParams describes one inference API call.
type LogCallParams struct {
	Provider     string
	Model        string
	Operation    string
	TokensUsed   int
	InputTokens  *int
	OutputTokens *int
	CostUSD      *float64
	LatencyMs    *int
	Status       string // "success" or "error"
	ErrorMessage *string
	Metadata     map[string]interface{}
}

// LogCall records an inference call. Persistence runs in the background so
// the chat path never blocks on the database.
func (l *Logger) LogCall(ctx context.Context, params LogCallParams) {
	var metadataJSON string
	if params.Metadata != nil {
		if jsonBytes, err := json.Marshal(params.Metadata); err == nil {
			metadataJSON = string(jsonBytes)
		}
	}

	l.logger.Info("inference call",
		"provider", params.Provider,
		"model", params.Model,
		"operation", params.Operation,
		"tokens", params.TokensUsed,
		"status", params.Status)

	if l.repo == nil {
		return
	}

	record := models.InferenceLog{
		Provider:     params.Provider,
		Model:        params.Model,
		Operation:    params.Operation,
		TokensUsed:   params.TokensUsed,
		InputTokens:  params.InputTokens,
		OutputTokens: params.OutputTokens,
		CostUSD:      params.CostUSD,
		LatencyMs:    params.LatencyMs,
		Status:       params.Status,
		ErrorMessage: params.ErrorMessage,
		Metadata:     metadataJSON,
	}

	go func() {
		bgCtx := context.Background()
		if err := l.repo.Create(bgCtx, record); err != nil {
			l.logger.Error("failed to persist inference log", "error", err)
		}
	}()
}

// LogProviderCall is a helper for chat completion calls.
func (l *Logger) LogProviderCall(ctx context.Context, provider, model, operation string, usage models.TokenUsage, costUSD float64, latencyMs int, err error, metadata map[string]interface{}) {
	input := usage.PromptTokens
	output := usage.CompletionTokens

	params := LogCallParams{
		Provider:     provider,
		Model:        model,
		Operation:    operation,
		TokensUsed:   usage.Total(),
		InputTokens:  &input,
		OutputTokens: &output,
		CostUSD:      &costUSD,
		LatencyMs:    &latencyMs,
		Metadata:     metadata,
	}

	if err != nil {
		params.Status = "error"
		errMsg := err.Error()
		params.ErrorMessage = &errMsg
	} else {
		params.Status = "success"
	}

	l.LogCall(ctx, params)
}

// LogRoutingDecision records which provider answered a chat turn and why.
func (l *Logger) LogRoutingDecision(ctx context.Context, decision models.RoutingDecision) {
	l.LogCall(ctx, LogCallParams{
		Provider:   string(decision.ChosenProvider),
		Model:      "",
		Operation:  "routing_decision",
		TokensUsed: decision.TokensUsed,
		CostUSD:    &decision.CostEstimate,
		Status:     "success",
		Metadata: map[string]interface{}{
			"decision_id":   decision.ID,
			"intent":        string(decision.Intent),
			"used_fallback": decision.UsedFallback,
			"reason":        decision.Reason,
		},
	})
}
