package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/LOCALPULSE/localpulse/internal/models"
)

// InferenceLogRepository persists language-model call records.
type InferenceLogRepository struct {
	db *sql.DB
}

// NewInferenceLogRepository creates a new repository.
func NewInferenceLogRepository(db *sql.DB) *InferenceLogRepository {
	return &InferenceLogRepository{db: db}
}

// EnsureSchema creates the inference_logs table if it does not exist.
func (r *InferenceLogRepository) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS inference_logs (
			id            SERIAL PRIMARY KEY,
			provider      TEXT NOT NULL,
			model         TEXT NOT NULL,
			operation     TEXT NOT NULL,
			tokens_used   INTEGER NOT NULL DEFAULT 0,
			input_tokens  INTEGER,
			output_tokens INTEGER,
			cost_usd      DOUBLE PRECISION,
			latency_ms    INTEGER,
			status        TEXT NOT NULL,
			error_message TEXT,
			metadata      TEXT,
			created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`
	if _, err := r.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to ensure inference_logs schema: %w", err)
	}
	return nil
}

// Create logs a new inference call.
func (r *InferenceLogRepository) Create(ctx context.Context, log models.InferenceLog) error {
	query := `
		INSERT INTO inference_logs (
			provider, model, operation, tokens_used, input_tokens, output_tokens,
			cost_usd, latency_ms, status, error_message, metadata
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.db.ExecContext(ctx, query,
		log.Provider,
		log.Model,
		log.Operation,
		log.TokensUsed,
		log.InputTokens,
		log.OutputTokens,
		log.CostUSD,
		log.LatencyMs,
		log.Status,
		log.ErrorMessage,
		log.Metadata,
	)

	return err
}

// TotalCost sums recorded spend across all providers.
func (r *InferenceLogRepository) TotalCost(ctx context.Context) (float64, error) {
	var total sql.NullFloat64
	err := r.db.QueryRowContext(ctx, "SELECT SUM(cost_usd) FROM inference_logs").Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to sum inference cost: %w", err)
	}
	return total.Float64, nil
}
