// Package api exposes the HTTP surface: event aggregation, routed chat, and
// source status.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/LOCALPULSE/localpulse/internal/aggregate"
	"github.com/LOCALPULSE/localpulse/internal/models"
	"github.com/LOCALPULSE/localpulse/internal/routing"
	"github.com/LOCALPULSE/localpulse/internal/sources"
)

// Handler serves the public API endpoints.
type Handler struct {
	orchestrator *aggregate.Orchestrator
	router       *routing.Router
	logger       *slog.Logger
	startTime    time.Time
}

// NewHandler creates the API handler.
func NewHandler(orchestrator *aggregate.Orchestrator, router *routing.Router, logger *slog.Logger) *Handler {
	return &Handler{
		orchestrator: orchestrator,
		router:       router,
		logger:       logger,
		startTime:    time.Now(),
	}
}

// AggregateRequest is the POST /api/aggregate body.
type AggregateRequest struct {
	Location  string   `json:"location"`
	Start     string   `json:"start,omitempty"` // "2006-01-02"; defaults to today
	End       string   `json:"end,omitempty"`   // defaults to a week out
	Interests []string `json:"interests,omitempty"`
}

// ChatRequest is the POST /api/chat body.
type ChatRequest struct {
	Messages      []models.ChatMessage       `json:"messages"`
	Profile       models.UserInterestProfile `json:"profile,omitempty"`
	ForceProvider string                     `json:"force_provider,omitempty"`
}

// AggregateHandler handles POST /api/aggregate.
func (h *Handler) AggregateHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req AggregateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	agg, err := validateAggregateRequest(req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result := h.orchestrator.Aggregate(r.Context(), agg)

	writeJSON(w, h.logger, http.StatusOK, result)
}

// ChatHandler handles POST /api/chat.
func (h *Handler) ChatHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	conv, force, err := validateChatRequest(req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.router.RouteAndAnswer(r.Context(), conv, force)
	if err != nil {
		if errors.Is(err, routing.ErrNoProviderAvailable) {
			http.Error(w, "No language model provider available", http.StatusServiceUnavailable)
			return
		}
		h.logger.Error("chat turn failed", "error", err)
		http.Error(w, "Chat completion failed", http.StatusBadGateway)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, result)
}

// SourcesHandler handles GET /api/sources.
func (h *Handler) SourcesHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	statuses := make([]sources.Status, 0, len(h.orchestrator.Adapters()))
	for _, adapter := range h.orchestrator.Adapters() {
		statuses = append(statuses, adapter.Status())
	}

	writeJSON(w, h.logger, http.StatusOK, map[string]interface{}{
		"sources": statuses,
	})
}

// InfoHandler handles GET /api/info.
func (h *Handler) InfoHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, map[string]interface{}{
		"service":        "localpulse",
		"uptime_seconds": int(time.Since(h.startTime).Seconds()),
		"sources":        len(h.orchestrator.Adapters()),
	})
}

// HealthHandler handles GET /healthz.
func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.logger, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("failed to encode response", "error", err)
	}
}
