// Package routing classifies chat turns and dispatches them to the cheapest
// capable language-model backend.
package routing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/LOCALPULSE/localpulse/internal/classify"
	"github.com/LOCALPULSE/localpulse/internal/config"
	"github.com/LOCALPULSE/localpulse/internal/inference"
	"github.com/LOCALPULSE/localpulse/internal/metrics"
	"github.com/LOCALPULSE/localpulse/internal/models"
)

// ErrNoProviderAvailable is returned when no backend is configured and
// enabled.
var ErrNoProviderAvailable = errors.New("no language model provider available")

// preferredProvider maps each intent to the backend best suited for it.
// Live-event and lightweight turns go to the cheaper search-grounded model;
// matching, creative, and analytical turns go to the reasoning model.
var preferredProvider = map[models.IntentCategory]models.ProviderID{
	models.IntentRealtimeEvents:   models.ProviderSearchGrounded,
	models.IntentSimpleQuestion:   models.ProviderSearchGrounded,
	models.IntentGeneralChat:      models.ProviderSearchGrounded,
	models.IntentProfileMatching:  models.ProviderReasoning,
	models.IntentCreativeWriting:  models.ProviderReasoning,
	models.IntentComplexReasoning: models.ProviderReasoning,
}

// Router selects a provider per chat turn and falls back at most once.
type Router struct {
	providers map[models.ProviderID]Provider
	rates     map[models.ProviderID]config.ProviderConfig
	available map[models.ProviderID]bool
	logger    *slog.Logger
	inflog    *inference.Logger
	collector *metrics.Collector
}

// NewRouter wires the configured providers. Availability is fixed at
// construction from config; a provider missing its API key never receives
// traffic.
func NewRouter(cfg config.ProvidersConfig, logger *slog.Logger, inflog *inference.Logger, collector *metrics.Collector) *Router {
	r := &Router{
		providers: make(map[models.ProviderID]Provider),
		rates:     make(map[models.ProviderID]config.ProviderConfig),
		available: make(map[models.ProviderID]bool),
		logger:    logger,
		inflog:    inflog,
		collector: collector,
	}

	if cfg.Reasoning.Available() {
		r.register(NewReasoningProvider(cfg.Reasoning), cfg.Reasoning)
	}
	if cfg.SearchGrounded.Available() {
		r.register(NewSearchGroundedProvider(cfg.SearchGrounded), cfg.SearchGrounded)
	}

	return r
}

func (r *Router) register(p Provider, cfg config.ProviderConfig) {
	r.providers[p.ID()] = p
	r.rates[p.ID()] = cfg
	r.available[p.ID()] = true
}

// Available reports whether the given provider can receive traffic.
func (r *Router) Available(id models.ProviderID) bool {
	return r.available[id]
}

// choose picks the provider for an intent, honoring a forced override when
// that provider is available. The returned reason explains the pick.
func (r *Router) choose(intent models.IntentCategory, force models.ProviderID) (models.ProviderID, string, error) {
	if force.Valid() {
		if r.available[force] {
			return force, "forced by request", nil
		}
		// Forced but unavailable: fall through to normal selection.
	}

	preferred := preferredProvider[intent]
	other := preferred.Other()

	switch {
	case r.available[preferred]:
		return preferred, fmt.Sprintf("preferred for %s", intent), nil
	case r.available[other]:
		return other, fmt.Sprintf("only available provider for %s", intent), nil
	default:
		return "", "", ErrNoProviderAvailable
	}
}

// RouteAndAnswer classifies the latest message, dispatches it, and falls back
// to the other provider at most once when the first call fails. A fallback
// failure is returned unmodified.
func (r *Router) RouteAndAnswer(ctx context.Context, conv models.Conversation, force models.ProviderID) (models.ChatResult, error) {
	if len(conv.History) == 0 {
		return models.ChatResult{}, errors.New("conversation has no messages")
	}

	latest := conv.History[len(conv.History)-1].Content
	intent := classify.Classify(latest, conv)

	chosen, reason, err := r.choose(intent, force)
	if err != nil {
		return models.ChatResult{}, err
	}

	req := ChatRequest{
		System:   buildSystemPrompt(conv.Profile),
		Messages: conv.History,
	}

	answer, usage, err := r.callProvider(ctx, chosen, req, intent)
	usedFallback := false

	if err != nil {
		fallback := chosen.Other()
		if !r.available[fallback] {
			return models.ChatResult{}, err
		}

		r.logger.Warn("provider failed, falling back",
			"provider", chosen,
			"fallback", fallback,
			"error", err)
		if r.collector != nil {
			r.collector.ObserveFallback()
		}

		answer, usage, err = r.callProvider(ctx, fallback, req, intent)
		if err != nil {
			return models.ChatResult{}, err
		}

		chosen = fallback
		usedFallback = true
		reason = reason + "; fallback after primary failure"
	}

	usage = resolveUsage(usage, latest, answer)
	rates := r.rates[chosen]
	cost := estimateCost(usage, rates.InputRatePerMTok, rates.OutputRatePerMTok)

	decision := models.RoutingDecision{
		ID:             uuid.New().String(),
		Intent:         intent,
		ChosenProvider: chosen,
		UsedFallback:   usedFallback,
		TokensUsed:     usage.Total(),
		CostEstimate:   cost,
		Reason:         reason,
		CreatedAt:      time.Now().UTC(),
	}

	r.logger.Info("chat turn routed",
		"decision_id", decision.ID,
		"intent", intent,
		"provider", chosen,
		"used_fallback", usedFallback,
		"tokens", decision.TokensUsed)

	if r.inflog != nil {
		r.inflog.LogRoutingDecision(ctx, decision)
	}

	return models.ChatResult{Answer: answer, Decision: decision}, nil
}

// callProvider runs one completion and records its outcome.
func (r *Router) callProvider(ctx context.Context, id models.ProviderID, req ChatRequest, intent models.IntentCategory) (string, models.TokenUsage, error) {
	provider, ok := r.providers[id]
	if !ok {
		return "", models.TokenUsage{}, ErrNoProviderAvailable
	}

	start := time.Now()
	resp, err := provider.Complete(ctx, req)
	latencyMs := int(time.Since(start).Milliseconds())

	if r.collector != nil {
		r.collector.ObserveProviderCall(string(id), err)
	}

	var usage models.TokenUsage
	var answer string
	if err == nil {
		usage = resp.Usage()
		switch v := resp.(type) {
		case models.TextResult:
			answer = v.Text
		case models.ToolCallResult:
			answer = fmt.Sprintf("[tool call: %s]", v.Name)
		}
	}

	if r.inflog != nil {
		rates := r.rates[id]
		cost := estimateCost(usage, rates.InputRatePerMTok, rates.OutputRatePerMTok)
		r.inflog.LogProviderCall(ctx, string(id), provider.Model(), "chat_completion", usage, cost, latencyMs, err, map[string]interface{}{
			"intent": string(intent),
		})
	}

	if err != nil {
		return "", models.TokenUsage{}, err
	}
	return answer, usage, nil
}

// buildSystemPrompt folds the user's profile into the assistant context.
func buildSystemPrompt(profile models.UserInterestProfile) string {
	var sb strings.Builder
	sb.WriteString("You are a helpful local lifestyle assistant. Help the user discover events, activities, and people nearby.")

	if profile.Location != "" {
		sb.WriteString(" The user is located in ")
		sb.WriteString(profile.Location)
		sb.WriteString(".")
	}
	if len(profile.Interests) > 0 {
		sb.WriteString(" Their interests include: ")
		sb.WriteString(strings.Join(profile.Interests, ", "))
		sb.WriteString(".")
	}
	if profile.Bio != "" {
		sb.WriteString(" About them: ")
		sb.WriteString(profile.Bio)
	}

	return sb.String()
}
