package models

import "time"

// IntentCategory is the classifier's verdict on what a chat message is
// asking for. It drives provider selection.
type IntentCategory string

const (
	IntentRealtimeEvents   IntentCategory = "realtime_events"
	IntentProfileMatching  IntentCategory = "profile_matching"
	IntentCreativeWriting  IntentCategory = "creative_writing"
	IntentComplexReasoning IntentCategory = "complex_reasoning"
	IntentSimpleQuestion   IntentCategory = "simple_question"
	IntentGeneralChat      IntentCategory = "general_chat"
)

// ProviderID identifies one of the two language-model backends.
type ProviderID string

const (
	// ProviderReasoning is the backend with stronger multi-step reasoning.
	ProviderReasoning ProviderID = "reasoning"
	// ProviderSearchGrounded is the cheaper backend with live search grounding.
	ProviderSearchGrounded ProviderID = "search_grounded"
)

// Other returns the opposite provider, used for the single fallback attempt.
func (p ProviderID) Other() ProviderID {
	if p == ProviderReasoning {
		return ProviderSearchGrounded
	}
	return ProviderReasoning
}

// Valid reports whether p names a known provider.
func (p ProviderID) Valid() bool {
	return p == ProviderReasoning || p == ProviderSearchGrounded
}

// RoutingDecision records how one chat turn was routed. Created once per
// turn, immutable after creation, persisted only through the inference log.
type RoutingDecision struct {
	ID             string         `json:"id"`
	Intent         IntentCategory `json:"intent_category"`
	ChosenProvider ProviderID     `json:"chosen_provider"`
	UsedFallback   bool           `json:"used_fallback"`
	TokensUsed     int            `json:"tokens_used"`
	CostEstimate   float64        `json:"cost_estimate"`
	Reason         string         `json:"routing_reason"`
	CreatedAt      time.Time      `json:"created_at"`
}

// ChatResult is the outcome of one routed chat turn.
type ChatResult struct {
	Answer   string          `json:"answer"`
	Decision RoutingDecision `json:"decision"`
}
