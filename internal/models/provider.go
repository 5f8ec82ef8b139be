package models

// TokenUsage holds token counts reported by a provider. Zero values mean
// the provider did not report usage and counts must be estimated.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
}

// Total returns the combined token count.
func (u TokenUsage) Total() int {
	return u.PromptTokens + u.CompletionTokens
}

// Reported reports whether the provider supplied real token counts.
func (u TokenUsage) Reported() bool {
	return u.PromptTokens > 0 || u.CompletionTokens > 0
}

// ProviderResponse is the discriminated union of provider reply shapes,
// decoded at the provider-client boundary. Downstream code switches on the
// concrete type instead of inspecting loosely-typed payload fields. Call
// failures are ordinary error returns, not a response variant.
type ProviderResponse interface {
	Usage() TokenUsage
	providerResponse()
}

// TextResult is a plain text completion.
type TextResult struct {
	Text       string
	TokenUsage TokenUsage
}

func (r TextResult) Usage() TokenUsage { return r.TokenUsage }

func (TextResult) providerResponse() {}

// ToolCallResult is a request from the model to invoke a tool/function.
type ToolCallResult struct {
	Name       string
	Arguments  string // raw JSON arguments as sent by the provider
	TokenUsage TokenUsage
}

func (r ToolCallResult) Usage() TokenUsage { return r.TokenUsage }

func (ToolCallResult) providerResponse() {}
