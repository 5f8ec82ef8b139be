package models

// UserInterestProfile is supplied by the application layer and is read-only
// to the aggregation and routing subsystem.
type UserInterestProfile struct {
	Interests []string `json:"interests"`
	Location  string   `json:"location,omitempty"`
	Bio       string   `json:"bio,omitempty"`
}

// ChatMessage is one role-tagged message in a conversation.
type ChatMessage struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// Conversation carries the lightweight context available to the classifier
// and the provider call: prior messages plus the requester's profile.
type Conversation struct {
	History []ChatMessage       `json:"history,omitempty"`
	Profile UserInterestProfile `json:"profile"`
}
