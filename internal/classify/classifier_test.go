package classify

import (
	"testing"

	"github.com/LOCALPULSE/localpulse/internal/models"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		message  string
		expected models.IntentCategory
	}{
		{
			name:     "realtime events",
			message:  "what concerts are happening this weekend?",
			expected: models.IntentRealtimeEvents,
		},
		{
			name:     "tickets keyword",
			message:  "where can I buy tickets for the jazz festival",
			expected: models.IntentRealtimeEvents,
		},
		{
			name:     "profile matching",
			message:  "help me find people who like bouldering",
			expected: models.IntentProfileMatching,
		},
		{
			name:     "creative writing",
			message:  "write a short story about a lighthouse keeper",
			expected: models.IntentCreativeWriting,
		},
		{
			name:     "complex reasoning",
			message:  "compare the pros and cons of renting vs buying here",
			expected: models.IntentComplexReasoning,
		},
		{
			name:     "short question",
			message:  "what is a supper club?",
			expected: models.IntentSimpleQuestion,
		},
		{
			name:     "short question without mark",
			message:  "how does this app work",
			expected: models.IntentSimpleQuestion,
		},
		{
			name:     "long question falls through to general chat",
			message:  "I was wondering if you could tell me a little bit more about yourself and what you can help me with around here",
			expected: models.IntentGeneralChat,
		},
		{
			name:     "default general chat",
			message:  "thanks, that was really helpful",
			expected: models.IntentGeneralChat,
		},
		{
			name:     "empty message",
			message:  "   ",
			expected: models.IntentGeneralChat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.message, models.Conversation{})
			if got != tt.expected {
				t.Errorf("Classify(%q) = %v, want %v", tt.message, got, tt.expected)
			}
		})
	}
}

// Priority order is a documented policy: real-time keywords are checked
// before creative ones, so a message containing both must classify as
// realtime_events even when the creative intent is arguably the real one.
func TestClassifyPriorityOrder(t *testing.T) {
	got := Classify("write a poem about tonight's concert", models.Conversation{})
	if got != models.IntentRealtimeEvents {
		t.Fatalf("expected realtime_events to win the priority tie, got %v", got)
	}

	got = Classify("analyze why people match on this app", models.Conversation{})
	if got != models.IntentProfileMatching {
		t.Fatalf("expected profile_matching to outrank complex_reasoning, got %v", got)
	}
}

func TestClassifyIsPure(t *testing.T) {
	msg := "what shows are happening tonight"
	first := Classify(msg, models.Conversation{})
	for i := 0; i < 5; i++ {
		if got := Classify(msg, models.Conversation{}); got != first {
			t.Fatalf("classification not deterministic: %v != %v", got, first)
		}
	}
}
