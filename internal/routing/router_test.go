package routing

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"strings"
	"testing"

	"github.com/LOCALPULSE/localpulse/internal/config"
	"github.com/LOCALPULSE/localpulse/internal/models"
)

type fakeProvider struct {
	id     models.ProviderID
	answer string
	usage  models.TokenUsage
	err    error
	calls  int
}

func (f *fakeProvider) ID() models.ProviderID { return f.id }

func (f *fakeProvider) Model() string { return "fake-model" }

func (f *fakeProvider) Complete(ctx context.Context, req ChatRequest) (models.ProviderResponse, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return models.TextResult{Text: f.answer, TokenUsage: f.usage}, nil
}

func silentLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(nullWriter{}, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

type nullWriter struct{}

func (nullWriter) Write(p []byte) (int, error) { return len(p), nil }

func testRates() config.ProviderConfig {
	return config.ProviderConfig{InputRatePerMTok: 3.00, OutputRatePerMTok: 15.00}
}

func newTestRouter(providers ...*fakeProvider) *Router {
	r := &Router{
		providers: make(map[models.ProviderID]Provider),
		rates:     make(map[models.ProviderID]config.ProviderConfig),
		available: make(map[models.ProviderID]bool),
		logger:    silentLogger(),
	}
	for _, p := range providers {
		r.register(p, testRates())
	}
	return r
}

func conversation(message string) models.Conversation {
	return models.Conversation{
		History: []models.ChatMessage{{Role: "user", Content: message}},
	}
}

func TestChoosePreferenceTable(t *testing.T) {
	r := newTestRouter(
		&fakeProvider{id: models.ProviderReasoning},
		&fakeProvider{id: models.ProviderSearchGrounded},
	)

	tests := []struct {
		intent models.IntentCategory
		want   models.ProviderID
	}{
		{models.IntentRealtimeEvents, models.ProviderSearchGrounded},
		{models.IntentSimpleQuestion, models.ProviderSearchGrounded},
		{models.IntentGeneralChat, models.ProviderSearchGrounded},
		{models.IntentProfileMatching, models.ProviderReasoning},
		{models.IntentCreativeWriting, models.ProviderReasoning},
		{models.IntentComplexReasoning, models.ProviderReasoning},
	}

	for _, tt := range tests {
		got, _, err := r.choose(tt.intent, "")
		if err != nil {
			t.Fatalf("choose(%s) error: %v", tt.intent, err)
		}
		if got != tt.want {
			t.Errorf("choose(%s) = %s, want %s", tt.intent, got, tt.want)
		}
	}
}

func TestChooseOnlyOneAvailable(t *testing.T) {
	r := newTestRouter(&fakeProvider{id: models.ProviderReasoning})

	// Search-grounded intents must still route somewhere.
	got, _, err := r.choose(models.IntentRealtimeEvents, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != models.ProviderReasoning {
		t.Errorf("got %s, want the only available provider", got)
	}
}

func TestChooseNoneAvailable(t *testing.T) {
	r := newTestRouter()

	_, _, err := r.choose(models.IntentGeneralChat, "")
	if !errors.Is(err, ErrNoProviderAvailable) {
		t.Fatalf("err = %v, want ErrNoProviderAvailable", err)
	}
}

func TestChooseForceOverride(t *testing.T) {
	r := newTestRouter(
		&fakeProvider{id: models.ProviderReasoning},
		&fakeProvider{id: models.ProviderSearchGrounded},
	)

	got, reason, err := r.choose(models.IntentGeneralChat, models.ProviderReasoning)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != models.ProviderReasoning {
		t.Errorf("forced choice = %s, want reasoning", got)
	}
	if reason != "forced by request" {
		t.Errorf("reason = %q", reason)
	}
}

func TestChooseForceIgnoredWhenUnavailable(t *testing.T) {
	r := newTestRouter(&fakeProvider{id: models.ProviderSearchGrounded})

	got, _, err := r.choose(models.IntentGeneralChat, models.ProviderReasoning)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != models.ProviderSearchGrounded {
		t.Errorf("got %s, want normal selection when forced provider is down", got)
	}
}

func TestRouteAndAnswerHappyPath(t *testing.T) {
	search := &fakeProvider{
		id:     models.ProviderSearchGrounded,
		answer: "There's a concert at the Blue Room tonight.",
		usage:  models.TokenUsage{PromptTokens: 120, CompletionTokens: 40},
	}
	reasoning := &fakeProvider{id: models.ProviderReasoning, answer: "unused"}
	r := newTestRouter(reasoning, search)

	result, err := r.RouteAndAnswer(context.Background(), conversation("what concerts are happening tonight?"), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Decision.Intent != models.IntentRealtimeEvents {
		t.Errorf("intent = %s, want realtime_events", result.Decision.Intent)
	}
	if result.Decision.ChosenProvider != models.ProviderSearchGrounded {
		t.Errorf("provider = %s, want search_grounded", result.Decision.ChosenProvider)
	}
	if result.Decision.UsedFallback {
		t.Error("happy path must not set UsedFallback")
	}
	if result.Decision.TokensUsed != 160 {
		t.Errorf("tokens = %d, want 160", result.Decision.TokensUsed)
	}
	if result.Decision.ID == "" {
		t.Error("decision must carry an id")
	}
	if reasoning.calls != 0 {
		t.Errorf("reasoning provider called %d times, want 0", reasoning.calls)
	}
	if result.Answer != search.answer {
		t.Errorf("answer = %q", result.Answer)
	}
}

func TestRouteAndAnswerFallback(t *testing.T) {
	search := &fakeProvider{id: models.ProviderSearchGrounded, err: errors.New("rate limited")}
	reasoning := &fakeProvider{
		id:     models.ProviderReasoning,
		answer: "fallback answer",
		usage:  models.TokenUsage{PromptTokens: 10, CompletionTokens: 5},
	}
	r := newTestRouter(reasoning, search)

	result, err := r.RouteAndAnswer(context.Background(), conversation("what is happening this weekend?"), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !result.Decision.UsedFallback {
		t.Error("fallback turn must set UsedFallback")
	}
	if result.Decision.ChosenProvider != models.ProviderReasoning {
		t.Errorf("provider = %s, want the fallback", result.Decision.ChosenProvider)
	}
	if result.Answer != "fallback answer" {
		t.Errorf("answer = %q", result.Answer)
	}
	if search.calls != 1 || reasoning.calls != 1 {
		t.Errorf("calls = (%d, %d), want exactly one each", search.calls, reasoning.calls)
	}
}

func TestRouteAndAnswerFallbackFailurePropagates(t *testing.T) {
	primaryErr := errors.New("primary down")
	fallbackErr := errors.New("fallback down")
	search := &fakeProvider{id: models.ProviderSearchGrounded, err: primaryErr}
	reasoning := &fakeProvider{id: models.ProviderReasoning, err: fallbackErr}
	r := newTestRouter(reasoning, search)

	_, err := r.RouteAndAnswer(context.Background(), conversation("what is happening tonight?"), "")
	if !errors.Is(err, fallbackErr) {
		t.Fatalf("err = %v, want the fallback's error unmodified", err)
	}
	if search.calls != 1 || reasoning.calls != 1 {
		t.Errorf("calls = (%d, %d), want exactly one attempt each", search.calls, reasoning.calls)
	}
}

func TestRouteAndAnswerNoFallbackAvailable(t *testing.T) {
	primaryErr := errors.New("primary down")
	search := &fakeProvider{id: models.ProviderSearchGrounded, err: primaryErr}
	r := newTestRouter(search)

	_, err := r.RouteAndAnswer(context.Background(), conversation("what is happening tonight?"), "")
	if !errors.Is(err, primaryErr) {
		t.Fatalf("err = %v, want the primary error when no fallback exists", err)
	}
	if search.calls != 1 {
		t.Errorf("calls = %d, want 1", search.calls)
	}
}

func TestRouteAndAnswerEmptyConversation(t *testing.T) {
	r := newTestRouter(&fakeProvider{id: models.ProviderSearchGrounded})
	if _, err := r.RouteAndAnswer(context.Background(), models.Conversation{}, ""); err == nil {
		t.Fatal("expected error for empty conversation")
	}
}

func TestRouteAndAnswerEstimatesTokensWhenUnreported(t *testing.T) {
	search := &fakeProvider{
		id:     models.ProviderSearchGrounded,
		answer: "one two three four five", // 5 words -> 6 tokens
	}
	r := newTestRouter(search)

	// 6-word prompt -> int(6*1.3) = 7 estimated prompt tokens.
	result, err := r.RouteAndAnswer(context.Background(), conversation("what events are happening near me"), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Decision.TokensUsed != 13 {
		t.Errorf("tokens = %d, want 13 from word-count estimate", result.Decision.TokensUsed)
	}
}

func TestEstimateCost(t *testing.T) {
	usage := models.TokenUsage{PromptTokens: 1000, CompletionTokens: 500}
	got := estimateCost(usage, 3.00, 15.00)
	want := 0.003 + 0.0075
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("cost = %f, want %f", got, want)
	}

	if got := estimateCost(models.TokenUsage{}, 3.00, 15.00); got != 0 {
		t.Errorf("zero usage cost = %f, want 0", got)
	}
}

func TestEstimateTokens(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"", 0},
		{"hello", 1},
		{"one two three four", 5},      // int(4 * 1.3)
		{"a b c d e f g h i j", 13},    // int(10 * 1.3)
		{"   spaced    words   ", 2},   // fields, not bytes
	}
	for _, tt := range tests {
		if got := estimateTokens(tt.text); got != tt.want {
			t.Errorf("estimateTokens(%q) = %d, want %d", tt.text, got, tt.want)
		}
	}
}

func TestBuildSystemPromptIncludesProfile(t *testing.T) {
	prompt := buildSystemPrompt(models.UserInterestProfile{
		Location:  "Portland",
		Interests: []string{"music", "hiking"},
	})
	for _, want := range []string{"Portland", "music, hiking"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q: %s", want, prompt)
		}
	}
}
