package routing

import (
	"strings"

	"github.com/LOCALPULSE/localpulse/internal/models"
)

// estimatedTokensPerWord converts word counts to token estimates when a
// provider does not report usage.
const estimatedTokensPerWord = 1.3

// estimateTokens approximates token usage from text when the provider
// reported no counts.
func estimateTokens(text string) int {
	words := len(strings.Fields(text))
	return int(float64(words) * estimatedTokensPerWord)
}

// estimateCost converts token usage into dollars using per-million-token
// rates.
func estimateCost(usage models.TokenUsage, inputRatePerMTok, outputRatePerMTok float64) float64 {
	inputCost := (float64(usage.PromptTokens) / 1_000_000) * inputRatePerMTok
	outputCost := (float64(usage.CompletionTokens) / 1_000_000) * outputRatePerMTok
	return inputCost + outputCost
}

// resolveUsage returns the provider's reported usage, or a word-count
// estimate over the prompt and answer text when none was reported.
func resolveUsage(usage models.TokenUsage, promptText, answerText string) models.TokenUsage {
	if usage.Reported() {
		return usage
	}
	return models.TokenUsage{
		PromptTokens:     estimateTokens(promptText),
		CompletionTokens: estimateTokens(answerText),
	}
}
