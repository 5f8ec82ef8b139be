// Package classify assigns an intent category to an incoming chat message.
// Classification is keyword-set membership testing over an ordered rule
// table; the order is a routing policy decision and must not change without
// revisiting the router's preference table.
package classify

import (
	"strings"
	"unicode"

	"github.com/LOCALPULSE/localpulse/internal/models"
)

type rule struct {
	intent   models.IntentCategory
	keywords []string
}

// rules are evaluated top to bottom; the first matching rule wins. Real-time
// keywords outrank everything else so that "write a poem about tonight's
// concert" still routes to the search-grounded provider.
var rules = []rule{
	{
		intent: models.IntentRealtimeEvents,
		keywords: []string{
			"today", "tonight", "tomorrow", "this week", "weekend",
			"happening", "going on", "tickets", "concert", "show",
			"game", "festival", "event", "near me", "nearby",
			"live music", "open mic", "farmers market",
		},
	},
	{
		intent: models.IntentProfileMatching,
		keywords: []string{
			"find people", "meet people", "compatibility", "match",
			"connect with", "similar interests", "make friends",
			"who should i",
		},
	},
	{
		intent: models.IntentCreativeWriting,
		keywords: []string{
			"write", "story", "poem", "compose", "lyrics", "haiku",
			"fiction", "imagine a",
		},
	},
	{
		intent: models.IntentComplexReasoning,
		keywords: []string{
			"analyze", "analyse", "compare", "pros and cons",
			"trade-off", "tradeoff", "evaluate", "step by step",
			"explain why", "difference between",
		},
	},
}

const simpleQuestionMaxWords = 10

var interrogativeLeads = []string{
	"who", "what", "when", "where", "why", "how",
	"is", "are", "can", "do", "does", "did", "will", "should",
}

// Classify inspects the latest user message plus lightweight context and
// returns exactly one intent category. Pure function of its inputs; it
// never fails — unmatched messages fall through to general chat.
func Classify(message string, conv models.Conversation) models.IntentCategory {
	_ = conv // context is accepted for future signals; tables inspect the latest message only

	text := strings.ToLower(strings.TrimSpace(message))
	if text == "" {
		return models.IntentGeneralChat
	}

	for _, r := range rules {
		for _, kw := range r.keywords {
			if strings.Contains(text, kw) {
				return r.intent
			}
		}
	}

	if isShortQuestion(text) {
		return models.IntentSimpleQuestion
	}

	return models.IntentGeneralChat
}

// isShortQuestion reports whether the message is a short interrogative:
// at most ten words, and either ending in a question mark or led by a
// question word.
func isShortQuestion(text string) bool {
	words := strings.FieldsFunc(text, func(r rune) bool {
		return unicode.IsSpace(r)
	})
	if len(words) == 0 || len(words) > simpleQuestionMaxWords {
		return false
	}

	if strings.HasSuffix(text, "?") {
		return true
	}

	lead := strings.TrimFunc(words[0], func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	for _, q := range interrogativeLeads {
		if lead == q {
			return true
		}
	}
	return false
}
