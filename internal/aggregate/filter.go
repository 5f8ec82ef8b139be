package aggregate

import (
	"strings"

	"github.com/LOCALPULSE/localpulse/internal/models"
)

// interestExpansions widens common interests to related terms so that, for
// example, a "hiking" interest still matches a trail cleanup event.
var interestExpansions = map[string][]string{
	"hiking":   {"trail", "mountain", "outdoor", "nature", "park"},
	"music":    {"concert", "band", "dj", "jazz", "orchestra", "open mic"},
	"sports":   {"game", "match", "tournament", "race", "league"},
	"food":     {"restaurant", "tasting", "brunch", "brewery", "farmers market"},
	"art":      {"gallery", "museum", "exhibit", "theater", "film"},
	"reading":  {"book", "library", "author", "poetry"},
	"fitness":  {"yoga", "run", "gym", "workout", "climb"},
	"tech":     {"hackathon", "coding", "startup", "developer"},
	"gaming":   {"esports", "board game", "arcade", "tabletop"},
	"dancing":  {"dance", "salsa", "ballroom", "swing"},
	"cooking":  {"culinary", "chef", "baking", "recipe"},
	"movies":   {"film", "cinema", "screening", "documentary"},
	"outdoors": {"hike", "trail", "camping", "kayak", "park"},
}

// FilterByInterests keeps events matching at least one interest, either as a
// literal substring of the event text or through the expansion table. An
// empty interest list keeps everything. Relative order is preserved.
func FilterByInterests(events []models.Event, interests []string) []models.Event {
	if len(interests) == 0 {
		return events
	}

	out := make([]models.Event, 0, len(events))
	for _, ev := range events {
		if matchesAnyInterest(ev, interests) {
			out = append(out, ev)
		}
	}
	return out
}

func matchesAnyInterest(ev models.Event, interests []string) bool {
	text := strings.ToLower(ev.Title + " " + ev.Description + " " + string(ev.Type))
	for _, interest := range interests {
		needle := strings.ToLower(strings.TrimSpace(interest))
		if needle == "" {
			continue
		}
		if strings.Contains(text, needle) {
			return true
		}
		for _, expanded := range interestExpansions[needle] {
			if strings.Contains(text, expanded) {
				return true
			}
		}
	}
	return false
}
