// Package aggregate turns raw adapter output into a clean, deduplicated,
// interest-filtered event list.
package aggregate

import (
	"strings"

	"github.com/LOCALPULSE/localpulse/internal/models"
)

// typeRule maps keywords to an event type. Rules are evaluated in order and
// the first match wins.
type typeRule struct {
	eventType models.EventType
	keywords  []string
}

var typeRules = []typeRule{
	{models.EventTypeSports, []string{"game", "match", "vs", "tournament", "race", "marathon", "league"}},
	{models.EventTypeMusic, []string{"concert", "music", "band", "dj", "orchestra", "jazz", "open mic", "symphony"}},
	{models.EventTypeFood, []string{"food", "tasting", "dinner", "brunch", "brewery", "wine", "farmers market", "restaurant"}},
	{models.EventTypeOutdoor, []string{"hike", "hiking", "trail", "outdoor", "park", "kayak", "climb", "bike ride"}},
	{models.EventTypeArts, []string{"art", "gallery", "theater", "theatre", "museum", "exhibit", "film", "poetry"}},
	{models.EventTypeCommunity, []string{"meetup", "community", "volunteer", "workshop", "networking", "fair", "festival"}},
}

// classifyEventType picks an event type from title and description text.
func classifyEventType(title, description string) models.EventType {
	text := strings.ToLower(title + " " + description)
	for _, rule := range typeRules {
		for _, kw := range rule.keywords {
			if strings.Contains(text, kw) {
				return rule.eventType
			}
		}
	}
	return models.EventTypeGeneral
}

// Normalize converts a source's raw events into canonical events, dropping
// records without a title or venue. Order is preserved.
func Normalize(sourceName string, raws []models.RawEvent) []models.Event {
	events := make([]models.Event, 0, len(raws))
	for _, raw := range raws {
		title := strings.TrimSpace(raw.Title)
		venue := strings.TrimSpace(raw.Venue)
		if title == "" || venue == "" {
			continue
		}

		events = append(events, models.Event{
			Title:       title,
			Description: strings.TrimSpace(raw.Description),
			Location:    venue,
			Date:        raw.Date,
			Time:        strings.TrimSpace(raw.StartTime),
			IsFree:      raw.IsFree,
			SourceName:  sourceName,
			Type:        classifyEventType(title, raw.Description),
			ExternalURL: strings.TrimSpace(raw.URL),
		})
	}
	return events
}
