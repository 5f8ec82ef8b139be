package aggregate

import "github.com/LOCALPULSE/localpulse/internal/models"

// Deduplicate removes events sharing a dedup key (lowercased title plus
// calendar date). The first occurrence wins, so callers must pass events in
// source-priority order.
func Deduplicate(events []models.Event) []models.Event {
	seen := make(map[string]struct{}, len(events))
	out := make([]models.Event, 0, len(events))
	for _, ev := range events {
		key := ev.DedupKey()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, ev)
	}
	return out
}
