package models

import (
	"strings"
	"time"
)

// Event is the canonical normalized shape every source adapter's records are
// mapped into. Events are transient projections: they live for one
// aggregation call and are never persisted.
type Event struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	Date        time.Time `json:"date"`
	Time        string    `json:"time,omitempty"` // local start time, "19:30"
	IsFree      bool      `json:"is_free"`
	SourceName  string    `json:"source_name"`
	Type        EventType `json:"event_type"`
	ExternalURL string    `json:"external_url,omitempty"`
}

// EventType represents the primary classification of a local event.
type EventType string

const (
	EventTypeSports    EventType = "sports"
	EventTypeMusic     EventType = "music"
	EventTypeArts      EventType = "arts"
	EventTypeFood      EventType = "food"
	EventTypeOutdoor   EventType = "outdoor"
	EventTypeCommunity EventType = "community"
	EventTypeGeneral   EventType = "general"
)

// DateKey returns the calendar-date portion of the event date, suitable for
// use in deduplication keys.
func (e Event) DateKey() string {
	return e.Date.Format("2006-01-02")
}

// DedupKey returns the (lowercased title, date) tuple that defines event
// identity across sources. Exact match only, no fuzzy comparison.
func (e Event) DedupKey() string {
	return strings.ToLower(strings.TrimSpace(e.Title)) + "|" + e.DateKey()
}

// RawEvent is a provider record after the owning adapter has mapped its
// provider-specific date/time and price fields, but before normalization.
type RawEvent struct {
	Title       string
	Description string
	Venue       string
	Date        time.Time
	StartTime   string
	IsFree      bool
	URL         string
}

// TimeRange bounds an aggregation query.
type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t falls inside the range (inclusive of bounds,
// compared at calendar-date granularity).
func (r TimeRange) Contains(t time.Time) bool {
	day := t.Truncate(24 * time.Hour)
	start := r.Start.Truncate(24 * time.Hour)
	end := r.End.Truncate(24 * time.Hour)
	return !day.Before(start) && !day.After(end)
}

// SourceFetchResult is the per-adapter outcome of one aggregation call.
// Adapters never propagate errors past their boundary: a failed fetch is a
// result with Succeeded=false and no events.
type SourceFetchResult struct {
	SourceName string
	Events     []RawEvent
	Succeeded  bool
	Elapsed    time.Duration
}

// AggregateResult is what the orchestrator hands back to the application
// layer. Degraded is set when every adapter failed and the events slice
// holds only the synthetic fallback notice.
type AggregateResult struct {
	Events   []Event `json:"events"`
	Degraded bool    `json:"degraded"`
}
