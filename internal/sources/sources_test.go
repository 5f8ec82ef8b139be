package sources

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/LOCALPULSE/localpulse/internal/config"
	"github.com/LOCALPULSE/localpulse/internal/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(testWriter{}, &slog.HandlerOptions{Level: slog.LevelError}))
}

type testWriter struct{}

func (testWriter) Write(p []byte) (int, error) { return len(p), nil }

func testWindow() models.TimeRange {
	return models.TimeRange{
		Start: time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 9, 8, 0, 0, 0, 0, time.UTC),
	}
}

func adapterConfig(baseURL string) config.AdapterConfig {
	return config.AdapterConfig{
		Enabled: true,
		APIKey:  "test-key",
		BaseURL: baseURL,
		Timeout: 2 * time.Second,
	}
}

func TestTicketingAdapterFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/discovery/v2/events.json" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("apikey"); got != "test-key" {
			t.Errorf("apikey = %q, want test-key", got)
		}
		if got := r.URL.Query().Get("city"); got != "Portland" {
			t.Errorf("city = %q, want Portland", got)
		}
		w.Write([]byte(`{
			"_embedded": {"events": [
				{
					"name": "Jazz Night",
					"info": "Live jazz downtown",
					"url": "https://tickets.example.com/jazz",
					"dates": {"start": {"localDate": "2026-09-03", "localTime": "19:30:00"}},
					"priceRanges": [{"min": 25, "max": 60}],
					"_embedded": {"venues": [{"name": "Blue Room"}]}
				},
				{
					"name": "Community Concert",
					"dates": {"start": {"localDate": "2026-09-04", "localTime": "18:00:00"}},
					"priceRanges": [{"min": 0, "max": 0}],
					"classifications": [{"segment": {"name": "Music"}}]
				},
				{
					"name": "Bad Date Event",
					"dates": {"start": {"localDate": "not-a-date"}}
				}
			]}
		}`))
	}))
	defer srv.Close()

	adapter := NewTicketingAdapter(adapterConfig(srv.URL), testLogger())
	result := adapter.Fetch(context.Background(), "Portland", testWindow())

	if !result.Succeeded {
		t.Fatal("expected fetch to succeed")
	}
	if len(result.Events) != 2 {
		t.Fatalf("got %d events, want 2", len(result.Events))
	}

	first := result.Events[0]
	if first.Title != "Jazz Night" {
		t.Errorf("title = %q", first.Title)
	}
	if first.Venue != "Blue Room" {
		t.Errorf("venue = %q", first.Venue)
	}
	if first.StartTime != "19:30" {
		t.Errorf("start time = %q, want 19:30", first.StartTime)
	}
	if first.IsFree {
		t.Error("priced event should not be free")
	}

	second := result.Events[1]
	if !second.IsFree {
		t.Error("zero-price event should be free")
	}
	if second.Description != "Music event" {
		t.Errorf("description = %q, want classification fallback", second.Description)
	}
}

func TestTicketingAdapterMissingKey(t *testing.T) {
	cfg := adapterConfig("http://unused.example.com")
	cfg.APIKey = ""
	adapter := NewTicketingAdapter(cfg, testLogger())

	result := adapter.Fetch(context.Background(), "Portland", testWindow())
	if result.Succeeded {
		t.Error("expected failure without api key")
	}
	if len(result.Events) != 0 {
		t.Errorf("got %d events, want 0", len(result.Events))
	}

	status := adapter.Status()
	if status.TotalErrors != 1 {
		t.Errorf("total errors = %d, want 1", status.TotalErrors)
	}
	if status.LastError == "" {
		t.Error("expected last error to be recorded")
	}
}

func TestTicketingAdapterServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	adapter := NewTicketingAdapter(adapterConfig(srv.URL), testLogger())
	result := adapter.Fetch(context.Background(), "Portland", testWindow())

	if result.Succeeded {
		t.Error("expected failure on 500 response")
	}
	if result.Events != nil {
		t.Error("failed fetch must not carry events")
	}
}

func TestSportsAdapterFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("X-Api-Key"); got != "test-key" {
			t.Errorf("X-Api-Key = %q, want test-key", got)
		}
		w.Write([]byte(`{
			"games": [
				{
					"home_team": "Timbers",
					"away_team": "Sounders",
					"league": "MLS",
					"venue": "Providence Park",
					"date": "2026-09-05",
					"start_time": "19:05",
					"tickets_url": "https://tickets.example.com/timbers",
					"free_entry": false
				}
			]
		}`))
	}))
	defer srv.Close()

	adapter := NewSportsAdapter(adapterConfig(srv.URL), testLogger())
	result := adapter.Fetch(context.Background(), "Portland", testWindow())

	if !result.Succeeded {
		t.Fatal("expected fetch to succeed")
	}
	if len(result.Events) != 1 {
		t.Fatalf("got %d events, want 1", len(result.Events))
	}
	if result.Events[0].Title != "Timbers vs Sounders" {
		t.Errorf("title = %q", result.Events[0].Title)
	}
	if result.Events[0].Venue != "Providence Park" {
		t.Errorf("venue = %q", result.Events[0].Venue)
	}
}

func TestCuratedAdapterFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}
		w.Write([]byte(`{
			"listings": [
				{
					"title": "Farmers Market",
					"summary": "Weekly produce market",
					"venue": "Main Square",
					"date": "2026-09-06",
					"start_time": "09:00",
					"admission": "free",
					"link": "https://local.example.com/market"
				},
				{
					"title": "Wine Tasting",
					"venue": "Cellar Door",
					"date": "2026-09-06",
					"admission": "$45"
				},
				{
					"title": "Donation Show",
					"venue": "Hall",
					"date": "2026-09-07",
					"admission": "donation"
				}
			]
		}`))
	}))
	defer srv.Close()

	adapter := NewCuratedAdapter(adapterConfig(srv.URL), testLogger())
	result := adapter.Fetch(context.Background(), "Portland", testWindow())

	if !result.Succeeded {
		t.Fatal("expected fetch to succeed")
	}
	if len(result.Events) != 3 {
		t.Fatalf("got %d events, want 3", len(result.Events))
	}
	if !result.Events[0].IsFree {
		t.Error("explicit free admission should map to free")
	}
	if result.Events[1].IsFree {
		t.Error("priced admission should not map to free")
	}
	if result.Events[2].IsFree {
		t.Error("donation admission should default to paid")
	}
}

func TestWebscrapeAdapterFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/events/san-francisco" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Write([]byte(`<html><body>
			<div class="event-card">
				<h3 class="event-title">Open Mic Night</h3>
				<span class="event-venue">Corner Cafe</span>
				<time class="event-date" datetime="2026-09-03">Sep 3</time>
				<span class="event-time">20:00</span>
				<span class="event-price">Free</span>
				<p class="event-description">Weekly open mic</p>
				<a href="/open-mic">Details</a>
			</div>
			<div class="event-card">
				<h3 class="event-title">Old Festival</h3>
				<span class="event-venue">Park</span>
				<time class="event-date" datetime="2026-08-01">Aug 1</time>
			</div>
			<div class="event-card">
				<h3 class="event-title">No Date Card</h3>
				<span class="event-venue">Somewhere</span>
			</div>
		</body></html>`))
	}))
	defer srv.Close()

	adapter := NewWebscrapeAdapter(adapterConfig(srv.URL), testLogger())
	result := adapter.Fetch(context.Background(), "San Francisco", testWindow())

	if !result.Succeeded {
		t.Fatal("expected fetch to succeed")
	}
	if len(result.Events) != 1 {
		t.Fatalf("got %d events, want 1 (out-of-window and dateless cards dropped)", len(result.Events))
	}

	ev := result.Events[0]
	if ev.Title != "Open Mic Night" {
		t.Errorf("title = %q", ev.Title)
	}
	if !ev.IsFree {
		t.Error("free-priced card should be free")
	}
	if ev.URL != srv.URL+"/open-mic" {
		t.Errorf("url = %q", ev.URL)
	}
	if ev.StartTime != "20:00" {
		t.Errorf("start time = %q", ev.StartTime)
	}
}

func TestWebscrapeAdapterUnreachable(t *testing.T) {
	cfg := adapterConfig("http://127.0.0.1:1")
	cfg.Timeout = 200 * time.Millisecond
	adapter := NewWebscrapeAdapter(cfg, testLogger())

	result := adapter.Fetch(context.Background(), "Portland", testWindow())
	if result.Succeeded {
		t.Error("expected failure when server is unreachable")
	}
}

func TestFetchRespectsContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	adapter := NewCuratedAdapter(adapterConfig(srv.URL), testLogger())
	result := adapter.Fetch(ctx, "Portland", testWindow())

	if result.Succeeded {
		t.Error("expected failure when context deadline expires")
	}
}

func TestParseEventDate(t *testing.T) {
	tests := []struct {
		input string
		ok    bool
		want  string
	}{
		{"2026-09-03", true, "2026-09-03"},
		{"2026-09-03T19:30:00Z", true, "2026-09-03"},
		{"Jan 2, 2026", true, "2026-01-02"},
		{"01/02/2026", true, "2026-01-02"},
		{"  2026-09-03  ", true, "2026-09-03"},
		{"", false, ""},
		{"next tuesday", false, ""},
	}

	for _, tt := range tests {
		got, ok := parseEventDate(tt.input)
		if ok != tt.ok {
			t.Errorf("parseEventDate(%q) ok = %v, want %v", tt.input, ok, tt.ok)
			continue
		}
		if ok && got.Format("2006-01-02") != tt.want {
			t.Errorf("parseEventDate(%q) = %s, want %s", tt.input, got.Format("2006-01-02"), tt.want)
		}
	}
}

func TestStatusTrackerAccumulates(t *testing.T) {
	tracker := newStatusTracker("test")

	tracker.update(models.SourceFetchResult{
		Events:  make([]models.RawEvent, 3),
		Elapsed: 10 * time.Millisecond,
	}, nil)
	tracker.update(models.SourceFetchResult{Elapsed: 30 * time.Millisecond}, context.DeadlineExceeded)

	status := tracker.snapshot()
	if status.TotalFetched != 3 {
		t.Errorf("total fetched = %d, want 3", status.TotalFetched)
	}
	if status.TotalErrors != 1 {
		t.Errorf("total errors = %d, want 1", status.TotalErrors)
	}
	if status.LastError == "" {
		t.Error("expected last error recorded")
	}
	if status.AverageLatency != 20*time.Millisecond {
		t.Errorf("average latency = %s, want 20ms", status.AverageLatency)
	}
}

func TestCitySlug(t *testing.T) {
	tests := []struct{ in, want string }{
		{"San Francisco", "san-francisco"},
		{"Portland, OR", "portland-or"},
		{"  Austin  ", "austin"},
	}
	for _, tt := range tests {
		if got := citySlug(tt.in); got != tt.want {
			t.Errorf("citySlug(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
