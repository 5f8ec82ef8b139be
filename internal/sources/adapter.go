// Package sources contains one adapter per third-party event provider. Each
// adapter owns its provider's request/response shapes and maps them into
// RawEvent records; failures never cross the adapter boundary.
package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/LOCALPULSE/localpulse/internal/models"
)

// Adapter is the interface every source adapter implements.
type Adapter interface {
	// Name returns the unique identifier for this adapter.
	Name() string

	// Fetch retrieves events for a location and time window. It must not
	// return an error: network, parse, and auth failures are reported as a
	// result with Succeeded=false and no events.
	Fetch(ctx context.Context, location string, window models.TimeRange) models.SourceFetchResult

	// Status returns the adapter's current operational state.
	Status() Status
}

// Status represents the current state of an adapter.
type Status struct {
	Name           string        `json:"name"`
	LastFetch      time.Time     `json:"last_fetch"`
	LastError      string        `json:"last_error,omitempty"`
	TotalFetched   int64         `json:"total_fetched"`
	TotalErrors    int64         `json:"total_errors"`
	AverageLatency time.Duration `json:"average_latency"`
}

// statusTracker records fetch outcomes for an adapter.
type statusTracker struct {
	mu     sync.Mutex
	status Status
}

func newStatusTracker(name string) *statusTracker {
	return &statusTracker{status: Status{Name: name}}
}

func (t *statusTracker) update(result models.SourceFetchResult, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.status.LastFetch = time.Now()
	t.status.TotalFetched += int64(len(result.Events))

	if err != nil {
		t.status.TotalErrors++
		t.status.LastError = err.Error()
	} else {
		t.status.LastError = ""
	}

	// Simple moving average
	if t.status.AverageLatency == 0 {
		t.status.AverageLatency = result.Elapsed
	} else {
		t.status.AverageLatency = (t.status.AverageLatency + result.Elapsed) / 2
	}
}

func (t *statusTracker) snapshot() Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

// fetchBody performs a GET with the shared User-Agent and returns the raw
// response body. Non-200 statuses are errors.
func fetchBody(ctx context.Context, client *http.Client, url string, headers map[string]string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http get failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}

	return body, nil
}

// fetchJSON performs a GET and decodes the JSON response into dst.
func fetchJSON(ctx context.Context, client *http.Client, url string, headers map[string]string, dst any) error {
	body, err := fetchBody(ctx, client, url, headers)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// parseEventDate attempts the date formats seen across providers. The
// second return value is false when no format matched.
func parseEventDate(dateStr string) (time.Time, bool) {
	dateStr = strings.TrimSpace(dateStr)
	if dateStr == "" {
		return time.Time{}, false
	}

	formats := []string{
		"2006-01-02",
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"Jan 2, 2006",
		"January 2, 2006",
		"Monday, January 2, 2006",
		"01/02/2006",
	}

	for _, format := range formats {
		if t, err := time.Parse(format, dateStr); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

// finishFetch packages an internal fetch outcome into a SourceFetchResult,
// logs it, and updates the status tracker. Shared by all adapters so the
// never-throw contract lives in one place.
func finishFetch(name string, logger *slog.Logger, tracker *statusTracker, start time.Time, events []models.RawEvent, err error) models.SourceFetchResult {
	result := models.SourceFetchResult{
		SourceName: name,
		Events:     events,
		Succeeded:  err == nil,
		Elapsed:    time.Since(start),
	}

	if err != nil {
		result.Events = nil
		logger.Warn("adapter fetch failed",
			"adapter", name,
			"error", err,
			"elapsed_ms", result.Elapsed.Milliseconds())
	} else {
		logger.Info("adapter fetch completed",
			"adapter", name,
			"count", len(events),
			"elapsed_ms", result.Elapsed.Milliseconds())
	}

	tracker.update(result, err)
	return result
}
