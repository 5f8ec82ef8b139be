package aggregate

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/LOCALPULSE/localpulse/internal/config"
	"github.com/LOCALPULSE/localpulse/internal/metrics"
	"github.com/LOCALPULSE/localpulse/internal/models"
	"github.com/LOCALPULSE/localpulse/internal/sources"
)

// Request describes one aggregation call.
type Request struct {
	Location  string
	Window    models.TimeRange
	Interests []string
}

// Orchestrator fans out to every source adapter concurrently and merges the
// results into a single deduplicated, interest-filtered event list.
type Orchestrator struct {
	adapters   []sources.Adapter
	deadline   time.Duration
	perAdapter time.Duration
	maxResults int
	logger     *slog.Logger
	collector  *metrics.Collector
}

// NewOrchestrator creates an orchestrator over the given adapters. Adapter
// slice order is the source-priority order used for dedup ties.
func NewOrchestrator(adapters []sources.Adapter, cfg config.AggregationConfig, adapterTimeout time.Duration, logger *slog.Logger, collector *metrics.Collector) *Orchestrator {
	return &Orchestrator{
		adapters:   adapters,
		deadline:   cfg.Deadline,
		perAdapter: adapterTimeout,
		maxResults: cfg.MaxResults,
		logger:     logger,
		collector:  collector,
	}
}

// Adapters returns the configured adapters in priority order.
func (o *Orchestrator) Adapters() []sources.Adapter {
	return o.adapters
}

// Aggregate queries all adapters in parallel and returns merged events. When
// every source fails or returns nothing, the result is degraded: a single
// synthetic notice event so callers always have something to show.
func (o *Orchestrator) Aggregate(ctx context.Context, req Request) models.AggregateResult {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, o.deadline)
	defer cancel()

	// Results are indexed by adapter position so merge order stays fixed
	// regardless of which goroutine finishes first.
	results := make([]models.SourceFetchResult, len(o.adapters))

	var wg sync.WaitGroup
	for i, adapter := range o.adapters {
		wg.Add(1)
		go func(i int, adapter sources.Adapter) {
			defer wg.Done()

			fetchCtx, fetchCancel := context.WithTimeout(ctx, o.perAdapter)
			defer fetchCancel()

			results[i] = adapter.Fetch(fetchCtx, req.Location, req.Window)
		}(i, adapter)
	}
	wg.Wait()

	anySucceeded := false
	var merged []models.Event
	for i, result := range results {
		if o.collector != nil {
			o.collector.ObserveAdapterFetch(result.SourceName, result.Elapsed, len(result.Events), result.Succeeded)
		}
		if result.Succeeded {
			anySucceeded = true
		}
		merged = append(merged, Normalize(o.adapters[i].Name(), result.Events)...)
	}

	merged = Deduplicate(merged)
	merged = FilterByInterests(merged, req.Interests)

	// Stable sort: same-date events keep source-priority order.
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Date.Before(merged[j].Date)
	})

	if o.maxResults > 0 && len(merged) > o.maxResults {
		merged = merged[:o.maxResults]
	}

	degraded := false
	if len(merged) == 0 && !anySucceeded {
		degraded = true
		merged = []models.Event{degradedNotice(req)}
		if o.collector != nil {
			o.collector.ObserveDegraded()
		}
	}

	o.logger.Info("aggregation completed",
		"location", req.Location,
		"events", len(merged),
		"degraded", degraded,
		"elapsed_ms", time.Since(start).Milliseconds())

	return models.AggregateResult{Events: merged, Degraded: degraded}
}

// degradedNotice is the placeholder returned when no source produced events.
func degradedNotice(req Request) models.Event {
	location := strings.TrimSpace(req.Location)
	if location == "" {
		location = "your area"
	}
	return models.Event{
		Title:       "Check local listings",
		Description: "Event sources are currently unavailable. Check local listings for events in " + location + ".",
		Location:    location,
		Date:        req.Window.Start,
		SourceName:  "system",
		Type:        models.EventTypeGeneral,
	}
}
