package sources

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/LOCALPULSE/localpulse/internal/config"
	"github.com/LOCALPULSE/localpulse/internal/models"
)

// TicketingAdapter fetches events from a ticketing provider's discovery API.
type TicketingAdapter struct {
	cfg     config.AdapterConfig
	client  *http.Client
	logger  *slog.Logger
	tracker *statusTracker
}

// NewTicketingAdapter creates a ticketing adapter.
func NewTicketingAdapter(cfg config.AdapterConfig, logger *slog.Logger) *TicketingAdapter {
	return &TicketingAdapter{
		cfg:     cfg,
		client:  newHTTPClient(cfg.Timeout),
		logger:  logger,
		tracker: newStatusTracker("ticketing"),
	}
}

// Name returns the adapter name.
func (a *TicketingAdapter) Name() string {
	return "ticketing"
}

// Status returns the adapter's operational state.
func (a *TicketingAdapter) Status() Status {
	return a.tracker.snapshot()
}

// ticketingResponse mirrors the provider's discovery payload. Shapes are
// owned by this adapter and never leak past it.
type ticketingResponse struct {
	Embedded struct {
		Events []ticketingEvent `json:"events"`
	} `json:"_embedded"`
}

type ticketingEvent struct {
	Name  string `json:"name"`
	Info  string `json:"info"`
	URL   string `json:"url"`
	Dates struct {
		Start struct {
			LocalDate string `json:"localDate"`
			LocalTime string `json:"localTime"`
		} `json:"start"`
	} `json:"dates"`
	PriceRanges []struct {
		Min float64 `json:"min"`
		Max float64 `json:"max"`
	} `json:"priceRanges"`
	Classifications []struct {
		Segment struct {
			Name string `json:"name"`
		} `json:"segment"`
	} `json:"classifications"`
	Embedded struct {
		Venues []struct {
			Name string `json:"name"`
			City struct {
				Name string `json:"name"`
			} `json:"city"`
		} `json:"venues"`
	} `json:"_embedded"`
}

// Fetch retrieves ticketed events for the location and window.
func (a *TicketingAdapter) Fetch(ctx context.Context, location string, window models.TimeRange) models.SourceFetchResult {
	start := time.Now()
	events, err := a.fetch(ctx, location, window)
	return finishFetch(a.Name(), a.logger, a.tracker, start, events, err)
}

func (a *TicketingAdapter) fetch(ctx context.Context, location string, window models.TimeRange) ([]models.RawEvent, error) {
	if a.cfg.APIKey == "" {
		return nil, fmt.Errorf("ticketing api key not configured")
	}

	params := url.Values{}
	params.Set("city", location)
	params.Set("startDateTime", window.Start.UTC().Format("2006-01-02T15:04:05Z"))
	params.Set("endDateTime", window.End.UTC().Format("2006-01-02T15:04:05Z"))
	params.Set("size", "40")
	params.Set("apikey", a.cfg.APIKey)

	endpoint := fmt.Sprintf("%s/discovery/v2/events.json?%s", a.cfg.BaseURL, params.Encode())

	var payload ticketingResponse
	if err := fetchJSON(ctx, a.client, endpoint, nil, &payload); err != nil {
		return nil, fmt.Errorf("ticketing fetch failed: %w", err)
	}

	raws := make([]models.RawEvent, 0, len(payload.Embedded.Events))
	for _, ev := range payload.Embedded.Events {
		date, ok := parseEventDate(ev.Dates.Start.LocalDate)
		if !ok {
			a.logger.Debug("skipping event with unparseable date",
				"title", ev.Name,
				"date", ev.Dates.Start.LocalDate)
			continue
		}

		venue := ""
		if len(ev.Embedded.Venues) > 0 {
			venue = ev.Embedded.Venues[0].Name
		}

		description := ev.Info
		if description == "" && len(ev.Classifications) > 0 {
			description = ev.Classifications[0].Segment.Name + " event"
		}

		// Free only on an explicit zero price; missing price data means paid.
		isFree := len(ev.PriceRanges) > 0 && ev.PriceRanges[0].Min == 0 && ev.PriceRanges[0].Max == 0

		raws = append(raws, models.RawEvent{
			Title:       ev.Name,
			Description: description,
			Venue:       venue,
			Date:        date,
			StartTime:   formatLocalTime(ev.Dates.Start.LocalTime),
			IsFree:      isFree,
			URL:         ev.URL,
		})
	}

	return raws, nil
}

// formatLocalTime trims provider local times like "19:30:00" down to "19:30".
func formatLocalTime(t string) string {
	t = strings.TrimSpace(t)
	if len(t) >= 5 {
		return t[:5]
	}
	return t
}
