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

// CuratedAdapter fetches hand-curated local listings from an editorial API.
type CuratedAdapter struct {
	cfg     config.AdapterConfig
	client  *http.Client
	logger  *slog.Logger
	tracker *statusTracker
}

// NewCuratedAdapter creates a curated-listings adapter.
func NewCuratedAdapter(cfg config.AdapterConfig, logger *slog.Logger) *CuratedAdapter {
	return &CuratedAdapter{
		cfg:     cfg,
		client:  newHTTPClient(cfg.Timeout),
		logger:  logger,
		tracker: newStatusTracker("curated"),
	}
}

// Name returns the adapter name.
func (a *CuratedAdapter) Name() string {
	return "curated"
}

// Status returns the adapter's operational state.
func (a *CuratedAdapter) Status() Status {
	return a.tracker.snapshot()
}

type curatedResponse struct {
	Listings []curatedListing `json:"listings"`
}

type curatedListing struct {
	Title     string `json:"title"`
	Summary   string `json:"summary"`
	Venue     string `json:"venue"`
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	Admission string `json:"admission"` // "free", "donation", or a price string
	Link      string `json:"link"`
}

// Fetch retrieves curated listings for the location and window.
func (a *CuratedAdapter) Fetch(ctx context.Context, location string, window models.TimeRange) models.SourceFetchResult {
	start := time.Now()
	events, err := a.fetch(ctx, location, window)
	return finishFetch(a.Name(), a.logger, a.tracker, start, events, err)
}

func (a *CuratedAdapter) fetch(ctx context.Context, location string, window models.TimeRange) ([]models.RawEvent, error) {
	params := url.Values{}
	params.Set("location", location)
	params.Set("from", window.Start.Format("2006-01-02"))
	params.Set("to", window.End.Format("2006-01-02"))

	endpoint := fmt.Sprintf("%s/listings?%s", a.cfg.BaseURL, params.Encode())

	headers := map[string]string{}
	if a.cfg.APIKey != "" {
		headers["Authorization"] = "Bearer " + a.cfg.APIKey
	}

	var payload curatedResponse
	if err := fetchJSON(ctx, a.client, endpoint, headers, &payload); err != nil {
		return nil, fmt.Errorf("curated fetch failed: %w", err)
	}

	raws := make([]models.RawEvent, 0, len(payload.Listings))
	for _, listing := range payload.Listings {
		date, ok := parseEventDate(listing.Date)
		if !ok {
			a.logger.Debug("skipping listing with unparseable date",
				"title", listing.Title,
				"date", listing.Date)
			continue
		}

		raws = append(raws, models.RawEvent{
			Title:       listing.Title,
			Description: listing.Summary,
			Venue:       listing.Venue,
			Date:        date,
			StartTime:   listing.StartTime,
			IsFree:      isFreeAdmission(listing.Admission),
			URL:         listing.Link,
		})
	}

	return raws, nil
}

// isFreeAdmission only treats an explicit free marker as free; missing or
// unrecognized admission text defaults to paid.
func isFreeAdmission(admission string) bool {
	switch strings.ToLower(strings.TrimSpace(admission)) {
	case "free", "no charge", "0", "$0":
		return true
	default:
		return false
	}
}
