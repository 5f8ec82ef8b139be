package sources

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/LOCALPULSE/localpulse/internal/config"
	"github.com/LOCALPULSE/localpulse/internal/models"
)

// SportsAdapter fetches upcoming games from a sports scoreboard API.
type SportsAdapter struct {
	cfg     config.AdapterConfig
	client  *http.Client
	logger  *slog.Logger
	tracker *statusTracker
}

// NewSportsAdapter creates a sports adapter.
func NewSportsAdapter(cfg config.AdapterConfig, logger *slog.Logger) *SportsAdapter {
	return &SportsAdapter{
		cfg:     cfg,
		client:  newHTTPClient(cfg.Timeout),
		logger:  logger,
		tracker: newStatusTracker("sports"),
	}
}

// Name returns the adapter name.
func (a *SportsAdapter) Name() string {
	return "sports"
}

// Status returns the adapter's operational state.
func (a *SportsAdapter) Status() Status {
	return a.tracker.snapshot()
}

type sportsResponse struct {
	Games []sportsGame `json:"games"`
}

type sportsGame struct {
	HomeTeam   string `json:"home_team"`
	AwayTeam   string `json:"away_team"`
	League     string `json:"league"`
	Venue      string `json:"venue"`
	Date       string `json:"date"`       // "2006-01-02"
	StartTime  string `json:"start_time"` // "19:05"
	TicketsURL string `json:"tickets_url"`
	FreeEntry  bool   `json:"free_entry"`
}

// Fetch retrieves scheduled games for the location and window.
func (a *SportsAdapter) Fetch(ctx context.Context, location string, window models.TimeRange) models.SourceFetchResult {
	start := time.Now()
	events, err := a.fetch(ctx, location, window)
	return finishFetch(a.Name(), a.logger, a.tracker, start, events, err)
}

func (a *SportsAdapter) fetch(ctx context.Context, location string, window models.TimeRange) ([]models.RawEvent, error) {
	if a.cfg.APIKey == "" {
		return nil, fmt.Errorf("sports api key not configured")
	}

	params := url.Values{}
	params.Set("city", location)
	params.Set("from", window.Start.Format("2006-01-02"))
	params.Set("to", window.End.Format("2006-01-02"))

	endpoint := fmt.Sprintf("%s/v1/scoreboard?%s", a.cfg.BaseURL, params.Encode())
	headers := map[string]string{"X-Api-Key": a.cfg.APIKey}

	var payload sportsResponse
	if err := fetchJSON(ctx, a.client, endpoint, headers, &payload); err != nil {
		return nil, fmt.Errorf("sports fetch failed: %w", err)
	}

	raws := make([]models.RawEvent, 0, len(payload.Games))
	for _, game := range payload.Games {
		date, ok := parseEventDate(game.Date)
		if !ok {
			a.logger.Debug("skipping game with unparseable date",
				"home", game.HomeTeam,
				"date", game.Date)
			continue
		}

		title := fmt.Sprintf("%s vs %s", game.HomeTeam, game.AwayTeam)
		description := fmt.Sprintf("%s game: %s hosts %s", game.League, game.HomeTeam, game.AwayTeam)

		raws = append(raws, models.RawEvent{
			Title:       title,
			Description: description,
			Venue:       game.Venue,
			Date:        date,
			StartTime:   game.StartTime,
			IsFree:      game.FreeEntry,
			URL:         game.TicketsURL,
		})
	}

	return raws, nil
}
