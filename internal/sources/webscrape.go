package sources

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/LOCALPULSE/localpulse/internal/config"
	"github.com/LOCALPULSE/localpulse/internal/models"
)

// WebscrapeAdapter is the last-resort source: it scrapes a public community
// events page when the API-backed providers have nothing.
type WebscrapeAdapter struct {
	cfg     config.AdapterConfig
	client  *http.Client
	logger  *slog.Logger
	tracker *statusTracker
}

// NewWebscrapeAdapter creates a web-scrape adapter.
func NewWebscrapeAdapter(cfg config.AdapterConfig, logger *slog.Logger) *WebscrapeAdapter {
	return &WebscrapeAdapter{
		cfg:     cfg,
		client:  newHTTPClient(cfg.Timeout),
		logger:  logger,
		tracker: newStatusTracker("webscrape"),
	}
}

// Name returns the adapter name.
func (a *WebscrapeAdapter) Name() string {
	return "webscrape"
}

// Status returns the adapter's operational state.
func (a *WebscrapeAdapter) Status() Status {
	return a.tracker.snapshot()
}

// Fetch scrapes the events page for the location and filters to the window.
func (a *WebscrapeAdapter) Fetch(ctx context.Context, location string, window models.TimeRange) models.SourceFetchResult {
	start := time.Now()
	events, err := a.fetch(ctx, location, window)
	return finishFetch(a.Name(), a.logger, a.tracker, start, events, err)
}

func (a *WebscrapeAdapter) fetch(ctx context.Context, location string, window models.TimeRange) ([]models.RawEvent, error) {
	endpoint := fmt.Sprintf("%s/events/%s", a.cfg.BaseURL, url.PathEscape(citySlug(location)))

	body, err := fetchBody(ctx, a.client, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("webscrape fetch failed: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("webscrape parse failed: %w", err)
	}

	var raws []models.RawEvent
	doc.Find(".event-card").Each(func(_ int, card *goquery.Selection) {
		title := strings.TrimSpace(card.Find(".event-title").First().Text())
		venue := strings.TrimSpace(card.Find(".event-venue").First().Text())

		dateNode := card.Find(".event-date").First()
		dateStr, exists := dateNode.Attr("datetime")
		if !exists {
			dateStr = strings.TrimSpace(dateNode.Text())
		}

		date, ok := parseEventDate(dateStr)
		if !ok {
			a.logger.Debug("skipping card with unparseable date",
				"title", title,
				"date", dateStr)
			return
		}
		if !window.Contains(date) {
			return
		}

		price := strings.ToLower(strings.TrimSpace(card.Find(".event-price").First().Text()))

		link := ""
		if href, ok := card.Find("a").First().Attr("href"); ok {
			link = absoluteURL(a.cfg.BaseURL, href)
		}

		raws = append(raws, models.RawEvent{
			Title:       title,
			Description: strings.TrimSpace(card.Find(".event-description").First().Text()),
			Venue:       venue,
			Date:        date,
			StartTime:   strings.TrimSpace(card.Find(".event-time").First().Text()),
			IsFree:      strings.Contains(price, "free"),
			URL:         link,
		})
	})

	return raws, nil
}

// citySlug lowercases a location name into the path segment the events site
// uses, e.g. "San Francisco" -> "san-francisco".
func citySlug(location string) string {
	slug := strings.ToLower(strings.TrimSpace(location))
	slug = strings.ReplaceAll(slug, ",", "")
	return strings.ReplaceAll(slug, " ", "-")
}

func absoluteURL(base, href string) string {
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(href, "/")
}
