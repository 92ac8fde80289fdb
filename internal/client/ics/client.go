package ics

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	ical "github.com/arran4/golang-ical"
	"go.uber.org/zap"
)

// Entry is one calendar occurrence from the scheduling feed. Summary
// carries the feed's structured matchup text verbatim.
type Entry struct {
	Date     time.Time
	Start    time.Time
	HasTime  bool
	Summary  string
	Location string
}

// Client fetches and parses the optional ICS feed. A nil *Client is the
// documented "no calendar configured" state: FetchEvents on nil returns
// an empty slice.
type Client struct {
	url        string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewClient(httpClient *http.Client, feedURL string, logger *zap.Logger) *Client {
	if feedURL == "" {
		return nil
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{url: feedURL, httpClient: httpClient, logger: logger}
}

// FetchEvents downloads the feed and returns one Entry per VEVENT.
// Individual malformed events are skipped with a warning; only transport
// and top-level parse failures surface as errors.
func (c *Client) FetchEvents(ctx context.Context) ([]Entry, error) {
	if c == nil {
		return nil, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calendar fetch failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("calendar feed returned %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read feed: %w", err)
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse calendar: %w", err)
	}

	entries := make([]Entry, 0, len(cal.Events()))
	for _, ve := range cal.Events() {
		start, err := ve.GetStartAt()
		if err != nil {
			c.logger.Warn("skipping calendar event without parseable start",
				zap.Error(err))
			continue
		}
		summary := ""
		if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
			summary = p.Value
		}
		location := ""
		if p := ve.GetProperty(ical.ComponentPropertyLocation); p != nil {
			location = p.Value
		}

		allDay := false
		if p := ve.GetProperty(ical.ComponentPropertyDtStart); p != nil {
			if params := p.ICalParameters; params != nil {
				if vs, ok := params["VALUE"]; ok && len(vs) > 0 && vs[0] == "DATE" {
					allDay = true
				}
			}
		}

		entries = append(entries, Entry{
			Date:    time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location()),
			Start:   start,
			HasTime:  !allDay,
			Summary:  summary,
			Location: location,
		})
	}
	return entries, nil
}
