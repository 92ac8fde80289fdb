package schedule

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"dugout/internal/client/ics"
	"dugout/internal/client/sheets"
	"dugout/internal/models"
)

// matchWindow is how far apart a roster time and a calendar start may be
// and still describe the same occurrence.
const matchWindow = 2 * time.Hour

// RosterSource is the authoritative schedule: one row per occurrence
// with manually maintained volunteer columns.
type RosterSource interface {
	FetchRows(ctx context.Context) ([]sheets.Row, error)
}

// CalendarSource is the optional richer feed. Implementations may be nil
// pointers; a failed or absent feed degrades to an empty secondary set.
type CalendarSource interface {
	FetchEvents(ctx context.Context) ([]ics.Entry, error)
}

// Correlator rebuilds the canonical event timeline from both sources on
// every call. Snapshots are never cached here; staleness bugs in the
// reminder path taught us that lesson once already.
type Correlator struct {
	Roster   RosterSource
	Calendar CalendarSource
	TeamName string
	Logger   *zap.Logger
}

// Snapshot fetches fresh data from both sources and correlates it. A
// roster failure fails the snapshot (no fresh data this cycle); a
// calendar failure only costs the secondary enrichment.
func (c *Correlator) Snapshot(ctx context.Context) ([]models.Event, error) {
	rows, err := c.Roster.FetchRows(ctx)
	if err != nil {
		return nil, fmt.Errorf("roster fetch: %w", err)
	}

	var entries []ics.Entry
	if c.Calendar != nil {
		entries, err = c.Calendar.FetchEvents(ctx)
		if err != nil {
			c.logger().Warn("calendar fetch failed, continuing with roster only", zap.Error(err))
			entries = nil
		}
	}

	return c.Correlate(rows, entries), nil
}

// Correlate merges roster rows and calendar entries into an ordered
// timeline. Roster rows come first so manual edits always surface even
// with no calendar match; unmatched calendar entries become events of
// their own.
func (c *Correlator) Correlate(rows []sheets.Row, entries []ics.Entry) []models.Event {
	events := make([]models.Event, 0, len(rows)+len(entries))

	for _, row := range rows {
		date, err := sheets.ParseDate(row.Date)
		if err != nil {
			c.logger().Warn("skipping roster row with malformed date",
				zap.Int("sheet_row", row.SheetRow),
				zap.String("date", row.Date),
				zap.Error(err))
			continue
		}
		gameTime := models.ParseGameTime(row.Time)
		venue := ParseVenue(row.HomeField, c.TeamName)

		summary := ""
		src := models.SummaryNone
		if row.Time != "" && row.HomeField != "" {
			summary = fmt.Sprintf("%s - %s", row.Time, row.HomeField)
			src = models.SummarySheet
		}

		events = append(events, models.Event{
			ID:            models.EventID(date, gameTime, row.Location),
			Date:          date,
			Time:          gameTime,
			Location:      row.Location,
			Venue:         venue,
			Summary:       summary,
			SummarySource: src,
			Roles:         models.RequiredRoles(venue),
			Assignments:   row.Assignments(),
		})
	}

	// Calendar entries only ever match roster-born events. Events the
	// loop below appends are not match targets, and a roster event that
	// already took a calendar summary can still absorb further entries
	// for the same game.
	rosterCount := len(events)

	for _, entry := range entries {
		if idx := matchEntry(events[:rosterCount], entry); idx >= 0 {
			events[idx].Summary, events[idx].SummarySource = chooseSummary(
				events[idx].Summary, events[idx].SummarySource,
				strings.TrimSpace(entry.Summary), models.SummaryCalendar)
			continue
		}

		gameTime := models.GameTime{}
		if entry.HasTime {
			gameTime = models.GameTime{
				Known:  true,
				Hour:   entry.Start.Hour(),
				Minute: entry.Start.Minute(),
				Raw:    entry.Start.Format("3:04 PM"),
			}
		}
		events = append(events, models.Event{
			ID:            models.EventID(entry.Date, gameTime, entry.Location),
			Date:          entry.Date,
			Time:          gameTime,
			Location:      entry.Location,
			Venue:         models.VenueUnknown,
			Summary:       strings.TrimSpace(entry.Summary),
			SummarySource: models.SummaryCalendar,
			Roles:         models.RequiredRoles(models.VenueUnknown),
			Assignments:   map[models.Role]string{},
		})
	}

	sort.SliceStable(events, func(i, j int) bool {
		if !events[i].Date.Equal(events[j].Date) {
			return events[i].Date.Before(events[j].Date)
		}
		return events[i].Time.Before(events[j].Time)
	})

	dedupeIDs(events)
	return events
}

func (c *Correlator) logger() *zap.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return zap.NewNop()
}

// matchEntry finds the roster-derived event a calendar entry describes:
// same date, start times within the match window when both are known,
// and compatible locations. Callers pass only roster-born events.
func matchEntry(events []models.Event, entry ics.Entry) int {
	for i, ev := range events {
		if !sameDay(ev.Date, entry.Date) {
			continue
		}
		if ev.Time.Known && entry.HasTime {
			start, _ := ev.StartAt()
			entryStart := time.Date(start.Year(), start.Month(), start.Day(),
				entry.Start.Hour(), entry.Start.Minute(), 0, 0, start.Location())
			diff := entryStart.Sub(start)
			if diff < -matchWindow || diff > matchWindow {
				continue
			}
		}
		if !locationsCompatible(ev.Location, entry.Location) {
			continue
		}
		return i
	}
	return -1
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

func locationsCompatible(a, b string) bool {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return true
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// ParseVenue resolves the home/away tri-state with a fixed precedence:
// explicit Home/Away token, then comparison against the configured team
// name, then Unknown.
func ParseVenue(homeField, teamName string) models.Venue {
	field := strings.ToLower(strings.TrimSpace(homeField))
	if field == "" {
		return models.VenueUnknown
	}
	switch {
	case field == "home" || strings.Contains(field, "home"):
		return models.VenueHome
	case field == "away" || strings.Contains(field, "away"):
		return models.VenueAway
	}
	team := strings.ToLower(strings.TrimSpace(teamName))
	if team != "" && (field == team || strings.Contains(field, team) || strings.Contains(team, field)) {
		return models.VenueHome
	}
	return models.VenueUnknown
}

// dedupeIDs guarantees snapshot-unique IDs when two sources collapse to
// the same derived key.
func dedupeIDs(events []models.Event) {
	seen := make(map[string]int, len(events))
	for i := range events {
		id := events[i].ID
		if n, ok := seen[id]; ok {
			seen[id] = n + 1
			events[i].ID = fmt.Sprintf("%s#%d", id, n+1)
		} else {
			seen[id] = 1
		}
	}
}

// Upcoming filters a snapshot down to events that have not started yet.
// Events with TBD times on today's date are kept; without a clock value
// there is no basis to call them finished.
func Upcoming(events []models.Event, now time.Time) []models.Event {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	var out []models.Event
	for _, ev := range events {
		if ev.Date.Before(today) {
			continue
		}
		if sameDay(ev.Date, now) {
			if start, ok := ev.StartAt(); ok && start.Before(now) {
				continue
			}
		}
		out = append(out, ev)
	}
	return out
}
