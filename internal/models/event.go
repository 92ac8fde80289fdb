package models

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Venue is the home/away tri-state derived from the roster's home-field
// column. Unknown is a real state, not a default to paper over.
type Venue int

const (
	VenueUnknown Venue = iota
	VenueHome
	VenueAway
)

func (v Venue) String() string {
	switch v {
	case VenueHome:
		return "Home"
	case VenueAway:
		return "Away"
	default:
		return "Unknown"
	}
}

type Role string

const (
	RoleSnacks     Role = "snacks"
	RoleLivestream Role = "livestream"
	RoleScoreboard Role = "scoreboard"
	RolePitchCount Role = "pitchcount"
)

// RequiredRoles is a pure function of the venue. The scoreboard is run by
// the home team's booth, so our volunteers only cover it at away games.
func RequiredRoles(v Venue) []Role {
	roles := []Role{RoleSnacks, RoleLivestream, RolePitchCount}
	if v == VenueAway {
		roles = append(roles, RoleScoreboard)
	}
	return roles
}

// SummarySource ranks how structured a summary's origin is. The merge
// policy in the correlator compares these ranks; a higher rank never
// yields to a lower one.
type SummarySource int

const (
	SummaryNone SummarySource = iota
	SummarySheet
	SummaryCalendar
)

// Event is one scheduled occurrence in a timeline snapshot. Snapshots are
// rebuilt from source data on every correlation; nothing mutates them in
// place.
type Event struct {
	ID            string
	Date          time.Time
	Time          GameTime
	Location      string
	Venue         Venue
	Summary       string
	SummarySource SummarySource
	Roles         []Role
	Assignments   map[Role]string
}

// StartAt resolves the event's wall-clock start. The second return is
// false for TBD times; callers must handle that case instead of assuming
// a default hour.
func (e Event) StartAt() (time.Time, bool) {
	if !e.Time.Known {
		return time.Time{}, false
	}
	return time.Date(e.Date.Year(), e.Date.Month(), e.Date.Day(),
		e.Time.Hour, e.Time.Minute, 0, 0, e.Date.Location()), true
}

// Unassigned lists required roles that have no volunteer yet.
func (e Event) Unassigned() []Role {
	var open []Role
	for _, r := range e.Roles {
		if _, ok := e.Assignments[r]; !ok {
			open = append(open, r)
		}
	}
	return open
}

// LocationLink renders the location with a Google Maps link, or "TBD"
// when the roster left it blank.
func (e Event) LocationLink() string {
	loc := strings.TrimSpace(e.Location)
	if loc == "" {
		return "TBD"
	}
	return fmt.Sprintf("%s (https://maps.google.com/?q=%s)", loc, url.QueryEscape(loc))
}

// EventID derives the snapshot-stable identifier from the fields that
// distinguish an occurrence.
func EventID(date time.Time, t GameTime, location string) string {
	slug := strings.ToLower(strings.TrimSpace(location))
	slug = strings.Join(strings.Fields(slug), "-")
	if slug == "" {
		slug = "tbd"
	}
	return fmt.Sprintf("%s@%s@%s", date.Format("2006-01-02"), t.Key(), slug)
}
