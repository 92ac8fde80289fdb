package models

import (
	"strings"
	"testing"
	"time"
)

func TestParseGameTime(t *testing.T) {
	cases := []struct {
		raw    string
		known  bool
		hour   int
		minute int
	}{
		{"6:00 PM", true, 18, 0},
		{"6:00PM", true, 18, 0},
		{"10:15 AM", true, 10, 15},
		{"18:30", true, 18, 30},
		{"18:30:00", true, 18, 30},
		{"TBD", false, 0, 0},
		{"tbd", false, 0, 0},
		{"", false, 0, 0},
		{"noonish", false, 0, 0},
	}
	for _, tc := range cases {
		got := ParseGameTime(tc.raw)
		if got.Known != tc.known {
			t.Fatalf("ParseGameTime(%q).Known = %v, want %v", tc.raw, got.Known, tc.known)
		}
		if tc.known && (got.Hour != tc.hour || got.Minute != tc.minute) {
			t.Fatalf("ParseGameTime(%q) = %02d:%02d, want %02d:%02d",
				tc.raw, got.Hour, got.Minute, tc.hour, tc.minute)
		}
	}
}

func TestGameTimeString(t *testing.T) {
	if got := ParseGameTime("TBD").String(); got != "TBD" {
		t.Fatalf("TBD String = %q", got)
	}
	if got := ParseGameTime("6:00 PM").String(); got != "6:00 PM" {
		t.Fatalf("raw-preserving String = %q", got)
	}
}

func TestGameTimeOrdering(t *testing.T) {
	early := ParseGameTime("9:00 AM")
	late := ParseGameTime("6:00 PM")
	tbd := ParseGameTime("TBD")

	if !early.Before(late) || late.Before(early) {
		t.Fatalf("concrete ordering broken")
	}
	if !late.Before(tbd) {
		t.Fatalf("concrete times must order before TBD")
	}
	if tbd.Before(early) {
		t.Fatalf("TBD must never order before a concrete time")
	}
}

func TestRequiredRolesVenueDeterminism(t *testing.T) {
	for _, v := range []Venue{VenueUnknown, VenueHome, VenueAway} {
		roles := RequiredRoles(v)
		hasScoreboard := false
		for _, r := range roles {
			if r == RoleScoreboard {
				hasScoreboard = true
			}
		}
		if v == VenueAway && !hasScoreboard {
			t.Fatalf("away games require the scoreboard role")
		}
		if v != VenueAway && hasScoreboard {
			t.Fatalf("%v games must not require the scoreboard role", v)
		}
	}
}

func TestEventStartAtTBD(t *testing.T) {
	ev := Event{
		Date: time.Date(2026, 4, 12, 0, 0, 0, 0, time.Local),
		Time: GameTime{},
	}
	if _, ok := ev.StartAt(); ok {
		t.Fatalf("TBD event must not resolve a start time")
	}

	ev.Time = GameTime{Known: true, Hour: 17, Minute: 30}
	start, ok := ev.StartAt()
	if !ok || start.Hour() != 17 || start.Minute() != 30 {
		t.Fatalf("StartAt = %v, %v", start, ok)
	}
}

func TestMatchupStructuredSummary(t *testing.T) {
	ev := Event{Summary: "Vs Cardinals - Miller Field (Pirates - Smith)"}
	got := ev.Matchup("Pirates")
	if !strings.Contains(got, "Pirates (Home)") || !strings.Contains(got, "Cardinals") {
		t.Fatalf("Matchup = %q", got)
	}
}

func TestMatchupPlainVs(t *testing.T) {
	ev := Event{Summary: "Cubs vs Pirates"}
	got := ev.Matchup("Pirates")
	if !strings.Contains(got, "Cubs") || !strings.Contains(got, "Pirates (Home)") {
		t.Fatalf("Matchup = %q", got)
	}
}

func TestMatchupFallbacks(t *testing.T) {
	ev := Event{Venue: VenueAway}
	if got := ev.Matchup("Pirates"); got != "Pirates Game (Away)" {
		t.Fatalf("venue fallback = %q", got)
	}

	ev = Event{Summary: "Practice at the cages"}
	if got := ev.Matchup("Pirates"); got != "Practice at the cages" {
		t.Fatalf("raw summary fallback = %q", got)
	}

	ev = Event{}
	if got := ev.Matchup(""); got != "Game" {
		t.Fatalf("empty fallback = %q", got)
	}
}

func TestLocationLink(t *testing.T) {
	ev := Event{Location: "Miller Field"}
	got := ev.LocationLink()
	if !strings.Contains(got, "Miller Field") || !strings.Contains(got, "maps.google.com/?q=Miller+Field") {
		t.Fatalf("LocationLink = %q", got)
	}
	if got := (Event{}).LocationLink(); got != "TBD" {
		t.Fatalf("blank location link = %q", got)
	}
}

func TestEventIDStable(t *testing.T) {
	date := time.Date(2026, 4, 12, 0, 0, 0, 0, time.Local)
	a := EventID(date, GameTime{Known: true, Hour: 17, Minute: 30}, "Miller Field")
	b := EventID(date, GameTime{Known: true, Hour: 17, Minute: 30}, "miller  field")
	if a != b {
		t.Fatalf("equivalent inputs produced different IDs: %q vs %q", a, b)
	}
	if a != "2026-04-12@1730@miller-field" {
		t.Fatalf("unexpected ID form: %q", a)
	}
}

func TestMentionedUserID(t *testing.T) {
	m := Inbound{Attachments: []Attachment{
		{Type: "image"},
		{Type: "mentions", UserIDs: []string{"42", "43"}},
	}}
	if got := m.MentionedUserID(); got != "42" {
		t.Fatalf("MentionedUserID = %q", got)
	}
	if got := (Inbound{}).MentionedUserID(); got != "" {
		t.Fatalf("no mentions should return empty, got %q", got)
	}
}
