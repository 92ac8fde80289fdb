package models

import (
	"fmt"
	"strings"
	"time"
)

// GameTime is a start time that is either a concrete clock value or TBD.
// It replaces the old habit of defaulting unparseable times to noon,
// which once caused reminders to fire for games with no published time.
type GameTime struct {
	Known  bool
	Hour   int
	Minute int
	Raw    string
}

var timeLayouts = []string{
	"3:04 PM",
	"3:04PM",
	"15:04",
	"15:04:05",
}

// ParseGameTime accepts the clock formats the roster uses ("6:00 PM",
// "18:30", ...). Anything else, including "TBD" and blank cells, comes
// back as an unknown time carrying the raw text.
func ParseGameTime(raw string) GameTime {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || strings.EqualFold(trimmed, "tbd") {
		return GameTime{Raw: trimmed}
	}
	upper := strings.ToUpper(trimmed)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, upper); err == nil {
			return GameTime{Known: true, Hour: t.Hour(), Minute: t.Minute(), Raw: trimmed}
		}
	}
	return GameTime{Raw: trimmed}
}

func (t GameTime) String() string {
	if !t.Known {
		return "TBD"
	}
	if t.Raw != "" {
		return t.Raw
	}
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// Key is the stable form used inside event IDs and sort ordering.
func (t GameTime) Key() string {
	if !t.Known {
		return "tbd"
	}
	return fmt.Sprintf("%02d%02d", t.Hour, t.Minute)
}

// Before orders concrete times ahead of TBD, and TBD equal to TBD.
func (t GameTime) Before(other GameTime) bool {
	if t.Known != other.Known {
		return t.Known
	}
	if !t.Known {
		return false
	}
	if t.Hour != other.Hour {
		return t.Hour < other.Hour
	}
	return t.Minute < other.Minute
}
