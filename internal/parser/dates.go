package parser

import (
	"strings"
	"time"
)

var weekdayNames = map[string]time.Weekday{
	"monday":    time.Monday,
	"mon":       time.Monday,
	"tuesday":   time.Tuesday,
	"tues":      time.Tuesday,
	"tue":       time.Tuesday,
	"wednesday": time.Wednesday,
	"wed":       time.Wednesday,
	"thursday":  time.Thursday,
	"thurs":     time.Thursday,
	"thu":       time.Thursday,
	"friday":    time.Friday,
	"fri":       time.Friday,
	"saturday":  time.Saturday,
	"sat":       time.Saturday,
	"sunday":    time.Sunday,
	"sun":       time.Sunday,
}

var explicitLayouts = []string{
	"2006-01-02",
	"1/2/2006",
	"1-2-2006",
	"2006/01/02",
}

// extractDate implements the closed date grammar: today, tomorrow,
// weekday names and their common abbreviations, "next <weekday>",
// "next week", and explicit numeric forms. Returns nil when no phrase
// matches; the grammar never guesses.
func extractDate(text string, now time.Time) *time.Time {
	text = strings.ToLower(text)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	if strings.Contains(text, "today") {
		return &today
	}
	if strings.Contains(text, "tomorrow") {
		d := today.AddDate(0, 0, 1)
		return &d
	}
	if strings.Contains(text, "next week") {
		d := today.AddDate(0, 0, 7)
		return &d
	}

	for _, word := range strings.FieldsFunc(text, func(r rune) bool {
		return r == ' ' || r == ',' || r == '.' || r == '!' || r == '?'
	}) {
		if wd, ok := weekdayNames[word]; ok {
			ahead := int(wd-today.Weekday()+7) % 7
			if ahead == 0 {
				ahead = 7
			}
			if strings.Contains(text, "next "+word) {
				ahead += 7
			}
			d := today.AddDate(0, 0, ahead)
			return &d
		}

		for _, layout := range explicitLayouts {
			if d, err := time.ParseInLocation(layout, word, now.Location()); err == nil {
				return &d
			}
		}
		// M/D without a year resolves against the current year.
		if strings.Count(word, "/") == 1 {
			if d, err := time.ParseInLocation("1/2/2006", word+"/"+today.Format("2006"), now.Location()); err == nil {
				return &d
			}
		}
	}

	return nil
}
