package models

import (
	"fmt"
	"strings"
)

// Matchup renders a friendly "X vs Y" line from the event summary,
// marking the configured team's side when it can be identified. Falls
// back through venue and raw summary when the summary has no matchup.
func (e Event) Matchup(teamName string) string {
	if home, opponent, ok := parseMatchup(e.Summary); ok {
		teamLower := strings.ToLower(teamName)
		homeLower := strings.ToLower(home)
		oppLower := strings.ToLower(opponent)
		switch {
		case teamLower != "" && (strings.Contains(homeLower, teamLower) || strings.Contains(teamLower, homeLower)):
			return fmt.Sprintf("%s (Home) vs %s", home, opponent)
		case teamLower != "" && (strings.Contains(oppLower, teamLower) || strings.Contains(teamLower, oppLower)):
			return fmt.Sprintf("%s vs %s (Home)", home, opponent)
		default:
			return fmt.Sprintf("%s vs %s", home, opponent)
		}
	}
	if teamName != "" && e.Venue != VenueUnknown {
		return fmt.Sprintf("%s Game (%s)", teamName, e.Venue)
	}
	if e.Summary != "" {
		return e.Summary
	}
	if e.Time.Known && e.Location != "" {
		return fmt.Sprintf("%s at %s", e.Time, e.Location)
	}
	return "Game"
}

// parseMatchup understands the scheduling feed's summary encoding:
// "Vs <Opponent> - <Field> (<HomeTeam> - <Coach>)". A plain
// "<Team1> vs <Team2>" is accepted as a fallback.
func parseMatchup(summary string) (home, opponent string, ok bool) {
	s := strings.TrimSpace(summary)
	lower := strings.ToLower(s)

	if strings.HasPrefix(lower, "vs ") {
		dash := strings.Index(s, " - ")
		if dash > 3 {
			opponent = strings.TrimSpace(s[3:dash])
			open := strings.Index(s, "(")
			closed := strings.Index(s, ")")
			if open >= 0 && closed > open {
				inner := s[open+1 : closed]
				if innerDash := strings.Index(inner, " - "); innerDash >= 0 {
					home = strings.TrimSpace(inner[:innerDash])
					if home != "" && opponent != "" {
						return home, opponent, true
					}
				}
			}
		}
	}

	if idx := strings.Index(lower, " vs "); idx >= 0 {
		home = cleanTeamName(s[:idx])
		opponent = cleanTeamName(s[idx+4:])
		if home != "" && opponent != "" {
			return home, opponent, true
		}
	}

	return "", "", false
}

func cleanTeamName(text string) string {
	text = strings.TrimSpace(text)
	if dash := strings.LastIndex(text, "-"); dash >= 0 {
		if after := strings.TrimSpace(text[dash+1:]); after != "" {
			text = after
		}
	}
	if paren := strings.Index(text, "("); paren >= 0 {
		text = text[:paren]
	}
	return strings.TrimSpace(text)
}
