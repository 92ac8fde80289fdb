package schedule

import "dugout/internal/models"

// sourceRank encodes the specificity ordering used by the summary merge
// policy: structured calendar text beats plain sheet text beats nothing.
// Kept as data so the ranking is testable on its own.
var sourceRank = map[models.SummarySource]int{
	models.SummaryNone:     0,
	models.SummarySheet:    1,
	models.SummaryCalendar: 2,
}

// chooseSummary decides which summary an event keeps when a new
// candidate arrives. A summary only ever moves up the ranking; in
// particular, a calendar-sourced summary is never replaced by sheet
// text, which is how the matchup/opponent information once got lost.
func chooseSummary(existing string, existingSrc models.SummarySource,
	candidate string, candidateSrc models.SummarySource) (string, models.SummarySource) {
	if candidate == "" {
		return existing, existingSrc
	}
	if existing == "" || sourceRank[candidateSrc] > sourceRank[existingSrc] {
		return candidate, candidateSrc
	}
	return existing, existingSrc
}
