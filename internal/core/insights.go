package core

import (
	"fmt"
	"sort"
	"time"
)

// BuildInsights derives up to two plain-language sentences from the
// monthly totals of a summary, relative to the given reference date.
//
// The first sentence reports the latest month's spend and its per-day
// average. When the latest month is the current one the average divides
// by days elapsed so far; for a closed month it divides by the month's
// full length. The second sentence compares the latest month against
// the one before it and is omitted when the earlier month has no spend,
// since a percent change against zero is meaningless.
func BuildInsights(s Summary, today Date) []string {
	if len(s.ByMonth) == 0 {
		return nil
	}

	months := make([]string, 0, len(s.ByMonth))
	for m := range s.ByMonth {
		months = append(months, m)
	}
	sort.Strings(months)

	last := months[len(months)-1]
	lastSpend := s.ByMonth[last]

	var insights []string

	daysSoFar := daysElapsed(last, today)
	if daysSoFar > 0 {
		avg := lastSpend / float64(daysSoFar)
		insights = append(insights, fmt.Sprintf("Spending in %s: ₹%s (avg ₹%s per day).",
			last, FormatRupeesWhole(lastSpend), FormatRupeesWhole(avg)))
	}

	if len(months) >= 2 {
		prev := months[len(months)-2]
		prevSpend := s.ByMonth[prev]
		if prevSpend > 0 {
			pct := (lastSpend - prevSpend) / prevSpend * 100
			direction := "lower"
			if lastSpend-prevSpend > 0 {
				direction = "higher"
			}
			if pct < 0 {
				pct = -pct
			}
			insights = append(insights, fmt.Sprintf("%s is %.1f%% %s than %s.", last, pct, direction, prev))
		}
	}

	return insights
}

// daysElapsed returns how many days of the month identified by key
// (YYYY-MM) have passed as of today: the day of month when the key is
// the current month, otherwise the month's full length. The length is
// derived from the first day of the following month minus one day, so
// the December to January rollover is handled by time.Date.
func daysElapsed(key string, today Date) int {
	if key == today.MonthKey() {
		return today.Day()
	}
	t, err := time.Parse("2006-01", key)
	if err != nil {
		return 0
	}
	firstOfNext := time.Date(t.Year(), t.Month()+1, 1, 0, 0, 0, 0, time.UTC)
	return firstOfNext.AddDate(0, 0, -1).Day()
}
