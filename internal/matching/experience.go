package matching

import (
	"sort"
	"strings"
	"time"

	"talentmatch/resume-engine/internal/models"
)

// monthInterval is a month-precision employment span. Both ends are
// inclusive: working Jan 2020 through Mar 2020 counts three months.
type monthInterval struct {
	start time.Time
	end   time.Time
}

func (iv monthInterval) months() int {
	return (iv.end.Year()-iv.start.Year())*12 + int(iv.end.Month()) - int(iv.start.Month()) + 1
}

// ComputeExperienceYears sums non-overlapping employment duration in years.
// Intervals are normalized to month precision, sorted by start, and merged
// when an interval starts on or before the running interval's end, so
// overlapping jobs are never double counted. Ongoing entries resolve to now.
func ComputeExperienceYears(entries []models.ExperienceEntry, now time.Time) float64 {
	intervals := make([]monthInterval, 0, len(entries))
	for _, e := range entries {
		start, ok := parseMonth(e.StartDate, now, false)
		if !ok {
			continue
		}
		end, ok := parseMonth(e.EndDate, now, true)
		if !ok || end.Before(start) {
			end = start
		}
		intervals = append(intervals, monthInterval{start: start, end: end})
	}
	if len(intervals) == 0 {
		return 0
	}

	sort.Slice(intervals, func(i, j int) bool {
		return intervals[i].start.Before(intervals[j].start)
	})

	merged := []monthInterval{intervals[0]}
	for _, iv := range intervals[1:] {
		last := &merged[len(merged)-1]
		if !iv.start.After(last.end) {
			if iv.end.After(last.end) {
				last.end = iv.end
			}
			continue
		}
		merged = append(merged, iv)
	}

	totalMonths := 0
	for _, iv := range merged {
		totalMonths += iv.months()
	}
	return float64(totalMonths) / 12
}

var ongoingWords = map[string]bool{
	"present": true, "current": true, "now": true, "ongoing": true, "today": true,
}

var monthLayouts = []string{
	"Jan 2006",
	"January 2006",
	"Jan. 2006",
	"2006-01",
	"01/2006",
	"1/2006",
	"2006/01",
}

// parseMonth normalizes a résumé date string to the first day of its month.
// Year-only dates resolve to January for starts and December for ends.
func parseMonth(s string, now time.Time, isEnd bool) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		if isEnd {
			return monthStart(now), true
		}
		return time.Time{}, false
	}

	lower := strings.ToLower(s)
	if ongoingWords[lower] {
		return monthStart(now), true
	}

	// "Sept" is common enough to need special handling before layout parsing.
	s = strings.Replace(s, "Sept ", "Sep ", 1)
	s = strings.Replace(s, "sept ", "Sep ", 1)

	for _, layout := range monthLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return monthStart(t), true
		}
	}

	// Year only.
	if t, err := time.Parse("2006", s); err == nil {
		if isEnd {
			return time.Date(t.Year(), time.December, 1, 0, 0, 0, 0, time.UTC), true
		}
		return time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, time.UTC), true
	}

	// Full-ish forms like "03 Jan 2020" or "Jan 3, 2020": retry on the
	// month+year tokens.
	fields := strings.Fields(strings.Map(dropPunct, s))
	if len(fields) >= 2 {
		candidate := fields[len(fields)-2] + " " + fields[len(fields)-1]
		if candidate != s {
			return parseMonth(candidate, now, isEnd)
		}
	}

	return time.Time{}, false
}

func dropPunct(r rune) rune {
	if r == ',' || r == '.' {
		return -1
	}
	return r
}

func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
