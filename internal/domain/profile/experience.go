package profile

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// dateRange matches "Mar 2021 – Sep 2022", "Feb 2025 - Present",
// "2018 – 2020" and "2019 to now".
var dateRange = regexp.MustCompile(`(?i)\b(?:(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?\s+)?((?:19|20)\d{2})\s*(?:–|—|-|to)\s*(?:(present|current|now)|(?:(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?\s+)?((?:19|20)\d{2}))\b`)

var monthIndex = map[string]int{
	"jan": 1, "feb": 2, "mar": 3, "apr": 4, "may": 5, "jun": 6,
	"jul": 7, "aug": 8, "sep": 9, "oct": 10, "nov": 11, "dec": 12,
}

// experienceYears sums the months covered by employment date ranges. Ends in
// the future are capped at now, inverted ranges are skipped. Nil when no
// range is present.
func experienceYears(text string, now time.Time) *float64 {
	matches := dateRange.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}
	nowMonths := now.Year()*12 + int(now.Month()) - 1

	total := 0
	for _, m := range matches {
		start, ok := monthsOf(m[1], m[2])
		if !ok || start > nowMonths {
			continue
		}
		end := nowMonths
		if m[3] == "" {
			if end, ok = monthsOf(m[4], m[5]); !ok {
				continue
			}
			if end > nowMonths {
				end = nowMonths
			}
		}
		if start > end {
			continue
		}
		total += end - start
	}
	years := math.Round(float64(total)/12*10) / 10
	return &years
}

// monthsOf converts a (month, year) pair to months since year zero. A
// missing month counts as January.
func monthsOf(month, year string) (int, bool) {
	y, err := strconv.Atoi(year)
	if err != nil {
		return 0, false
	}
	mi := 1
	if month != "" {
		mi = monthIndex[strings.ToLower(month)[:3]]
	}
	return y*12 + mi - 1, true
}
