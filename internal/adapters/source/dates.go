package source

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

type nowFunc func() time.Time

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02/01/2006",
	"02-01-2006",
	"02.01.2006",
	time.RFC1123Z,
	time.RFC1123,
}

var relativeAge = regexp.MustCompile(`(\d+)\s*\+?\s*(minute|min|hour|hr|h|day|d|dni|dzie|week|w|tyg|month|mies)[a-ząęńó]*\.?\s*(?:ago|temu)`)

var ageUnits = map[string]time.Duration{
	"minute": time.Minute,
	"min":    time.Minute,
	"hour":   time.Hour,
	"hr":     time.Hour,
	"h":      time.Hour,
	"day":    24 * time.Hour,
	"d":      24 * time.Hour,
	"dni":    24 * time.Hour,
	"dzie":   24 * time.Hour,
	"week":   7 * 24 * time.Hour,
	"w":      7 * 24 * time.Hour,
	"tyg":    7 * 24 * time.Hour,
	"month":  30 * 24 * time.Hour,
	"mies":   30 * 24 * time.Hour,
}

// ParsePostedDate reads absolute dates and relative phrases such as
// "3 days ago", "30+ days ago" or "yesterday". It returns nil when the text
// is empty or not understood.
func ParsePostedDate(raw string, now time.Time) *time.Time {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}

	lower := strings.ToLower(s)
	switch {
	case strings.Contains(lower, "just now"), strings.Contains(lower, "just posted"),
		strings.Contains(lower, "today"), strings.Contains(lower, "dzisiaj"), strings.Contains(lower, "dziś"):
		return &now
	case strings.Contains(lower, "yesterday"), strings.Contains(lower, "wczoraj"):
		t := now.Add(-24 * time.Hour)
		return &t
	}

	if m := relativeAge.FindStringSubmatch(lower); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return nil
		}
		unit, ok := ageUnits[m[2]]
		if !ok {
			return nil
		}
		t := now.Add(-time.Duration(n) * unit)
		return &t
	}
	return nil
}
