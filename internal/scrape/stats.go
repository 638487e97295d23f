package scrape

import (
	"strconv"
	"strings"
)

// ParseStatCount normalizes a displayed counter value to an integer.
// Abbreviated forms ("12.5K", "3M") and comma grouping ("1,234") are
// accepted; anything unparseable yields 0 rather than an error, so one bad
// counter never sinks an extraction.
func ParseStatCount(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}

	multiplier := 1.0
	switch {
	case strings.HasSuffix(s, "K"), strings.HasSuffix(s, "k"):
		multiplier = 1_000
		s = s[:len(s)-1]
	case strings.HasSuffix(s, "M"), strings.HasSuffix(s, "m"):
		multiplier = 1_000_000
		s = s[:len(s)-1]
	case strings.HasSuffix(s, "B"), strings.HasSuffix(s, "b"):
		multiplier = 1_000_000_000
		s = s[:len(s)-1]
	}

	s = strings.ReplaceAll(s, ",", "")
	n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || n < 0 {
		return 0
	}
	return int(n * multiplier)
}

// ParseStatsLabel converts the stats group aria-label, e.g.
// "3 replies, 12 reposts, 457 likes, 12096 views", into a counter map.
// Malformed segments are dropped silently.
func ParseStatsLabel(label string) map[string]int {
	stats := make(map[string]int)
	for _, part := range strings.Split(label, ",") {
		fields := strings.Fields(strings.TrimSpace(part))
		if len(fields) < 2 {
			continue
		}
		name := strings.ToLower(strings.Join(fields[1:], " "))
		stats[name] = ParseStatCount(fields[0])
	}
	return stats
}
