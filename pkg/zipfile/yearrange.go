package zipfile

import (
	"strconv"
	"strings"
)

// ParseYearRanges expands a compact year-range string like
// "1949, 1951-1954, 1956-" into its year list. A closed range expands
// inclusively; an open-ended range contributes only its start year.
// Malformed items are skipped.
func ParseYearRanges(s string) []int {
	if s == "" {
		return nil
	}
	var years []int
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		switch {
		case item == "":
			continue
		case strings.Contains(item, "-"):
			from, to, _ := strings.Cut(item, "-")
			start, ok := parseYear(from)
			if !ok {
				continue
			}
			if strings.TrimSpace(to) == "" {
				// Open-ended range.
				years = append(years, start)
				continue
			}
			end, ok := parseYear(to)
			if !ok || end < start {
				continue
			}
			for y := start; y <= end; y++ {
				years = append(years, y)
			}
		default:
			if y, ok := parseYear(item); ok {
				years = append(years, y)
			}
		}
	}
	return years
}

// parseYear accepts exactly 4 ASCII digits.
func parseYear(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if len(s) != 4 {
		return 0, false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
	}
	y, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return y, true
}
