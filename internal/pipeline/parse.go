package pipeline

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/civil"
)

// Day-first layouts tried in order. Go's "2" and "1" accept one or two digits,
// so "2/1/2006" covers both "01/04/2025" and "1/4/2025".
var dayFirstLayouts = []string{
	"2/1/2006",
	"2-1-2006",
	"2.1.2006",
	"2/1/06",
	"2-1-06",
	"2.1.06",
	"2006-1-2",
}

var timeOfDayLayouts = []string{"15:04", "15:04:05"}

// ParseDayFirstDate parses a day-first calendar date such as "01/04/2025",
// optionally followed by a time of day ("01/04/2025 14:30"). ISO dates
// ("2025-04-01") are accepted as well. The time part is discarded.
func ParseDayFirstDate(s string) (civil.Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return civil.Date{}, ErrEmptyValue
	}

	datePart := s
	if idx := strings.IndexAny(s, " T"); idx > 0 {
		datePart = s[:idx]
		if !isTimeOfDay(strings.TrimSpace(s[idx+1:])) {
			return civil.Date{}, fmt.Errorf("ParseDayFirstDate: unrecognized time in %q", s)
		}
	}

	for _, layout := range dayFirstLayouts {
		t, err := time.Parse(layout, datePart)
		if err == nil {
			return civil.DateOf(t), nil
		}
	}

	return civil.Date{}, fmt.Errorf("ParseDayFirstDate: unrecognized date %q", s)
}

func isTimeOfDay(s string) bool {
	for _, layout := range timeOfDayLayouts {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}

// ParseCommaDecimal parses a number that may use a comma as the decimal
// separator ("1,5" -> 1.5). Every comma is replaced with a dot, so thousands
// separators are not supported.
func ParseCommaDecimal(s string) (float64, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return 0, ErrEmptyValue
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("ParseCommaDecimal: %w", err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("ParseCommaDecimal: %q: %w", s, ErrNotFinite)
	}

	return v, nil
}
