package period

import (
	"fmt"
	"strings"
	"time"
)

// dateLayouts are tried in order; the first that parses wins. Day-month-year
// forms come before month-day-year ones, so "03/04/2024" is 3 April.
var dateLayouts = []string{
	"2006-01-02",
	"02-01-2006",
	"02/01/2006",
	"2/1/2006",
	"01/02/2006",
	"1/2/2006",
	"01-02-2006",
	"2-Jan-2006",
	"02 Jan 2006",
	"2 Jan 2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2006/01/02",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// ParseDate parses a calendar date using the accepted layouts
func ParseDate(text string) (time.Time, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return time.Time{}, fmt.Errorf("%w: empty", ErrMalformedDate)
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			y, m, d := t.Date()
			return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrMalformedDate, text)
}

// FormatDate renders a date in the internal YYYY-MM-DD form
func FormatDate(d time.Time) string {
	return d.Format("2006-01-02")
}
