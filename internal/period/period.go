// Package period resolves Day, Week and Month selectors and orders periods.
package period

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Kind is the view a query is made for
type Kind string

const (
	Day   Kind = "Day"
	Week  Kind = "Week"
	Month Kind = "Month"
)

var (
	// ErrUnknownKind is returned for period kinds other than Day, Week and Month
	ErrUnknownKind = errors.New("unknown period kind")
	// ErrMalformedDate is returned when no accepted layout parses a date
	ErrMalformedDate = errors.New("malformed date")
	// ErrBlankSelector is returned for an empty Month or Week selector
	ErrBlankSelector = errors.New("blank period selector")
)

// ParseKind accepts "Day", "Week" or "Month" in any case
func ParseKind(raw string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "day":
		return Day, nil
	case "week":
		return Week, nil
	case "month":
		return Month, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, raw)
}

// Selector is a normalized period within a kind
type Selector struct {
	Kind  Kind      `json:"kind"`
	Raw   string    `json:"raw"`
	Value string    `json:"value"`
	Date  time.Time `json:"-"` // Day only
	Rank  int       `json:"-"` // Month only; 0 when the name is not a month
}

// Resolve normalizes a raw selector for the given kind. Day selectors that
// cannot be parsed return ErrMalformedDate and blank Month or Week selectors
// return ErrBlankSelector; callers treat both as "no data".
func Resolve(kind Kind, raw string) (Selector, error) {
	raw = strings.TrimSpace(raw)
	sel := Selector{Kind: kind, Raw: raw}

	switch kind {
	case Month:
		if raw == "" {
			return sel, ErrBlankSelector
		}
		sel.Value = raw
		sel.Rank, _ = MonthRank(raw)
	case Week:
		sel.Value = NormalizeWeek(raw)
		if sel.Value == "" {
			return sel, ErrBlankSelector
		}
	case Day:
		d, err := ParseDate(raw)
		if err != nil {
			return sel, err
		}
		sel.Date = d
		sel.Value = FormatDate(d)
	default:
		return sel, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return sel, nil
}

// String renders the selector for logs and report headers
func (s Selector) String() string {
	if s.Value != "" {
		return s.Value
	}
	return s.Raw
}
