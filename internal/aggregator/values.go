package aggregator

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// NormalizeEmployeeID trims an ID and undoes the ".0" suffix a numeric
// spreadsheet cell picks up on export. Leading zeros are kept.
func NormalizeEmployeeID(id string) string {
	id = strings.TrimSpace(id)
	if whole, ok := strings.CutSuffix(id, ".0"); ok && whole != "" && isDigits(whole) {
		return whole
	}
	return id
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// ParseCount parses a call count. Thousands separators are tolerated.
func ParseCount(value string) (float64, error) {
	value = strings.ReplaceAll(strings.TrimSpace(value), ",", "")
	n, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, err
	}
	if n < 0 || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, fmt.Errorf("invalid count %q", value)
	}
	return n, nil
}

// ParseDuration converts "HH:MM:SS", "MM:SS" or a bare number of seconds
// into seconds.
func ParseDuration(value string) (float64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("empty duration")
	}

	parts := strings.Split(value, ":")
	if len(parts) > 3 {
		return 0, fmt.Errorf("invalid duration %q", value)
	}

	total := 0.0
	for i, p := range parts {
		p = strings.TrimSpace(p)
		if strings.HasPrefix(p, "-") || strings.HasPrefix(p, "+") {
			return 0, fmt.Errorf("invalid duration %q", value)
		}
		n, err := strconv.ParseFloat(p, 64)
		if err != nil || n < 0 || math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, fmt.Errorf("invalid duration %q", value)
		}
		// minutes and seconds must stay below 60 once a larger unit is present
		if i > 0 && n >= 60 {
			return 0, fmt.Errorf("invalid duration %q", value)
		}
		total = total*60 + n
	}
	return total, nil
}

// FormatDuration renders whole seconds as HH:MM:SS
func FormatDuration(seconds float64) string {
	s := int64(math.Round(seconds))
	return fmt.Sprintf("%02d:%02d:%02d", s/3600, (s%3600)/60, s%60)
}

// formatCount renders integral sums without a fractional part
func formatCount(n float64) string {
	if n == math.Trunc(n) {
		return strconv.FormatInt(int64(n), 10)
	}
	return strconv.FormatFloat(n, 'f', -1, 64)
}
