package period

import (
	"sort"
	"strconv"
	"strings"
	"time"
)

// NormalizeWeek trims a week label and drops the fractional part of integral
// numbers, so "12", " 12 " and "12.0" all name the same week.
func NormalizeWeek(label string) string {
	label = strings.TrimSpace(label)
	if f, err := strconv.ParseFloat(label, 64); err == nil && f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10)
	}
	return label
}

// WeekOfDate returns the ISO week number of d as a label
func WeekOfDate(d time.Time) string {
	_, w := d.ISOWeek()
	return strconv.Itoa(w)
}

// CompareWeeks orders two labels numerically when both are numbers and
// lexically otherwise. It returns -1, 0 or 1.
func CompareWeeks(a, b string) int {
	a, b = NormalizeWeek(a), NormalizeWeek(b)
	fa, errA := strconv.ParseFloat(a, 64)
	fb, errB := strconv.ParseFloat(b, 64)
	if errA == nil && errB == nil {
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		}
		return 0
	}
	return strings.Compare(a, b)
}

// SortWeeks returns the distinct normalized labels in CompareWeeks order
func SortWeeks(labels []string) []string {
	seen := make(map[string]bool)
	out := make([]string, 0, len(labels))
	for _, l := range labels {
		l = NormalizeWeek(l)
		if l == "" || seen[l] {
			continue
		}
		seen[l] = true
		out = append(out, l)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return CompareWeeks(out[i], out[j]) < 0
	})
	return out
}
