package period

import (
	"sort"
	"strings"
	"time"
)

// MonthRank returns the calendar position (1..12) of a month name. Full names
// and three-letter abbreviations are accepted in any case.
func MonthRank(name string) (int, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if len(name) < 3 {
		return 0, false
	}
	for m := time.January; m <= time.December; m++ {
		full := strings.ToLower(m.String())
		if name == full || name == full[:3] {
			return int(m), true
		}
	}
	return 0, false
}

// SortMonths returns the distinct ranked months in calendar order. Names
// without a rank are dropped since their position is undefined.
func SortMonths(months []string) []string {
	seen := make(map[string]bool)
	out := make([]string, 0, len(months))
	for _, m := range months {
		m = strings.TrimSpace(m)
		if seen[m] {
			continue
		}
		if _, ok := MonthRank(m); !ok {
			continue
		}
		seen[m] = true
		out = append(out, m)
	}
	sort.SliceStable(out, func(i, j int) bool {
		ri, _ := MonthRank(out[i])
		rj, _ := MonthRank(out[j])
		return ri < rj
	})
	return out
}

// PreviousMonth finds the month immediately before selected among the months
// present. It reports false when selected is first or has no rank.
func PreviousMonth(months []string, selected string) (string, bool) {
	rank, ok := MonthRank(selected)
	if !ok {
		return "", false
	}

	var prev string
	prevRank := 0
	for _, m := range SortMonths(months) {
		r, _ := MonthRank(m)
		if r >= rank {
			break
		}
		if r > prevRank {
			prev, prevRank = m, r
		}
	}
	return prev, prevRank > 0
}
