package aggregator

import (
	"sort"
	"time"

	"github.com/dennisdiepolder/champkpi/internal/period"
	"github.com/dennisdiepolder/champkpi/internal/types"
)

// Periods lists the distinct selectors of kind present in t, ordered for a
// dropdown. An empty employeeID lists the periods of every employee.
func Periods(t *types.Table, kind period.Kind, employeeID string) []string {
	if t == nil {
		return nil
	}
	employeeID = NormalizeEmployeeID(employeeID)

	seen := make(map[string]bool)
	var labels []string
	var dates []time.Time

	for _, row := range t.Rows {
		if employeeID != "" && NormalizeEmployeeID(row.Get(types.FieldEmployeeID)) != employeeID {
			continue
		}

		var label string
		switch kind {
		case period.Month:
			label = row.Get(types.FieldMonth)
		case period.Week:
			label = rowWeek(row)
		case period.Day:
			d, err := period.ParseDate(row.Get(types.FieldDate))
			if err != nil {
				continue
			}
			label = period.FormatDate(d)
			if !seen[label] {
				dates = append(dates, d)
			}
		}
		if label == "" || seen[label] {
			continue
		}
		seen[label] = true
		labels = append(labels, label)
	}

	switch kind {
	case period.Month:
		return period.SortMonths(labels)
	case period.Week:
		return period.SortWeeks(labels)
	case period.Day:
		sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
		out := make([]string, len(dates))
		for i, d := range dates {
			out[i] = period.FormatDate(d)
		}
		return out
	}
	return nil
}
