package report

import (
	"github.com/dennisdiepolder/champkpi/internal/period"
	"github.com/dennisdiepolder/champkpi/internal/types"
)

// Units of the performance table
const (
	UnitDuration = "hh:mm:ss"
	UnitPercent  = "%"
	UnitCount    = "count"
	UnitCalls    = "calls"
	UnitDays     = "days"
)

type metricSpec struct {
	field       string
	description string
	unit        string
}

var monthlyMetrics = []metricSpec{
	{types.FieldHold, "Average time callers spent on hold", UnitDuration},
	{types.FieldWrap, "Average after-call work time", UnitDuration},
	{types.FieldAutoOn, "Share of logged-in time in auto-on state", UnitPercent},
	{types.FieldScheduleAdherence, "Adherence to the published schedule", UnitPercent},
	{types.FieldResolutionCSAT, "Customer satisfaction with the resolution", UnitPercent},
	{types.FieldAgentBehaviour, "Customer satisfaction with the agent", UnitPercent},
	{types.FieldQuality, "Quality audit score", UnitPercent},
	{types.FieldPKT, "Product knowledge test score", UnitPercent},
	{types.FieldSLUPL, "Sick leave and unplanned leave taken", UnitDays},
	{types.FieldLogins, "Logins during the month", UnitCount},
}

var dailyMetrics = []metricSpec{
	{types.FieldCallCount, "Calls handled", UnitCalls},
	{types.FieldAHT, "Average handle time", UnitDuration},
	{types.FieldHold, "Average time callers spent on hold", UnitDuration},
	{types.FieldWrap, "Average after-call work time", UnitDuration},
	{types.FieldCSATResolution, "Customer satisfaction with the resolution", UnitPercent},
	{types.FieldCSATBehaviour, "Customer satisfaction with the agent", UnitPercent},
}

// targets are the committed goals shown under a monthly report, in order
var targets = []struct {
	label string
	field string
}{
	{types.FieldPKT, types.FieldTargetPKT},
	{"CSAT", types.FieldTargetCSAT},
	{types.FieldQuality, types.FieldTargetQuality},
}

func metricsFor(kind period.Kind) []metricSpec {
	if kind == period.Month {
		return monthlyMetrics
	}
	return dailyMetrics
}

// performance renders the summary row as the performance table. Blank
// values are reported as N/A.
func performance(kind period.Kind, row types.Row) []types.MetricRow {
	specs := metricsFor(kind)
	out := make([]types.MetricRow, 0, len(specs))
	for _, m := range specs {
		r := types.MetricRow{
			Description: m.description,
			Metric:      m.field,
			Value:       types.NotAvailable,
			Unit:        m.unit,
		}
		if v := row.Get(m.field); v != "" {
			r.Value = v
			r.Available = true
		}
		out = append(out, r)
	}
	return out
}

// targetRows always returns the three committed targets
func targetRows(row types.Row) []types.TargetRow {
	out := make([]types.TargetRow, 0, len(targets))
	for _, t := range targets {
		v := row.Get(t.field)
		if v == "" {
			v = types.NotAvailable
		}
		out = append(out, types.TargetRow{Label: t.label, Value: v})
	}
	return out
}
