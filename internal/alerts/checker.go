package alerts

import (
	"fmt"
	"math"
	"time"

	"github.com/dennisdiepolder/champkpi/internal/aggregator"
	"github.com/dennisdiepolder/champkpi/internal/scoring"
	"github.com/dennisdiepolder/champkpi/internal/types"
)

// WrapThreshold is the average after-call work time above which a report is flagged
const WrapThreshold = 5 * time.Minute

// targetMetrics maps each committed target onto the metric it is measured by
var targetMetrics = map[string]string{
	types.FieldPKT:     types.FieldPKT,
	"CSAT":             types.FieldResolutionCSAT,
	types.FieldQuality: types.FieldQuality,
}

// CheckReportAlerts evaluates alert rules for a report, replacing its Alerts
// field. Reports without data never carry alerts.
func CheckReportAlerts(rep *types.Report) {
	rep.Alerts = nil
	if !rep.Found {
		return
	}

	values := make(map[string]string, len(rep.Performance))
	for _, m := range rep.Performance {
		if m.Available {
			values[m.Metric] = m.Value
		}
	}

	if v, ok := values[types.FieldWrap]; ok {
		if secs, err := aggregator.ParseDuration(v); err == nil {
			dur := time.Duration(secs * float64(time.Second))
			if dur > WrapThreshold {
				rep.Alerts = append(rep.Alerts, types.Alert{
					Rule:     "wrap_long",
					Severity: types.SeverityWarning,
					Message:  fmt.Sprintf("Wrap averages %s", formatDuration(dur)),
				})
			}
		}
	}

	for _, t := range rep.Targets {
		target, ok := scoring.ParseScore(t.Value)
		if !ok {
			continue
		}
		actual, ok := scoring.ParseScore(values[targetMetrics[t.Label]])
		if !ok || actual >= target {
			continue
		}
		rep.Alerts = append(rep.Alerts, types.Alert{
			Rule:     "target_missed",
			Severity: types.SeverityWarning,
			Message:  fmt.Sprintf("%s at %s, committed %s", t.Label, formatNumber(actual), formatNumber(target)),
		})
	}

	if rep.GrandTotal != nil && rep.GrandTotal.Tier == types.TierNeedsImprovement {
		rep.Alerts = append(rep.Alerts, types.Alert{
			Rule:     "tier_low",
			Severity: types.SeverityCritical,
			Message:  fmt.Sprintf("Grand Total %s of %d", formatNumber(*rep.GrandTotal.Value), rep.GrandTotal.Scale),
		})
	}

	if rep.Delta != nil && rep.Delta.Kind == types.DeltaDropped && rep.GrandTotal != nil {
		drop := math.Abs(*rep.Delta.Value)
		if drop >= float64(rep.GrandTotal.Scale)/10 {
			rep.Alerts = append(rep.Alerts, types.Alert{
				Rule:     "score_dropped",
				Severity: types.SeverityCritical,
				Message:  fmt.Sprintf("Grand Total down %s since %s", formatNumber(drop), rep.Delta.PreviousMonth),
			})
		}
	}
}

func formatDuration(d time.Duration) string {
	mins := int(d.Minutes())
	secs := int(d.Seconds()) % 60
	if mins >= 60 {
		hours := mins / 60
		mins = mins % 60
		return fmt.Sprintf("%dh%dm", hours, mins)
	}
	return fmt.Sprintf("%dm%ds", mins, secs)
}

func formatNumber(v float64) string {
	return fmt.Sprintf("%g", scoring.Round2(v))
}
