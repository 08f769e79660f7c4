package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/dennisdiepolder/champkpi/internal/types"
)

func TestWritePDF(t *testing.T) {
	total, delta, score := 4.6, 0.4, 4.5

	tests := []struct {
		name string
		rep  *types.Report
	}{
		{
			name: "monthly report",
			rep: &types.Report{
				EmployeeID:   "1070",
				EmployeeName: "Asha Kumar",
				PeriodKind:   "Month",
				Period:       "March",
				Found:        true,
				Performance: []types.MetricRow{
					{Description: "Average time callers spent on hold", Metric: "Hold", Value: "00:02:00", Unit: "hh:mm:ss", Available: true},
					{Description: "Quality audit score", Metric: "Quality", Value: "N/A", Unit: "%"},
				},
				KPIScores:   []types.ScoreRow{{Weight: 10, Metric: "Wrap", Score: &score}, {Weight: 20, Metric: "Quality"}},
				GrandTotal:  &types.GrandTotal{Value: &total, Scale: 5, Tier: types.TierOutstanding, Message: "Outstanding"},
				Delta:       &types.Delta{Kind: types.DeltaImproved, Value: &delta, PreviousMonth: "February", Message: "Up"},
				Targets:     []types.TargetRow{{Label: "PKT", Value: "85"}, {Label: "CSAT", Value: "N/A"}, {Label: "Quality", Value: "N/A"}},
				GeneratedAt: time.Date(2024, 4, 1, 8, 0, 0, 0, time.UTC),
			},
		},
		{
			name: "no data",
			rep: &types.Report{
				EmployeeID: "9999",
				PeriodKind: "Day",
				Period:     "2024-03-18",
				Message:    "No data found for this EMP ID and Day.",
			},
		},
		{
			name: "accented name",
			rep: &types.Report{
				EmployeeID:   "1072",
				EmployeeName: "Zoë Müller",
				PeriodKind:   "Week",
				Period:       "12",
				Found:        true,
				Performance:  []types.MetricRow{{Description: "Calls handled", Metric: "Call Count", Value: "25", Unit: "calls", Available: true}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := WritePDF(&buf, tt.rep); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
				t.Errorf("expected PDF header, got %q", buf.Bytes()[:min(8, buf.Len())])
			}
		})
	}
}
