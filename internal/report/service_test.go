package report

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/dennisdiepolder/champkpi/internal/aggregator"
	"github.com/dennisdiepolder/champkpi/internal/period"
	"github.com/dennisdiepolder/champkpi/internal/scoring"
	"github.com/dennisdiepolder/champkpi/internal/storage"
	"github.com/dennisdiepolder/champkpi/internal/types"
	"github.com/rs/zerolog"
)

func fixtureStore() *storage.MemoryStore {
	store := storage.NewMemoryStore()

	store.Put(types.NewTable(types.TableMonthly,
		[]string{"EMP ID", "NAME", "Month", "Hold", "Wrap KPI Score", "Grand Total", "Target Committed for PKT"},
		[][]string{
			{"1070", "ASHA KUMAR", "March", "120", "4.5", "4.6", "85"},
			{"1070", "ASHA KUMAR", "January", "100", "3", "3.4", ""},
			{"1071", "ravi", "March", "90", "", "", ""},
		}))

	store.Put(types.NewTable(types.TableDaily,
		[]string{"EMP ID", "NAME", "Date", "Week", "Call Count", "AHT"},
		[][]string{
			{"1070", "asha kumar", "2024-03-18", "12", "10", "00:10:00"},
			{"1070", "asha kumar", "2024-03-19", "12", "15", "00:20:00"},
		}))

	store.Put(types.NewTable(types.TableCSAT,
		[]string{"EMP ID", "Week", "CSAT Resolution", "CSAT Behaviour"},
		[][]string{{"1070", "12", "88%", "91%"}}))

	return store
}

func newTestService(store storage.Store) *Service {
	logger := zerolog.New(&bytes.Buffer{})
	return NewService(store, aggregator.NewAggregator(logger), scoring.NewScorer(scoring.DefaultConfig(), logger), logger)
}

func metricValue(rep *types.Report, metric string) string {
	for _, r := range rep.Performance {
		if r.Metric == metric {
			return r.Value
		}
	}
	return ""
}

func TestLookupMonth(t *testing.T) {
	svc := newTestService(fixtureStore())

	rep, err := svc.Lookup(context.Background(), Query{EmployeeID: "1070", Kind: "Month", Selector: "March"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !rep.Found {
		t.Fatal("expected report to be found")
	}
	if rep.EmployeeName != "Asha Kumar" {
		t.Errorf("expected title-cased name, got %q", rep.EmployeeName)
	}
	if rep.ID == "" {
		t.Error("expected report ID")
	}
	if got := metricValue(rep, types.FieldHold); got != "120" {
		t.Errorf("expected Hold 120, got %q", got)
	}
	if got := metricValue(rep, types.FieldQuality); got != types.NotAvailable {
		t.Errorf("expected missing Quality to be N/A, got %q", got)
	}

	if rep.GrandTotal == nil || rep.GrandTotal.Tier != types.TierOutstanding {
		t.Fatalf("expected outstanding tier, got %+v", rep.GrandTotal)
	}

	if len(rep.Targets) != 3 {
		t.Fatalf("expected 3 target rows, got %d", len(rep.Targets))
	}
	real := 0
	for _, tr := range rep.Targets {
		if tr.Value == types.NotAvailable {
			continue
		}
		real++
		if tr.Label != "PKT" || tr.Value != "85" {
			t.Errorf("unexpected target row %+v", tr)
		}
	}
	if real != 1 {
		t.Errorf("expected exactly one real target row, got %d", real)
	}

	if rep.Delta == nil || rep.Delta.Kind != types.DeltaImproved {
		t.Fatalf("expected improvement over January, got %+v", rep.Delta)
	}
	if rep.Delta.PreviousMonth != "January" || *rep.Delta.Value != 1.2 {
		t.Errorf("unexpected delta %+v (value %v)", rep.Delta, *rep.Delta.Value)
	}

	if len(rep.KPIScores) == 0 {
		t.Fatal("expected KPI scores")
	}
}

func TestLookupFlagsLowMonth(t *testing.T) {
	store := storage.NewMemoryStore()
	store.Put(types.NewTable(types.TableMonthly,
		[]string{"EMP ID", "Month", "Wrap", "PKT", "Grand Total", "Target Committed for PKT"},
		[][]string{
			{"2001", "Feb", "00:04:00", "90", "4.0", "85"},
			{"2001", "Mar", "00:07:30", "70", "2.2", "85"},
		}))
	svc := newTestService(store)

	rep, err := svc.Lookup(context.Background(), Query{EmployeeID: "2001", Kind: "Month", Selector: "Mar"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := map[string]bool{}
	for _, a := range rep.Alerts {
		got[a.Rule] = true
	}
	for _, rule := range []string{"wrap_long", "target_missed", "tier_low", "score_dropped"} {
		if !got[rule] {
			t.Errorf("expected %s alert, got %+v", rule, rep.Alerts)
		}
	}
	if rep.Delta.PreviousMonth != "Feb" {
		t.Errorf("expected abbreviated previous month, got %q", rep.Delta.PreviousMonth)
	}
}

func TestLookupMonthWithoutPreviousMonth(t *testing.T) {
	svc := newTestService(fixtureStore())

	rep, err := svc.Lookup(context.Background(), Query{EmployeeID: "1071", Kind: "month", Selector: "March"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rep.Delta.Kind != types.DeltaNoComparison {
		t.Errorf("expected no comparison, got %s", rep.Delta.Kind)
	}
	if rep.GrandTotal.Tier != types.TierUnknown {
		t.Errorf("expected unknown tier without Grand Total, got %s", rep.GrandTotal.Tier)
	}
}

func TestLookupWeek(t *testing.T) {
	svc := newTestService(fixtureStore())

	rep, err := svc.Lookup(context.Background(), Query{EmployeeID: "1070", Kind: "Week", Selector: "12.0"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !rep.Found || rep.Period != "12" {
		t.Fatalf("expected week 12 report, got %+v", rep)
	}

	want := map[string]string{
		types.FieldCallCount:      "25",
		types.FieldAHT:            "00:15:00",
		types.FieldHold:           types.NotAvailable,
		types.FieldCSATResolution: "88%",
	}
	for metric, value := range want {
		if got := metricValue(rep, metric); got != value {
			t.Errorf("%s: expected %q, got %q", metric, value, got)
		}
	}

	if rep.KPIScores != nil || rep.GrandTotal != nil || rep.Delta != nil || rep.Targets != nil {
		t.Error("expected week report without scores, delta or targets")
	}
}

func TestLookupDay(t *testing.T) {
	svc := newTestService(fixtureStore())

	rep, err := svc.Lookup(context.Background(), Query{EmployeeID: "1070", Kind: "Day", Selector: "19/03/2024"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !rep.Found || rep.Period != "2024-03-19" {
		t.Fatalf("expected day report, got %+v", rep)
	}
	if got := metricValue(rep, types.FieldCSATBehaviour); got != "91%" {
		t.Errorf("expected CSAT joined from the weekly score, got %q", got)
	}
}

func TestLookupNoData(t *testing.T) {
	svc := newTestService(fixtureStore())

	tests := []struct {
		name  string
		query Query
	}{
		{"unknown employee", Query{EmployeeID: "9999", Kind: "Month", Selector: "March"}},
		{"unknown month", Query{EmployeeID: "1070", Kind: "Month", Selector: "Smarch"}},
		{"malformed date", Query{EmployeeID: "1070", Kind: "Day", Selector: "yesterday"}},
		{"empty week", Query{EmployeeID: "1070", Kind: "Week", Selector: "40"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rep, err := svc.Lookup(context.Background(), tt.query)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if rep.Found {
				t.Fatal("expected no data")
			}
			if rep.Message == "" {
				t.Error("expected a no data message")
			}
			if rep.GrandTotal != nil || rep.KPIScores != nil {
				t.Error("expected no scoring for a report without data")
			}
		})
	}
}

func TestLookupBlankSelectorReportsNoData(t *testing.T) {
	store := storage.NewMemoryStore()
	store.Put(types.NewTable(types.TableMonthly,
		[]string{"EMP ID", "NAME", "Month", "Grand Total"},
		[][]string{{"1070", "asha", "", "4.6"}}))
	store.Put(types.NewTable(types.TableDaily,
		[]string{"EMP ID", "NAME", "Date", "Week", "Call Count"},
		[][]string{{"1070", "asha", "garbage", "", "10"}}))
	store.Put(types.NewTable(types.TableCSAT,
		[]string{"EMP ID", "Week", "CSAT Resolution", "CSAT Behaviour"}, nil))
	svc := newTestService(store)

	for _, kind := range []string{"Month", "Week", "Day"} {
		t.Run(kind, func(t *testing.T) {
			rep, err := svc.Lookup(context.Background(), Query{EmployeeID: "1070", Kind: kind, Selector: " "})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if rep.Found {
				t.Fatalf("expected no data for a blank selector, got %+v", rep.Performance)
			}
			if rep.Message != "No data found for this EMP ID and "+kind+"." {
				t.Errorf("unexpected message %q", rep.Message)
			}
		})
	}
}

func TestLookupErrors(t *testing.T) {
	svc := newTestService(fixtureStore())

	if _, err := svc.Lookup(context.Background(), Query{EmployeeID: "1070", Kind: "Year", Selector: "2024"}); !errors.Is(err, period.ErrUnknownKind) {
		t.Errorf("expected ErrUnknownKind, got %v", err)
	}
	if _, err := svc.Lookup(context.Background(), Query{EmployeeID: "  ", Kind: "Month"}); !errors.Is(err, ErrInvalidQuery) {
		t.Errorf("expected ErrInvalidQuery, got %v", err)
	}

	empty := newTestService(storage.NewMemoryStore())
	if _, err := empty.Lookup(context.Background(), Query{EmployeeID: "1070", Kind: "Month", Selector: "March"}); !errors.Is(err, storage.ErrSourceUnavailable) {
		t.Errorf("expected ErrSourceUnavailable, got %v", err)
	}
}

func TestPeriods(t *testing.T) {
	svc := newTestService(fixtureStore())

	months, err := svc.Periods(context.Background(), "Month", "1070")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(months) != 2 || months[0] != "January" || months[1] != "March" {
		t.Errorf("unexpected months %v", months)
	}

	days, err := svc.Periods(context.Background(), "Day", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(days) != 2 || days[0] != "2024-03-18" {
		t.Errorf("unexpected days %v", days)
	}

	weeks, err := svc.Periods(context.Background(), "Week", "9999")
	if err != nil || weeks == nil || len(weeks) != 0 {
		t.Errorf("expected empty non-nil weeks, got %v (%v)", weeks, err)
	}

	if _, err := svc.Periods(context.Background(), "Quarter", ""); !errors.Is(err, period.ErrUnknownKind) {
		t.Errorf("expected ErrUnknownKind, got %v", err)
	}
}
