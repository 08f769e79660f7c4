package aggregator

import (
	"bytes"
	"testing"

	"github.com/dennisdiepolder/champkpi/internal/metrics"
	"github.com/dennisdiepolder/champkpi/internal/period"
	"github.com/dennisdiepolder/champkpi/internal/types"
	"github.com/rs/zerolog"
)

func newTestAggregator(buf *bytes.Buffer) *Aggregator {
	return NewAggregator(zerolog.New(buf))
}

func mustResolve(t *testing.T, kind period.Kind, raw string) period.Selector {
	t.Helper()
	sel, err := period.Resolve(kind, raw)
	if err != nil {
		t.Fatalf("resolve %s %q: %v", kind, raw, err)
	}
	return sel
}

func dailyTable(rows ...[]string) *types.Table {
	header := []string{"EMP ID", "NAME", "Date", "Week", "Call Count", "AHT", "Hold", "Wrap"}
	return types.NewTable(types.TableDaily, header, rows)
}

func csatTable(rows ...[]string) *types.Table {
	header := []string{"EMP ID", "Week", "CSAT Resolution", "CSAT Behaviour"}
	return types.NewTable(types.TableCSAT, header, rows)
}

func TestAggregateMonthNoMatch(t *testing.T) {
	var buf bytes.Buffer
	a := newTestAggregator(&buf)

	monthly := types.NewTable(types.TableMonthly,
		[]string{"EMP ID", "Month", "Grand Total"},
		[][]string{{"1070", "March", "4.6"}},
	)

	for _, id := range []string{"9999", "", "01070"} {
		res := a.Aggregate(Tables{Monthly: monthly}, id, mustResolve(t, period.Month, "March"))
		if res.Found() {
			t.Errorf("expected no match for employee %q", id)
		}
	}
}

func TestAggregateMonthExactMatch(t *testing.T) {
	var buf bytes.Buffer
	a := newTestAggregator(&buf)

	monthly := types.NewTable(types.TableMonthly,
		[]string{" EMP ID ", "Month", "Grand Total "},
		[][]string{
			{"1070", "February", "3.9"},
			{"1070.0", "March", "4.6"},
			{"0042", "March", "2.0"},
		},
	)

	res := a.Aggregate(Tables{Monthly: monthly}, " 1070 ", mustResolve(t, period.Month, "March"))
	if !res.Found() {
		t.Fatal("expected a match")
	}
	if got := res.Summary.Row.Get("Grand Total"); got != "4.6" {
		t.Errorf("expected Grand Total 4.6, got %s", got)
	}

	// leading zeros are part of the ID
	res = a.Aggregate(Tables{Monthly: monthly}, "0042", mustResolve(t, period.Month, "March"))
	if !res.Found() || res.Summary.Row.Get("Grand Total") != "2.0" {
		t.Errorf("expected 0042 to match its own row, got %+v", res.Summary)
	}
	res = a.Aggregate(Tables{Monthly: monthly}, "42", mustResolve(t, period.Month, "March"))
	if res.Found() {
		t.Error("expected 42 not to match 0042")
	}
}

func TestAggregateMonthAmbiguousTakesFirst(t *testing.T) {
	var buf bytes.Buffer
	a := newTestAggregator(&buf)
	before := metrics.Get().Ambiguous()

	monthly := types.NewTable(types.TableMonthly,
		[]string{"EMP ID", "Month", "Grand Total"},
		[][]string{
			{"1070", "March", "4.6"},
			{"1070", "March", "1.0"},
		},
	)

	res := a.Aggregate(Tables{Monthly: monthly}, "1070", mustResolve(t, period.Month, "March"))
	if !res.Found() {
		t.Fatal("expected a match")
	}
	if got := res.Summary.Row.Get("Grand Total"); got != "4.6" {
		t.Errorf("expected first row to win, got Grand Total %s", got)
	}
	if res.Diagnostics.Ambiguous != 1 {
		t.Errorf("expected 1 ambiguous extra match, got %d", res.Diagnostics.Ambiguous)
	}
	if metrics.Get().Ambiguous()-before != 1 {
		t.Error("expected ambiguous match to be counted")
	}
	if !bytes.Contains(buf.Bytes(), []byte("ambiguous match")) {
		t.Error("expected ambiguous match to be logged")
	}
}

func TestAggregateWeekSumsCallCount(t *testing.T) {
	var buf bytes.Buffer
	a := newTestAggregator(&buf)

	daily := dailyTable(
		[]string{"1070", "asha", "2024-03-18", "12", "10", "00:10:00", "00:01:00", "00:00:30"},
		[]string{"1070", "asha", "2024-03-19", "12", "15", "00:20:00", "00:02:00", "00:00:30"},
		[]string{"1070", "asha", "2024-03-20", "12", "bad", "oops", "", "00:00:30"},
		[]string{"1070", "asha", "2024-03-25", "13", "99", "00:05:00", "", ""},
		[]string{"2000", "ravi", "2024-03-18", "12", "50", "00:01:00", "", ""},
	)

	res := a.Aggregate(Tables{Daily: daily}, "1070", mustResolve(t, period.Week, "12"))
	if !res.Found() {
		t.Fatal("expected a weekly summary")
	}

	row := res.Summary.Row
	if got := row.Get("Call Count"); got != "25" {
		t.Errorf("expected summed Call Count 25, got %s", got)
	}
	if got := row.Get("AHT"); got != "00:15:00" {
		t.Errorf("expected AHT 00:15:00, got %s", got)
	}
	if got := row.Get("Hold"); got != "00:01:30" {
		t.Errorf("expected Hold 00:01:30, got %s", got)
	}
	if got := row.Get("Wrap"); got != "00:00:30" {
		t.Errorf("expected Wrap 00:00:30, got %s", got)
	}
	if len(res.Summary.Matched) != 3 {
		t.Errorf("expected 3 matched rows, got %d", len(res.Summary.Matched))
	}

	malformed := map[string]bool{}
	for _, f := range res.Diagnostics.Malformed {
		malformed[f.Field] = true
	}
	if !malformed["Call Count"] || !malformed["AHT"] {
		t.Errorf("expected Call Count and AHT to be flagged malformed, got %+v", res.Diagnostics.Malformed)
	}
}

func TestAggregateWeekCallCountProperty(t *testing.T) {
	var buf bytes.Buffer
	a := newTestAggregator(&buf)

	counts := [][]string{
		{"1", "2", "3"},
		{"0", "", "7"},
		{"x", "y", "4"},
		{"1,200", "300", "n/a"},
	}
	want := []string{"6", "7", "4", "1500"}

	for i, set := range counts {
		var rows [][]string
		for _, c := range set {
			rows = append(rows, []string{"77", "", "", "5", c, "", "", ""})
		}
		res := a.Aggregate(Tables{Daily: dailyTable(rows...)}, "77", mustResolve(t, period.Week, "5"))
		if got := res.Summary.Row.Get("Call Count"); got != want[i] {
			t.Errorf("set %d: expected %s, got %s", i, want[i], got)
		}
	}
}

func TestAggregateWeekCSATJoin(t *testing.T) {
	var buf bytes.Buffer
	a := newTestAggregator(&buf)

	daily := dailyTable(
		[]string{"1070", "", "2024-03-18", "12", "10", "00:04:00", "", ""},
		[]string{"1070", "", "2024-03-19", "12.0", "12", "00:06:00", "", ""},
	)

	t.Run("no csat record", func(t *testing.T) {
		res := a.Aggregate(Tables{Daily: daily, CSAT: csatTable([]string{"1070", "11", "90%", "95%"})},
			"1070", mustResolve(t, period.Week, "12"))
		if !res.Found() {
			t.Fatal("expected a weekly summary")
		}
		row := res.Summary.Row
		if row.Has("CSAT Resolution") || row.Has("CSAT Behaviour") {
			t.Errorf("expected CSAT fields to be unavailable, got %q / %q",
				row.Get("CSAT Resolution"), row.Get("CSAT Behaviour"))
		}
		if row.Get("Call Count") != "22" || row.Get("AHT") != "00:05:00" {
			t.Errorf("expected counts and durations still computed, got %v", row)
		}
		if row.Has("Hold") {
			t.Errorf("expected Hold unavailable when no row has it, got %s", row.Get("Hold"))
		}
	})

	t.Run("csat record present", func(t *testing.T) {
		res := a.Aggregate(Tables{Daily: daily, CSAT: csatTable([]string{"1070", "12", "88%", "91%"})},
			"1070", mustResolve(t, period.Week, "12"))
		row := res.Summary.Row
		if row.Get("CSAT Resolution") != "88%" || row.Get("CSAT Behaviour") != "91%" {
			t.Errorf("expected CSAT from weekly record, got %v", row)
		}
	})
}

func TestAggregateWeekDerivesBlankWeekFromDate(t *testing.T) {
	var buf bytes.Buffer
	a := newTestAggregator(&buf)

	daily := dailyTable(
		[]string{"1070", "", "2024-03-20", "", "8", "", "", ""},
		[]string{"1070", "", "2024-03-21", "12", "2", "", "", ""},
	)

	res := a.Aggregate(Tables{Daily: daily}, "1070", mustResolve(t, period.Week, "12"))
	if !res.Found() {
		t.Fatal("expected a weekly summary")
	}
	if got := res.Summary.Row.Get("Call Count"); got != "10" {
		t.Errorf("expected 10, got %s", got)
	}
}

func TestAggregateWeekNoMatch(t *testing.T) {
	var buf bytes.Buffer
	a := newTestAggregator(&buf)

	res := a.Aggregate(Tables{Daily: dailyTable([]string{"1070", "", "2024-03-20", "12", "1", "", "", ""})},
		"1070", mustResolve(t, period.Week, "40"))
	if res.Found() {
		t.Error("expected no weekly summary")
	}
}

func TestAggregateIgnoresUnlabelledRows(t *testing.T) {
	var buf bytes.Buffer
	a := newTestAggregator(&buf)

	monthly := types.NewTable(types.TableMonthly,
		[]string{"EMP ID", "Month", "Grand Total"},
		[][]string{{"1070", "", "4.6"}},
	)
	daily := dailyTable([]string{"1070", "", "garbage", "", "10", "", "", ""})

	// blank selectors never come out of Resolve, but the filters must not
	// pair them with blank cells either
	if res := a.Aggregate(Tables{Monthly: monthly}, "1070", period.Selector{Kind: period.Month}); res.Found() {
		t.Error("expected a blank month cell to match nothing")
	}
	if res := a.Aggregate(Tables{Daily: daily}, "1070", period.Selector{Kind: period.Week}); res.Found() {
		t.Error("expected a row without week or date to match nothing")
	}
}

func TestAggregateDay(t *testing.T) {
	var buf bytes.Buffer
	a := newTestAggregator(&buf)

	daily := dailyTable(
		[]string{"1070", "", "20/03/2024", "12", "14", "00:05:00", "", ""},
		[]string{"1070", "", "garbage", "12", "1", "", "", ""},
	)
	csat := csatTable([]string{"1070", "12", "80%", "85%"})

	res := a.Aggregate(Tables{Daily: daily, CSAT: csat}, "1070", mustResolve(t, period.Day, "2024-03-20"))
	if !res.Found() {
		t.Fatal("expected a daily row")
	}
	row := res.Summary.Row
	if row.Get("Call Count") != "14" {
		t.Errorf("expected Call Count 14, got %s", row.Get("Call Count"))
	}
	if row.Get("CSAT Resolution") != "80%" {
		t.Errorf("expected CSAT joined from weekly score, got %q", row.Get("CSAT Resolution"))
	}
	if len(res.Diagnostics.Malformed) != 1 || res.Diagnostics.Malformed[0].Field != "Date" {
		t.Errorf("expected the garbage date to be flagged, got %+v", res.Diagnostics.Malformed)
	}

	res = a.Aggregate(Tables{Daily: daily, CSAT: csat}, "1070", mustResolve(t, period.Day, "2024-03-21"))
	if res.Found() {
		t.Error("expected no row for another day")
	}
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{"00:10:00", 600, false},
		{"1:02:03", 3723, false},
		{"05:30", 330, false},
		{"45", 45, false},
		{"00:75:00", 0, true},
		{"abc", 0, true},
		{"", 0, true},
		{"1:2:3:4", 0, true},
		{"-00:01:00", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseDuration(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseDuration(%q): expected error", tt.in)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseDuration(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
		}
	}
}

func TestFormatDurationRoundTrip(t *testing.T) {
	for _, in := range []string{"00:00:00", "00:15:00", "01:02:03", "12:59:59"} {
		secs, err := ParseDuration(in)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := FormatDuration(secs); got != in {
			t.Errorf("round trip of %s gave %s", in, got)
		}
	}
}

func TestNormalizeEmployeeID(t *testing.T) {
	tests := map[string]string{
		" 1070 ": "1070",
		"1070.0": "1070",
		"0042":   "0042",
		"A-17":   "A-17",
		".0":     ".0",
	}
	for in, want := range tests {
		if got := NormalizeEmployeeID(in); got != want {
			t.Errorf("NormalizeEmployeeID(%q) = %q, want %q", in, got, want)
		}
	}
}
