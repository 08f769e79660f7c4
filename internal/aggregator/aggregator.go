package aggregator

import (
	"github.com/dennisdiepolder/champkpi/internal/metrics"
	"github.com/dennisdiepolder/champkpi/internal/period"
	"github.com/dennisdiepolder/champkpi/internal/types"
	"github.com/rs/zerolog"
)

// Tables is the snapshot a single lookup aggregates over. Tables that the
// period kind does not need may be nil.
type Tables struct {
	Monthly *types.Table
	Daily   *types.Table
	CSAT    *types.Table
}

// MalformedField records a value that could not be parsed and was left out
type MalformedField struct {
	Table types.TableName `json:"table"`
	Field string          `json:"field"`
	Value string          `json:"value"`
}

// Diagnostics carries the data quality signals of one aggregation
type Diagnostics struct {
	Ambiguous int              `json:"ambiguous"` // matches beyond the first
	Malformed []MalformedField `json:"malformed,omitempty"`
}

// Summary is the single row a lookup resolves to
type Summary struct {
	Row     types.Row   `json:"row"`
	Matched []types.Row `json:"-"`
	Week    string      `json:"week,omitempty"`
}

// Result is zero or one summary plus diagnostics
type Result struct {
	Summary     *Summary
	Diagnostics Diagnostics
}

// Found reports whether a summary row was produced
func (r Result) Found() bool {
	return r.Summary != nil
}

// Aggregator filters rows for an (employee, period) pair and combines them
type Aggregator struct {
	logger zerolog.Logger
}

// NewAggregator creates a new aggregator
func NewAggregator(logger zerolog.Logger) *Aggregator {
	return &Aggregator{
		logger: logger.With().Str("component", "aggregator").Logger(),
	}
}

// Aggregate selects the rows for employeeID in the selected period
func (a *Aggregator) Aggregate(tables Tables, employeeID string, sel period.Selector) Result {
	employeeID = NormalizeEmployeeID(employeeID)

	var res Result
	switch sel.Kind {
	case period.Month:
		res = a.aggregateMonth(tables.Monthly, employeeID, sel)
	case period.Day:
		res = a.aggregateDay(tables, employeeID, sel)
	case period.Week:
		res = a.aggregateWeek(tables, employeeID, sel)
	}

	a.report(res, employeeID, sel)
	return res
}

func (a *Aggregator) aggregateMonth(t *types.Table, employeeID string, sel period.Selector) Result {
	var res Result
	if t == nil {
		return res
	}

	var matched []types.Row
	for _, row := range t.Rows {
		if NormalizeEmployeeID(row.Get(types.FieldEmployeeID)) != employeeID {
			continue
		}
		month := row.Get(types.FieldMonth)
		if month == "" || month != sel.Value {
			continue
		}
		matched = append(matched, row)
	}

	if len(matched) == 0 {
		return res
	}
	res.Diagnostics.Ambiguous = len(matched) - 1
	res.Summary = &Summary{Row: matched[0], Matched: matched}
	return res
}

func (a *Aggregator) aggregateDay(tables Tables, employeeID string, sel period.Selector) Result {
	var res Result
	if tables.Daily == nil {
		return res
	}

	var matched []types.Row
	for _, row := range tables.Daily.Rows {
		if NormalizeEmployeeID(row.Get(types.FieldEmployeeID)) != employeeID {
			continue
		}
		d, err := period.ParseDate(row.Get(types.FieldDate))
		if err != nil {
			res.Diagnostics.Malformed = append(res.Diagnostics.Malformed, MalformedField{
				Table: types.TableDaily, Field: types.FieldDate, Value: row.Get(types.FieldDate),
			})
			continue
		}
		if d.Equal(sel.Date) {
			matched = append(matched, row)
		}
	}

	if len(matched) == 0 {
		return res
	}
	res.Diagnostics.Ambiguous = len(matched) - 1

	first := matched[0]
	week := rowWeek(first)
	summary := make(types.Row, len(first)+2)
	for k, v := range first {
		summary[k] = v
	}
	summary[types.FieldWeek] = week

	// Daily CSAT wins; otherwise fall back to the weekly CSAT score
	if !first.Has(types.FieldCSATResolution) && !first.Has(types.FieldCSATBehaviour) {
		a.joinCSAT(summary, tables.CSAT, employeeID, week, &res.Diagnostics)
	}

	res.Summary = &Summary{Row: summary, Matched: matched, Week: week}
	return res
}

func (a *Aggregator) aggregateWeek(tables Tables, employeeID string, sel period.Selector) Result {
	var res Result
	if tables.Daily == nil {
		return res
	}

	var matched []types.Row
	for _, row := range tables.Daily.Rows {
		if NormalizeEmployeeID(row.Get(types.FieldEmployeeID)) != employeeID {
			continue
		}
		// rows without a Week cell or a parseable Date belong to no week
		if week := rowWeek(row); week != "" && week == sel.Value {
			matched = append(matched, row)
		}
	}

	if len(matched) == 0 {
		return res
	}

	summary := types.Row{
		types.FieldEmployeeID: employeeID,
		types.FieldWeek:       sel.Value,
		types.FieldName:       matched[0].Get(types.FieldName),
	}

	// Counts sum; blank cells contribute nothing, text is malformed
	calls := 0.0
	for _, row := range matched {
		v := row.Get(types.FieldCallCount)
		if v == "" {
			continue
		}
		n, err := ParseCount(v)
		if err != nil {
			res.Diagnostics.Malformed = append(res.Diagnostics.Malformed, MalformedField{
				Table: types.TableDaily, Field: types.FieldCallCount, Value: v,
			})
			continue
		}
		calls += n
	}
	summary[types.FieldCallCount] = formatCount(calls)

	// Durations average in seconds over the rows that parse
	for _, field := range []string{types.FieldAHT, types.FieldHold, types.FieldWrap} {
		sum, n := 0.0, 0
		for _, row := range matched {
			v := row.Get(field)
			if v == "" {
				continue
			}
			secs, err := ParseDuration(v)
			if err != nil {
				res.Diagnostics.Malformed = append(res.Diagnostics.Malformed, MalformedField{
					Table: types.TableDaily, Field: field, Value: v,
				})
				continue
			}
			sum += secs
			n++
		}
		if n > 0 {
			summary[field] = FormatDuration(sum / float64(n))
		} else {
			summary[field] = ""
		}
	}

	// CSAT is tracked weekly and never averaged from daily rows
	summary[types.FieldCSATResolution] = ""
	summary[types.FieldCSATBehaviour] = ""
	a.joinCSAT(summary, tables.CSAT, employeeID, sel.Value, &res.Diagnostics)

	res.Summary = &Summary{Row: summary, Matched: matched, Week: sel.Value}
	return res
}

// joinCSAT copies the CSAT fields of the (employee, week) score row into dst
func (a *Aggregator) joinCSAT(dst types.Row, t *types.Table, employeeID, week string, diag *Diagnostics) {
	if t == nil || week == "" {
		return
	}

	found := 0
	for _, row := range t.Rows {
		if NormalizeEmployeeID(row.Get(types.FieldEmployeeID)) != employeeID {
			continue
		}
		if period.NormalizeWeek(row.Get(types.FieldWeek)) != week {
			continue
		}
		found++
		if found == 1 {
			dst[types.FieldCSATResolution] = row.Get(types.FieldCSATResolution)
			dst[types.FieldCSATBehaviour] = row.Get(types.FieldCSATBehaviour)
		}
	}
	if found > 1 {
		diag.Ambiguous += found - 1
	}
}

// rowWeek is the row's own Week label, or the ISO week of its date when blank
func rowWeek(row types.Row) string {
	if w := period.NormalizeWeek(row.Get(types.FieldWeek)); w != "" {
		return w
	}
	if d, err := period.ParseDate(row.Get(types.FieldDate)); err == nil {
		return period.WeekOfDate(d)
	}
	return ""
}

// report logs and counts the data quality signals of a result
func (a *Aggregator) report(res Result, employeeID string, sel period.Selector) {
	m := metrics.Get()

	if res.Diagnostics.Ambiguous > 0 {
		m.RecordAmbiguousMatch(res.Diagnostics.Ambiguous)
		a.logger.Warn().
			Str("employee_id", employeeID).
			Str("period_kind", string(sel.Kind)).
			Str("period", sel.String()).
			Int("extra_matches", res.Diagnostics.Ambiguous).
			Msg("ambiguous match, using first row in source order")
	}

	for _, f := range res.Diagnostics.Malformed {
		m.RecordMalformedField(f.Field)
		a.logger.Warn().
			Str("employee_id", employeeID).
			Str("table", string(f.Table)).
			Str("field", f.Field).
			Str("value", f.Value).
			Msg("malformed field excluded from aggregation")
	}

	if !res.Found() {
		m.RecordNoMatch(string(sel.Kind))
		a.logger.Debug().
			Str("employee_id", employeeID).
			Str("period_kind", string(sel.Kind)).
			Str("period", sel.String()).
			Msg("no matching rows")
	}
}
