// Package report runs one KPI lookup end to end and shapes the result for
// presenters.
package report

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dennisdiepolder/champkpi/internal/aggregator"
	"github.com/dennisdiepolder/champkpi/internal/alerts"
	"github.com/dennisdiepolder/champkpi/internal/metrics"
	"github.com/dennisdiepolder/champkpi/internal/period"
	"github.com/dennisdiepolder/champkpi/internal/scoring"
	"github.com/dennisdiepolder/champkpi/internal/storage"
	"github.com/dennisdiepolder/champkpi/internal/types"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ErrInvalidQuery is returned for queries without an employee ID
var ErrInvalidQuery = errors.New("invalid query")

// Query is one lookup as entered on the dashboard
type Query struct {
	EmployeeID string
	Kind       string
	Selector   string
}

// Service combines the store, aggregator and scorer
type Service struct {
	store      storage.Store
	aggregator *aggregator.Aggregator
	scorer     *scoring.Scorer
	now        func() time.Time
	logger     zerolog.Logger
}

// NewService creates a report service
func NewService(store storage.Store, agg *aggregator.Aggregator, scorer *scoring.Scorer, logger zerolog.Logger) *Service {
	return &Service{
		store:      store,
		aggregator: agg,
		scorer:     scorer,
		now:        time.Now,
		logger:     logger.With().Str("component", "report").Logger(),
	}
}

// Lookup builds the report for one (employee, period) pair. An unknown
// period kind returns period.ErrUnknownKind and an unreachable source
// storage.ErrSourceUnavailable. Missing data is a report with Found false.
func (s *Service) Lookup(ctx context.Context, q Query) (*types.Report, error) {
	employeeID := aggregator.NormalizeEmployeeID(q.EmployeeID)
	if employeeID == "" {
		return nil, fmt.Errorf("%w: employee ID is required", ErrInvalidQuery)
	}

	kind, err := period.ParseKind(q.Kind)
	if err != nil {
		return nil, err
	}
	metrics.Get().RecordLookup(string(kind))

	rep := &types.Report{
		ID:          uuid.New().String(),
		EmployeeID:  employeeID,
		PeriodKind:  string(kind),
		Period:      strings.TrimSpace(q.Selector),
		GeneratedAt: s.now().UTC(),
	}

	sel, err := period.Resolve(kind, q.Selector)
	if err != nil {
		if errors.Is(err, period.ErrMalformedDate) || errors.Is(err, period.ErrBlankSelector) {
			s.logger.Debug().Err(err).Str("selector", q.Selector).Msg("unusable selector, reporting no data")
			metrics.Get().RecordNoMatch(string(kind))
			return noData(rep), nil
		}
		return nil, err
	}
	rep.Period = sel.String()

	tables, err := s.fetch(ctx, kind)
	if err != nil {
		return nil, err
	}

	res := s.aggregator.Aggregate(tables, employeeID, sel)
	if !res.Found() {
		return noData(rep), nil
	}

	row := res.Summary.Row
	rep.Found = true
	rep.EmployeeName = titleName(row.Get(types.FieldName))
	rep.Performance = performance(kind, row)

	if kind == period.Month {
		scored := s.scorer.Score(row, tables.Monthly.Columns)
		rep.KPIScores = scored.KPIScores
		rep.GrandTotal = &scored.GrandTotal

		delta := s.delta(tables.Monthly, employeeID, sel.Value, scored.GrandTotal.Value)
		rep.Delta = &delta
		rep.Targets = targetRows(row)
	}

	alerts.CheckReportAlerts(rep)

	s.logger.Info().
		Str("employee_id", employeeID).
		Str("period_kind", string(kind)).
		Str("period", rep.Period).
		Int("ambiguous", res.Diagnostics.Ambiguous).
		Int("malformed", len(res.Diagnostics.Malformed)).
		Int("alerts", len(rep.Alerts)).
		Msg("report built")

	return rep, nil
}

// Periods lists the selectors available for kind, optionally for one employee
func (s *Service) Periods(ctx context.Context, kind string, employeeID string) ([]string, error) {
	k, err := period.ParseKind(kind)
	if err != nil {
		return nil, err
	}

	name := types.TableDaily
	if k == period.Month {
		name = types.TableMonthly
	}
	t, err := s.store.Fetch(ctx, name)
	if err != nil {
		return nil, err
	}

	out := aggregator.Periods(t, k, employeeID)
	if out == nil {
		out = []string{}
	}
	return out, nil
}

// fetch loads the tables a period kind reads
func (s *Service) fetch(ctx context.Context, kind period.Kind) (aggregator.Tables, error) {
	var tables aggregator.Tables
	var err error

	if kind == period.Month {
		tables.Monthly, err = s.store.Fetch(ctx, types.TableMonthly)
		return tables, err
	}

	if tables.Daily, err = s.store.Fetch(ctx, types.TableDaily); err != nil {
		return tables, err
	}
	tables.CSAT, err = s.store.Fetch(ctx, types.TableCSAT)
	return tables, err
}

// delta compares the Grand Total with the employee's closest earlier month
func (s *Service) delta(t *types.Table, employeeID, month string, current *float64) types.Delta {
	var months []string
	rows := make(map[string]types.Row)
	for _, row := range t.Rows {
		if aggregator.NormalizeEmployeeID(row.Get(types.FieldEmployeeID)) != employeeID {
			continue
		}
		m := row.Get(types.FieldMonth)
		if _, seen := rows[m]; !seen {
			rows[m] = row
			months = append(months, m)
		}
	}

	prevMonth, ok := period.PreviousMonth(months, month)
	if !ok {
		return s.scorer.Delta(current, nil, "")
	}

	var previous *float64
	if v, ok := scoring.ParseScore(rows[prevMonth].Get(types.FieldGrandTotal)); ok {
		previous = &v
	}
	return s.scorer.Delta(current, previous, prevMonth)
}

func noData(rep *types.Report) *types.Report {
	rep.Found = false
	rep.Message = fmt.Sprintf("No data found for this EMP ID and %s.", rep.PeriodKind)
	return rep
}

// titleName capitalizes each word of a name. Casers hold state, so each call
// gets its own.
func titleName(name string) string {
	return cases.Title(language.Und).String(strings.ToLower(strings.TrimSpace(name)))
}
