package scoring

import (
	"math"
	"strconv"
	"strings"

	"github.com/dennisdiepolder/champkpi/internal/types"
	"github.com/rs/zerolog"
)

// Result is the scored view of one monthly row
type Result struct {
	KPIScores  []types.ScoreRow
	GrandTotal types.GrandTotal
}

// Scorer labels stored KPI scores with their weights and classifies the
// Grand Total. Scores are computed upstream in the sheet, never here.
type Scorer struct {
	cfg    *Config
	logger zerolog.Logger
}

// NewScorer creates a scorer for the given config
func NewScorer(cfg *Config, logger zerolog.Logger) *Scorer {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Scorer{
		cfg:    cfg,
		logger: logger.With().Str("component", "scorer").Logger(),
	}
}

// Config returns the scorer's configuration
func (s *Scorer) Config() *Config {
	return s.cfg
}

// Score reads the weighted KPI scores and Grand Total from a monthly row.
// Score columns outside the weight table are appended in header order with
// weight 0.
func (s *Scorer) Score(row types.Row, columns []string) Result {
	res := Result{}

	known := make(map[string]bool, len(s.cfg.Weights))
	for _, w := range s.cfg.Weights {
		col := ScoreColumn(w.Metric)
		known[col] = true
		res.KPIScores = append(res.KPIScores, types.ScoreRow{
			Weight: w.Weight,
			Metric: w.Metric,
			Score:  s.parse(row, col),
		})
	}

	for _, col := range columns {
		if known[col] || !strings.Contains(col, types.KPIScoreSuffix) {
			continue
		}
		known[col] = true
		metric := strings.TrimSpace(strings.TrimSuffix(col, types.KPIScoreSuffix))
		// a weighted metric under a differently spaced header is already listed
		if _, weighted := s.cfg.WeightOf(metric); weighted {
			continue
		}
		res.KPIScores = append(res.KPIScores, types.ScoreRow{
			Weight: 0,
			Metric: metric,
			Score:  s.parse(row, col),
		})
	}

	total := s.parse(row, types.FieldGrandTotal)
	res.GrandTotal = types.GrandTotal{Value: total, Scale: s.cfg.Scale, Tier: types.TierUnknown}
	if total != nil {
		res.GrandTotal.Tier = s.Tier(*total)
	}
	res.GrandTotal.Message = TierMessage(res.GrandTotal.Tier)
	return res
}

func (s *Scorer) parse(row types.Row, col string) *float64 {
	raw := row.Get(col)
	if raw == "" {
		return nil
	}
	v, ok := ParseScore(raw)
	if !ok {
		s.logger.Warn().Str("field", col).Str("value", raw).Msg("score is not numeric")
		return nil
	}
	return &v
}

// Tier classifies a Grand Total on the configured scale
func (s *Scorer) Tier(total float64) types.Tier {
	if s.cfg.Scale == ScaleHundred {
		switch {
		case total >= 90:
			return types.TierOutstanding
		case total >= 75:
			return types.TierGood
		}
		return types.TierNeedsImprovement
	}

	switch {
	case total >= 4.5:
		return types.TierOutstanding
	case total >= 3.5:
		return types.TierGood
	case total >= 2.5:
		return types.TierFair
	}
	return types.TierNeedsImprovement
}

// Delta compares the current Grand Total against the previous month's
func (s *Scorer) Delta(current, previous *float64, previousMonth string) types.Delta {
	if current == nil || previous == nil {
		return types.Delta{
			Kind:    types.DeltaNoComparison,
			Message: deltaMessage(types.DeltaNoComparison, false),
		}
	}

	d := Round2(*current - *previous)
	kind := types.DeltaNoChange
	switch {
	case d > 0:
		kind = types.DeltaImproved
	case d < 0:
		kind = types.DeltaDropped
	}

	// a move of a tenth of the scale or more counts as large
	large := math.Abs(d) >= float64(s.cfg.Scale)/10
	return types.Delta{
		Kind:          kind,
		Value:         &d,
		PreviousMonth: previousMonth,
		Message:       deltaMessage(kind, large),
	}
}

// Round2 rounds half away from zero to two decimals, so Round2(-x) == -Round2(x)
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// ScoreColumn is the column holding the KPI score of a metric
func ScoreColumn(metric string) string {
	return metric + " " + types.KPIScoreSuffix
}

// ParseScore parses a numeric score, tolerating a trailing percent sign
func ParseScore(raw string) (float64, bool) {
	raw = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(raw), "%"))
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
