package scoring

import (
	"fmt"
	"math"
	"os"

	"github.com/dennisdiepolder/champkpi/internal/types"
	"gopkg.in/yaml.v3"
)

// Supported Grand Total scales
const (
	ScaleFive    = 5
	ScaleHundred = 100
)

// Weight is the share of the Grand Total a metric carries, in percent
type Weight struct {
	Metric string  `yaml:"metric" json:"metric"`
	Weight float64 `yaml:"weight" json:"weight"`
}

// Config is the canonical scale and weight table. Source sheets disagree on
// both, so they are configuration rather than code.
type Config struct {
	Scale   int      `yaml:"scale" json:"scale"`
	Weights []Weight `yaml:"weights" json:"weights"`
}

// DefaultConfig is the 0-5 scale with Wrap carrying 10%
func DefaultConfig() *Config {
	return &Config{
		Scale: ScaleFive,
		Weights: []Weight{
			{Metric: types.FieldHold, Weight: 0},
			{Metric: types.FieldWrap, Weight: 10},
			{Metric: types.FieldAutoOn, Weight: 30},
			{Metric: types.FieldScheduleAdherence, Weight: 10},
			{Metric: types.FieldResolutionCSAT, Weight: 10},
			{Metric: types.FieldAgentBehaviour, Weight: 20},
			{Metric: types.FieldQuality, Weight: 20},
			{Metric: types.FieldPKT, Weight: 10},
		},
	}
}

// LoadConfig reads a YAML scoring config. An empty path yields the default.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scoring config: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse scoring config: %w", err)
	}
	if cfg.Scale == 0 {
		cfg.Scale = ScaleFive
	}
	if len(cfg.Weights) == 0 {
		cfg.Weights = DefaultConfig().Weights
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configs the scorer cannot interpret
func (c *Config) Validate() error {
	if c.Scale != ScaleFive && c.Scale != ScaleHundred {
		return fmt.Errorf("unsupported scale %d: must be %d or %d", c.Scale, ScaleFive, ScaleHundred)
	}
	seen := make(map[string]bool)
	for _, w := range c.Weights {
		if w.Metric == "" {
			return fmt.Errorf("weight entry without metric")
		}
		if seen[w.Metric] {
			return fmt.Errorf("duplicate weight for metric %q", w.Metric)
		}
		if w.Weight < 0 {
			return fmt.Errorf("negative weight for metric %q", w.Metric)
		}
		seen[w.Metric] = true
	}
	return nil
}

// TotalWeight sums the configured weights
func (c *Config) TotalWeight() float64 {
	total := 0.0
	for _, w := range c.Weights {
		total += w.Weight
	}
	return total
}

// Balanced reports whether the weights add up to 100%. An unbalanced table
// is allowed but worth a warning.
func (c *Config) Balanced() bool {
	return math.Abs(c.TotalWeight()-100) < 1e-9
}

// WeightOf returns the configured weight for a metric
func (c *Config) WeightOf(metric string) (float64, bool) {
	for _, w := range c.Weights {
		if w.Metric == metric {
			return w.Weight, true
		}
	}
	return 0, false
}
