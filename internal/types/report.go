package types

import "time"

// MetricRow is one line of the performance metrics table
type MetricRow struct {
	Description string `json:"description"`
	Metric      string `json:"metric"`
	Value       string `json:"value"`
	Unit        string `json:"unit"`
	Available   bool   `json:"available"`
}

// ScoreRow is one line of the KPI scores table
type ScoreRow struct {
	Weight float64  `json:"weight"` // percent
	Metric string   `json:"metric"`
	Score  *float64 `json:"score"`
}

// TargetRow is one committed target for the next month
type TargetRow struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Tier classifies a Grand Total
type Tier string

const (
	TierOutstanding      Tier = "outstanding"
	TierGood             Tier = "good"
	TierFair             Tier = "fair"
	TierNeedsImprovement Tier = "needs improvement"
	TierUnknown          Tier = "unknown"
)

// DeltaKind describes how the Grand Total moved against the previous month
type DeltaKind string

const (
	DeltaImproved     DeltaKind = "improved"
	DeltaDropped      DeltaKind = "dropped"
	DeltaNoChange     DeltaKind = "no change"
	DeltaNoComparison DeltaKind = "no comparison available"
)

// Delta is the month-over-month Grand Total change
type Delta struct {
	Kind          DeltaKind `json:"kind"`
	Value         *float64  `json:"value"`
	PreviousMonth string    `json:"previousMonth,omitempty"`
	Message       string    `json:"message"`
}

// GrandTotal is the weighted KPI result for a month
type GrandTotal struct {
	Value   *float64 `json:"value"`
	Scale   int      `json:"scale"`
	Tier    Tier     `json:"tier"`
	Message string   `json:"message"`
}

// AlertSeverity represents the severity of a report alert
type AlertSeverity string

const (
	SeverityWarning  AlertSeverity = "warning"
	SeverityCritical AlertSeverity = "critical"
)

// Alert flags a figure a supervisor should look at
type Alert struct {
	Rule     string        `json:"rule"`
	Severity AlertSeverity `json:"severity"`
	Message  string        `json:"message"`
}

// Report is everything the presenter needs for one (employee, period) query
type Report struct {
	ID           string      `json:"id"`
	EmployeeID   string      `json:"employeeId"`
	EmployeeName string      `json:"employeeName,omitempty"`
	PeriodKind   string      `json:"periodKind"`
	Period       string      `json:"period"`
	Found        bool        `json:"found"`
	Message      string      `json:"message,omitempty"`
	Performance  []MetricRow `json:"performance,omitempty"`
	KPIScores    []ScoreRow  `json:"kpiScores,omitempty"`
	GrandTotal   *GrandTotal `json:"grandTotal,omitempty"`
	Delta        *Delta      `json:"delta,omitempty"`
	Targets      []TargetRow `json:"targets,omitempty"`
	Alerts       []Alert     `json:"alerts,omitempty"`
	GeneratedAt  time.Time   `json:"generatedAt"`
}
