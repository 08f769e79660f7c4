package types

// TableName identifies one of the worksheets the dashboard reads
type TableName string

// Worksheet names are the wire contract with the spreadsheet and must not change
const (
	TableMonthly TableName = "KPI Month"
	TableDaily   TableName = "KPI Day"
	TableCSAT    TableName = "CSAT Score"
)

// AllTables lists every table in fetch order
var AllTables = []TableName{TableMonthly, TableDaily, TableCSAT}

// Valid reports whether name is one of the known tables
func (t TableName) Valid() bool {
	switch t {
	case TableMonthly, TableDaily, TableCSAT:
		return true
	}
	return false
}

// Shared column names
const (
	FieldEmployeeID = "EMP ID"
	FieldName       = "NAME"
)

// KPI Month columns
const (
	FieldMonth             = "Month"
	FieldHold              = "Hold"
	FieldWrap              = "Wrap"
	FieldAutoOn            = "Auto-On"
	FieldScheduleAdherence = "Schedule Adherence"
	FieldResolutionCSAT    = "Resolution CSAT"
	FieldAgentBehaviour    = "Agent Behaviour"
	FieldQuality           = "Quality"
	FieldPKT               = "PKT"
	FieldSLUPL             = "SL + UPL"
	FieldLogins            = "LOGINS"
	FieldGrandTotal        = "Grand Total"

	// KPIScoreSuffix is appended to a metric name to form its score column
	KPIScoreSuffix = "KPI Score"

	FieldTargetPKT     = "Target Committed for PKT"
	FieldTargetCSAT    = "Target Committed for CSAT"
	FieldTargetQuality = "Target Committed for Quality"
)

// KPI Day and CSAT Score columns
const (
	FieldDate           = "Date"
	FieldWeek           = "Week"
	FieldCallCount      = "Call Count"
	FieldAHT            = "AHT"
	FieldCSATResolution = "CSAT Resolution"
	FieldCSATBehaviour  = "CSAT Behaviour"
)

// NotAvailable is the value reported for fields that are missing or malformed
const NotAvailable = "N/A"
