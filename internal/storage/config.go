package storage

import "os"

// SourceMode selects the backing store for the three tables
type SourceMode string

const (
	SourceSheet  SourceMode = "sheet"
	SourceXLSX   SourceMode = "xlsx"
	SourceDynamo SourceMode = "dynamo"
	SourceSQL    SourceMode = "sql"
	SourceMemory SourceMode = "memory"
)

// DynamoMode represents the DynamoDB connection mode
type DynamoMode string

const (
	DynamoModeLocal DynamoMode = "local"
	DynamoModeAWS   DynamoMode = "aws"
)

// SourceConfig holds the settings of every source; only the selected one is used
type SourceConfig struct {
	Mode SourceMode

	// sheet
	SheetID      string
	SheetBaseURL string

	// xlsx
	XLSXPath string

	// dynamo
	DynamoMode     DynamoMode
	DynamoEndpoint string // for local mode
	DynamoRegion   string
	DynamoTables   map[string]string // worksheet name -> DynamoDB table

	// sql
	SQLDriver      string
	SQLDSN         string
	SQLOrderColumn string // source row order, e.g. "row_no"
}

// LoadSourceConfig loads source config from environment
func LoadSourceConfig() SourceConfig {
	mode := SourceMode(getEnv("SOURCE_MODE", string(SourceMemory)))
	switch mode {
	case SourceSheet, SourceXLSX, SourceDynamo, SourceSQL:
	default:
		mode = SourceMemory
	}

	dynamoMode := DynamoMode(getEnv("DYNAMO_MODE", string(DynamoModeAWS)))
	if dynamoMode != DynamoModeLocal {
		dynamoMode = DynamoModeAWS
	}

	return SourceConfig{
		Mode:           mode,
		SheetID:        getEnv("SHEET_ID", ""),
		SheetBaseURL:   getEnv("SHEET_BASE_URL", "https://docs.google.com"),
		XLSXPath:       getEnv("XLSX_PATH", "data/kpi.xlsx"),
		DynamoMode:     dynamoMode,
		DynamoEndpoint: getEnv("DYNAMO_ENDPOINT", "http://localhost:8000"),
		DynamoRegion:   getEnv("DYNAMO_REGION", "eu-central-1"),
		DynamoTables: map[string]string{
			"KPI Month":  getEnv("DYNAMO_MONTH_TABLE", "champkpi-month"),
			"KPI Day":    getEnv("DYNAMO_DAY_TABLE", "champkpi-day"),
			"CSAT Score": getEnv("DYNAMO_CSAT_TABLE", "champkpi-csat"),
		},
		SQLDriver:      getEnv("SQL_DRIVER", "sqlite3"),
		SQLDSN:         getEnv("SQL_DSN", "data/kpi.db"),
		SQLOrderColumn: getEnv("SQL_ORDER_COLUMN", ""),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
