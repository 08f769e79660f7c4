package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/dennisdiepolder/champkpi/internal/types"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

// SQLStore reads each worksheet from a database table of the same name.
// Supported drivers are "sqlite3" and "pgx".
//
// Rows come back in source order: by orderColumn when set (the column is not
// part of the returned table), by rowid on sqlite, and in whatever order the
// database returns otherwise.
type SQLStore struct {
	db          *sql.DB
	driver      string
	orderColumn string
	logger      zerolog.Logger
}

// NewSQLStore opens the database and checks it is reachable
func NewSQLStore(ctx context.Context, driver, dsn, orderColumn string, logger zerolog.Logger) (*SQLStore, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driver, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to reach %s database: %w", driver, err)
	}

	if orderColumn == "" && driver != "sqlite3" {
		logger.Warn().Str("driver", driver).Msg("SQL_ORDER_COLUMN not set, duplicate rows resolve in database order")
	}
	logger.Info().Str("driver", driver).Str("order_column", orderColumn).Msg("SQL store initialized")

	return &SQLStore{
		db:          db,
		driver:      driver,
		orderColumn: orderColumn,
		logger:      logger.With().Str("component", "sql_store").Logger(),
	}, nil
}

// selectQuery reads a whole table in source order
func (s *SQLStore) selectQuery(table types.TableName) string {
	q := "SELECT * FROM " + quoteIdent(string(table))
	switch {
	case s.orderColumn != "":
		q += " ORDER BY " + quoteIdent(s.orderColumn)
	case s.driver == "sqlite3":
		q += " ORDER BY rowid"
	}
	return q
}

// Close releases the database handle
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// Fetch selects every row of the table in insertion order
func (s *SQLStore) Fetch(ctx context.Context, table types.TableName) (*types.Table, error) {
	if err := checkTable(table); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, s.selectQuery(table))
	if err != nil {
		s.logger.Error().Err(err).Str("table", string(table)).Msg("failed to query table")
		return nil, unavailable(table, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, unavailable(table, err)
	}

	var records [][]string
	for rows.Next() {
		values := make([]sql.NullString, len(columns))
		dest := make([]any, len(columns))
		for i := range values {
			dest[i] = &values[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, unavailable(table, err)
		}

		record := make([]string, len(columns))
		for i, v := range values {
			if v.Valid {
				record[i] = v.String
			}
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable(table, err)
	}

	if s.orderColumn != "" {
		columns, records = dropColumn(columns, records, s.orderColumn)
	}
	return types.NewTable(table, columns, records), nil
}

// dropColumn removes the named column from the header and every record
func dropColumn(columns []string, records [][]string, name string) ([]string, [][]string) {
	idx := -1
	for i, col := range columns {
		if col == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return columns, records
	}

	kept := append(append([]string{}, columns[:idx]...), columns[idx+1:]...)
	for i, record := range records {
		records[i] = append(append([]string{}, record[:idx]...), record[idx+1:]...)
	}
	return kept, records
}

// quoteIdent double-quotes an identifier; worksheet names contain spaces
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
