package types

import "strings"

// Row is a single spreadsheet row keyed by trimmed column name
type Row map[string]string

// Get returns the trimmed value of a column, or "" when absent
func (r Row) Get(field string) string {
	return strings.TrimSpace(r[field])
}

// Has reports whether the column holds a non-blank value
func (r Row) Has(field string) bool {
	return r.Get(field) != ""
}

// Table is a snapshot of one worksheet in source order
type Table struct {
	Name    TableName `json:"name"`
	Columns []string  `json:"columns"`
	Rows    []Row     `json:"rows"`
}

// NewTable builds a Table from a header and raw records, trimming column
// names and cell values. Records shorter than the header leave the missing
// columns blank; cells beyond the header are dropped.
func NewTable(name TableName, header []string, records [][]string) *Table {
	columns := make([]string, len(header))
	for i, h := range header {
		columns[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}

	rows := make([]Row, 0, len(records))
	for _, record := range records {
		if isBlankRecord(record) {
			continue
		}
		row := make(Row, len(columns))
		for i, col := range columns {
			if col == "" {
				continue
			}
			if i < len(record) {
				row[col] = strings.TrimSpace(record[i])
			} else {
				row[col] = ""
			}
		}
		rows = append(rows, row)
	}

	return &Table{Name: name, Columns: columns, Rows: rows}
}

// HasColumn reports whether the header contains the column
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

func isBlankRecord(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
