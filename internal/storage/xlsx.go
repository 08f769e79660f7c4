package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/dennisdiepolder/champkpi/internal/types"
	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

// XLSXStore reads worksheets from a workbook on disk. The file is reopened on
// every fetch so edits made while the server runs are picked up.
type XLSXStore struct {
	path   string
	logger zerolog.Logger
}

// NewXLSXStore creates a store for the workbook at path
func NewXLSXStore(path string, logger zerolog.Logger) *XLSXStore {
	return &XLSXStore{
		path:   path,
		logger: logger.With().Str("component", "xlsx_store").Logger(),
	}
}

// Fetch reads one worksheet
func (s *XLSXStore) Fetch(ctx context.Context, table types.TableName) (*types.Table, error) {
	if err := checkTable(table); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, unavailable(table, err)
	}

	f, err := excelize.OpenFile(s.path)
	if err != nil {
		s.logger.Error().Err(err).Str("path", s.path).Msg("failed to open workbook")
		return nil, unavailable(table, err)
	}
	defer f.Close()

	if idx, err := f.GetSheetIndex(string(table)); err != nil || idx < 0 {
		return nil, unavailable(table, fmt.Errorf("worksheet not found in %s", s.path))
	}

	rows, err := f.GetRows(string(table))
	if err != nil {
		return nil, unavailable(table, err)
	}
	if len(rows) == 0 {
		return nil, unavailable(table, errors.New("empty worksheet"))
	}
	return types.NewTable(table, rows[0], rows[1:]), nil
}
