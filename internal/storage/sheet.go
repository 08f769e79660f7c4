package storage

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dennisdiepolder/champkpi/internal/types"
	"github.com/rs/zerolog"
)

// SheetStore reads worksheets of a Google spreadsheet through its CSV export
type SheetStore struct {
	baseURL string
	sheetID string
	client  *http.Client
	logger  zerolog.Logger
}

// NewSheetStore creates a store for the spreadsheet with the given ID
func NewSheetStore(cfg SourceConfig, logger zerolog.Logger) (*SheetStore, error) {
	if cfg.SheetID == "" {
		return nil, errors.New("SHEET_ID is required for SOURCE_MODE=sheet")
	}
	return &SheetStore{
		baseURL: strings.TrimSuffix(cfg.SheetBaseURL, "/"),
		sheetID: cfg.SheetID,
		client:  &http.Client{Timeout: 30 * time.Second},
		logger:  logger.With().Str("component", "sheet_store").Logger(),
	}, nil
}

// exportURL is the CSV export of one worksheet, addressed by name
func (s *SheetStore) exportURL(table types.TableName) string {
	q := url.Values{}
	q.Set("tqx", "out:csv")
	q.Set("sheet", string(table))
	return fmt.Sprintf("%s/spreadsheets/d/%s/gviz/tq?%s", s.baseURL, url.PathEscape(s.sheetID), q.Encode())
}

// Fetch downloads and parses one worksheet
func (s *SheetStore) Fetch(ctx context.Context, table types.TableName) (*types.Table, error) {
	if err := checkTable(table); err != nil {
		return nil, err
	}

	u := s.exportURL(table)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, unavailable(table, err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Error().Err(err).Str("table", string(table)).Msg("failed to reach spreadsheet")
		return nil, unavailable(table, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, unavailable(table, fmt.Errorf("export returned status %d", resp.StatusCode))
	}
	// A missing worksheet is answered with an HTML error page
	if ct := resp.Header.Get("Content-Type"); strings.HasPrefix(ct, "text/html") {
		return nil, unavailable(table, errors.New("worksheet not found"))
	}

	return parseCSV(table, resp.Body)
}

// parseCSV turns a CSV document with a header line into a Table
func parseCSV(table types.TableName, r io.Reader) (*types.Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, unavailable(table, fmt.Errorf("invalid csv: %w", err))
	}
	if len(records) == 0 {
		return nil, unavailable(table, errors.New("empty worksheet"))
	}
	return types.NewTable(table, records[0], records[1:]), nil
}
