package storage

import (
	"context"
	"os"

	"github.com/rs/zerolog"
)

// NewStore creates the appropriate store based on configuration
func NewStore(ctx context.Context, cfg SourceConfig, logger zerolog.Logger) (Store, error) {
	switch cfg.Mode {
	case SourceSheet:
		return NewSheetStore(cfg, logger)
	case SourceXLSX:
		logger.Info().Str("path", cfg.XLSXPath).Msg("reading tables from workbook")
		return NewXLSXStore(cfg.XLSXPath, logger), nil
	case SourceDynamo:
		return NewDynamoDBStore(ctx, cfg, logger)
	case SourceSQL:
		return NewSQLStore(ctx, cfg.SQLDriver, cfg.SQLDSN, cfg.SQLOrderColumn, logger)
	default:
		return newSeededMemoryStore(ctx, cfg.XLSXPath, logger), nil
	}
}

// newSeededMemoryStore preloads the workbook at path when there is one
func newSeededMemoryStore(ctx context.Context, path string, logger zerolog.Logger) *MemoryStore {
	store := NewMemoryStore()
	if _, err := os.Stat(path); err != nil {
		logger.Warn().Msg("SOURCE_MODE=memory: serving empty in-memory tables")
		return store
	}

	loaded, err := store.Load(ctx, NewXLSXStore(path, logger))
	if err != nil {
		logger.Warn().Err(err).Msg("workbook seed incomplete")
	}
	logger.Info().Str("path", path).Int("tables", loaded).Msg("in-memory tables seeded from workbook")
	return store
}
