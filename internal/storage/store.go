package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/dennisdiepolder/champkpi/internal/types"
)

// ErrSourceUnavailable is returned when a table cannot be read. It is fatal
// for the current request.
var ErrSourceUnavailable = errors.New("source unavailable")

// Store is the read-only Record Store Adapter
type Store interface {
	// Fetch returns every row of the table in source order
	Fetch(ctx context.Context, table types.TableName) (*types.Table, error)
}

// unavailable wraps err so callers can match ErrSourceUnavailable
func unavailable(table types.TableName, err error) error {
	return fmt.Errorf("%w: table %q: %v", ErrSourceUnavailable, table, err)
}

func checkTable(table types.TableName) error {
	if !table.Valid() {
		return unavailable(table, errors.New("unknown table"))
	}
	return nil
}
