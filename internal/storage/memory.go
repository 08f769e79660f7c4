package storage

import (
	"context"
	"errors"
	"sync"

	"github.com/dennisdiepolder/champkpi/internal/types"
)

// MemoryStore serves tables held in memory. It backs tests and the
// SOURCE_MODE=memory development mode.
type MemoryStore struct {
	tables map[types.TableName]*types.Table
	mu     sync.RWMutex
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tables: make(map[types.TableName]*types.Table)}
}

// Put replaces the snapshot of a table
func (s *MemoryStore) Put(t *types.Table) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables[t.Name] = t
}

// Fetch returns a copy of the stored table's row slice
func (s *MemoryStore) Fetch(ctx context.Context, table types.TableName) (*types.Table, error) {
	if err := checkTable(table); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, unavailable(table, err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tables[table]
	if !ok {
		return nil, unavailable(table, errors.New("table not loaded"))
	}
	rows := make([]types.Row, len(t.Rows))
	copy(rows, t.Rows)
	return &types.Table{Name: t.Name, Columns: append([]string(nil), t.Columns...), Rows: rows}, nil
}

// Load copies every table src can serve into the store and returns how many
// were loaded. Tables src cannot serve are left as they are.
func (s *MemoryStore) Load(ctx context.Context, src Store) (int, error) {
	loaded := 0
	var errs []error
	for _, name := range types.AllTables {
		t, err := src.Fetch(ctx, name)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		s.Put(t)
		loaded++
	}
	return loaded, errors.Join(errs...)
}
