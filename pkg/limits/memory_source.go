package limits

import (
	"context"
	"sync"
)

// Source defines how limit tables are loaded into a Factory.
type Source interface {
	Load(ctx context.Context) (Table, error)
}

// inMemSource implements the Source interface using an in-memory table.
type inMemSource struct {
	mu    sync.RWMutex
	table Table
}

// NewInMemSource returns an in-memory Source with a deep copy of the given table.
// A nil table falls back to DefaultTable.
func NewInMemSource(table Table) Source {
	if table == nil {
		table = DefaultTable()
	}
	return &inMemSource{table: table.Clone()}
}

// Load returns a copy of the table.
func (s *inMemSource) Load(ctx context.Context) (Table, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.table.Clone(), nil
}
