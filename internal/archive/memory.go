package archive

import (
	"context"
	"slices"
	"sync"
)

// Memory is an in-process Store. The zero value is ready to use.
type Memory struct {
	mu      sync.RWMutex
	records []Record
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory { return &Memory{} }

func (m *Memory) Append(ctx context.Context, rec Record) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.appendLocked(rec), nil
}

func (m *Memory) appendLocked(rec Record) int {
	rec.Index = len(m.records)
	m.records = append(m.records, rec)
	return rec.Index
}

func (m *Memory) Get(ctx context.Context, index int) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if index < 0 || index >= len(m.records) {
		return Record{}, ErrNotFound
	}
	return m.records[index], nil
}

func (m *Memory) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records), nil
}

func (m *Memory) List(ctx context.Context) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.records), nil
}

func (m *Memory) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = nil
	return nil
}
