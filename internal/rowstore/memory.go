// internal/rowstore/memory.go
package rowstore

import (
	"context"
	"fmt"
	"sync"
)

type memoryRow struct {
	handle Handle
	record Record
}

// MemoryStore is an in-process Store used by tests and as the fallback
// backend when no database is configured. Rows are kept in insertion
// order; handles grow monotonically and are never reused.
type MemoryStore struct {
	mu     sync.RWMutex
	tables []Table
	rows   map[string][]memoryRow
	nextID Handle
}

// NewMemoryStore creates an empty in-memory row store over the given schema.
func NewMemoryStore(tables []Table) *MemoryStore {
	return &MemoryStore{
		tables: tables,
		rows:   make(map[string][]memoryRow),
		nextID: 1,
	}
}

func (s *MemoryStore) AppendRow(ctx context.Context, table string, values []string) error {
	_ = ctx

	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := findTable(s.tables, table)
	if !ok {
		return fmt.Errorf("append row: %w: %s", ErrUnknownTable, table)
	}
	if len(values) != len(t.Headers) {
		return fmt.Errorf("append row to %s: %w: got %d values for %d headers",
			table, ErrInvalidInput, len(values), len(t.Headers))
	}

	rec := make(Record, len(t.Headers))
	for i, h := range t.Headers {
		rec[h] = values[i]
	}
	s.rows[table] = append(s.rows[table], memoryRow{handle: s.nextID, record: rec})
	s.nextID++
	return nil
}

func (s *MemoryStore) ListRecords(ctx context.Context, table string) ([]Record, error) {
	_ = ctx

	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := findTable(s.tables, table); !ok {
		return nil, fmt.Errorf("list records: %w: %s", ErrUnknownTable, table)
	}

	records := make([]Record, 0, len(s.rows[table]))
	for _, row := range s.rows[table] {
		records = append(records, cloneRecord(row.record))
	}
	return records, nil
}

func (s *MemoryStore) FindRowByField(ctx context.Context, table, field, value string) (Handle, Record, error) {
	_ = ctx

	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := findTable(s.tables, table)
	if !ok {
		return 0, nil, fmt.Errorf("find row: %w: %s", ErrUnknownTable, table)
	}
	if !hasHeader(t, field) {
		return 0, nil, fmt.Errorf("find row in %s: %w: no such field %q", table, ErrInvalidInput, field)
	}

	for _, row := range s.rows[table] {
		if row.record[field] == value {
			return row.handle, cloneRecord(row.record), nil
		}
	}
	return 0, nil, fmt.Errorf("find row in %s where %s=%s: %w", table, field, value, ErrNotFound)
}

func (s *MemoryStore) UpdateRow(ctx context.Context, table string, handle Handle, record Record) error {
	_ = ctx

	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := findTable(s.tables, table)
	if !ok {
		return fmt.Errorf("update row: %w: %s", ErrUnknownTable, table)
	}

	for i, row := range s.rows[table] {
		if row.handle != handle {
			continue
		}
		for _, h := range t.Headers {
			if v, present := record[h]; present {
				s.rows[table][i].record[h] = v
			}
		}
		return nil
	}
	return fmt.Errorf("update row %d in %s: %w", handle, table, ErrNotFound)
}

func (s *MemoryStore) DeleteRow(ctx context.Context, table string, handle Handle) error {
	_ = ctx

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := findTable(s.tables, table); !ok {
		return fmt.Errorf("delete row: %w: %s", ErrUnknownTable, table)
	}

	rows := s.rows[table]
	for i, row := range rows {
		if row.handle == handle {
			s.rows[table] = append(rows[:i], rows[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("delete row %d from %s: %w", handle, table, ErrNotFound)
}

func cloneRecord(r Record) Record {
	clone := make(Record, len(r))
	for k, v := range r {
		clone[k] = v
	}
	return clone
}
