// internal/rowstore/postgres.go
package rowstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// PostgresStore implements Store on top of Postgres. Each logical table
// maps to one relation of TEXT columns named after the declared headers,
// with a BIGSERIAL row_id serving as the row handle.
type PostgresStore struct {
	db     *sql.DB
	tables []Table
	tracer trace.Tracer
}

// NewPostgresStore creates a Postgres-backed row store over the given schema.
func NewPostgresStore(db *sql.DB, tables []Table) *PostgresStore {
	return &PostgresStore{
		db:     db,
		tables: tables,
		tracer: otel.Tracer("stockbook/rowstore"),
	}
}

// EnsureTables creates any missing relations for the declared schema.
func (s *PostgresStore) EnsureTables(ctx context.Context) error {
	for _, t := range s.tables {
		cols := make([]string, 0, len(t.Headers))
		for _, h := range t.Headers {
			cols = append(cols, fmt.Sprintf("%q TEXT NOT NULL DEFAULT ''", h))
		}
		query := fmt.Sprintf(
			"CREATE TABLE IF NOT EXISTS %q (row_id BIGSERIAL PRIMARY KEY, %s)",
			t.Name, strings.Join(cols, ", "),
		)
		if _, err := s.db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("ensure table %s: %w: %v", t.Name, ErrStorageUnavailable, err)
		}
	}
	return nil
}

// AppendRow inserts values in header order.
func (s *PostgresStore) AppendRow(ctx context.Context, table string, values []string) error {
	ctx, span := s.tracer.Start(ctx, "rowstore.append",
		trace.WithAttributes(attribute.String("table", table)),
	)
	defer span.End()

	t, ok := findTable(s.tables, table)
	if !ok {
		return fmt.Errorf("append row: %w: %s", ErrUnknownTable, table)
	}
	if len(values) != len(t.Headers) {
		return fmt.Errorf("append row to %s: %w: got %d values for %d headers",
			table, ErrInvalidInput, len(values), len(t.Headers))
	}

	cols := make([]string, len(t.Headers))
	placeholders := make([]string, len(t.Headers))
	args := make([]interface{}, len(values))
	for i, h := range t.Headers {
		cols[i] = fmt.Sprintf("%q", h)
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = values[i]
	}

	query := fmt.Sprintf("INSERT INTO %q (%s) VALUES (%s)",
		table, strings.Join(cols, ", "), strings.Join(placeholders, ", "))
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("append row to %s: %w: %v", table, ErrStorageUnavailable, err)
	}
	return nil
}

// ListRecords returns every row of a table in insertion order.
func (s *PostgresStore) ListRecords(ctx context.Context, table string) ([]Record, error) {
	ctx, span := s.tracer.Start(ctx, "rowstore.list",
		trace.WithAttributes(attribute.String("table", table)),
	)
	defer span.End()

	t, ok := findTable(s.tables, table)
	if !ok {
		return nil, fmt.Errorf("list records: %w: %s", ErrUnknownTable, table)
	}

	rows, err := s.db.QueryContext(ctx, s.selectQuery(t)+" ORDER BY row_id ASC")
	if err != nil {
		return nil, fmt.Errorf("list records from %s: %w: %v", table, ErrStorageUnavailable, err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		_, rec, err := scanRecord(rows, t)
		if err != nil {
			return nil, fmt.Errorf("scan record from %s: %w: %v", table, ErrStorageUnavailable, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records from %s: %w: %v", table, ErrStorageUnavailable, err)
	}

	span.SetAttributes(attribute.Int("records", len(records)))
	return records, nil
}

// FindRowByField returns the first row whose field equals value.
func (s *PostgresStore) FindRowByField(ctx context.Context, table, field, value string) (Handle, Record, error) {
	ctx, span := s.tracer.Start(ctx, "rowstore.find",
		trace.WithAttributes(
			attribute.String("table", table),
			attribute.String("field", field),
		),
	)
	defer span.End()

	t, ok := findTable(s.tables, table)
	if !ok {
		return 0, nil, fmt.Errorf("find row: %w: %s", ErrUnknownTable, table)
	}
	if !hasHeader(t, field) {
		return 0, nil, fmt.Errorf("find row in %s: %w: no such field %q", table, ErrInvalidInput, field)
	}

	query := s.selectQuery(t) + fmt.Sprintf(" WHERE %q = $1 ORDER BY row_id ASC LIMIT 1", field)
	rows, err := s.db.QueryContext(ctx, query, value)
	if err != nil {
		return 0, nil, fmt.Errorf("find row in %s: %w: %v", table, ErrStorageUnavailable, err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return 0, nil, fmt.Errorf("find row in %s: %w: %v", table, ErrStorageUnavailable, err)
		}
		return 0, nil, fmt.Errorf("find row in %s where %s=%s: %w", table, field, value, ErrNotFound)
	}
	handle, rec, err := scanRecord(rows, t)
	if err != nil {
		return 0, nil, fmt.Errorf("scan row from %s: %w: %v", table, ErrStorageUnavailable, err)
	}
	return handle, rec, nil
}

// UpdateRow overwrites the fields present in record for the row at handle.
func (s *PostgresStore) UpdateRow(ctx context.Context, table string, handle Handle, record Record) error {
	ctx, span := s.tracer.Start(ctx, "rowstore.update",
		trace.WithAttributes(
			attribute.String("table", table),
			attribute.Int64("handle", int64(handle)),
		),
	)
	defer span.End()

	t, ok := findTable(s.tables, table)
	if !ok {
		return fmt.Errorf("update row: %w: %s", ErrUnknownTable, table)
	}

	var sets []string
	var args []interface{}
	for _, h := range t.Headers {
		v, present := record[h]
		if !present {
			continue
		}
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%q = $%d", h, len(args)))
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, int64(handle))

	query := fmt.Sprintf("UPDATE %q SET %s WHERE row_id = $%d",
		table, strings.Join(sets, ", "), len(args))
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update row in %s: %w: %v", table, ErrStorageUnavailable, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("update row %d in %s: %w", handle, table, ErrNotFound)
	}
	return nil
}

// DeleteRow removes the row at handle.
func (s *PostgresStore) DeleteRow(ctx context.Context, table string, handle Handle) error {
	ctx, span := s.tracer.Start(ctx, "rowstore.delete",
		trace.WithAttributes(
			attribute.String("table", table),
			attribute.Int64("handle", int64(handle)),
		),
	)
	defer span.End()

	if _, ok := findTable(s.tables, table); !ok {
		return fmt.Errorf("delete row: %w: %s", ErrUnknownTable, table)
	}

	query := fmt.Sprintf("DELETE FROM %q WHERE row_id = $1", table)
	res, err := s.db.ExecContext(ctx, query, int64(handle))
	if err != nil {
		return fmt.Errorf("delete row from %s: %w: %v", table, ErrStorageUnavailable, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("delete row %d from %s: %w", handle, table, ErrNotFound)
	}
	return nil
}

func (s *PostgresStore) selectQuery(t Table) string {
	cols := make([]string, 0, len(t.Headers)+1)
	cols = append(cols, "row_id")
	for _, h := range t.Headers {
		cols = append(cols, fmt.Sprintf("%q", h))
	}
	return fmt.Sprintf("SELECT %s FROM %q", strings.Join(cols, ", "), t.Name)
}

func scanRecord(rows *sql.Rows, t Table) (Handle, Record, error) {
	var rowID int64
	values := make([]string, len(t.Headers))
	dest := make([]interface{}, 0, len(t.Headers)+1)
	dest = append(dest, &rowID)
	for i := range values {
		dest = append(dest, &values[i])
	}
	if err := rows.Scan(dest...); err != nil {
		return 0, nil, err
	}
	rec := make(Record, len(t.Headers))
	for i, h := range t.Headers {
		rec[h] = values[i]
	}
	return Handle(rowID), rec, nil
}

func hasHeader(t Table, field string) bool {
	for _, h := range t.Headers {
		if h == field {
			return true
		}
	}
	return false
}
