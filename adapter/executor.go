package adapter

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Executor runs SQL against a live database. The adapters issue statements
// through it; tests swap in a recorder.
type Executor interface {
	Execute(ctx context.Context, query string, args ...any) (int64, error)
	Query(ctx context.Context, query string, args ...any) ([]Row, error)
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error
	Close() error
}

// ---

type sqlExecutor struct {
	db *sql.DB
	tx *sql.Tx
}

// NewSQLExecutor adapts a database/sql pool. Statements run on the open
// transaction when there is one.
func NewSQLExecutor(db *sql.DB) Executor {
	return &sqlExecutor{db: db}
}

type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (e *sqlExecutor) conn() queryer {
	if e.tx != nil {
		return e.tx
	}
	return e.db
}

func (e *sqlExecutor) Execute(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := e.conn().ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		// not every driver reports it for DDL
		return 0, nil //nolint:nilerr
	}
	return affected, nil
}

func (e *sqlExecutor) Query(ctx context.Context, query string, args ...any) ([]Row, error) {
	rows, err := e.conn().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRows(rows)
}

func scanRows(rows *sql.Rows) ([]Row, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read result columns: %w", err)
	}

	result := make([]Row, 0)
	for rows.Next() {
		values := make([]any, len(columns))
		pointers := make([]any, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}

		if err := rows.Scan(pointers...); err != nil {
			return nil, fmt.Errorf("failed to scan a row: %w", err)
		}

		row := make(Row, len(columns))
		for i, column := range columns {
			if b, ok := values[i].([]byte); ok {
				row[column] = string(b)
			} else {
				row[column] = values[i]
			}
		}
		result = append(result, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}

	return result, nil
}

func (e *sqlExecutor) Begin(ctx context.Context) error {
	if e.tx != nil {
		return fmt.Errorf("a transaction is already open")
	}
	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	e.tx = tx
	return nil
}

func (e *sqlExecutor) Commit() error {
	if e.tx == nil {
		return ErrNoTransaction
	}
	err := e.tx.Commit()
	e.tx = nil
	return err
}

func (e *sqlExecutor) Rollback() error {
	if e.tx == nil {
		return ErrNoTransaction
	}
	err := e.tx.Rollback()
	e.tx = nil
	return err
}

func (e *sqlExecutor) Close() error {
	if e.tx != nil {
		_ = e.tx.Rollback()
		e.tx = nil
	}
	return e.db.Close()
}

// ---

// Row is one result row keyed by column name. Byte slices are returned as
// strings.
type Row map[string]any

func (r Row) String(key string) string {
	switch v := r[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case time.Time:
		return v.Format(time.DateTime)
	default:
		return fmt.Sprint(v)
	}
}

func (r Row) Int(key string) int64 {
	switch v := r[key].(type) {
	case int64:
		return v
	case int32:
		return int64(v)
	case int:
		return int64(v)
	case uint64:
		return int64(v) //nolint:gosec
	case float64:
		return int64(v)
	case bool:
		if v {
			return 1
		}
		return 0
	case nil:
		return 0
	default:
		n, _ := strconv.ParseInt(strings.TrimSpace(r.String(key)), 10, 64)
		return n
	}
}

func (r Row) Bool(key string) bool {
	switch v := r[key].(type) {
	case bool:
		return v
	case nil:
		return false
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "t", "true", "y", "yes":
			return true
		}
		return false
	default:
		return r.Int(key) != 0
	}
}

// Time parses driver values and the common textual timestamp layouts. A
// NULL or unparsable value yields the zero time.
func (r Row) Time(key string) time.Time {
	switch v := r[key].(type) {
	case time.Time:
		return v
	case nil:
		return time.Time{}
	default:
		s := r.String(key)
		for _, layout := range []string{time.DateTime, time.RFC3339Nano, "2006-01-02 15:04:05.999999999", "2006-01-02T15:04:05"} {
			if t, err := time.Parse(layout, s); err == nil {
				return t
			}
		}
		return time.Time{}
	}
}

// Has reports whether the column is present and not NULL.
func (r Row) Has(key string) bool {
	v, ok := r[key]
	return ok && v != nil
}
