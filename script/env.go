package script

import (
	"context"

	"github.com/root-talis/kaizou/adapter"
	"github.com/root-talis/kaizou/migration"
	"github.com/root-talis/kaizou/schema"
	"github.com/root-talis/kaizou/table"
)

// Env is what a running migration sees. During the rollback of a Change
// migration the adapter is a recorder, so structural calls made through Env
// are captured instead of executed.
type Env struct {
	adapter   adapter.Adapter
	migration migration.Migration
	direction migration.Direction
}

func NewEnv(a adapter.Adapter, m migration.Migration, dir migration.Direction) *Env {
	return &Env{adapter: a, migration: m, direction: dir}
}

func (e *Env) Adapter() adapter.Adapter {
	return e.adapter
}

func (e *Env) Migration() migration.Migration {
	return e.migration
}

func (e *Env) Direction() migration.Direction {
	return e.direction
}

// Table starts a builder for the named table.
func (e *Env) Table(name string, opts schema.Options) *table.Table {
	return table.New(name, opts, e.adapter)
}

// ---

func (e *Env) Execute(ctx context.Context, sql string, args ...any) (int64, error) {
	return e.adapter.Execute(ctx, sql, args...)
}

func (e *Env) Query(ctx context.Context, sql string, args ...any) ([]adapter.Row, error) {
	return e.adapter.Query(ctx, sql, args...)
}

func (e *Env) FetchRow(ctx context.Context, sql string, args ...any) (adapter.Row, error) {
	return e.adapter.FetchRow(ctx, sql, args...)
}

// Insert writes rows into an existing table right away.
func (e *Env) Insert(ctx context.Context, tableName string, rows ...adapter.Row) error {
	return e.adapter.BulkInsert(ctx, schema.NewTable(tableName, nil), rows)
}

// ---

func (e *Env) HasTable(ctx context.Context, name string) (bool, error) {
	return e.adapter.HasTable(ctx, name)
}

func (e *Env) HasColumn(ctx context.Context, tableName, columnName string) (bool, error) {
	return e.adapter.HasColumn(ctx, tableName, columnName)
}

func (e *Env) RenameTable(ctx context.Context, oldName, newName string) error {
	return e.Table(oldName, nil).Rename(newName).Update(ctx)
}

func (e *Env) DropTable(ctx context.Context, name string) error {
	return e.Table(name, nil).Drop().Update(ctx)
}

func (e *Env) TruncateTable(ctx context.Context, name string) error {
	return e.adapter.TruncateTable(ctx, name)
}
