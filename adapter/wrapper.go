package adapter

import (
	"context"
	"time"

	"github.com/root-talis/kaizou/migration"
	"github.com/root-talis/kaizou/schema"
)

// Wrapper forwards every call to the inner adapter. Decorators embed it and
// override the calls they change.
type Wrapper struct {
	inner Adapter
}

func NewWrapper(inner Adapter) *Wrapper {
	return &Wrapper{inner: inner}
}

func (w *Wrapper) Inner() Adapter {
	return w.inner
}

func (w *Wrapper) AdapterType() string { return w.inner.AdapterType() }
func (w *Wrapper) Options() Options    { return w.inner.Options() }

func (w *Wrapper) Connect(ctx context.Context) error { return w.inner.Connect(ctx) }
func (w *Wrapper) Disconnect() error                 { return w.inner.Disconnect() }

func (w *Wrapper) HasTransactions() bool { return w.inner.HasTransactions() }

func (w *Wrapper) BeginTransaction(ctx context.Context) error {
	return w.inner.BeginTransaction(ctx)
}

func (w *Wrapper) CommitTransaction(ctx context.Context) error {
	return w.inner.CommitTransaction(ctx)
}

func (w *Wrapper) RollbackTransaction(ctx context.Context) error {
	return w.inner.RollbackTransaction(ctx)
}

func (w *Wrapper) Execute(ctx context.Context, sql string, args ...any) (int64, error) {
	return w.inner.Execute(ctx, sql, args...)
}

func (w *Wrapper) Query(ctx context.Context, sql string, args ...any) ([]Row, error) {
	return w.inner.Query(ctx, sql, args...)
}

func (w *Wrapper) FetchRow(ctx context.Context, sql string, args ...any) (Row, error) {
	return w.inner.FetchRow(ctx, sql, args...)
}

func (w *Wrapper) Insert(ctx context.Context, table *schema.Table, row Row) error {
	return w.inner.Insert(ctx, table, row)
}

func (w *Wrapper) BulkInsert(ctx context.Context, table *schema.Table, rows []Row) error {
	return w.inner.BulkInsert(ctx, table, rows)
}

func (w *Wrapper) QuoteTableName(name string) string  { return w.inner.QuoteTableName(name) }
func (w *Wrapper) QuoteColumnName(name string) string { return w.inner.QuoteColumnName(name) }

func (w *Wrapper) HasTable(ctx context.Context, name string) (bool, error) {
	return w.inner.HasTable(ctx, name)
}

func (w *Wrapper) CreateTable(ctx context.Context, table *schema.Table, columns []*schema.Column, indexes []*schema.Index) error {
	return w.inner.CreateTable(ctx, table, columns, indexes)
}

func (w *Wrapper) TruncateTable(ctx context.Context, name string) error {
	return w.inner.TruncateTable(ctx, name)
}

func (w *Wrapper) ExecuteActions(ctx context.Context, table *schema.Table, actions []schema.Action) error {
	return w.inner.ExecuteActions(ctx, table, actions)
}

func (w *Wrapper) GetColumns(ctx context.Context, tableName string) ([]*schema.Column, error) {
	return w.inner.GetColumns(ctx, tableName)
}

func (w *Wrapper) HasColumn(ctx context.Context, tableName, columnName string) (bool, error) {
	return w.inner.HasColumn(ctx, tableName, columnName)
}

func (w *Wrapper) HasIndex(ctx context.Context, tableName string, columns []string) (bool, error) {
	return w.inner.HasIndex(ctx, tableName, columns)
}

func (w *Wrapper) HasIndexByName(ctx context.Context, tableName, indexName string) (bool, error) {
	return w.inner.HasIndexByName(ctx, tableName, indexName)
}

func (w *Wrapper) HasPrimaryKey(ctx context.Context, tableName string, columns []string, constraint string) (bool, error) {
	return w.inner.HasPrimaryKey(ctx, tableName, columns, constraint)
}

func (w *Wrapper) HasForeignKey(ctx context.Context, tableName string, columns []string, constraint string) (bool, error) {
	return w.inner.HasForeignKey(ctx, tableName, columns, constraint)
}

func (w *Wrapper) GetSQLType(t schema.ColumnType, limit int) (SQLType, error) {
	return w.inner.GetSQLType(t, limit)
}

func (w *Wrapper) GetColumnType(sqlType string) (schema.ColumnType, error) {
	return w.inner.GetColumnType(sqlType)
}

func (w *Wrapper) ColumnTypes() []schema.ColumnType { return w.inner.ColumnTypes() }

func (w *Wrapper) IsValidColumnType(c *schema.Column) bool { return w.inner.IsValidColumnType(c) }

func (w *Wrapper) GetColumnForType(name string, t schema.ColumnType, opts schema.Options) (*schema.Column, error) {
	return w.inner.GetColumnForType(name, t, opts)
}

func (w *Wrapper) HasDatabase(ctx context.Context, name string) (bool, error) {
	return w.inner.HasDatabase(ctx, name)
}

func (w *Wrapper) CreateDatabase(ctx context.Context, name string) error {
	return w.inner.CreateDatabase(ctx, name)
}

func (w *Wrapper) DropDatabase(ctx context.Context, name string) error {
	return w.inner.DropDatabase(ctx, name)
}

func (w *Wrapper) SchemaTableName() string { return w.inner.SchemaTableName() }

func (w *Wrapper) HasSchemaTable(ctx context.Context) (bool, error) {
	return w.inner.HasSchemaTable(ctx)
}

func (w *Wrapper) CreateSchemaTable(ctx context.Context) error {
	return w.inner.CreateSchemaTable(ctx)
}

func (w *Wrapper) GetVersions(ctx context.Context) ([]migration.Version, error) {
	return w.inner.GetVersions(ctx)
}

func (w *Wrapper) GetVersionLog(ctx context.Context) ([]migration.Log, error) {
	return w.inner.GetVersionLog(ctx)
}

func (w *Wrapper) Migrated(ctx context.Context, m migration.Migration, dir migration.Direction, start, end time.Time) error {
	return w.inner.Migrated(ctx, m, dir, start, end)
}

func (w *Wrapper) ToggleBreakpoint(ctx context.Context, m migration.Migration) error {
	return w.inner.ToggleBreakpoint(ctx, m)
}

func (w *Wrapper) SetBreakpoint(ctx context.Context, m migration.Migration) error {
	return w.inner.SetBreakpoint(ctx, m)
}

func (w *Wrapper) UnsetBreakpoint(ctx context.Context, m migration.Migration) error {
	return w.inner.UnsetBreakpoint(ctx, m)
}

func (w *Wrapper) ResetAllBreakpoints(ctx context.Context) (int64, error) {
	return w.inner.ResetAllBreakpoints(ctx)
}

var _ Adapter = (*Wrapper)(nil)
