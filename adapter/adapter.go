// Package adapter defines the contract every database backend satisfies, the
// shared SQL machinery backends embed, and the registry that maps adapter
// keys ("mysql", "pgsql", ...) to constructors.
package adapter

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/root-talis/kaizou/migration"
	"github.com/root-talis/kaizou/schema"
)

type Adapter interface {
	AdapterType() string
	Options() Options

	Connect(ctx context.Context) error
	Disconnect() error

	HasTransactions() bool
	BeginTransaction(ctx context.Context) error
	CommitTransaction(ctx context.Context) error
	RollbackTransaction(ctx context.Context) error

	Execute(ctx context.Context, sql string, args ...any) (int64, error)
	Query(ctx context.Context, sql string, args ...any) ([]Row, error)
	FetchRow(ctx context.Context, sql string, args ...any) (Row, error)
	Insert(ctx context.Context, table *schema.Table, row Row) error
	BulkInsert(ctx context.Context, table *schema.Table, rows []Row) error

	QuoteTableName(name string) string
	QuoteColumnName(name string) string

	HasTable(ctx context.Context, name string) (bool, error)
	CreateTable(ctx context.Context, table *schema.Table, columns []*schema.Column, indexes []*schema.Index) error
	TruncateTable(ctx context.Context, name string) error
	ExecuteActions(ctx context.Context, table *schema.Table, actions []schema.Action) error

	GetColumns(ctx context.Context, tableName string) ([]*schema.Column, error)
	HasColumn(ctx context.Context, tableName, columnName string) (bool, error)
	HasIndex(ctx context.Context, tableName string, columns []string) (bool, error)
	HasIndexByName(ctx context.Context, tableName, indexName string) (bool, error)
	HasPrimaryKey(ctx context.Context, tableName string, columns []string, constraint string) (bool, error)
	HasForeignKey(ctx context.Context, tableName string, columns []string, constraint string) (bool, error)

	GetSQLType(t schema.ColumnType, limit int) (SQLType, error)
	GetColumnType(sqlType string) (schema.ColumnType, error)
	ColumnTypes() []schema.ColumnType
	IsValidColumnType(c *schema.Column) bool
	GetColumnForType(name string, t schema.ColumnType, opts schema.Options) (*schema.Column, error)

	HasDatabase(ctx context.Context, name string) (bool, error)
	CreateDatabase(ctx context.Context, name string) error
	DropDatabase(ctx context.Context, name string) error

	SchemaTableName() string
	HasSchemaTable(ctx context.Context) (bool, error)
	CreateSchemaTable(ctx context.Context) error
	GetVersions(ctx context.Context) ([]migration.Version, error)
	GetVersionLog(ctx context.Context) ([]migration.Log, error)
	Migrated(ctx context.Context, m migration.Migration, dir migration.Direction, start, end time.Time) error
	ToggleBreakpoint(ctx context.Context, m migration.Migration) error
	SetBreakpoint(ctx context.Context, m migration.Migration) error
	UnsetBreakpoint(ctx context.Context, m migration.Migration) error
	ResetAllBreakpoints(ctx context.Context) (int64, error)
}

// ---

// SQLType is a native type as a dialect spells it.
type SQLType struct {
	Name  string
	Limit int
	Scale int
}

func (t SQLType) String() string {
	switch {
	case t.Limit > 0 && t.Scale > 0:
		return fmt.Sprintf("%s(%d,%d)", t.Name, t.Limit, t.Scale)
	case t.Limit > 0:
		return t.Name + "(" + strconv.Itoa(t.Limit) + ")"
	default:
		return t.Name
	}
}

// ---

// IndexInfo, ForeignKeyInfo and PrimaryKeyInfo are table metadata as read
// back from the database.
type IndexInfo struct {
	Name    string
	Columns []string
	Unique  bool
}

type ForeignKeyInfo struct {
	Name              string
	Columns           []string
	ReferencedTable   string
	ReferencedColumns []string
}

type PrimaryKeyInfo struct {
	Name    string
	Columns []string
}

// ---

// AlterInstructions collect the pieces of an ALTER TABLE statement plus the
// statements that must run after it.
type AlterInstructions struct {
	AlterParts []string
	PostSteps  []string
}

func NewAlterInstructions(parts []string, post []string) *AlterInstructions {
	return &AlterInstructions{AlterParts: parts, PostSteps: post}
}

func (i *AlterInstructions) AddAlter(part string) {
	i.AlterParts = append(i.AlterParts, part)
}

func (i *AlterInstructions) AddPostStep(sql string) {
	i.PostSteps = append(i.PostSteps, sql)
}

func (i *AlterInstructions) Merge(other *AlterInstructions) {
	if other == nil {
		return
	}
	i.AlterParts = append(i.AlterParts, other.AlterParts...)
	i.PostSteps = append(i.PostSteps, other.PostSteps...)
}

func (i *AlterInstructions) Empty() bool {
	return len(i.AlterParts) == 0 && len(i.PostSteps) == 0
}
