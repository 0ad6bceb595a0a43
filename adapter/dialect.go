package adapter

import (
	"context"
	"database/sql"

	"github.com/root-talis/kaizou/schema"
)

// Dialect is what a concrete backend implements on top of Base. A backend
// type embeds *Base and passes itself to NewBase; the methods below plus the
// ones promoted from Base make it a complete Adapter.
type Dialect interface {
	AdapterType() string
	DriverName() string
	DSN() (string, error)

	QuoteTableName(name string) string
	QuoteColumnName(name string) string
	QuoteString(s string) string
	BoolLiteral(b bool) string

	GetSQLType(t schema.ColumnType, limit int) (SQLType, error)
	GetColumnType(sqlType string) (schema.ColumnType, error)
	ColumnTypes() []schema.ColumnType

	HasTable(ctx context.Context, name string) (bool, error)
	GetColumns(ctx context.Context, tableName string) ([]*schema.Column, error)
	Indexes(ctx context.Context, tableName string) ([]IndexInfo, error)
	ForeignKeys(ctx context.Context, tableName string) ([]ForeignKeyInfo, error)
	PrimaryKey(ctx context.Context, tableName string) (PrimaryKeyInfo, error)
	// FoldsForeignKeyCase reports whether foreign key columns are compared
	// case-insensitively.
	FoldsForeignKeyCase() bool

	HasDatabase(ctx context.Context, name string) (bool, error)
	CreateDatabase(ctx context.Context, name string) error
	DropDatabase(ctx context.Context, name string) error
	TruncateTable(ctx context.Context, name string) error

	CreateTableSQL(ctx context.Context, table *schema.Table, columns []*schema.Column, indexes []*schema.Index) ([]string, error)
	AlterTableSQL(tableName string, parts []string) []string

	RenameTableInstructions(ctx context.Context, tableName, newName string) (*AlterInstructions, error)
	DropTableInstructions(ctx context.Context, tableName string) (*AlterInstructions, error)
	AddColumnInstructions(ctx context.Context, table *schema.Table, column *schema.Column) (*AlterInstructions, error)
	RenameColumnInstructions(ctx context.Context, tableName, columnName, newName string) (*AlterInstructions, error)
	ChangeColumnInstructions(ctx context.Context, tableName, columnName string, column *schema.Column) (*AlterInstructions, error)
	DropColumnInstructions(ctx context.Context, tableName, columnName string) (*AlterInstructions, error)
	AddIndexInstructions(ctx context.Context, table *schema.Table, index *schema.Index) (*AlterInstructions, error)
	DropIndexByColumnsInstructions(ctx context.Context, tableName string, columns []string) (*AlterInstructions, error)
	DropIndexByNameInstructions(ctx context.Context, tableName, indexName string) (*AlterInstructions, error)
	AddForeignKeyInstructions(ctx context.Context, table *schema.Table, fk *schema.ForeignKey) (*AlterInstructions, error)
	DropForeignKeyInstructions(ctx context.Context, tableName string, columns []string, constraint string) (*AlterInstructions, error)
	ChangePrimaryKeyInstructions(ctx context.Context, table *schema.Table, columns []string) (*AlterInstructions, error)
	ChangeCommentInstructions(ctx context.Context, table *schema.Table, comment *string) (*AlterInstructions, error)
}

// DBConfigurer is implemented by dialects that tune a freshly opened pool.
type DBConfigurer interface {
	ConfigureDB(ctx context.Context, db *sql.DB) error
}

// LimitConstants is implemented by dialects that accept symbolic column
// limits such as "TEXT_LONG".
type LimitConstants interface {
	LimitConstant(name string) (int, bool)
}
