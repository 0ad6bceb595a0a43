package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/root-talis/kaizou/adapter"
	"github.com/root-talis/kaizou/schema"
)

// CreateTableSQL inlines a single integer identity key as
// "PRIMARY KEY AUTOINCREMENT"; SQLite has no other way to declare one.
func (s *Adapter) CreateTableSQL(_ context.Context, table *schema.Table, columns []*schema.Column, indexes []*schema.Index) ([]string, error) {
	if _, ok := table.Comment(); ok {
		return nil, adapter.NewUnsupportedOperationError(Name, "table comments")
	}

	pk := table.PrimaryKey()
	inlineKey := ""
	if len(pk) == 1 {
		for _, c := range columns {
			if c.Name == pk[0] && isIntegerKey(c) {
				inlineKey = c.Name
			}
		}
	}

	defs := make([]string, 0, len(columns)+1)
	for _, c := range columns {
		def, err := s.columnDefinition(c, c.Name == inlineKey)
		if err != nil {
			return nil, err
		}
		defs = append(defs, s.QuoteColumnName(c.Name)+" "+def)
	}

	if len(pk) > 0 && inlineKey == "" {
		defs = append(defs, "PRIMARY KEY ("+s.QuoteColumnNames(pk)+")")
	}

	statements := []string{fmt.Sprintf("CREATE TABLE %s (%s)", s.QuoteTableName(table.Name), strings.Join(defs, ", "))}
	for _, idx := range indexes {
		if err := checkIndexColumns(table.Name, idx, columns); err != nil {
			return nil, err
		}
		statements = append(statements, s.createIndexSQL(table.Name, idx))
	}

	return statements, nil
}

func (s *Adapter) columnDefinition(c *schema.Column, inlineKey bool) (string, error) {
	if c.Comment != "" {
		return "", adapter.NewUnsupportedOperationError(Name, "column comments")
	}

	typ, err := s.ColumnSQLType(c)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString(typ)
	if c.Null && !inlineKey {
		sb.WriteString(" NULL")
	} else {
		sb.WriteString(" NOT NULL")
	}
	if inlineKey {
		sb.WriteString(" PRIMARY KEY AUTOINCREMENT")
	}
	sb.WriteString(s.DefaultClause(c))
	if c.Collation != "" {
		sb.WriteString(" COLLATE " + c.Collation)
	}

	return sb.String(), nil
}

func (s *Adapter) indexName(tableName string, idx *schema.Index) string {
	if idx.Name != "" {
		return idx.Name
	}
	return tableName + "_" + strings.Join(idx.Columns, "_")
}

func (s *Adapter) createIndexSQL(tableName string, idx *schema.Index) string {
	parts := make([]string, 0, len(idx.Columns))
	for _, col := range idx.Columns {
		part := s.QuoteColumnName(col)
		if order, ok := idx.Order[col]; ok {
			part += " " + order
		}
		parts = append(parts, part)
	}

	unique := ""
	if idx.Unique() {
		unique = "UNIQUE "
	}

	return fmt.Sprintf("CREATE %sINDEX %s ON %s (%s)",
		unique, s.QuoteColumnName(s.indexName(tableName, idx)), s.QuoteTableName(tableName), strings.Join(parts, ", "))
}

// ExecuteActions applies a batch one action at a time in a single
// transaction, so that every action is checked against the table as the
// previous ones left it. Renames and drops still run last.
func (s *Adapter) ExecuteActions(ctx context.Context, table *schema.Table, actions []schema.Action) error {
	if len(actions) == 0 {
		return nil
	}

	return s.InTransaction(ctx, func() error {
		var moves []schema.Action
		for _, action := range actions {
			switch action.Kind() {
			case schema.KindRenameTable, schema.KindDropTable:
				moves = append(moves, action)
				continue
			}
			if err := s.Base.ExecuteActions(ctx, table, []schema.Action{action}); err != nil {
				return err
			}
		}
		return s.Base.ExecuteActions(ctx, table, moves)
	})
}

// AlterTableSQL issues one statement per part; SQLite accepts a single
// alteration per ALTER TABLE.
func (s *Adapter) AlterTableSQL(tableName string, parts []string) []string {
	statements := make([]string, 0, len(parts))
	for _, part := range parts {
		statements = append(statements, "ALTER TABLE "+s.QuoteTableName(tableName)+" "+part)
	}
	return statements
}

// ---

// A rename is a post step. ExecuteActions holds it back until the rest of
// the batch has run against the old name.
func (s *Adapter) RenameTableInstructions(_ context.Context, tableName, newName string) (*adapter.AlterInstructions, error) {
	return adapter.NewAlterInstructions(nil, []string{
		"ALTER TABLE " + s.QuoteTableName(tableName) + " RENAME TO " + s.QuoteTableName(newName),
	}), nil
}

func (s *Adapter) DropTableInstructions(_ context.Context, tableName string) (*adapter.AlterInstructions, error) {
	return adapter.NewAlterInstructions(nil, []string{"DROP TABLE " + s.QuoteTableName(tableName)}), nil
}

func (s *Adapter) AddColumnInstructions(_ context.Context, _ *schema.Table, column *schema.Column) (*adapter.AlterInstructions, error) {
	if column.Identity {
		return nil, adapter.NewUnsupportedOperationError(Name, "adding an identity column")
	}

	def, err := s.columnDefinition(column, false)
	if err != nil {
		return nil, err
	}
	return adapter.NewAlterInstructions([]string{"ADD COLUMN " + s.QuoteColumnName(column.Name) + " " + def}, nil), nil
}

func (s *Adapter) RenameColumnInstructions(ctx context.Context, tableName, columnName, newName string) (*adapter.AlterInstructions, error) {
	if _, err := s.FindColumn(ctx, tableName, columnName); err != nil {
		return nil, err
	}
	return adapter.NewAlterInstructions([]string{
		"RENAME COLUMN " + s.QuoteColumnName(columnName) + " TO " + s.QuoteColumnName(newName),
	}, nil), nil
}

func (s *Adapter) ChangeColumnInstructions(context.Context, string, string, *schema.Column) (*adapter.AlterInstructions, error) {
	return nil, adapter.NewUnsupportedOperationError(Name, "CHANGE COLUMN")
}

func (s *Adapter) DropColumnInstructions(_ context.Context, _, columnName string) (*adapter.AlterInstructions, error) {
	return adapter.NewAlterInstructions([]string{"DROP COLUMN " + s.QuoteColumnName(columnName)}, nil), nil
}

// AddIndexInstructions checks the indexed columns first: SQLite reads a
// quoted name that matches no column as a string literal and would index a
// constant.
func (s *Adapter) AddIndexInstructions(ctx context.Context, table *schema.Table, index *schema.Index) (*adapter.AlterInstructions, error) {
	columns, err := s.GetColumns(ctx, table.Name)
	if err != nil {
		return nil, err
	}
	if len(columns) > 0 {
		if err := checkIndexColumns(table.Name, index, columns); err != nil {
			return nil, err
		}
	}
	return adapter.NewAlterInstructions(nil, []string{s.createIndexSQL(table.Name, index)}), nil
}

// checkIndexColumns fails with ErrColumnNotFound for an indexed column the
// table does not have.
func checkIndexColumns(tableName string, index *schema.Index, columns []*schema.Column) error {
	for _, name := range index.Columns {
		found := false
		for _, c := range columns {
			if c.Name == name {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("%w: %s.%s", adapter.ErrColumnNotFound, tableName, name)
		}
	}
	return nil
}

func (s *Adapter) DropIndexByColumnsInstructions(ctx context.Context, tableName string, columns []string) (*adapter.AlterInstructions, error) {
	idx, err := s.FindIndex(ctx, tableName, columns)
	if err != nil {
		return nil, err
	}
	return adapter.NewAlterInstructions(nil, []string{"DROP INDEX " + s.QuoteColumnName(idx.Name)}), nil
}

func (s *Adapter) DropIndexByNameInstructions(_ context.Context, _, indexName string) (*adapter.AlterInstructions, error) {
	return adapter.NewAlterInstructions(nil, []string{"DROP INDEX " + s.QuoteColumnName(indexName)}), nil
}

// Constraint changes need a table rebuild, which is not implemented.

func (s *Adapter) AddForeignKeyInstructions(context.Context, *schema.Table, *schema.ForeignKey) (*adapter.AlterInstructions, error) {
	return nil, adapter.NewUnsupportedOperationError(Name, "ADD FOREIGN KEY")
}

func (s *Adapter) DropForeignKeyInstructions(context.Context, string, []string, string) (*adapter.AlterInstructions, error) {
	return nil, adapter.NewUnsupportedOperationError(Name, "DROP FOREIGN KEY")
}

func (s *Adapter) ChangePrimaryKeyInstructions(context.Context, *schema.Table, []string) (*adapter.AlterInstructions, error) {
	return nil, adapter.NewUnsupportedOperationError(Name, "CHANGE PRIMARY KEY")
}

func (s *Adapter) ChangeCommentInstructions(context.Context, *schema.Table, *string) (*adapter.AlterInstructions, error) {
	return nil, adapter.NewUnsupportedOperationError(Name, "table comments")
}
