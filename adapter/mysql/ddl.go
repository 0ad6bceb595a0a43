package mysql

import (
	"context"
	"fmt"
	"strings"

	"github.com/root-talis/kaizou/adapter"
	"github.com/root-talis/kaizou/schema"
)

func (a *Adapter) CreateTableSQL(_ context.Context, table *schema.Table, columns []*schema.Column, indexes []*schema.Index) ([]string, error) {
	defs := make([]string, 0, len(columns)+len(indexes)+1)
	for _, c := range columns {
		def, err := a.columnDefinition(c)
		if err != nil {
			return nil, err
		}
		defs = append(defs, a.QuoteColumnName(c.Name)+" "+def)
	}

	if pk := table.PrimaryKey(); len(pk) > 0 {
		defs = append(defs, "PRIMARY KEY ("+a.QuoteColumnNames(pk)+")")
	}

	for _, idx := range indexes {
		defs = append(defs, a.indexDefinition(idx))
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "CREATE TABLE %s (%s)", a.QuoteTableName(table.Name), strings.Join(defs, ", "))

	engine, ok := table.Options.String("engine")
	if !ok {
		engine = defaultEngine
	}
	sb.WriteString(" ENGINE = " + engine)

	sb.WriteString(" CHARACTER SET " + a.charset())
	collation, ok := table.Options.String("collation")
	if !ok {
		collation = a.opts.Collation
	}
	if collation != "" {
		sb.WriteString(" COLLATE " + collation)
	}

	if comment, ok := table.Comment(); ok {
		sb.WriteString(" COMMENT=" + a.QuoteString(comment))
	}

	return []string{sb.String()}, nil
}

func (a *Adapter) columnDefinition(c *schema.Column) (string, error) { //nolint:cyclop
	var sb strings.Builder

	switch c.Type {
	case schema.TypeEnum, schema.TypeSet:
		values := make([]string, 0, len(c.Values))
		for _, v := range c.Values {
			values = append(values, a.QuoteString(v))
		}
		sb.WriteString(string(c.Type) + "(" + strings.Join(values, ", ") + ")")
	default:
		typ, err := a.ColumnSQLType(c)
		if err != nil {
			return "", err
		}
		sb.WriteString(typ)
	}

	if !c.Signed && isNumeric(c.Type) {
		sb.WriteString(" unsigned")
	}
	if c.Encoding != "" {
		sb.WriteString(" CHARACTER SET " + c.Encoding)
	}
	if c.Collation != "" {
		sb.WriteString(" COLLATE " + c.Collation)
	}

	if c.Null {
		sb.WriteString(" NULL")
	} else {
		sb.WriteString(" NOT NULL")
	}

	if c.Identity {
		sb.WriteString(" AUTO_INCREMENT")
	}
	sb.WriteString(a.DefaultClause(c))
	if c.Update != "" {
		sb.WriteString(" ON UPDATE " + c.Update)
	}
	if c.Comment != "" {
		sb.WriteString(" COMMENT " + a.QuoteString(c.Comment))
	}

	switch {
	case strings.EqualFold(c.After, "FIRST"):
		sb.WriteString(" FIRST")
	case c.After != "":
		sb.WriteString(" AFTER " + a.QuoteColumnName(c.After))
	}

	return sb.String(), nil
}

func isNumeric(t schema.ColumnType) bool {
	switch t {
	case schema.TypeInteger, schema.TypeTinyInteger, schema.TypeSmallInteger, schema.TypeBigInteger,
		schema.TypeFloat, schema.TypeDouble, schema.TypeDecimal:
		return true
	default:
		return false
	}
}

func (a *Adapter) indexDefinition(idx *schema.Index) string {
	var sb strings.Builder

	switch idx.Type {
	case schema.IndexUnique:
		sb.WriteString("UNIQUE KEY")
	case schema.IndexFulltext:
		sb.WriteString("FULLTEXT KEY")
	default:
		sb.WriteString("KEY")
	}
	if idx.Name != "" {
		sb.WriteString(" " + a.QuoteColumnName(idx.Name))
	}

	parts := make([]string, 0, len(idx.Columns))
	for _, col := range idx.Columns {
		part := a.QuoteColumnName(col)
		if idx.Limit > 0 && idx.Type != schema.IndexFulltext {
			part += fmt.Sprintf("(%d)", idx.Limit)
		}
		if order, ok := idx.Order[col]; ok {
			part += " " + order
		}
		parts = append(parts, part)
	}
	sb.WriteString(" (" + strings.Join(parts, ", ") + ")")

	return sb.String()
}

// AlterTableSQL merges every part into a single ALTER TABLE.
func (a *Adapter) AlterTableSQL(tableName string, parts []string) []string {
	if len(parts) == 0 {
		return nil
	}
	return []string{"ALTER TABLE " + a.QuoteTableName(tableName) + " " + strings.Join(parts, ", ")}
}

// ---

func (a *Adapter) RenameTableInstructions(_ context.Context, _ string, newName string) (*adapter.AlterInstructions, error) {
	return adapter.NewAlterInstructions([]string{"RENAME TO " + a.QuoteTableName(newName)}, nil), nil
}

func (a *Adapter) DropTableInstructions(_ context.Context, tableName string) (*adapter.AlterInstructions, error) {
	return adapter.NewAlterInstructions(nil, []string{"DROP TABLE " + a.QuoteTableName(tableName)}), nil
}

func (a *Adapter) AddColumnInstructions(_ context.Context, _ *schema.Table, column *schema.Column) (*adapter.AlterInstructions, error) {
	def, err := a.columnDefinition(column)
	if err != nil {
		return nil, err
	}
	return adapter.NewAlterInstructions([]string{"ADD " + a.QuoteColumnName(column.Name) + " " + def}, nil), nil
}

// RenameColumnInstructions repeats the live column definition, MySQL
// cannot rename without it before 8.0.
func (a *Adapter) RenameColumnInstructions(ctx context.Context, tableName, columnName, newName string) (*adapter.AlterInstructions, error) {
	rows, err := a.showColumns(ctx, tableName)
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		if row.String("Field") != columnName {
			continue
		}

		var sb strings.Builder
		fmt.Fprintf(&sb, "CHANGE COLUMN %s %s %s",
			a.QuoteColumnName(columnName), a.QuoteColumnName(newName), row.String("Type"))
		if strings.EqualFold(row.String("Null"), "YES") {
			sb.WriteString(" NULL")
		} else {
			sb.WriteString(" NOT NULL")
		}
		if row.Has("Default") {
			sb.WriteString(" DEFAULT " + a.QuoteString(row.String("Default")))
		}
		if extra := strings.TrimSpace(row.String("Extra")); extra != "" {
			sb.WriteString(" " + strings.ToUpper(extra))
		}
		if comment := row.String("Comment"); comment != "" {
			sb.WriteString(" COMMENT " + a.QuoteString(comment))
		}

		return adapter.NewAlterInstructions([]string{sb.String()}, nil), nil
	}

	return nil, fmt.Errorf("%w: %s.%s", adapter.ErrColumnNotFound, tableName, columnName)
}

func (a *Adapter) ChangeColumnInstructions(_ context.Context, _ string, columnName string, column *schema.Column) (*adapter.AlterInstructions, error) {
	def, err := a.columnDefinition(column)
	if err != nil {
		return nil, err
	}

	newName := column.Name
	if newName == "" {
		newName = columnName
	}
	return adapter.NewAlterInstructions([]string{fmt.Sprintf("CHANGE %s %s %s",
		a.QuoteColumnName(columnName), a.QuoteColumnName(newName), def)}, nil), nil
}

func (a *Adapter) DropColumnInstructions(_ context.Context, _ string, columnName string) (*adapter.AlterInstructions, error) {
	return adapter.NewAlterInstructions([]string{"DROP COLUMN " + a.QuoteColumnName(columnName)}, nil), nil
}

func (a *Adapter) AddIndexInstructions(_ context.Context, _ *schema.Table, index *schema.Index) (*adapter.AlterInstructions, error) {
	return adapter.NewAlterInstructions([]string{"ADD " + a.indexDefinition(index)}, nil), nil
}

func (a *Adapter) DropIndexByColumnsInstructions(ctx context.Context, tableName string, columns []string) (*adapter.AlterInstructions, error) {
	idx, err := a.FindIndex(ctx, tableName, columns)
	if err != nil {
		return nil, err
	}
	return adapter.NewAlterInstructions([]string{"DROP INDEX " + a.QuoteColumnName(idx.Name)}, nil), nil
}

func (a *Adapter) DropIndexByNameInstructions(ctx context.Context, tableName, indexName string) (*adapter.AlterInstructions, error) {
	exists, err := a.HasIndexByName(ctx, tableName, indexName)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: %q on %s", adapter.ErrIndexNotFound, indexName, tableName)
	}
	return adapter.NewAlterInstructions([]string{"DROP INDEX " + a.QuoteColumnName(indexName)}, nil), nil
}

func (a *Adapter) AddForeignKeyInstructions(_ context.Context, _ *schema.Table, fk *schema.ForeignKey) (*adapter.AlterInstructions, error) {
	part := "ADD "
	if fk.Constraint != "" {
		part += "CONSTRAINT " + a.QuoteColumnName(fk.Constraint) + " "
	}
	return adapter.NewAlterInstructions([]string{part + a.ForeignKeyClause(fk)}, nil), nil
}

func (a *Adapter) DropForeignKeyInstructions(ctx context.Context, tableName string, columns []string, constraint string) (*adapter.AlterInstructions, error) {
	if constraint == "" {
		fk, err := a.FindForeignKey(ctx, tableName, columns)
		if err != nil {
			return nil, err
		}
		constraint = fk.Name
	}
	return adapter.NewAlterInstructions([]string{"DROP FOREIGN KEY " + a.QuoteColumnName(constraint)}, nil), nil
}

func (a *Adapter) ChangePrimaryKeyInstructions(ctx context.Context, table *schema.Table, columns []string) (*adapter.AlterInstructions, error) {
	current, err := a.PrimaryKey(ctx, table.Name)
	if err != nil {
		return nil, err
	}

	ins := &adapter.AlterInstructions{}
	if len(current.Columns) > 0 {
		ins.AddAlter("DROP PRIMARY KEY")
	}
	if len(columns) > 0 {
		ins.AddAlter("ADD PRIMARY KEY (" + a.QuoteColumnNames(columns) + ")")
	}
	return ins, nil
}

func (a *Adapter) ChangeCommentInstructions(_ context.Context, _ *schema.Table, comment *string) (*adapter.AlterInstructions, error) {
	value := ""
	if comment != nil {
		value = *comment
	}
	return adapter.NewAlterInstructions([]string{"COMMENT=" + a.QuoteString(value)}, nil), nil
}
