package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/root-talis/kaizou/adapter"
	"github.com/root-talis/kaizou/schema"
)

// IdentityRenderer lets a derived dialect spell identity columns its own
// way. Postgres itself uses the serial pseudo-types.
type IdentityRenderer interface {
	IdentityColumn(c *schema.Column, sqlType string) string
}

func (p *Adapter) CreateTableSQL(_ context.Context, table *schema.Table, columns []*schema.Column, indexes []*schema.Index) ([]string, error) {
	defs := make([]string, 0, len(columns)+1)
	post := make([]string, 0)

	for _, c := range columns {
		def, err := p.ColumnDefinition(c)
		if err != nil {
			return nil, err
		}
		defs = append(defs, p.qc(c.Name)+" "+def)

		if c.Comment != "" {
			post = append(post, p.columnComment(table.Name, c.Name, &c.Comment))
		}
	}

	if pk := table.PrimaryKey(); len(pk) > 0 {
		defs = append(defs, fmt.Sprintf("CONSTRAINT %s PRIMARY KEY (%s)",
			p.qc(p.primaryKeyName(table.Name)), p.QuoteColumnNames(pk)))
	}

	statements := []string{fmt.Sprintf("CREATE TABLE %s (%s)", p.qt(table.Name), strings.Join(defs, ", "))}

	if comment, ok := table.Comment(); ok {
		statements = append(statements, p.tableComment(table.Name, &comment))
	}
	statements = append(statements, post...)

	for _, idx := range indexes {
		statements = append(statements, p.CreateIndexSQL(table.Name, idx))
	}

	return statements, nil
}

func (p *Adapter) primaryKeyName(tableName string) string {
	_, table := p.SplitTableName(tableName)
	return table + "_pkey"
}

// ColumnDefinition renders everything after the column name.
func (p *Adapter) ColumnDefinition(c *schema.Column) (string, error) {
	typ, err := p.ColumnSQLType(c)
	if err != nil {
		return "", err
	}

	if c.Timezone && (c.Type == schema.TypeTimestamp || c.Type == schema.TypeDatetime || c.Type == schema.TypeTime) {
		typ += " with time zone"
	}

	if c.Identity {
		if r, ok := p.Dialect().(IdentityRenderer); ok {
			typ = r.IdentityColumn(c, typ)
		} else {
			typ = serialType(c.Type, typ)
		}
	}

	var sb strings.Builder
	sb.WriteString(typ)
	if c.Collation != "" {
		sb.WriteString(" COLLATE " + p.qc(c.Collation))
	}
	if c.Null {
		sb.WriteString(" NULL")
	} else {
		sb.WriteString(" NOT NULL")
	}
	sb.WriteString(p.DefaultClause(c))

	return sb.String(), nil
}

func serialType(t schema.ColumnType, fallback string) string {
	switch t {
	case schema.TypeBigInteger:
		return "BIGSERIAL"
	case schema.TypeSmallInteger, schema.TypeTinyInteger:
		return "SMALLSERIAL"
	case schema.TypeInteger:
		return "SERIAL"
	default:
		return fallback
	}
}

func (p *Adapter) tableComment(tableName string, comment *string) string {
	value := "NULL"
	if comment != nil {
		value = p.qs(*comment)
	}
	return fmt.Sprintf("COMMENT ON TABLE %s IS %s", p.qt(tableName), value)
}

func (p *Adapter) columnComment(tableName, columnName string, comment *string) string {
	value := "NULL"
	if comment != nil && *comment != "" {
		value = p.qs(*comment)
	}
	return fmt.Sprintf("COMMENT ON COLUMN %s.%s IS %s", p.qt(tableName), p.qc(columnName), value)
}

// IndexName is the explicit name or table_col1_col2.
func (p *Adapter) IndexName(tableName string, idx *schema.Index) string {
	if idx.Name != "" {
		return idx.Name
	}
	_, table := p.SplitTableName(tableName)
	return table + "_" + strings.Join(idx.Columns, "_")
}

func (p *Adapter) CreateIndexSQL(tableName string, idx *schema.Index) string {
	parts := make([]string, 0, len(idx.Columns))
	for _, col := range idx.Columns {
		part := p.qc(col)
		if order, ok := idx.Order[col]; ok {
			part += " " + order
		}
		parts = append(parts, part)
	}

	unique := ""
	if idx.Unique() {
		unique = "UNIQUE "
	}

	query := fmt.Sprintf("CREATE %sINDEX %s ON %s (%s)",
		unique, p.qc(p.IndexName(tableName, idx)), p.qt(tableName), strings.Join(parts, ", "))
	if len(idx.Include) > 0 {
		query += " INCLUDE (" + p.QuoteColumnNames(idx.Include) + ")"
	}
	return query
}

func (p *Adapter) dropIndexSQL(tableName, indexName string) string {
	schemaName, _ := p.SplitTableName(tableName)
	return "DROP INDEX IF EXISTS " + p.qt(schemaName+"."+indexName)
}

func (p *Adapter) AlterTableSQL(tableName string, parts []string) []string {
	if len(parts) == 0 {
		return nil
	}
	return []string{"ALTER TABLE " + p.qt(tableName) + " " + strings.Join(parts, ", ")}
}

// ---

// Renames cannot share an ALTER TABLE with other subcommands, so they are
// issued as post steps.

func (p *Adapter) RenameTableInstructions(_ context.Context, tableName, newName string) (*adapter.AlterInstructions, error) {
	_, bare := p.SplitTableName(newName)
	return adapter.NewAlterInstructions(nil, []string{
		fmt.Sprintf("ALTER TABLE %s RENAME TO %s", p.qt(tableName), p.qc(bare)),
	}), nil
}

func (p *Adapter) DropTableInstructions(_ context.Context, tableName string) (*adapter.AlterInstructions, error) {
	return adapter.NewAlterInstructions(nil, []string{"DROP TABLE " + p.qt(tableName)}), nil
}

func (p *Adapter) AddColumnInstructions(_ context.Context, table *schema.Table, column *schema.Column) (*adapter.AlterInstructions, error) {
	def, err := p.ColumnDefinition(column)
	if err != nil {
		return nil, err
	}

	ins := adapter.NewAlterInstructions([]string{"ADD " + p.qc(column.Name) + " " + def}, nil)
	if column.Comment != "" {
		ins.AddPostStep(p.columnComment(table.Name, column.Name, &column.Comment))
	}
	return ins, nil
}

func (p *Adapter) RenameColumnInstructions(ctx context.Context, tableName, columnName, newName string) (*adapter.AlterInstructions, error) {
	if _, err := p.FindColumn(ctx, tableName, columnName); err != nil {
		return nil, err
	}
	return adapter.NewAlterInstructions(nil, []string{fmt.Sprintf("ALTER TABLE %s RENAME COLUMN %s TO %s",
		p.qt(tableName), p.qc(columnName), p.qc(newName))}), nil
}

func (p *Adapter) ChangeColumnInstructions(_ context.Context, tableName, columnName string, column *schema.Column) (*adapter.AlterInstructions, error) {
	typ, err := p.ColumnSQLType(column)
	if err != nil {
		return nil, err
	}
	if column.Timezone && (column.Type == schema.TypeTimestamp || column.Type == schema.TypeTime) {
		typ += " with time zone"
	}

	quoted := p.qc(columnName)
	ins := &adapter.AlterInstructions{}
	ins.AddAlter(fmt.Sprintf("ALTER COLUMN %s TYPE %s USING %s::%s", quoted, typ, quoted, typ))

	if column.Null {
		ins.AddAlter(fmt.Sprintf("ALTER COLUMN %s DROP NOT NULL", quoted))
	} else {
		ins.AddAlter(fmt.Sprintf("ALTER COLUMN %s SET NOT NULL", quoted))
	}

	if column.HasDefault() {
		ins.AddAlter(fmt.Sprintf("ALTER COLUMN %s SET DEFAULT %s", quoted, p.Literal(column.Default)))
	} else {
		ins.AddAlter(fmt.Sprintf("ALTER COLUMN %s DROP DEFAULT", quoted))
	}

	name := columnName
	if column.Name != "" && column.Name != columnName {
		ins.AddPostStep(fmt.Sprintf("ALTER TABLE %s RENAME COLUMN %s TO %s",
			p.qt(tableName), quoted, p.qc(column.Name)))
		name = column.Name
	}

	if column.Comment != "" {
		ins.AddPostStep(p.columnComment(tableName, name, &column.Comment))
	}

	return ins, nil
}

func (p *Adapter) DropColumnInstructions(_ context.Context, _ string, columnName string) (*adapter.AlterInstructions, error) {
	return adapter.NewAlterInstructions([]string{"DROP COLUMN " + p.qc(columnName)}, nil), nil
}

func (p *Adapter) AddIndexInstructions(_ context.Context, table *schema.Table, index *schema.Index) (*adapter.AlterInstructions, error) {
	return adapter.NewAlterInstructions(nil, []string{p.CreateIndexSQL(table.Name, index)}), nil
}

func (p *Adapter) DropIndexByColumnsInstructions(ctx context.Context, tableName string, columns []string) (*adapter.AlterInstructions, error) {
	idx, err := p.FindIndex(ctx, tableName, columns)
	if err != nil {
		return nil, err
	}
	return adapter.NewAlterInstructions(nil, []string{p.dropIndexSQL(tableName, idx.Name)}), nil
}

func (p *Adapter) DropIndexByNameInstructions(_ context.Context, tableName, indexName string) (*adapter.AlterInstructions, error) {
	return adapter.NewAlterInstructions(nil, []string{p.dropIndexSQL(tableName, indexName)}), nil
}

func (p *Adapter) AddForeignKeyInstructions(_ context.Context, table *schema.Table, fk *schema.ForeignKey) (*adapter.AlterInstructions, error) {
	name := fk.Constraint
	if name == "" {
		_, bare := p.SplitTableName(table.Name)
		name = bare + "_" + strings.Join(fk.Columns, "_") + "_fkey"
	}
	return adapter.NewAlterInstructions([]string{
		"ADD CONSTRAINT " + p.qc(name) + " " + p.ForeignKeyClause(fk),
	}, nil), nil
}

func (p *Adapter) DropForeignKeyInstructions(ctx context.Context, tableName string, columns []string, constraint string) (*adapter.AlterInstructions, error) {
	if constraint == "" {
		fk, err := p.FindForeignKey(ctx, tableName, columns)
		if err != nil {
			return nil, err
		}
		constraint = fk.Name
	}
	return adapter.NewAlterInstructions([]string{"DROP CONSTRAINT " + p.qc(constraint)}, nil), nil
}

func (p *Adapter) ChangePrimaryKeyInstructions(ctx context.Context, table *schema.Table, columns []string) (*adapter.AlterInstructions, error) {
	current, err := p.Dialect().PrimaryKey(ctx, table.Name)
	if err != nil {
		return nil, err
	}

	ins := &adapter.AlterInstructions{}
	if current.Name != "" {
		ins.AddAlter("DROP CONSTRAINT " + p.qc(current.Name))
	}
	if len(columns) > 0 {
		ins.AddAlter(fmt.Sprintf("ADD CONSTRAINT %s PRIMARY KEY (%s)",
			p.qc(p.primaryKeyName(table.Name)), p.QuoteColumnNames(columns)))
	}
	return ins, nil
}

func (p *Adapter) ChangeCommentInstructions(_ context.Context, table *schema.Table, comment *string) (*adapter.AlterInstructions, error) {
	return adapter.NewAlterInstructions(nil, []string{p.tableComment(table.Name, comment)}), nil
}
