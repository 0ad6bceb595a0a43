package sqlserver

import (
	"context"
	"fmt"
	"strings"

	"github.com/root-talis/kaizou/adapter"
	"github.com/root-talis/kaizou/schema"
)

func (s *Adapter) CreateTableSQL(_ context.Context, table *schema.Table, columns []*schema.Column, indexes []*schema.Index) ([]string, error) {
	if _, ok := table.Comment(); ok {
		return nil, adapter.NewUnsupportedOperationError(Name, "table comments")
	}

	defs := make([]string, 0, len(columns)+1)
	for _, c := range columns {
		def, err := s.columnDefinition(table.Name, c)
		if err != nil {
			return nil, err
		}
		defs = append(defs, quoteIdent(c.Name)+" "+def)
	}

	if pk := table.PrimaryKey(); len(pk) > 0 {
		defs = append(defs, fmt.Sprintf("CONSTRAINT %s PRIMARY KEY (%s)",
			quoteIdent(primaryKeyName(table.Name)), s.QuoteColumnNames(pk)))
	}

	statements := []string{fmt.Sprintf("CREATE TABLE %s (%s)", s.QuoteTableName(table.Name), strings.Join(defs, ", "))}
	for _, idx := range indexes {
		statements = append(statements, s.createIndexSQL(table.Name, idx))
	}

	return statements, nil
}

func bareName(tableName string) string {
	if i := strings.LastIndexByte(tableName, '.'); i >= 0 {
		return tableName[i+1:]
	}
	return tableName
}

func primaryKeyName(tableName string) string {
	return "PK_" + bareName(tableName)
}

func defaultName(tableName, columnName string) string {
	return "DF_" + bareName(tableName) + "_" + columnName
}

func (s *Adapter) columnDefinition(tableName string, c *schema.Column) (string, error) {
	if c.Comment != "" {
		return "", adapter.NewUnsupportedOperationError(Name, "column comments")
	}

	typ, err := s.ColumnSQLType(c)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString(typ)

	if c.Identity {
		seed, increment := c.Seed, c.Increment
		if seed == 0 {
			seed = 1
		}
		if increment == 0 {
			increment = 1
		}
		fmt.Fprintf(&sb, " IDENTITY(%d,%d)", seed, increment)
	}
	if c.Collation != "" {
		sb.WriteString(" COLLATE " + c.Collation)
	}
	if c.Null {
		sb.WriteString(" NULL")
	} else {
		sb.WriteString(" NOT NULL")
	}
	if c.HasDefault() {
		fmt.Fprintf(&sb, " CONSTRAINT %s DEFAULT %s", quoteIdent(defaultName(tableName, c.Name)), s.Literal(c.Default))
	}

	return sb.String(), nil
}

func (s *Adapter) indexName(tableName string, idx *schema.Index) string {
	if idx.Name != "" {
		return idx.Name
	}
	return "IX_" + bareName(tableName) + "_" + strings.Join(idx.Columns, "_")
}

func (s *Adapter) createIndexSQL(tableName string, idx *schema.Index) string {
	parts := make([]string, 0, len(idx.Columns))
	for _, col := range idx.Columns {
		part := quoteIdent(col)
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
		unique, quoteIdent(s.indexName(tableName, idx)), s.QuoteTableName(tableName), strings.Join(parts, ", "))
	if len(idx.Include) > 0 {
		query += " INCLUDE (" + s.QuoteColumnNames(idx.Include) + ")"
	}
	return query
}

// AlterTableSQL issues one ALTER TABLE per part; T-SQL cannot mix ADD,
// ALTER COLUMN and DROP in one statement.
func (s *Adapter) AlterTableSQL(tableName string, parts []string) []string {
	statements := make([]string, 0, len(parts))
	for _, part := range parts {
		statements = append(statements, "ALTER TABLE "+s.QuoteTableName(tableName)+" "+part)
	}
	return statements
}

// ---

func (s *Adapter) RenameTableInstructions(_ context.Context, tableName, newName string) (*adapter.AlterInstructions, error) {
	return adapter.NewAlterInstructions(nil, []string{
		fmt.Sprintf("EXEC sp_rename %s, %s", s.QuoteString(s.qualified(tableName)), s.QuoteString(bareName(newName))),
	}), nil
}

func (s *Adapter) DropTableInstructions(_ context.Context, tableName string) (*adapter.AlterInstructions, error) {
	return adapter.NewAlterInstructions(nil, []string{"DROP TABLE " + s.QuoteTableName(tableName)}), nil
}

func (s *Adapter) AddColumnInstructions(_ context.Context, table *schema.Table, column *schema.Column) (*adapter.AlterInstructions, error) {
	def, err := s.columnDefinition(table.Name, column)
	if err != nil {
		return nil, err
	}
	return adapter.NewAlterInstructions([]string{"ADD " + quoteIdent(column.Name) + " " + def}, nil), nil
}

func (s *Adapter) renameColumnSQL(tableName, columnName, newName string) string {
	return fmt.Sprintf("EXEC sp_rename %s, %s, N'COLUMN'",
		s.QuoteString(s.qualified(tableName)+"."+columnName), s.QuoteString(newName))
}

func (s *Adapter) RenameColumnInstructions(ctx context.Context, tableName, columnName, newName string) (*adapter.AlterInstructions, error) {
	if _, err := s.FindColumn(ctx, tableName, columnName); err != nil {
		return nil, err
	}
	return adapter.NewAlterInstructions(nil, []string{s.renameColumnSQL(tableName, columnName, newName)}), nil
}

// dropDefaultInstructions drops the default constraint bound to a column,
// which SQL Server requires before the column is altered or dropped.
func (s *Adapter) dropDefaultInstructions(ctx context.Context, tableName, columnName string) (*adapter.AlterInstructions, error) {
	constraint, err := s.defaultConstraint(ctx, tableName, columnName)
	if err != nil {
		return nil, err
	}
	ins := &adapter.AlterInstructions{}
	if constraint != "" {
		ins.AddAlter("DROP CONSTRAINT " + quoteIdent(constraint))
	}
	return ins, nil
}

func (s *Adapter) ChangeColumnInstructions(ctx context.Context, tableName, columnName string, column *schema.Column) (*adapter.AlterInstructions, error) {
	if column.Comment != "" {
		return nil, adapter.NewUnsupportedOperationError(Name, "column comments")
	}

	ins, err := s.dropDefaultInstructions(ctx, tableName, columnName)
	if err != nil {
		return nil, err
	}

	typ, err := s.ColumnSQLType(column)
	if err != nil {
		return nil, err
	}
	null := " NOT NULL"
	if column.Null {
		null = " NULL"
	}
	ins.AddAlter("ALTER COLUMN " + quoteIdent(columnName) + " " + typ + null)

	name := columnName
	if column.Name != "" && column.Name != columnName {
		ins.AddPostStep(s.renameColumnSQL(tableName, columnName, column.Name))
		name = column.Name
	}

	if column.HasDefault() {
		ins.AddPostStep(fmt.Sprintf("ALTER TABLE %s ADD CONSTRAINT %s DEFAULT %s FOR %s",
			s.QuoteTableName(tableName), quoteIdent(defaultName(tableName, name)),
			s.Literal(column.Default), quoteIdent(name)))
	}

	return ins, nil
}

func (s *Adapter) DropColumnInstructions(ctx context.Context, tableName, columnName string) (*adapter.AlterInstructions, error) {
	ins, err := s.dropDefaultInstructions(ctx, tableName, columnName)
	if err != nil {
		return nil, err
	}
	ins.AddAlter("DROP COLUMN " + quoteIdent(columnName))
	return ins, nil
}

func (s *Adapter) AddIndexInstructions(_ context.Context, table *schema.Table, index *schema.Index) (*adapter.AlterInstructions, error) {
	return adapter.NewAlterInstructions(nil, []string{s.createIndexSQL(table.Name, index)}), nil
}

func (s *Adapter) dropIndexSQL(tableName, indexName string) string {
	return "DROP INDEX " + quoteIdent(indexName) + " ON " + s.QuoteTableName(tableName)
}

func (s *Adapter) DropIndexByColumnsInstructions(ctx context.Context, tableName string, columns []string) (*adapter.AlterInstructions, error) {
	idx, err := s.FindIndex(ctx, tableName, columns)
	if err != nil {
		return nil, err
	}
	return adapter.NewAlterInstructions(nil, []string{s.dropIndexSQL(tableName, idx.Name)}), nil
}

func (s *Adapter) DropIndexByNameInstructions(_ context.Context, tableName, indexName string) (*adapter.AlterInstructions, error) {
	return adapter.NewAlterInstructions(nil, []string{s.dropIndexSQL(tableName, indexName)}), nil
}

func (s *Adapter) AddForeignKeyInstructions(_ context.Context, table *schema.Table, fk *schema.ForeignKey) (*adapter.AlterInstructions, error) {
	name := fk.Constraint
	if name == "" {
		name = "FK_" + bareName(table.Name) + "_" + strings.Join(fk.Columns, "_")
	}
	return adapter.NewAlterInstructions([]string{
		"ADD CONSTRAINT " + quoteIdent(name) + " " + s.ForeignKeyClause(fk),
	}, nil), nil
}

func (s *Adapter) DropForeignKeyInstructions(ctx context.Context, tableName string, columns []string, constraint string) (*adapter.AlterInstructions, error) {
	if constraint == "" {
		fk, err := s.FindForeignKey(ctx, tableName, columns)
		if err != nil {
			return nil, err
		}
		constraint = fk.Name
	}
	return adapter.NewAlterInstructions([]string{"DROP CONSTRAINT " + quoteIdent(constraint)}, nil), nil
}

func (s *Adapter) ChangePrimaryKeyInstructions(ctx context.Context, table *schema.Table, columns []string) (*adapter.AlterInstructions, error) {
	current, err := s.PrimaryKey(ctx, table.Name)
	if err != nil {
		return nil, err
	}

	ins := &adapter.AlterInstructions{}
	if current.Name != "" {
		ins.AddAlter("DROP CONSTRAINT " + quoteIdent(current.Name))
	}
	if len(columns) > 0 {
		ins.AddAlter(fmt.Sprintf("ADD CONSTRAINT %s PRIMARY KEY (%s)",
			quoteIdent(primaryKeyName(table.Name)), s.QuoteColumnNames(columns)))
	}
	return ins, nil
}

func (s *Adapter) ChangeCommentInstructions(context.Context, *schema.Table, *string) (*adapter.AlterInstructions, error) {
	return nil, adapter.NewUnsupportedOperationError(Name, "table comments")
}
