package mysql

import (
	"context"
	"fmt"
	"strings"

	"github.com/root-talis/kaizou/adapter"
	"github.com/root-talis/kaizou/schema"
)

func (a *Adapter) HasTable(ctx context.Context, name string) (bool, error) {
	database, table := a.splitTableName(name)

	row, err := a.FetchRow(ctx, fmt.Sprintf(
		"SELECT TABLE_NAME FROM INFORMATION_SCHEMA.TABLES WHERE TABLE_SCHEMA = %s AND TABLE_NAME = %s",
		a.QuoteString(database), a.QuoteString(table),
	))
	if err != nil {
		return false, fmt.Errorf("failed to look up table %q: %w", name, err)
	}
	return row != nil, nil
}

func (a *Adapter) showColumns(ctx context.Context, tableName string) ([]adapter.Row, error) {
	rows, err := a.Query(ctx, "SHOW FULL COLUMNS FROM "+a.QuoteTableName(tableName))
	if err != nil {
		return nil, fmt.Errorf("failed to list columns of %q: %w", tableName, err)
	}
	return rows, nil
}

func (a *Adapter) GetColumns(ctx context.Context, tableName string) ([]*schema.Column, error) {
	rows, err := a.showColumns(ctx, tableName)
	if err != nil {
		return nil, err
	}

	columns := make([]*schema.Column, 0, len(rows))
	for _, row := range rows {
		columns = append(columns, a.columnFromRow(row))
	}
	return columns, nil
}

func (a *Adapter) columnFromRow(row adapter.Row) *schema.Column {
	native := row.String("Type")
	name, args := adapter.ParseNativeType(native)

	typ, err := a.GetColumnType(native)
	if err != nil {
		typ = schema.LiteralType(native)
	}

	c := &schema.Column{
		Name:      row.String("Field"),
		Type:      typ,
		Null:      strings.EqualFold(row.String("Null"), "YES"),
		Signed:    !strings.Contains(strings.ToLower(native), "unsigned"),
		Identity:  strings.Contains(strings.ToLower(row.String("Extra")), "auto_increment"),
		Comment:   row.String("Comment"),
		Collation: row.String("Collation"),
	}
	if row.Has("Default") {
		c.Default = row.String("Default")
	}

	switch {
	case typ == schema.TypeDecimal && len(args) > 0:
		c.Precision = args[0]
		if len(args) > 1 {
			c.Scale = args[1]
		}
	case (name == "enum" || name == "set") && strings.Contains(native, "("):
		c.Values = parseEnumValues(native)
	case len(args) > 0:
		c.Limit = args[0]
	}

	return c
}

func parseEnumValues(native string) []string {
	open, end := strings.IndexByte(native, '('), strings.LastIndexByte(native, ')')
	if open < 0 || end <= open {
		return nil
	}

	values := make([]string, 0)
	for _, v := range strings.Split(native[open+1:end], ",") {
		v = strings.TrimSpace(v)
		v = strings.TrimSuffix(strings.TrimPrefix(v, "'"), "'")
		values = append(values, strings.ReplaceAll(v, "''", "'"))
	}
	return values
}

func (a *Adapter) Indexes(ctx context.Context, tableName string) ([]adapter.IndexInfo, error) {
	rows, err := a.Query(ctx, "SHOW INDEXES FROM "+a.QuoteTableName(tableName))
	if err != nil {
		return nil, fmt.Errorf("failed to list indexes of %q: %w", tableName, err)
	}

	groups := adapter.GroupColumns(rows, "Key_name", "Column_name")
	indexes := make([]adapter.IndexInfo, 0, len(groups.Names))
	for _, name := range groups.Names {
		indexes = append(indexes, adapter.IndexInfo{
			Name:    name,
			Columns: groups.Columns[name],
			Unique:  groups.First[name].Int("Non_unique") == 0,
		})
	}
	return indexes, nil
}

func (a *Adapter) ForeignKeys(ctx context.Context, tableName string) ([]adapter.ForeignKeyInfo, error) {
	database, table := a.splitTableName(tableName)

	rows, err := a.Query(ctx, fmt.Sprintf(
		"SELECT CONSTRAINT_NAME, COLUMN_NAME, REFERENCED_TABLE_NAME, REFERENCED_COLUMN_NAME "+
			"FROM INFORMATION_SCHEMA.KEY_COLUMN_USAGE "+
			"WHERE REFERENCED_TABLE_NAME IS NOT NULL AND TABLE_SCHEMA = %s AND TABLE_NAME = %s "+
			"ORDER BY CONSTRAINT_NAME, POSITION_IN_UNIQUE_CONSTRAINT",
		a.QuoteString(database), a.QuoteString(table),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to list foreign keys of %q: %w", tableName, err)
	}

	columns := adapter.GroupColumns(rows, "CONSTRAINT_NAME", "COLUMN_NAME")
	referenced := adapter.GroupColumns(rows, "CONSTRAINT_NAME", "REFERENCED_COLUMN_NAME")

	fks := make([]adapter.ForeignKeyInfo, 0, len(columns.Names))
	for _, name := range columns.Names {
		fks = append(fks, adapter.ForeignKeyInfo{
			Name:              name,
			Columns:           columns.Columns[name],
			ReferencedTable:   columns.First[name].String("REFERENCED_TABLE_NAME"),
			ReferencedColumns: referenced.Columns[name],
		})
	}
	return fks, nil
}

func (a *Adapter) PrimaryKey(ctx context.Context, tableName string) (adapter.PrimaryKeyInfo, error) {
	indexes, err := a.Indexes(ctx, tableName)
	if err != nil {
		return adapter.PrimaryKeyInfo{}, err
	}
	for _, idx := range indexes {
		if idx.Name == "PRIMARY" {
			return adapter.PrimaryKeyInfo{Name: idx.Name, Columns: idx.Columns}, nil
		}
	}
	return adapter.PrimaryKeyInfo{}, nil
}
