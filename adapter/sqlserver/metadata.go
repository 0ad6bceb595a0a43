package sqlserver

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/root-talis/kaizou/adapter"
	"github.com/root-talis/kaizou/schema"
)

func (s *Adapter) HasTable(ctx context.Context, name string) (bool, error) {
	schemaName, table := s.splitTableName(name)

	row, err := s.FetchRow(ctx, fmt.Sprintf(
		"SELECT 1 AS found FROM INFORMATION_SCHEMA.TABLES WHERE TABLE_SCHEMA = %s AND TABLE_NAME = %s",
		s.QuoteString(schemaName), s.QuoteString(table),
	))
	if err != nil {
		return false, fmt.Errorf("failed to look up table %q: %w", name, err)
	}
	return row != nil, nil
}

func (s *Adapter) GetColumns(ctx context.Context, tableName string) ([]*schema.Column, error) {
	schemaName, table := s.splitTableName(tableName)

	rows, err := s.Query(ctx, fmt.Sprintf(
		"SELECT COLUMN_NAME AS column_name, DATA_TYPE AS data_type, IS_NULLABLE AS is_nullable, "+
			"COLUMN_DEFAULT AS column_default, CHARACTER_MAXIMUM_LENGTH AS char_length, "+
			"NUMERIC_PRECISION AS numeric_precision, NUMERIC_SCALE AS numeric_scale, "+
			"COLUMNPROPERTY(OBJECT_ID(TABLE_SCHEMA + '.' + TABLE_NAME), COLUMN_NAME, 'IsIdentity') AS is_identity "+
			"FROM INFORMATION_SCHEMA.COLUMNS WHERE TABLE_SCHEMA = %s AND TABLE_NAME = %s "+
			"ORDER BY ORDINAL_POSITION",
		s.QuoteString(schemaName), s.QuoteString(table),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to list columns of %q: %w", tableName, err)
	}

	columns := make([]*schema.Column, 0, len(rows))
	for _, row := range rows {
		columns = append(columns, s.columnFromRow(row))
	}
	return columns, nil
}

func (s *Adapter) columnFromRow(row adapter.Row) *schema.Column {
	native := row.String("data_type")
	length := row.Int("char_length")
	if length == -1 {
		native += "(max)"
	}

	typ, err := s.GetColumnType(native)
	if err != nil {
		typ = schema.LiteralType(native)
	}

	c := &schema.Column{
		Name:     row.String("column_name"),
		Type:     typ,
		Null:     strings.EqualFold(row.String("is_nullable"), "YES"),
		Signed:   true,
		Identity: row.Int("is_identity") == 1,
	}

	if def := row.String("column_default"); def != "" {
		c.Default = parseDefault(def)
	}

	switch typ {
	case schema.TypeDecimal:
		c.Precision = int(row.Int("numeric_precision"))
		c.Scale = int(row.Int("numeric_scale"))
	case schema.TypeString, schema.TypeChar, schema.TypeBinary, schema.TypeVarbinary:
		if length > 0 {
			c.Limit = int(length)
		}
	}

	return c
}

// parseDefault unwraps the parentheses SQL Server stores around defaults:
// ((0)) is 0, (N'abc') is "abc", anything else stays raw SQL.
func parseDefault(def string) any {
	for len(def) >= 2 && def[0] == '(' && def[len(def)-1] == ')' {
		def = def[1 : len(def)-1]
	}

	if n, err := strconv.ParseInt(def, 10, 64); err == nil {
		return n
	}

	for _, prefix := range []string{"N'", "'"} {
		if strings.HasPrefix(def, prefix) && strings.HasSuffix(def, "'") && len(def) > len(prefix) {
			return strings.ReplaceAll(def[len(prefix):len(def)-1], "''", "'")
		}
	}

	return schema.Literal(def)
}

func (s *Adapter) Indexes(ctx context.Context, tableName string) ([]adapter.IndexInfo, error) {
	rows, err := s.Query(ctx, fmt.Sprintf(
		"SELECT i.name AS index_name, c.name AS column_name, i.is_unique "+
			"FROM sys.indexes i "+
			"JOIN sys.index_columns ic ON ic.object_id = i.object_id AND ic.index_id = i.index_id "+
			"JOIN sys.columns c ON c.object_id = ic.object_id AND c.column_id = ic.column_id "+
			"WHERE i.object_id = OBJECT_ID(%s) AND i.name IS NOT NULL AND ic.is_included_column = 0 "+
			"ORDER BY i.name, ic.key_ordinal",
		s.QuoteString(s.qualified(tableName)),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to list indexes of %q: %w", tableName, err)
	}

	groups := adapter.GroupColumns(rows, "index_name", "column_name")
	indexes := make([]adapter.IndexInfo, 0, len(groups.Names))
	for _, name := range groups.Names {
		indexes = append(indexes, adapter.IndexInfo{
			Name:    name,
			Columns: groups.Columns[name],
			Unique:  groups.First[name].Bool("is_unique"),
		})
	}
	return indexes, nil
}

func (s *Adapter) ForeignKeys(ctx context.Context, tableName string) ([]adapter.ForeignKeyInfo, error) {
	rows, err := s.Query(ctx, fmt.Sprintf(
		"SELECT fk.name AS constraint_name, pc.name AS column_name, "+
			"OBJECT_NAME(fk.referenced_object_id) AS referenced_table_name, rc.name AS referenced_column_name "+
			"FROM sys.foreign_keys fk "+
			"JOIN sys.foreign_key_columns fkc ON fkc.constraint_object_id = fk.object_id "+
			"JOIN sys.columns pc ON pc.object_id = fkc.parent_object_id AND pc.column_id = fkc.parent_column_id "+
			"JOIN sys.columns rc ON rc.object_id = fkc.referenced_object_id AND rc.column_id = fkc.referenced_column_id "+
			"WHERE fk.parent_object_id = OBJECT_ID(%s) "+
			"ORDER BY fk.name, fkc.constraint_column_id",
		s.QuoteString(s.qualified(tableName)),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to list foreign keys of %q: %w", tableName, err)
	}

	columns := adapter.GroupColumns(rows, "constraint_name", "column_name")
	referenced := adapter.GroupColumns(rows, "constraint_name", "referenced_column_name")

	fks := make([]adapter.ForeignKeyInfo, 0, len(columns.Names))
	for _, name := range columns.Names {
		fks = append(fks, adapter.ForeignKeyInfo{
			Name:              name,
			Columns:           columns.Columns[name],
			ReferencedTable:   columns.First[name].String("referenced_table_name"),
			ReferencedColumns: referenced.Columns[name],
		})
	}
	return fks, nil
}

func (s *Adapter) PrimaryKey(ctx context.Context, tableName string) (adapter.PrimaryKeyInfo, error) {
	rows, err := s.Query(ctx, fmt.Sprintf(
		"SELECT i.name AS constraint_name, c.name AS column_name "+
			"FROM sys.indexes i "+
			"JOIN sys.index_columns ic ON ic.object_id = i.object_id AND ic.index_id = i.index_id "+
			"JOIN sys.columns c ON c.object_id = ic.object_id AND c.column_id = ic.column_id "+
			"WHERE i.object_id = OBJECT_ID(%s) AND i.is_primary_key = 1 "+
			"ORDER BY ic.key_ordinal",
		s.QuoteString(s.qualified(tableName)),
	))
	if err != nil {
		return adapter.PrimaryKeyInfo{}, fmt.Errorf("failed to read primary key of %q: %w", tableName, err)
	}

	pk := adapter.PrimaryKeyInfo{}
	for _, row := range rows {
		pk.Name = row.String("constraint_name")
		pk.Columns = append(pk.Columns, row.String("column_name"))
	}
	return pk, nil
}

// defaultConstraint returns the name of the default constraint bound to a
// column, or "" when there is none.
func (s *Adapter) defaultConstraint(ctx context.Context, tableName, columnName string) (string, error) {
	row, err := s.FetchRow(ctx, fmt.Sprintf(
		"SELECT dc.name AS constraint_name FROM sys.default_constraints dc "+
			"JOIN sys.columns c ON c.object_id = dc.parent_object_id AND c.column_id = dc.parent_column_id "+
			"WHERE dc.parent_object_id = OBJECT_ID(%s) AND c.name = %s",
		s.QuoteString(s.qualified(tableName)), s.QuoteString(columnName),
	))
	if err != nil {
		return "", fmt.Errorf("failed to look up the default of %s.%s: %w", tableName, columnName, err)
	}
	if row == nil {
		return "", nil
	}
	return row.String("constraint_name"), nil
}
