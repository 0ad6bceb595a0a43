package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/root-talis/kaizou/adapter"
	"github.com/root-talis/kaizou/schema"
)

func (p *Adapter) HasTable(ctx context.Context, name string) (bool, error) {
	schemaName, table := p.SplitTableName(name)

	row, err := p.FetchRow(ctx, fmt.Sprintf(
		"SELECT 1 AS found FROM information_schema.tables WHERE table_schema = %s AND table_name = %s",
		p.qs(schemaName), p.qs(table),
	))
	if err != nil {
		return false, fmt.Errorf("failed to look up table %q: %w", name, err)
	}
	return row != nil, nil
}

func (p *Adapter) GetColumns(ctx context.Context, tableName string) ([]*schema.Column, error) {
	schemaName, table := p.SplitTableName(tableName)

	rows, err := p.Query(ctx, fmt.Sprintf(
		"SELECT column_name, data_type, udt_name, is_nullable, column_default, "+
			"character_maximum_length, numeric_precision, numeric_scale "+
			"FROM information_schema.columns WHERE table_schema = %s AND table_name = %s "+
			"ORDER BY ordinal_position",
		p.qs(schemaName), p.qs(table),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to list columns of %q: %w", tableName, err)
	}

	columns := make([]*schema.Column, 0, len(rows))
	for _, row := range rows {
		columns = append(columns, p.columnFromRow(row))
	}
	return columns, nil
}

func (p *Adapter) columnFromRow(row adapter.Row) *schema.Column {
	native := row.String("data_type")
	if native == "USER-DEFINED" || native == "ARRAY" {
		native = row.String("udt_name")
	}

	typ, err := p.Dialect().GetColumnType(native)
	if err != nil {
		typ = schema.LiteralType(native)
	}

	c := &schema.Column{
		Name:   row.String("column_name"),
		Type:   typ,
		Null:   strings.EqualFold(row.String("is_nullable"), "YES"),
		Signed: true,
	}

	if def := row.String("column_default"); def != "" {
		if strings.HasPrefix(def, "nextval(") {
			c.Identity = true
		} else {
			c.Default = schema.Literal(def)
		}
	}

	switch typ {
	case schema.TypeDecimal:
		c.Precision = int(row.Int("numeric_precision"))
		c.Scale = int(row.Int("numeric_scale"))
	case schema.TypeString, schema.TypeChar:
		c.Limit = int(row.Int("character_maximum_length"))
	}
	if strings.Contains(native, "with time zone") {
		c.Timezone = true
	}

	return c
}

// Indexes reads pg_index; the primary key is reported as well.
func (p *Adapter) Indexes(ctx context.Context, tableName string) ([]adapter.IndexInfo, error) {
	schemaName, table := p.SplitTableName(tableName)

	rows, err := p.Query(ctx, fmt.Sprintf(
		"SELECT i.relname AS index_name, a.attname AS column_name, ix.indisunique AS is_unique "+
			"FROM pg_class t "+
			"JOIN pg_index ix ON t.oid = ix.indrelid "+
			"JOIN pg_class i ON i.oid = ix.indexrelid "+
			"JOIN pg_namespace n ON n.oid = t.relnamespace "+
			"JOIN LATERAL unnest(ix.indkey) WITH ORDINALITY AS k(attnum, ord) ON true "+
			"JOIN pg_attribute a ON a.attrelid = t.oid AND a.attnum = k.attnum "+
			"WHERE n.nspname = %s AND t.relname = %s "+
			"ORDER BY i.relname, k.ord",
		p.qs(schemaName), p.qs(table),
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

func (p *Adapter) ForeignKeys(ctx context.Context, tableName string) ([]adapter.ForeignKeyInfo, error) {
	schemaName, table := p.SplitTableName(tableName)

	rows, err := p.Query(ctx, fmt.Sprintf(
		"SELECT c.conname AS constraint_name, a.attname AS column_name, "+
			"rt.relname AS referenced_table_name, ra.attname AS referenced_column_name "+
			"FROM pg_constraint c "+
			"JOIN pg_class t ON t.oid = c.conrelid "+
			"JOIN pg_namespace n ON n.oid = t.relnamespace "+
			"JOIN pg_class rt ON rt.oid = c.confrelid "+
			"CROSS JOIN LATERAL unnest(c.conkey, c.confkey) WITH ORDINALITY AS k(attnum, refnum, ord) "+
			"JOIN pg_attribute a ON a.attrelid = c.conrelid AND a.attnum = k.attnum "+
			"JOIN pg_attribute ra ON ra.attrelid = c.confrelid AND ra.attnum = k.refnum "+
			"WHERE c.contype = 'f' AND n.nspname = %s AND t.relname = %s "+
			"ORDER BY c.conname, k.ord",
		p.qs(schemaName), p.qs(table),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to list foreign keys of %q: %w", tableName, err)
	}

	return ForeignKeysFromRows(rows), nil
}

// ForeignKeysFromRows groups one-row-per-column results. Repeated
// (constraint, column) pairs, as produced by joins over the information
// schema, are collapsed.
func ForeignKeysFromRows(rows []adapter.Row) []adapter.ForeignKeyInfo {
	columns := adapter.GroupColumns(rows, "constraint_name", "column_name")
	referenced := adapter.GroupColumns(rows, "constraint_name", "referenced_column_name")

	fks := make([]adapter.ForeignKeyInfo, 0, len(columns.Names))
	for _, name := range columns.Names {
		fks = append(fks, adapter.ForeignKeyInfo{
			Name:              name,
			Columns:           unique(columns.Columns[name]),
			ReferencedTable:   columns.First[name].String("referenced_table_name"),
			ReferencedColumns: unique(referenced.Columns[name]),
		})
	}
	return fks
}

func unique(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

func (p *Adapter) PrimaryKey(ctx context.Context, tableName string) (adapter.PrimaryKeyInfo, error) {
	schemaName, table := p.SplitTableName(tableName)

	rows, err := p.Query(ctx, fmt.Sprintf(
		"SELECT tc.constraint_name, kcu.column_name "+
			"FROM information_schema.table_constraints tc "+
			"JOIN information_schema.key_column_usage kcu ON tc.constraint_name = kcu.constraint_name "+
			"AND tc.table_schema = kcu.table_schema AND tc.table_name = kcu.table_name "+
			"WHERE tc.constraint_type = 'PRIMARY KEY' AND tc.table_schema = %s AND tc.table_name = %s "+
			"ORDER BY kcu.ordinal_position",
		p.qs(schemaName), p.qs(table),
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
