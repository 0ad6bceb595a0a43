package sqlite

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/root-talis/kaizou/adapter"
	"github.com/root-talis/kaizou/schema"
)

func (s *Adapter) HasTable(ctx context.Context, name string) (bool, error) {
	row, err := s.FetchRow(ctx, fmt.Sprintf(
		"SELECT 1 AS found FROM sqlite_master WHERE type = 'table' AND name = %s", s.QuoteString(name)))
	if err != nil {
		return false, fmt.Errorf("failed to look up table %q: %w", name, err)
	}
	return row != nil, nil
}

func (s *Adapter) tableInfo(ctx context.Context, tableName string) ([]adapter.Row, error) {
	rows, err := s.Query(ctx, fmt.Sprintf("PRAGMA table_info(%s)", s.QuoteTableName(tableName)))
	if err != nil {
		return nil, fmt.Errorf("failed to list columns of %q: %w", tableName, err)
	}
	return rows, nil
}

func (s *Adapter) GetColumns(ctx context.Context, tableName string) ([]*schema.Column, error) {
	rows, err := s.tableInfo(ctx, tableName)
	if err != nil {
		return nil, err
	}

	keyed := 0
	for _, row := range rows {
		if row.Int("pk") > 0 {
			keyed++
		}
	}

	columns := make([]*schema.Column, 0, len(rows))
	for _, row := range rows {
		columns = append(columns, s.columnFromRow(row, keyed == 1))
	}
	return columns, nil
}

// columnFromRow maps a PRAGMA table_info row. An integer column that is the
// whole primary key aliases the rowid and counts as an identity.
func (s *Adapter) columnFromRow(row adapter.Row, singleKey bool) *schema.Column {
	native := row.String("type")

	typ, err := s.GetColumnType(native)
	if err != nil {
		typ = schema.LiteralType(native)
	}

	c := &schema.Column{
		Name:   row.String("name"),
		Type:   typ,
		Null:   row.Int("notnull") == 0,
		Signed: true,
	}

	if singleKey && row.Int("pk") > 0 && typ == schema.TypeInteger {
		c.Identity = true
	}

	if row.Has("dflt_value") {
		c.Default = parseDefault(row.String("dflt_value"))
	}

	_, args := adapter.ParseNativeType(native)
	switch {
	case typ == schema.TypeDecimal && len(args) > 0:
		c.Precision = args[0]
		if len(args) > 1 {
			c.Scale = args[1]
		}
	case len(args) > 0:
		c.Limit = args[0]
	}

	return c
}

func (s *Adapter) Indexes(ctx context.Context, tableName string) ([]adapter.IndexInfo, error) {
	list, err := s.Query(ctx, fmt.Sprintf("PRAGMA index_list(%s)", s.QuoteTableName(tableName)))
	if err != nil {
		return nil, fmt.Errorf("failed to list indexes of %q: %w", tableName, err)
	}

	indexes := make([]adapter.IndexInfo, 0, len(list))
	for _, row := range list {
		name := row.String("name")

		info, err := s.Query(ctx, fmt.Sprintf("PRAGMA index_info(%s)", s.QuoteColumnName(name)))
		if err != nil {
			return nil, fmt.Errorf("failed to read index %q: %w", name, err)
		}
		sort.SliceStable(info, func(i, j int) bool { return info[i].Int("seqno") < info[j].Int("seqno") })

		columns := make([]string, 0, len(info))
		for _, col := range info {
			columns = append(columns, col.String("name"))
		}

		indexes = append(indexes, adapter.IndexInfo{
			Name:    name,
			Columns: columns,
			Unique:  row.Bool("unique"),
		})
	}
	return indexes, nil
}

// ForeignKeys reads PRAGMA foreign_key_list. SQLite does not name foreign
// key constraints, so every key is reported without a name.
func (s *Adapter) ForeignKeys(ctx context.Context, tableName string) ([]adapter.ForeignKeyInfo, error) {
	rows, err := s.Query(ctx, fmt.Sprintf("PRAGMA foreign_key_list(%s)", s.QuoteTableName(tableName)))
	if err != nil {
		return nil, fmt.Errorf("failed to list foreign keys of %q: %w", tableName, err)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Int("id") != rows[j].Int("id") {
			return rows[i].Int("id") < rows[j].Int("id")
		}
		return rows[i].Int("seq") < rows[j].Int("seq")
	})

	columns := adapter.GroupColumns(rows, "id", "from")
	referenced := adapter.GroupColumns(rows, "id", "to")

	fks := make([]adapter.ForeignKeyInfo, 0, len(columns.Names))
	for _, id := range columns.Names {
		fks = append(fks, adapter.ForeignKeyInfo{
			Columns:           columns.Columns[id],
			ReferencedTable:   columns.First[id].String("table"),
			ReferencedColumns: referenced.Columns[id],
		})
	}
	return fks, nil
}

func (s *Adapter) PrimaryKey(ctx context.Context, tableName string) (adapter.PrimaryKeyInfo, error) {
	rows, err := s.tableInfo(ctx, tableName)
	if err != nil {
		return adapter.PrimaryKeyInfo{}, err
	}

	keyed := make([]adapter.Row, 0, len(rows))
	for _, row := range rows {
		if row.Int("pk") > 0 {
			keyed = append(keyed, row)
		}
	}
	sort.SliceStable(keyed, func(i, j int) bool { return keyed[i].Int("pk") < keyed[j].Int("pk") })

	pk := adapter.PrimaryKeyInfo{}
	for _, row := range keyed {
		pk.Columns = append(pk.Columns, row.String("name"))
	}
	return pk, nil
}

func parseDefault(value string) any {
	value = strings.TrimSpace(value)
	if len(value) >= 2 && value[0] == '\'' && value[len(value)-1] == '\'' {
		return strings.ReplaceAll(value[1:len(value)-1], "''", "'")
	}
	if n, err := strconv.ParseInt(value, 10, 64); err == nil {
		return n
	}
	return schema.Literal(value)
}

func isIntegerKey(c *schema.Column) bool {
	return c.Identity && strings.EqualFold(string(c.Type), string(schema.TypeInteger))
}
