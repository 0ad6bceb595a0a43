package redshift

import (
	"context"
	"fmt"

	"github.com/root-talis/kaizou/adapter"
	"github.com/root-talis/kaizou/adapter/postgres"
)

// Indexes is always empty: Redshift has no secondary indexes.
func (r *Adapter) Indexes(context.Context, string) ([]adapter.IndexInfo, error) {
	return []adapter.IndexInfo{}, nil
}

// ForeignKeys reads the information schema; Redshift lacks the array
// functions the postgres catalog query relies on.
func (r *Adapter) ForeignKeys(ctx context.Context, tableName string) ([]adapter.ForeignKeyInfo, error) {
	schemaName, table := r.SplitTableName(tableName)

	rows, err := r.Query(ctx, fmt.Sprintf(
		"SELECT tc.constraint_name, kcu.column_name, "+
			"ccu.table_name AS referenced_table_name, ccu.column_name AS referenced_column_name "+
			"FROM information_schema.table_constraints tc "+
			"JOIN information_schema.key_column_usage kcu ON tc.constraint_name = kcu.constraint_name "+
			"AND tc.table_schema = kcu.table_schema AND tc.table_name = kcu.table_name "+
			"JOIN information_schema.constraint_column_usage ccu ON ccu.constraint_name = tc.constraint_name "+
			"AND ccu.constraint_schema = tc.table_schema "+
			"WHERE tc.constraint_type = 'FOREIGN KEY' AND tc.table_schema = %s AND tc.table_name = %s "+
			"ORDER BY tc.constraint_name, kcu.ordinal_position",
		r.QuoteString(schemaName), r.QuoteString(table),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to list foreign keys of %q: %w", tableName, err)
	}

	return postgres.ForeignKeysFromRows(rows), nil
}
