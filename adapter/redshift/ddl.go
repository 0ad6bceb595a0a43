package redshift

import (
	"context"
	"fmt"
	"strings"

	"github.com/root-talis/kaizou/adapter"
	"github.com/root-talis/kaizou/schema"
)

// CreateTableSQL appends the distribution and sort attributes read from the
// table options diststyle, distkey and sortkey.
func (r *Adapter) CreateTableSQL(ctx context.Context, table *schema.Table, columns []*schema.Column, indexes []*schema.Index) ([]string, error) {
	if len(indexes) > 0 {
		return nil, adapter.NewUnsupportedOperationError(Name, "CREATE INDEX")
	}

	attributes, err := r.tableAttributes(table.Options)
	if err != nil {
		return nil, err
	}

	statements, err := r.Adapter.CreateTableSQL(ctx, table, columns, nil)
	if err != nil {
		return nil, err
	}
	statements[0] += attributes

	return statements, nil
}

func (r *Adapter) tableAttributes(opts schema.Options) (string, error) {
	var sb strings.Builder

	if style, ok := opts.String("diststyle"); ok {
		switch s := strings.ToUpper(style); s {
		case "AUTO", "EVEN", "KEY", "ALL":
			sb.WriteString(" DISTSTYLE " + s)
		default:
			return "", fmt.Errorf("%w: unknown diststyle %q", schema.ErrInvalidOption, style)
		}
	}

	if key, ok := opts.String("distkey"); ok {
		sb.WriteString(" DISTKEY(" + r.QuoteColumnName(key) + ")")
	}

	if _, present := opts["sortkey"]; present {
		keys, ok := opts.Strings("sortkey")
		if !ok || len(keys) == 0 {
			return "", fmt.Errorf("%w: sortkey must name one or more columns", schema.ErrInvalidOption)
		}
		sb.WriteString(" SORTKEY(" + r.QuoteColumnNames(keys) + ")")
	}

	return sb.String(), nil
}

func (r *Adapter) ChangeColumnInstructions(context.Context, string, string, *schema.Column) (*adapter.AlterInstructions, error) {
	return nil, adapter.NewUnsupportedOperationError(Name, "CHANGE COLUMN")
}

func (r *Adapter) AddIndexInstructions(context.Context, *schema.Table, *schema.Index) (*adapter.AlterInstructions, error) {
	return nil, adapter.NewUnsupportedOperationError(Name, "CREATE INDEX")
}

func (r *Adapter) DropIndexByColumnsInstructions(context.Context, string, []string) (*adapter.AlterInstructions, error) {
	return nil, adapter.NewUnsupportedOperationError(Name, "DROP INDEX")
}

func (r *Adapter) DropIndexByNameInstructions(context.Context, string, string) (*adapter.AlterInstructions, error) {
	return nil, adapter.NewUnsupportedOperationError(Name, "DROP INDEX")
}
