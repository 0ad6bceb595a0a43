// Package prefix is the table name wrapper, registered as "prefix". Every
// table name that reaches the inner adapter through a structural call or a
// metadata lookup gets the configured prefix and suffix.
package prefix

import (
	"context"
	"fmt"
	"strings"

	"github.com/root-talis/kaizou/adapter"
	"github.com/root-talis/kaizou/schema"
)

func init() {
	adapter.MustRegisterWrapper(adapter.PrefixWrapper, func(inner adapter.Adapter) (adapter.Adapter, error) {
		return New(inner), nil
	})
}

type Adapter struct {
	*adapter.Wrapper
	prefix string
	suffix string
}

// New reads the prefix and suffix from the inner adapter's options.
func New(inner adapter.Adapter) *Adapter {
	opts := inner.Options()
	return &Adapter{
		Wrapper: adapter.NewWrapper(inner),
		prefix:  opts.TablePrefix,
		suffix:  opts.TableSuffix,
	}
}

// TableName returns the name the inner adapter sees. In a schema qualified
// name only the table part is decorated.
func (p *Adapter) TableName(name string) string {
	if name == "" {
		return name
	}
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[:i+1] + p.prefix + name[i+1:] + p.suffix
	}
	return p.prefix + name + p.suffix
}

func (p *Adapter) table(t *schema.Table) *schema.Table {
	return t.Renamed(p.TableName(t.Name))
}

// ---

func (p *Adapter) HasTable(ctx context.Context, name string) (bool, error) {
	return p.Inner().HasTable(ctx, p.TableName(name))
}

func (p *Adapter) CreateTable(ctx context.Context, table *schema.Table, columns []*schema.Column, indexes []*schema.Index) error {
	return p.Inner().CreateTable(ctx, p.table(table), columns, indexes)
}

func (p *Adapter) TruncateTable(ctx context.Context, name string) error {
	return p.Inner().TruncateTable(ctx, p.TableName(name))
}

func (p *Adapter) ExecuteActions(ctx context.Context, table *schema.Table, actions []schema.Action) error {
	rewritten := make([]schema.Action, 0, len(actions))
	for _, action := range actions {
		a, err := p.rewrite(action)
		if err != nil {
			return err
		}
		rewritten = append(rewritten, a)
	}
	return p.Inner().ExecuteActions(ctx, p.table(table), rewritten)
}

func (p *Adapter) GetColumns(ctx context.Context, tableName string) ([]*schema.Column, error) {
	return p.Inner().GetColumns(ctx, p.TableName(tableName))
}

func (p *Adapter) HasColumn(ctx context.Context, tableName, columnName string) (bool, error) {
	return p.Inner().HasColumn(ctx, p.TableName(tableName), columnName)
}

func (p *Adapter) HasIndex(ctx context.Context, tableName string, columns []string) (bool, error) {
	return p.Inner().HasIndex(ctx, p.TableName(tableName), columns)
}

func (p *Adapter) HasIndexByName(ctx context.Context, tableName, indexName string) (bool, error) {
	return p.Inner().HasIndexByName(ctx, p.TableName(tableName), indexName)
}

func (p *Adapter) HasPrimaryKey(ctx context.Context, tableName string, columns []string, constraint string) (bool, error) {
	return p.Inner().HasPrimaryKey(ctx, p.TableName(tableName), columns, constraint)
}

func (p *Adapter) HasForeignKey(ctx context.Context, tableName string, columns []string, constraint string) (bool, error) {
	return p.Inner().HasForeignKey(ctx, p.TableName(tableName), columns, constraint)
}

func (p *Adapter) Insert(ctx context.Context, table *schema.Table, row adapter.Row) error {
	return p.Inner().Insert(ctx, p.table(table), row)
}

func (p *Adapter) BulkInsert(ctx context.Context, table *schema.Table, rows []adapter.Row) error {
	return p.Inner().BulkInsert(ctx, p.table(table), rows)
}

// ---

// rewrite rebuilds an action against the decorated table. Renames decorate
// the new name and foreign keys their referenced table too.
func (p *Adapter) rewrite(action schema.Action) (schema.Action, error) { //nolint:cyclop
	t := p.table(action.Table())

	switch a := action.(type) {
	case *schema.CreateTable:
		return schema.NewCreateTable(t), nil
	case *schema.DropTable:
		return schema.NewDropTable(t), nil
	case *schema.RenameTable:
		return schema.NewRenameTable(t, p.TableName(a.NewName())), nil
	case *schema.AddColumn:
		return schema.NewAddColumn(t, a.Column()), nil
	case *schema.RemoveColumn:
		return schema.NewRemoveColumn(t, a.Column()), nil
	case *schema.RenameColumn:
		return schema.NewRenameColumn(t, a.Column(), a.NewName()), nil
	case *schema.ChangeColumn:
		return schema.NewChangeColumn(t, a.ColumnName(), a.Column()), nil
	case *schema.AddIndex:
		return schema.NewAddIndex(t, a.Index()), nil
	case *schema.DropIndex:
		return schema.NewDropIndex(t, a.Index()), nil
	case *schema.AddForeignKey:
		fk := a.ForeignKey()
		if fk.ReferencedTable != nil {
			fk.ReferencedTable = p.table(fk.ReferencedTable)
		}
		return schema.NewAddForeignKey(t, fk), nil
	case *schema.DropForeignKey:
		fk := a.ForeignKey()
		return schema.NewDropForeignKey(t, fk.Columns, fk.Constraint), nil
	case *schema.ChangePrimaryKey:
		return schema.NewChangePrimaryKey(t, a.Columns()), nil
	case *schema.ChangeComment:
		var comment *string
		if c, ok := a.Comment(); ok {
			comment = &c
		}
		return schema.NewChangeComment(t, comment), nil
	default:
		return nil, fmt.Errorf("%w: cannot prefix a %s action", adapter.ErrInvalidConfiguration, action.Kind())
	}
}

var _ adapter.Adapter = (*Adapter)(nil)
