// Package table is the builder migrations use to describe schema changes.
// A Table buffers actions and pending objects until Create, Update or Save
// hands the buffer to the adapter through a Plan.
package table

import (
	"context"
	"fmt"
	"slices"

	"github.com/root-talis/kaizou/adapter"
	"github.com/root-talis/kaizou/schema"
)

const (
	DefaultCreatedColumn = "created_at"
	DefaultUpdatedColumn = "updated_at"
)

// Table accumulates actions against one table. Builder methods return the
// table for chaining; the first error sticks and is returned by Err and by
// every flush.
type Table struct {
	table   *schema.Table
	adapter adapter.Adapter

	columns     []*schema.Column
	indexes     []*schema.Index
	foreignKeys []*schema.ForeignKey
	rows        []adapter.Row
	actions     []schema.Action

	err error
}

func New(name string, opts schema.Options, a adapter.Adapter) *Table {
	return &Table{table: schema.NewTable(name, opts), adapter: a}
}

func (t *Table) Name() string {
	return t.table.Name
}

// Table returns a copy of the table descriptor.
func (t *Table) Table() *schema.Table {
	return t.table.Clone()
}

func (t *Table) Err() error {
	return t.err
}

func (t *Table) fail(err error) *Table {
	if t.err == nil && err != nil {
		t.err = fmt.Errorf("table %q: %w", t.table.Name, err)
	}
	return t
}

func (t *Table) push(action schema.Action) *Table {
	t.actions = append(t.actions, action)
	return t
}

// ---

// Exists asks the adapter whether the table is already there.
func (t *Table) Exists(ctx context.Context) (bool, error) {
	return t.adapter.HasTable(ctx, t.table.Name)
}

// HasColumn looks at the pending columns first, then at the database.
func (t *Table) HasColumn(ctx context.Context, name string) (bool, error) {
	for _, c := range t.columns {
		if c.Name == name {
			return true, nil
		}
	}
	return t.adapter.HasColumn(ctx, t.table.Name, name)
}

func (t *Table) HasIndex(ctx context.Context, columns []string) (bool, error) {
	for _, idx := range t.indexes {
		if slices.Equal(idx.Columns, columns) {
			return true, nil
		}
	}
	return t.adapter.HasIndex(ctx, t.table.Name, columns)
}

func (t *Table) HasForeignKey(ctx context.Context, columns []string, constraint string) (bool, error) {
	for _, fk := range t.foreignKeys {
		if (constraint != "" && fk.Constraint == constraint) || (constraint == "" && slices.Equal(fk.Columns, columns)) {
			return true, nil
		}
	}
	return t.adapter.HasForeignKey(ctx, t.table.Name, columns, constraint)
}

// PendingColumns returns the columns added since the last flush.
func (t *Table) PendingColumns() []*schema.Column {
	out := make([]*schema.Column, 0, len(t.columns))
	for _, c := range t.columns {
		out = append(out, c.Clone())
	}
	return out
}

// Actions returns the buffered actions in call order.
func (t *Table) Actions() []schema.Action {
	return append([]schema.Action(nil), t.actions...)
}

// ---

// AddColumn resolves the column through the adapter, so data domains and
// dialect limit constants apply.
func (t *Table) AddColumn(name string, typ schema.ColumnType, opts schema.Options) *Table {
	c, err := t.adapter.GetColumnForType(name, typ, opts)
	if err != nil {
		return t.fail(err)
	}
	return t.AddColumnDef(c)
}

// AddColumnDef adds a fully described column as is.
func (t *Table) AddColumnDef(c *schema.Column) *Table {
	if c.Name == "" {
		return t.fail(fmt.Errorf("%w: column without a name", schema.ErrInvalidOption))
	}
	t.columns = append(t.columns, c.Clone())
	return t.push(schema.NewAddColumn(t.table, c))
}

func (t *Table) RemoveColumn(name string) *Table {
	return t.push(schema.NewRemoveColumn(t.table, &schema.Column{Name: name}))
}

func (t *Table) RenameColumn(oldName, newName string) *Table {
	return t.push(schema.NewRenameColumn(t.table, &schema.Column{Name: oldName}, newName))
}

// ChangeColumn replaces the definition of name. A "name" other than the
// current one is not an option; rename with RenameColumn.
func (t *Table) ChangeColumn(name string, typ schema.ColumnType, opts schema.Options) *Table {
	c, err := t.adapter.GetColumnForType(name, typ, opts)
	if err != nil {
		return t.fail(err)
	}
	return t.push(schema.NewChangeColumn(t.table, name, c))
}

func (t *Table) AddIndex(columns []string, opts schema.Options) *Table {
	idx, err := schema.NewIndex(columns, opts)
	if err != nil {
		return t.fail(err)
	}
	t.indexes = append(t.indexes, idx.Clone())
	return t.push(schema.NewAddIndex(t.table, idx))
}

func (t *Table) RemoveIndex(columns []string) *Table {
	return t.push(schema.NewDropIndex(t.table, &schema.Index{Columns: columns, Type: schema.IndexPlain}))
}

func (t *Table) RemoveIndexByName(name string) *Table {
	return t.push(schema.NewDropIndexByName(t.table, name))
}

// AddForeignKey references columns of another table; no referenced columns
// means "id".
func (t *Table) AddForeignKey(columns []string, referencedTable string, referencedColumns []string, opts schema.Options) *Table {
	fk, err := schema.NewForeignKey(columns, schema.NewTable(referencedTable, nil), referencedColumns, opts)
	if err != nil {
		return t.fail(err)
	}
	t.foreignKeys = append(t.foreignKeys, fk.Clone())
	return t.push(schema.NewAddForeignKey(t.table, fk))
}

func (t *Table) DropForeignKey(columns []string, constraint string) *Table {
	return t.push(schema.NewDropForeignKey(t.table, columns, constraint))
}

func (t *Table) ChangePrimaryKey(columns []string) *Table {
	return t.push(schema.NewChangePrimaryKey(t.table, columns))
}

// ChangeComment sets the table comment; nil removes it.
func (t *Table) ChangeComment(comment *string) *Table {
	return t.push(schema.NewChangeComment(t.table, comment))
}

// Rename records the rename; later actions target the new name.
func (t *Table) Rename(newName string) *Table {
	t.push(schema.NewRenameTable(t.table, newName))
	t.table = t.table.Renamed(newName)
	return t
}

func (t *Table) Drop() *Table {
	return t.push(schema.NewDropTable(t.table))
}

// AddTimestamps adds a creation column defaulting to CURRENT_TIMESTAMP and a
// nullable update column that the database refreshes where it can. Empty
// names fall back to created_at and updated_at.
func (t *Table) AddTimestamps(created, updated string, withTimezone bool) *Table {
	if created == "" {
		created = DefaultCreatedColumn
	}
	if updated == "" {
		updated = DefaultUpdatedColumn
	}

	t.AddColumn(created, schema.TypeTimestamp, schema.Options{
		"default":  schema.Literal("CURRENT_TIMESTAMP"),
		"timezone": withTimezone,
	})
	return t.AddColumn(updated, schema.TypeTimestamp, schema.Options{
		"null":     true,
		"update":   "CURRENT_TIMESTAMP",
		"timezone": withTimezone,
	})
}

// Insert queues rows that are written after the structural changes.
func (t *Table) Insert(rows ...adapter.Row) *Table {
	t.rows = append(t.rows, rows...)
	return t
}

// ---

// Create prepends the table creation to the buffer and flushes it.
func (t *Table) Create(ctx context.Context) error {
	if t.err != nil {
		return t.err
	}
	t.actions = append([]schema.Action{schema.NewCreateTable(t.table)}, t.actions...)
	return t.flush(ctx)
}

// Update flushes the buffer against an existing table.
func (t *Table) Update(ctx context.Context) error {
	return t.flush(ctx)
}

// Save creates the table when it does not exist yet and updates it
// otherwise.
func (t *Table) Save(ctx context.Context) error {
	if t.err != nil {
		return t.err
	}

	exists, err := t.Exists(ctx)
	if err != nil {
		return err
	}
	if exists {
		return t.Update(ctx)
	}
	return t.Create(ctx)
}

// flush runs the plan and the queued inserts in one transaction and clears
// the pending state, whether or not it succeeded.
func (t *Table) flush(ctx context.Context) error {
	if t.err != nil {
		return t.err
	}

	actions, rows := t.actions, t.rows
	t.Reset()

	plan := NewPlan(actions)

	return inTransaction(ctx, t.adapter, func() error {
		if err := plan.Execute(ctx, t.adapter); err != nil {
			return err
		}
		if len(rows) > 0 {
			if err := t.adapter.BulkInsert(ctx, t.table, rows); err != nil {
				return fmt.Errorf("failed to insert into %q: %w", t.table.Name, err)
			}
		}
		return nil
	})
}

// Reset drops everything buffered since the last flush.
func (t *Table) Reset() {
	t.columns = nil
	t.indexes = nil
	t.foreignKeys = nil
	t.rows = nil
	t.actions = nil
	t.err = nil
}

func inTransaction(ctx context.Context, a adapter.Adapter, fn func() error) error {
	if err := a.BeginTransaction(ctx); err != nil {
		return err
	}
	if err := fn(); err != nil {
		_ = a.RollbackTransaction(ctx)
		return err
	}
	if err := a.CommitTransaction(ctx); err != nil {
		_ = a.RollbackTransaction(ctx)
		return err
	}
	return nil
}
