package adapter

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/root-talis/kaizou/schema"
)

// CreateTable prepends the implicit identity column unless the table opts
// out of it, then runs the dialect's CREATE statements in a transaction.
func (b *Base) CreateTable(ctx context.Context, table *schema.Table, columns []*schema.Column, indexes []*schema.Index) error {
	all := make([]*schema.Column, 0, len(columns)+1)
	if id := table.ImplicitID(columns); id != nil {
		all = append(all, id)
	}
	all = append(all, columns...)

	if err := b.validateColumns(all...); err != nil {
		return fmt.Errorf("failed to create table %q: %w", table.Name, err)
	}

	statements, err := b.dialect.CreateTableSQL(ctx, table, all, indexes)
	if err != nil {
		return fmt.Errorf("failed to create table %q: %w", table.Name, err)
	}

	return b.InTransaction(ctx, func() error {
		return b.ExecuteAll(ctx, statements)
	})
}

// ExecuteActions merges the instructions of a batch of actions on one table
// into ALTER TABLE statements followed by the post steps.
func (b *Base) ExecuteActions(ctx context.Context, table *schema.Table, actions []schema.Action) error {
	if len(actions) == 0 {
		return nil
	}

	instructions := &AlterInstructions{}
	for _, action := range actions {
		ins, err := b.instructionsFor(ctx, action)
		if err != nil {
			return fmt.Errorf("%s on %q: %w", action.Kind(), table.Name, err)
		}
		instructions.Merge(ins)
	}

	statements := b.dialect.AlterTableSQL(table.Name, instructions.AlterParts)
	statements = append(statements, instructions.PostSteps...)

	return b.InTransaction(ctx, func() error {
		return b.ExecuteAll(ctx, statements)
	})
}

func (b *Base) instructionsFor(ctx context.Context, action schema.Action) (*AlterInstructions, error) { //nolint:cyclop
	d := b.dialect

	switch a := action.(type) {
	case *schema.DropTable:
		return d.DropTableInstructions(ctx, a.TableName())
	case *schema.RenameTable:
		return d.RenameTableInstructions(ctx, a.TableName(), a.NewName())
	case *schema.AddColumn:
		column := a.Column()
		if err := b.validateColumns(column); err != nil {
			return nil, err
		}
		return d.AddColumnInstructions(ctx, a.Table(), column)
	case *schema.RemoveColumn:
		return d.DropColumnInstructions(ctx, a.TableName(), a.Column().Name)
	case *schema.RenameColumn:
		return d.RenameColumnInstructions(ctx, a.TableName(), a.Column().Name, a.NewName())
	case *schema.ChangeColumn:
		column := a.Column()
		if err := b.validateColumns(column); err != nil {
			return nil, err
		}
		return d.ChangeColumnInstructions(ctx, a.TableName(), a.ColumnName(), column)
	case *schema.AddIndex:
		return d.AddIndexInstructions(ctx, a.Table(), a.Index())
	case *schema.DropIndex:
		idx := a.Index()
		if len(idx.Columns) > 0 {
			return d.DropIndexByColumnsInstructions(ctx, a.TableName(), idx.Columns)
		}
		return d.DropIndexByNameInstructions(ctx, a.TableName(), idx.Name)
	case *schema.AddForeignKey:
		return d.AddForeignKeyInstructions(ctx, a.Table(), a.ForeignKey())
	case *schema.DropForeignKey:
		fk := a.ForeignKey()
		return d.DropForeignKeyInstructions(ctx, a.TableName(), fk.Columns, fk.Constraint)
	case *schema.ChangePrimaryKey:
		return d.ChangePrimaryKeyInstructions(ctx, a.Table(), a.Columns())
	case *schema.ChangeComment:
		var comment *string
		if c, ok := a.Comment(); ok {
			comment = &c
		}
		return d.ChangeCommentInstructions(ctx, a.Table(), comment)
	default:
		return nil, fmt.Errorf("%w: %s cannot be executed as an alteration",
			ErrInvalidConfiguration, action.Kind())
	}
}

// ---

func (b *Base) HasColumn(ctx context.Context, tableName, columnName string) (bool, error) {
	columns, err := b.dialect.GetColumns(ctx, tableName)
	if err != nil {
		return false, err
	}
	for _, c := range columns {
		if c.Name == columnName {
			return true, nil
		}
	}
	return false, nil
}

// HasIndex matches the exact column list, order and case included.
func (b *Base) HasIndex(ctx context.Context, tableName string, columns []string) (bool, error) {
	_, err := b.FindIndex(ctx, tableName, columns)
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (b *Base) HasIndexByName(ctx context.Context, tableName, indexName string) (bool, error) {
	indexes, err := b.dialect.Indexes(ctx, tableName)
	if err != nil {
		return false, err
	}
	for _, idx := range indexes {
		if idx.Name == indexName {
			return true, nil
		}
	}
	return false, nil
}

// HasPrimaryKey matches by constraint name when one is given, by the exact
// column list otherwise.
func (b *Base) HasPrimaryKey(ctx context.Context, tableName string, columns []string, constraint string) (bool, error) {
	pk, err := b.dialect.PrimaryKey(ctx, tableName)
	if err != nil {
		return false, err
	}
	if constraint != "" {
		return pk.Name == constraint, nil
	}
	return len(pk.Columns) > 0 && slices.Equal(pk.Columns, columns), nil
}

// HasForeignKey matches by constraint name when one is given, by the column
// list otherwise.
func (b *Base) HasForeignKey(ctx context.Context, tableName string, columns []string, constraint string) (bool, error) {
	var err error
	if constraint != "" {
		_, err = b.FindForeignKeyByName(ctx, tableName, constraint)
	} else {
		_, err = b.FindForeignKey(ctx, tableName, columns)
	}

	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// FindIndex returns the index over exactly columns.
func (b *Base) FindIndex(ctx context.Context, tableName string, columns []string) (IndexInfo, error) {
	indexes, err := b.dialect.Indexes(ctx, tableName)
	if err != nil {
		return IndexInfo{}, err
	}
	for _, idx := range indexes {
		if slices.Equal(idx.Columns, columns) {
			return idx, nil
		}
	}
	return IndexInfo{}, fmt.Errorf("%w: no index on %s(%s)", ErrIndexNotFound, tableName, strings.Join(columns, ", "))
}

// FindForeignKey returns the foreign key over columns. Column names are
// compared case-insensitively when the dialect folds them.
func (b *Base) FindForeignKey(ctx context.Context, tableName string, columns []string) (ForeignKeyInfo, error) {
	fks, err := b.dialect.ForeignKeys(ctx, tableName)
	if err != nil {
		return ForeignKeyInfo{}, err
	}

	fold := b.dialect.FoldsForeignKeyCase()
	for _, fk := range fks {
		if columnsMatch(fk.Columns, columns, fold) {
			return fk, nil
		}
	}
	return ForeignKeyInfo{}, fmt.Errorf("%w: no foreign key on %s(%s)",
		ErrForeignKeyNotFound, tableName, strings.Join(columns, ", "))
}

func (b *Base) FindForeignKeyByName(ctx context.Context, tableName, constraint string) (ForeignKeyInfo, error) {
	fks, err := b.dialect.ForeignKeys(ctx, tableName)
	if err != nil {
		return ForeignKeyInfo{}, err
	}
	for _, fk := range fks {
		if fk.Name == constraint {
			return fk, nil
		}
	}
	return ForeignKeyInfo{}, fmt.Errorf("%w: %q on %s", ErrForeignKeyNotFound, constraint, tableName)
}

// FindColumn returns the live definition of a column.
func (b *Base) FindColumn(ctx context.Context, tableName, columnName string) (*schema.Column, error) {
	columns, err := b.dialect.GetColumns(ctx, tableName)
	if err != nil {
		return nil, err
	}
	for _, c := range columns {
		if c.Name == columnName {
			return c, nil
		}
	}
	return nil, fmt.Errorf("%w: %s.%s", ErrColumnNotFound, tableName, columnName)
}

func columnsMatch(actual, expected []string, fold bool) bool {
	if len(actual) != len(expected) {
		return false
	}
	for i := range actual {
		if fold {
			if !strings.EqualFold(actual[i], expected[i]) {
				return false
			}
		} else if actual[i] != expected[i] {
			return false
		}
	}
	return true
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// ---

// ForeignKeyClause renders "FOREIGN KEY (...) REFERENCES t (...)" with the
// reference actions that are set.
func (b *Base) ForeignKeyClause(fk *schema.ForeignKey) string {
	referenced := ""
	if fk.ReferencedTable != nil {
		referenced = fk.ReferencedTable.Name
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "FOREIGN KEY (%s) REFERENCES %s (%s)",
		b.QuoteColumnNames(fk.Columns),
		b.dialect.QuoteTableName(referenced),
		b.QuoteColumnNames(fk.ReferencedColumns),
	)
	if fk.OnDelete != "" {
		sb.WriteString(" ON DELETE " + string(fk.OnDelete))
	}
	if fk.OnUpdate != "" {
		sb.WriteString(" ON UPDATE " + string(fk.OnUpdate))
	}
	return sb.String()
}

// GroupedColumns collects the rows of a metadata query that lists one
// column per row into ordered column lists per object name.
type GroupedColumns struct {
	Names   []string
	Columns map[string][]string
	First   map[string]Row
}

func GroupColumns(rows []Row, nameKey, columnKey string) GroupedColumns {
	g := GroupedColumns{Columns: map[string][]string{}, First: map[string]Row{}}
	for _, row := range rows {
		name := row.String(nameKey)
		if _, ok := g.Columns[name]; !ok {
			g.Names = append(g.Names, name)
			g.First[name] = row
		}
		g.Columns[name] = append(g.Columns[name], row.String(columnKey))
	}
	return g
}
