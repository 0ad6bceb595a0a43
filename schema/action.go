package schema

// ActionKind names an action variant.
type ActionKind string

const (
	KindCreateTable      ActionKind = "CreateTable"
	KindDropTable        ActionKind = "DropTable"
	KindRenameTable      ActionKind = "RenameTable"
	KindAddColumn        ActionKind = "AddColumn"
	KindRemoveColumn     ActionKind = "RemoveColumn"
	KindRenameColumn     ActionKind = "RenameColumn"
	KindChangeColumn     ActionKind = "ChangeColumn"
	KindAddIndex         ActionKind = "AddIndex"
	KindDropIndex        ActionKind = "DropIndex"
	KindAddForeignKey    ActionKind = "AddForeignKey"
	KindDropForeignKey   ActionKind = "DropForeignKey"
	KindChangePrimaryKey ActionKind = "ChangePrimaryKey"
	KindChangeComment    ActionKind = "ChangeComment"
)

// Action is one atomic schema change against a table. Actions are immutable:
// constructors copy their inputs and accessors return copies.
type Action interface {
	Kind() ActionKind
	Table() *Table
}

type base struct {
	table *Table
}

func (b base) Table() *Table {
	return b.table.Clone()
}

// TableName avoids copying the table when only the name is needed.
func (b base) TableName() string {
	return b.table.Name
}

func newBase(t *Table) base {
	return base{table: t.Clone()}
}

// ---

type CreateTable struct{ base }

func NewCreateTable(t *Table) *CreateTable { return &CreateTable{newBase(t)} }

func (*CreateTable) Kind() ActionKind { return KindCreateTable }

// ---

type DropTable struct{ base }

func NewDropTable(t *Table) *DropTable { return &DropTable{newBase(t)} }

func (*DropTable) Kind() ActionKind { return KindDropTable }

// ---

type RenameTable struct {
	base
	newName string
}

func NewRenameTable(t *Table, newName string) *RenameTable {
	return &RenameTable{base: newBase(t), newName: newName}
}

func (*RenameTable) Kind() ActionKind  { return KindRenameTable }
func (a *RenameTable) NewName() string { return a.newName }

// ---

type AddColumn struct {
	base
	column *Column
}

func NewAddColumn(t *Table, c *Column) *AddColumn {
	return &AddColumn{base: newBase(t), column: c.Clone()}
}

func (*AddColumn) Kind() ActionKind  { return KindAddColumn }
func (a *AddColumn) Column() *Column { return a.column.Clone() }

// ---

type RemoveColumn struct {
	base
	column *Column
}

func NewRemoveColumn(t *Table, c *Column) *RemoveColumn {
	return &RemoveColumn{base: newBase(t), column: c.Clone()}
}

func (*RemoveColumn) Kind() ActionKind  { return KindRemoveColumn }
func (a *RemoveColumn) Column() *Column { return a.column.Clone() }

// ---

type RenameColumn struct {
	base
	column  *Column
	newName string
}

// NewRenameColumn renames c (which carries the current name) to newName.
func NewRenameColumn(t *Table, c *Column, newName string) *RenameColumn {
	return &RenameColumn{base: newBase(t), column: c.Clone(), newName: newName}
}

func (*RenameColumn) Kind() ActionKind  { return KindRenameColumn }
func (a *RenameColumn) Column() *Column { return a.column.Clone() }
func (a *RenameColumn) NewName() string { return a.newName }

// ---

type ChangeColumn struct {
	base
	columnName string
	column     *Column
}

// NewChangeColumn replaces the definition of columnName with c. A different
// c.Name renames the column as well.
func NewChangeColumn(t *Table, columnName string, c *Column) *ChangeColumn {
	return &ChangeColumn{base: newBase(t), columnName: columnName, column: c.Clone()}
}

func (*ChangeColumn) Kind() ActionKind     { return KindChangeColumn }
func (a *ChangeColumn) ColumnName() string { return a.columnName }
func (a *ChangeColumn) Column() *Column    { return a.column.Clone() }

// ---

type AddIndex struct {
	base
	index *Index
}

func NewAddIndex(t *Table, idx *Index) *AddIndex {
	return &AddIndex{base: newBase(t), index: idx.Clone()}
}

func (*AddIndex) Kind() ActionKind { return KindAddIndex }
func (a *AddIndex) Index() *Index  { return a.index.Clone() }

// ---

// DropIndex drops by columns when the index has any, by name otherwise.
type DropIndex struct {
	base
	index *Index
}

func NewDropIndex(t *Table, idx *Index) *DropIndex {
	return &DropIndex{base: newBase(t), index: idx.Clone()}
}

func NewDropIndexByName(t *Table, name string) *DropIndex {
	return &DropIndex{base: newBase(t), index: &Index{Name: name, Type: IndexPlain}}
}

func (*DropIndex) Kind() ActionKind { return KindDropIndex }
func (a *DropIndex) Index() *Index  { return a.index.Clone() }

// ---

type AddForeignKey struct {
	base
	foreignKey *ForeignKey
}

func NewAddForeignKey(t *Table, fk *ForeignKey) *AddForeignKey {
	return &AddForeignKey{base: newBase(t), foreignKey: fk.Clone()}
}

func (*AddForeignKey) Kind() ActionKind          { return KindAddForeignKey }
func (a *AddForeignKey) ForeignKey() *ForeignKey { return a.foreignKey.Clone() }

// ---

type DropForeignKey struct {
	base
	foreignKey *ForeignKey
}

// NewDropForeignKey drops the key matching columns, or the named constraint
// when columns is empty.
func NewDropForeignKey(t *Table, columns []string, constraint string) *DropForeignKey {
	return &DropForeignKey{base: newBase(t), foreignKey: &ForeignKey{
		Columns:    append([]string(nil), columns...),
		Constraint: constraint,
	}}
}

func (*DropForeignKey) Kind() ActionKind          { return KindDropForeignKey }
func (a *DropForeignKey) ForeignKey() *ForeignKey { return a.foreignKey.Clone() }

// ---

// ChangePrimaryKey replaces the primary key; no columns drops it.
type ChangePrimaryKey struct {
	base
	columns []string
}

func NewChangePrimaryKey(t *Table, columns []string) *ChangePrimaryKey {
	return &ChangePrimaryKey{base: newBase(t), columns: append([]string(nil), columns...)}
}

func (*ChangePrimaryKey) Kind() ActionKind    { return KindChangePrimaryKey }
func (a *ChangePrimaryKey) Columns() []string { return append([]string(nil), a.columns...) }

// ---

// ChangeComment sets the table comment; nil removes it.
type ChangeComment struct {
	base
	comment *string
}

func NewChangeComment(t *Table, comment *string) *ChangeComment {
	a := &ChangeComment{base: newBase(t)}
	if comment != nil {
		c := *comment
		a.comment = &c
	}
	return a
}

func (*ChangeComment) Kind() ActionKind { return KindChangeComment }

func (a *ChangeComment) Comment() (string, bool) {
	if a.comment == nil {
		return "", false
	}
	return *a.comment, true
}
