package schema

// Table names a table and carries its option bag. Recognised options:
//
//	id           false disables the implicit auto-increment column, a string renames it
//	primary_key  column name or list of names
//	comment, collation, engine, signed
//
// Dialects may read further keys (e.g. sortkey/distkey for Redshift).
type Table struct {
	Name    string
	Options Options
}

func NewTable(name string, opts Options) *Table {
	if opts == nil {
		opts = Options{}
	}
	return &Table{Name: name, Options: opts.Clone()}
}

func (t *Table) Clone() *Table {
	return &Table{Name: t.Name, Options: t.Options.Clone()}
}

// Renamed returns a copy that points to another table name.
func (t *Table) Renamed(name string) *Table {
	out := t.Clone()
	out.Name = name
	return out
}

// ID reports the name of the implicit identity column, if there is one.
func (t *Table) ID() (string, bool) {
	v, ok := t.Options["id"]
	if !ok || v == nil {
		return "id", true
	}

	switch id := v.(type) {
	case bool:
		if id {
			return "id", true
		}
		return "", false
	case string:
		if id == "" {
			return "", false
		}
		return id, true
	default:
		return "", false
	}
}

// PrimaryKey returns the primary key columns: the explicit primary_key
// option, else the implicit identity column, else nothing.
func (t *Table) PrimaryKey() []string {
	if cols, ok := t.Options.Strings("primary_key"); ok {
		return cols
	}
	if id, ok := t.ID(); ok {
		return []string{id}
	}
	return nil
}

// ImplicitID returns the identity column to prepend on creation, or nil
// when the table disables it or already defines a column with that name.
func (t *Table) ImplicitID(columns []*Column) *Column {
	id, ok := t.ID()
	if !ok {
		return nil
	}
	if pk, ok := t.Options.Strings("primary_key"); ok && !(len(pk) == 1 && pk[0] == id) {
		return nil
	}
	for _, c := range columns {
		if c.Name == id {
			return nil
		}
	}

	signed := true
	if v, ok := t.Options["signed"].(bool); ok {
		signed = v
	}
	return &Column{Name: id, Type: TypeInteger, Identity: true, Signed: signed}
}

func (t *Table) Comment() (string, bool) {
	return t.Options.String("comment")
}
