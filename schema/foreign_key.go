package schema

import (
	"fmt"
	"sort"
	"strings"
)

// ReferenceAction is the ON DELETE / ON UPDATE behaviour of a foreign key.
// The zero value leaves the database default in place.
type ReferenceAction string

const (
	Cascade  ReferenceAction = "CASCADE"
	SetNull  ReferenceAction = "SET NULL"
	Restrict ReferenceAction = "RESTRICT"
	NoAction ReferenceAction = "NO ACTION"
)

func ParseReferenceAction(value string) (ReferenceAction, error) {
	normalized := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(value), "_", " "))
	switch a := ReferenceAction(normalized); a {
	case "", Cascade, SetNull, Restrict, NoAction:
		return a, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidReferenceAction, value)
	}
}

type ForeignKey struct {
	Columns           []string
	ReferencedTable   *Table
	ReferencedColumns []string
	OnDelete          ReferenceAction
	OnUpdate          ReferenceAction
	Constraint        string
}

func NewForeignKey(columns []string, referenced *Table, referencedColumns []string, opts Options) (*ForeignKey, error) {
	fk := &ForeignKey{
		Columns:           append([]string(nil), columns...),
		ReferencedTable:   referenced,
		ReferencedColumns: append([]string(nil), referencedColumns...),
	}
	if err := fk.SetOptions(opts); err != nil {
		return nil, fmt.Errorf("foreign key on (%s): %w", strings.Join(columns, ", "), err)
	}
	if len(fk.ReferencedColumns) == 0 {
		fk.ReferencedColumns = []string{"id"}
	}
	return fk, nil
}

func (fk *ForeignKey) SetOptions(opts Options) error {
	keys := make([]string, 0, len(opts))
	for k := range opts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		v := opts[key]
		switch key {
		case "delete", "update":
			s, err := toString(key, v)
			if err != nil {
				return err
			}
			action, err := ParseReferenceAction(s)
			if err != nil {
				return err
			}
			if key == "delete" {
				fk.OnDelete = action
			} else {
				fk.OnUpdate = action
			}
		case "constraint":
			s, err := toString(key, v)
			if err != nil {
				return err
			}
			fk.Constraint = s
		default:
			return fmt.Errorf("%w: %q is not a valid foreign key option", ErrInvalidOption, key)
		}
	}
	return nil
}

func (fk *ForeignKey) Clone() *ForeignKey {
	out := *fk
	out.Columns = append([]string(nil), fk.Columns...)
	out.ReferencedColumns = append([]string(nil), fk.ReferencedColumns...)
	if fk.ReferencedTable != nil {
		out.ReferencedTable = fk.ReferencedTable.Clone()
	}
	return &out
}
