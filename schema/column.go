package schema

import (
	"fmt"
	"sort"
)

// Column describes a column to create or change.
//
// Default holds nil (no default), a bool, a number, a string, or a Literal
// for raw SQL. Limit, Precision and Scale are zero when unset.
type Column struct {
	Name      string
	Type      ColumnType
	Limit     int
	Precision int
	Scale     int
	Null      bool
	Default   any
	Signed    bool
	Identity  bool
	Seed      int
	Increment int
	Comment   string
	Collation string
	Encoding  string
	After     string
	Update    string
	Timezone  bool
	Values    []string
}

// LimitResolver turns symbolic limits (e.g. "TEXT_LONG") into numbers.
// Adapters that know such constants pass one to SetOptions.
type LimitResolver func(name string) (int, bool)

// NewColumn builds a signed, NOT NULL column and applies opts.
func NewColumn(name string, typ ColumnType, opts Options) (*Column, error) {
	c := &Column{Name: name, Type: typ, Signed: true}
	if err := c.SetOptions(opts, nil); err != nil {
		return nil, fmt.Errorf("column %q: %w", name, err)
	}
	return c, nil
}

// NormalizeColumnOptions rewrites aliases so two option bags can be merged
// key by key: "length" becomes "limit".
func NormalizeColumnOptions(opts Options) Options {
	out := opts.Clone()
	if v, ok := out["length"]; ok {
		out["limit"] = v
		delete(out, "length")
	}
	return out
}

// SetOptions applies an option bag. Unknown keys fail with ErrInvalidOption.
func (c *Column) SetOptions(opts Options, limits LimitResolver) error { //nolint:cyclop,gocognit
	opts = NormalizeColumnOptions(opts)

	keys := make([]string, 0, len(opts))
	for k := range opts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		v := opts[key]
		var err error

		switch key {
		case "limit":
			c.Limit, err = resolveLimit(v, limits)
		case "precision":
			c.Precision, err = toInt(key, v)
		case "scale":
			c.Scale, err = toInt(key, v)
		case "null":
			c.Null, err = toBool(key, v)
		case "default":
			c.Default = v
		case "signed":
			c.Signed, err = toBool(key, v)
		case "identity":
			c.Identity, err = toBool(key, v)
		case "seed":
			c.Seed, err = toInt(key, v)
		case "increment":
			c.Increment, err = toInt(key, v)
		case "comment":
			c.Comment, err = toString(key, v)
		case "collation":
			c.Collation, err = toString(key, v)
		case "encoding":
			c.Encoding, err = toString(key, v)
		case "after":
			c.After, err = toString(key, v)
		case "update":
			c.Update, err = toString(key, v)
		case "timezone":
			c.Timezone, err = toBool(key, v)
		case "values":
			c.Values, err = toStrings(v)
		default:
			err = fmt.Errorf("%w: %q is not a valid column option", ErrInvalidOption, key)
		}

		if err != nil {
			return err
		}
	}

	return nil
}

func resolveLimit(v any, limits LimitResolver) (int, error) {
	if name, ok := v.(string); ok {
		if limits != nil {
			if n, ok := limits(name); ok {
				return n, nil
			}
		}
		return 0, fmt.Errorf("%w: unknown limit %q", ErrInvalidOption, name)
	}
	return toInt("limit", v)
}

// Clone returns a deep copy.
func (c *Column) Clone() *Column {
	out := *c
	out.Values = append([]string(nil), c.Values...)
	return &out
}

// DecimalSpec resolves precision and scale. An explicit precision wins over
// a limit; a bare limit is taken as the precision.
func (c *Column) DecimalSpec() (precision, scale int, ok bool) {
	switch {
	case c.Precision > 0:
		return c.Precision, c.Scale, true
	case c.Limit > 0:
		return c.Limit, c.Scale, true
	default:
		return 0, 0, false
	}
}

func (c *Column) HasDefault() bool {
	return c.Default != nil
}
