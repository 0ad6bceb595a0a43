package schema

import (
	"fmt"
	"sort"
	"strings"
)

type IndexType string

const (
	IndexPlain    IndexType = "index"
	IndexUnique   IndexType = "unique"
	IndexFulltext IndexType = "fulltext"
)

// Index describes an index over an ordered list of columns. Order maps a
// column name to "ASC" or "DESC"; Include lists non-key columns.
type Index struct {
	Columns []string
	Type    IndexType
	Name    string
	Limit   int
	Order   map[string]string
	Include []string
}

func NewIndex(columns []string, opts Options) (*Index, error) {
	idx := &Index{Columns: append([]string(nil), columns...), Type: IndexPlain}
	if err := idx.SetOptions(opts); err != nil {
		return nil, fmt.Errorf("index on (%s): %w", strings.Join(columns, ", "), err)
	}
	return idx, nil
}

func (i *Index) SetOptions(opts Options) error { //nolint:cyclop
	keys := make([]string, 0, len(opts))
	for k := range opts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		v := opts[key]
		switch key {
		case "type":
			s, err := toString(key, v)
			if err != nil {
				return err
			}
			switch t := IndexType(strings.ToLower(s)); t {
			case IndexPlain, IndexUnique, IndexFulltext:
				i.Type = t
			default:
				return fmt.Errorf("%w: unknown index type %q", ErrInvalidOption, s)
			}
		case "unique":
			unique, err := toBool(key, v)
			if err != nil {
				return err
			}
			if unique {
				i.Type = IndexUnique
			}
		case "name":
			s, err := toString(key, v)
			if err != nil {
				return err
			}
			i.Name = s
		case "limit":
			n, err := toInt(key, v)
			if err != nil {
				return err
			}
			i.Limit = n
		case "order":
			order, err := toOrderMap(v)
			if err != nil {
				return err
			}
			i.Order = order
		case "include":
			cols, err := toStrings(v)
			if err != nil {
				return err
			}
			i.Include = cols
		default:
			return fmt.Errorf("%w: %q is not a valid index option", ErrInvalidOption, key)
		}
	}

	return nil
}

func toOrderMap(v any) (map[string]string, error) {
	out := map[string]string{}
	switch m := v.(type) {
	case map[string]string:
		for k, dir := range m {
			out[k] = strings.ToUpper(dir)
		}
	case map[string]any:
		for k, dir := range m {
			s, ok := dir.(string)
			if !ok {
				return nil, fmt.Errorf("%w: order for %q must be a string", ErrInvalidOption, k)
			}
			out[k] = strings.ToUpper(s)
		}
	default:
		return nil, fmt.Errorf("%w: order must be a map, got %T", ErrInvalidOption, v)
	}

	for k, dir := range out {
		if dir != "ASC" && dir != "DESC" {
			return nil, fmt.Errorf("%w: order for %q must be ASC or DESC", ErrInvalidOption, k)
		}
	}
	return out, nil
}

func (i *Index) Unique() bool {
	return i.Type == IndexUnique
}

func (i *Index) Clone() *Index {
	out := *i
	out.Columns = append([]string(nil), i.Columns...)
	out.Include = append([]string(nil), i.Include...)
	if i.Order != nil {
		out.Order = make(map[string]string, len(i.Order))
		for k, v := range i.Order {
			out.Order[k] = v
		}
	}
	return &out
}
