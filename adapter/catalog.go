package adapter

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/root-talis/kaizou/schema"
)

// TypeMapping binds a logical column type to a native type. Alias mappings
// are accepted when creating columns but are never reported back, because
// the native type they share already maps to another logical type.
type TypeMapping struct {
	Type    schema.ColumnType
	Name    string
	Limit   int
	Scale   int
	NoLimit bool
	Alias   bool
}

// TypeCatalog is a dialect's static type table, looked up in both
// directions.
type TypeCatalog struct {
	adapter string
	forward map[schema.ColumnType]TypeMapping
	reverse map[string]schema.ColumnType
	types   []schema.ColumnType
}

// NewTypeCatalog builds the lookup tables. Reverse keys are the full native
// declarations ("tinyint(1)") first, then the bare names of mappings that
// come first in the list. Synonyms add further native spellings.
func NewTypeCatalog(adapter string, mappings []TypeMapping, synonyms map[string]schema.ColumnType) *TypeCatalog {
	c := &TypeCatalog{
		adapter: adapter,
		forward: make(map[schema.ColumnType]TypeMapping, len(mappings)),
		reverse: make(map[string]schema.ColumnType, len(mappings)+len(synonyms)),
	}

	for _, m := range mappings {
		c.forward[m.Type] = m
		if m.Alias {
			continue
		}
		c.types = append(c.types, m.Type)

		key := normalizeNativeType(SQLType{Name: m.Name, Limit: m.Limit, Scale: m.Scale}.String())
		if _, ok := c.reverse[key]; !ok {
			c.reverse[key] = m.Type
		}
	}

	for _, m := range mappings {
		if m.Alias {
			continue
		}
		key := normalizeNativeType(m.Name)
		if _, ok := c.reverse[key]; !ok {
			c.reverse[key] = m.Type
		}
	}

	for native, t := range synonyms {
		c.reverse[normalizeNativeType(native)] = t
	}

	return c
}

// SQLType resolves t. A positive limit replaces the default one unless the
// native type takes none.
func (c *TypeCatalog) SQLType(t schema.ColumnType, limit int) (SQLType, error) {
	if native, ok := t.Literal(); ok {
		return SQLType{Name: native}, nil
	}

	m, ok := c.forward[t]
	if !ok {
		return SQLType{}, NewUnsupportedTypeError(c.adapter, string(t))
	}

	out := SQLType{Name: m.Name, Limit: m.Limit, Scale: m.Scale}
	if limit > 0 && !m.NoLimit {
		out.Limit = limit
	}
	return out, nil
}

// ColumnType resolves a native declaration such as "int(11) unsigned" or
// "character varying(255)".
func (c *TypeCatalog) ColumnType(native string) (schema.ColumnType, error) {
	key := normalizeNativeType(native)
	if t, ok := c.reverse[key]; ok {
		return t, nil
	}

	if i := strings.IndexByte(key, '('); i > 0 {
		if t, ok := c.reverse[strings.TrimSpace(key[:i])]; ok {
			return t, nil
		}
	}

	return "", NewUnsupportedTypeError(c.adapter, native)
}

func (c *TypeCatalog) Types() []schema.ColumnType {
	return append([]schema.ColumnType(nil), c.types...)
}

var (
	nativeModifiers = regexp.MustCompile(`\b(unsigned|zerofill)\b`)
	nativeSpaces    = regexp.MustCompile(`\s+`)
	nativeParens    = regexp.MustCompile(`\s*\(\s*([^)]*?)\s*\)`)
)

func normalizeNativeType(native string) string {
	s := strings.ToLower(native)
	s = nativeModifiers.ReplaceAllString(s, "")
	s = nativeParens.ReplaceAllStringFunc(s, func(m string) string {
		inner := nativeParens.FindStringSubmatch(m)[1]
		return "(" + strings.ReplaceAll(inner, " ", "") + ")"
	})
	s = nativeSpaces.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

var nativeArgs = regexp.MustCompile(`\(([^)]*)\)`)

// ParseNativeType splits "decimal(10, 2) unsigned" into its base name and
// numeric arguments. Non-numeric arguments (enum values) are skipped.
func ParseNativeType(native string) (name string, args []int) {
	s := strings.TrimSpace(native)
	name = s
	if i := strings.IndexByte(s, '('); i >= 0 {
		name = strings.TrimSpace(s[:i])
		if m := nativeArgs.FindStringSubmatch(s); m != nil {
			for _, part := range strings.Split(m[1], ",") {
				if n, err := strconv.Atoi(strings.TrimSpace(part)); err == nil {
					args = append(args, n)
				}
			}
		}
	}
	return strings.ToLower(name), args
}
