// Package schema holds the dialect-independent model of tables, columns,
// indexes and foreign keys, and the actions that change them.
package schema

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidOption          = errors.New("invalid option")
	ErrInvalidReferenceAction = errors.New("invalid foreign key action")
)

// ColumnType is the logical column type adapters translate into native SQL.
type ColumnType string

const (
	TypeString       ColumnType = "string"
	TypeChar         ColumnType = "char"
	TypeText         ColumnType = "text"
	TypeInteger      ColumnType = "integer"
	TypeTinyInteger  ColumnType = "tinyinteger"
	TypeSmallInteger ColumnType = "smallinteger"
	TypeBigInteger   ColumnType = "biginteger"
	TypeFloat        ColumnType = "float"
	TypeDouble       ColumnType = "double"
	TypeDecimal      ColumnType = "decimal"
	TypeDatetime     ColumnType = "datetime"
	TypeTimestamp    ColumnType = "timestamp"
	TypeTime         ColumnType = "time"
	TypeDate         ColumnType = "date"
	TypeYear         ColumnType = "year"
	TypeInterval     ColumnType = "interval"
	TypeBinary       ColumnType = "binary"
	TypeVarbinary    ColumnType = "varbinary"
	TypeBlob         ColumnType = "blob"
	TypeBoolean      ColumnType = "boolean"
	TypeBit          ColumnType = "bit"
	TypeUUID         ColumnType = "uuid"
	TypeBinaryUUID   ColumnType = "binaryuuid"
	TypeJSON         ColumnType = "json"
	TypeJSONB        ColumnType = "jsonb"
	TypeEnum         ColumnType = "enum"
	TypeSet          ColumnType = "set"
	TypeInet         ColumnType = "inet"
	TypeCidr         ColumnType = "cidr"
	TypeMacAddr      ColumnType = "macaddr"
)

const literalPrefix = "literal:"

// LiteralType builds a custom column type that is passed to the database
// verbatim, e.g. LiteralType("citext").
func LiteralType(native string) ColumnType {
	return ColumnType(literalPrefix + native)
}

// Literal reports the native type of a custom literal column type.
func (t ColumnType) Literal() (string, bool) {
	if strings.HasPrefix(string(t), literalPrefix) {
		return strings.TrimPrefix(string(t), literalPrefix), true
	}
	return "", false
}

func (t ColumnType) String() string {
	if native, ok := t.Literal(); ok {
		return native
	}
	return string(t)
}

// ParseColumnType resolves a configured type name. Besides the plain names it
// accepts constant-style names such as PHINX_TYPE_BIG_INTEGER.
func ParseColumnType(name string) ColumnType {
	name = strings.TrimSpace(name)
	upper := strings.ToUpper(name)
	if strings.HasPrefix(upper, "PHINX_TYPE_") {
		name = strings.ReplaceAll(strings.TrimPrefix(upper, "PHINX_TYPE_"), "_", "")
	}
	return ColumnType(strings.ToLower(name))
}

// Literal is a raw SQL fragment used as a default value, e.g.
// Literal("CURRENT_TIMESTAMP").
type Literal string

// ---

// Options is the loosely typed option bag used by columns, indexes, foreign
// keys and tables, mirroring what configuration files provide.
type Options map[string]any

func (o Options) Clone() Options {
	out := make(Options, len(o))
	for k, v := range o {
		out[k] = v
	}
	return out
}

func (o Options) String(key string) (string, bool) {
	v, ok := o[key]
	if !ok || v == nil {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func (o Options) Strings(key string) ([]string, bool) {
	v, ok := o[key]
	if !ok || v == nil {
		return nil, false
	}
	out, err := toStrings(v)
	if err != nil {
		return nil, false
	}
	return out, true
}

func toInt(key string, v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int8:
		return int(n), nil
	case int16:
		return int(n), nil
	case int32:
		return int(n), nil
	case int64:
		return int(n), nil
	case uint:
		return int(n), nil
	case uint8:
		return int(n), nil
	case uint16:
		return int(n), nil
	case uint32:
		return int(n), nil
	case uint64:
		return int(n), nil
	case float64:
		return int(n), nil
	case float32:
		return int(n), nil
	default:
		return 0, fmt.Errorf("%w: %q must be a number, got %T", ErrInvalidOption, key, v)
	}
}

func toBool(key string, v any) (bool, error) {
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("%w: %q must be a boolean, got %T", ErrInvalidOption, key, v)
	}
	return b, nil
}

func toString(key string, v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: %q must be a string, got %T", ErrInvalidOption, key, v)
	}
	return s, nil
}

func toStrings(v any) ([]string, error) {
	switch s := v.(type) {
	case string:
		return []string{s}, nil
	case []string:
		return append([]string(nil), s...), nil
	case []any:
		out := make([]string, 0, len(s))
		for _, item := range s {
			str, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%w: expected a list of strings, got %T", ErrInvalidOption, item)
			}
			out = append(out, str)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: expected a string or a list of strings, got %T", ErrInvalidOption, v)
	}
}
