package mysql

import (
	"math"

	"github.com/root-talis/kaizou/adapter"
	"github.com/root-talis/kaizou/schema"
)

// Sizes of the TEXT/BLOB and integer families, usable as limits.
const (
	TextTiny    = 255
	TextSmall   = 255
	TextRegular = 65535
	TextMedium  = 16777215
	TextLong    = 4294967295

	IntTiny    = 255
	IntSmall   = 65535
	IntMedium  = 16777215
	IntRegular = 4294967295
	IntBig     = math.MaxInt64
)

// nolint:gochecknoglobals
var limitConstants = map[string]int{
	"TEXT_TINY":    TextTiny,
	"TEXT_SMALL":   TextSmall,
	"TEXT_REGULAR": TextRegular,
	"TEXT_MEDIUM":  TextMedium,
	"TEXT_LONG":    TextLong,
	"BLOB_TINY":    TextTiny,
	"BLOB_SMALL":   TextSmall,
	"BLOB_REGULAR": TextRegular,
	"BLOB_MEDIUM":  TextMedium,
	"BLOB_LONG":    TextLong,
	"INT_TINY":     IntTiny,
	"INT_SMALL":    IntSmall,
	"INT_MEDIUM":   IntMedium,
	"INT_REGULAR":  IntRegular,
	"INT_BIG":      IntBig,
}

// nolint:gochecknoglobals
var catalog = adapter.NewTypeCatalog(Name, []adapter.TypeMapping{
	{Type: schema.TypeString, Name: "varchar", Limit: 255},
	{Type: schema.TypeChar, Name: "char", Limit: 255},
	{Type: schema.TypeText, Name: "text", NoLimit: true},
	{Type: schema.TypeInteger, Name: "int"},
	{Type: schema.TypeTinyInteger, Name: "tinyint"},
	{Type: schema.TypeSmallInteger, Name: "smallint"},
	{Type: schema.TypeBigInteger, Name: "bigint"},
	{Type: schema.TypeFloat, Name: "float"},
	{Type: schema.TypeDouble, Name: "double"},
	{Type: schema.TypeDecimal, Name: "decimal"},
	{Type: schema.TypeDatetime, Name: "datetime"},
	{Type: schema.TypeTimestamp, Name: "timestamp"},
	{Type: schema.TypeTime, Name: "time"},
	{Type: schema.TypeDate, Name: "date"},
	{Type: schema.TypeYear, Name: "year", NoLimit: true},
	{Type: schema.TypeBinary, Name: "binary", Limit: 255},
	{Type: schema.TypeVarbinary, Name: "varbinary", Limit: 255},
	{Type: schema.TypeBlob, Name: "blob", NoLimit: true},
	{Type: schema.TypeBoolean, Name: "tinyint", Limit: 1, NoLimit: true},
	{Type: schema.TypeBit, Name: "bit", Limit: 1},
	{Type: schema.TypeUUID, Name: "char", Limit: 36, NoLimit: true},
	{Type: schema.TypeBinaryUUID, Name: "binary", Limit: 16, NoLimit: true},
	{Type: schema.TypeJSON, Name: "json"},
	{Type: schema.TypeEnum, Name: "enum"},
	{Type: schema.TypeSet, Name: "set"},
}, map[string]schema.ColumnType{
	"mediumint":  schema.TypeInteger,
	"integer":    schema.TypeInteger,
	"tinytext":   schema.TypeText,
	"mediumtext": schema.TypeText,
	"longtext":   schema.TypeText,
	"tinyblob":   schema.TypeBlob,
	"mediumblob": schema.TypeBlob,
	"longblob":   schema.TypeBlob,
	"numeric":    schema.TypeDecimal,
	"real":       schema.TypeDouble,
	"bool":       schema.TypeBoolean,
	"boolean":    schema.TypeBoolean,
})

func (a *Adapter) LimitConstant(name string) (int, bool) {
	n, ok := limitConstants[name]
	return n, ok
}

// GetSQLType picks the sized TEXT, BLOB and integer variants when the limit
// is one of the family sizes.
func (a *Adapter) GetSQLType(t schema.ColumnType, limit int) (adapter.SQLType, error) {
	switch t {
	case schema.TypeText:
		return adapter.SQLType{Name: sizedName(limit, "text")}, nil
	case schema.TypeBlob:
		return adapter.SQLType{Name: sizedName(limit, "blob")}, nil
	case schema.TypeInteger:
		switch limit {
		case IntTiny:
			return adapter.SQLType{Name: "tinyint"}, nil
		case IntSmall:
			return adapter.SQLType{Name: "smallint"}, nil
		case IntMedium:
			return adapter.SQLType{Name: "mediumint"}, nil
		case IntRegular:
			return adapter.SQLType{Name: "int"}, nil
		case IntBig:
			return adapter.SQLType{Name: "bigint"}, nil
		}
	}
	return catalog.SQLType(t, limit)
}

func sizedName(limit int, family string) string {
	switch {
	case limit <= 0:
		return family
	case limit <= TextTiny:
		return "tiny" + family
	case limit <= TextRegular:
		return family
	case limit <= TextMedium:
		return "medium" + family
	default:
		return "long" + family
	}
}

func (a *Adapter) GetColumnType(sqlType string) (schema.ColumnType, error) {
	return catalog.ColumnType(sqlType)
}

func (a *Adapter) ColumnTypes() []schema.ColumnType {
	return catalog.Types()
}
