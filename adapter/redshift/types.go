package redshift

import (
	"github.com/root-talis/kaizou/adapter"
	"github.com/root-talis/kaizou/schema"
)

const maxVarcharLength = 65535

// nolint:gochecknoglobals
var catalog = adapter.NewTypeCatalog(Name, []adapter.TypeMapping{
	{Type: schema.TypeString, Name: "character varying", Limit: 255},
	{Type: schema.TypeText, Name: "character varying", Limit: maxVarcharLength},
	{Type: schema.TypeChar, Name: "character", Limit: 255},
	{Type: schema.TypeUUID, Name: "character", Limit: 36, NoLimit: true},
	{Type: schema.TypeInteger, Name: "integer", NoLimit: true},
	{Type: schema.TypeSmallInteger, Name: "smallint", NoLimit: true},
	{Type: schema.TypeTinyInteger, Name: "smallint", NoLimit: true, Alias: true},
	{Type: schema.TypeBigInteger, Name: "bigint", NoLimit: true},
	{Type: schema.TypeFloat, Name: "real", NoLimit: true},
	{Type: schema.TypeDouble, Name: "double precision", NoLimit: true},
	{Type: schema.TypeDecimal, Name: "decimal"},
	{Type: schema.TypeTimestamp, Name: "timestamp", NoLimit: true},
	{Type: schema.TypeDatetime, Name: "timestamp", NoLimit: true, Alias: true},
	{Type: schema.TypeTime, Name: "time", NoLimit: true},
	{Type: schema.TypeDate, Name: "date", NoLimit: true},
	{Type: schema.TypeBoolean, Name: "boolean", NoLimit: true},
	{Type: schema.TypeBinary, Name: "varbyte", NoLimit: true},
	{Type: schema.TypeVarbinary, Name: "varbyte", NoLimit: true, Alias: true},
	{Type: schema.TypeJSON, Name: "super", NoLimit: true},
}, map[string]schema.ColumnType{
	"varchar":                     schema.TypeString,
	"nvarchar":                    schema.TypeString,
	"char":                        schema.TypeChar,
	"bpchar":                      schema.TypeChar,
	"int":                         schema.TypeInteger,
	"int4":                        schema.TypeInteger,
	"int2":                        schema.TypeSmallInteger,
	"int8":                        schema.TypeBigInteger,
	"float4":                      schema.TypeFloat,
	"float8":                      schema.TypeDouble,
	"numeric":                     schema.TypeDecimal,
	"timestamp without time zone": schema.TypeTimestamp,
	"timestamp with time zone":    schema.TypeTimestamp,
	"timestamptz":                 schema.TypeTimestamp,
	"time without time zone":      schema.TypeTime,
	"bool":                        schema.TypeBoolean,
	"binary varying":              schema.TypeBinary,
})

func (r *Adapter) GetSQLType(t schema.ColumnType, limit int) (adapter.SQLType, error) {
	return catalog.SQLType(t, limit)
}

func (r *Adapter) GetColumnType(sqlType string) (schema.ColumnType, error) {
	return catalog.ColumnType(sqlType)
}

func (r *Adapter) ColumnTypes() []schema.ColumnType {
	return catalog.Types()
}
