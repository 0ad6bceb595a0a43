package postgres

import (
	"github.com/root-talis/kaizou/adapter"
	"github.com/root-talis/kaizou/schema"
)

// nolint:gochecknoglobals
var catalog = adapter.NewTypeCatalog(Name, []adapter.TypeMapping{
	{Type: schema.TypeString, Name: "character varying", Limit: 255},
	{Type: schema.TypeChar, Name: "character", Limit: 255},
	{Type: schema.TypeText, Name: "text", NoLimit: true},
	{Type: schema.TypeInteger, Name: "integer", NoLimit: true},
	{Type: schema.TypeSmallInteger, Name: "smallint", NoLimit: true},
	{Type: schema.TypeTinyInteger, Name: "smallint", NoLimit: true, Alias: true},
	{Type: schema.TypeBigInteger, Name: "bigint", NoLimit: true},
	{Type: schema.TypeFloat, Name: "real", NoLimit: true},
	{Type: schema.TypeDouble, Name: "double precision", NoLimit: true},
	{Type: schema.TypeDecimal, Name: "decimal"},
	{Type: schema.TypeTimestamp, Name: "timestamp"},
	{Type: schema.TypeDatetime, Name: "timestamp", Alias: true},
	{Type: schema.TypeTime, Name: "time"},
	{Type: schema.TypeDate, Name: "date", NoLimit: true},
	{Type: schema.TypeInterval, Name: "interval"},
	{Type: schema.TypeBinary, Name: "bytea", NoLimit: true},
	{Type: schema.TypeVarbinary, Name: "bytea", NoLimit: true, Alias: true},
	{Type: schema.TypeBlob, Name: "bytea", NoLimit: true, Alias: true},
	{Type: schema.TypeBoolean, Name: "boolean", NoLimit: true},
	{Type: schema.TypeBit, Name: "bit"},
	{Type: schema.TypeUUID, Name: "uuid", NoLimit: true},
	{Type: schema.TypeBinaryUUID, Name: "uuid", NoLimit: true, Alias: true},
	{Type: schema.TypeJSON, Name: "json", NoLimit: true},
	{Type: schema.TypeJSONB, Name: "jsonb", NoLimit: true},
	{Type: schema.TypeInet, Name: "inet", NoLimit: true},
	{Type: schema.TypeCidr, Name: "cidr", NoLimit: true},
	{Type: schema.TypeMacAddr, Name: "macaddr", NoLimit: true},
}, map[string]schema.ColumnType{
	"varchar":                     schema.TypeString,
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
	"time with time zone":         schema.TypeTime,
	"timetz":                      schema.TypeTime,
	"bool":                        schema.TypeBoolean,
	"serial":                      schema.TypeInteger,
	"bigserial":                   schema.TypeBigInteger,
	"smallserial":                 schema.TypeSmallInteger,
})

func (p *Adapter) GetSQLType(t schema.ColumnType, limit int) (adapter.SQLType, error) {
	return catalog.SQLType(t, limit)
}

func (p *Adapter) GetColumnType(sqlType string) (schema.ColumnType, error) {
	return catalog.ColumnType(sqlType)
}

func (p *Adapter) ColumnTypes() []schema.ColumnType {
	return catalog.Types()
}
