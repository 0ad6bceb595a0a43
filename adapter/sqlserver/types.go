package sqlserver

import (
	"github.com/root-talis/kaizou/adapter"
	"github.com/root-talis/kaizou/schema"
)

// nolint:gochecknoglobals
var catalog = adapter.NewTypeCatalog(Name, []adapter.TypeMapping{
	{Type: schema.TypeString, Name: "nvarchar", Limit: 255},
	{Type: schema.TypeChar, Name: "nchar", Limit: 255},
	{Type: schema.TypeText, Name: "nvarchar(max)", NoLimit: true},
	{Type: schema.TypeJSON, Name: "nvarchar(max)", NoLimit: true, Alias: true},
	{Type: schema.TypeInteger, Name: "int", NoLimit: true},
	{Type: schema.TypeSmallInteger, Name: "smallint", NoLimit: true},
	{Type: schema.TypeTinyInteger, Name: "tinyint", NoLimit: true},
	{Type: schema.TypeBigInteger, Name: "bigint", NoLimit: true},
	{Type: schema.TypeFloat, Name: "real", NoLimit: true},
	{Type: schema.TypeDouble, Name: "float", NoLimit: true},
	{Type: schema.TypeDecimal, Name: "decimal"},
	{Type: schema.TypeDatetime, Name: "datetime", NoLimit: true},
	{Type: schema.TypeTimestamp, Name: "datetime2", NoLimit: true},
	{Type: schema.TypeTime, Name: "time", NoLimit: true},
	{Type: schema.TypeDate, Name: "date", NoLimit: true},
	{Type: schema.TypeBoolean, Name: "bit", NoLimit: true},
	{Type: schema.TypeBit, Name: "bit", NoLimit: true, Alias: true},
	{Type: schema.TypeBinary, Name: "binary", Limit: 255},
	{Type: schema.TypeVarbinary, Name: "varbinary", Limit: 255},
	{Type: schema.TypeBlob, Name: "varbinary(max)", NoLimit: true},
	{Type: schema.TypeUUID, Name: "uniqueidentifier", NoLimit: true},
	{Type: schema.TypeBinaryUUID, Name: "uniqueidentifier", NoLimit: true, Alias: true},
}, map[string]schema.ColumnType{
	"varchar":        schema.TypeString,
	"char":           schema.TypeChar,
	"ntext":          schema.TypeText,
	"text":           schema.TypeText,
	"varchar(max)":   schema.TypeText,
	"numeric":        schema.TypeDecimal,
	"money":          schema.TypeDecimal,
	"smalldatetime":  schema.TypeDatetime,
	"datetimeoffset": schema.TypeTimestamp,
	"image":          schema.TypeBlob,
})

func (s *Adapter) GetSQLType(t schema.ColumnType, limit int) (adapter.SQLType, error) {
	return catalog.SQLType(t, limit)
}

func (s *Adapter) GetColumnType(sqlType string) (schema.ColumnType, error) {
	return catalog.ColumnType(sqlType)
}

func (s *Adapter) ColumnTypes() []schema.ColumnType {
	return catalog.Types()
}
