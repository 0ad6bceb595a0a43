package sqlite

import (
	"github.com/root-talis/kaizou/adapter"
	"github.com/root-talis/kaizou/schema"
)

// SQLite keeps declared types verbatim, so the catalogue only has to be
// consistent with itself.
//
// nolint:gochecknoglobals
var catalog = adapter.NewTypeCatalog(Name, []adapter.TypeMapping{
	{Type: schema.TypeString, Name: "varchar", Limit: 255},
	{Type: schema.TypeChar, Name: "char", Limit: 255},
	{Type: schema.TypeUUID, Name: "char", Limit: 36, NoLimit: true},
	{Type: schema.TypeText, Name: "text", NoLimit: true},
	{Type: schema.TypeInteger, Name: "integer", NoLimit: true},
	{Type: schema.TypeSmallInteger, Name: "smallint", NoLimit: true},
	{Type: schema.TypeTinyInteger, Name: "tinyint", NoLimit: true},
	{Type: schema.TypeBigInteger, Name: "bigint", NoLimit: true},
	{Type: schema.TypeFloat, Name: "float", NoLimit: true},
	{Type: schema.TypeDouble, Name: "double", NoLimit: true},
	{Type: schema.TypeDecimal, Name: "decimal"},
	{Type: schema.TypeDatetime, Name: "datetime", NoLimit: true},
	{Type: schema.TypeTimestamp, Name: "timestamp", NoLimit: true},
	{Type: schema.TypeTime, Name: "time", NoLimit: true},
	{Type: schema.TypeDate, Name: "date", NoLimit: true},
	{Type: schema.TypeBoolean, Name: "boolean", NoLimit: true},
	{Type: schema.TypeBinary, Name: "binary", Limit: 255},
	{Type: schema.TypeBinaryUUID, Name: "binary", Limit: 16, NoLimit: true},
	{Type: schema.TypeVarbinary, Name: "varbinary", Limit: 255},
	{Type: schema.TypeBlob, Name: "blob", NoLimit: true},
	{Type: schema.TypeJSON, Name: "json", NoLimit: true},
}, map[string]schema.ColumnType{
	"int":       schema.TypeInteger,
	"real":      schema.TypeDouble,
	"numeric":   schema.TypeDecimal,
	"character": schema.TypeChar,
	"clob":      schema.TypeText,
	"bool":      schema.TypeBoolean,
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
