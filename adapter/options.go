package adapter

import (
	"io"
	"log/slog"

	"github.com/root-talis/kaizou/schema"
)

const DefaultSchemaTableName = "phinxlog"

// Options configure an adapter. Connection fields are read by the dialect
// that builds the DSN; DSN, when set, is used as is.
type Options struct {
	Adapter string
	Wrapper string

	DSN       string
	Host      string
	Port      int
	Name      string
	User      string
	Pass      string
	Charset   string
	Collation string
	Schema    string
	Socket    string
	Memory    bool
	Suffix    string

	MigrationTable string
	VersionOrder   string
	DataDomain     map[string]schema.Options

	TablePrefix string
	TableSuffix string

	DryRun bool
	Output io.Writer
	Logger *slog.Logger

	// Executor replaces the connection the adapter would open itself.
	Executor Executor

	// Params carries driver specific settings that have no dedicated field.
	Params map[string]string
}

func (o Options) schemaTableName() string {
	if o.MigrationTable != "" {
		return o.MigrationTable
	}
	return DefaultSchemaTableName
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}
