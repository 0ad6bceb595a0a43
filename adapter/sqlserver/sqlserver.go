// Package sqlserver is the Microsoft SQL Server adapter, registered as
// "sqlsrv".
package sqlserver

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	_ "github.com/microsoft/go-mssqldb"
	"github.com/microsoft/go-mssqldb/msdsn"

	"github.com/root-talis/kaizou/adapter"
)

const (
	Name = "sqlsrv"

	DefaultSchema = "dbo"
	defaultPort   = 1433
)

func init() {
	adapter.MustRegisterAdapter(Name, func(opts adapter.Options) (adapter.Adapter, error) {
		return New(opts)
	})
}

type Adapter struct {
	*adapter.Base
	opts adapter.Options
}

func New(opts adapter.Options) (*Adapter, error) {
	s := &Adapter{opts: opts}

	base, err := adapter.NewBase(s, opts)
	if err != nil {
		return nil, fmt.Errorf("%s adapter: %w", Name, err)
	}
	s.Base = base

	return s, nil
}

func (s *Adapter) AdapterType() string { return Name }
func (s *Adapter) DriverName() string  { return "sqlserver" }

// DSN renders a sqlserver:// URL and validates it with the driver's own
// parser, so malformed settings fail before a connection is attempted.
func (s *Adapter) DSN() (string, error) {
	dsn := s.opts.DSN
	if dsn == "" {
		dsn = s.buildURL()
	}

	if _, err := msdsn.Parse(dsn); err != nil {
		return "", fmt.Errorf("sqlserver dsn: %w", err)
	}
	return dsn, nil
}

func (s *Adapter) buildURL() string {
	host := s.opts.Host
	if host == "" {
		host = "localhost"
	}
	port := s.opts.Port
	if port == 0 {
		port = defaultPort
	}

	u := url.URL{
		Scheme: "sqlserver",
		Host:   net.JoinHostPort(host, strconv.Itoa(port)),
	}
	if s.opts.User != "" {
		u.User = url.UserPassword(s.opts.User, s.opts.Pass)
	}

	q := url.Values{}
	if s.opts.Name != "" {
		q.Set("database", s.opts.Name)
	}
	for k, v := range s.opts.Params {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()

	return u.String()
}

func (s *Adapter) schema() string {
	if s.opts.Schema != "" {
		return s.opts.Schema
	}
	return DefaultSchema
}

func (s *Adapter) splitTableName(name string) (string, string) {
	if i := strings.IndexByte(name, '.'); i >= 0 {
		return name[:i], name[i+1:]
	}
	return s.schema(), name
}

// qualified returns "schema.table" unquoted, the form OBJECT_ID and
// sp_rename expect.
func (s *Adapter) qualified(name string) string {
	schemaName, table := s.splitTableName(name)
	return schemaName + "." + table
}

// ---

func quoteIdent(id string) string { return `[` + strings.ReplaceAll(id, `]`, `]]`) + `]` }

func (s *Adapter) QuoteTableName(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = quoteIdent(p)
	}
	return strings.Join(parts, ".")
}

func (s *Adapter) QuoteColumnName(name string) string {
	return quoteIdent(name)
}

func (s *Adapter) QuoteString(str string) string {
	return "N'" + strings.ReplaceAll(str, "'", "''") + "'"
}

func (s *Adapter) BoolLiteral(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// FoldsForeignKeyCase is true: the default collation is case-insensitive,
// so the server treats User_Id and user_id as the same column.
func (s *Adapter) FoldsForeignKeyCase() bool { return true }

// ---

func (s *Adapter) HasDatabase(ctx context.Context, name string) (bool, error) {
	row, err := s.FetchRow(ctx, "SELECT 1 AS found FROM sys.databases WHERE name = "+s.QuoteString(name))
	if err != nil {
		return false, err
	}
	return row != nil, nil
}

func (s *Adapter) CreateDatabase(ctx context.Context, name string) error {
	query := "CREATE DATABASE " + quoteIdent(name)
	if s.opts.Collation != "" {
		query += " COLLATE " + s.opts.Collation
	}
	_, err := s.Execute(ctx, query)
	return err
}

func (s *Adapter) DropDatabase(ctx context.Context, name string) error {
	_, err := s.Execute(ctx, fmt.Sprintf("IF DB_ID(%s) IS NOT NULL DROP DATABASE %s", s.QuoteString(name), quoteIdent(name)))
	return err
}

func (s *Adapter) TruncateTable(ctx context.Context, name string) error {
	_, err := s.Execute(ctx, "TRUNCATE TABLE "+s.QuoteTableName(name))
	return err
}

var (
	_ adapter.Adapter = (*Adapter)(nil)
	_ adapter.Dialect = (*Adapter)(nil)
)
