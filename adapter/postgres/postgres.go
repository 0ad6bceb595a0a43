// Package postgres is the PostgreSQL adapter, registered as "pgsql". It
// talks to the server through pgx's database/sql driver.
package postgres

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/root-talis/kaizou/adapter"
)

const (
	Name = "pgsql"

	DefaultSchema = "public"
	defaultPort   = 5432
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
	p := &Adapter{opts: opts}
	if err := p.init(p); err != nil {
		return nil, err
	}
	return p, nil
}

// Embed builds the postgres machinery for a dialect derived from it. Every
// statement the embedded adapter renders consults outer for types, quoting
// and the structural hooks outer overrides.
func Embed(opts adapter.Options, outer adapter.Dialect) (*Adapter, error) {
	p := &Adapter{opts: opts}
	if err := p.init(outer); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Adapter) init(d adapter.Dialect) error {
	base, err := adapter.NewBase(d, p.opts)
	if err != nil {
		return fmt.Errorf("%s adapter: %w", d.AdapterType(), err)
	}
	p.Base = base
	return nil
}

func (p *Adapter) AdapterType() string { return Name }
func (p *Adapter) DriverName() string  { return "pgx" }

func (p *Adapter) DSN() (string, error) {
	return p.URL(defaultPort)
}

// URL renders a postgres:// connection URL from the options.
func (p *Adapter) URL(defaultPort int) (string, error) {
	if p.opts.DSN != "" {
		return p.opts.DSN, nil
	}

	host := p.opts.Host
	if host == "" {
		host = "localhost"
	}
	port := p.opts.Port
	if port == 0 {
		port = defaultPort
	}

	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(host, strconv.Itoa(port)),
		Path:   "/" + p.opts.Name,
	}
	if p.opts.User != "" {
		u.User = url.UserPassword(p.opts.User, p.opts.Pass)
	}

	q := url.Values{}
	if s := p.opts.Schema; s != "" && s != DefaultSchema {
		q.Set("search_path", s)
	}
	for k, v := range p.opts.Params {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()

	return u.String(), nil
}

// Schema is the schema unqualified table names live in.
func (p *Adapter) Schema() string {
	if p.opts.Schema != "" {
		return p.opts.Schema
	}
	return DefaultSchema
}

// SplitTableName returns the schema and the table of a possibly qualified
// name.
func (p *Adapter) SplitTableName(name string) (string, string) {
	if i := strings.IndexByte(name, '.'); i >= 0 {
		return name[:i], name[i+1:]
	}
	return p.Schema(), name
}

// ---

func (p *Adapter) QuoteTableName(name string) string {
	return pgx.Identifier(strings.Split(name, ".")).Sanitize()
}

func (p *Adapter) QuoteColumnName(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

func (p *Adapter) QuoteString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func (p *Adapter) BoolLiteral(b bool) string {
	if b {
		return "TRUE"
	}
	return "FALSE"
}

func (p *Adapter) FoldsForeignKeyCase() bool { return false }

// qt, qc and qs quote through the outermost dialect.
func (p *Adapter) qt(name string) string { return p.Dialect().QuoteTableName(name) }
func (p *Adapter) qc(name string) string { return p.Dialect().QuoteColumnName(name) }
func (p *Adapter) qs(s string) string    { return p.Dialect().QuoteString(s) }

// ---

func (p *Adapter) HasDatabase(ctx context.Context, name string) (bool, error) {
	row, err := p.FetchRow(ctx, "SELECT 1 AS found FROM pg_database WHERE datname = "+p.qs(name))
	if err != nil {
		return false, err
	}
	return row != nil, nil
}

func (p *Adapter) CreateDatabase(ctx context.Context, name string) error {
	charset := p.opts.Charset
	if charset == "" {
		charset = "utf8"
	}
	_, err := p.Execute(ctx, fmt.Sprintf("CREATE DATABASE %s WITH ENCODING = %s", p.qc(name), p.qs(charset)))
	return err
}

func (p *Adapter) DropDatabase(ctx context.Context, name string) error {
	_, err := p.Execute(ctx, "DROP DATABASE IF EXISTS "+p.qc(name))
	return err
}

func (p *Adapter) TruncateTable(ctx context.Context, name string) error {
	_, err := p.Execute(ctx, "TRUNCATE TABLE "+p.qt(name)+" RESTART IDENTITY")
	return err
}

var _ adapter.Adapter = (*Adapter)(nil)
