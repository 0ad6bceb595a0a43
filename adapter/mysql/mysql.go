// Package mysql is the MySQL and MariaDB adapter, registered as "mysql".
package mysql

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"

	mysqldriver "github.com/go-sql-driver/mysql"

	"github.com/root-talis/kaizou/adapter"
)

const (
	Name = "mysql"

	defaultCharset = "utf8mb4"
	defaultEngine  = "InnoDB"
	defaultPort    = 3306
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
	a := &Adapter{opts: opts}

	base, err := adapter.NewBase(a, opts)
	if err != nil {
		return nil, fmt.Errorf("mysql adapter: %w", err)
	}
	a.Base = base

	return a, nil
}

func (a *Adapter) AdapterType() string { return Name }
func (a *Adapter) DriverName() string  { return "mysql" }

// DSN assembles a go-sql-driver DSN. Times are parsed into time.Time and
// several statements may be sent at once.
func (a *Adapter) DSN() (string, error) {
	if a.opts.DSN != "" {
		return a.opts.DSN, nil
	}

	cfg := mysqldriver.NewConfig()
	cfg.User = a.opts.User
	cfg.Passwd = a.opts.Pass
	cfg.DBName = a.opts.Name
	cfg.ParseTime = true
	cfg.MultiStatements = true

	if a.opts.Socket != "" {
		cfg.Net = "unix"
		cfg.Addr = a.opts.Socket
	} else {
		port := a.opts.Port
		if port == 0 {
			port = defaultPort
		}
		host := a.opts.Host
		if host == "" {
			host = "localhost"
		}
		cfg.Net = "tcp"
		cfg.Addr = net.JoinHostPort(host, strconv.Itoa(port))
	}

	if a.opts.Collation != "" {
		cfg.Collation = a.opts.Collation
	}
	cfg.Params = map[string]string{"charset": a.charset()}
	for k, v := range a.opts.Params {
		cfg.Params[k] = v
	}

	return cfg.FormatDSN(), nil
}

func (a *Adapter) charset() string {
	if a.opts.Charset != "" {
		return a.opts.Charset
	}
	return defaultCharset
}

// ---

// QuoteTableName quotes each part of a possibly database-qualified name.
func (a *Adapter) QuoteTableName(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = a.QuoteColumnName(p)
	}
	return strings.Join(parts, ".")
}

func (a *Adapter) QuoteColumnName(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

func (a *Adapter) QuoteString(s string) string {
	return "'" + escapeMysqlString(s) + "'"
}

func (a *Adapter) BoolLiteral(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func (a *Adapter) FoldsForeignKeyCase() bool { return false }

// splitTableName returns the database and table of a possibly qualified
// name, defaulting to the configured database.
func (a *Adapter) splitTableName(name string) (string, string) {
	if i := strings.IndexByte(name, '.'); i >= 0 {
		return name[:i], name[i+1:]
	}
	return a.opts.Name, name
}

// ---

func (a *Adapter) HasDatabase(ctx context.Context, name string) (bool, error) {
	row, err := a.FetchRow(ctx, fmt.Sprintf(
		"SELECT SCHEMA_NAME FROM INFORMATION_SCHEMA.SCHEMATA WHERE SCHEMA_NAME = %s",
		a.QuoteString(name),
	))
	if err != nil {
		return false, err
	}
	return row != nil, nil
}

func (a *Adapter) CreateDatabase(ctx context.Context, name string) error {
	query := fmt.Sprintf("CREATE DATABASE %s DEFAULT CHARACTER SET %s", a.QuoteColumnName(name), a.charset())
	if a.opts.Collation != "" {
		query += " COLLATE " + a.opts.Collation
	}
	_, err := a.Execute(ctx, query)
	return err
}

func (a *Adapter) DropDatabase(ctx context.Context, name string) error {
	_, err := a.Execute(ctx, "DROP DATABASE IF EXISTS "+a.QuoteColumnName(name))
	return err
}

func (a *Adapter) TruncateTable(ctx context.Context, name string) error {
	_, err := a.Execute(ctx, "TRUNCATE TABLE "+a.QuoteTableName(name))
	return err
}

// ---

// originally from https://gist.github.com/siddontang/8875771
func escapeMysqlString(sql string) string { //nolint:cyclop
	const prealloc = 2
	dest := make([]rune, 0, prealloc*len(sql))

	for _, character := range sql {
		var escape rune

		switch character {
		case 0:
			escape = '0'
		case '\n':
			escape = 'n'
		case '\r':
			escape = 'r'
		case '\\':
			escape = '\\'
		case '\'':
			escape = '\''
		case '"':
			escape = '"'
		case '`':
			escape = '`'
		case '\032':
			escape = 'Z'
		}

		if escape != 0 {
			dest = append(dest, '\\', escape)
		} else {
			dest = append(dest, character)
		}
	}

	return string(dest)
}

var _ adapter.Adapter = (*Adapter)(nil)
