// Package sqlite is the SQLite adapter, registered as "sqlite". It uses the
// cgo-free modernc.org/sqlite driver over a single connection.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/root-talis/kaizou/adapter"
)

const (
	Name = "sqlite"

	MemoryDatabase = ":memory:"
	DefaultSuffix  = ".sqlite3"
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
func (s *Adapter) DriverName() string  { return "sqlite" }

func (s *Adapter) DSN() (string, error) {
	if s.opts.DSN != "" {
		return s.opts.DSN, nil
	}
	if s.opts.Memory || s.opts.Name == MemoryDatabase {
		return MemoryDatabase, nil
	}
	if s.opts.Name == "" {
		return "", errors.New("sqlite database needs a name or memory: true")
	}
	return s.path(s.opts.Name), nil
}

// path appends the configured suffix unless the name already carries it.
func (s *Adapter) path(name string) string {
	suffix := s.opts.Suffix
	if suffix == "" {
		suffix = DefaultSuffix
	}
	if strings.HasSuffix(name, suffix) {
		return name
	}
	return name + suffix
}

// ConfigureDB pins the pool to one connection, so an in-memory database and
// the foreign_keys pragma survive for the adapter's lifetime.
func (s *Adapter) ConfigureDB(ctx context.Context, db *sql.DB) error {
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		return fmt.Errorf("enable foreign keys: %w", err)
	}
	return nil
}

// ---

func (s *Adapter) QuoteTableName(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = s.QuoteColumnName(p)
	}
	return strings.Join(parts, ".")
}

func (s *Adapter) QuoteColumnName(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (s *Adapter) QuoteString(str string) string {
	return "'" + strings.ReplaceAll(str, "'", "''") + "'"
}

func (s *Adapter) BoolLiteral(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func (s *Adapter) FoldsForeignKeyCase() bool { return false }

// ---

// Databases are files; the in-memory database always exists.

func (s *Adapter) HasDatabase(_ context.Context, name string) (bool, error) {
	if name == MemoryDatabase {
		return true, nil
	}

	_, err := os.Stat(s.path(name))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, err
	}
}

func (s *Adapter) CreateDatabase(_ context.Context, name string) error {
	if name == MemoryDatabase {
		return nil
	}

	path := s.path(name)
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create database directory %s: %w", dir, err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return fmt.Errorf("create database %s: %w", path, err)
	}
	return f.Close()
}

func (s *Adapter) DropDatabase(_ context.Context, name string) error {
	if name == MemoryDatabase {
		return nil
	}
	if err := os.Remove(s.path(name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("drop database %s: %w", name, err)
	}
	return nil
}

func (s *Adapter) TruncateTable(ctx context.Context, name string) error {
	_, err := s.Execute(ctx, "DELETE FROM "+s.QuoteTableName(name))
	return err
}

var (
	_ adapter.Adapter      = (*Adapter)(nil)
	_ adapter.Dialect      = (*Adapter)(nil)
	_ adapter.DBConfigurer = (*Adapter)(nil)
)
