// Package redshift is the Amazon Redshift adapter, registered as "redshift".
// It reuses the postgres dialect and swaps what Redshift does differently:
// the wire driver, types, identity columns, table attributes and the
// missing index support.
package redshift

import (
	"context"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/root-talis/kaizou/adapter"
	"github.com/root-talis/kaizou/adapter/postgres"
	"github.com/root-talis/kaizou/schema"
)

const (
	Name = "redshift"

	defaultPort = 5439
)

func init() {
	adapter.MustRegisterAdapter(Name, func(opts adapter.Options) (adapter.Adapter, error) {
		return New(opts)
	})
}

type Adapter struct {
	*postgres.Adapter
}

func New(opts adapter.Options) (*Adapter, error) {
	r := &Adapter{}
	pg, err := postgres.Embed(opts, r)
	if err != nil {
		return nil, err
	}
	r.Adapter = pg
	return r, nil
}

func (r *Adapter) AdapterType() string { return Name }
func (r *Adapter) DriverName() string  { return "postgres" }

func (r *Adapter) DSN() (string, error) {
	return r.URL(defaultPort)
}

// ---

func (r *Adapter) QuoteTableName(name string) string {
	parts := strings.Split(name, ".")
	for i, part := range parts {
		parts[i] = pq.QuoteIdentifier(part)
	}
	return strings.Join(parts, ".")
}

func (r *Adapter) QuoteColumnName(name string) string {
	return pq.QuoteIdentifier(name)
}

func (r *Adapter) QuoteString(s string) string {
	return strings.TrimSpace(pq.QuoteLiteral(s))
}

// IdentityColumn renders IDENTITY(seed, increment); both default to 1.
func (r *Adapter) IdentityColumn(c *schema.Column, sqlType string) string {
	seed, increment := c.Seed, c.Increment
	if seed == 0 {
		seed = 1
	}
	if increment == 0 {
		increment = 1
	}
	return fmt.Sprintf("%s IDENTITY(%d,%d)", sqlType, seed, increment)
}

// ---

func (r *Adapter) CreateDatabase(ctx context.Context, name string) error {
	_, err := r.Execute(ctx, "CREATE DATABASE "+r.QuoteColumnName(name))
	return err
}

func (r *Adapter) DropDatabase(ctx context.Context, name string) error {
	_, err := r.Execute(ctx, "DROP DATABASE "+r.QuoteColumnName(name))
	return err
}

func (r *Adapter) TruncateTable(ctx context.Context, name string) error {
	_, err := r.Execute(ctx, "TRUNCATE TABLE "+r.QuoteTableName(name))
	return err
}

var (
	_ adapter.Adapter           = (*Adapter)(nil)
	_ adapter.Dialect           = (*Adapter)(nil)
	_ postgres.IdentityRenderer = (*Adapter)(nil)
)
