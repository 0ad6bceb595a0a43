package adapter

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/root-talis/kaizou/migration"
	"github.com/root-talis/kaizou/schema"
)

// Base is the dialect-independent half of an adapter: connection lifetime,
// transactions, dry-run, action dispatch, metadata matching, data domains
// and the version log.
type Base struct {
	dialect Dialect
	opts    Options
	logger  *slog.Logger
	output  io.Writer

	exec         Executor
	ownsExec     bool
	txDepth      int
	rollbackOnly bool

	orderBy string
	domains map[string]dataDomain
}

type dataDomain struct {
	typ  schema.ColumnType
	opts schema.Options
}

// NewBase validates the options that do not depend on a connection: the
// version order and the data domains.
func NewBase(d Dialect, opts Options) (*Base, error) {
	b := &Base{
		dialect: d,
		opts:    opts,
		logger:  opts.logger().With("adapter", d.AdapterType()),
		output:  opts.Output,
	}
	if b.output == nil {
		b.output = os.Stdout
	}

	order, err := migration.ParseOrder(opts.VersionOrder)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfiguration, err)
	}
	switch order {
	case migration.ExecutionTime:
		b.orderBy = d.QuoteColumnName("start_time") + " ASC, " + d.QuoteColumnName("version") + " ASC"
	default:
		b.orderBy = d.QuoteColumnName("version") + " ASC"
	}

	if err := b.loadDataDomains(opts.DataDomain); err != nil {
		return nil, err
	}

	return b, nil
}

func (b *Base) loadDataDomains(config map[string]schema.Options) error {
	b.domains = make(map[string]dataDomain, len(config))

	for name, options := range config {
		rawType, ok := options["type"]
		if !ok || rawType == nil {
			return fmt.Errorf("%w: %q has no type", ErrInvalidDataDomain, name)
		}
		typeName, ok := rawType.(string)
		if !ok {
			return fmt.Errorf("%w: type of %q must be a string", ErrInvalidDataDomain, name)
		}

		typ := schema.ParseColumnType(typeName)
		if _, err := b.dialect.GetSQLType(typ, 0); err != nil {
			return fmt.Errorf("%w: %q: %w", ErrInvalidDataDomain, name, err)
		}

		domainOpts := schema.NormalizeColumnOptions(options)
		delete(domainOpts, "type")

		sample := &schema.Column{Name: name, Type: typ}
		if err := sample.SetOptions(domainOpts, b.limitResolver()); err != nil {
			return fmt.Errorf("%w: %q: %w", ErrInvalidDataDomain, name, err)
		}

		b.domains[name] = dataDomain{typ: typ, opts: domainOpts}
	}

	return nil
}

func (b *Base) limitResolver() schema.LimitResolver {
	if lc, ok := b.dialect.(LimitConstants); ok {
		return lc.LimitConstant
	}
	return nil
}

func (b *Base) Dialect() Dialect {
	return b.dialect
}

func (b *Base) Options() Options {
	return b.opts
}

func (b *Base) Logger() *slog.Logger {
	return b.logger
}

func (b *Base) IsDryRun() bool {
	return b.opts.DryRun
}

// ---

func (b *Base) Connect(ctx context.Context) error {
	if b.exec != nil {
		return nil
	}

	if b.opts.Executor != nil {
		b.exec = b.opts.Executor
		return nil
	}

	dsn, err := b.dialect.DSN()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfiguration, err)
	}

	db, err := sql.Open(b.dialect.DriverName(), dsn)
	if err != nil {
		return fmt.Errorf("failed to open %s connection: %w", b.dialect.AdapterType(), err)
	}

	if configurer, ok := b.dialect.(DBConfigurer); ok {
		if err := configurer.ConfigureDB(ctx, db); err != nil {
			_ = db.Close()
			return fmt.Errorf("failed to configure %s connection: %w", b.dialect.AdapterType(), err)
		}
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to connect to %s: %w", b.dialect.AdapterType(), err)
	}

	b.exec = NewSQLExecutor(db)
	b.ownsExec = true
	b.logger.Debug("connected")

	return nil
}

// Disconnect rolls back an open transaction and releases the connection.
// An executor passed in through Options is left open for its owner.
func (b *Base) Disconnect() error {
	if b.exec == nil {
		return nil
	}

	var rollbackErr error
	b.rollbackOnly = false
	if b.txDepth > 0 {
		b.txDepth = 0
		if !b.opts.DryRun {
			rollbackErr = b.exec.Rollback()
		}
	}

	var closeErr error
	if b.ownsExec {
		closeErr = b.exec.Close()
	}
	b.exec = nil
	b.ownsExec = false

	if rollbackErr != nil {
		return fmt.Errorf("failed to roll back on disconnect: %w", rollbackErr)
	}
	return closeErr
}

func (b *Base) executor(ctx context.Context) (Executor, error) {
	if err := b.Connect(ctx); err != nil {
		return nil, err
	}
	return b.exec, nil
}

// ---

func (b *Base) HasTransactions() bool {
	return true
}

// BeginTransaction opens a transaction on the outermost call only; nested
// calls are counted.
func (b *Base) BeginTransaction(ctx context.Context) error {
	if b.txDepth == 0 && !b.opts.DryRun {
		exec, err := b.executor(ctx)
		if err != nil {
			return err
		}
		if err := exec.Begin(ctx); err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}
	}
	b.txDepth++
	return nil
}

// CommitTransaction commits on the outermost call. A transaction an inner
// level rolled back is rolled back here instead and reported with
// ErrTransactionRolledBack.
func (b *Base) CommitTransaction(ctx context.Context) error {
	if b.txDepth == 0 {
		return ErrNoTransaction
	}

	b.txDepth--
	if b.txDepth > 0 {
		return nil
	}

	if b.rollbackOnly {
		b.rollbackOnly = false
		if err := b.rollback(ctx); err != nil {
			return err
		}
		return ErrTransactionRolledBack
	}

	if b.opts.DryRun {
		return nil
	}

	exec, err := b.executor(ctx)
	if err != nil {
		return err
	}
	if err := exec.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// RollbackTransaction rolls back on the outermost call. A nested call only
// leaves its level and dooms the transaction, so that the outermost commit
// cannot keep the work of a failed inner step. Without a transaction it does
// nothing.
func (b *Base) RollbackTransaction(ctx context.Context) error {
	if b.txDepth == 0 {
		return nil
	}

	b.txDepth--
	if b.txDepth > 0 {
		b.rollbackOnly = true
		return nil
	}

	b.rollbackOnly = false
	return b.rollback(ctx)
}

func (b *Base) rollback(ctx context.Context) error {
	if b.opts.DryRun {
		return nil
	}

	exec, err := b.executor(ctx)
	if err != nil {
		return err
	}
	if err := exec.Rollback(); err != nil {
		return fmt.Errorf("failed to roll back transaction: %w", err)
	}
	return nil
}

// InTransaction runs fn between begin and commit, rolling back when fn or
// the commit fails.
func (b *Base) InTransaction(ctx context.Context, fn func() error) error {
	if err := b.BeginTransaction(ctx); err != nil {
		return err
	}

	if err := fn(); err != nil {
		if rbErr := b.RollbackTransaction(ctx); rbErr != nil {
			b.logger.Error("rollback failed", "error", rbErr)
		}
		return err
	}

	if err := b.CommitTransaction(ctx); err != nil {
		_ = b.RollbackTransaction(ctx)
		return err
	}
	return nil
}

// ---

func trimStatement(query string) string {
	return strings.TrimRight(strings.TrimSpace(query), "; \t\r\n")
}

// Execute runs a statement and returns the affected row count. Trailing
// semicolons are dropped. In dry-run the statement is written to the
// output instead and 0 is returned.
func (b *Base) Execute(ctx context.Context, query string, args ...any) (int64, error) {
	query = trimStatement(query)

	if b.opts.DryRun {
		b.logger.Info("dry run", "sql", query)
		if _, err := fmt.Fprintf(b.output, "%s;\n", query); err != nil {
			return 0, fmt.Errorf("failed to write dry-run output: %w", err)
		}
		return 0, nil
	}

	exec, err := b.executor(ctx)
	if err != nil {
		return 0, err
	}

	b.logger.Debug("executing statement", "sql", query)

	affected, err := exec.Execute(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to execute %q: %w", query, err)
	}
	return affected, nil
}

// ExecuteAll runs statements in order and stops at the first failure.
func (b *Base) ExecuteAll(ctx context.Context, queries []string) error {
	for _, q := range queries {
		if _, err := b.Execute(ctx, q); err != nil {
			return err
		}
	}
	return nil
}

// Query reads rows. Queries run in dry-run as well, the adapter needs the
// metadata to render statements.
func (b *Base) Query(ctx context.Context, query string, args ...any) ([]Row, error) {
	query = trimStatement(query)

	exec, err := b.executor(ctx)
	if err != nil {
		return nil, err
	}

	b.logger.Debug("running query", "sql", query)

	rows, err := exec.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to run query %q: %w", query, err)
	}
	return rows, nil
}

// FetchRow returns the first row, or nil when there is none.
func (b *Base) FetchRow(ctx context.Context, query string, args ...any) (Row, error) {
	rows, err := b.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil //nolint:nilnil
	}
	return rows[0], nil
}

// ---

func (b *Base) Insert(ctx context.Context, table *schema.Table, row Row) error {
	return b.BulkInsert(ctx, table, []Row{row})
}

// BulkInsert writes all rows with one statement. Columns are the union of
// the rows' keys; a row missing a column gets NULL.
func (b *Base) BulkInsert(ctx context.Context, table *schema.Table, rows []Row) error {
	if len(rows) == 0 {
		return nil
	}

	seen := map[string]bool{}
	columns := make([]string, 0)
	for _, row := range rows {
		for k := range row {
			if !seen[k] {
				seen[k] = true
				columns = append(columns, k)
			}
		}
	}
	sort.Strings(columns)

	tuples := make([]string, 0, len(rows))
	for _, row := range rows {
		values := make([]string, 0, len(columns))
		for _, c := range columns {
			values = append(values, b.Literal(row[c]))
		}
		tuples = append(tuples, "("+strings.Join(values, ", ")+")")
	}

	_, err := b.Execute(ctx, fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES %s",
		b.dialect.QuoteTableName(table.Name),
		b.QuoteColumnNames(columns),
		strings.Join(tuples, ", "),
	))
	return err
}

// Literal renders a Go value as an SQL literal of the dialect.
func (b *Base) Literal(v any) string {
	switch value := v.(type) {
	case nil:
		return "NULL"
	case schema.Literal:
		return string(value)
	case bool:
		return b.dialect.BoolLiteral(value)
	case string:
		return b.dialect.QuoteString(value)
	case int:
		return strconv.Itoa(value)
	case int32:
		return strconv.FormatInt(int64(value), 10)
	case int64:
		return strconv.FormatInt(value, 10)
	case uint64:
		return strconv.FormatUint(value, 10)
	case float32:
		return strconv.FormatFloat(float64(value), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	case time.Time:
		return b.dialect.QuoteString(value.Format(time.DateTime))
	case fmt.Stringer:
		return b.dialect.QuoteString(value.String())
	default:
		return b.dialect.QuoteString(fmt.Sprint(value))
	}
}

func (b *Base) QuoteColumnNames(columns []string) string {
	quoted := make([]string, 0, len(columns))
	for _, c := range columns {
		quoted = append(quoted, b.dialect.QuoteColumnName(c))
	}
	return strings.Join(quoted, ", ")
}

// ColumnSQLType renders the native type of a column with its limit, or
// precision and scale for decimals.
func (b *Base) ColumnSQLType(c *schema.Column) (string, error) {
	if c.Type == schema.TypeDecimal {
		t, err := b.dialect.GetSQLType(c.Type, 0)
		if err != nil {
			return "", err
		}
		if precision, scale, ok := c.DecimalSpec(); ok {
			t.Limit, t.Scale = precision, scale
		}
		return t.String(), nil
	}

	t, err := b.dialect.GetSQLType(c.Type, c.Limit)
	if err != nil {
		return "", err
	}
	return t.String(), nil
}

func (b *Base) DefaultClause(c *schema.Column) string {
	if !c.HasDefault() {
		return ""
	}
	return " DEFAULT " + b.Literal(c.Default)
}

// ---

// IsValidColumnType accepts every type the dialect can render, aliases and
// literal types included.
func (b *Base) IsValidColumnType(c *schema.Column) bool {
	if _, ok := c.Type.Literal(); ok {
		return true
	}
	_, err := b.dialect.GetSQLType(c.Type, 0)
	return err == nil
}

// GetColumnForType builds a column, expanding t when it names a data
// domain. Local options win over the domain's, which win over defaults.
func (b *Base) GetColumnForType(name string, t schema.ColumnType, opts schema.Options) (*schema.Column, error) {
	merged := schema.NormalizeColumnOptions(opts)

	if domain, ok := b.domains[string(t)]; ok {
		t = domain.typ
		combined := domain.opts.Clone()
		for k, v := range merged {
			combined[k] = v
		}
		merged = combined
	}

	c := &schema.Column{Name: name, Type: t, Signed: true}
	if err := c.SetOptions(merged, b.limitResolver()); err != nil {
		return nil, fmt.Errorf("column %q: %w", name, err)
	}

	if !b.IsValidColumnType(c) {
		return nil, NewUnsupportedTypeError(b.dialect.AdapterType(), string(t))
	}

	return c, nil
}

func (b *Base) validateColumns(columns ...*schema.Column) error {
	for _, c := range columns {
		if !b.IsValidColumnType(c) {
			return NewUnsupportedTypeError(b.dialect.AdapterType(), string(c.Type))
		}
	}
	return nil
}
