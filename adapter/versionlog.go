package adapter

import (
	"context"
	"fmt"
	"time"

	"github.com/root-talis/kaizou/migration"
	"github.com/root-talis/kaizou/schema"
)

const maxMigrationNameLength = 100

func (b *Base) SchemaTableName() string {
	return b.opts.schemaTableName()
}

func (b *Base) HasSchemaTable(ctx context.Context) (bool, error) {
	return b.dialect.HasTable(ctx, b.SchemaTableName())
}

// CreateSchemaTable creates the version log keyed by version.
func (b *Base) CreateSchemaTable(ctx context.Context) error {
	table := schema.NewTable(b.SchemaTableName(), schema.Options{
		"id":          false,
		"primary_key": "version",
	})

	columns := []*schema.Column{
		{Name: "version", Type: schema.TypeBigInteger, Signed: true},
		{Name: "migration_name", Type: schema.TypeString, Limit: maxMigrationNameLength, Null: true},
		{Name: "start_time", Type: schema.TypeTimestamp, Null: true},
		{Name: "end_time", Type: schema.TypeTimestamp, Null: true},
		{Name: "breakpoint", Type: schema.TypeBoolean, Default: false},
	}

	if err := b.CreateTable(ctx, table, columns, nil); err != nil {
		return fmt.Errorf("failed to create version log table %q: %w", table.Name, err)
	}
	return nil
}

func (b *Base) ensureSchemaTable(ctx context.Context) error {
	exists, err := b.HasSchemaTable(ctx)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return b.CreateSchemaTable(ctx)
}

// GetVersionLog reads the log in the configured order, creating the table
// on first use. In dry-run a failing read means nothing was ever applied and
// yields an empty log.
func (b *Base) GetVersionLog(ctx context.Context) ([]migration.Log, error) {
	if err := b.ensureSchemaTable(ctx); err != nil {
		if b.opts.DryRun {
			b.logger.Debug("version log is not available", "error", err)
			return []migration.Log{}, nil
		}
		return nil, fmt.Errorf("failed to read version log: %w", err)
	}

	rows, err := b.Query(ctx, fmt.Sprintf(
		"SELECT * FROM %s ORDER BY %s",
		b.dialect.QuoteTableName(b.SchemaTableName()),
		b.orderBy,
	))
	if err != nil {
		if b.opts.DryRun {
			b.logger.Debug("version log is not available", "error", err)
			return []migration.Log{}, nil
		}
		return nil, fmt.Errorf("failed to read version log: %w", err)
	}

	result := make([]migration.Log, 0, len(rows))
	for _, row := range rows {
		version, err := migration.ParseVersion(row.String("version"))
		if err != nil {
			return nil, fmt.Errorf("failed to read version log: %w", err)
		}

		result = append(result, migration.Log{
			Migration: migration.Migration{
				Version: version,
				Name:    row.String("migration_name"),
			},
			StartTime:  row.Time("start_time"),
			EndTime:    row.Time("end_time"),
			Breakpoint: row.Bool("breakpoint"),
		})
	}

	return result, nil
}

func (b *Base) GetVersions(ctx context.Context) ([]migration.Version, error) {
	log, err := b.GetVersionLog(ctx)
	if err != nil {
		return nil, err
	}

	versions := make([]migration.Version, 0, len(log))
	for _, entry := range log {
		versions = append(versions, entry.Version)
	}
	return versions, nil
}

// Migrated records an applied migration, or forgets a reverted one.
func (b *Base) Migrated(ctx context.Context, m migration.Migration, dir migration.Direction, start, end time.Time) error {
	table := b.dialect.QuoteTableName(b.SchemaTableName())

	var query string
	if dir == migration.Up {
		name := m.Name
		if len(name) > maxMigrationNameLength {
			name = name[:maxMigrationNameLength]
		}

		query = fmt.Sprintf(
			"INSERT INTO %s (%s) VALUES (%s, %s, %s, %s, %s)",
			table,
			b.QuoteColumnNames([]string{"version", "migration_name", "start_time", "end_time", "breakpoint"}),
			m.Version.String(),
			b.Literal(name),
			b.Literal(start.UTC()),
			b.Literal(end.UTC()),
			b.dialect.BoolLiteral(false),
		)
	} else {
		query = fmt.Sprintf(
			"DELETE FROM %s WHERE %s = %s",
			table, b.dialect.QuoteColumnName("version"), m.Version.String(),
		)
	}

	if _, err := b.Execute(ctx, query); err != nil {
		return fmt.Errorf("failed to record migration %s as %s: %w", m.Version, dir, err)
	}
	return nil
}

// ---

// The breakpoint updates assign start_time to itself so that an ON UPDATE
// clause on the column cannot overwrite it.

func (b *Base) ToggleBreakpoint(ctx context.Context, m migration.Migration) error {
	column := b.dialect.QuoteColumnName("breakpoint")
	expr := fmt.Sprintf("CASE %s WHEN %s THEN %s ELSE %s END",
		column,
		b.dialect.BoolLiteral(true),
		b.dialect.BoolLiteral(false),
		b.dialect.BoolLiteral(true),
	)
	_, err := b.updateBreakpoint(ctx, expr, b.versionCondition(m))
	return err
}

func (b *Base) SetBreakpoint(ctx context.Context, m migration.Migration) error {
	_, err := b.updateBreakpoint(ctx, b.dialect.BoolLiteral(true), b.versionCondition(m))
	return err
}

func (b *Base) UnsetBreakpoint(ctx context.Context, m migration.Migration) error {
	_, err := b.updateBreakpoint(ctx, b.dialect.BoolLiteral(false), b.versionCondition(m))
	return err
}

// ResetAllBreakpoints clears every breakpoint and returns how many were set.
func (b *Base) ResetAllBreakpoints(ctx context.Context) (int64, error) {
	return b.updateBreakpoint(ctx, b.dialect.BoolLiteral(false), fmt.Sprintf("%s <> %s",
		b.dialect.QuoteColumnName("breakpoint"), b.dialect.BoolLiteral(false)))
}

func (b *Base) versionCondition(m migration.Migration) string {
	return b.dialect.QuoteColumnName("version") + " = " + m.Version.String()
}

func (b *Base) updateBreakpoint(ctx context.Context, value, where string) (int64, error) {
	startTime := b.dialect.QuoteColumnName("start_time")

	affected, err := b.Execute(ctx, fmt.Sprintf(
		"UPDATE %s SET %s = %s, %s = %s WHERE %s",
		b.dialect.QuoteTableName(b.SchemaTableName()),
		b.dialect.QuoteColumnName("breakpoint"), value,
		startTime, startTime,
		where,
	))
	if err != nil {
		return 0, fmt.Errorf("failed to update breakpoints: %w", err)
	}
	return affected, nil
}
