// Package kaizou runs schema migrations: it compares the migrations a source
// ships with the version log of a database, applies pending ones and reverts
// applied ones.
package kaizou

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/root-talis/kaizou/adapter"
	"github.com/root-talis/kaizou/adapter/proxy"
	"github.com/root-talis/kaizou/migration"
	"github.com/root-talis/kaizou/script"
	"github.com/root-talis/kaizou/source"
	"github.com/root-talis/kaizou/table"
)

var (
	ErrUnknownVersion   = errors.New("version is not a known migration")
	ErrMissingMigration = errors.New("applied migration is no longer available")
	ErrIrreversible     = errors.New("migration has no way down")
)

// ---

type ValidationResult struct {
	Migrations   []migration.State
	AppliedCount uint
	PendingCount uint
	MissingCount uint
}

// ---

type Kaizou struct {
	source  source.Source
	adapter adapter.Adapter
	logger  *slog.Logger
	now     func() time.Time
}

type Option func(*Kaizou)

func WithLogger(logger *slog.Logger) Option {
	return func(k *Kaizou) { k.logger = logger }
}

// WithClock replaces time.Now for the start and end times written to the
// version log.
func WithClock(now func() time.Time) Option {
	return func(k *Kaizou) { k.now = now }
}

// ---

func New(src source.Source, a adapter.Adapter, opts ...Option) *Kaizou {
	k := &Kaizou{
		source:  src,
		adapter: a,
		logger:  slog.Default(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(k)
	}
	return k
}

// ---

// Validate reports every available and logged migration as pending, applied
// or missing, sorted by version.
func (k *Kaizou) Validate(ctx context.Context) (*ValidationResult, error) {
	availableMigrations, err := k.source.GetAvailableMigrations()
	if err != nil {
		return nil, fmt.Errorf("failed to get the list of available migrations: %w", err)
	}

	appliedMigrations, err := k.loadAppliedMigrations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get the list of applied migrations: %w", err)
	}

	result := ValidationResult{
		Migrations: make([]migration.State, 0, len(availableMigrations)),
	}

	available := make(map[migration.Version]bool, len(availableMigrations))
	for _, availableMigration := range availableMigrations {
		available[availableMigration.Version] = true

		state := migration.State{Description: availableMigration, Status: migration.Pending}
		if entry, ok := appliedMigrations[availableMigration.Version]; ok {
			state.Status = migration.Applied
			state.AppliedAt = entry.StartTime
			state.Breakpoint = entry.Breakpoint
			result.AppliedCount++
		} else {
			result.PendingCount++
		}

		result.Migrations = append(result.Migrations, state)
	}

	for _, applied := range appliedMigrations {
		if available[applied.Version] {
			continue
		}

		result.Migrations = append(result.Migrations, migration.State{
			Description: migration.Description{Migration: applied.Migration, CanUndo: false},
			Status:      migration.Missing,
			AppliedAt:   applied.StartTime,
			Breakpoint:  applied.Breakpoint,
		})
		result.MissingCount++
	}

	sort.Slice(result.Migrations, func(i, j int) bool {
		return result.Migrations[i].Version < result.Migrations[j].Version
	})

	return &result, nil
}

// Upgrade applies pending migrations in version order up to and including
// target. A zero target applies all of them.
func (k *Kaizou) Upgrade(ctx context.Context, target migration.Version) error {
	availableMigrations, err := k.source.GetAvailableMigrations()
	if err != nil {
		return fmt.Errorf("failed to get the list of available migrations: %w", err)
	}

	if target != 0 && !containsVersion(availableMigrations, target) {
		return fmt.Errorf("%w: %s", ErrUnknownVersion, target)
	}

	appliedMigrations, err := k.loadAppliedMigrations(ctx)
	if err != nil {
		return fmt.Errorf("failed to get the list of applied migrations: %w", err)
	}

	for _, available := range availableMigrations {
		if target != 0 && available.Version > target {
			break
		}
		if _, ok := appliedMigrations[available.Version]; ok {
			continue
		}

		if err := k.execute(ctx, available.Migration, migration.Up); err != nil {
			return err
		}
	}

	return nil
}

// Downgrade reverts applied migrations newer than target, the most recent
// first in the configured version order. A zero target reverts all of them.
// It stops before a migration marked with a breakpoint unless force is set.
func (k *Kaizou) Downgrade(ctx context.Context, target migration.Version, force bool) error {
	log, err := k.adapter.GetVersionLog(ctx)
	if err != nil {
		return fmt.Errorf("failed to get the list of applied migrations: %w", err)
	}

	var toRevert []migration.Log
	for i := len(log) - 1; i >= 0; i-- {
		if log[i].Version > target {
			toRevert = append(toRevert, log[i])
		}
	}

	return k.revertAll(ctx, toRevert, force)
}

// Rollback reverts the most recently applied migration.
func (k *Kaizou) Rollback(ctx context.Context, force bool) error {
	log, err := k.adapter.GetVersionLog(ctx)
	if err != nil {
		return fmt.Errorf("failed to get the list of applied migrations: %w", err)
	}
	if len(log) == 0 {
		return nil
	}

	return k.revertAll(ctx, log[len(log)-1:], force)
}

func (k *Kaizou) revertAll(ctx context.Context, entries []migration.Log, force bool) error {
	if len(entries) == 0 {
		return nil
	}

	availableMigrations, err := k.source.GetAvailableMigrations()
	if err != nil {
		return fmt.Errorf("failed to get the list of available migrations: %w", err)
	}

	for _, entry := range entries {
		if !containsVersion(availableMigrations, entry.Version) {
			return fmt.Errorf("%w: %s_%s", ErrMissingMigration, entry.Version, entry.Name)
		}

		if entry.Breakpoint && !force {
			k.logger.InfoContext(ctx, "breakpoint reached",
				"version", entry.Version.String(),
				"name", entry.Name,
			)
			return nil
		}

		if err := k.execute(ctx, entry.Migration, migration.Down); err != nil {
			return err
		}
	}

	return nil
}

// ---

func (k *Kaizou) ToggleBreakpoint(ctx context.Context, version migration.Version) error {
	return k.withAppliedMigration(ctx, version, k.adapter.ToggleBreakpoint)
}

func (k *Kaizou) SetBreakpoint(ctx context.Context, version migration.Version) error {
	return k.withAppliedMigration(ctx, version, k.adapter.SetBreakpoint)
}

func (k *Kaizou) UnsetBreakpoint(ctx context.Context, version migration.Version) error {
	return k.withAppliedMigration(ctx, version, k.adapter.UnsetBreakpoint)
}

// ResetBreakpoints clears every breakpoint and returns how many were set.
func (k *Kaizou) ResetBreakpoints(ctx context.Context) (int64, error) {
	return k.adapter.ResetAllBreakpoints(ctx)
}

// withAppliedMigration resolves version against the log. A zero version
// means the most recently applied migration.
func (k *Kaizou) withAppliedMigration(
	ctx context.Context,
	version migration.Version,
	fn func(context.Context, migration.Migration) error,
) error {
	log, err := k.adapter.GetVersionLog(ctx)
	if err != nil {
		return fmt.Errorf("failed to get the list of applied migrations: %w", err)
	}
	if len(log) == 0 {
		return fmt.Errorf("%w: no migration is applied", ErrUnknownVersion)
	}

	if version == 0 {
		return fn(ctx, log[len(log)-1].Migration)
	}

	for _, entry := range log {
		if entry.Version == version {
			return fn(ctx, entry.Migration)
		}
	}
	return fmt.Errorf("%w: %s is not applied", ErrUnknownVersion, version)
}

// ---

// execute runs one migration and its version log update in a single
// transaction.
func (k *Kaizou) execute(ctx context.Context, mig migration.Migration, dir migration.Direction) error {
	m, err := k.source.ReadMigration(mig)
	if err != nil {
		return fmt.Errorf("failed to read migration %s_%s: %w", mig.Version, mig.Name, err)
	}

	fn := m.For(dir)
	if fn == nil {
		return fmt.Errorf("%w: %s_%s", ErrIrreversible, mig.Version, mig.Name)
	}

	started, finished := "migrating", "migrated"
	if dir == migration.Down {
		started, finished = "reverting", "reverted"
	}
	k.logger.InfoContext(ctx, started, "version", mig.Version.String(), "name", mig.Name)

	start := k.now()

	if err := k.adapter.BeginTransaction(ctx); err != nil {
		return err
	}

	err = k.run(ctx, mig, dir, m, fn)
	if err == nil {
		err = k.adapter.Migrated(ctx, mig, dir, start, k.now())
	}
	if err == nil {
		err = k.adapter.CommitTransaction(ctx)
	}
	if err != nil {
		_ = k.adapter.RollbackTransaction(ctx)
		return fmt.Errorf("migration %s_%s failed going %s: %w", mig.Version, mig.Name, dir, err)
	}

	k.logger.InfoContext(ctx, finished,
		"version", mig.Version.String(),
		"name", mig.Name,
		"duration", k.now().Sub(start),
	)

	return nil
}

func (k *Kaizou) run(ctx context.Context, mig migration.Migration, dir migration.Direction, m script.Migration, fn script.Func) error {
	if dir == migration.Up || !m.Reversible() {
		return fn(ctx, script.NewEnv(k.adapter, mig, dir))
	}

	recorder := proxy.New(k.adapter)
	if err := fn(ctx, script.NewEnv(recorder, mig, dir)); err != nil {
		return err
	}

	inverted, err := recorder.InvertedActions()
	if err != nil {
		return err
	}

	return table.NewPlan(inverted).Execute(ctx, k.adapter)
}

func (k *Kaizou) loadAppliedMigrations(ctx context.Context) (map[migration.Version]migration.Log, error) {
	log, err := k.adapter.GetVersionLog(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load migrations from db: %w", err)
	}

	result := make(map[migration.Version]migration.Log, len(log))
	for _, entry := range log {
		result[entry.Version] = entry
	}
	return result, nil
}

func containsVersion(descriptions []migration.Description, version migration.Version) bool {
	for _, d := range descriptions {
		if d.Version == version {
			return true
		}
	}
	return false
}
