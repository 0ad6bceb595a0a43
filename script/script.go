// Package script holds executable migrations. A migration is a plain Go
// value: either a reversible Change function, whose rollback is derived by
// recording and inverting what it does, or an explicit Up/Down pair.
package script

import (
	"context"
	"errors"
	"strings"

	"github.com/root-talis/kaizou/migration"
)

var ErrEmptyMigration = errors.New("migration defines neither Change nor Up")

type Func func(ctx context.Context, env *Env) error

type Migration struct {
	// Change runs when migrating up and is recorded and inverted when
	// migrating down. It takes precedence over Up and Down.
	Change Func
	Up     Func
	Down   Func
}

func (m Migration) Validate() error {
	if m.Change == nil && m.Up == nil {
		return ErrEmptyMigration
	}
	return nil
}

// CanUndo reports whether the migration has a way back.
func (m Migration) CanUndo() bool {
	return m.Change != nil || m.Down != nil
}

// Reversible reports whether the rollback is derived from Change.
func (m Migration) Reversible() bool {
	return m.Change != nil
}

// For picks the function to run in the given direction. It returns nil when
// the migration cannot go down.
func (m Migration) For(dir migration.Direction) Func {
	if m.Change != nil {
		return m.Change
	}
	if dir == migration.Down {
		return m.Down
	}
	return m.Up
}

// ---

// SQL builds a migration from raw statements. An empty down script makes the
// migration irreversible.
func SQL(up, down string) Migration {
	m := Migration{Up: rawSQL(up)}
	if strings.TrimSpace(down) != "" {
		m.Down = rawSQL(down)
	}
	return m
}

func rawSQL(sql string) Func {
	return func(ctx context.Context, env *Env) error {
		if strings.TrimSpace(sql) == "" {
			return nil
		}
		_, err := env.Execute(ctx, sql)
		return err
	}
}
