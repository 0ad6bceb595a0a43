package source

import (
	"errors"
	"fmt"
	"sort"

	"github.com/root-talis/kaizou/migration"
	"github.com/root-talis/kaizou/script"
)

// Source lists the migrations a project ships and loads them for execution.
// GetAvailableMigrations returns them sorted by version.
type Source interface {
	GetAvailableMigrations() ([]migration.Description, error)
	ReadMigration(mig migration.Migration) (script.Migration, error)
}

var (
	ErrMigrationDuplicated = errors.New("migration version already exists with different name")
	ErrMigrationNotFound   = errors.New("migration not found")
)

// ---

// Versions keeps one description per version while a source is being
// scanned.
type Versions map[migration.Version]migration.Description

// Add records mig, or merges it into the description already stored for
// the same version. A second name for a version fails with
// ErrMigrationDuplicated.
func (m Versions) Add(mig migration.Migration, canUndo bool) error {
	known, exists := m[mig.Version]

	switch {
	case !exists:
		m[mig.Version] = migration.Description{Migration: mig, CanUndo: canUndo}

	case known.Name != mig.Name:
		return fmt.Errorf(
			"%w: %d is %q (new name %q is encountered)",
			ErrMigrationDuplicated,
			mig.Version,
			known.Name,
			mig.Name,
		)

	case canUndo:
		known.CanUndo = true
		m[mig.Version] = known
	}

	return nil
}

func (m Versions) Sorted() []migration.Description {
	result := make([]migration.Description, 0, len(m))
	for _, d := range m {
		result = append(result, d)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Version < result[j].Version
	})

	return result
}
