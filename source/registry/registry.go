// Package registry is a source for migrations written in Go. Migration
// packages register themselves from init functions:
//
//	func init() {
//		registry.Register(20240101120000, "create_users", script.Migration{Change: createUsers})
//	}
package registry

import (
	"fmt"
	"sync"

	"github.com/root-talis/kaizou/migration"
	"github.com/root-talis/kaizou/script"
	"github.com/root-talis/kaizou/source"
)

type Registry struct {
	mu       sync.RWMutex
	versions source.Versions
	scripts  map[migration.Version]script.Migration
}

var _ source.Source = (*Registry)(nil)

func New() *Registry {
	return &Registry{
		versions: make(source.Versions),
		scripts:  make(map[migration.Version]script.Migration),
	}
}

// Default collects the migrations registered with the package-level Register.
var Default = New() //nolint:gochecknoglobals

// Register adds a migration to Default and panics when it cannot.
func Register(version migration.Version, name string, m script.Migration) {
	if err := Default.Register(version, name, m); err != nil {
		panic(err)
	}
}

func (r *Registry) Register(version migration.Version, name string, m script.Migration) error {
	if _, err := migration.ParseVersion(version.String()); err != nil {
		return fmt.Errorf("failed to register %q: %w", name, err)
	}
	if name == "" {
		return fmt.Errorf("failed to register %s: migration has no name", version)
	}
	if err := m.Validate(); err != nil {
		return fmt.Errorf("failed to register %s_%s: %w", version, name, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.scripts[version]; exists {
		return fmt.Errorf("failed to register %s_%s: %w", version, name, source.ErrMigrationDuplicated)
	}

	mig := migration.Migration{Version: version, Name: name}
	if err := r.versions.Add(mig, m.CanUndo()); err != nil {
		return err
	}
	r.scripts[version] = m

	return nil
}

func (r *Registry) GetAvailableMigrations() ([]migration.Description, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.versions.Sorted(), nil
}

func (r *Registry) ReadMigration(mig migration.Migration) (script.Migration, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.scripts[mig.Version]
	if !ok || r.versions[mig.Version].Name != mig.Name {
		return script.Migration{}, fmt.Errorf("%w: %s_%s", source.ErrMigrationNotFound, mig.Version, mig.Name)
	}
	return m, nil
}
