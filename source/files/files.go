// Package files reads raw SQL migrations from a directory. Every migration
// is a V<version>_<name>.up.sql file with an optional .down.sql twin that
// makes it reversible.
package files

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"

	"github.com/root-talis/kaizou/migration"
	"github.com/root-talis/kaizou/script"
	"github.com/root-talis/kaizou/source"
)

const (
	upSuffix   = ".up.sql"
	downSuffix = ".down.sql"
)

var ErrMigrationsDirectoryIsNotADirectory = errors.New("migrations directory is not a directory")

type Source struct {
	fsys fs.FS
	dir  string
}

var _ source.Source = (*Source)(nil)

// NewFilesSource reads migrations from dir inside fsys.
func NewFilesSource(fsys fs.FS, dir string) (*Source, error) {
	stat, err := fs.Stat(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to stat migrations directory: %w", err)
	}

	if !stat.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrMigrationsDirectoryIsNotADirectory, dir)
	}

	return &Source{fsys: fsys, dir: dir}, nil
}

// NewDirSource reads migrations from a directory on disk.
func NewDirSource(dir string) (*Source, error) {
	return NewFilesSource(os.DirFS(dir), ".")
}

func (s *Source) GetAvailableMigrations() ([]migration.Description, error) {
	entries, err := fs.ReadDir(s.fsys, s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read contents of migrations directory: %w", err)
	}

	versions := make(source.Versions)
	for _, entry := range entries {
		if entry.IsDir() || !entry.Type().IsRegular() {
			continue
		}

		fileName := entry.Name()
		mig, dir, err := parseFileName(fileName)
		if err != nil {
			continue
		}

		if err := versions.Add(mig, dir == migration.Down); err != nil {
			return nil, fmt.Errorf("failed to parse directory entries: %w", err)
		}
	}

	return versions.Sorted(), nil
}

// ReadMigration loads the up script and, when present, the down script.
func (s *Source) ReadMigration(mig migration.Migration) (script.Migration, error) {
	up, err := s.read(mig, upSuffix)
	if errors.Is(err, fs.ErrNotExist) {
		return script.Migration{}, fmt.Errorf("%w: %s_%s", source.ErrMigrationNotFound, mig.Version, mig.Name)
	}
	if err != nil {
		return script.Migration{}, err
	}

	down, err := s.read(mig, downSuffix)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return script.Migration{}, err
	}

	return script.SQL(up, down), nil
}

func (s *Source) read(mig migration.Migration, suffix string) (string, error) {
	name := path.Join(s.dir, fileName(mig, suffix))

	data, err := fs.ReadFile(s.fsys, name)
	if err != nil {
		return "", fmt.Errorf("failed to read migration file %s: %w", name, err)
	}
	return string(data), nil
}

func fileName(mig migration.Migration, suffix string) string {
	return "V" + mig.Version.String() + "_" + mig.Name + suffix
}

// ---

func parseFileName(fileName string) (migration.Migration, migration.Direction, error) {
	if !strings.HasPrefix(fileName, "V") {
		return migration.Migration{}, 0, fmt.Errorf("migration file name is invalid: %s", fileName)
	}

	var dir migration.Direction
	fullName := strings.TrimPrefix(fileName, "V")
	switch {
	case strings.HasSuffix(fullName, upSuffix):
		dir = migration.Up
		fullName = strings.TrimSuffix(fullName, upSuffix)
	case strings.HasSuffix(fullName, downSuffix):
		dir = migration.Down
		fullName = strings.TrimSuffix(fullName, downSuffix)
	default:
		return migration.Migration{}, 0, fmt.Errorf("migration file has an unknown suffix: %s", fileName)
	}

	if len(fullName) < migration.VersionLength+2 {
		return migration.Migration{}, 0, fmt.Errorf("migration file name is too short to be valid: %s", fileName)
	}

	version, err := migration.ParseVersion(fullName[:migration.VersionLength])
	if err != nil {
		return migration.Migration{}, 0, fmt.Errorf("migration file name does not contain a valid version: %s: %w", fileName, err)
	}

	rest := fullName[migration.VersionLength:]
	if rest[0] != '_' {
		return migration.Migration{}, 0, fmt.Errorf(
			"migration file is missing an underscore after version (%c given): %s", rest[0], fileName)
	}

	return migration.Migration{Version: version, Name: rest[1:]}, dir, nil
}
