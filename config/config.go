// Package config reads phinx-style YAML configuration: a set of named
// environments, each describing one database connection, plus the settings
// shared by all of them.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/root-talis/kaizou/adapter"
	"github.com/root-talis/kaizou/migration"
	"github.com/root-talis/kaizou/schema"
)

const (
	DefaultMigrationsPath = "db/migrations"
	DefaultEnvFile        = ".env"
)

var ErrUnknownEnvironment = errors.New("unknown environment")

type Config struct {
	Paths        Paths        `yaml:"paths"`
	Environments Environments `yaml:"environments"`
	VersionOrder string       `yaml:"version_order"`

	logger *slog.Logger
}

type Paths struct {
	Migrations string `yaml:"migrations"`
}

// Environment is one database connection.
type Environment struct {
	Adapter   string `yaml:"adapter"`
	Wrapper   string `yaml:"wrapper"`
	DSN       string `yaml:"dsn"`
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`
	Name      string `yaml:"name"`
	User      string `yaml:"user"`
	Pass      string `yaml:"pass"`
	Charset   string `yaml:"charset"`
	Collation string `yaml:"collation"`
	Schema    string `yaml:"schema"`
	Socket    string `yaml:"unix_socket"`
	Memory    bool   `yaml:"memory"`
	Suffix    string `yaml:"suffix"`

	TablePrefix    string `yaml:"table_prefix"`
	TableSuffix    string `yaml:"table_suffix"`
	MigrationTable string `yaml:"migration_table"`

	DataDomain map[string]map[string]any `yaml:"data_domain"`
	Params     map[string]string         `yaml:"params"`
}

// ---

type loader struct {
	logger   *slog.Logger
	envFiles []string
	lookup   func(string) (string, bool)
}

type Option func(*loader)

func WithLogger(logger *slog.Logger) Option {
	return func(l *loader) { l.logger = logger }
}

// WithEnvFiles replaces the .env files read before substitution. Missing
// files are skipped.
func WithEnvFiles(paths ...string) Option {
	return func(l *loader) { l.envFiles = paths }
}

// WithLookupEnv replaces os.LookupEnv as the source of PHINX_* variables.
func WithLookupEnv(lookup func(string) (string, bool)) Option {
	return func(l *loader) { l.lookup = lookup }
}

func newLoader(opts []Option) *loader {
	l := &loader{lookup: os.LookupEnv}
	for _, opt := range opts {
		opt(l)
	}
	if l.logger == nil {
		l.logger = slog.Default()
	}
	return l
}

// Load reads a configuration file. Unless WithEnvFiles says otherwise, a
// .env file next to it is loaded first.
func Load(path string, opts ...Option) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config path: %w", err)
	}

	defaults := []Option{
		WithEnvFiles(filepath.Join(filepath.Dir(abs), DefaultEnvFile)),
	}
	l := newLoader(append(defaults, opts...))

	return l.parse(data, map[string]string{
		"PHINX_CONFIG_PATH": abs,
		"PHINX_CONFIG_DIR":  filepath.Dir(abs),
	})
}

// Parse decodes configuration held in memory.
func Parse(data []byte, opts ...Option) (*Config, error) {
	return newLoader(opts).parse(data, nil)
}

func (l *loader) parse(data []byte, builtins map[string]string) (*Config, error) {
	dotenv, err := readEnvFiles(l.envFiles)
	if err != nil {
		return nil, err
	}

	lookup := func(name string) (string, bool) {
		if v, ok := builtins[name]; ok {
			return v, true
		}
		if v, ok := l.lookup(name); ok {
			return v, true
		}
		v, ok := dotenv[name]
		return v, ok
	}

	var cfg Config
	if err := yaml.Unmarshal(substitute(data, lookup), &cfg); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %w", adapter.ErrInvalidConfiguration, err)
	}

	if cfg.Paths.Migrations == "" {
		cfg.Paths.Migrations = DefaultMigrationsPath
	}
	if dir, ok := builtins["PHINX_CONFIG_DIR"]; ok && !filepath.IsAbs(cfg.Paths.Migrations) {
		cfg.Paths.Migrations = filepath.Join(dir, cfg.Paths.Migrations)
	}

	cfg.logger = l.logger
	return &cfg, nil
}

func readEnvFiles(paths []string) (map[string]string, error) {
	result := map[string]string{}

	for _, path := range paths {
		values, err := godotenv.Read(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read env file %s: %w", path, err)
		}

		for k, v := range values {
			if _, seen := result[k]; !seen {
				result[k] = v
			}
		}
	}

	return result, nil
}

var tokenPattern = regexp.MustCompile(`%%(PHINX_[A-Z0-9_]+)%%`)

// substitute replaces %%PHINX_NAME%% with the PHINX_NAME variable. Tokens of
// unset variables are left alone.
func substitute(data []byte, lookup func(string) (string, bool)) []byte {
	return tokenPattern.ReplaceAllFunc(data, func(token []byte) []byte {
		name := string(tokenPattern.FindSubmatch(token)[1])
		if v, ok := lookup(name); ok {
			return []byte(v)
		}
		return token
	})
}

// ---

// Environment returns the named environment; an empty name selects the
// default one.
func (c *Config) Environment(name string) (string, *Environment, error) {
	if name == "" {
		name = c.Environments.DefaultEnvironment
	}

	env, ok := c.Environments.Envs[name]
	if !ok {
		return name, nil, fmt.Errorf("%w: %w %q", adapter.ErrInvalidConfiguration, ErrUnknownEnvironment, name)
	}
	return name, env, nil
}

// MigrationTable resolves the version log table of an environment: its own
// setting, the shared one, the deprecated default_migration_table, then
// phinxlog.
func (c *Config) MigrationTable(env *Environment) string {
	switch {
	case env != nil && env.MigrationTable != "":
		return env.MigrationTable
	case c.Environments.MigrationTable != "":
		return c.Environments.MigrationTable
	case c.Environments.DefaultMigrationTable != "":
		c.logger.Warn("default_migration_table is deprecated, use migration_table instead",
			"value", c.Environments.DefaultMigrationTable)
		return c.Environments.DefaultMigrationTable
	default:
		return adapter.DefaultSchemaTableName
	}
}

// AdapterOptions builds the adapter options of an environment.
func (c *Config) AdapterOptions(name string) (adapter.Options, error) {
	_, env, err := c.Environment(name)
	if err != nil {
		return adapter.Options{}, err
	}

	if _, err := migration.ParseOrder(c.VersionOrder); err != nil {
		return adapter.Options{}, fmt.Errorf("%w: %w", adapter.ErrInvalidConfiguration, err)
	}

	opts := adapter.Options{
		Adapter:        env.Adapter,
		Wrapper:        env.Wrapper,
		DSN:            env.DSN,
		Host:           env.Host,
		Port:           env.Port,
		Name:           env.Name,
		User:           env.User,
		Pass:           env.Pass,
		Charset:        env.Charset,
		Collation:      env.Collation,
		Schema:         env.Schema,
		Socket:         env.Socket,
		Memory:         env.Memory,
		Suffix:         env.Suffix,
		MigrationTable: c.MigrationTable(env),
		VersionOrder:   c.VersionOrder,
		TablePrefix:    env.TablePrefix,
		TableSuffix:    env.TableSuffix,
		Logger:         c.logger,
		Params:         env.Params,
	}

	if len(env.DataDomain) > 0 {
		opts.DataDomain = make(map[string]schema.Options, len(env.DataDomain))
		for domain, options := range env.DataDomain {
			opts.DataDomain[domain] = schema.Options(options)
		}
	}

	return opts, nil
}
