package config

import (
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

// Environments mixes shared settings and named environments in one mapping,
// the way phinx lays them out.
type Environments struct {
	DefaultMigrationTable string
	MigrationTable        string
	DefaultEnvironment    string

	Envs map[string]*Environment
}

func (e *Environments) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: environments must be a mapping", node.Line)
	}

	e.Envs = map[string]*Environment{}

	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]

		var target any
		switch key.Value {
		case "default_migration_table":
			target = &e.DefaultMigrationTable
		case "migration_table":
			target = &e.MigrationTable
		case "default_environment", "default_database":
			target = &e.DefaultEnvironment
		default:
			env := &Environment{}
			e.Envs[key.Value] = env
			target = env
		}

		if err := value.Decode(target); err != nil {
			return fmt.Errorf("environments.%s: %w", key.Value, err)
		}
	}

	return nil
}

// Names lists the environments in alphabetical order.
func (e *Environments) Names() []string {
	names := make([]string, 0, len(e.Envs))
	for name := range e.Envs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
