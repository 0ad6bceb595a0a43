package adapter

import (
	"fmt"
	"sort"
	"sync"
)

// Constructor builds an adapter from options. Backends register one per key
// from their init functions.
type Constructor func(opts Options) (Adapter, error)

// WrapperConstructor decorates an adapter.
type WrapperConstructor func(inner Adapter) (Adapter, error)

const PrefixWrapper = "prefix"

var (
	registryMu sync.RWMutex
	adapters   = map[string]Constructor{}
	wrappers   = map[string]WrapperConstructor{}
)

// RegisterAdapter registers (or replaces) the constructor for a key.
func RegisterAdapter(name string, constructor Constructor) error {
	if name == "" || constructor == nil {
		return fmt.Errorf("%w: adapter %q needs a name and a constructor", ErrInvalidAdapter, name)
	}

	registryMu.Lock()
	defer registryMu.Unlock()
	adapters[name] = constructor
	return nil
}

func RegisterWrapper(name string, constructor WrapperConstructor) error {
	if name == "" || constructor == nil {
		return fmt.Errorf("%w: wrapper %q needs a name and a constructor", ErrInvalidAdapter, name)
	}

	registryMu.Lock()
	defer registryMu.Unlock()
	wrappers[name] = constructor
	return nil
}

// MustRegisterAdapter is RegisterAdapter for init functions.
func MustRegisterAdapter(name string, constructor Constructor) {
	if err := RegisterAdapter(name, constructor); err != nil {
		panic(err)
	}
}

func MustRegisterWrapper(name string, constructor WrapperConstructor) {
	if err := RegisterWrapper(name, constructor); err != nil {
		panic(err)
	}
}

func GetAdapter(name string, opts Options) (Adapter, error) {
	registryMu.RLock()
	constructor, ok := adapters[name]
	registryMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnregisteredAdapter, name)
	}

	opts.Adapter = name
	return constructor(opts)
}

func GetWrapper(name string, inner Adapter) (Adapter, error) {
	registryMu.RLock()
	constructor, ok := wrappers[name]
	registryMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: wrapper %q", ErrUnregisteredAdapter, name)
	}
	return constructor(inner)
}

// Adapters lists the registered adapter keys.
func Adapters() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return sortedKeys(adapters)
}

func Wrappers() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return sortedKeys(wrappers)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Open builds the adapter named by opts.Adapter, applies opts.Wrapper and
// then the prefix wrapper when a table prefix or suffix is configured.
func Open(opts Options) (Adapter, error) {
	a, err := GetAdapter(opts.Adapter, opts)
	if err != nil {
		return nil, err
	}

	if opts.Wrapper != "" {
		if a, err = GetWrapper(opts.Wrapper, a); err != nil {
			return nil, err
		}
	}

	if opts.TablePrefix != "" || opts.TableSuffix != "" {
		if a, err = GetWrapper(PrefixWrapper, a); err != nil {
			return nil, err
		}
	}

	return a, nil
}
