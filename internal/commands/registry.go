package commands

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
)

// Registry maps command names and aliases to commands.
type Registry struct {
	mu      sync.RWMutex
	byName  map[string]Command
	primary map[string]Command
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byName:  make(map[string]Command),
		primary: make(map[string]Command),
	}
}

// Register adds c under its name and aliases. Names are case-insensitive.
// Registering a name or alias twice is an error.
func (r *Registry) Register(c Command) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := append([]string{c.Name()}, c.Aliases()...)
	for i, n := range names {
		n = strings.ToLower(n)
		if n == "" {
			return fmt.Errorf("command %q: empty name", c.Name())
		}
		if _, exists := r.byName[n]; exists {
			return fmt.Errorf("command name already registered: %s", n)
		}
		names[i] = n
	}

	for _, n := range names {
		r.byName[n] = c
	}
	r.primary[names[0]] = c
	return nil
}

// Find looks up a command by name or alias.
func (r *Registry) Find(name string) (Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cmd, ok := r.byName[strings.ToLower(name)]
	return cmd, ok
}

// All returns each command once, sorted by primary name.
func (r *Registry) All() []Command {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Command, 0, len(r.primary))
	for _, name := range slices.Sorted(maps.Keys(r.primary)) {
		out = append(out, r.primary[name])
	}
	return out
}

// DefaultRegistry holds every command registered from init.
var DefaultRegistry = NewRegistry()

// Register adds c to DefaultRegistry and panics on a name clash.
func Register(c Command) {
	if err := DefaultRegistry.Register(c); err != nil {
		panic(err)
	}
}
