package chat

import (
	"fmt"
	"sort"
)

// Registry holds the configured backends keyed by name. Selection is by
// configuration, resolved once per generation call.
type Registry struct {
	providers   map[string]Provider
	defaultName string
}

func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]Provider)}
}

// Register adds a backend. The first registered backend becomes the default.
func (r *Registry) Register(p Provider) {
	if r.defaultName == "" {
		r.defaultName = p.Name()
	}
	r.providers[p.Name()] = p
}

// Resolve returns the named backend, or the default when name is empty.
func (r *Registry) Resolve(name string) (Provider, error) {
	if name == "" {
		name = r.defaultName
	}
	p, ok := r.providers[name]
	if !ok {
		return nil, fmt.Errorf("unknown chat provider %q (registered: %v)", name, r.Names())
	}
	return p, nil
}

// Names lists the registered backends, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
