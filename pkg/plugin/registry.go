package plugin

import (
	"fmt"
	"sort"
	"sync"
)

// Registry manages registered carrier libraries.
type Registry struct {
	libraries map[string]Library
	mu        sync.RWMutex
}

// NewRegistry creates a new library registry.
func NewRegistry() *Registry {
	return &Registry{
		libraries: make(map[string]Library),
	}
}

// Register adds a library to the registry, replacing one with the same name.
func (r *Registry) Register(l Library) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.libraries[l.Name()] = l
}

// Get returns a library by name.
func (r *Registry) Get(name string) (Library, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if l, ok := r.libraries[name]; ok {
		return l, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrCarrierNotFound, name)
}

// Names returns the sorted names of all registered libraries.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.libraries))
	for name := range r.libraries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count returns the number of registered libraries.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.libraries)
}
