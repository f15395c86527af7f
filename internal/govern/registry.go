package govern

import (
	"fmt"
	"sync"
)

// Registry is an explicit, caller-owned alternative to a process-wide
// default governor. Lifecycle: create with NewRegistry, Register named
// instances during init, Get them at call sites, and Reset to drop
// everything (tests, reload). Nothing here is implicit or global.
type Registry struct {
	mu        sync.RWMutex
	governors map[string]*Governor
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{governors: make(map[string]*Governor)}
}

// Register adds a governor under name. Re-registering a name is an
// error; call Reset first if replacement is intended.
func (r *Registry) Register(name string, g *Governor) error {
	if g == nil {
		return fmt.Errorf("cannot register nil governor %q", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.governors[name]; exists {
		return fmt.Errorf("governor %q already registered", name)
	}
	r.governors[name] = g
	return nil
}

// Get returns the governor registered under name, if any.
func (r *Registry) Get(name string) (*Governor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	g, ok := r.governors[name]
	return g, ok
}

// Names returns the registered names in no particular order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.governors))
	for name := range r.governors {
		names = append(names, name)
	}
	return names
}

// Reset drops all registered governors.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.governors = make(map[string]*Governor)
}
