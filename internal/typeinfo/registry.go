package typeinfo

import (
	"fmt"
	"sync"
)

// Registry indexes frozen types by name.
//
// Thread-safety: safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	types map[string]*Type
	order []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{types: make(map[string]*Type)}
}

// Register adds t. Registering two types under one name is an error.
func (r *Registry) Register(t *Type) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.types[t.Name()]; exists {
		return fmt.Errorf("type %q already registered", t.Name())
	}
	r.types[t.Name()] = t
	r.order = append(r.order, t.Name())
	return nil
}

// Lookup returns the type registered under name.
func (r *Registry) Lookup(name string) (*Type, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.types[name]
	return t, ok
}

// Types returns all registered types in registration order.
func (r *Registry) Types() []*Type {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Type, len(r.order))
	for i, name := range r.order {
		out[i] = r.types[name]
	}
	return out
}
