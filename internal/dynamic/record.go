// Package dynamic provides Record, an observable object whose property
// values live in a map. Types for records come from declaration files via
// compiler.Link, with Getter as the field getter.
package dynamic

import (
	"maps"
	"sync"

	"github.com/google/go-cmp/cmp"

	"github.com/roach88/propdeps/internal/depgraph"
	"github.com/roach88/propdeps/internal/observable"
	"github.com/roach88/propdeps/internal/typeinfo"
)

// Record is a map-backed observable object.
//
// Thread-safety: Get and Snapshot are safe for concurrent use. Writes are
// serialised per property by the caller, as with any observable object.
type Record struct {
	observable.Object

	mu     sync.RWMutex
	values map[string]any
}

// Getter is the typeinfo.FieldGetter for records.
func Getter(self any, property string) any {
	r, ok := self.(*Record)
	if !ok {
		return nil
	}
	v, _ := r.Get(property)
	return v
}

// New creates a record of type t with initial values. Initial values are
// assigned without notifications; every key must name a property of t.
func New(t *typeinfo.Type, initial map[string]any, opts ...observable.Option) (*Record, error) {
	if t == nil {
		return nil, depgraph.NewInvalidArgument("type", "type is required")
	}
	for name := range initial {
		if !t.HasProperty(name) {
			return nil, depgraph.NewNotFound(t.Name(), name)
		}
	}

	r := &Record{values: maps.Clone(initial)}
	if r.values == nil {
		r.values = make(map[string]any)
	}
	if err := r.Init(r, t, opts...); err != nil {
		return nil, err
	}
	return r, nil
}

// Get returns the current value of property. Unset properties read as nil.
func (r *Record) Get(property string) (any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.values[property]
	return v, ok
}

// Set writes value and notifies property and its dependents when the value
// changed. Observers see the new value.
func (r *Record) Set(property string, value any) (bool, error) {
	current, _ := r.Get(property)
	return observable.SetEqual(&r.Object, property, &current, value, Equal, func(_, v any) {
		r.mu.Lock()
		r.values[property] = v
		r.mu.Unlock()
	})
}

// Snapshot returns a copy of all assigned values.
func (r *Record) Snapshot() map[string]any {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return maps.Clone(r.values)
}

// Equal reports whether two property values are equal. Values that are not
// comparable with == (slices, maps) are compared structurally.
func Equal(a, b any) bool {
	return cmp.Equal(a, b)
}
