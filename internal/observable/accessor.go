package observable

import "github.com/roach88/propdeps/internal/depgraph"

// Accessor reads and writes a property value stored elsewhere, such as a
// field of a wrapped model.
type Accessor[T any] struct {
	get func() T
	set func(T)
}

// NewAccessor creates an accessor. Both get and set are required.
func NewAccessor[T any](get func() T, set func(T)) (*Accessor[T], error) {
	if get == nil {
		return nil, depgraph.NewInvalidArgument("getter", "getter is required")
	}
	if set == nil {
		return nil, depgraph.NewInvalidArgument("setter", "setter is required")
	}
	return &Accessor[T]{get: get, set: set}, nil
}

// Get returns the current value.
func (a *Accessor[T]) Get() T {
	return a.get()
}
