package observable

import (
	"log/slog"
	"sync"

	"github.com/roach88/propdeps/internal/depgraph"
	"github.com/roach88/propdeps/internal/ir"
	"github.com/roach88/propdeps/internal/typeinfo"
)

// Observer receives the name of each changed property.
type Observer func(property string)

// Option configures an Object at Init.
type Option func(*Object)

// WithLogger sets the logger used for dispatch diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Object) {
		o.logger = logger
	}
}

// Object carries the declaration store and observer list of one object.
// Embed it and call Init from the constructor.
type Object struct {
	self   any
	typ    *typeinfo.Type
	store  *depgraph.Store
	logger *slog.Logger

	mu        sync.Mutex
	observers []subscription
	nextID    uint64
}

type subscription struct {
	id uint64
	fn Observer
}

// Init binds the object to self (the embedding value passed to property
// getters) and t, and populates the declaration store from t's declared
// edges. Init must run once, inside the constructor.
func (o *Object) Init(self any, t *typeinfo.Type, opts ...Option) error {
	if self == nil {
		return depgraph.NewInvalidArgument("self", "object is required")
	}
	if t == nil {
		return depgraph.NewInvalidArgument("type", "type is required")
	}

	o.self = self
	o.typ = t
	o.store = depgraph.NewStore(typeinfo.Scan(t)...)
	o.logger = slog.Default()
	for _, opt := range opts {
		opt(o)
	}
	return nil
}

// MustInit is like Init but panics on error.
func (o *Object) MustInit(self any, t *typeinfo.Type, opts ...Option) {
	if err := o.Init(self, t, opts...); err != nil {
		panic(err)
	}
}

// Type returns the object's type.
func (o *Object) Type() *typeinfo.Type {
	return o.typ
}

// BeginDependency starts a fluent registration recorded in this object's
// declaration store. Call it only during construction.
func (o *Object) BeginDependency(property string) *depgraph.Builder {
	return o.store.BeginDependency(property)
}

// Declarations returns a snapshot of the object's dependency edges.
func (o *Object) Declarations() []ir.Edge {
	return o.store.Edges()
}

// DependentsOf returns the transitive dependents of property.
func (o *Object) DependentsOf(property string) ([]string, error) {
	if err := o.checkInit(); err != nil {
		return nil, err
	}
	return o.store.DependentsOf(o.typ, property)
}

// DependenciesOf returns the transitive dependencies of property.
func (o *Object) DependenciesOf(property string) ([]string, error) {
	if err := o.checkInit(); err != nil {
		return nil, err
	}
	return o.store.DependenciesOf(o.typ, property)
}

// Subscribe registers fn for property-changed notifications. Observers are
// called in registration order. The returned function unsubscribes.
func (o *Object) Subscribe(fn Observer) (cancel func()) {
	if fn == nil {
		return func() {}
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	o.nextID++
	id := o.nextID
	o.observers = append(o.observers, subscription{id: id, fn: fn})

	return func() {
		o.mu.Lock()
		defer o.mu.Unlock()
		for i, s := range o.observers {
			if s.id == id {
				o.observers = append(o.observers[:i:i], o.observers[i+1:]...)
				return
			}
		}
	}
}

func (o *Object) checkInit() error {
	if o.typ == nil {
		return depgraph.NewInvalidArgument("object", "Init was not called")
	}
	return nil
}
