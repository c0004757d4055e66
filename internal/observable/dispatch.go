package observable

import (
	"github.com/roach88/propdeps/internal/depgraph"
)

// NotifyChanged raises the notification for property and for every
// property that transitively depends on it.
//
// The primary notification is raised first. Dependents follow in
// closure-discovery order; a dependent whose current value implements
// DependencyReactor is told before its own notification is raised.
//
// Returns a not-found error, before raising anything, if property is not a
// property of the object's type; returns a not-found error after the primary
// notification if a declared dependent does not exist.
func (o *Object) NotifyChanged(property string) error {
	if err := o.checkInit(); err != nil {
		return err
	}
	if !o.typ.HasProperty(property) {
		return depgraph.NewNotFound(o.typ.Name(), property)
	}

	o.raise(property)

	dependents, err := o.store.DependentsOf(o.typ, property)
	if err != nil {
		return err
	}

	o.logger.Debug("property changed",
		"type", o.typ.Name(),
		"property", property,
		"dependents", len(dependents))

	for _, name := range dependents {
		o.react(name)
		o.raise(name)
	}

	return nil
}

// react runs the dependent's DependencyReactor, if its current value has one.
func (o *Object) react(property string) {
	p, ok := o.typ.Property(property)
	if !ok {
		return
	}
	v, ok := p.Value(o.self)
	if !ok {
		return
	}
	if r, ok := v.(DependencyReactor); ok {
		o.logger.Debug("dependency reactor", "type", o.typ.Name(), "property", property)
		r.OnDependencyChanged()
	}
}

// raise invokes a snapshot of the observers outside the lock.
func (o *Object) raise(property string) {
	o.mu.Lock()
	observers := make([]Observer, len(o.observers))
	for i, s := range o.observers {
		observers[i] = s.fn
	}
	o.mu.Unlock()

	for _, fn := range observers {
		fn(property)
	}
}
