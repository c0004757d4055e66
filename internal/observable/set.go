package observable

import (
	"runtime"
	"strings"

	"github.com/roach88/propdeps/internal/depgraph"
)

// Set writes value into field and, if it differs from the previous value,
// invokes onChanged with (old, new) and then NotifyChanged(property).
//
// Returns false with a nil error when the value is unchanged; no
// notification is raised and onChanged is not invoked.
func Set[T comparable](o *Object, property string, field *T, value T, onChanged ...func(old, new T)) (bool, error) {
	if field == nil {
		return false, depgraph.NewInvalidArgument("field", "backing field is required")
	}
	return write(o, property, func() T { return *field }, func(v T) { *field = v }, value, equal[T], onChanged)
}

// SetEqual is Set for values that are not comparable with ==.
func SetEqual[T any](o *Object, property string, field *T, value T, eq func(a, b T) bool, onChanged ...func(old, new T)) (bool, error) {
	if field == nil {
		return false, depgraph.NewInvalidArgument("field", "backing field is required")
	}
	if eq == nil {
		return false, depgraph.NewInvalidArgument("equal", "equality function is required")
	}
	return write(o, property, func() T { return *field }, func(v T) { *field = v }, value, eq, onChanged)
}

// SetInferred is Set with the property name taken from the calling method:
// a method named SetTotal writes property "Total".
//
// Returns an invalid-argument error when the caller is not a Set<Property>
// method, for example a closure or a plain function.
//
//go:noinline
func SetInferred[T comparable](o *Object, field *T, value T, onChanged ...func(old, new T)) (bool, error) {
	property, err := callerProperty(2)
	if err != nil {
		return false, err
	}
	return Set(o, property, field, value, onChanged...)
}

// SetVia writes through an Accessor, for properties backed by another
// object's state.
func SetVia[T comparable](o *Object, property string, acc *Accessor[T], value T, onChanged ...func(old, new T)) (bool, error) {
	if acc == nil {
		return false, depgraph.NewInvalidArgument("accessor", "accessor is required")
	}
	return write(o, property, acc.get, acc.set, value, equal[T], onChanged)
}

func write[T any](o *Object, property string, get func() T, set func(T), value T, eq func(a, b T) bool, onChanged []func(old, new T)) (bool, error) {
	if err := o.checkInit(); err != nil {
		return false, err
	}
	if !o.typ.HasProperty(property) {
		return false, depgraph.NewNotFound(o.typ.Name(), property)
	}

	old := get()
	if eq(old, value) {
		return false, nil
	}
	set(value)

	for _, fn := range onChanged {
		if fn != nil {
			fn(old, value)
		}
	}

	return true, o.NotifyChanged(property)
}

func equal[T comparable](a, b T) bool {
	return a == b
}

// callerProperty derives a property name from the method skip frames up
// the stack (0 is callerProperty itself).
//
//go:noinline
func callerProperty(skip int) (string, error) {
	pcs := make([]uintptr, skip+8)
	n := runtime.Callers(1, pcs)
	frames := runtime.CallersFrames(pcs[:n])

	var frame runtime.Frame
	more := n > 0
	for i := 0; i <= skip; i++ {
		if !more {
			return "", depgraph.NewInvalidArgument("caller", "no calling method")
		}
		frame, more = frames.Next()
	}

	name, ok := propertyFromFunc(frame.Function)
	if !ok {
		return "", depgraph.NewInvalidArgument("caller",
			"cannot infer property from "+frame.Function+"; call Set with an explicit name")
	}
	return name, nil
}

// propertyFromFunc maps "pkg.(*Invoice).SetTotal" to "Total".
func propertyFromFunc(fn string) (string, bool) {
	fn = strings.TrimSuffix(fn, "[...]")
	i := strings.LastIndexByte(fn, '.')
	if i < 0 {
		return "", false
	}
	method := fn[i+1:]
	// Only methods qualify; the receiver segment ends with ')'.
	if !strings.HasSuffix(fn[:i], ")") {
		return "", false
	}
	prop, ok := strings.CutPrefix(method, "Set")
	if !ok || prop == "" {
		return "", false
	}
	return prop, true
}
