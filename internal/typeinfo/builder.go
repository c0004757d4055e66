package typeinfo

import (
	"github.com/roach88/propdeps/internal/depgraph"
	"github.com/roach88/propdeps/internal/ir"
)

// TypeBuilder collects property declarations for a Go type T.
type TypeBuilder[T any] struct {
	name   string
	base   *Type
	upcast func(any) any
	decls  []decl
	err    error
}

// Define starts the declaration of type T under name.
func Define[T any](name string) *TypeBuilder[T] {
	return &TypeBuilder[T]{name: name}
}

// Extends makes the type inherit base's properties and declarations.
// upcast returns the embedded base value that base's getters expect; it may
// be nil when both types share the same receiver.
func (b *TypeBuilder[T]) Extends(base *Type, upcast func(*T) any) *TypeBuilder[T] {
	if base == nil {
		b.fail(depgraph.NewInvalidArgument("base", "base type is required"))
		return b
	}
	b.base = base
	if upcast != nil {
		b.upcast = func(self any) any { return upcast(self.(*T)) }
	}
	return b
}

// Property declares a property read through get.
func (b *TypeBuilder[T]) Property(name string, get func(*T) any) *PropertyBuilder[T] {
	if get == nil {
		b.fail(depgraph.NewInvalidArgument("getter", "getter for "+b.name+"."+name+" is required"))
	}
	d := decl{name: name}
	if get != nil {
		d.get = func(self any) any { return get(self.(*T)) }
	}
	b.decls = append(b.decls, d)
	return &PropertyBuilder[T]{tb: b, idx: len(b.decls) - 1}
}

// Build freezes the type.
func (b *TypeBuilder[T]) Build() (*Type, error) {
	if b.err != nil {
		return nil, b.err
	}
	return newType(b.name, b.base, b.upcast, b.decls)
}

// MustBuild is like Build but panics on error.
// Intended for package-level type declarations.
func (b *TypeBuilder[T]) MustBuild() *Type {
	t, err := b.Build()
	if err != nil {
		panic(err)
	}
	return t
}

func (b *TypeBuilder[T]) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

// PropertyBuilder attaches dependency annotations to the most recently
// declared property.
type PropertyBuilder[T any] struct {
	tb  *TypeBuilder[T]
	idx int
}

// DependsOn annotates the property with one or more dependency names.
// Repeatable; ir.Wildcard declares a dependency on every other property.
func (pb *PropertyBuilder[T]) DependsOn(names ...string) *PropertyBuilder[T] {
	d := &pb.tb.decls[pb.idx]
	d.dependsOn = append(d.dependsOn, names...)
	return pb
}

// DependsOnAll annotates the property with the wildcard dependency.
func (pb *PropertyBuilder[T]) DependsOnAll() *PropertyBuilder[T] {
	return pb.DependsOn(ir.Wildcard)
}

// Property declares the next property.
func (pb *PropertyBuilder[T]) Property(name string, get func(*T) any) *PropertyBuilder[T] {
	return pb.tb.Property(name, get)
}

// Build freezes the type.
func (pb *PropertyBuilder[T]) Build() (*Type, error) {
	return pb.tb.Build()
}

// MustBuild is like Build but panics on error.
func (pb *PropertyBuilder[T]) MustBuild() *Type {
	return pb.tb.MustBuild()
}

// FieldGetter reads a named field from a dynamic object.
type FieldGetter func(self any, property string) any

// FromSpec builds a type from a compiled declaration. get may be nil for
// declaration-only types used by tooling.
func FromSpec(spec ir.TypeSpec, base *Type, get FieldGetter) (*Type, error) {
	decls := make([]decl, len(spec.Properties))
	for i, p := range spec.Properties {
		decls[i] = decl{name: p.Name, dependsOn: p.DependsOn}
		if get != nil {
			name := p.Name
			decls[i].get = func(self any) any { return get(self, name) }
		}
	}
	return newType(spec.Name, base, nil, decls)
}
