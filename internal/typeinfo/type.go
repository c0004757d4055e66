package typeinfo

import (
	"fmt"
	"slices"

	"github.com/roach88/propdeps/internal/depgraph"
	"github.com/roach88/propdeps/internal/ir"
)

// Getter reads a property's current value from an object.
type Getter func(self any) any

// Property is a property reference resolved against a declaring type.
type Property struct {
	// DeclaringType is the type whose declaration introduced the property.
	DeclaringType *Type

	// Name is unique within a type's visible property set.
	Name string

	// DependsOn lists the declared dependency names in declaration order,
	// including inherited declarations for shadowing properties.
	DependsOn []string

	get Getter
}

// Value reads the property's current value from self.
// Returns false when the property was declared without a getter.
func (p *Property) Value(self any) (any, bool) {
	if p.get == nil {
		return nil, false
	}
	return p.get(self), true
}

// String returns "Type.Name".
func (p *Property) String() string {
	return p.DeclaringType.Name() + "." + p.Name
}

// Type is a frozen object type: its visible properties and its base edge
// table. Types are immutable after Build and safe for concurrent use.
type Type struct {
	name    string
	base    *Type
	visible []*Property
	index   map[string]*Property
	edges   []ir.Edge
	graph   *depgraph.Store // declaration-only view for type-level queries
}

// Name returns the type name.
func (t *Type) Name() string { return t.name }

// Base returns the base type, or nil.
func (t *Type) Base() *Type { return t.base }

// Properties returns the visible properties, base first, in declaration
// order.
func (t *Type) Properties() []*Property { return slices.Clone(t.visible) }

// Property looks up a visible property by name.
func (t *Type) Property(name string) (*Property, bool) {
	p, ok := t.index[name]
	return p, ok
}

// TypeName implements depgraph.Universe.
func (t *Type) TypeName() string { return t.name }

// HasProperty implements depgraph.Universe.
func (t *Type) HasProperty(name string) bool {
	_, ok := t.index[name]
	return ok
}

// PropertyNames implements depgraph.Universe.
func (t *Type) PropertyNames() []string {
	names := make([]string, len(t.visible))
	for i, p := range t.visible {
		names[i] = p.Name
	}
	return names
}

// IsA reports whether t is other or extends it.
func (t *Type) IsA(other *Type) bool {
	for cur := t; cur != nil; cur = cur.base {
		if cur == other {
			return true
		}
	}
	return false
}

// Scan returns the type's declared edges: one per dependency annotation on
// each visible property, inherited declarations first, self-edges dropped.
// A type without annotations yields no edges.
func Scan(t *Type) []ir.Edge {
	return slices.Clone(t.edges)
}

// decl is one property declaration collected by a builder.
type decl struct {
	name      string
	dependsOn []string
	get       Getter
}

// newType freezes a set of declarations on top of base.
// upcast adapts self before inherited getters run; nil passes self through.
func newType(name string, base *Type, upcast func(any) any, decls []decl) (*Type, error) {
	if name == "" {
		return nil, depgraph.NewInvalidArgument("name", "type name is required")
	}

	t := &Type{
		name:  name,
		base:  base,
		index: make(map[string]*Property),
	}

	if base != nil {
		for _, bp := range base.visible {
			p := &Property{
				DeclaringType: bp.DeclaringType,
				Name:          bp.Name,
				DependsOn:     bp.DependsOn,
				get:           inherit(bp.get, upcast),
			}
			t.visible = append(t.visible, p)
			t.index[p.Name] = p
		}
		t.edges = append(t.edges, base.edges...)
	}

	seen := make(map[string]bool)
	for _, d := range decls {
		if d.name == "" {
			return nil, depgraph.NewInvalidArgument("property", fmt.Sprintf("empty property name on type %s", name))
		}
		if d.name == ir.Wildcard {
			return nil, depgraph.NewInvalidArgument("property", fmt.Sprintf("%q is reserved for wildcard dependencies", ir.Wildcard))
		}
		if seen[d.name] {
			return nil, depgraph.NewInvalidArgument("property", fmt.Sprintf("duplicate property %s.%s", name, d.name))
		}
		seen[d.name] = true

		p := &Property{DeclaringType: t, Name: d.name, DependsOn: slices.Clone(d.dependsOn), get: d.get}
		if inherited, ok := t.index[d.name]; ok {
			// Shadowing keeps the inherited declarations and position.
			p.DependsOn = append(slices.Clone(inherited.DependsOn), p.DependsOn...)
			if p.get == nil {
				p.get = inherited.get
			}
			t.visible[slices.Index(t.visible, inherited)] = p
		} else {
			t.visible = append(t.visible, p)
		}
		t.index[d.name] = p

		for _, dep := range d.dependsOn {
			e := ir.Edge{Dependent: d.name, Dependency: dep}
			if e.IsSelf() || slices.Contains(t.edges, e) {
				continue
			}
			t.edges = append(t.edges, e)
		}
	}

	t.graph = depgraph.NewStore(t.edges...)
	return t, nil
}

func inherit(get Getter, upcast func(any) any) Getter {
	if get == nil || upcast == nil {
		return get
	}
	return func(self any) any { return get(upcast(self)) }
}
