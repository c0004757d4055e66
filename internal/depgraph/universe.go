package depgraph

import "slices"

// Universe is the set of property names visible on a type. Closures are
// validated against it and wildcard declarations expand over it.
type Universe interface {
	// TypeName identifies the type in error messages.
	TypeName() string

	// HasProperty reports whether name is a visible property.
	HasProperty(name string) bool

	// PropertyNames returns every visible property name in declaration order.
	PropertyNames() []string
}

// Names is a Universe over a fixed list of property names.
type Names []string

// TypeName implements Universe.
func (n Names) TypeName() string { return "" }

// HasProperty implements Universe.
func (n Names) HasProperty(name string) bool { return slices.Contains(n, name) }

// PropertyNames implements Universe.
func (n Names) PropertyNames() []string { return slices.Clone(n) }
