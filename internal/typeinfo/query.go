package typeinfo

import (
	"github.com/roach88/propdeps/internal/depgraph"
	"github.com/roach88/propdeps/internal/ir"
)

// DirectDependents returns the properties of t that declare a dependency on
// name, plus every wildcard property other than name.
func DirectDependents(t *Type, name string) ([]*Property, error) {
	if !t.HasProperty(name) {
		return nil, depgraph.NewNotFound(t.name, name)
	}
	return t.resolve(t.graph.DirectDependents(name))
}

// AllDependents returns the transitive dependents of name in first-discovery
// order, excluding name itself.
func AllDependents(t *Type, name string) ([]*Property, error) {
	names, err := t.graph.DependentsOf(t, name)
	if err != nil {
		return nil, err
	}
	return t.resolve(names)
}

// DirectDependencies returns the properties name declares a dependency on.
// A wildcard declaration yields every other property of t.
func DirectDependencies(t *Type, name string) ([]*Property, error) {
	if !t.HasProperty(name) {
		return nil, depgraph.NewNotFound(t.name, name)
	}
	var names []string
	seen := map[string]bool{name: true}
	for _, dep := range t.graph.DirectDependencies(name) {
		candidates := []string{dep}
		if dep == ir.Wildcard {
			candidates = t.PropertyNames()
		}
		for _, c := range candidates {
			if !seen[c] {
				seen[c] = true
				names = append(names, c)
			}
		}
	}
	return t.resolve(names)
}

// AllDependencies returns the transitive dependencies of name in
// first-discovery order, excluding name itself.
func AllDependencies(t *Type, name string) ([]*Property, error) {
	names, err := t.graph.DependenciesOf(t, name)
	if err != nil {
		return nil, err
	}
	return t.resolve(names)
}

func (t *Type) resolve(names []string) ([]*Property, error) {
	props := make([]*Property, 0, len(names))
	for _, n := range names {
		p, ok := t.index[n]
		if !ok {
			return nil, depgraph.NewNotFound(t.name, n)
		}
		props = append(props, p)
	}
	return props, nil
}

// Names returns the property names in order.
func Names(props []*Property) []string {
	out := make([]string, len(props))
	for i, p := range props {
		out[i] = p.Name
	}
	return out
}
