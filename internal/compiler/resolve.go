package compiler

import (
	"slices"

	"github.com/roach88/propdeps/internal/ir"
)

// resolvedType is a type spec with its inherited properties and edges
// flattened in, base first.
type resolvedType struct {
	spec       ir.TypeSpec
	properties []string
	edges      []ir.Edge
	selfEdges  []string
}

// resolveTypes flattens inheritance for every spec whose base chain is
// well formed. Specs with an unknown base or an inheritance cycle are
// omitted; Validate reports them.
func resolveTypes(specs []ir.TypeSpec) map[string]*resolvedType {
	byName := make(map[string]ir.TypeSpec, len(specs))
	for _, s := range specs {
		if _, dup := byName[s.Name]; !dup {
			byName[s.Name] = s
		}
	}

	resolved := make(map[string]*resolvedType, len(specs))
	visiting := make(map[string]bool)

	var resolve func(name string) *resolvedType
	resolve = func(name string) *resolvedType {
		if rt, ok := resolved[name]; ok {
			return rt
		}
		spec, ok := byName[name]
		if !ok || visiting[name] {
			return nil
		}
		visiting[name] = true
		defer delete(visiting, name)

		rt := &resolvedType{spec: spec}
		if spec.Extends != "" {
			base := resolve(spec.Extends)
			if base == nil {
				return nil
			}
			rt.properties = slices.Clone(base.properties)
			rt.edges = slices.Clone(base.edges)
		}

		for _, p := range spec.Properties {
			if !slices.Contains(rt.properties, p.Name) {
				rt.properties = append(rt.properties, p.Name)
			}
			for _, dep := range p.DependsOn {
				e := ir.Edge{Dependent: p.Name, Dependency: dep}
				if e.IsSelf() {
					rt.selfEdges = append(rt.selfEdges, p.Name)
					continue
				}
				if !slices.Contains(rt.edges, e) {
					rt.edges = append(rt.edges, e)
				}
			}
		}

		resolved[name] = rt
		return rt
	}

	for _, s := range specs {
		resolve(s.Name)
	}
	return resolved
}

// inheritanceCycle returns the base chain starting at name if it loops.
func inheritanceCycle(name string, byName map[string]ir.TypeSpec) []string {
	var chain []string
	current := name
	for current != "" {
		if i := slices.Index(chain, current); i >= 0 {
			return append(chain[i:], current)
		}
		chain = append(chain, current)
		spec, ok := byName[current]
		if !ok {
			return nil
		}
		current = spec.Extends
	}
	return nil
}
