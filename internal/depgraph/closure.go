package depgraph

import (
	"github.com/roach88/propdeps/internal/ir"
)

// Expand computes the closure of start under neighbors.
//
// The result grows monotonically from {start}: each name's neighbours are
// gathered once, unseen names are appended in first-discovery order, and the
// loop stops when no name is left to expand. The wildcard marker and start
// itself are never part of the result.
func Expand(start string, neighbors func(name string) []string) []string {
	seen := map[string]bool{start: true}
	queue := []string{start}
	var out []string

	for i := 0; i < len(queue); i++ {
		for _, n := range neighbors(queue[i]) {
			if n == ir.Wildcard || seen[n] {
				continue
			}
			seen[n] = true
			queue = append(queue, n)
			out = append(out, n)
		}
	}

	return out
}

// DependentsOf returns every property that transitively depends on name.
//
// Returns a not-found error if name, or any discovered dependent, is not a
// property of u.
func (s *Store) DependentsOf(u Universe, name string) ([]string, error) {
	if !u.HasProperty(name) {
		return nil, NewNotFound(u.TypeName(), name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	out := Expand(name, s.directDependents)
	return out, checkNames(u, out)
}

// DependenciesOf returns every property name transitively depends on.
// A wildcard declaration contributes every other property of u.
//
// Returns a not-found error if name, or any discovered dependency, is not a
// property of u.
func (s *Store) DependenciesOf(u Universe, name string) ([]string, error) {
	if !u.HasProperty(name) {
		return nil, NewNotFound(u.TypeName(), name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	all := u.PropertyNames()
	out := Expand(name, func(n string) []string {
		deps := s.deps[n]
		for _, d := range deps {
			if d == ir.Wildcard {
				return append(deps[:len(deps):len(deps)], all...)
			}
		}
		return deps
	})
	return out, checkNames(u, out)
}

func checkNames(u Universe, names []string) error {
	for _, n := range names {
		if !u.HasProperty(n) {
			return NewNotFound(u.TypeName(), n)
		}
	}
	return nil
}
