package depgraph

import (
	"slices"
	"sync"

	"github.com/roach88/propdeps/internal/ir"
)

// Store is the declaration store of one object: dependent name to the
// insertion-ordered set of its dependency names.
//
// Thread-safety: all methods are safe for concurrent use via a single
// exclusive mutex.
type Store struct {
	mu    sync.Mutex
	order []string            // dependents in first-insertion order
	deps  map[string][]string // dependent -> dependencies, insertion order
}

// NewStore creates a store seeded with the given edges.
// Self-edges and duplicates are dropped.
func NewStore(edges ...ir.Edge) *Store {
	s := &Store{deps: make(map[string][]string)}
	for _, e := range edges {
		s.add(e.Dependent, e.Dependency)
	}
	return s
}

// Add records that dependent depends on dependency.
// Returns false when the edge was dropped as a self-edge or duplicate.
func (s *Store) Add(dependent, dependency string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.add(dependent, dependency)
}

// AddEdges records each edge in order.
func (s *Store) AddEdges(edges []ir.Edge) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range edges {
		s.add(e.Dependent, e.Dependency)
	}
}

func (s *Store) add(dependent, dependency string) bool {
	if dependent == dependency {
		return false
	}
	existing, ok := s.deps[dependent]
	if !ok {
		s.order = append(s.order, dependent)
	}
	if slices.Contains(existing, dependency) {
		return false
	}
	s.deps[dependent] = append(existing, dependency)
	return true
}

// BeginDependency starts a fluent registration for dependent that records
// into this store.
func (s *Store) BeginDependency(dependent string) *Builder {
	return &Builder{dependent: dependent, record: func(dependent, dependency string) {
		s.Add(dependent, dependency)
	}}
}

// DirectDependencies returns the declared dependencies of name, including
// the wildcard marker when declared.
func (s *Store) DirectDependencies(name string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.deps[name])
}

// DirectDependents returns every dependent that declares name, plus every
// wildcard dependent other than name itself.
func (s *Store) DirectDependents(name string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.directDependents(name)
}

func (s *Store) directDependents(name string) []string {
	var out []string
	for _, dependent := range s.order {
		if dependent == name {
			continue
		}
		for _, dep := range s.deps[dependent] {
			if dep == name || dep == ir.Wildcard {
				out = append(out, dependent)
				break
			}
		}
	}
	return out
}

// Edges returns a snapshot of all edges, grouped by dependent in insertion
// order.
func (s *Store) Edges() []ir.Edge {
	s.mu.Lock()
	defer s.mu.Unlock()
	var edges []ir.Edge
	for _, dependent := range s.order {
		for _, dep := range s.deps[dependent] {
			edges = append(edges, ir.Edge{Dependent: dependent, Dependency: dep})
		}
	}
	return edges
}

// Len returns the number of stored edges.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, deps := range s.deps {
		n += len(deps)
	}
	return n
}
