package compiler

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/propdeps/internal/ir"
)

// Cycle warning levels.
const (
	LevelWarning = "warning"
	LevelInfo    = "info"
)

// CycleWarning represents a dependency cycle or a self dependency.
//
// Cycles are warnings, not errors: the closure resolver terminates on
// cyclic declarations and notifies every member exactly once. They are
// still worth a look, since each write to a member notifies all the others.
type CycleWarning struct {
	Type    string   `json:"type"`    // Declaring type
	Path    []string `json:"path"`    // Cycle path: ["A", "B", "A"]
	Message string   `json:"message"` // Human-readable description
	Level   string   `json:"level"`   // "warning" or "info"
}

// AnalyzeCycles performs static cycle analysis on type declarations.
//
// For each type it builds the notification graph (an edge P → Q means a
// write to P notifies Q), with inherited declarations included and wildcard
// declarations expanded to every other property. Strongly connected
// components are found with Tarjan's algorithm.
//
// Self dependencies are dropped by the engine and are reported at info
// level. Types with an unknown base or an inheritance cycle are skipped;
// Validate reports those.
//
// An acyclic declaration set returns an empty warning list.
func AnalyzeCycles(specs []ir.TypeSpec) []CycleWarning {
	warnings := []CycleWarning{}
	resolved := resolveTypes(specs)

	for _, spec := range specs {
		rt, ok := resolved[spec.Name]
		if !ok {
			continue
		}
		delete(resolved, spec.Name) // analyse each name once

		for _, name := range rt.selfEdges {
			warnings = append(warnings, CycleWarning{
				Type:    spec.Name,
				Path:    []string{name, name},
				Message: fmt.Sprintf("%s.%s depends on itself; the declaration is ignored", spec.Name, name),
				Level:   LevelInfo,
			})
		}

		graph := buildNotificationGraph(rt)
		for _, scc := range tarjanSCC(graph) {
			if len(scc) > 1 {
				warnings = append(warnings, cycleSCCToWarning(spec.Name, scc, graph))
			}
		}
	}

	return warnings
}

// notificationGraph maps a property to the properties its writes notify.
// nodes preserves declaration order for deterministic traversal.
type notificationGraph struct {
	nodes []string
	edges map[string][]string
}

func buildNotificationGraph(rt *resolvedType) notificationGraph {
	g := notificationGraph{
		nodes: rt.properties,
		edges: make(map[string][]string, len(rt.properties)),
	}

	add := func(from, to string) {
		if from == to || slices.Contains(g.edges[from], to) {
			return
		}
		g.edges[from] = append(g.edges[from], to)
	}

	for _, e := range rt.edges {
		if e.IsWildcard() {
			for _, p := range rt.properties {
				add(p, e.Dependent)
			}
			continue
		}
		add(e.Dependency, e.Dependent)
	}

	return g
}

// tarjanSCC finds strongly connected components using Tarjan's algorithm.
//
// Each SCC is returned ordered by the members' declaration order.
// Single-node SCCs are not cycles; the graph carries no self-loops.
func tarjanSCC(graph notificationGraph) [][]string {
	var (
		index   = 0
		stack   []string
		indices = make(map[string]int)
		lowlink = make(map[string]int)
		onStack = make(map[string]bool)
		sccs    [][]string
	)

	var strongConnect func(string)
	strongConnect = func(v string) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range graph.edges[v] {
			if _, visited := indices[w]; !visited {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		// If v is a root node, pop the stack and create an SCC
		if lowlink[v] == indices[v] {
			var scc []string
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			sccs = append(sccs, scc)
		}
	}

	for _, node := range graph.nodes {
		if _, visited := indices[node]; !visited {
			strongConnect(node)
		}
	}

	for _, scc := range sccs {
		slices.SortFunc(scc, func(a, b string) int {
			return slices.Index(graph.nodes, a) - slices.Index(graph.nodes, b)
		})
	}
	slices.SortFunc(sccs, func(a, b []string) int {
		return slices.Index(graph.nodes, a[0]) - slices.Index(graph.nodes, b[0])
	})

	return sccs
}

func cycleSCCToWarning(typeName string, scc []string, graph notificationGraph) CycleWarning {
	path := reconstructCyclePath(scc, graph)
	return CycleWarning{
		Type:    typeName,
		Path:    path,
		Message: fmt.Sprintf("dependency cycle in %s: %s", typeName, strings.Join(path, " → ")),
		Level:   LevelWarning,
	}
}

// reconstructCyclePath builds a cycle path from an SCC.
//
// Strategy: start at the first member, follow edges to unvisited members,
// and close the path when an edge leads back to the start.
func reconstructCyclePath(scc []string, graph notificationGraph) []string {
	if len(scc) == 0 {
		return []string{}
	}

	sccSet := make(map[string]bool)
	for _, node := range scc {
		sccSet[node] = true
	}

	start := scc[0]
	current := start
	path := []string{current}
	visited := make(map[string]bool)

	for {
		visited[current] = true

		var next string
		for _, neighbor := range graph.edges[current] {
			if sccSet[neighbor] && (!visited[neighbor] || neighbor == start) {
				next = neighbor
				break
			}
		}

		if next == "" {
			break
		}

		path = append(path, next)

		if next == start {
			break
		}

		current = next
	}

	return path
}
