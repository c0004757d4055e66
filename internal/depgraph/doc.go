// Package depgraph holds the per-object declaration store and the closure
// algorithms computed over it.
//
// A Store maps each dependent property name to the ordered, duplicate-free
// set of property names it depends on. Stores are append-only: edges are
// added during the owning object's construction (from the type's declared
// edge table and from fluent registration) and never removed.
//
// # Closures
//
// DependentsOf and DependenciesOf expand a starting name to the fixed point
// of the edge relation in one direction. Expansion terminates on cyclic
// declarations because every name is expanded at most once and the set of
// names is finite. Results are in first-discovery order and never contain
// the starting name or the wildcard marker.
//
// Wildcard rules:
//   - Q declaring ir.Wildcard is a direct dependent of every property P != Q
//   - The direct dependencies of Q declaring ir.Wildcard are every other
//     property of the universe
//
// # Thread Safety
//
// Every read and append on a Store takes the store's single mutex. A closure
// holds the lock for the whole expansion so it observes one consistent edge
// set.
package depgraph
