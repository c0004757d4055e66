// Package store provides SQLite-backed storage for recorded notification
// traces.
//
// A session is one run of writes against a single object. Each session
// holds:
//   - Assignments: property writes, including writes suppressed by the
//     equality gate
//   - Notifications: every property-changed notification raised, tagged
//     primary or dependent, with the written property as its cause
//
// Observable objects never persist their own state; the store only serves
// the CLI and the conformance harness.
//
// # Ordering
//
// Assignments and notifications share one logical clock per session. All
// queries order by seq ASC, so timelines read back identically across runs
// regardless of wall time.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Assignment values are stored as canonical JSON (ir.MarshalCanonical).
package store
