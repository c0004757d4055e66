// Package harness runs conformance scenarios against declared types.
//
// A scenario names CUE declaration files and a type, creates one object of
// that type, and drives it through a sequence of writes. Every write is
// recorded into an in-memory trace store; the persisted timeline is the
// trace that step expectations, assertions and golden files are checked
// against.
//
// # Scenario Format
//
//	name: invoice_total
//	description: "Total recomputes once per input write"
//	specs:
//	  - specs/invoice.cue
//	type: Invoice
//	initial: { A: 1, B: 5 }
//	steps:
//	  - set: { A: 2 }
//	    expect: [A, Total]
//	  - set: { B: 5 }
//	    expect: []
//	  - notify: Ghost
//	    error: not_found
//	assertions:
//	  - type: notified_once
//	    property: Total
//	    step: 0
//	  - type: dependents
//	    property: A
//	    expect: [Total]
//
// A step either sets exactly one property or raises a notification without
// a write. expect is the exact notification sequence of the step; error
// names the failure the step must produce (not_found, invalid_argument).
//
// # Assertion Types
//
//   - notified_once: property notified exactly once
//   - notified_order: properties first notified in the given relative order
//   - not_notified: property never notified
//   - notification_count: property (or any property) notified count times
//   - dependents, dependencies: declared transitive closure of a property,
//     in discovery order
//
// Trace assertions cover the whole trace unless step restricts them to one
// step.
//
// # Deterministic Testing
//
// The harness uses a fixed session ID (scenario.session or
// testutil.DefaultSessionID), a deterministic logical clock and a fresh
// in-memory SQLite database per run, so repeated runs produce
// byte-identical traces for golden comparison.
package harness
