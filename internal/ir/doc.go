// Package ir provides the shared intermediate representation for propdeps.
//
// This package contains type definitions and canonical serialization only.
// All other internal packages import ir; ir imports nothing internal. This
// keeps the dependency declarations the foundational layer with no
// circular dependencies.
//
// Key design constraints:
//   - Property names are plain strings, unique within a type's visible set
//   - The wildcard marker "*" is a declaration value, never a property name
//   - All JSON tags use snake_case
//   - Notification ordering uses logical clocks (seq), never wall-clock time
package ir
