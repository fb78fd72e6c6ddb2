// Package modules holds the concrete configurators, one per target
// subsystem, and the fixed-order catalog the orchestrator walks.
//
// Ownership boundary:
// - per-app configuration semantics (what to clear, what rows to insert,
//   which settings to flip)
// - the priority order between configurators
package modules
