// Package configure owns the state-mutation lifecycle contract.
//
// Ownership boundary:
// - the Configurator interface and module catalog entry shape
// - environment handle resolution to the canonical device controller
// - shared lifecycle helpers (app readiness, table clearing, SQL building,
//   datetime parsing, the target-app catalog)
package configure
