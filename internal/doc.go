// Package internal holds code private to goGate.
//
// # Sub-packages
//
//   - audit: async event dispatch (Dispatcher + Sink implementations)
//   - envconf: environment and .env configuration for the binaries
//   - flows: pure-function orchestrators behind every Gate operation
//   - rate: Redis-backed failed-login throttle used by devauth
//
// # What this package must NOT do
//
//   - Export types that appear in the public goGate API.
package internal
