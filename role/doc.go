// Package role defines the closed set of dashboard roles and a compact
// bitmask set over them.
//
// # Model
//
// Roles carry no implicit hierarchy. A moderator is not "less than" an admin;
// every destination lists the roles it admits as an explicit [Set].
//
// # Architecture boundaries
//
// This package is a pure in-memory data structure with no I/O. It is shared by
// session, policy and guard.
//
// # What this package must NOT do
//
//   - Access storage, the network, or any session state.
//   - Import goGate, session, policy or guard.
//   - Rank roles against each other.
package role
