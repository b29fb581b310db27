// Package session owns the authoritative in-memory session state of the
// dashboard shell and the JSON codec for the persisted user record.
//
// # Single writer
//
// [Store] is the only component that writes session fields. Every mutation goes
// through [Store.Login], [Store.Logout] or [Store.MarkBootstrapped]; readers
// receive deep copies from [Store.Snapshot] and never hold the live identity.
//
// # Architecture boundaries
//
// This package owns the [Session] model, [UserIdentity] and the [Store]. It does
// NOT load persisted snapshots, decide routing, or talk to the authentication
// service; those responsibilities belong to persist, guard and the root Gate.
//
// # What this package must NOT do
//
//   - Import goGate, persist, policy or guard (no upward imports).
//   - Inspect or validate bearer tokens beyond "non-empty".
//   - Partially apply a rejected login.
package session
