// Package goGate is the session and route-gating core of a multi-role
// dashboard shell.
//
// A [Gate] owns one session store, one persistence adapter and one policy
// table. At startup [Gate.Bootstrap] restores the last session from storage;
// afterwards [Gate.Decide] maps (session, destination) to one of four outcomes:
// ALLOW, DENY_UNAUTHENTICATED, DENY_FORBIDDEN or PENDING. [Gate.Login] and
// [Gate.Logout] are the only ways the session changes.
//
// Gate methods are safe to call from multiple goroutines after [Builder.Build].
//
// # Architecture boundaries
//
// goGate is the public surface. It exposes [Gate], [Builder], [Config] and the
// value types aliased from session, guard and policy. Flow orchestration and
// audit dispatch live under internal/ and are never exported.
//
// # What this package must NOT do
//
//   - Validate tokens cryptographically. Tokens are opaque bearer strings issued
//     by an external service.
//   - Act as the authority for data access. Decisions are advisory UI gating.
//   - Import any sub-package that re-imports goGate (no import cycles).
package goGate
