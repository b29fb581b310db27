// Package middleware adapts goGate route decisions to HTTP handlers, for both
// net/http and gin.
//
// # Guards
//
//   - [Guard] / [GinGuard]: protect one fixed destination.
//   - [GuardPath] / [GinGuardPath]: resolve the destination from the request path.
//
// Outcomes map to responses as follows:
//
//   - ALLOW: the next handler runs with the session snapshot in the request
//     context ([goGate.SessionFromContext]).
//   - DENY_UNAUTHENTICATED: 302 to the login path.
//   - DENY_FORBIDDEN: 302 to the home path.
//   - PENDING: 503 with a Retry-After header.
//
// # What this package must NOT do
//
//   - Make authorization decisions itself; all decisions come from the Gate.
//   - Touch the session store or persistence.
package middleware
