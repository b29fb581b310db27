// Package rate throttles failed sign-in attempts with Redis counters.
//
// # Window semantics
//
// Fixed-window counters: INCR + conditional EXPIRE on first hit. Keys:
//   - <prefix>:login:u:<username>  per user
//   - <prefix>:login:ip:<ip>       per client address (optional)
//
// # What this package must NOT do
//
//   - Decide what a failed attempt is; callers record failures.
//   - Be imported outside the goGate module.
package rate
