// Package flows contains the orchestration behind every Gate operation.
//
// Each Run function (RunBootstrap, RunLogin, RunLogout, RunSwitchRole,
// RunDecide) takes a dependency struct of plain functions and values, so the
// flows can be tested without a Gate, a storage backend or a clock.
//
// # Architecture boundaries
//
// Flows sequence calls into the session store, persistence adapter, policy
// table, metrics and audit emitters. They own none of these; the Gate does.
//
// # What this package must NOT do
//
//   - Hold mutable state between calls.
//   - Import goGate (to avoid import cycles).
//   - Perform I/O directly; all I/O goes through dependency functions.
package flows
