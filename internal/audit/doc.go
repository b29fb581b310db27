// Package audit delivers session and access events to a pluggable sink without
// blocking the caller.
//
// # Components
//
//   - [Sink]: event consumer (channel, JSON lines, slog, no-op).
//   - [Dispatcher]: buffered async relay, drop-if-full or block-if-full.
//   - [Event]: one record with a ULID, type, user, role, destination and outcome.
//
// The gate decides which events to emit. This package only buffers and
// delivers them, and must not import goGate or any sibling package.
package audit
