// Package persist stores the durable session snapshot (token + user) outside
// process memory, the way a browser shell keeps it in local storage.
//
// # Layout
//
// Two string entries, "token" and "user", optionally namespaced. The user entry
// is the JSON record produced by [session.EncodeUser]. Both are present together
// or both are absent.
//
// # Fail-safe load
//
// [Adapter.Load] never returns an error. A missing entry, a half-written pair, an
// undecodable user record or a backend read failure all mean "no prior
// session". Corruption degrades to logged out; it never blocks startup.
//
// # Backends
//
//   - [MemoryStorage]: process-local map, for tests and ephemeral shells.
//   - [FileStorage]: a JSON document on disk, one per profile.
//   - [RedisStorage]: go-redis, for shells that share a session across processes.
//   - [SQLStorage]: database/sql over SQLite (modernc) or Postgres (pgx).
package persist
