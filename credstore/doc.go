// Package credstore defines the credential repository port and its bundled
// backends.
//
// # Record model
//
// A [Record] is keyed by username (unique, immutable after creation). It holds
// only non-reversible or encrypted material: the password digest and salt, the
// email ciphertext under the user's data key, and the user key wrapped under
// the master key. Nothing in a Record is usable without the key hierarchy.
//
// # Backends
//
//   - [Memory] — mutex-guarded map for embedding and tests.
//   - [Redis] — go-redis backed, versioned binary record codec, SetNX adds
//     and optimistic transaction updates.
//   - [Postgres] — database/sql over the pgx stdlib driver, schema managed by
//     embedded goose migrations.
//
// # What this package must NOT do
//
//   - Hash passwords or touch key material — it stores opaque bytes.
//   - Import the root authcore package.
package credstore
