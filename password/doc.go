// Package password implements salted password digests and strength validation.
//
// # Output format
//
// Digests are deterministic PBKDF2-HMAC-SHA256 values, hex encoded:
//
//	hex(pbkdf2(password, salt, iterations, keyLength))
//
// Salts are UUIDv4 hex strings: unique per record, not secret, stored next to
// the digest. The same (password, salt) pair always yields the same digest, so
// verification recomputes the digest and compares in constant time.
//
// # Architecture boundaries
//
// This package owns digest computation, verification, and the strength policy.
// Salt and digest storage is the credential store's concern.
//
// # What this package must NOT do
//
//   - Store or retrieve passwords — callers supply plaintext and receive digests.
//   - Import any other authcore package.
//   - Log plaintext passwords at runtime.
package password
