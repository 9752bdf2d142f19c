// Package authcore provides the credential core of an application: user
// registration, password verification, a two-tier symmetric key hierarchy
// protecting personal data at rest, and a per-user failed-attempt lockout
// flow that escalates to a delivered second-factor code.
//
// The package is designed for concurrent server workloads: Service methods are
// safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// authcore is the public surface. It exposes [Service], [Builder], [Config],
// the [Notifier] port, and value types (MetricsSnapshot, AuditEvent). The
// credential repository lives in credstore/ behind the [credstore.Store]
// interface, the key hierarchy in keyring/, and password digests in password/.
//
// # What this package must NOT do
//
//   - Expose Redis clients, store encodings, or key material in its public API.
//   - Log or persist clear passwords, clear user keys, or decrypted email.
//   - Perform I/O during construction (Builder is allocation-only until Build;
//     the master key file is touched lazily on first use).
package authcore
