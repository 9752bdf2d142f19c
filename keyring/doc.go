// Package keyring implements the two-tier symmetric key hierarchy that
// protects personal data at rest.
//
// # Key hierarchy
//
// A single process-wide master key wraps one data key per user. The master key
// lives in a key file and is created lazily on first use; user keys are stored
// only as ciphertext wrapped under the master key and are reconstituted in
// memory, transiently, when a personal-data field must be read.
//
// # Ciphertext format
//
// All operations use AES-GCM. Ciphertexts are self-contained: a random
// 12-byte nonce prefix followed by the sealed payload, so no external state is
// needed to decrypt beyond the key itself. Tampering or a wrong key fails
// closed with [ErrKeyUnwrap] or [ErrDecryption], never silent garbage.
//
// # What this package must NOT do
//
//   - Transmit or log key material.
//   - Import any other authcore package.
package keyring
