package credstore

import (
	"context"
	"errors"
)

var (
	// ErrDuplicateUser is returned by Add when the username is already present.
	ErrDuplicateUser = errors.New("username already exists")
	// ErrNotFound is returned by Get when no record exists for the username.
	ErrNotFound = errors.New("credential record not found")
	// ErrStoreUnavailable indicates the backing store is unreachable.
	ErrStoreUnavailable = errors.New("credential store unavailable")
)

// Record is a single user's credential record. PasswordHash and Salt are
// immutable after creation; EncryptedEmail is ciphertext under the user's
// data key; WrappedUserKey is that data key encrypted under the master key.
type Record struct {
	Username       string
	PasswordHash   string
	Salt           string
	Role           string
	EncryptedEmail []byte
	WrappedUserKey []byte
	CreatedAt      int64
}

// Fields carries a partial update for Update. Nil fields are left untouched.
type Fields struct {
	Role           *string
	EncryptedEmail []byte
	WrappedUserKey []byte
}

// Store is the keyed credential repository consumed by the authentication
// service. Implementations must treat username as a unique key.
type Store interface {
	// Add persists a new record, failing with ErrDuplicateUser if the
	// username is already present.
	Add(ctx context.Context, record *Record) error
	// Get returns the record for username or ErrNotFound.
	Get(ctx context.Context, username string) (*Record, error)
	// Update merges the supplied fields into an existing record. It reports
	// false without error when the username is unknown.
	Update(ctx context.Context, username string, fields Fields) (bool, error)
	// Delete removes the record and reports whether one existed. Deleting an
	// absent username is not an error.
	Delete(ctx context.Context, username string) (bool, error)
}

func (r *Record) clone() *Record {
	out := *r
	out.EncryptedEmail = cloneBytes(r.EncryptedEmail)
	out.WrappedUserKey = cloneBytes(r.WrappedUserKey)
	return &out
}

func (r *Record) apply(fields Fields) {
	if fields.Role != nil {
		r.Role = *fields.Role
	}
	if fields.EncryptedEmail != nil {
		r.EncryptedEmail = cloneBytes(fields.EncryptedEmail)
	}
	if fields.WrappedUserKey != nil {
		r.WrappedUserKey = cloneBytes(fields.WrappedUserKey)
	}
}

func cloneBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
