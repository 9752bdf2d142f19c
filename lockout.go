package authcore

import (
	"context"
	"sync"
	"time"
)

// AccountState describes where a username sits in the failed-attempt state
// machine.
type AccountState uint8

const (
	// StateActive means no failed attempts are on record.
	StateActive AccountState = iota
	// StateFlagged means one or more failures below the lockout threshold.
	StateFlagged
	// StateLocked means the threshold was reached and a security code is
	// pending verification.
	StateLocked
)

// String returns a stable label for logs and audit payloads.
func (s AccountState) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateFlagged:
		return "flagged"
	case StateLocked:
		return "locked"
	default:
		return "unknown"
	}
}

// AccountStatus is the externally visible lockout position of a username.
// Code is never included; it only travels through the Notifier.
type AccountStatus struct {
	State          AccountState
	FailedAttempts int
}

// lockoutRecord is the persisted failed-attempt state for one username. A
// record exists only while the account is flagged or locked. ExpiresAt is
// zero when the pending code never expires.
type lockoutRecord struct {
	Attempts  uint16
	Code      string
	ExpiresAt int64
}

func (r *lockoutRecord) locked() bool {
	return r != nil && r.Code != ""
}

// failedAttemptStore tracks consecutive authentication failures per username.
// RecordFailure is atomic: the attempt count never moves past the threshold,
// and the security code is generated exactly once, inside the store's own
// critical section.
type failedAttemptStore interface {
	// Get returns the record for username, or nil when the account is
	// active. Expired locked records are dropped and reported as nil.
	Get(ctx context.Context, username string) (*lockoutRecord, error)
	// RecordFailure increments the attempt count unless the account is
	// already locked. When the count reaches threshold it calls newCode and
	// stores the result, reporting didLock true for that one transition.
	RecordFailure(
		ctx context.Context,
		username string,
		threshold int,
		ttl time.Duration,
		newCode func() (string, error),
	) (record *lockoutRecord, didLock bool, err error)
	// Reset clears all failed-attempt state for username.
	Reset(ctx context.Context, username string) error
}

// memoryFailedAttemptStore is the in-process default backend.
type memoryFailedAttemptStore struct {
	mu      sync.Mutex
	records map[string]*lockoutRecord
}

func newMemoryFailedAttemptStore() *memoryFailedAttemptStore {
	return &memoryFailedAttemptStore{records: make(map[string]*lockoutRecord)}
}

func (s *memoryFailedAttemptStore) Get(_ context.Context, username string) (*lockoutRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[username]
	if !ok {
		return nil, nil
	}
	if record.ExpiresAt != 0 && time.Now().Unix() > record.ExpiresAt {
		delete(s.records, username)
		return nil, nil
	}
	out := *record
	return &out, nil
}

func (s *memoryFailedAttemptStore) RecordFailure(
	_ context.Context,
	username string,
	threshold int,
	ttl time.Duration,
	newCode func() (string, error),
) (*lockoutRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[username]
	if ok && record.ExpiresAt != 0 && time.Now().Unix() > record.ExpiresAt {
		delete(s.records, username)
		record, ok = nil, false
	}
	if !ok {
		record = &lockoutRecord{}
		s.records[username] = record
	}

	// A locked account does not accumulate further attempts and keeps the
	// code it already issued.
	if record.locked() {
		out := *record
		return &out, false, nil
	}

	record.Attempts++
	var didLock bool
	if int(record.Attempts) >= threshold {
		code, err := newCode()
		if err != nil {
			record.Attempts--
			return nil, false, err
		}
		record.Code = code
		if ttl > 0 {
			record.ExpiresAt = time.Now().Add(ttl).Unix()
		}
		didLock = true
	}

	out := *record
	return &out, didLock, nil
}

func (s *memoryFailedAttemptStore) Reset(_ context.Context, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.records, username)
	return nil
}
