package credstore

import (
	"context"
	"sync"
)

// Memory is an in-process Store backed by a mutex-guarded map. It is the
// default backend for embedding and tests.
type Memory struct {
	mu      sync.RWMutex
	records map[string]*Record
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{records: make(map[string]*Record)}
}

// Add persists a new record, failing with ErrDuplicateUser if the username is
// already present.
func (m *Memory) Add(_ context.Context, record *Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.records[record.Username]; ok {
		return ErrDuplicateUser
	}
	m.records[record.Username] = record.clone()
	return nil
}

// Get returns the record for username or ErrNotFound.
func (m *Memory) Get(_ context.Context, username string) (*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	record, ok := m.records[username]
	if !ok {
		return nil, ErrNotFound
	}
	return record.clone(), nil
}

// Update merges the supplied fields into an existing record. It reports false
// without error when the username is unknown.
func (m *Memory) Update(_ context.Context, username string, fields Fields) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	record, ok := m.records[username]
	if !ok {
		return false, nil
	}
	record.apply(fields)
	return true, nil
}

// Delete removes the record and reports whether one existed.
func (m *Memory) Delete(_ context.Context, username string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.records[username]
	delete(m.records, username)
	return ok, nil
}
