package keyring

import (
	"fmt"
	"os"
	"sync"
)

// Manager owns the process-wide master key. The key is loaded from (or
// created at) the configured file path on first use and cached for the
// process lifetime; there is no teardown.
type Manager struct {
	path    string
	keySize int

	mu  sync.Mutex
	key []byte
}

// NewManager creates a Manager for the master key file at path. No I/O is
// performed until the first MasterKey call.
func NewManager(path string, keySize int) *Manager {
	return &Manager{path: path, keySize: keySize}
}

// MasterKey returns the master key, creating and persisting it on first use.
// Initialization is mutually exclusive: concurrent first callers converge on
// the same key. I/O failures are reported as ErrKeyStorage.
func (m *Manager) MasterKey() ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.key != nil {
		return m.key, nil
	}

	key, err := os.ReadFile(m.path)
	switch {
	case err == nil:
		if len(key) != m.keySize {
			return nil, fmt.Errorf("%w: master key file %s has %d bytes, want %d", ErrKeyStorage, m.path, len(key), m.keySize)
		}
		m.key = key
		return m.key, nil
	case os.IsNotExist(err):
		// First run: fall through to generation.
	default:
		return nil, fmt.Errorf("%w: %v", ErrKeyStorage, err)
	}

	key, err = GenerateKey(m.keySize)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(m.path, key, 0o600); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyStorage, err)
	}

	m.key = key
	return m.key, nil
}
