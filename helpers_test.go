package authcore

import (
	"context"

	"github.com/techcart/authcore/credstore"
)

// inspectableStore exposes the stored record bytes so tests can assert on
// what actually hits the backend.
type inspectableStore struct {
	*credstore.Memory
}

func newInspectableStore() *inspectableStore {
	return &inspectableStore{Memory: credstore.NewMemory()}
}

func (s *inspectableStore) raw(username string) *credstore.Record {
	record, err := s.Get(context.Background(), username)
	if err != nil {
		return nil
	}
	return record
}
