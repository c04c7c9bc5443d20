// Package linkvfake provides a process-local, in-memory test double for
// the external lin-kv service's read/cas contract. It exists only to
// exercise the CAS-txn engine's conflict path in tests, never from a
// shipped cmd/* binary, and never persists to disk.
package linkvfake

import (
	"encoding/json"
	"sync"
)

// Store is a linearizable single-key-at-a-time register keyed by string
// (the protocol only ever addresses "root" in this repo, but the real
// service is general-purpose).
type Store struct {
	mu     sync.Mutex
	values map[string]json.RawMessage
}

// New returns an empty Store.
func New() *Store {
	return &Store{values: make(map[string]json.RawMessage)}
}

// Read returns the current value at key, or ok=false if absent.
func (s *Store) Read(key string) (json.RawMessage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok
}

// CAS atomically sets key to to if its current value deep-equals from
// (byte-for-byte after re-marshaling, matching the real service's
// linearizable compare-and-swap). If createIfNotExists is true and the
// key is absent, the comparison against from is skipped and the key is
// created directly. Returns an error describing why the swap was refused
// when it was.
func (s *Store) CAS(key string, from, to json.RawMessage, createIfNotExists bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, exists := s.values[key]
	if !exists {
		if !createIfNotExists {
			return ErrKeyNotFound
		}
		s.values[key] = to
		return nil
	}
	if !jsonEqual(current, from) {
		return ErrCasMismatch
	}
	s.values[key] = to
	return nil
}

func jsonEqual(a, b json.RawMessage) bool {
	var av, bv interface{}
	if json.Unmarshal(a, &av) != nil || json.Unmarshal(b, &bv) != nil {
		return false
	}
	na, aerr := json.Marshal(av)
	nb, berr := json.Marshal(bv)
	return aerr == nil && berr == nil && string(na) == string(nb)
}
