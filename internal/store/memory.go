package store

import (
	"errors"
	"sync"
)

// MemoryStore is an in-process Store used by tests and by callers that
// want the gateway's coalescing behavior without a file on disk. It has
// the same notification semantics as SQLiteStore.
type MemoryStore struct {
	mu   sync.Mutex
	docs map[string][]byte
	subs []chan Change

	// FailSets, when > 0, makes that many subsequent Set calls fail.
	// Lets tests exercise the gateway's retry path.
	FailSets int
	SetErr   error

	// SetCalls counts Set attempts, including failed ones. Lets tests
	// verify write coalescing.
	SetCalls int
}

// NewMemory returns an empty in-memory store.
func NewMemory() *MemoryStore {
	return &MemoryStore{docs: make(map[string][]byte)}
}

// Get returns a copy of the document for key, or ErrNotFound.
func (s *MemoryStore) Get(key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.docs[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

// Set replaces the document for key and notifies subscribers.
func (s *MemoryStore) Set(key string, value []byte) error {
	s.mu.Lock()
	s.SetCalls++
	if s.FailSets > 0 {
		s.FailSets--
		err := s.SetErr
		if err == nil {
			err = errors.New("induced set failure")
		}
		s.mu.Unlock()
		return err
	}
	s.docs[key] = append([]byte(nil), value...)
	subs := append([]chan Change(nil), s.subs...)
	s.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- Change{Key: key, NewValue: value}:
		default:
		}
	}
	return nil
}

// Subscribe returns a buffered channel receiving subsequent changes.
func (s *MemoryStore) Subscribe() <-chan Change {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := make(chan Change, 16)
	s.subs = append(s.subs, ch)
	return ch
}

// Close is a no-op for the memory store.
func (s *MemoryStore) Close() error {
	return nil
}
