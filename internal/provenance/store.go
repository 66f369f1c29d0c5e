// Package provenance remembers who authored each relayed message so that a
// later report can be traced back to its sender.
package provenance

import (
	"errors"
	"sync"
)

// ErrNotFound indicates no relayed message is known under the given key.
var ErrNotFound = errors.New("provenance not found")

// Key identifies a delivered message: the chat it landed in and the message
// ID the platform assigned to it there.
type Key struct {
	Chat      int64
	MessageID int
}

// Store maps delivered messages to their original authors for the lifetime
// of the process.
type Store struct {
	records map[Key]int64
	mu      sync.RWMutex
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		records: make(map[Key]int64),
	}
}

// Record stores author for key. A second record for the same key replaces
// the first.
func (s *Store) Record(key Key, author int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[key] = author
}

// Lookup returns the author of the message stored under key.
func (s *Store) Lookup(key Key) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	author, ok := s.records[key]
	if !ok {
		return 0, ErrNotFound
	}
	return author, nil
}

// Len returns the number of stored records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.records)
}
