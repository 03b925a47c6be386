// Package memory keeps the ledger in process memory. Data is lost on exit.
package memory

import (
	"context"
	"sync"

	"dailyspend/internal/core"
	"dailyspend/internal/storage"
)

type Store struct {
	mu        sync.Mutex
	ledger    core.Ledger
	recipient int64
	hasRecip  bool
	saves     int
}

var _ storage.Store = (*Store)(nil)

// New returns a store seeded with a copy of seed, which may be nil.
func New(seed core.Ledger) *Store {
	s := &Store{ledger: core.Ledger{}}
	if seed != nil {
		s.ledger = seed.Clone()
	}
	return s
}

// Load returns a deep copy so callers never share maps with the store.
func (s *Store) Load(_ context.Context) (core.Ledger, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return storage.Prepare(s.ledger.Clone())
}

func (s *Store) Save(_ context.Context, l core.Ledger) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ledger = l.Clone()
	s.saves++
	return nil
}

func (s *Store) LoadRecipient(_ context.Context) (int64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recipient, s.hasRecip, nil
}

func (s *Store) SaveRecipient(_ context.Context, chatID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recipient = chatID
	s.hasRecip = true
	return nil
}

// Saves reports how many times Save was called.
func (s *Store) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}
