// Package memory is an in-process stand-in for the spreadsheet mirror.
package memory

import (
	"context"
	"fmt"
	"sync"

	"dailyspend/internal/core"
	ports "dailyspend/internal/sheets"
)

type Store struct {
	mu    sync.Mutex
	rows  []core.LedgerEvent
	index map[string]int
}

var _ ports.Mirror = (*Store)(nil)

func New() *Store {
	return &Store{index: make(map[string]int)}
}

// AppendEvent stores the event and returns a synthetic row reference.
func (s *Store) AppendEvent(_ context.Context, e core.LedgerEvent) (string, error) {
	if e.ID == "" {
		return "", fmt.Errorf("event without id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, e)
	s.index[e.ID] = len(s.rows)
	return fmt.Sprintf("mem:%d", len(s.rows)), nil
}

func (s *Store) HasEvent(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.index[id]
	return ok, nil
}

func (s *Store) ListEvents(_ context.Context, monthKey string) ([]core.LedgerEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.LedgerEvent
	for _, e := range s.rows {
		if e.MonthKey == monthKey {
			out = append(out, e)
		}
	}
	return out, nil
}

// Len returns the number of stored rows.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}
