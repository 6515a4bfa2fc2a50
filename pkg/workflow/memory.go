package workflow

import (
	"context"
	"sync"
)

// MemoryStore keeps history in process. Used by tests and local runs
// without a database.
type MemoryStore struct {
	mu    sync.Mutex
	execs map[string]Execution
	order []string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{execs: map[string]Execution{}}
}

func (s *MemoryStore) Record(_ context.Context, e Execution) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.execs[e.ID]; !ok {
		s.order = append(s.order, e.ID)
	}
	s.execs[e.ID] = e
	return nil
}

// ByKey lists executions for a key in start order.
func (s *MemoryStore) ByKey(key string) []Execution {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Execution
	for _, id := range s.order {
		if e := s.execs[id]; e.Key == key {
			out = append(out, e)
		}
	}
	return out
}
