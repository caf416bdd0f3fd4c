package memory

import (
	"context"
	"sync"
)

// CodeStore is an in-process implementation of app.CodeStore.
type CodeStore struct {
	mu    sync.Mutex
	codes map[string]struct{}
}

func NewCodeStore() *CodeStore {
	return &CodeStore{
		codes: make(map[string]struct{}),
	}
}

func (s *CodeStore) Reserve(_ context.Context, code string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.codes[code]; ok {
		return false, nil
	}
	s.codes[code] = struct{}{}
	return true, nil
}

func (s *CodeStore) Release(_ context.Context, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.codes, code)
	return nil
}

// Live reports whether code is currently reserved.
func (s *CodeStore) Live(code string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.codes[code]
	return ok
}
