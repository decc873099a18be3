package memory

import (
	"context"
	"sync"
)

// IdempotencyStore keeps idempotency keys for the life of the process.
type IdempotencyStore struct {
	mu   sync.RWMutex
	keys map[string]string
}

func NewIdempotencyStore() *IdempotencyStore {
	return &IdempotencyStore{keys: make(map[string]string)}
}

func (s *IdempotencyStore) Lookup(_ context.Context, scope, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.keys[scope+"\x00"+key]
	return id, ok, nil
}

func (s *IdempotencyStore) Remember(_ context.Context, scope, key, orderID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys[scope+"\x00"+key] = orderID
	return nil
}
