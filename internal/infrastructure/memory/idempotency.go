package memory

import (
	"context"
	"sync"
	"time"
)

type idemEntry struct {
	orderID string
	expires time.Time
}

// IdempotencyStore reservas de claves de solicitud en proceso; sirve cuando no hay Redis
// y hay una sola instancia de la API.
type IdempotencyStore struct {
	mu      sync.Mutex
	entries map[string]idemEntry
	now     func() time.Time
}

// NewIdempotencyStore crea el store vacío.
func NewIdempotencyStore() *IdempotencyStore {
	return &IdempotencyStore{entries: map[string]idemEntry{}, now: time.Now}
}

func (s *IdempotencyStore) Reserve(_ context.Context, key string, ttl time.Duration) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if e, ok := s.entries[key]; ok && now.Before(e.expires) {
		return e.orderID, false, nil
	}
	s.entries[key] = idemEntry{expires: now.Add(ttl)}
	return "", true, nil
}

func (s *IdempotencyStore) Complete(_ context.Context, key, orderID string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = idemEntry{orderID: orderID, expires: s.now().Add(ttl)}
	return nil
}

func (s *IdempotencyStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}
