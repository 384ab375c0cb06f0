package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps sessions in-process with the same contract as the
// Redis store. It backs tests and local development; expired records
// are reaped lazily on access.
type MemoryStore struct {
	mu          sync.Mutex
	records     map[string]Record
	lifetime    time.Duration
	touchWindow time.Duration

	// Now is the store's clock; tests override it to drive expiry.
	Now func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records:     make(map[string]Record),
		lifetime:    Lifetime,
		touchWindow: TouchWindow,
		Now:         time.Now,
	}
}

// NewMemoryStoreWithWindows builds a store with custom lifetime and
// touch window, for tests that need to drive the touch clock.
func NewMemoryStoreWithWindows(lifetime, touchWindow time.Duration) *MemoryStore {
	s := NewMemoryStore()
	s.lifetime = lifetime
	s.touchWindow = touchWindow
	return s
}

func (s *MemoryStore) Create(_ context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[rec.ID] = rec
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	if rec.Expired(s.Now()) {
		delete(s.records, id)
		return nil, ErrNotFound
	}

	copied := rec
	return &copied, nil
}

func (s *MemoryStore) Save(_ context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.Expired(s.Now()) {
		delete(s.records, rec.ID)
		return nil
	}
	s.records[rec.ID] = rec
	return nil
}

func (s *MemoryStore) Touch(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	if !ok {
		return ErrNotFound
	}

	now := s.Now()
	if rec.Expired(now) {
		delete(s.records, id)
		return ErrNotFound
	}
	if now.Sub(rec.LastTouchedAt) <= s.touchWindow {
		return nil
	}

	if extended := now.Add(s.lifetime); extended.After(rec.ExpiresAt) {
		rec.ExpiresAt = extended
	}
	rec.LastTouchedAt = now
	s.records[id] = rec
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.records, id)
	return nil
}
