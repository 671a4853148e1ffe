package challenge

import (
	"context"
	"sync"
	"time"

	"github.com/MrEthical07/authservice/credential"
)

// MemoryStore keeps challenges in a map guarded by a RWMutex. Expired entries
// are treated as absent on read and purged by writers.
type MemoryStore struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.RWMutex
	pending map[credential.Identity]Challenge
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{
		ttl:     ttl,
		now:     time.Now,
		pending: make(map[credential.Identity]Challenge),
	}
}

func (s *MemoryStore) Add(_ context.Context, identity credential.Identity, attemptID LoginAttemptID, code Code) error {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.purgeLocked(now)
	s.pending[identity] = Challenge{
		AttemptID: attemptID,
		Code:      code,
		ExpiresAt: now.Add(s.ttl),
	}
	return nil
}

func (s *MemoryStore) Get(_ context.Context, identity credential.Identity) (Challenge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.pending[identity]
	if !ok || !s.now().Before(c.ExpiresAt) {
		return Challenge{}, ErrNotFound
	}
	return c, nil
}

func (s *MemoryStore) Remove(_ context.Context, identity credential.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.pending[identity]
	if !ok {
		return ErrNotFound
	}
	delete(s.pending, identity)
	if !s.now().Before(c.ExpiresAt) {
		return ErrNotFound
	}
	return nil
}

func (s *MemoryStore) Consume(_ context.Context, identity credential.Identity, attemptID LoginAttemptID, code Code) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.pending[identity]
	if !ok {
		return ErrNotFound
	}
	if !s.now().Before(c.ExpiresAt) {
		delete(s.pending, identity)
		return ErrNotFound
	}
	if !c.matches(attemptID, code) {
		return ErrMismatch
	}
	delete(s.pending, identity)
	return nil
}

// Len reports live and not yet purged entries.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.pending)
}

func (s *MemoryStore) purgeLocked(now time.Time) {
	for id, c := range s.pending {
		if !now.Before(c.ExpiresAt) {
			delete(s.pending, id)
		}
	}
}
