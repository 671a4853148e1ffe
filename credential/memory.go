package credential

import (
	"context"
	"sync"

	"github.com/MrEthical07/authservice/secret"
)

// MemoryStore keeps users in a map guarded by a RWMutex.
type MemoryStore struct {
	hasher Hasher

	mu    sync.RWMutex
	users map[Identity]User
}

func NewMemoryStore(hasher Hasher) *MemoryStore {
	return &MemoryStore{
		hasher: hasher,
		users:  make(map[Identity]User),
	}
}

func (s *MemoryStore) exists(identity Identity) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.users[identity]
	return ok
}

// Register hashes outside the lock, then re-checks under the write lock so two
// concurrent registrations of one identity cannot both succeed.
func (s *MemoryStore) Register(ctx context.Context, identity Identity, plaintext secret.String, requires2FA bool) error {
	if s.exists(identity) {
		return ErrUserExists
	}

	encoded, err := s.hasher.Hash(ctx, plaintext.Reveal())
	if err != nil {
		return backendErr(ctx, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[identity]; ok {
		return ErrUserExists
	}
	s.users[identity] = User{
		Identity:     identity,
		PasswordHash: encoded,
		Requires2FA:  requires2FA,
	}
	return nil
}

func (s *MemoryStore) Get(_ context.Context, identity Identity) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[identity]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return user, nil
}

func (s *MemoryStore) Validate(ctx context.Context, identity Identity, plaintext secret.String) error {
	user, err := s.Get(ctx, identity)
	if err != nil {
		return err
	}
	return verify(ctx, s.hasher, user, plaintext)
}
