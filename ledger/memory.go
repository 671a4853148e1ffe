package ledger

import (
	"context"
	"sync"
	"time"
)

// MemoryLedger maps token digests to their expiry under a RWMutex.
type MemoryLedger struct {
	now func() time.Time

	mu      sync.RWMutex
	revoked map[string]time.Time
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		now:     time.Now,
		revoked: make(map[string]time.Time),
	}
}

func (l *MemoryLedger) Add(_ context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	now := l.now()
	key := digest(token)

	l.mu.Lock()
	defer l.mu.Unlock()

	for k, exp := range l.revoked {
		if !now.Before(exp) {
			delete(l.revoked, k)
		}
	}
	if exp, ok := l.revoked[key]; !ok || exp.Before(now.Add(ttl)) {
		l.revoked[key] = now.Add(ttl)
	}
	return nil
}

func (l *MemoryLedger) Contains(_ context.Context, token string) (bool, error) {
	key := digest(token)

	l.mu.RLock()
	defer l.mu.RUnlock()

	exp, ok := l.revoked[key]
	return ok && l.now().Before(exp), nil
}
