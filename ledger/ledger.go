// Package ledger records revoked session tokens until they would have expired
// on their own.
package ledger

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"
)

var ErrBackend = errors.New("token ledger backend unavailable")

// Ledger is the revocation contract. Add with ttl <= 0 is a no-op: such a
// token already fails expiry checks.
type Ledger interface {
	Add(ctx context.Context, token string, ttl time.Duration) error
	Contains(ctx context.Context, token string) (bool, error)
}

// digest keys entries by token hash so the ledger never stores a usable token.
func digest(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
