package credential

import (
	"context"
	"errors"
	"fmt"

	"github.com/MrEthical07/authservice/secret"
)

var (
	ErrUserExists         = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrCredentialMismatch = errors.New("credential mismatch")
	ErrBackend            = errors.New("credential backend error")
)

// User is a registered account. PasswordHash is a PHC encoded argon2id string.
type User struct {
	Identity     Identity
	PasswordHash string
	Requires2FA  bool
}

// Hasher derives and verifies credentials. *password.Pool satisfies it.
type Hasher interface {
	Hash(ctx context.Context, plaintext string) (string, error)
	Verify(ctx context.Context, plaintext, encoded string) (bool, error)
}

// Store is the credential backend contract.
//
// Register fails with ErrUserExists when identity is taken. Validate
// distinguishes ErrUserNotFound from ErrCredentialMismatch; callers facing
// clients are expected to collapse the two.
type Store interface {
	Register(ctx context.Context, identity Identity, plaintext secret.String, requires2FA bool) error
	Get(ctx context.Context, identity Identity) (User, error)
	Validate(ctx context.Context, identity Identity, plaintext secret.String) error
}

func verify(ctx context.Context, hasher Hasher, user User, plaintext secret.String) error {
	ok, err := hasher.Verify(ctx, plaintext.Reveal(), user.PasswordHash)
	if err != nil {
		return backendErr(ctx, err)
	}
	if !ok {
		return ErrCredentialMismatch
	}
	return nil
}

// backendErr reports a context cancellation as itself and anything else as
// ErrBackend.
func backendErr(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return fmt.Errorf("%w: %w", ErrBackend, err)
}
