package challenge

import (
	"context"
	"crypto/subtle"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/MrEthical07/authservice/credential"
	"github.com/MrEthical07/authservice/internal"
)

// CodeDigits is the length of a two-factor code.
const CodeDigits = 6

// DefaultTTL bounds how long a challenge can be redeemed.
const DefaultTTL = 10 * time.Minute

var (
	ErrNotFound         = errors.New("challenge not found")
	ErrMismatch         = errors.New("challenge mismatch")
	ErrBackend          = errors.New("challenge backend unavailable")
	ErrInvalidAttemptID = errors.New("invalid login attempt id")
	ErrInvalidCode      = errors.New("invalid two-factor code")
)

// LoginAttemptID correlates a challenge with the login that created it.
type LoginAttemptID struct {
	id uuid.UUID
}

// NewLoginAttemptID returns a random (v4) id.
func NewLoginAttemptID() LoginAttemptID {
	return LoginAttemptID{id: uuid.New()}
}

// ParseLoginAttemptID accepts the canonical UUID text form.
func ParseLoginAttemptID(s string) (LoginAttemptID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return LoginAttemptID{}, ErrInvalidAttemptID
	}
	return LoginAttemptID{id: id}, nil
}

func (a LoginAttemptID) String() string {
	return a.id.String()
}

func (a LoginAttemptID) IsZero() bool {
	return a.id == uuid.Nil
}

// Code is a six digit decimal two-factor code.
type Code struct {
	digits string
}

// NewCode draws CodeDigits uniformly random digits.
func NewCode() (Code, error) {
	digits, err := internal.RandomDigits(CodeDigits)
	if err != nil {
		return Code{}, err
	}
	return Code{digits: digits}, nil
}

// ParseCode accepts exactly six ASCII digits.
func ParseCode(s string) (Code, error) {
	if len(s) != CodeDigits {
		return Code{}, ErrInvalidCode
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return Code{}, ErrInvalidCode
		}
	}
	return Code{digits: s}, nil
}

func (c Code) String() string {
	return c.digits
}

// Equal compares in constant time.
func (c Code) Equal(other Code) bool {
	return subtle.ConstantTimeCompare([]byte(c.digits), []byte(other.digits)) == 1
}

// Challenge is a pending second factor for one identity.
type Challenge struct {
	AttemptID LoginAttemptID
	Code      Code
	ExpiresAt time.Time
}

func (c Challenge) matches(attemptID LoginAttemptID, code Code) bool {
	idOK := subtle.ConstantTimeCompare(c.AttemptID.id[:], attemptID.id[:]) == 1
	codeOK := c.Code.Equal(code)
	return idOK && codeOK
}

// Store is the challenge backend contract.
//
// Add replaces any pending challenge for identity and restarts its TTL.
// Consume succeeds only when both attemptID and code match a live challenge,
// and removes it; on ErrMismatch the challenge stays in place.
type Store interface {
	Add(ctx context.Context, identity credential.Identity, attemptID LoginAttemptID, code Code) error
	Get(ctx context.Context, identity credential.Identity) (Challenge, error)
	Remove(ctx context.Context, identity credential.Identity) error
	Consume(ctx context.Context, identity credential.Identity, attemptID LoginAttemptID, code Code) error
}
