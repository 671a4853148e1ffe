package authservice

import (
	"time"

	"github.com/MrEthical07/authservice/secret"
)

// SignupRequest registers a new user.
type SignupRequest struct {
	Email       string
	Password    secret.String
	Requires2FA bool
}

// LoginResult is returned by Login and Verify2FA. Exactly one of Token and
// LoginAttemptID is set.
type LoginResult struct {
	Email     string
	Token     string
	ExpiresAt time.Time

	// TwoFactorRequired means a code was sent and the caller must complete
	// the login with Verify2FA using LoginAttemptID.
	TwoFactorRequired bool
	LoginAttemptID    string
}

// Verify2FARequest redeems a pending login challenge.
type Verify2FARequest struct {
	Email          string
	LoginAttemptID string
	Code           string
}

// SessionInfo describes a verified, unrevoked session token.
type SessionInfo struct {
	Email     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}
