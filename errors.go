package authservice

import (
	"errors"

	"github.com/MrEthical07/authservice/credential"
	"github.com/MrEthical07/authservice/internal/flows"
)

// Error kinds. Every engine error wraps exactly one of these.
var (
	// ErrValidation means a request value had the wrong shape.
	ErrValidation = errors.New("validation failed")
	// ErrConflict means the email is already registered.
	ErrConflict = errors.New("conflict")
	// ErrUnauthorized covers unknown users, wrong passwords, failed
	// challenges and invalid or revoked tokens.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrUnexpected is an infrastructure fault.
	ErrUnexpected = errors.New("unexpected error")
)

var (
	// ErrEngineNotReady is returned by operations on an engine that was not
	// built by Builder.Build or has been closed.
	ErrEngineNotReady = errors.New("engine not initialized")

	// ErrInvalidEmail narrows ErrValidation for a malformed email.
	ErrInvalidEmail = credential.ErrInvalidIdentity
	// ErrMissingToken narrows ErrValidation for an empty session token.
	ErrMissingToken = flows.ErrMissingToken
	// ErrTokenRevoked narrows ErrUnauthorized for a logged out token.
	ErrTokenRevoked = flows.ErrRevoked
)
