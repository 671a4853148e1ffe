package flows

import (
	"context"
	"errors"

	"github.com/MrEthical07/authservice/credential"
	"github.com/MrEthical07/authservice/password"
	"github.com/MrEthical07/authservice/secret"
)

type SignupRequest struct {
	Email       string
	Password    secret.String
	Requires2FA bool
}

type SignupResult struct {
	Outcome
	Identity credential.Identity
}

// RunSignup validates the request shape and registers the user.
func RunSignup(ctx context.Context, req SignupRequest, deps Deps) SignupResult {
	identity, err := credential.ParseIdentity(req.Email)
	if err != nil {
		return SignupResult{Outcome: fail(FailureInvalidInput, "invalid_email", err)}
	}
	if err := password.CheckPolicy(req.Password.Reveal()); err != nil {
		return SignupResult{Outcome: fail(FailureInvalidInput, "invalid_password", err), Identity: identity}
	}

	err = deps.Credentials.Register(ctx, identity, req.Password, req.Requires2FA)
	switch {
	case err == nil:
		return SignupResult{Identity: identity}
	case errors.Is(err, credential.ErrUserExists):
		return SignupResult{Outcome: fail(FailureConflict, "user_exists", err), Identity: identity}
	default:
		return SignupResult{Outcome: fail(FailureUnexpected, "register_failed", err), Identity: identity}
	}
}
