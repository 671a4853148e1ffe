package flows

import (
	"context"
	"errors"

	"github.com/MrEthical07/authservice/challenge"
	"github.com/MrEthical07/authservice/credential"
)

type Verify2FARequest struct {
	Email          string
	LoginAttemptID string
	Code           string
}

// RunVerify2FA consumes the pending challenge for the identity and issues a
// session. On any rejection the challenge is left as it was.
func RunVerify2FA(ctx context.Context, req Verify2FARequest, deps Deps) LoginResult {
	identity, err := credential.ParseIdentity(req.Email)
	if err != nil {
		return LoginResult{Outcome: fail(FailureInvalidInput, "invalid_email", err)}
	}
	attemptID, err := challenge.ParseLoginAttemptID(req.LoginAttemptID)
	if err != nil {
		return LoginResult{Outcome: fail(FailureInvalidInput, "invalid_attempt_id", err), Identity: identity}
	}
	code, err := challenge.ParseCode(req.Code)
	if err != nil {
		return LoginResult{Outcome: fail(FailureInvalidInput, "invalid_code", err), Identity: identity}
	}

	if err := deps.Challenges.Consume(ctx, identity, attemptID, code); err != nil {
		switch {
		case errors.Is(err, challenge.ErrNotFound):
			return LoginResult{Outcome: fail(FailureUnauthorized, "challenge_not_found", err), Identity: identity}
		case errors.Is(err, challenge.ErrMismatch):
			return LoginResult{Outcome: fail(FailureUnauthorized, "challenge_mismatch", err), Identity: identity}
		default:
			return LoginResult{Outcome: fail(FailureUnexpected, "challenge_consume_failed", err), Identity: identity}
		}
	}

	return issueSession(identity, deps)
}
