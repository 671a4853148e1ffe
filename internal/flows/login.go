package flows

import (
	"context"
	"errors"
	"time"

	"github.com/MrEthical07/authservice/challenge"
	"github.com/MrEthical07/authservice/credential"
	"github.com/MrEthical07/authservice/password"
	"github.com/MrEthical07/authservice/secret"
)

const defaultTwoFactorSubject = "Here is your 2FA Token"

// LoginResult carries either a session token or a pending challenge.
type LoginResult struct {
	Outcome
	Identity credential.Identity

	Token     string
	ExpiresAt time.Time

	TwoFactorRequired bool
	AttemptID         challenge.LoginAttemptID
}

// RunLogin validates credentials. Users without a second factor get a session
// token; others get a code through the notifier and a challenge keyed by
// their identity. The notifier runs first, so a delivery failure leaves no
// pending challenge behind.
func RunLogin(ctx context.Context, email string, plaintext secret.String, deps Deps) LoginResult {
	identity, err := credential.ParseIdentity(email)
	if err != nil {
		return LoginResult{Outcome: fail(FailureInvalidInput, "invalid_email", err)}
	}
	if err := password.CheckPolicy(plaintext.Reveal()); err != nil {
		return LoginResult{Outcome: fail(FailureInvalidInput, "invalid_password", err), Identity: identity}
	}

	if err := deps.Credentials.Validate(ctx, identity, plaintext); err != nil {
		switch {
		case errors.Is(err, credential.ErrUserNotFound):
			return LoginResult{Outcome: fail(FailureUnauthorized, "user_not_found", err), Identity: identity}
		case errors.Is(err, credential.ErrCredentialMismatch):
			return LoginResult{Outcome: fail(FailureUnauthorized, "password_mismatch", err), Identity: identity}
		default:
			return LoginResult{Outcome: fail(FailureUnexpected, "validate_failed", err), Identity: identity}
		}
	}

	user, err := deps.Credentials.Get(ctx, identity)
	if err != nil {
		return LoginResult{Outcome: fail(FailureUnexpected, "user_lookup_failed", err), Identity: identity}
	}

	if !user.Requires2FA {
		return issueSession(identity, deps)
	}

	attemptID := challenge.NewLoginAttemptID()
	code, err := challenge.NewCode()
	if err != nil {
		return LoginResult{Outcome: fail(FailureUnexpected, "code_generation_failed", err), Identity: identity}
	}

	subject := deps.TwoFactorSubject
	if subject == "" {
		subject = defaultTwoFactorSubject
	}
	if err := deps.Notifier.Send(ctx, secret.New(identity.String()), subject, code.String()); err != nil {
		return LoginResult{Outcome: fail(FailureUnexpected, "notify_failed", err), Identity: identity}
	}
	if err := deps.Challenges.Add(ctx, identity, attemptID, code); err != nil {
		return LoginResult{Outcome: fail(FailureUnexpected, "challenge_store_failed", err), Identity: identity}
	}

	return LoginResult{
		Identity:          identity,
		TwoFactorRequired: true,
		AttemptID:         attemptID,
	}
}

func issueSession(identity credential.Identity, deps Deps) LoginResult {
	token, expiresAt, err := deps.Issuer.Mint(identity.String())
	if err != nil {
		return LoginResult{Outcome: fail(FailureUnexpected, "mint_failed", err), Identity: identity}
	}
	return LoginResult{Identity: identity, Token: token, ExpiresAt: expiresAt}
}
