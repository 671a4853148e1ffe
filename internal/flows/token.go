package flows

import (
	"context"
	"errors"

	"github.com/MrEthical07/authservice/jwt"
)

// ErrMissingToken is reported when no token was presented.
var ErrMissingToken = errors.New("missing session token")

// ErrRevoked is reported for a well-formed token found in the ledger.
var ErrRevoked = errors.New("session token revoked")

type TokenResult struct {
	Outcome
	Token  string
	Claims *jwt.Claims
}

// RunVerifyToken checks signature, expiry and revocation, in that order.
func RunVerifyToken(ctx context.Context, token string, deps Deps) TokenResult {
	if token == "" {
		return TokenResult{Outcome: fail(FailureInvalidInput, "missing_token", ErrMissingToken)}
	}

	claims, err := deps.Issuer.Verify(token)
	if err != nil {
		reason := "token_malformed"
		switch {
		case errors.Is(err, jwt.ErrExpired):
			reason = "token_expired"
		case errors.Is(err, jwt.ErrBadSignature):
			reason = "token_bad_signature"
		}
		return TokenResult{Outcome: fail(FailureUnauthorized, reason, err)}
	}

	revoked, err := deps.Ledger.Contains(ctx, token)
	if err != nil {
		return TokenResult{Outcome: fail(FailureUnexpected, "ledger_lookup_failed", err)}
	}
	if revoked {
		return TokenResult{Outcome: fail(FailureUnauthorized, "token_revoked", ErrRevoked)}
	}

	return TokenResult{Token: token, Claims: claims}
}
