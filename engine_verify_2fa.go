package authservice

import (
	"context"

	"github.com/MrEthical07/authservice/internal/flows"
)

// Verify2FA redeems the pending challenge for req.Email and issues a session
// token. A challenge is single use: of two concurrent calls with the right
// code, exactly one succeeds. A wrong attempt id or code leaves the challenge
// in place until it expires.
func (e *Engine) Verify2FA(ctx context.Context, req Verify2FARequest) (*LoginResult, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}

	res := e.flow.Verify2FA(ctx, flows.Verify2FARequest{
		Email:          req.Email,
		LoginAttemptID: req.LoginAttemptID,
		Code:           req.Code,
	})
	if !res.OK() {
		if res.Failure != flows.FailureUnexpected {
			e.metrics.Inc(MetricTwoFactorFailure)
		}
		return nil, e.failure(ctx, "verify_2fa", res.Outcome, "identity", res.Identity)
	}

	e.metrics.Inc(MetricTwoFactorSuccess)
	e.metrics.Inc(MetricLoginSuccess)
	return &LoginResult{
		Email:     res.Identity.String(),
		Token:     res.Token,
		ExpiresAt: res.ExpiresAt,
	}, nil
}
