package authservice

import (
	"context"

	"github.com/MrEthical07/authservice/internal/flows"
	"github.com/MrEthical07/authservice/secret"
)

// Login checks email and password. Users without a second factor receive a
// session token. Users with one receive TwoFactorRequired and a login attempt
// id, and the code is sent through the configured notifier.
//
// Unknown users and wrong passwords both fail with ErrUnauthorized.
func (e *Engine) Login(ctx context.Context, email string, plaintext secret.String) (*LoginResult, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}

	res := e.flow.Login(ctx, email, plaintext)
	if !res.OK() {
		if res.Failure != flows.FailureUnexpected {
			e.metrics.Inc(MetricLoginFailure)
		}
		return nil, e.failure(ctx, "login", res.Outcome, "identity", res.Identity)
	}

	if res.TwoFactorRequired {
		e.metrics.Inc(MetricTwoFactorRequired)
		e.log.Info(ctx, "challenge issued", "identity", res.Identity)
		return &LoginResult{
			Email:             res.Identity.String(),
			TwoFactorRequired: true,
			LoginAttemptID:    res.AttemptID.String(),
		}, nil
	}

	e.metrics.Inc(MetricLoginSuccess)
	return &LoginResult{
		Email:     res.Identity.String(),
		Token:     res.Token,
		ExpiresAt: res.ExpiresAt,
	}, nil
}
