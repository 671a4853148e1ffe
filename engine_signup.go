package authservice

import (
	"context"

	"github.com/MrEthical07/authservice/internal/flows"
)

// Signup validates the request and registers the user. A duplicate email
// fails with ErrConflict; a malformed email or a password outside the policy
// fails with ErrValidation.
func (e *Engine) Signup(ctx context.Context, req SignupRequest) error {
	if err := e.ready(); err != nil {
		return err
	}

	res := e.flow.Signup(ctx, flows.SignupRequest{
		Email:       req.Email,
		Password:    req.Password,
		Requires2FA: req.Requires2FA,
	})
	if !res.OK() {
		switch res.Failure {
		case flows.FailureConflict:
			e.metrics.Inc(MetricSignupConflict)
		case flows.FailureInvalidInput:
			e.metrics.Inc(MetricSignupRejected)
		}
		return e.failure(ctx, "signup", res.Outcome, "identity", res.Identity)
	}

	e.metrics.Inc(MetricSignupSuccess)
	e.log.Info(ctx, "user registered", "identity", res.Identity, "requires_2fa", req.Requires2FA)
	return nil
}
