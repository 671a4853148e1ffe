package authservice

import "context"

// Logout verifies token and revokes it for the rest of its lifetime. An
// already revoked token fails with ErrUnauthorized.
func (e *Engine) Logout(ctx context.Context, token string) error {
	if err := e.ready(); err != nil {
		return err
	}

	res := e.flow.Logout(ctx, token)
	if !res.OK() {
		e.metrics.Inc(MetricLogoutFailure)
		return e.failure(ctx, "logout", res.Outcome)
	}

	e.metrics.Inc(MetricLogoutSuccess)
	e.log.Info(ctx, "session revoked", "expires_at", res.Claims.ExpiresAt)
	return nil
}
