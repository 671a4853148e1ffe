package authservice

import (
	"context"
	"errors"
	"time"

	"github.com/MrEthical07/authservice/internal/flows"
)

// VerifyToken checks signature, expiry and revocation, in that order.
func (e *Engine) VerifyToken(ctx context.Context, token string) (*SessionInfo, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}

	start := time.Now()
	defer func() {
		e.metrics.Observe(MetricVerifyTokenLatency, time.Since(start))
	}()

	res := e.flow.VerifyToken(ctx, token)
	if !res.OK() {
		switch {
		case errors.Is(res.Err, flows.ErrRevoked):
			e.metrics.Inc(MetricTokenRevoked)
		case res.Failure != flows.FailureUnexpected:
			e.metrics.Inc(MetricTokenInvalid)
		}
		return nil, e.failure(ctx, "verify_token", res.Outcome)
	}

	e.metrics.Inc(MetricTokenValid)
	return &SessionInfo{
		Email:     res.Claims.Subject,
		IssuedAt:  res.Claims.IssuedAt,
		ExpiresAt: res.Claims.ExpiresAt,
	}, nil
}
