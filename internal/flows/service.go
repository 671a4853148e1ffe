package flows

import (
	"context"

	"github.com/MrEthical07/authservice/secret"
)

// Service is the flow runner built once by the root engine.
type Service struct {
	deps Deps
}

// New returns a flow service with immutable dependency wiring.
func New(deps Deps) Service {
	return Service{deps: deps}
}

// Initialized reports whether every dependency is wired.
func (s Service) Initialized() bool {
	d := s.deps
	return d.Credentials != nil && d.Challenges != nil && d.Ledger != nil && d.Issuer != nil && d.Notifier != nil
}

func (s Service) Signup(ctx context.Context, req SignupRequest) SignupResult {
	return RunSignup(ctx, req, s.deps)
}

func (s Service) Login(ctx context.Context, email string, plaintext secret.String) LoginResult {
	return RunLogin(ctx, email, plaintext, s.deps)
}

func (s Service) Verify2FA(ctx context.Context, req Verify2FARequest) LoginResult {
	return RunVerify2FA(ctx, req, s.deps)
}

func (s Service) Logout(ctx context.Context, token string) TokenResult {
	return RunLogout(ctx, token, s.deps)
}

func (s Service) VerifyToken(ctx context.Context, token string) TokenResult {
	return RunVerifyToken(ctx, token, s.deps)
}
