package flows

import "context"

// RunLogout verifies the token exactly as RunVerifyToken does, then records it
// in the ledger for the rest of its lifetime. Pending challenges for the same
// identity are not touched.
func RunLogout(ctx context.Context, token string, deps Deps) TokenResult {
	res := RunVerifyToken(ctx, token, deps)
	if !res.OK() {
		return res
	}

	remaining := res.Claims.ExpiresAt.Add(deps.Leeway).Sub(deps.now())
	if err := deps.Ledger.Add(ctx, token, remaining); err != nil {
		return TokenResult{Outcome: fail(FailureUnexpected, "ledger_write_failed", err), Claims: res.Claims}
	}
	return res
}
