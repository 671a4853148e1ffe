package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/MrEthical07/authservice"
)

type sessionContextKey struct{}

// SessionFromContext returns the session stored by Guard.
func SessionFromContext(ctx context.Context) (*authservice.SessionInfo, bool) {
	info, ok := ctx.Value(sessionContextKey{}).(*authservice.SessionInfo)
	return info, ok
}

// Guard admits requests carrying a valid, unrevoked session token. The token
// is read from the engine's session cookie, then from a Bearer Authorization
// header.
func Guard(engine *authservice.Engine) func(http.Handler) http.Handler {
	cookieName := ""
	if engine != nil {
		cookieName = engine.Config().Cookie.Name
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			token, ok := sessionToken(r, cookieName)
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			info, err := engine.VerifyToken(r.Context(), token)
			if err != nil {
				if errors.Is(err, authservice.ErrUnexpected) {
					http.Error(w, "internal error", http.StatusInternalServerError)
					return
				}
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), sessionContextKey{}, info)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func sessionToken(r *http.Request, cookieName string) (string, bool) {
	if cookieName != "" {
		if c, err := r.Cookie(cookieName); err == nil && c.Value != "" {
			return c.Value, true
		}
	}
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	return token, ok && token != ""
}
