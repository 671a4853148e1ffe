package httpapi

import (
	"net/http"
	"time"

	"github.com/MrEthical07/authservice"
	"github.com/MrEthical07/authservice/middleware"
)

type handlers struct {
	engine *authservice.Engine
	cookie authservice.CookieConfig
}

func (h *handlers) signup(w http.ResponseWriter, r *http.Request) {
	var p signupPayload
	if err := decode(r, &p); err != nil {
		writeError(w, http.StatusUnprocessableEntity, msgMalformed)
		return
	}

	err := h.engine.Signup(r.Context(), authservice.SignupRequest{
		Email:       *p.Email,
		Password:    *p.Password,
		Requires2FA: *p.Requires2FA,
	})
	if err != nil {
		credentialError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, messageResponse{Message: "User created successfully!"})
}

func (h *handlers) login(w http.ResponseWriter, r *http.Request) {
	var p loginPayload
	if err := decode(r, &p); err != nil {
		writeError(w, http.StatusUnprocessableEntity, msgMalformed)
		return
	}

	res, err := h.engine.Login(r.Context(), *p.Email, *p.Password)
	if err != nil {
		credentialError(w, err)
		return
	}

	if res.TwoFactorRequired {
		writeJSON(w, http.StatusPartialContent, twoFactorResponse{
			Message:        "2FA required",
			LoginAttemptID: res.LoginAttemptID,
		})
		return
	}

	http.SetCookie(w, h.sessionCookie(res.Token, res.ExpiresAt))
	writeJSON(w, http.StatusOK, messageResponse{Message: "Login successful"})
}

func (h *handlers) verify2FA(w http.ResponseWriter, r *http.Request) {
	var p verify2FAPayload
	if err := decode(r, &p); err != nil {
		writeError(w, http.StatusUnprocessableEntity, msgMalformed)
		return
	}

	res, err := h.engine.Verify2FA(r.Context(), authservice.Verify2FARequest{
		Email:          *p.Email,
		LoginAttemptID: *p.LoginAttemptID,
		Code:           p.code(),
	})
	if err != nil {
		credentialError(w, err)
		return
	}

	http.SetCookie(w, h.sessionCookie(res.Token, res.ExpiresAt))
	writeJSON(w, http.StatusOK, messageResponse{Message: "Login successful"})
}

func (h *handlers) logout(w http.ResponseWriter, r *http.Request) {
	c, err := r.Cookie(h.cookie.Name)
	if err != nil || c.Value == "" {
		writeError(w, http.StatusBadRequest, msgMissingToken)
		return
	}

	if err := h.engine.Logout(r.Context(), c.Value); err != nil {
		tokenError(w, err)
		return
	}

	http.SetCookie(w, h.clearedCookie())
	writeJSON(w, http.StatusOK, messageResponse{Message: "Logged out"})
}

func (h *handlers) verifyToken(w http.ResponseWriter, r *http.Request) {
	var p verifyTokenPayload
	if err := decode(r, &p); err != nil {
		writeError(w, http.StatusUnprocessableEntity, msgMalformed)
		return
	}

	if _, err := h.engine.VerifyToken(r.Context(), *p.Token); err != nil {
		tokenError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "Token is valid"})
}

func (h *handlers) session(w http.ResponseWriter, r *http.Request) {
	info, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, msgInvalidToken)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{Email: info.Email, ExpiresAt: info.ExpiresAt.Unix()})
}

func (h *handlers) sessionCookie(token string, expiresAt time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     h.cookie.Name,
		Value:    token,
		Path:     h.cookie.Path,
		Domain:   h.cookie.Domain,
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: h.cookie.SameSite,
	}
}

func (h *handlers) clearedCookie() *http.Cookie {
	return &http.Cookie{
		Name:     h.cookie.Name,
		Value:    "",
		Path:     h.cookie.Path,
		Domain:   h.cookie.Domain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: h.cookie.SameSite,
	}
}
