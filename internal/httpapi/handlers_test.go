package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrEthical07/authservice"
	"github.com/MrEthical07/authservice/metrics/export/prometheus"
	"github.com/MrEthical07/authservice/notify"
	"github.com/MrEthical07/authservice/secret"
)

type codes struct {
	mu   sync.Mutex
	last map[string]string
}

func (c *codes) get(email string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last[email]
}

func newServer(t *testing.T) (http.Handler, *codes) {
	t.Helper()

	cfg := authservice.DefaultConfig()
	cfg.JWT.PrivateKey = []byte("httpapi-test-secret")
	cfg.Password.Memory = 8 * 1024
	cfg.Password.Time = 1

	inbox := &codes{last: map[string]string{}}
	engine, err := authservice.New().
		WithConfig(cfg).
		WithNotifier(notify.Func(func(_ context.Context, to secret.String, _, body string) error {
			inbox.mu.Lock()
			defer inbox.mu.Unlock()
			inbox.last[to.Reveal()] = body
			return nil
		})).
		Build()
	require.NoError(t, err)
	t.Cleanup(engine.Close)

	return NewRouter(engine, Options{Metrics: prometheus.NewPrometheusExporter(engine).Handler()}), inbox
}

func do(t *testing.T, h http.Handler, method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == "jwt" {
			return c
		}
	}
	t.Fatal("no session cookie set")
	return nil
}

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error
}

func TestScenarioLoginLogout(t *testing.T) {
	h, _ := newServer(t)

	rec := do(t, h, http.MethodPost, "/signup", `{"email":"a@b.com","password":"Passw0rd!","requires2FA":false}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"message":"User created successfully!"}`, rec.Body.String())

	rec = do(t, h, http.MethodPost, "/login", `{"email":"a@b.com","password":"Passw0rd!"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	cookie := sessionCookie(t, rec)
	assert.True(t, cookie.HttpOnly)
	assert.NotEmpty(t, cookie.Value)

	rec = do(t, h, http.MethodGet, "/session", "", cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"email":"a@b.com"`)

	rec = do(t, h, http.MethodPost, "/logout", "", cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	cleared := sessionCookie(t, rec)
	assert.Equal(t, "", cleared.Value)
	assert.Less(t, cleared.MaxAge, 0)

	rec = do(t, h, http.MethodPost, "/verify-token", `{"token":"`+cookie.Value+`"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, msgInvalidToken, errorBody(t, rec))
}

func TestScenarioTwoFactor(t *testing.T) {
	h, inbox := newServer(t)

	rec := do(t, h, http.MethodPost, "/signup", `{"email":"b@b.com","password":"Passw0rd!","requires2FA":true}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, h, http.MethodPost, "/login", `{"email":"b@b.com","password":"Passw0rd!"}`)
	require.Equal(t, http.StatusPartialContent, rec.Code)
	var pending twoFactorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pending))
	assert.Equal(t, "2FA required", pending.Message)
	require.NotEmpty(t, pending.LoginAttemptID)
	assert.Empty(t, rec.Result().Cookies())

	body := `{"email":"b@b.com","loginAttemptId":"` + pending.LoginAttemptID + `","2FACode":"` + inbox.get("b@b.com") + `"}`
	rec = do(t, h, http.MethodPost, "/verify-2fa", body)
	require.Equal(t, http.StatusOK, rec.Code)
	cookie := sessionCookie(t, rec)

	rec = do(t, h, http.MethodPost, "/verify-token", `{"token":"`+cookie.Value+`"}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodPost, "/verify-2fa", body)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestScenarioSupersededChallenge(t *testing.T) {
	h, inbox := newServer(t)

	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/signup", `{"email":"c@b.com","password":"Passw0rd!","requires2FA":true}`).Code)

	login := func() (string, string) {
		rec := do(t, h, http.MethodPost, "/login", `{"email":"c@b.com","password":"Passw0rd!"}`)
		require.Equal(t, http.StatusPartialContent, rec.Code)
		var pending twoFactorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pending))
		return pending.LoginAttemptID, inbox.get("c@b.com")
	}

	firstID, firstCode := login()
	secondID, secondCode := login()
	assert.NotEqual(t, firstID, secondID)

	rec := do(t, h, http.MethodPost, "/verify-2fa", `{"email":"c@b.com","loginAttemptId":"`+firstID+`","twoFACode":"`+firstCode+`"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, h, http.MethodPost, "/verify-2fa", `{"email":"c@b.com","loginAttemptId":"`+secondID+`","twoFACode":"`+secondCode+`"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestErrorMapping(t *testing.T) {
	h, _ := newServer(t)
	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/signup", `{"email":"d@b.com","password":"Passw0rd!","requires2FA":false}`).Code)

	tests := []struct {
		name   string
		path   string
		body   string
		status int
		msg    string
	}{
		{"signup duplicate", "/signup", `{"email":"d@b.com","password":"Passw0rd!","requires2FA":false}`, http.StatusConflict, msgUserExists},
		{"signup missing field", "/signup", `{"email":"e@b.com","password":"Passw0rd!"}`, http.StatusUnprocessableEntity, msgMalformed},
		{"signup not json", "/signup", `email=e@b.com`, http.StatusUnprocessableEntity, msgMalformed},
		{"signup bad email", "/signup", `{"email":"eb.com","password":"Passw0rd!","requires2FA":false}`, http.StatusBadRequest, msgInvalidEmail},
		{"signup weak password", "/signup", `{"email":"e@b.com","password":"password","requires2FA":false}`, http.StatusBadRequest, msgInvalidCredentials},
		{"login wrong password", "/login", `{"email":"d@b.com","password":"Passw0rd?"}`, http.StatusUnauthorized, msgWrongCredentials},
		{"login unknown user", "/login", `{"email":"nobody@b.com","password":"Passw0rd!"}`, http.StatusUnauthorized, msgWrongCredentials},
		{"login bad email", "/login", `{"email":"db.com","password":"Passw0rd!"}`, http.StatusBadRequest, msgInvalidEmail},
		{"verify-2fa no code", "/verify-2fa", `{"email":"d@b.com","loginAttemptId":"x"}`, http.StatusUnprocessableEntity, msgMalformed},
		{"verify-2fa bad id", "/verify-2fa", `{"email":"d@b.com","loginAttemptId":"x","2FACode":"123456"}`, http.StatusBadRequest, msgInvalidCredentials},
		{"verify-token missing", "/verify-token", `{}`, http.StatusUnprocessableEntity, msgMalformed},
		{"verify-token empty", "/verify-token", `{"token":""}`, http.StatusUnauthorized, msgInvalidToken},
		{"verify-token garbage", "/verify-token", `{"token":"a.b.c"}`, http.StatusUnauthorized, msgInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, tt.path, tt.body)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.msg, errorBody(t, rec))
		})
	}
}

func TestLogoutWithoutCookie(t *testing.T) {
	h, _ := newServer(t)

	rec := do(t, h, http.MethodPost, "/logout", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, msgMissingToken, errorBody(t, rec))

	rec = do(t, h, http.MethodPost, "/logout", "", &http.Cookie{Name: "jwt", Value: "garbage"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequestIDAndMetrics(t *testing.T) {
	h, _ := newServer(t)

	rec := do(t, h, http.MethodPost, "/signup", `{"email":"f@b.com","password":"Passw0rd!","requires2FA":false}`)
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	req.Header.Set(requestIDHeader, "0b6f2a34-9a48-4c9e-8a77-1f1d9a0b0c11")
	metrics := httptest.NewRecorder()
	h.ServeHTTP(metrics, req)

	assert.Equal(t, "0b6f2a34-9a48-4c9e-8a77-1f1d9a0b0c11", metrics.Header().Get(requestIDHeader))
	assert.Contains(t, metrics.Body.String(), "authservice_signup_success_total 1")
}

func TestMethodNotAllowed(t *testing.T) {
	h, _ := newServer(t)
	rec := do(t, h, http.MethodGet, "/login", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
