package flows

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/MrEthical07/authservice/challenge"
	"github.com/MrEthical07/authservice/credential"
	"github.com/MrEthical07/authservice/jwt"
	"github.com/MrEthical07/authservice/ledger"
	"github.com/MrEthical07/authservice/secret"
)

type plainHasher struct{}

func (plainHasher) Hash(_ context.Context, plaintext string) (string, error) {
	return "h:" + plaintext, nil
}

func (plainHasher) Verify(_ context.Context, plaintext, encoded string) (bool, error) {
	return encoded == "h:"+plaintext, nil
}

type sentMessage struct {
	to, subject, body string
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentMessage
	err  error
}

func (n *recordingNotifier) Send(_ context.Context, recipient secret.String, subject, body string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, sentMessage{to: recipient.Reveal(), subject: subject, body: body})
	return nil
}

func (n *recordingNotifier) last(t *testing.T) sentMessage {
	t.Helper()
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.sent) == 0 {
		t.Fatal("expected a notification")
	}
	return n.sent[len(n.sent)-1]
}

type failingLedger struct{ ledger.Ledger }

func (failingLedger) Add(context.Context, string, time.Duration) error {
	return ledger.ErrBackend
}

type recordingLedger struct {
	ledger.Ledger
	ttl time.Duration
}

func (l *recordingLedger) Add(ctx context.Context, token string, ttl time.Duration) error {
	l.ttl = ttl
	return l.Ledger.Add(ctx, token, ttl)
}

type harness struct {
	deps       Deps
	challenges *challenge.MemoryStore
	notifier   *recordingNotifier
	issuer     *jwt.Manager
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	issuer, err := jwt.NewManager(jwt.Config{
		TTL:           10 * time.Minute,
		SigningMethod: jwt.MethodHS256,
		PrivateKey:    []byte("secret"),
	})
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	h := &harness{
		challenges: challenge.NewMemoryStore(time.Minute),
		notifier:   &recordingNotifier{},
		issuer:     issuer,
	}
	h.deps = Deps{
		Credentials: credential.NewMemoryStore(plainHasher{}),
		Challenges:  h.challenges,
		Ledger:      ledger.NewMemoryLedger(),
		Issuer:      issuer,
		Notifier:    h.notifier,
	}
	return h
}

func (h *harness) signup(t *testing.T, email string, requires2FA bool) {
	t.Helper()
	res := RunSignup(context.Background(), SignupRequest{
		Email:       email,
		Password:    secret.New("password123!"),
		Requires2FA: requires2FA,
	}, h.deps)
	if !res.OK() {
		t.Fatalf("signup failed: %s %v", res.Reason, res.Err)
	}
}

func TestSignup(t *testing.T) {
	h := newHarness(t)
	h.signup(t, "test@example.com", false)

	cases := []struct {
		name   string
		req    SignupRequest
		want   Failure
		reason string
	}{
		{"duplicate", SignupRequest{Email: "test@example.com", Password: secret.New("password123!")}, FailureConflict, "user_exists"},
		{"bad email", SignupRequest{Email: "test.example.com", Password: secret.New("password123!")}, FailureInvalidInput, "invalid_email"},
		{"short password", SignupRequest{Email: "new@example.com", Password: secret.New("pw1!")}, FailureInvalidInput, "invalid_password"},
		{"no symbol", SignupRequest{Email: "new@example.com", Password: secret.New("password123")}, FailureInvalidInput, "invalid_password"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := RunSignup(context.Background(), tc.req, h.deps)
			if res.Failure != tc.want || res.Reason != tc.reason {
				t.Fatalf("expected %s/%s, got %s/%s (%v)", tc.want, tc.reason, res.Failure, res.Reason, res.Err)
			}
		})
	}
}

func TestLoginWithoutTwoFactorIssuesToken(t *testing.T) {
	h := newHarness(t)
	h.signup(t, "test@example.com", false)

	res := RunLogin(context.Background(), "test@example.com", secret.New("password123!"), h.deps)
	if !res.OK() {
		t.Fatalf("login failed: %s %v", res.Reason, res.Err)
	}
	if res.TwoFactorRequired || res.Token == "" {
		t.Fatalf("expected session token, got %+v", res)
	}

	claims, err := h.issuer.Verify(res.Token)
	if err != nil || claims.Subject != "test@example.com" {
		t.Fatalf("issued token does not verify: claims=%+v err=%v", claims, err)
	}
}

func TestLoginFailures(t *testing.T) {
	h := newHarness(t)
	h.signup(t, "test@example.com", false)

	cases := []struct {
		name, email, password string
		want                  Failure
		reason                string
	}{
		{"unknown user", "nobody@example.com", "password123!", FailureUnauthorized, "user_not_found"},
		{"wrong password", "test@example.com", "password124!", FailureUnauthorized, "password_mismatch"},
		{"bad email", "nobody", "password123!", FailureInvalidInput, "invalid_email"},
		{"short password", "test@example.com", "pw", FailureInvalidInput, "invalid_password"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := RunLogin(context.Background(), tc.email, secret.New(tc.password), h.deps)
			if res.Failure != tc.want || res.Reason != tc.reason {
				t.Fatalf("expected %s/%s, got %s/%s", tc.want, tc.reason, res.Failure, res.Reason)
			}
			if res.Token != "" {
				t.Fatal("failed login must not carry a token")
			}
		})
	}
}

func TestLoginTwoFactorThenVerify(t *testing.T) {
	h := newHarness(t)
	h.signup(t, "test@example.com", true)
	ctx := context.Background()

	res := RunLogin(ctx, "test@example.com", secret.New("password123!"), h.deps)
	if !res.OK() || !res.TwoFactorRequired || res.Token != "" {
		t.Fatalf("expected pending challenge, got %+v", res)
	}

	msg := h.notifier.last(t)
	if msg.to != "test@example.com" || msg.subject != defaultTwoFactorSubject {
		t.Fatalf("unexpected notification: %+v", msg)
	}

	wrong := "000000"
	if msg.body == wrong {
		wrong = "111111"
	}
	bad := RunVerify2FA(ctx, Verify2FARequest{
		Email:          "test@example.com",
		LoginAttemptID: res.AttemptID.String(),
		Code:           wrong,
	}, h.deps)
	if bad.Failure != FailureUnauthorized || bad.Reason != "challenge_mismatch" {
		t.Fatalf("expected mismatch, got %s/%s", bad.Failure, bad.Reason)
	}

	req := Verify2FARequest{
		Email:          "test@example.com",
		LoginAttemptID: res.AttemptID.String(),
		Code:           msg.body,
	}
	ok := RunVerify2FA(ctx, req, h.deps)
	if !ok.OK() || ok.Token == "" {
		t.Fatalf("expected session after correct code, got %s %v", ok.Reason, ok.Err)
	}

	replay := RunVerify2FA(ctx, req, h.deps)
	if replay.Failure != FailureUnauthorized || replay.Reason != "challenge_not_found" {
		t.Fatalf("expected replay to fail, got %s/%s", replay.Failure, replay.Reason)
	}
}

func TestLoginNotifierFailureLeavesNoChallenge(t *testing.T) {
	h := newHarness(t)
	h.signup(t, "test@example.com", true)
	h.notifier.err = errors.New("smtp down")

	res := RunLogin(context.Background(), "test@example.com", secret.New("password123!"), h.deps)
	if res.Failure != FailureUnexpected || res.Reason != "notify_failed" {
		t.Fatalf("expected notify failure, got %s/%s", res.Failure, res.Reason)
	}

	_, err := h.challenges.Get(context.Background(), credential.MustParseIdentity("test@example.com"))
	if !errors.Is(err, challenge.ErrNotFound) {
		t.Fatalf("expected no pending challenge, got %v", err)
	}
}

func TestVerify2FAInvalidInput(t *testing.T) {
	h := newHarness(t)
	valid := challenge.NewLoginAttemptID().String()

	cases := []struct {
		name   string
		req    Verify2FARequest
		reason string
	}{
		{"bad email", Verify2FARequest{Email: "x", LoginAttemptID: valid, Code: "123456"}, "invalid_email"},
		{"bad attempt", Verify2FARequest{Email: "a@b", LoginAttemptID: "nope", Code: "123456"}, "invalid_attempt_id"},
		{"bad code", Verify2FARequest{Email: "a@b", LoginAttemptID: valid, Code: "12345"}, "invalid_code"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := RunVerify2FA(context.Background(), tc.req, h.deps)
			if res.Failure != FailureInvalidInput || res.Reason != tc.reason {
				t.Fatalf("expected invalid_input/%s, got %s/%s", tc.reason, res.Failure, res.Reason)
			}
		})
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	h := newHarness(t)
	h.signup(t, "test@example.com", false)
	ctx := context.Background()

	login := RunLogin(ctx, "test@example.com", secret.New("password123!"), h.deps)
	if !login.OK() {
		t.Fatalf("login failed: %v", login.Err)
	}

	if res := RunVerifyToken(ctx, login.Token, h.deps); !res.OK() {
		t.Fatalf("fresh token should verify: %s", res.Reason)
	}
	if res := RunLogout(ctx, login.Token, h.deps); !res.OK() {
		t.Fatalf("logout failed: %s %v", res.Reason, res.Err)
	}

	res := RunVerifyToken(ctx, login.Token, h.deps)
	if res.Failure != FailureUnauthorized || res.Reason != "token_revoked" {
		t.Fatalf("expected revoked token, got %s/%s", res.Failure, res.Reason)
	}
	if again := RunLogout(ctx, login.Token, h.deps); again.Reason != "token_revoked" {
		t.Fatalf("expected second logout to be rejected, got %s", again.Reason)
	}
}

func TestLogoutLedgerFailureIsUnexpected(t *testing.T) {
	h := newHarness(t)
	h.signup(t, "test@example.com", false)
	ctx := context.Background()

	login := RunLogin(ctx, "test@example.com", secret.New("password123!"), h.deps)
	h.deps.Ledger = failingLedger{Ledger: h.deps.Ledger}

	res := RunLogout(ctx, login.Token, h.deps)
	if res.Failure != FailureUnexpected || !errors.Is(res.Err, ledger.ErrBackend) {
		t.Fatalf("expected unexpected ledger failure, got %s %v", res.Failure, res.Err)
	}
}

func TestVerifyTokenFailures(t *testing.T) {
	h := newHarness(t)

	if res := RunVerifyToken(context.Background(), "", h.deps); res.Failure != FailureInvalidInput {
		t.Fatalf("expected missing token to be invalid input, got %s", res.Failure)
	}
	if res := RunVerifyToken(context.Background(), "garbage", h.deps); res.Reason != "token_malformed" {
		t.Fatalf("expected token_malformed, got %s", res.Reason)
	}
}

func TestServiceInitialized(t *testing.T) {
	if New(Deps{}).Initialized() {
		t.Fatal("empty deps must not report initialized")
	}
	if !New(newHarness(t).deps).Initialized() {
		t.Fatal("wired deps must report initialized")
	}
}

func TestLogoutKeepsRevocationThroughLeeway(t *testing.T) {
	h := newHarness(t)
	h.signup(t, "test@example.com", false)
	ctx := context.Background()

	login := RunLogin(ctx, "test@example.com", secret.New("password123!"), h.deps)
	if !login.OK() {
		t.Fatalf("login failed: %v", login.Err)
	}

	rec := &recordingLedger{Ledger: h.deps.Ledger}
	h.deps.Ledger = rec
	h.deps.Leeway = time.Minute
	now := login.ExpiresAt.Add(-time.Second)
	h.deps.Now = func() time.Time { return now }

	res := RunLogout(ctx, login.Token, h.deps)
	if !res.OK() {
		t.Fatalf("logout failed: %s %v", res.Reason, res.Err)
	}
	if want := res.Claims.ExpiresAt.Add(time.Minute).Sub(now); rec.ttl != want || rec.ttl <= time.Minute {
		t.Fatalf("expected revocation ttl %v, got %v", want, rec.ttl)
	}
}
