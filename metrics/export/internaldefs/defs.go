package internaldefs

import (
	"math"

	"github.com/MrEthical07/authservice"
)

type Kind uint8

const (
	Counter Kind = iota
	Histogram
)

// Def describes how one engine metric is published.
type Def struct {
	ID   authservice.MetricID
	Kind Kind
	Name string
	Help string
}

// Defs lists every exported metric in output order.
var Defs = []Def{
	counter(authservice.MetricSignupSuccess, "signup_success", "Users registered."),
	counter(authservice.MetricSignupConflict, "signup_conflict", "Signups rejected because the email was taken."),
	counter(authservice.MetricSignupRejected, "signup_rejected", "Signups rejected for a malformed email or password."),
	counter(authservice.MetricLoginSuccess, "login_success", "Session tokens issued, with or without a second factor."),
	counter(authservice.MetricLoginFailure, "login_failure", "Logins rejected before a token or challenge was issued."),
	counter(authservice.MetricTwoFactorRequired, "two_factor_required", "Login challenges issued."),
	counter(authservice.MetricTwoFactorSuccess, "two_factor_success", "Login challenges redeemed."),
	counter(authservice.MetricTwoFactorFailure, "two_factor_failure", "Login challenge redemptions rejected."),
	counter(authservice.MetricLogoutSuccess, "logout_success", "Session tokens revoked."),
	counter(authservice.MetricLogoutFailure, "logout_failure", "Logouts rejected."),
	counter(authservice.MetricTokenValid, "token_valid", "Session tokens accepted."),
	counter(authservice.MetricTokenInvalid, "token_invalid", "Session tokens rejected as malformed, expired or badly signed."),
	counter(authservice.MetricTokenRevoked, "token_revoked", "Session tokens rejected because they were revoked."),
	counter(authservice.MetricUnexpectedError, "unexpected_error", "Operations failed by a backend fault."),
	{
		ID:   authservice.MetricVerifyTokenLatency,
		Kind: Histogram,
		Name: Namespace + "_verify_token_latency_seconds",
		Help: "Session token verification latency.",
	},
}

// Namespace prefixes every metric name.
const Namespace = "authservice"

func counter(id authservice.MetricID, name, help string) Def {
	return Def{ID: id, Kind: Counter, Name: Namespace + "_" + name + "_total", Help: help}
}

// Bucket is one upper bound of the engine latency histogram.
type Bucket struct {
	LE      string
	Seconds float64
}

// Buckets mirror the engine's fixed latency buckets.
var Buckets = []Bucket{
	{"0.005", 0.005},
	{"0.01", 0.01},
	{"0.025", 0.025},
	{"0.05", 0.05},
	{"0.1", 0.1},
	{"0.25", 0.25},
	{"0.5", 0.5},
	{"+Inf", math.Inf(1)},
}

// Cumulative turns per-bucket counts into running totals, one per entry of
// Buckets. Missing trailing counts are treated as zero and extra ones are
// dropped.
func Cumulative(raw []uint64) []uint64 {
	out := make([]uint64, len(Buckets))
	var running uint64
	for i := range out {
		if i < len(raw) {
			running += raw[i]
		}
		out[i] = running
	}
	return out
}
