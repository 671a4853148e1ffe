package authservice

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/MrEthical07/authservice/challenge"
	"github.com/MrEthical07/authservice/jwt"
	"github.com/MrEthical07/authservice/password"
)

// Config is read once by Builder.Build. Start from DefaultConfig and
// override what you need.
type Config struct {
	JWT       JWTConfig
	Password  PasswordConfig
	TwoFactor TwoFactorConfig
	Cookie    CookieConfig
	Redis     RedisConfig
	Metrics   MetricsConfig
}

/*
====================================
JWT CONFIG
====================================
*/

// JWTConfig configures session tokens. For "hs256" PrivateKey is the shared
// secret; for "ed25519" it is the private key and PublicKey is optional.
type JWTConfig struct {
	TTL           time.Duration
	SigningMethod string
	PrivateKey    []byte
	PublicKey     []byte
	Issuer        string
	Leeway        time.Duration
}

/*
====================================
PASSWORD CONFIG
====================================
*/

// PasswordConfig holds argon2id costs for new hashes and the size of the
// hashing worker pool. Workers <= 0 means one per CPU.
type PasswordConfig struct {
	Memory      uint32
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
	Workers     int
}

/*
====================================
TWO FACTOR CONFIG
====================================
*/

type TwoFactorConfig struct {
	// ChallengeTTL bounds how long a login attempt stays redeemable.
	ChallengeTTL time.Duration
	// Subject of the notification carrying the code.
	Subject string
}

/*
====================================
COOKIE CONFIG
====================================
*/

// CookieConfig describes the session cookie written by the HTTP layer.
type CookieConfig struct {
	Name     string
	Path     string
	Domain   string
	Secure   bool
	SameSite http.SameSite
}

/*
====================================
REDIS CONFIG
====================================
*/

// RedisConfig holds key prefixes used when the engine is built WithRedis.
type RedisConfig struct {
	ChallengePrefix string
	LedgerPrefix    string
}

/*
====================================
METRICS CONFIG
====================================
*/

type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// DefaultConfig returns HS256 sessions with a 10 minute lifetime, the
// default argon2id costs and a 10 minute challenge window. JWT.PrivateKey
// is left empty and must be set.
func DefaultConfig() Config {
	pw := password.DefaultConfig()
	return Config{
		JWT: JWTConfig{
			TTL:           10 * time.Minute,
			SigningMethod: string(jwt.MethodHS256),
		},
		Password: PasswordConfig{
			Memory:      pw.Memory,
			Time:        pw.Time,
			Parallelism: pw.Parallelism,
			SaltLength:  pw.SaltLength,
			KeyLength:   pw.KeyLength,
		},
		TwoFactor: TwoFactorConfig{
			ChallengeTTL: challenge.DefaultTTL,
			Subject:      "Here is your 2FA Token",
		},
		Cookie: CookieConfig{
			Name:     "jwt",
			Path:     "/",
			Secure:   true,
			SameSite: http.SameSiteLaxMode,
		},
		Redis: RedisConfig{
			ChallengePrefix: "two_fa_code",
			LedgerPrefix:    "banned_token",
		},
		Metrics: MetricsConfig{
			Enabled:                 true,
			EnableLatencyHistograms: true,
		},
	}
}

// Validate reports the first configuration problem found.
func (c *Config) Validate() error {
	if c.JWT.TTL <= 0 {
		return errors.New("JWT TTL must be > 0")
	}
	switch jwt.SigningMethod(strings.ToLower(c.JWT.SigningMethod)) {
	case jwt.MethodHS256, jwt.MethodEd25519:
	default:
		return errors.New("JWT SigningMethod must be hs256 or ed25519")
	}
	if len(c.JWT.PrivateKey) == 0 {
		return errors.New("JWT PrivateKey must be set")
	}
	if c.JWT.Leeway < 0 || c.JWT.Leeway > 2*time.Minute {
		return errors.New("JWT Leeway must be between 0 and 2m")
	}

	if c.TwoFactor.ChallengeTTL <= 0 {
		return errors.New("TwoFactor ChallengeTTL must be > 0")
	}
	if strings.TrimSpace(c.TwoFactor.Subject) == "" {
		return errors.New("TwoFactor Subject must be set")
	}

	if c.Cookie.Name == "" {
		return errors.New("Cookie Name must be set")
	}
	if strings.ContainsAny(c.Cookie.Name, " \t\r\n;,=") {
		return errors.New("Cookie Name contains invalid characters")
	}

	if c.Redis.ChallengePrefix == "" || c.Redis.LedgerPrefix == "" {
		return errors.New("Redis key prefixes must be set")
	}
	if c.Redis.ChallengePrefix == c.Redis.LedgerPrefix {
		return errors.New("Redis key prefixes must differ")
	}

	if c.Metrics.EnableLatencyHistograms && !c.Metrics.Enabled {
		return errors.New("latency histograms require metrics to be enabled")
	}

	return nil
}

func (c Config) passwordConfig() password.Config {
	return password.Config{
		Memory:      c.Password.Memory,
		Time:        c.Password.Time,
		Parallelism: c.Password.Parallelism,
		SaltLength:  c.Password.SaltLength,
		KeyLength:   c.Password.KeyLength,
	}
}

func (c Config) jwtConfig() jwt.Config {
	return jwt.Config{
		TTL:           c.JWT.TTL,
		SigningMethod: jwt.SigningMethod(strings.ToLower(c.JWT.SigningMethod)),
		PrivateKey:    c.JWT.PrivateKey,
		PublicKey:     c.JWT.PublicKey,
		Issuer:        c.JWT.Issuer,
		Leeway:        c.JWT.Leeway,
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.JWT.PrivateKey = cloneBytes(cfg.JWT.PrivateKey)
	out.JWT.PublicKey = cloneBytes(cfg.JWT.PublicKey)
	return out
}

func cloneBytes(in []byte) []byte {
	if in == nil {
		return nil
	}
	out := make([]byte, len(in))
	copy(out, in)
	return out
}
