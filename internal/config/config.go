// Package config loads process settings for the auth service binary.
//
// Values are layered: built-in defaults, then an optional TOML file (-c or
// AUTH_CONFIG), then environment variables, then command-line flags.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/MrEthical07/authservice"
)

// Config holds runtime settings for the auth service.
type Config struct {
	Addr            string        `toml:"addr"`
	LogLevel        string        `toml:"log_level"`
	ShutdownTimeout time.Duration `toml:"shutdown_timeout"`

	JWTSecret    string        `toml:"jwt_secret"`
	TokenTTL     time.Duration `toml:"token_ttl"`
	ChallengeTTL time.Duration `toml:"challenge_ttl"`
	CookieSecure bool          `toml:"cookie_secure"`

	PasswordWorkers int `toml:"password_workers"`

	// DatabaseURL selects Postgres for users; empty keeps them in memory.
	DatabaseURL string `toml:"database_url"`
	// RedisAddr selects Redis for challenges and revocations; empty keeps
	// them in memory.
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`

	Metrics bool `toml:"metrics"`

	// SeedUser is registered at startup when set. Meant for development.
	SeedUser *SeedUser `toml:"seed_user"`
}

type SeedUser struct {
	Email       string `toml:"email"`
	Password    string `toml:"password"`
	Requires2FA bool   `toml:"requires_2fa"`
}

// LoadDefaults populates development defaults. The JWT secret is left empty
// and must be provided.
func (c *Config) LoadDefaults() {
	c.Addr = "0.0.0.0:3000"
	c.LogLevel = "info"
	c.ShutdownTimeout = 10 * time.Second
	c.TokenTTL = 10 * time.Minute
	c.ChallengeTTL = 10 * time.Minute
	c.CookieSecure = true
	c.Metrics = true
}

// Load builds a Config from args (without the program name) and getenv.
func Load(args []string, getenv func(string) string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	fs := flag.NewFlagSet("authservice", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	path := fs.String("c", "", "path to a TOML config file")
	addr := fs.String("a", "", "listen address")
	dsn := fs.String("d", "", "Postgres DSN")
	redisAddr := fs.String("r", "", "Redis address")
	level := fs.String("l", "", "log level: debug, info, warn, error")
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	if *path == "" {
		*path = getenv("AUTH_CONFIG")
	}
	if *path != "" {
		if _, err := toml.DecodeFile(*path, cfg); err != nil {
			return nil, fmt.Errorf("read config %s: %w", *path, err)
		}
	}

	cfg.applyEnv(getenv)

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "a":
			cfg.Addr = *addr
		case "d":
			cfg.DatabaseURL = *dsn
		case "r":
			cfg.RedisAddr = *redisAddr
		case "l":
			cfg.LogLevel = *level
		}
	})

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	if v := getenv("JWT_SECRET"); v != "" {
		c.JWTSecret = v
	}
	if v := getenv("DATABASE_URL"); v != "" {
		c.DatabaseURL = v
	}
	if v := getenv("REDIS_ADDR"); v != "" {
		c.RedisAddr = v
	}
	if v := getenv("REDIS_PASSWORD"); v != "" {
		c.RedisPassword = v
	}
}

func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.JWTSecret) == "" {
		errs = append(errs, errors.New("jwt secret is required (JWT_SECRET)"))
	}
	if c.Addr == "" {
		errs = append(errs, errors.New("listen address is required"))
	}
	if _, err := c.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, errors.New("token_ttl must be > 0"))
	}
	if c.ChallengeTTL <= 0 {
		errs = append(errs, errors.New("challenge_ttl must be > 0"))
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("shutdown_timeout must be > 0"))
	}
	if c.SeedUser != nil && (c.SeedUser.Email == "" || c.SeedUser.Password == "") {
		errs = append(errs, errors.New("seed_user needs email and password"))
	}
	return errors.Join(errs...)
}

func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("invalid log level %q", c.LogLevel)
	}
	return level, nil
}

// Engine derives the engine configuration.
func (c *Config) Engine() authservice.Config {
	cfg := authservice.DefaultConfig()
	cfg.JWT.PrivateKey = []byte(c.JWTSecret)
	cfg.JWT.TTL = c.TokenTTL
	cfg.TwoFactor.ChallengeTTL = c.ChallengeTTL
	cfg.Cookie.Secure = c.CookieSecure
	cfg.Password.Workers = c.PasswordWorkers
	cfg.Metrics.Enabled = c.Metrics
	cfg.Metrics.EnableLatencyHistograms = c.Metrics
	return cfg
}
