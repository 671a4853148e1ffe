package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(values map[string]string) func(string) string {
	return func(key string) string { return values[key] }
}

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "0.0.0.0:3000", c.Addr)
	assert.Equal(t, "info", c.LogLevel)
	assert.Equal(t, 10*time.Minute, c.TokenTTL)
	assert.Equal(t, 10*time.Minute, c.ChallengeTTL)
	assert.True(t, c.CookieSecure)
	assert.Empty(t, c.JWTSecret)
	assert.Nil(t, c.SeedUser)
}

func TestLoadRequiresSecret(t *testing.T) {
	_, err := Load(nil, env(nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLoadFromEnv(t *testing.T) {
	c, err := Load(nil, env(map[string]string{
		"JWT_SECRET":     "s3cret",
		"DATABASE_URL":   "postgres://localhost/auth",
		"REDIS_ADDR":     "localhost:6379",
		"REDIS_PASSWORD": "pw",
	}))
	require.NoError(t, err)

	assert.Equal(t, "s3cret", c.JWTSecret)
	assert.Equal(t, "postgres://localhost/auth", c.DatabaseURL)
	assert.Equal(t, "localhost:6379", c.RedisAddr)
	assert.Equal(t, "pw", c.RedisPassword)
}

func TestLoadLayering(t *testing.T) {
	path := filepath.Join(t.TempDir(), "auth.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
addr = "127.0.0.1:4000"
log_level = "debug"
jwt_secret = "from-file"
token_ttl = "30m"
redis_addr = "file:6379"

[seed_user]
email = "dev@example.com"
password = "Passw0rd!"
requires_2fa = true
`), 0o600))

	c, err := Load([]string{"-c", path, "-r", "flag:6379"}, env(map[string]string{
		"JWT_SECRET": "from-env",
		"REDIS_ADDR": "env:6379",
	}))
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:4000", c.Addr)
	assert.Equal(t, 30*time.Minute, c.TokenTTL)
	assert.Equal(t, "from-env", c.JWTSecret)
	assert.Equal(t, "flag:6379", c.RedisAddr)
	require.NotNil(t, c.SeedUser)
	assert.Equal(t, "dev@example.com", c.SeedUser.Email)
	assert.True(t, c.SeedUser.Requires2FA)

	level, err := c.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestLoadConfigPathFromEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "auth.toml")
	require.NoError(t, os.WriteFile(path, []byte(`jwt_secret = "from-file"`), 0o600))

	c, err := Load(nil, env(map[string]string{"AUTH_CONFIG": path}))
	require.NoError(t, err)
	assert.Equal(t, "from-file", c.JWTSecret)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load([]string{"-c", filepath.Join(t.TempDir(), "missing.toml")}, env(nil))
	assert.Error(t, err)

	_, err = Load([]string{"-unknown"}, env(map[string]string{"JWT_SECRET": "x"}))
	assert.Error(t, err)

	_, err = Load([]string{"-l", "loud"}, env(map[string]string{"JWT_SECRET": "x"}))
	assert.Error(t, err)
}

func TestEngineConfig(t *testing.T) {
	c, err := Load(nil, env(map[string]string{"JWT_SECRET": "s3cret"}))
	require.NoError(t, err)

	ec := c.Engine()
	require.NoError(t, ec.Validate())
	assert.Equal(t, []byte("s3cret"), ec.JWT.PrivateKey)
	assert.Equal(t, "jwt", ec.Cookie.Name)
	assert.Equal(t, 10*time.Minute, ec.TwoFactor.ChallengeTTL)
}
