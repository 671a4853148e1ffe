package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Lower bounds for new hashes and for parameters found in stored ones.
const (
	minMemoryKB   = 8 * 1024
	minSaltLength = 16
	minKeyLength  = 16
)

// ErrMalformedHash is returned by Verify when the stored credential is not a
// well-formed argon2id PHC string.
var ErrMalformedHash = errors.New("malformed password hash")

// Config holds the argon2id cost parameters used for newly derived hashes.
// Stored hashes carry their own parameters, so changing Config never breaks
// verification of existing credentials.
type Config struct {
	Memory      uint32
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// DefaultConfig returns m=15000 KiB, t=2, p=1 with a 16 byte salt and a
// 32 byte key.
func DefaultConfig() Config {
	return Config{Memory: 15000, Time: 2, Parallelism: 1, SaltLength: 16, KeyLength: 32}
}

func (c Config) validate() error {
	var errs []error
	if c.Memory < minMemoryKB {
		errs = append(errs, fmt.Errorf("password memory must be >= %d KiB", minMemoryKB))
	}
	if c.Time == 0 {
		errs = append(errs, errors.New("password time must be >= 1"))
	}
	if c.Parallelism == 0 {
		errs = append(errs, errors.New("password parallelism must be >= 1"))
	}
	if c.SaltLength < minSaltLength {
		errs = append(errs, fmt.Errorf("password salt length must be >= %d", minSaltLength))
	}
	if c.KeyLength < minKeyLength {
		errs = append(errs, fmt.Errorf("password key length must be >= %d", minKeyLength))
	}
	return errors.Join(errs...)
}

// Argon2 derives and verifies argon2id credentials. It is immutable after
// construction and safe for concurrent use.
type Argon2 struct {
	config Config
}

func NewArgon2(cfg Config) (*Argon2, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Argon2{config: cfg}, nil
}

// Hash derives a PHC encoded credential from plaintext with a fresh random
// salt.
func (a *Argon2) Hash(plaintext string) (string, error) {
	h := phc{
		memory:      a.config.Memory,
		time:        a.config.Time,
		parallelism: a.config.Parallelism,
		salt:        make([]byte, a.config.SaltLength),
	}
	if _, err := rand.Read(h.salt); err != nil {
		return "", err
	}
	h.key = h.derive(plaintext, a.config.KeyLength)
	return h.String(), nil
}

// Verify reports whether plaintext matches encoded, in constant time.
func (a *Argon2) Verify(plaintext, encoded string) (bool, error) {
	h, err := parsePHC(encoded)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrMalformedHash, err)
	}
	got := h.derive(plaintext, uint32(len(h.key)))
	return subtle.ConstantTimeCompare(got, h.key) == 1, nil
}

// phc is a decoded $argon2id$v=19$m=..,t=..,p=..$salt$key string.
type phc struct {
	memory      uint32
	time        uint32
	parallelism uint8
	salt        []byte
	key         []byte
}

func (h phc) derive(plaintext string, keyLen uint32) []byte {
	return argon2.IDKey([]byte(plaintext), h.salt, h.time, h.memory, h.parallelism, keyLen)
}

func (h phc) params() string {
	return fmt.Sprintf("m=%d,t=%d,p=%d", h.memory, h.time, h.parallelism)
}

func (h phc) String() string {
	return fmt.Sprintf("$argon2id$v=%d$%s$%s$%s",
		argon2.Version,
		h.params(),
		base64.StdEncoding.EncodeToString(h.salt),
		base64.StdEncoding.EncodeToString(h.key),
	)
}

func parsePHC(encoded string) (phc, error) {
	var h phc

	fields := strings.Split(encoded, "$")
	if len(fields) != 6 || fields[0] != "" {
		return h, errors.New("expected 5 $-separated fields")
	}
	if fields[1] != "argon2id" {
		return h, fmt.Errorf("unsupported algorithm %q", fields[1])
	}
	if fields[2] != fmt.Sprintf("v=%d", argon2.Version) {
		return h, fmt.Errorf("unsupported version %q", fields[2])
	}

	// Re-rendering the parsed values rejects reordered, missing or extra
	// parameters.
	if _, err := fmt.Sscanf(fields[3], "m=%d,t=%d,p=%d", &h.memory, &h.time, &h.parallelism); err != nil || h.params() != fields[3] {
		return h, fmt.Errorf("invalid parameters %q", fields[3])
	}
	if h.memory < minMemoryKB || h.time == 0 || h.parallelism == 0 {
		return h, errors.New("parameters below minimum cost")
	}

	var err error
	if h.salt, err = base64.StdEncoding.DecodeString(fields[4]); err != nil || len(h.salt) < minSaltLength {
		return h, errors.New("invalid salt")
	}
	if h.key, err = base64.StdEncoding.DecodeString(fields[5]); err != nil || len(h.key) < minKeyLength {
		return h, errors.New("invalid key")
	}
	return h, nil
}
