package credential

import (
	"errors"
	"log/slog"
	"strings"
)

// ErrInvalidIdentity is returned by ParseIdentity.
var ErrInvalidIdentity = errors.New("invalid identity")

// Identity is a validated, email-shaped user key.
type Identity struct {
	email string
}

// ParseIdentity accepts any string containing "@".
func ParseIdentity(s string) (Identity, error) {
	if !strings.Contains(s, "@") {
		return Identity{}, ErrInvalidIdentity
	}
	return Identity{email: s}, nil
}

// MustParseIdentity panics on invalid input. Intended for tests and seeds.
func MustParseIdentity(s string) Identity {
	id, err := ParseIdentity(s)
	if err != nil {
		panic(err)
	}
	return id
}

func (i Identity) String() string {
	return i.email
}

func (i Identity) IsZero() bool {
	return i.email == ""
}

// LogValue masks the local part so log lines never carry a full address.
func (i Identity) LogValue() slog.Value {
	local, domain, ok := strings.Cut(i.email, "@")
	if !ok {
		return slog.StringValue("")
	}
	if len(local) > 1 {
		local = local[:1] + "***"
	}
	return slog.StringValue(local + "@" + domain)
}
