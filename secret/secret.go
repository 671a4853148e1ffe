// Package secret provides a string wrapper that hides its value from fmt,
// log/slog and encoding/json.
package secret

import (
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"log/slog"
)

const redacted = "[REDACTED]"

// String holds a sensitive value. Only Reveal returns the plaintext.
type String struct {
	value string
}

// New wraps v.
func New(v string) String {
	return String{value: v}
}

// Reveal returns the wrapped value.
func (s String) Reveal() string {
	return s.value
}

func (s String) Empty() bool {
	return s.value == ""
}

// Equal compares in constant time with respect to the content.
func (s String) Equal(other String) bool {
	return subtle.ConstantTimeCompare([]byte(s.value), []byte(other.value)) == 1
}

func (s String) String() string {
	return redacted
}

func (s String) GoString() string {
	return "secret.String(" + redacted + ")"
}

// Format covers verbs that bypass String, such as %x and %q.
func (s String) Format(f fmt.State, verb rune) {
	if verb == 'v' && f.Flag('#') {
		_, _ = f.Write([]byte(s.GoString()))
		return
	}
	_, _ = f.Write([]byte(redacted))
}

func (s String) LogValue() slog.Value {
	return slog.StringValue(redacted)
}

func (s String) MarshalJSON() ([]byte, error) {
	return json.Marshal(redacted)
}

// UnmarshalJSON accepts a JSON string, which makes String usable directly in
// request payloads.
func (s *String) UnmarshalJSON(data []byte) error {
	var v string
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	s.value = v
	return nil
}
