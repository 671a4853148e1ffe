package password

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

const (
	// MinLength and MaxLength bound the plaintext size in bytes.
	MinLength = 8
	MaxLength = 100

	// Symbols lists the characters that satisfy the symbol requirement.
	Symbols = "!§@#$%^&*()_+-=[]{}|;:,.<>?"
)

// ErrPolicy matches every *PolicyError via errors.Is.
var ErrPolicy = errors.New("password does not satisfy policy")

// PolicyReason identifies which acceptance rule a plaintext failed.
type PolicyReason int

const (
	ReasonTooShort PolicyReason = iota + 1
	ReasonTooLong
	ReasonNoDigit
	ReasonNoSymbol
)

func (r PolicyReason) String() string {
	switch r {
	case ReasonTooShort:
		return "too_short"
	case ReasonTooLong:
		return "too_long"
	case ReasonNoDigit:
		return "no_digit"
	case ReasonNoSymbol:
		return "no_symbol"
	default:
		return "unknown"
	}
}

// PolicyError reports the first rule a plaintext failed.
type PolicyError struct {
	Reason PolicyReason
}

func (e *PolicyError) Error() string {
	switch e.Reason {
	case ReasonTooShort:
		return fmt.Sprintf("password must be at least %d bytes", MinLength)
	case ReasonTooLong:
		return fmt.Sprintf("password must be at most %d bytes", MaxLength)
	case ReasonNoDigit:
		return "password must contain a digit"
	case ReasonNoSymbol:
		return "password must contain a symbol"
	default:
		return ErrPolicy.Error()
	}
}

func (e *PolicyError) Is(target error) bool {
	return target == ErrPolicy
}

// CheckPolicy returns nil when plaintext is acceptable as a credential, or a
// *PolicyError naming the first failed rule. Rules are checked in the order
// length, digit, symbol.
func CheckPolicy(plaintext string) error {
	switch {
	case len(plaintext) < MinLength:
		return &PolicyError{Reason: ReasonTooShort}
	case len(plaintext) > MaxLength:
		return &PolicyError{Reason: ReasonTooLong}
	}

	if !strings.ContainsFunc(plaintext, unicode.IsNumber) {
		return &PolicyError{Reason: ReasonNoDigit}
	}
	if !strings.ContainsAny(plaintext, Symbols) {
		return &PolicyError{Reason: ReasonNoSymbol}
	}
	return nil
}
