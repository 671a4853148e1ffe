package internal

import (
	"crypto/rand"
	"errors"
	"io"
)

// ErrDigitCount is returned for a length outside [1, 16].
var ErrDigitCount = errors.New("digit count out of range")

var randReader io.Reader = rand.Reader

// RandomDigits returns n decimal digits drawn uniformly from crypto/rand.
// Bytes >= 250 are rejected so every digit has the same probability.
func RandomDigits(n int) (string, error) {
	if n < 1 || n > 16 {
		return "", ErrDigitCount
	}

	out := make([]byte, 0, n)
	buf := make([]byte, n*2)
	for len(out) < n {
		if _, err := io.ReadFull(randReader, buf); err != nil {
			return "", err
		}
		for _, b := range buf {
			if b >= 250 {
				continue
			}
			out = append(out, '0'+b%10)
			if len(out) == n {
				break
			}
		}
	}
	return string(out), nil
}
