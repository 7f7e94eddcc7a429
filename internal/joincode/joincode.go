// Package joincode generates and validates room join codes. Codes live in a
// flat global namespace, so they come from crypto/rand.
package joincode

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	Length  = 6
	charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// New returns a random 6-character uppercase alphanumeric code.
func New() (string, error) {
	buf := make([]byte, Length)
	max := big.NewInt(int64(len(charset)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generate join code: %w", err)
		}
		buf[i] = charset[n.Int64()]
	}
	return string(buf), nil
}

// Valid reports whether s has the shape of a join code.
func Valid(s string) bool {
	if len(s) != Length {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < 'A' || c > 'Z') && (c < '0' || c > '9') {
			return false
		}
	}
	return true
}
