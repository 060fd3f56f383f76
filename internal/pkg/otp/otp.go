package otp

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

const (
	// CodeLength is the number of digits in a generated code
	CodeLength = 6

	// TTL is how long a generated code stays valid
	TTL = 10 * time.Minute
)

// Generate creates a cryptographically secure 6-digit code and its expiry
// timestamp (10 minutes from now). Codes are drawn uniformly from
// 100000-999999; uniqueness across calls is not guaranteed and not needed.
func Generate() (string, time.Time, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to generate OTP: %w", err)
	}
	code := fmt.Sprintf("%06d", n.Int64()+100000)
	return code, time.Now().Add(TTL), nil
}

// IsValidFormat checks that a submitted code is exactly 6 ASCII digits
func IsValidFormat(code string) bool {
	if len(code) != CodeLength {
		return false
	}
	for i := 0; i < len(code); i++ {
		if code[i] < '0' || code[i] > '9' {
			return false
		}
	}
	return true
}
