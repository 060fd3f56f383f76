package otp

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	code, expiresAt, err := Generate()
	require.NoError(t, err)

	assert.Len(t, code, CodeLength)
	assert.True(t, IsValidFormat(code))

	// Codes never carry a leading zero
	assert.GreaterOrEqual(t, code[0], byte('1'))

	// Expiry is ten minutes out
	remaining := time.Until(expiresAt)
	assert.InDelta(t, TTL.Seconds(), remaining.Seconds(), 5)
}

func TestGenerateRange(t *testing.T) {
	for i := 0; i < 200; i++ {
		code, _, err := Generate()
		require.NoError(t, err)
		assert.True(t, code >= "100000" && code <= "999999", "code out of range: %s", code)
	}
}

func TestIsValidFormat(t *testing.T) {
	tests := []struct {
		name  string
		code  string
		valid bool
	}{
		{"valid code", "123456", true},
		{"valid with leading zero", "012345", true},
		{"too short", "12345", false},
		{"too long", "1234567", false},
		{"empty", "", false},
		{"letters", "12a456", false},
		{"unicode digits", "１２３４５６", false},
		{"whitespace", "123 56", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, IsValidFormat(tt.code))
		})
	}
}
