package common

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
)

// NormalizeEmail trims surrounding whitespace and lowercases the address so
// the same account is always presented to the session store in one form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// MakeRandHexString returns size random bytes encoded as lowercase hex
// (2*size characters).
func MakeRandHexString(size int) (string, error) {
	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// WipeByteArray zeroes the buffer in place. Safe on nil.
func WipeByteArray(buf []byte) {
	for i := range buf {
		buf[i] = 0
	}
}
