package security

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

var referralCharset = []rune("ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789")

// NewReferralCode returns a random uppercase alphanumeric code of the given length.
func NewReferralCode(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("referral code length must be positive")
	}
	max := big.NewInt(int64(len(referralCharset)))
	var sb strings.Builder
	sb.Grow(length)
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generate referral code: %w", err)
		}
		sb.WriteRune(referralCharset[n.Int64()])
	}
	return sb.String(), nil
}

// NormalizeReferralCode trims and uppercases user-supplied codes.
func NormalizeReferralCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// IsReferralCode reports whether code has the expected shape.
func IsReferralCode(code string, length int) bool {
	if len(code) != length {
		return false
	}
	for _, r := range code {
		if !strings.ContainsRune(string(referralCharset), r) {
			return false
		}
	}
	return true
}
