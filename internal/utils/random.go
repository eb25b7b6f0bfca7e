package utils

import (
	"crypto/rand"
	"math/big"

	"github.com/google/uuid"
)

func generateRandom(length int, charset string) string {
	result := make([]byte, length)
	charsetLength := big.NewInt(int64(len(charset)))

	for i := range result {
		num, _ := rand.Int(rand.Reader, charsetLength)
		result[i] = charset[num.Int64()]
	}

	return string(result)
}

// GenerateReferralCode returns an upper-case alphanumeric short code. A
// non-positive length falls back to ReferralCodeLength.
func GenerateReferralCode(length int) string {
	if length <= 0 {
		length = ReferralCodeLength
	}
	return generateRandom(length, ReferralCodeAlphabet)
}

func GenerateRequestID() string {
	return uuid.NewString()
}

func GenerateExportKey(prefix, extension string) string {
	return prefix + "/" + uuid.NewString() + "." + extension
}
