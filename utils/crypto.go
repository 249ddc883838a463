package utils

import (
	"crypto/rand"
	"math/big"
	"strings"
)

func GenerateRandomString(length int, charset string) string {
	result := make([]byte, length)
	for i := range result {
		n, _ := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		result[i] = charset[n.Int64()]
	}
	return string(result)
}

// GenerateOrderNumber returns a short human-readable order reference such as "ORD-7QK2M9XA".
func GenerateOrderNumber() string {
	const charset = "0123456789ABCDEFGHJKLMNPQRSTUVWXYZ"
	return "ORD-" + GenerateRandomString(8, charset)
}

// MaskCardNumber keeps only the last four digits.
func MaskCardNumber(number string) string {
	digits := strings.Join(strings.Fields(number), "")
	if len(digits) < 4 {
		return "XXXX"
	}
	return "XXXX XXXX XXXX " + digits[len(digits)-4:]
}
