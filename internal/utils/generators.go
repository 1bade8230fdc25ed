package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

// Unambiguous characters for customer-facing references (no 0/O, 1/I).
const referenceAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// GenerateOrderNumber builds a reference such as TI-20250301-K7Q2XM.
func GenerateOrderNumber(now time.Time) (string, error) {
	suffix := make([]byte, 6)
	max := big.NewInt(int64(len(referenceAlphabet)))
	for i := range suffix {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generate order number: %w", err)
		}
		suffix[i] = referenceAlphabet[n.Int64()]
	}
	return fmt.Sprintf("TI-%s-%s", now.UTC().Format("20060102"), suffix), nil
}
