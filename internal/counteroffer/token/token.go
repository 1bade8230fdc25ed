// Package token issues the opaque secrets that let a customer act on a
// counter offer without an account.
package token

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Size is the number of random bytes in a token (256 bits).
const Size = 32

// Generate returns a new hex-encoded token read from crypto/rand.
func Generate() (string, error) {
	b := make([]byte, Size)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// Hash is the value persisted and looked up in place of the token.
func Hash(tok string) string {
	sum := sha256.Sum256([]byte(tok))
	return hex.EncodeToString(sum[:])
}

// Valid reports whether tok has the shape Generate produces.
func Valid(tok string) bool {
	if len(tok) != Size*2 {
		return false
	}
	_, err := hex.DecodeString(tok)
	return err == nil
}

// Redact keeps a short prefix for log lines.
func Redact(tok string) string {
	if len(tok) <= 6 {
		return "…"
	}
	return tok[:6] + "…"
}
