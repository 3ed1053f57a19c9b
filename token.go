package accounts

import (
	"crypto/rand"
	"encoding/base64"
)

// tokenBytes gives 256 bits of entropy per token, well past the 128 bit
// floor collisions care about.
const tokenBytes = 32

// NewToken returns an opaque URL-safe token from the platform CSPRNG.
// Tokens are server-minted secrets: they are handed to the client once and
// only their bcrypt digest is ever stored.
func NewToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// MustNewToken is NewToken for call sites that cannot surface an error.
// The platform random source failing is not a recoverable condition.
func MustNewToken() string {
	token, err := NewToken()
	if err != nil {
		panic(err)
	}
	return token
}
