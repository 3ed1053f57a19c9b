package accounts

import (
	"github.com/golang-jwt/jwt/v5"
)

// Cookie names for the persistent pair. The user id travels signed; the
// remember token is opaque plaintext that only ever meets the stored digest.
const (
	UserIDCookie        = "user_id"
	RememberTokenCookie = "remember_token"
)

// SessionUserIDKey is the transient session slot holding the logged in id.
const SessionUserIDKey = "user_id"

// SignedValueCodec signs small cookie values as HS256 tokens so the client
// cannot mint or alter them. Verification failure reads as "no value": a
// tampered cookie is indistinguishable from a missing one.
type SignedValueCodec struct {
	key []byte
}

// NewSignedValueCodec creates a codec from the host signing key.
func NewSignedValueCodec(signingKey string) *SignedValueCodec {
	return &SignedValueCodec{key: []byte(signingKey)}
}

// Sign wraps value with an integrity signature.
func (c *SignedValueCodec) Sign(value string) (string, error) {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject: value,
	})
	return tok.SignedString(c.key)
}

// Verify recovers the value from a signed string. The second return is false
// for any malformed, re-signed, or truncated input.
func (c *SignedValueCodec) Verify(signed string) (string, bool) {
	if signed == "" {
		return "", false
	}

	claims := &jwt.RegisteredClaims{}
	tok, err := jwt.ParseWithClaims(signed, claims, func(t *jwt.Token) (any, error) {
		return c.key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	if err != nil || !tok.Valid {
		return "", false
	}

	return claims.Subject, true
}
