package accounts

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// DefaultHashCost is the bcrypt work factor used outside of tests.
const DefaultHashCost = 14

// MinHashCost is the cheapest cost the algorithm accepts. Use it in test
// suites so hashing does not dominate the run time.
const MinHashCost = bcrypt.MinCost

// Hasher wraps bcrypt with an explicit cost knob. The zero value hashes at
// DefaultHashCost; construct with MinHashCost for CI.
type Hasher struct {
	Cost int
}

func (h Hasher) cost() int {
	if h.Cost >= bcrypt.MinCost && h.Cost <= bcrypt.MaxCost {
		return h.Cost
	}
	return DefaultHashCost
}

// Hash will generate a salted digest for the given plaintext. The digest
// encodes salt and cost, so verification needs only the digest itself.
func (h Hasher) Hash(plaintext string) (string, error) {
	if plaintext == "" {
		return "", ErrNoEmptyString
	}

	out, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost())
	return string(out), err
}

// Compare will validate the given cleartext password matches the digest
func (h Hasher) Compare(password, digest string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(digest), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrMismatchedHashAndPassword
		}
		return err
	}
	return nil
}

// HashPassword will generate a password hash at the default cost
func HashPassword(password string) (string, error) {
	return Hasher{}.Hash(password)
}

// ComparePasswordAndHash will validate the given cleartext
// password matches the hashed password
func ComparePasswordAndHash(password, hash string) error {
	return Hasher{}.Compare(password, hash)
}

// DigestMatches reports whether candidate matches digest. An empty or
// malformed digest denies instead of erroring, which is what token checks
// against revoked digests rely on.
func DigestMatches(digest, candidate string) bool {
	if digest == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(candidate)) == nil
}
