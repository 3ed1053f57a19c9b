package accounts_test

import (
	"testing"

	"github.com/goliatone/go-accounts"
	"github.com/stretchr/testify/assert"
)

func TestHasherHash(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{
			name:     "Valid password",
			password: "securePassword123!",
			wantErr:  false,
		},
		{
			name:     "Empty password",
			password: "",
			wantErr:  true, // bcrypt can hash empty strings!
		},
	}

	hasher := accounts.Hasher{Cost: accounts.MinHashCost}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := hasher.Hash(tt.password)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			assert.NoError(t, err)
			assert.NotEmpty(t, hash)

			err = hasher.Compare(tt.password, hash)
			assert.NoError(t, err)
		})
	}
}

func TestHasherCompare(t *testing.T) {
	hasher := accounts.Hasher{Cost: accounts.MinHashCost}

	password := "testPassword123!"
	hash, err := hasher.Hash(password)
	assert.NoError(t, err)

	tests := []struct {
		name     string
		password string
		hash     string
		wantErr  bool
	}{
		{
			name:     "Matching password",
			password: password,
			hash:     hash,
			wantErr:  false,
		},
		{
			name:     "Wrong password",
			password: "wrongPassword",
			hash:     hash,
			wantErr:  true,
		},
		{
			name:     "Appended character",
			password: password + "x",
			hash:     hash,
			wantErr:  true,
		},
		{
			name:     "Invalid hash",
			password: password,
			hash:     "invalidhash",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := hasher.Compare(tt.password, tt.hash)

			if tt.wantErr {
				assert.Error(t, err)
				if tt.hash == hash && tt.password != password {
					assert.Equal(t, accounts.ErrMismatchedHashAndPassword, err)
				}
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDigestMatches(t *testing.T) {
	hasher := accounts.Hasher{Cost: accounts.MinHashCost}

	digest, err := hasher.Hash("token-value")
	assert.NoError(t, err)

	assert.True(t, accounts.DigestMatches(digest, "token-value"))
	assert.False(t, accounts.DigestMatches(digest, "other-value"))

	// An absent digest denies anything, it never errors.
	assert.False(t, accounts.DigestMatches("", "token-value"))
	assert.False(t, accounts.DigestMatches("", ""))
	assert.False(t, accounts.DigestMatches("not-a-digest", "token-value"))
}

func TestHasherDefaultCost(t *testing.T) {
	// The digest encodes its cost, so verification works regardless of the
	// hasher that produced it.
	cheap := accounts.Hasher{Cost: accounts.MinHashCost}
	hash, err := cheap.Hash("password")
	assert.NoError(t, err)
	assert.NoError(t, accounts.Hasher{}.Compare("password", hash))
}
