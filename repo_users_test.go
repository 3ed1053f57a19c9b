package accounts_test

import (
	"context"
	"testing"
	"time"

	"github.com/goliatone/go-accounts"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func registerUser(t *testing.T, repo accounts.RepositoryManager, name, email, password string) *accounts.User {
	t.Helper()

	user, err := repo.Users().Register(context.Background(), &accounts.User{
		Name:     name,
		Email:    email,
		Password: password,
	})
	require.NoError(t, err)
	require.NotNil(t, user)
	return user
}

func TestUsersRegister(t *testing.T) {
	repo := setupManager(t)
	ctx := context.Background()

	user := registerUser(t, repo, "Example User", "NEW@Example.COM", "password")

	assert.NotEqual(t, uuid.Nil, user.ID)
	assert.Equal(t, "new@example.com", user.Email, "email should be stored downcased")
	assert.False(t, user.Activated, "accounts start unactivated")
	assert.Empty(t, user.Password, "plaintext password must not survive registration")
	assert.NotEmpty(t, user.PasswordDigest)
	assert.True(t, accounts.DigestMatches(user.PasswordDigest, "password"))

	assert.NotEmpty(t, user.ActivationToken, "register returns the plaintext activation token")
	assert.NotEmpty(t, user.ActivationDigest)
	assert.NotEqual(t, user.ActivationToken, user.ActivationDigest)
	assert.True(t, user.Authenticated(accounts.DigestActivation, user.ActivationToken))

	stored, err := repo.Users().GetByEmail(ctx, "new@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, stored.ID)
	assert.Empty(t, stored.ActivationToken, "plaintext token is never persisted")
}

func TestUsersRegisterDuplicateEmail(t *testing.T) {
	repo := setupManager(t)
	ctx := context.Background()

	registerUser(t, repo, "First", "user@example.com", "password")

	_, err := repo.Users().Register(ctx, &accounts.User{
		Name:     "Second",
		Email:    "USER@example.COM",
		Password: "password",
	})
	require.Error(t, err, "duplicate check must be case insensitive")
	assert.True(t, accounts.IsValidationError(err))

	fields := accounts.FormatValidationErrorToMap(err)
	assert.Contains(t, fields, "email")
}

func TestUsersRegisterCollectsAllViolations(t *testing.T) {
	repo := setupManager(t)

	_, err := repo.Users().Register(context.Background(), &accounts.User{
		Name:     "",
		Email:    "not-an-email",
		Password: "foo",
	})
	require.Error(t, err)
	assert.True(t, accounts.IsValidationError(err))

	fields := accounts.FormatValidationErrorToMap(err)
	assert.Contains(t, fields, "name")
	assert.Contains(t, fields, "email")
	assert.Contains(t, fields, "password")
}

func TestUsersGetByEmailCaseInsensitive(t *testing.T) {
	repo := setupManager(t)
	ctx := context.Background()

	user := registerUser(t, repo, "Example User", "foo@bar.com", "password")

	found, err := repo.Users().GetByEmail(ctx, "FOO@BAR.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)

	_, err = repo.Users().GetByEmail(ctx, "missing@bar.com")
	require.Error(t, err)
	assert.True(t, repository.IsRecordNotFound(err))
}

func TestUsersRememberForget(t *testing.T) {
	repo := setupManager(t)
	ctx := context.Background()

	user := registerUser(t, repo, "Example User", "remember@example.com", "password")

	token, err := repo.Users().Remember(ctx, user)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.Equal(t, token, user.RememberToken)

	stored, err := repo.Users().GetByEmail(ctx, user.Email)
	require.NoError(t, err)
	assert.NotEmpty(t, stored.RememberDigest)
	assert.NotEqual(t, token, stored.RememberDigest, "only the digest is persisted")
	assert.True(t, stored.Authenticated(accounts.DigestRemember, token))

	require.NoError(t, repo.Users().Forget(ctx, user))

	stored, err = repo.Users().GetByEmail(ctx, user.Email)
	require.NoError(t, err)
	assert.Empty(t, stored.RememberDigest)
	assert.False(t, stored.Authenticated(accounts.DigestRemember, token))
}

func TestUsersActivate(t *testing.T) {
	repo := setupManager(t)
	ctx := context.Background()

	user := registerUser(t, repo, "Example User", "activate@example.com", "password")
	require.False(t, user.Activated)

	require.NoError(t, repo.Users().Activate(ctx, user))
	assert.True(t, user.Activated)
	require.NotNil(t, user.ActivatedAt)

	stored, err := repo.Users().GetByEmail(ctx, user.Email)
	require.NoError(t, err)
	assert.True(t, stored.Activated)
	assert.NotNil(t, stored.ActivatedAt)

	// activating twice is harmless
	require.NoError(t, repo.Users().Activate(ctx, user))
}

func TestUsersCreateResetDigest(t *testing.T) {
	repo := setupManager(t)
	ctx := context.Background()

	user := registerUser(t, repo, "Example User", "reset@example.com", "password")

	token, err := repo.Users().CreateResetDigest(ctx, user)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	stored, err := repo.Users().GetByEmail(ctx, user.Email)
	require.NoError(t, err)
	require.NotNil(t, stored.ResetSentAt)
	assert.True(t, stored.Authenticated(accounts.DigestReset, token))
	assert.False(t, stored.PasswordResetExpired(time.Now()))
	assert.True(t, stored.PasswordResetExpired(time.Now().Add(accounts.ResetTokenTTL+time.Minute)))
}

func TestUsersResetPassword(t *testing.T) {
	repo := setupManager(t)
	ctx := context.Background()

	user := registerUser(t, repo, "Example User", "newpass@example.com", "password")

	token, err := repo.Users().CreateResetDigest(ctx, user)
	require.NoError(t, err)

	hasher := accounts.Hasher{Cost: accounts.MinHashCost}
	hash, err := hasher.Hash("different-password")
	require.NoError(t, err)

	require.NoError(t, repo.Users().ResetPassword(ctx, user.ID, hash))

	stored, err := repo.Users().GetByEmail(ctx, user.Email)
	require.NoError(t, err)
	assert.True(t, accounts.DigestMatches(stored.PasswordDigest, "different-password"))
	assert.False(t, accounts.DigestMatches(stored.PasswordDigest, "password"))

	assert.Empty(t, stored.ResetDigest, "reset digest is revoked with the password change")
	assert.Nil(t, stored.ResetSentAt)
	assert.False(t, stored.Authenticated(accounts.DigestReset, token))
}

func TestUsersNarrowUpdateMissingRecord(t *testing.T) {
	repo := setupManager(t)
	ctx := context.Background()

	ghost := &accounts.User{ID: uuid.New()}

	_, err := repo.Users().Remember(ctx, ghost)
	require.Error(t, err)
	assert.True(t, repository.IsRecordNotFound(err))

	err = repo.Users().Activate(ctx, ghost)
	require.Error(t, err)
	assert.True(t, repository.IsRecordNotFound(err))

	err = repo.Users().ResetPassword(ctx, ghost.ID, "whatever-digest")
	require.Error(t, err)
	assert.True(t, repository.IsRecordNotFound(err))
}
