package accounts

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
)

// ErrAccountNotActivated gates login for accounts that never completed the
// activation flow. It is only ever returned after the password verified, so
// it leaks nothing to guessers.
var ErrAccountNotActivated = goerrors.New("account is not activated", goerrors.CategoryAuth).
	WithTextCode("ACCOUNT_NOT_ACTIVATED").
	WithCode(goerrors.CodeUnauthorized)

// CredentialUsers is the lookup slice the authenticator needs.
type CredentialUsers interface {
	GetByEmail(ctx context.Context, email string) (*User, error)
}

// Authenticator verifies email/password credentials against stored digests.
type Authenticator struct {
	users  CredentialUsers
	logger Logger

	// RequireActivated refuses login for unactivated accounts. On by
	// default; flip off for hosts that gate activation elsewhere.
	RequireActivated bool
}

type AuthenticatorOption func(*Authenticator)

func WithAuthenticatorLogger(l Logger) AuthenticatorOption {
	return func(a *Authenticator) {
		if l != nil {
			a.logger = l
		}
	}
}

func WithoutActivationGate() AuthenticatorOption {
	return func(a *Authenticator) {
		a.RequireActivated = false
	}
}

func NewAuthenticator(users CredentialUsers, opts ...AuthenticatorOption) *Authenticator {
	a := &Authenticator{
		users:            users,
		logger:           defLogger{},
		RequireActivated: true,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}
	return a
}

// Login returns the user when the password matches the stored digest.
// Unknown email and wrong password are indistinguishable to the caller:
// both come back as ErrMismatchedHashAndPassword.
func (a *Authenticator) Login(ctx context.Context, email, password string) (*User, error) {
	user, err := a.users.GetByEmail(ctx, email)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrMismatchedHashAndPassword
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user during verification")
	}

	if err := ComparePasswordAndHash(password, user.PasswordDigest); err != nil {
		a.logger.Debug("credential verification failed for %s", user.ID)
		return nil, ErrMismatchedHashAndPassword
	}

	if a.RequireActivated && !user.Activated {
		return nil, ErrAccountNotActivated
	}

	return user, nil
}
