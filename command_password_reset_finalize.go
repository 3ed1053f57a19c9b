package accounts

import (
	"context"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

type FinalizePasswordResetMessage struct {
	Email    string `json:"email"`
	Token    string `json:"token"`
	Password string `json:"password"`
}

func (p FinalizePasswordResetMessage) Type() string { return "user.password_reset_finalize" }

// FinalizePasswordResetHandler consumes a reset link: expiry check first,
// then the token digest, then the new password is validated, hashed, and
// installed. Installing the password revokes the reset digest.
type FinalizePasswordResetHandler struct {
	repo   RepositoryManager
	hasher Hasher
}

func NewFinalizePasswordResetHandler(repo RepositoryManager, hasher Hasher) *FinalizePasswordResetHandler {
	return &FinalizePasswordResetHandler{repo: repo, hasher: hasher}
}

func (h *FinalizePasswordResetHandler) Execute(ctx context.Context, event FinalizePasswordResetMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during password reset finalization",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *FinalizePasswordResetHandler) execute(ctx context.Context, event FinalizePasswordResetMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		user, err := h.repo.Users().GetByEmailTx(ctx, tx, event.Email)
		if err != nil {
			if repository.IsRecordNotFound(err) {
				return ErrMismatchedHashAndPassword
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "could not retrieve user for password reset")
		}

		if user.PasswordResetExpired(time.Now()) {
			return ErrResetTokenExpired
		}

		if !user.Authenticated(DigestReset, event.Token) {
			return ErrMismatchedHashAndPassword
		}

		if err := validation.Validate(event.Password,
			validation.Required,
			validation.Length(passwordMinLength, passwordMaxLength),
		); err != nil {
			return wrapValidationError(validation.Errors{"password": err})
		}

		passwordHash, err := h.hasher.Hash(event.Password)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid new password provided")
		}

		if err := h.repo.Users().ResetPasswordTx(ctx, tx, user.ID, passwordHash); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to update user password in database")
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to finalize password reset")
	}

	return nil
}
