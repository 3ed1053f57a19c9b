package accounts

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

type ActivateAccountMessage struct {
	Email      string `json:"email"`
	Token      string `json:"token"`
	OnResponse func(user *User)
}

func (e ActivateAccountMessage) Type() string { return "user.activate" }

// ActivateAccountHandler consumes an activation link. Any failure - unknown
// email, wrong token, revoked digest - collapses into the generic credential
// denial so the endpoint is not an account oracle. Activating an already
// active account succeeds.
type ActivateAccountHandler struct {
	repo RepositoryManager
}

func NewActivateAccountHandler(repo RepositoryManager) *ActivateAccountHandler {
	return &ActivateAccountHandler{repo: repo}
}

func (h *ActivateAccountHandler) Execute(ctx context.Context, event ActivateAccountMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during account activation",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *ActivateAccountHandler) execute(ctx context.Context, event ActivateAccountMessage) error {
	user := &User{}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var err error
		user, err = h.repo.Users().GetByEmailTx(ctx, tx, event.Email)
		if err != nil {
			if repository.IsRecordNotFound(err) {
				return ErrMismatchedHashAndPassword
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user for activation")
		}

		if !user.Authenticated(DigestActivation, event.Token) {
			return ErrMismatchedHashAndPassword
		}

		return h.repo.Users().ActivateTx(ctx, tx, user)
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "account activation failed")
	}

	if event.OnResponse != nil {
		event.OnResponse(user)
	}

	return nil
}
