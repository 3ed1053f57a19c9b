package accounts

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/uptrace/bun"
)

type RegisterUserMessage struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	UseHashid  bool
	OnResponse func(user *User)
}

func (e RegisterUserMessage) Type() string { return "user.register" }

// RegisterUserHandler creates an unactivated account and fires the
// activation email. Mail delivery failure is logged, never fatal: the
// account exists and activation can be re-requested.
type RegisterUserHandler struct {
	repo   RepositoryManager
	mailer Mailer
	logger Logger
}

func NewRegisterUserHandler(repo RepositoryManager, mailer Mailer, logger Logger) *RegisterUserHandler {
	if logger == nil {
		logger = defLogger{}
	}
	if mailer == nil {
		mailer = LogMailer{Logger: logger}
	}
	return &RegisterUserHandler{repo: repo, mailer: mailer, logger: logger}
}

func (h *RegisterUserHandler) Execute(ctx context.Context, event RegisterUserMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during user registration",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *RegisterUserHandler) execute(ctx context.Context, event RegisterUserMessage) error {
	user := &User{
		Name:     event.Name,
		Email:    event.Email,
		Password: event.Password,
	}

	if event.UseHashid {
		if id, err := hashid.NewUUID(NormalizeEmail(event.Email)); err == nil {
			user.ID = id
		}
	}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		created, err := h.repo.Users().RegisterTx(ctx, tx, user)
		if err != nil {
			return err
		}
		user = created
		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "user registration transaction failed")
	}

	if err := h.mailer.Send(ctx, MailActivation, user, user.ActivationToken); err != nil {
		h.logger.Error("failed to deliver activation email to %s: %s", user.Email, err)
	}

	if event.OnResponse != nil {
		event.OnResponse(user)
	}

	return nil
}
