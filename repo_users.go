package accounts

import (
	"context"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Narrow write paths below run raw SQL on purpose: a digest-only update must
// not re-trigger unrelated model validation. RETURNING * makes a missing row
// detectable.

var rememberUserSQL = `UPDATE "users" AS "usr"
SET
	"remember_digest" = ?
WHERE
	"usr"."deleted_at" IS NULL
AND (
	"usr"."id" = ?
) RETURNING *;`

var forgetUserSQL = `UPDATE "users" AS "usr"
SET
	"remember_digest" = NULL
WHERE
	"usr"."deleted_at" IS NULL
AND (
	"usr"."id" = ?
) RETURNING *;`

var activateUserSQL = `UPDATE "users" AS "usr"
SET
	"activated" = TRUE,
	"activated_at" = ?
WHERE
	"usr"."deleted_at" IS NULL
AND (
	"usr"."id" = ?
) RETURNING *;`

var createResetDigestSQL = `UPDATE "users" AS "usr"
SET
	"reset_digest" = ?,
	"reset_sent_at" = ?
WHERE
	"usr"."deleted_at" IS NULL
AND (
	"usr"."id" = ?
) RETURNING *;`

var resetUserPasswordSQL = `UPDATE "users" AS "usr"
SET
	"password_digest" = ?,
	"reset_digest" = NULL,
	"reset_sent_at" = NULL
WHERE
	"usr"."deleted_at" IS NULL
AND (
	"usr"."id" = ?
) RETURNING *;`

type Users interface {
	repository.Repository[*User]

	Register(ctx context.Context, user *User) (*User, error)
	RegisterTx(ctx context.Context, tx bun.IDB, user *User) (*User, error)

	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*User, error)

	Remember(ctx context.Context, user *User) (string, error)
	RememberTx(ctx context.Context, tx bun.IDB, user *User) (string, error)
	Forget(ctx context.Context, user *User) error
	ForgetTx(ctx context.Context, tx bun.IDB, user *User) error

	Activate(ctx context.Context, user *User) error
	ActivateTx(ctx context.Context, tx bun.IDB, user *User) error

	CreateResetDigest(ctx context.Context, user *User) (string, error)
	CreateResetDigestTx(ctx context.Context, tx bun.IDB, user *User) (string, error)

	ResetPassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	ResetPasswordTx(ctx context.Context, tx bun.IDB, id uuid.UUID, passwordHash string) error
}

type users struct {
	repository.Repository[*User]
	db     *bun.DB
	hasher Hasher
}

var (
	_ Users                        = (*users)(nil)
	_ repository.Repository[*User] = (*users)(nil)
)

type UsersOption func(*users)

// WithUsersHasher overrides the bcrypt cost knob, e.g. MinHashCost in tests.
func WithUsersHasher(h Hasher) UsersOption {
	return func(u *users) {
		u.hasher = h
	}
}

func NewUsersRepository(db *bun.DB, opts ...UsersOption) Users {
	repo := repository.NewRepository[*User](db, repository.ModelHandlers[*User]{
		NewRecord: func() *User { return &User{} },
		GetID: func(u *User) uuid.UUID {
			if u == nil {
				return uuid.Nil
			}
			return u.ID
		},
		SetID: func(u *User, id uuid.UUID) {
			if u != nil {
				u.ID = id
			}
		},
		GetIdentifier: func() string {
			return "email"
		},
	})

	repoUsers := &users{
		Repository: repo,
		db:         db,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(repoUsers)
		}
	}

	return repoUsers
}

// Register is the validated creation path: it normalizes the email, collects
// every constraint violation (including a taken email), hashes the password,
// and mints the activation token pair. The plaintext activation token is
// populated on the returned record only.
func (a *users) Register(ctx context.Context, user *User) (*User, error) {
	return a.RegisterTx(ctx, a.db, user)
}

func (a *users) RegisterTx(ctx context.Context, tx bun.IDB, user *User) (*User, error) {
	user.Email = NormalizeEmail(user.Email)

	verrs := collectValidationErrors(user.Validate())
	if _, emailInvalid := verrs["email"]; !emailInvalid && user.Email != "" {
		if _, err := a.GetByEmailTx(ctx, tx, user.Email); err == nil {
			verrs["email"] = goerrors.New("email has already been taken", goerrors.CategoryValidation).
				WithTextCode(TextCodeEmailTaken)
		} else if !repository.IsRecordNotFound(err) {
			return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check email uniqueness")
		}
	}
	if len(verrs) > 0 {
		return nil, wrapValidationError(verrs)
	}

	hash, err := a.hasher.Hash(user.Password)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
	}
	user.PasswordDigest = hash
	user.Password = ""

	token, err := NewToken()
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to generate activation token")
	}
	digest, err := a.hasher.Hash(token)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to digest activation token")
	}

	user.ActivationDigest = digest
	user.Activated = false
	user.ActivatedAt = nil

	created, err := a.CreateTx(ctx, tx, user)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryConflict, "could not create user")
	}

	created.ActivationToken = token
	return created, nil
}

func (a *users) GetByEmail(ctx context.Context, email string) (*User, error) {
	return a.GetByEmailTx(ctx, a.db, email)
}

func (a *users) GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*User, error) {
	record := &User{}
	err := tx.NewSelect().
		Model(record).
		Where("lower(?TableAlias.email) = ?", NormalizeEmail(email)).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"email": NormalizeEmail(email),
				})
		}
		return nil, err
	}

	return record, nil
}

func (a *users) Create(ctx context.Context, record *User, criteria ...repository.InsertCriteria) (*User, error) {
	return a.CreateTx(ctx, a.db, record, criteria...)
}

func (a *users) CreateTx(ctx context.Context, tx bun.IDB, record *User, criteria ...repository.InsertCriteria) (*User, error) {
	prepareUserDefaults(record)
	return a.Repository.CreateTx(ctx, tx, record, criteria...)
}

// Remember mints a remember token, persists only its digest, and returns the
// plaintext for cookie placement.
func (a *users) Remember(ctx context.Context, user *User) (string, error) {
	return a.RememberTx(ctx, a.db, user)
}

func (a *users) RememberTx(ctx context.Context, tx bun.IDB, user *User) (string, error) {
	token, err := NewToken()
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to generate remember token")
	}

	digest, err := a.hasher.Hash(token)
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to digest remember token")
	}

	if err := a.execNarrowUpdate(ctx, tx, rememberUserSQL, user.ID, digest, user.ID.String()); err != nil {
		return "", err
	}

	user.RememberDigest = digest
	user.RememberToken = token
	return token, nil
}

// Forget revokes the remember digest. Cookie-based resolution fails closed
// from this point on, including for cookies issued elsewhere.
func (a *users) Forget(ctx context.Context, user *User) error {
	return a.ForgetTx(ctx, a.db, user)
}

func (a *users) ForgetTx(ctx context.Context, tx bun.IDB, user *User) error {
	if err := a.execNarrowUpdate(ctx, tx, forgetUserSQL, user.ID, user.ID.String()); err != nil {
		return err
	}

	user.RememberDigest = ""
	user.RememberToken = ""
	return nil
}

// Activate flips the account to active. Running it twice is harmless.
func (a *users) Activate(ctx context.Context, user *User) error {
	return a.ActivateTx(ctx, a.db, user)
}

func (a *users) ActivateTx(ctx context.Context, tx bun.IDB, user *User) error {
	now := time.Now()
	if err := a.execNarrowUpdate(ctx, tx, activateUserSQL, user.ID, now, user.ID.String()); err != nil {
		return err
	}

	user.Activated = true
	user.ActivatedAt = &now
	return nil
}

// CreateResetDigest mints a reset token, stores the digest and send time,
// and returns the plaintext for the email link.
func (a *users) CreateResetDigest(ctx context.Context, user *User) (string, error) {
	return a.CreateResetDigestTx(ctx, a.db, user)
}

func (a *users) CreateResetDigestTx(ctx context.Context, tx bun.IDB, user *User) (string, error) {
	token, err := NewToken()
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to generate reset token")
	}

	digest, err := a.hasher.Hash(token)
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to digest reset token")
	}

	now := time.Now()
	if err := a.execNarrowUpdate(ctx, tx, createResetDigestSQL, user.ID, digest, now, user.ID.String()); err != nil {
		return "", err
	}

	user.ResetDigest = digest
	user.ResetSentAt = &now
	user.ResetToken = token
	return token, nil
}

// ResetPassword installs a new password digest and revokes the reset pair.
func (a *users) ResetPassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	return a.ResetPasswordTx(ctx, a.db, id, passwordHash)
}

func (a *users) ResetPasswordTx(ctx context.Context, tx bun.IDB, id uuid.UUID, passwordHash string) error {
	return a.execNarrowUpdate(ctx, tx, resetUserPasswordSQL, id, passwordHash, id.String())
}

func (a *users) execNarrowUpdate(ctx context.Context, tx bun.IDB, sql string, id uuid.UUID, args ...any) error {
	res, err := a.Repository.RawTx(ctx, tx, sql, args...)
	if err != nil {
		return err
	}

	if len(res) == 0 {
		return repository.NewRecordNotFound().
			WithMetadata(map[string]any{
				"id": id.String(),
			})
	}

	return nil
}

func prepareUserDefaults(record *User) {
	if record == nil {
		return
	}

	record.Email = NormalizeEmail(record.Email)

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
}

func collectValidationErrors(err error) validation.Errors {
	if err == nil {
		return validation.Errors{}
	}
	if verrs, ok := err.(validation.Errors); ok {
		return verrs
	}
	return validation.Errors{"base": err}
}
