package accounts

import (
	"context"
	"database/sql"
	"errors"
	"log"

	"github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

// RepositoryManager exposes all repositories
type RepositoryManager interface {
	repository.Validator
	repository.TransactionManager
	Users() Users
	Relationships() Relationships
	Microposts() Microposts
}

type mngr struct {
	db            *bun.DB
	users         Users
	relationships Relationships
	microposts    Microposts
}

type ManagerOption func(*mngr)

// WithManagerUsersOptions forwards options to the users repository, e.g.
// WithUsersHasher for the test cost knob.
func WithManagerUsersOptions(opts ...UsersOption) ManagerOption {
	return func(m *mngr) {
		m.users = NewUsersRepository(m.db, opts...)
	}
}

func NewRepositoryManager(db *bun.DB, opts ...ManagerOption) RepositoryManager {
	m := &mngr{
		db:            db,
		users:         NewUsersRepository(db),
		relationships: NewRelationshipsRepository(db),
		microposts:    NewMicropostsRepository(db),
	}

	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}

	return m
}

func (m mngr) Validate() error {
	if m.users == nil {
		return errors.New("repository users should be initialized")
	}

	if m.relationships == nil {
		return errors.New("repository relationships should be initialized")
	}

	if m.microposts == nil {
		return errors.New("repository microposts should be initialized")
	}

	return nil
}

func (m mngr) MustValidate() {
	if err := m.Validate(); err != nil {
		log.Panic(err)
	}
}

func (m mngr) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return m.db.RunInTx(ctx, opts, f)
	}
}

func (m mngr) Users() Users {
	return m.users
}

func (m mngr) Relationships() Relationships {
	return m.relationships
}

func (m mngr) Microposts() Microposts {
	return m.microposts
}
