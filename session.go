package accounts

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
)

// SessionUsers is the slice of the Users repository the resolver needs.
type SessionUsers interface {
	GetByID(ctx context.Context, id string, criteria ...repository.SelectCriteria) (*User, error)
	Remember(ctx context.Context, user *User) (string, error)
	Forget(ctx context.Context, user *User) error
}

// CurrentSession resolves and caches the authenticated identity for exactly
// one request. Construct one per request; never share across requests or
// goroutines serving different users.
type CurrentSession struct {
	store   SessionStore
	cookies CookieJar
	users   SessionUsers
	logger  Logger

	resolved bool
	current  *User
}

type SessionOption func(*CurrentSession)

func WithSessionLogger(l Logger) SessionOption {
	return func(s *CurrentSession) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewCurrentSession wires a per-request resolver over the host's transient
// session store and cookie jar.
func NewCurrentSession(store SessionStore, cookies CookieJar, users SessionUsers, opts ...SessionOption) *CurrentSession {
	s := &CurrentSession{
		store:   store,
		cookies: cookies,
		users:   users,
		logger:  defLogger{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// LogIn writes the identity into the transient session only. Nothing
// outlives the browser session unless Remember is also called.
func (s *CurrentSession) LogIn(user *User) {
	s.store.Set(SessionUserIDKey, user.ID.String())
	s.current = user
	s.resolved = true
}

// Remember logs the user in and additionally persists the signed cookie
// pair with a far-future expiry, so the identity survives browser restarts.
func (s *CurrentSession) Remember(ctx context.Context, user *User) error {
	token, err := s.users.Remember(ctx, user)
	if err != nil {
		return err
	}

	s.cookies.WriteSigned(UserIDCookie, user.ID.String(), true)
	s.cookies.Write(RememberTokenCookie, token, true)
	s.LogIn(user)
	return nil
}

// LogOut revokes the server-side remember digest, drops both persistent
// cookies, and clears the transient session and the memoized identity.
// Calling it while logged out is a no-op.
func (s *CurrentSession) LogOut(ctx context.Context) error {
	user, err := s.Current(ctx)
	if err != nil {
		return err
	}

	if user != nil {
		if err := s.users.Forget(ctx, user); err != nil {
			return err
		}
	}

	s.cookies.Delete(UserIDCookie)
	s.cookies.Delete(RememberTokenCookie)
	s.store.Delete(SessionUserIDKey)

	s.current = nil
	s.resolved = true
	return nil
}

// Current resolves the authenticated identity, once. The result (including
// "nobody") is memoized for the rest of the request; only unexpected
// persistence failures return an error, and those are not cached.
func (s *CurrentSession) Current(ctx context.Context) (*User, error) {
	if s.resolved {
		return s.current, nil
	}

	user, err := s.resolve(ctx)
	if err != nil {
		return nil, err
	}

	s.current = user
	s.resolved = true
	return user, nil
}

// IsLoggedIn reports whether resolution yields an identity. Resolution
// errors log and read as logged out.
func (s *CurrentSession) IsLoggedIn(ctx context.Context) bool {
	user, err := s.Current(ctx)
	if err != nil {
		LogError(s.logger, "session resolution failed", err)
		return false
	}
	return user != nil
}

// IsCurrentUser reports whether u is the resolved identity.
func (s *CurrentSession) IsCurrentUser(ctx context.Context, u *User) bool {
	if u == nil {
		return false
	}

	current, err := s.Current(ctx)
	if err != nil {
		LogError(s.logger, "session resolution failed", err)
		return false
	}

	return current != nil && current.ID == u.ID
}

func (s *CurrentSession) resolve(ctx context.Context) (*User, error) {
	if id, ok := s.store.Get(SessionUserIDKey); ok && id != "" {
		user, err := s.lookup(ctx, id)
		if err != nil {
			return nil, err
		}
		// A stale session id resolves to nobody; the miss is cached so we
		// do not re-query on every helper call.
		return user, nil
	}

	if id, ok := s.cookies.ReadSigned(UserIDCookie); ok && id != "" {
		user, err := s.lookup(ctx, id)
		if err != nil {
			return nil, err
		}
		if user == nil {
			return nil, nil
		}

		token, _ := s.cookies.Read(RememberTokenCookie)
		if !user.Authenticated(DigestRemember, token) {
			// Remember digest cleared elsewhere, or the wrong token.
			// Fail closed.
			return nil, nil
		}

		// Implicit login: re-establish the transient session.
		s.store.Set(SessionUserIDKey, user.ID.String())
		return user, nil
	}

	return nil, nil
}

func (s *CurrentSession) lookup(ctx context.Context, id string) (*User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, nil
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load session user")
	}

	return user, nil
}
