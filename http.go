package accounts

import (
	"time"

	"github.com/goliatone/go-router"
)

// SessionLocalsKey is where the per-request CurrentSession lives in the
// router context.
const SessionLocalsKey = "accounts_session"

// permanentCookieAge is the "remember me" cookie lifetime.
const permanentCookieAge = 20 * 365 * 24 * time.Hour

// sessionCookiePrefix namespaces the transient session cookies so they never
// collide with the persistent pair.
const sessionCookiePrefix = "_session_"

// RouterCookieJar implements CookieJar over a router.Context. Signed values
// go through the codec; everything is HTTPOnly, Secure, SameSite Lax.
type RouterCookieJar struct {
	ctx   router.Context
	codec *SignedValueCodec
}

func NewRouterCookieJar(ctx router.Context, codec *SignedValueCodec) *RouterCookieJar {
	return &RouterCookieJar{ctx: ctx, codec: codec}
}

func (j *RouterCookieJar) WriteSigned(name, value string, permanent bool) {
	signed, err := j.codec.Sign(value)
	if err != nil {
		// Signing only fails on a broken key; write nothing rather than a
		// forgeable value.
		return
	}
	j.Write(name, signed, permanent)
}

func (j *RouterCookieJar) Write(name, value string, permanent bool) {
	cookie := &router.Cookie{
		Name:     name,
		Value:    value,
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Lax",
	}
	if permanent {
		cookie.Expires = time.Now().Add(permanentCookieAge)
	}
	j.ctx.Cookie(cookie)
}

func (j *RouterCookieJar) ReadSigned(name string) (string, bool) {
	raw := j.ctx.Cookies(name)
	if raw == "" {
		return "", false
	}
	return j.codec.Verify(raw)
}

func (j *RouterCookieJar) Read(name string) (string, bool) {
	raw := j.ctx.Cookies(name)
	return raw, raw != ""
}

func (j *RouterCookieJar) Delete(name string) {
	j.ctx.Cookie(&router.Cookie{
		Name:     name,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour * (24 * 365)),
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Lax",
	})
}

// RouterSessionStore implements the transient SessionStore as signed
// browser-session cookies: values survive requests but not a browser
// restart, and the client cannot forge them.
type RouterSessionStore struct {
	jar *RouterCookieJar
}

func NewRouterSessionStore(ctx router.Context, codec *SignedValueCodec) *RouterSessionStore {
	return &RouterSessionStore{jar: NewRouterCookieJar(ctx, codec)}
}

func (s *RouterSessionStore) Get(key string) (string, bool) {
	return s.jar.ReadSigned(sessionCookiePrefix + key)
}

func (s *RouterSessionStore) Set(key, value string) {
	s.jar.WriteSigned(sessionCookiePrefix+key, value, false)
}

func (s *RouterSessionStore) Delete(key string) {
	s.jar.Delete(sessionCookiePrefix + key)
}

// ResolveCurrentUser builds the per-request session resolver, resolves the
// identity once, and exposes both: the CurrentSession under
// SessionLocalsKey, and the resolved *User on the standard context for
// handlers that only need identity.
func ResolveCurrentUser(users SessionUsers, codec *SignedValueCodec, opts ...SessionOption) router.MiddlewareFunc {
	return func(hf router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) error {
			store := NewRouterSessionStore(ctx, codec)
			jar := NewRouterCookieJar(ctx, codec)
			sess := NewCurrentSession(store, jar, users, opts...)

			ctx.Locals(SessionLocalsKey, sess)

			if user, err := sess.Current(ctx.Context()); err == nil && user != nil {
				ctx.SetContext(WithContext(ctx.Context(), user))
			}

			return ctx.Next()
		}
	}
}

// GetRouterSession recovers the per-request resolver placed by
// ResolveCurrentUser.
func GetRouterSession(ctx router.Context) (*CurrentSession, error) {
	raw := ctx.Locals(SessionLocalsKey)
	if raw == nil {
		return nil, ErrUnableToFindSession
	}

	sess, ok := raw.(*CurrentSession)
	if !ok || sess == nil {
		return nil, ErrUnableToFindSession
	}

	return sess, nil
}
