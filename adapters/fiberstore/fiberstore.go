// Package fiberstore adapts the accounts session contracts to a raw
// *fiber.Ctx, for hosts that mount Fiber directly instead of going through
// the router abstraction.
package fiberstore

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-accounts"
)

const sessionCookiePrefix = "_session_"

const permanentCookieAge = 20 * 365 * 24 * time.Hour

// CookieJar implements accounts.CookieJar over a fiber request context.
type CookieJar struct {
	ctx   *fiber.Ctx
	codec *accounts.SignedValueCodec
}

var _ accounts.CookieJar = (*CookieJar)(nil)

func NewCookieJar(ctx *fiber.Ctx, codec *accounts.SignedValueCodec) *CookieJar {
	return &CookieJar{ctx: ctx, codec: codec}
}

func (j *CookieJar) WriteSigned(name, value string, permanent bool) {
	signed, err := j.codec.Sign(value)
	if err != nil {
		return
	}
	j.Write(name, signed, permanent)
}

func (j *CookieJar) Write(name, value string, permanent bool) {
	cookie := &fiber.Cookie{
		Name:     name,
		Value:    value,
		HTTPOnly: true,
		Secure:   true,
		SameSite: fiber.CookieSameSiteLaxMode,
	}
	if permanent {
		cookie.Expires = time.Now().Add(permanentCookieAge)
	}
	j.ctx.Cookie(cookie)
}

func (j *CookieJar) ReadSigned(name string) (string, bool) {
	raw := j.ctx.Cookies(name)
	if raw == "" {
		return "", false
	}
	return j.codec.Verify(raw)
}

func (j *CookieJar) Read(name string) (string, bool) {
	raw := j.ctx.Cookies(name)
	return raw, raw != ""
}

func (j *CookieJar) Delete(name string) {
	j.ctx.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour * (24 * 365)),
		HTTPOnly: true,
		Secure:   true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// SessionStore implements the transient accounts.SessionStore as signed
// browser-session cookies.
type SessionStore struct {
	jar *CookieJar
}

var _ accounts.SessionStore = (*SessionStore)(nil)

func NewSessionStore(ctx *fiber.Ctx, codec *accounts.SignedValueCodec) *SessionStore {
	return &SessionStore{jar: NewCookieJar(ctx, codec)}
}

func (s *SessionStore) Get(key string) (string, bool) {
	return s.jar.ReadSigned(sessionCookiePrefix + key)
}

func (s *SessionStore) Set(key, value string) {
	s.jar.WriteSigned(sessionCookiePrefix+key, value, false)
}

func (s *SessionStore) Delete(key string) {
	s.jar.Delete(sessionCookiePrefix + key)
}

// NewSession builds the per-request resolver for a fiber handler.
func NewSession(ctx *fiber.Ctx, codec *accounts.SignedValueCodec, users accounts.SessionUsers, opts ...accounts.SessionOption) *accounts.CurrentSession {
	return accounts.NewCurrentSession(
		NewSessionStore(ctx, codec),
		NewCookieJar(ctx, codec),
		users,
		opts...,
	)
}
