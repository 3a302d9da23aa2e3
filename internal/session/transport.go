// Package session abstracts how a session credential reaches the client.
package session

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// CredentialOptions control how the credential is stored client-side.
type CredentialOptions struct {
	HTTPOnly bool
	MaxAge   time.Duration
}

// Transport places or removes the session credential on the outbound response.
type Transport interface {
	SetCredential(token string, opts CredentialOptions)
	ClearCredential()
}

// FiberCookies writes the credential as a cookie on a Fiber response.
type FiberCookies struct {
	c      *fiber.Ctx
	name   string
	secure bool
}

// NewFiberCookies binds a transport to the current request context.
func NewFiberCookies(c *fiber.Ctx, name string, secure bool) *FiberCookies {
	return &FiberCookies{c: c, name: name, secure: secure}
}

func (f *FiberCookies) SetCredential(token string, opts CredentialOptions) {
	f.c.Cookie(&fiber.Cookie{
		Name:     f.name,
		Value:    token,
		Path:     "/",
		MaxAge:   int(opts.MaxAge / time.Second),
		Expires:  time.Now().Add(opts.MaxAge),
		HTTPOnly: opts.HTTPOnly,
		Secure:   f.secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// ClearCredential expires the cookie on the same path it was set on.
func (f *FiberCookies) ClearCredential() {
	f.c.Cookie(&fiber.Cookie{
		Name:     f.name,
		Value:    "",
		Path:     "/",
		Expires:  time.Now().Add(-24 * time.Hour),
		HTTPOnly: true,
		Secure:   f.secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
