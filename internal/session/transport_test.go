package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func findCookie(resp *http.Response, name string) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestFiberCookies(t *testing.T) {
	app := fiber.New()
	app.Get("/set", func(c *fiber.Ctx) error {
		NewFiberCookies(c, "token", false).SetCredential("abc", CredentialOptions{HTTPOnly: true, MaxAge: time.Hour})
		return c.SendStatus(http.StatusOK)
	})
	app.Get("/clear", func(c *fiber.Ctx) error {
		NewFiberCookies(c, "token", false).ClearCredential()
		return c.SendStatus(http.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/set", nil))
	require.NoError(t, err)
	cookie := findCookie(resp, "token")
	require.NotNil(t, cookie)
	assert.Equal(t, "abc", cookie.Value)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, 3600, cookie.MaxAge)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/clear", nil))
	require.NoError(t, err)
	cleared := findCookie(resp, "token")
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)
	assert.Equal(t, "/", cleared.Path)
	assert.True(t, cleared.Expires.Before(time.Now()))
}

func TestRecorder(t *testing.T) {
	var rec Recorder
	rec.SetCredential("tok", CredentialOptions{HTTPOnly: true, MaxAge: time.Minute})

	token, opts, ok := rec.Credential()
	assert.True(t, ok)
	assert.Equal(t, "tok", token)
	assert.True(t, opts.HTTPOnly)

	rec.ClearCredential()
	rec.ClearCredential()
	_, _, ok = rec.Credential()
	assert.False(t, ok)
	assert.Equal(t, 2, rec.Clears())
}
