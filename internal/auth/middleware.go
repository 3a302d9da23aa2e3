package auth

import (
	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/storefront-api/pkg/util/errorutil"
)

const userIDKey = "auth_user_id"

// SessionMiddleware decodes the session cookie on every request and stores
// the user id in request locals. A missing or invalid cookie leaves the
// request anonymous.
type SessionMiddleware struct {
	tokens     *TokenManager
	cookieName string
}

// NewSessionMiddleware constructs middleware.
func NewSessionMiddleware(tokens *TokenManager, cookieName string) *SessionMiddleware {
	return &SessionMiddleware{tokens: tokens, cookieName: cookieName}
}

// Handle attaches the caller's user id when the cookie verifies.
func (m *SessionMiddleware) Handle(c *fiber.Ctx) error {
	token := c.Cookies(m.cookieName)
	if token == "" {
		return c.Next()
	}
	if userID, err := m.tokens.Verify(token); err == nil {
		c.Locals(userIDKey, userID)
	}
	return c.Next()
}

// RequireSignedIn rejects anonymous requests.
func RequireSignedIn() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := UserIDFromContext(c); !ok {
			return apperrors.NewUnauthenticated("You must be logged in to do that!")
		}
		return c.Next()
	}
}

// UserIDFromContext returns the authenticated user id, if any.
func UserIDFromContext(c *fiber.Ctx) (string, bool) {
	userID, ok := c.Locals(userIDKey).(string)
	return userID, ok && userID != ""
}
