package middleware

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/quantbasket/quantbasket/internal/auth"
)

// UserIDKey is the fiber.Ctx locals key the JWT middleware stores the
// authenticated user identifier under.
const UserIDKey = "user_id"

// JWTAuth returns a middleware that validates access tokens, including the
// token-version check that invalidates tokens after logout.
func JWTAuth(sessions *auth.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authz := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			return fiber.NewError(http.StatusUnauthorized, "missing bearer token")
		}
		token := strings.TrimSpace(authz[len("Bearer "):])
		userID, err := sessions.Verify(c.UserContext(), token)
		if err != nil {
			return fiber.NewError(http.StatusUnauthorized, "invalid token")
		}
		c.Locals(UserIDKey, userID)
		return c.Next()
	}
}

// UserID extracts the authenticated user set by JWTAuth.
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals(UserIDKey).(string)
	return id
}
