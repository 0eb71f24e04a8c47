package auth

import (
	"profile-directory/core/session"

	"github.com/gofiber/fiber/v2"
)

// RequireUser rejects requests until a user is logged in.
func RequireUser(sess *session.Context) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if sess.IsLoading() {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "session is loading"})
		}
		if sess.User() == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "authentication required"})
		}
		return c.Next()
	}
}
