package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/fgmcolas/ShakeItUp/internal/apperr"
)

const localsUserID = "user_id"

// Middleware parses the Authorization header, verifies the bearer token and
// stores the subject user id in the request locals.
func Middleware(tokens *TokenService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := strings.TrimSpace(c.Get("Authorization"))
		if header == "" {
			return apperr.Auth("missing token")
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return apperr.Auth("invalid token")
		}

		userID, err := tokens.Verify(parts[1])
		if err != nil {
			return err
		}

		c.Locals(localsUserID, userID)
		return c.Next()
	}
}

// UserID returns the authenticated caller's id set by Middleware.
func UserID(c *fiber.Ctx) (string, error) {
	uid, ok := c.Locals(localsUserID).(string)
	if !ok || strings.TrimSpace(uid) == "" {
		return "", apperr.Auth("missing token")
	}
	return uid, nil
}
