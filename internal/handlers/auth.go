package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"finderent-backend/internal/services"
	"finderent-backend/internal/utils"
)

// Protect verifies the bearer token (header or access_token query param),
// loads the account and rejects tokens issued before the last password
// change. The user id and record land in Locals for the handlers.
func Protect(userService *services.UserService) fiber.Handler {
	secret := utils.GetEnv("JWT_SECRET", "secret")

	return func(c *fiber.Ctx) error {
		token := c.Query("access_token")
		if token == "" {
			authHeader := c.Get("Authorization")
			if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
				token = authHeader[7:]
			}
		}
		if token == "" {
			return NewAppError(fiber.StatusUnauthorized, "you are not logged in")
		}

		claims, err := services.ValidateToken(token, secret)
		if err != nil {
			return NewAppError(fiber.StatusUnauthorized, "invalid token")
		}

		userID, ok := claims["user_id"].(string)
		if !ok || userID == "" {
			return NewAppError(fiber.StatusUnauthorized, "invalid token claims")
		}

		user, err := userService.GetByID(c.Context(), userID)
		if err != nil {
			return NewAppError(fiber.StatusUnauthorized, "the user belonging to this token no longer exists")
		}

		if iat, ok := claims["iat"].(float64); ok {
			if services.ChangedPasswordAfter(user, time.Unix(int64(iat), 0)) {
				return NewAppError(fiber.StatusUnauthorized, "password was changed recently, please log in again")
			}
		}

		c.Locals("user_id", userID)
		c.Locals("user", user)
		return c.Next()
	}
}
