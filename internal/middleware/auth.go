package middleware

import (
	"strings"

	"go-contractor/pkg/utils"

	"github.com/gofiber/fiber/v2"
)

const devUserID = "dev-user"

// AuthMiddleware validates the bearer token and stores the caller's identity
// and roles in request locals.
func AuthMiddleware(skipAuth bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if skipAuth {
			// development identity
			claims := &utils.UserClaims{UserID: devUserID, Roles: []string{"admin"}}
			setIdentity(c, claims)
			return c.Next()
		}

		authHeader := c.Get("Authorization")
		if authHeader == "" {
			// browsers cannot set headers on websocket upgrades
			if tok := c.Query("token"); tok != "" {
				authHeader = "Bearer " + tok
			}
		}
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Authorization header required",
			})
		}

		token, found := strings.CutPrefix(authHeader, "Bearer ")
		if !found || token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid authorization header format",
			})
		}

		claims, err := utils.ValidateToken(token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid token",
			})
		}

		setIdentity(c, claims)
		return c.Next()
	}
}

func setIdentity(c *fiber.Ctx, claims *utils.UserClaims) {
	c.Locals(utils.UserClaimsKey, claims)
	c.Locals(utils.UserIDKey, claims.UserID)
	c.Locals("roles", claims.Roles)
}
