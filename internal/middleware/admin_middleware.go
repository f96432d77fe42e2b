package middleware

import (
	"slices"
	"strings"

	"go-contractor/pkg/utils"

	"github.com/gofiber/fiber/v2"
)

// AdminMiddleware only lets callers holding the admin role through.
// It must run after AuthMiddleware.
func AdminMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, err := utils.CurrentUserID(c); err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Unauthorized",
			})
		}

		roles, _ := c.Locals("roles").([]string)
		isAdmin := slices.ContainsFunc(roles, func(r string) bool {
			return strings.EqualFold(r, "admin")
		})
		if !isAdmin {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Access denied: Admin role required",
			})
		}

		return c.Next()
	}
}
