package system

import (
	"go-contractor/pkg/utils"

	"github.com/gofiber/fiber/v2"
)

type DebugController struct{}

func NewDebugController() *DebugController {
	return &DebugController{}
}

// GetCurrentUser godoc
// @Summary      Get current user info
// @Description  Returns the identity templates, preferences and schedules are scoped to
// @Tags         debug
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]interface{}
// @Router       /api/debug/me [get]
func (c *DebugController) GetCurrentUser(ctx *fiber.Ctx) error {
	userID, err := utils.CurrentUserID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	}
	roles, _ := ctx.Locals("roles").([]string)
	return ctx.JSON(fiber.Map{
		"user_id": userID,
		"roles":   roles,
	})
}
