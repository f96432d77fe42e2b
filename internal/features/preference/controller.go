package preference

import (
	"errors"

	"go-contractor/pkg/utils"

	"github.com/gofiber/fiber/v2"
)

type PreferenceController struct {
	Service PreferenceService
}

func NewPreferenceController(service PreferenceService) *PreferenceController {
	return &PreferenceController{Service: service}
}

// Get godoc
// @Summary      Get column preferences for a view
// @Tags         preferences
// @Produce      json
// @Param        view  path  string  true  "View, usually a data source"
// @Success      200  {object}  preference.ViewPreferences
// @Router       /api/preferences/{view} [get]
func (c *PreferenceController) Get(ctx *fiber.Ctx) error {
	uid, err := utils.CurrentUserID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "User ID not found"})
	}

	prefs, err := c.Service.Get(ctx.UserContext(), uid, ctx.Params("view"))
	if err != nil {
		return ctx.Status(status(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(prefs)
}

// Put godoc
// @Summary      Save column preferences for a view
// @Tags         preferences
// @Accept       json
// @Produce      json
// @Param        view         path  string                              true  "View"
// @Param        preferences  body  preference.UpdatePreferencesRequest  true  "Layout"
// @Success      200  {object}  preference.ViewPreferences
// @Router       /api/preferences/{view} [put]
func (c *PreferenceController) Put(ctx *fiber.Ctx) error {
	uid, err := utils.CurrentUserID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "User ID not found"})
	}

	var req UpdatePreferencesRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	prefs, err := c.Service.Put(ctx.UserContext(), uid, ctx.Params("view"), req)
	if err != nil {
		return ctx.Status(status(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(prefs)
}

func status(err error) int {
	if errors.Is(err, ErrViewRequired) {
		return fiber.StatusBadRequest
	}
	return fiber.StatusInternalServerError
}
