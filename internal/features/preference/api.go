package preference

import (
	"go-contractor/internal/config"
	"go-contractor/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type PreferenceApi struct {
	Controller *PreferenceController
	Config     *config.Config
}

func NewPreferenceApi(controller *PreferenceController, config *config.Config) *PreferenceApi {
	return &PreferenceApi{Controller: controller, Config: config}
}

func (api *PreferenceApi) Setup(app *fiber.App) {
	group := app.Group("/api/preferences", middleware.AuthMiddleware(api.Config.SkipAuth))

	group.Get("/:view", api.Controller.Get)
	group.Put("/:view", api.Controller.Put)
}
