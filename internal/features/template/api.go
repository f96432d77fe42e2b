package template

import (
	"go-contractor/internal/config"
	"go-contractor/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type TemplateApi struct {
	Controller *TemplateController
	Config     *config.Config
}

func NewTemplateApi(controller *TemplateController, config *config.Config) *TemplateApi {
	return &TemplateApi{Controller: controller, Config: config}
}

func (api *TemplateApi) Setup(app *fiber.App) {
	group := app.Group("/api/templates", middleware.AuthMiddleware(api.Config.SkipAuth))

	group.Get("/", api.Controller.List)
	group.Post("/", api.Controller.Create)
	group.Post("/generated", api.Controller.CreateGenerated)
	group.Get("/:id", api.Controller.Get)
	group.Delete("/:id", api.Controller.Delete)
	group.Get("/:id/instantiate", api.Controller.Instantiate)
	group.Post("/:id/run", api.Controller.Run)
	group.Get("/:id/export", api.Controller.Export)
}
