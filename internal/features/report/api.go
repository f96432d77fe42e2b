package report

import (
	"go-contractor/internal/config"
	"go-contractor/internal/middleware"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

type ReportApi struct {
	ReportController *ReportController
	LiveController   *LiveController
	Config           *config.Config
}

func NewReportApi(reportController *ReportController, liveController *LiveController, config *config.Config) *ReportApi {
	return &ReportApi{
		ReportController: reportController,
		LiveController:   liveController,
		Config:           config,
	}
}

func (api *ReportApi) Setup(app *fiber.App) {
	group := app.Group("/api/reports", middleware.AuthMiddleware(api.Config.SkipAuth))

	group.Get("/sources", api.ReportController.Sources)
	group.Get("/sources/:source/operators", api.ReportController.Operators)
	group.Post("/run", api.ReportController.Run)
	group.Post("/export", api.ReportController.Export)

	group.Use("/live", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	group.Get("/live", websocket.New(api.LiveController.HandleLive))
}
