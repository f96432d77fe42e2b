package schedule

import (
	"go-contractor/internal/config"
	"go-contractor/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type ScheduleApi struct {
	controller *ScheduleController
	config     *config.Config
}

func NewScheduleApi(controller *ScheduleController, config *config.Config) *ScheduleApi {
	return &ScheduleApi{controller: controller, config: config}
}

func (h *ScheduleApi) Setup(app *fiber.App) {
	schedules := app.Group("/api/schedules", middleware.AuthMiddleware(h.config.SkipAuth))

	schedules.Get("/", h.controller.ListSchedules)
	schedules.Post("/", h.controller.CreateSchedule)
	schedules.Delete("/:id", h.controller.DeleteSchedule)
	schedules.Post("/:id/trigger", h.controller.TriggerSchedule)
	schedules.Get("/:id/runs", h.controller.ListRuns)
}
