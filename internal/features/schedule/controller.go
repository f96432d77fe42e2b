package schedule

import (
	"errors"

	"go-contractor/internal/features/report"
	"go-contractor/internal/features/template"
	"go-contractor/pkg/utils"

	"github.com/gofiber/fiber/v2"
)

type ScheduleController struct {
	Service ScheduleService
}

func NewScheduleController(service ScheduleService) *ScheduleController {
	return &ScheduleController{Service: service}
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, ErrScheduleNotFound), errors.Is(err, template.ErrTemplateNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, ErrForbidden), errors.Is(err, template.ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, ErrInvalidCron), errors.Is(err, report.ErrUnsupportedFormat):
		return fiber.StatusBadRequest
	}
	return fiber.StatusInternalServerError
}

// CreateSchedule godoc
// @Summary Create schedule
// @Description Export a template on a cron expression
// @Tags schedules
// @Accept json
// @Produce json
// @Param schedule body schedule.CreateScheduleRequest true "Schedule"
// @Success 201 {object} schedule.Schedule
// @Failure 400 {object} map[string]interface{}
// @Router /api/schedules [post]
func (c *ScheduleController) CreateSchedule(ctx *fiber.Ctx) error {
	uid, err := utils.CurrentUserID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "User ID not found"})
	}

	var req CreateScheduleRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	sched, err := c.Service.CreateSchedule(ctx.UserContext(), uid, req)
	if err != nil {
		return ctx.Status(errorStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.Status(fiber.StatusCreated).JSON(sched)
}

// ListSchedules godoc
// @Summary List schedules
// @Tags schedules
// @Produce json
// @Success 200 {array} schedule.Schedule
// @Router /api/schedules [get]
func (c *ScheduleController) ListSchedules(ctx *fiber.Ctx) error {
	uid, err := utils.CurrentUserID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "User ID not found"})
	}

	schedules, err := c.Service.ListSchedules(ctx.UserContext(), uid)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(schedules)
}

// DeleteSchedule godoc
// @Summary Delete schedule
// @Tags schedules
// @Param id path string true "Schedule ID"
// @Success 204 {object} nil
// @Router /api/schedules/{id} [delete]
func (c *ScheduleController) DeleteSchedule(ctx *fiber.Ctx) error {
	uid, err := utils.CurrentUserID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "User ID not found"})
	}

	if err := c.Service.DeleteSchedule(ctx.UserContext(), uid, ctx.Params("id")); err != nil {
		return ctx.Status(errorStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.SendStatus(fiber.StatusNoContent)
}

// TriggerSchedule godoc
// @Summary Run schedule now
// @Tags schedules
// @Produce json
// @Param id path string true "Schedule ID"
// @Success 200 {object} schedule.Run
// @Router /api/schedules/{id}/trigger [post]
func (c *ScheduleController) TriggerSchedule(ctx *fiber.Ctx) error {
	uid, err := utils.CurrentUserID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "User ID not found"})
	}

	run, err := c.Service.TriggerSchedule(ctx.UserContext(), uid, ctx.Params("id"))
	if err != nil {
		return ctx.Status(errorStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(run)
}

// ListRuns godoc
// @Summary Schedule run history
// @Tags schedules
// @Produce json
// @Param id path string true "Schedule ID"
// @Param limit query int false "Max runs to return"
// @Success 200 {array} schedule.Run
// @Router /api/schedules/{id}/runs [get]
func (c *ScheduleController) ListRuns(ctx *fiber.Ctx) error {
	uid, err := utils.CurrentUserID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "User ID not found"})
	}

	runs, err := c.Service.ListRuns(ctx.UserContext(), uid, ctx.Params("id"), ctx.QueryInt("limit", 20))
	if err != nil {
		return ctx.Status(errorStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(runs)
}
