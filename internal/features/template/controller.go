package template

import (
	"context"
	"errors"

	"go-contractor/internal/engine"
	"go-contractor/internal/features/report"
	"go-contractor/pkg/utils"

	"github.com/gofiber/fiber/v2"
)

type TemplateController struct {
	Service       TemplateService
	ReportService report.ReportService
}

func NewTemplateController(service TemplateService, reportService report.ReportService) *TemplateController {
	return &TemplateController{Service: service, ReportService: reportService}
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, ErrTemplateNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, ErrReadOnlyTemplate), errors.Is(err, ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, ErrNameRequired):
		return fiber.StatusBadRequest
	}
	return report.ErrorStatus(err)
}

func fail(ctx *fiber.Ctx, err error) error {
	return ctx.Status(errorStatus(err)).JSON(fiber.Map{"error": err.Error()})
}

// List godoc
// @Summary      List report templates
// @Tags         templates
// @Produce      json
// @Param        category  query  string  false  "standard, custom or ai-generated"
// @Success      200  {array}  engine.Template
// @Router       /api/templates [get]
func (c *TemplateController) List(ctx *fiber.Ctx) error {
	uid, err := utils.CurrentUserID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "User ID not found"})
	}

	var category *engine.Category
	if raw := ctx.Query("category"); raw != "" {
		cat := engine.Category(raw)
		if !cat.Valid() {
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid category"})
		}
		category = &cat
	}

	templates, err := c.Service.ListTemplates(ctx.UserContext(), uid, category)
	if err != nil {
		return fail(ctx, err)
	}
	if templates == nil {
		templates = []engine.Template{}
	}
	return ctx.JSON(templates)
}

// Get godoc
// @Summary      Get a report template
// @Tags         templates
// @Produce      json
// @Param        id  path  string  true  "Template ID"
// @Success      200  {object}  engine.Template
// @Router       /api/templates/{id} [get]
func (c *TemplateController) Get(ctx *fiber.Ctx) error {
	uid, err := utils.CurrentUserID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "User ID not found"})
	}
	t, err := c.Service.GetTemplate(ctx.UserContext(), uid, ctx.Params("id"))
	if err != nil {
		return fail(ctx, err)
	}
	return ctx.JSON(t)
}

// Instantiate godoc
// @Summary      Load a template into a configuration
// @Tags         templates
// @Produce      json
// @Param        id  path  string  true  "Template ID"
// @Success      200  {object}  template.Instance
// @Router       /api/templates/{id}/instantiate [get]
func (c *TemplateController) Instantiate(ctx *fiber.Ctx) error {
	uid, err := utils.CurrentUserID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "User ID not found"})
	}
	inst, err := c.Service.Instantiate(ctx.UserContext(), uid, ctx.Params("id"))
	if err != nil {
		return fail(ctx, err)
	}
	return ctx.JSON(inst)
}

// Run godoc
// @Summary      Run a template
// @Tags         templates
// @Produce      json
// @Param        id  path  string  true  "Template ID"
// @Success      200  {object}  report.RunResponse
// @Failure      502  {object}  map[string]string
// @Router       /api/templates/{id}/run [post]
func (c *TemplateController) Run(ctx *fiber.Ctx) error {
	uid, err := utils.CurrentUserID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "User ID not found"})
	}
	inst, err := c.Service.Instantiate(ctx.UserContext(), uid, ctx.Params("id"))
	if err != nil {
		return fail(ctx, err)
	}

	res, err := c.ReportService.Run(ctx.UserContext(), inst.Configuration)
	if err != nil {
		return fail(ctx, err)
	}
	return ctx.JSON(res)
}

// Export godoc
// @Summary      Export a template
// @Tags         templates
// @Produce      octet-stream
// @Param        id      path   string  true   "Template ID"
// @Param        format  query  string  false  "csv or xlsx"
// @Success      200
// @Router       /api/templates/{id}/export [get]
func (c *TemplateController) Export(ctx *fiber.Ctx) error {
	uid, err := utils.CurrentUserID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "User ID not found"})
	}
	inst, err := c.Service.Instantiate(ctx.UserContext(), uid, ctx.Params("id"))
	if err != nil {
		return fail(ctx, err)
	}

	file, err := c.ReportService.Export(ctx.UserContext(), inst.Configuration, inst.Template.Name, ctx.Query("format", "csv"))
	if err != nil {
		return fail(ctx, err)
	}
	return report.SendExport(ctx, file)
}

// Create godoc
// @Summary      Save a custom template
// @Tags         templates
// @Accept       json
// @Produce      json
// @Param        template  body  template.SaveTemplateRequest  true  "Template"
// @Success      201  {object}  engine.Template
// @Router       /api/templates [post]
func (c *TemplateController) Create(ctx *fiber.Ctx) error {
	return c.create(ctx, c.Service.SaveTemplate)
}

// CreateGenerated godoc
// @Summary      Store a generated template
// @Tags         templates
// @Accept       json
// @Produce      json
// @Param        template  body  template.SaveTemplateRequest  true  "Template"
// @Success      201  {object}  engine.Template
// @Router       /api/templates/generated [post]
func (c *TemplateController) CreateGenerated(ctx *fiber.Ctx) error {
	return c.create(ctx, c.Service.SaveGenerated)
}

type saveFunc func(ctx context.Context, userID string, req SaveTemplateRequest) (*engine.Template, error)

func (c *TemplateController) create(ctx *fiber.Ctx, save saveFunc) error {
	uid, err := utils.CurrentUserID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "User ID not found"})
	}

	var req SaveTemplateRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	t, err := save(ctx.UserContext(), uid, req)
	if err != nil {
		return fail(ctx, err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(t)
}

// Delete godoc
// @Summary      Delete a custom template
// @Tags         templates
// @Param        id  path  string  true  "Template ID"
// @Success      204
// @Failure      403  {object}  map[string]string
// @Router       /api/templates/{id} [delete]
func (c *TemplateController) Delete(ctx *fiber.Ctx) error {
	uid, err := utils.CurrentUserID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "User ID not found"})
	}
	if err := c.Service.DeleteTemplate(ctx.UserContext(), uid, ctx.Params("id")); err != nil {
		return fail(ctx, err)
	}
	return ctx.SendStatus(fiber.StatusNoContent)
}
