package report

import (
	"errors"
	"fmt"

	"go-contractor/internal/engine"

	"github.com/gofiber/fiber/v2"
)

type ReportController struct {
	ReportService ReportService
}

func NewReportController(reportService ReportService) *ReportController {
	return &ReportController{ReportService: reportService}
}

// ErrorStatus maps engine and report errors to HTTP status codes.
func ErrorStatus(err error) int {
	switch {
	case errors.Is(err, engine.ErrNoResult):
		return fiber.StatusBadGateway
	case errors.Is(err, engine.ErrUnknownDataSource),
		errors.Is(err, engine.ErrNoFields),
		errors.Is(err, engine.ErrInvalidLimit),
		errors.Is(err, engine.ErrUnknownField),
		errors.Is(err, ErrUnsupportedFormat):
		return fiber.StatusBadRequest
	}
	return fiber.StatusInternalServerError
}

// SendExport writes file as an attachment.
func SendExport(ctx *fiber.Ctx, file *ExportFile) error {
	ctx.Set(fiber.HeaderContentType, file.ContentType)
	ctx.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%s", file.Name))
	return ctx.Send(file.Data)
}

// Sources godoc
// @Summary      List data sources
// @Tags         reports
// @Produce      json
// @Success      200  {array}  report.SourceInfo
// @Router       /api/reports/sources [get]
func (c *ReportController) Sources(ctx *fiber.Ctx) error {
	return ctx.JSON(c.ReportService.Sources())
}

// Operators godoc
// @Summary      Legal filter operators
// @Tags         reports
// @Produce      json
// @Param        source  path   string  true   "Data source"
// @Param        type    query  string  false  "Field type"
// @Param        field   query  string  false  "Field key"
// @Success      200  {array}  string
// @Router       /api/reports/sources/{source}/operators [get]
func (c *ReportController) Operators(ctx *fiber.Ctx) error {
	ds := engine.DataSource(ctx.Params("source"))
	ft := engine.FieldType(ctx.Query("type"))
	field := ctx.Query("field")
	if ft == "" && field == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "type or field query parameter is required"})
	}

	ops, err := c.ReportService.Operators(ds, field, ft)
	if err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(ops)
}

// Run godoc
// @Summary      Run an ad-hoc report
// @Tags         reports
// @Accept       json
// @Produce      json
// @Param        config  body  engine.ConfigurationDocument  true  "Report configuration"
// @Success      200  {object}  report.RunResponse
// @Failure      400  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /api/reports/run [post]
func (c *ReportController) Run(ctx *fiber.Ctx) error {
	var doc engine.ConfigurationDocument
	if err := ctx.BodyParser(&doc); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	cfg, err := c.ReportService.Configure(doc)
	if err != nil {
		return ctx.Status(ErrorStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}

	res, err := c.ReportService.Run(ctx.UserContext(), cfg)
	if err != nil {
		return ctx.Status(ErrorStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(res)
}

// Export godoc
// @Summary      Export an ad-hoc report
// @Tags         reports
// @Accept       json
// @Produce      octet-stream
// @Param        format  query  string  false  "csv or xlsx"
// @Param        name    query  string  false  "Report name used for the file and sheet"
// @Param        config  body   engine.ConfigurationDocument  true  "Report configuration"
// @Success      200
// @Router       /api/reports/export [post]
func (c *ReportController) Export(ctx *fiber.Ctx) error {
	var doc engine.ConfigurationDocument
	if err := ctx.BodyParser(&doc); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	cfg, err := c.ReportService.Configure(doc)
	if err != nil {
		return ctx.Status(ErrorStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}

	file, err := c.ReportService.Export(ctx.UserContext(), cfg, ctx.Query("name"), ctx.Query("format", "csv"))
	if err != nil {
		return ctx.Status(ErrorStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return SendExport(ctx, file)
}
