package system

import (
	"context"
	"time"

	"go-contractor/internal/common/api"
	"go-contractor/internal/datastore"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type HealthApi struct {
	Client datastore.Client
}

func NewHealthApi(client datastore.Client) api.Route {
	return &HealthApi{Client: client}
}

func (h *HealthApi) Setup(app *fiber.App) {
	app.Get("/health", h.HealthCheck)
	app.Get("/health/ready", h.Ready)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
}

// HealthCheck godoc
// @Summary      Health Check
// @Description  Check if the server is up
// @Tags         health
// @Produce      plain
// @Success      200  {string}  string  "OK"
// @Router       /health [get]
func (h *HealthApi) HealthCheck(c *fiber.Ctx) error {
	return c.SendString("OK")
}

// Ready godoc
// @Summary      Readiness
// @Description  Pings the report data store
// @Tags         health
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      503  {object}  map[string]interface{}
// @Router       /health/ready [get]
func (h *HealthApi) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 3*time.Second)
	defer cancel()

	if err := h.Client.Ping(ctx); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "unavailable",
			"driver": h.Client.Driver(),
		})
	}
	return c.JSON(fiber.Map{"status": "ok", "driver": h.Client.Driver()})
}
