package main

import (
	"context"
	"fmt"
	"log"

	common_api "go-contractor/internal/common/api"
	"go-contractor/internal/config"
	"go-contractor/internal/database"
	"go-contractor/internal/datastore"
	"go-contractor/internal/engine"
	"go-contractor/internal/features/audit"
	"go-contractor/internal/features/preference"
	"go-contractor/internal/features/report"
	"go-contractor/internal/features/schedule"
	"go-contractor/internal/features/system"
	"go-contractor/internal/features/template"
	"go-contractor/internal/logger"
	"go-contractor/internal/metrics"
	"go-contractor/internal/middleware"
	"go-contractor/pkg/utils"

	_ "go-contractor/docs" // Import swagger docs

	"github.com/gofiber/fiber/v2"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// NewFiberServer creates a new Fiber app instance
func NewFiberServer() *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	app.Use(middleware.CORSMiddleware())

	return app
}

// AsRoute tags the constructor so Fx adds it to the "routes" group.
func AsRoute(f any) any {
	return fx.Annotate(
		f,
		fx.As(new(common_api.Route)),
		fx.ResultTags(`group:"routes"`),
	)
}

// RegisterAllRoutes calls Setup() on every member of the "routes" group.
func RegisterAllRoutes(app *fiber.App, routes []common_api.Route, logger *zap.Logger) {
	logger.Info("Registering routes", zap.Int("count", len(routes)))
	for _, route := range routes {
		logger.Debug("Setting up route", zap.String("type", fmt.Sprintf("%T", route)))
		route.Setup(app)
	}
}

var RegisterAllRoutesWithAnnotation = fx.Annotate(
	RegisterAllRoutes,
	fx.ParamTags(``, `group:"routes"`, ``),
)

// StartServer starts Fiber in a goroutine and shuts it down when the app exits.
func StartServer(lc fx.Lifecycle, app *fiber.App, cfg *config.Config) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				port := fmt.Sprintf(":%s", cfg.Port)
				if err := app.Listen(port); err != nil {
					log.Fatalf("Server failed to start: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return app.Shutdown()
		},
	})
}

// StartScheduler runs scheduled exports for the lifetime of the app.
func StartScheduler(lc fx.Lifecycle, svc schedule.ScheduleService) {
	lc.Append(fx.Hook{
		OnStart: svc.Start,
		OnStop:  svc.Stop,
	})
}

func NewTranslator(catalog *engine.Catalog, cfg *config.Config) *engine.Translator {
	return engine.NewTranslator(catalog, cfg.ReportDefaultLimit, cfg.ReportMaxLimit)
}

func NewShaper(cfg *config.Config) *engine.Shaper {
	return engine.NewShaper(cfg.ReportCurrencySymbol, cfg.ReportDateLayout, engine.DateFallback(cfg.ReportDateFallback))
}

// @title           go-contractor Report API
// @version         1.0
// @description     Declarative report builder for construction management data.

// @host            localhost:8080
// @BasePath        /
func main() {
	app := fx.New(
		fx.Provide(
			// Load Config
			config.LoadConfig,

			// Initialize Logger
			logger.NewLogger,

			// Initialize Fiber Server
			NewFiberServer,

			// Initialize Database
			database.NewDatabase,
			datastore.NewClient,

			// Report engine
			engine.NewConstructionCatalog,
			NewTranslator,
			NewShaper,
			metrics.NewDefaultMetrics,
			func(m *metrics.Metrics) engine.Recorder { return m },
			func(m *metrics.Metrics) report.Recorder { return m },
			func(m *metrics.Metrics) schedule.Recorder { return m },
			engine.NewExecutor,

			// Initialize Repository
			audit.NewAuditRepository,
			template.NewTemplateRepository,
			schedule.NewScheduleRepository,
			preference.NewStore,
			schedule.NewSink,

			// Initialize Service
			audit.NewAuditService,
			report.NewReportService,
			template.NewTemplateService,
			preference.NewPreferenceService,
			schedule.NewScheduleService,

			// Initialize Controller
			audit.NewAuditController,
			system.NewDebugController,
			report.NewReportController,
			report.NewLiveController,
			template.NewTemplateController,
			preference.NewPreferenceController,
			schedule.NewScheduleController,

			// Initialize API Routes
			AsRoute(audit.NewAuditApi),
			AsRoute(system.NewDebugApi),
			AsRoute(system.NewHealthApi),
			AsRoute(system.NewSwaggerApi),
			AsRoute(report.NewReportApi),
			AsRoute(template.NewTemplateApi),
			AsRoute(preference.NewPreferenceApi),
			AsRoute(schedule.NewScheduleApi),
		),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
		fx.Invoke(
			func(cfg *config.Config) { utils.SetSecret(cfg.JWTSecret) },
			// Register Routes & Start
			RegisterAllRoutesWithAnnotation,
			StartServer,
			StartScheduler,
		),
	)

	app.Run()
}
