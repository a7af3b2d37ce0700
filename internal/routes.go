package internal

import (
	"time"

	"log/slog"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"searchlens/internal/http"
)

// NewRouter builds the fiber application with every API route mounted.
func NewRouter(deps http.Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               deps.Config.AppName,
		DisableStartupMessage: true,
		ErrorHandler:          http.ErrorHandler(deps.Logger),
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PATCH,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, " + http.HeaderSessionID,
	}))
	app.Use(requestLogger(deps.Logger))

	// Health check endpoint
	app.Get("/_health", http.HealthIndexAction(deps))

	// Prometheus scrape endpoint
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api/v1")

	api.Get("/properties", http.PropertyIndexAction(deps))

	api.Post("/sessions", http.SessionCreateAction(deps))
	api.Get("/sessions/:id", http.SessionShowAction(deps))
	api.Patch("/sessions/:id", http.SessionUpdateAction(deps))

	api.Post("/reports/compare", http.ReportCompareAction(deps))
	api.Post("/reports/compare/export", http.ReportExportAction(deps))
	api.Get("/reports/top", http.ReportTopAction(deps))

	api.Post("/inspections", http.InspectionRunAction(deps))
	api.Post("/inspections/export", http.InspectionExportAction(deps))

	api.Get("/sitemaps", http.SitemapIndexAction(deps))
	api.Post("/sitemaps/insights", http.SitemapInsightsAction(deps))
	api.Post("/sitemaps/export", http.SitemapExportAction(deps))

	api.Get("/url-lists", http.URLListIndexAction(deps))
	api.Post("/url-lists", http.URLListCreateAction(deps))
	api.Post("/url-lists/parse", http.URLListParseAction(deps))
	api.Get("/url-lists/:name", http.URLListShowAction(deps))
	api.Delete("/url-lists/:name", http.URLListDeleteAction(deps))

	return app
}

// requestLogger logs one line per handled request, health probes excluded.
func requestLogger(logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		if c.Path() == "/_health" {
			return err
		}

		logger.Info("HTTP request",
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.Int("status", c.Response().StatusCode()),
			slog.Duration("duration", time.Since(start)),
			slog.String("request_id", c.GetRespHeader(fiber.HeaderXRequestID)),
		)
		return err
	}
}
