package http

import (
	"time"

	"log/slog"

	"github.com/gofiber/fiber/v2"

	"searchlens/internal/config"
)

// HealthStatus represents the health check response
type HealthStatus struct {
	Status      string    `json:"status"`
	Environment string    `json:"env"`
	Version     string    `json:"version"`
	Timestamp   time.Time `json:"timestamp"`
	DBStatus    string    `json:"db_status"`
}

// HealthIndexAction handles the health check endpoint
func HealthIndexAction(deps Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbStatus := "ok"

		// Check database connectivity
		if deps.DB == nil {
			dbStatus = "error"
			deps.Logger.Error("Database connection unavailable")
		} else {
			sqlDB, err := deps.DB.DB()
			if err != nil {
				dbStatus = "error"
				deps.Logger.Error("Database connection error", slog.Any("error", err))
			} else if err := sqlDB.Ping(); err != nil {
				dbStatus = "error"
				deps.Logger.Error("Database ping failed", slog.Any("error", err))
			}
		}

		health := HealthStatus{
			Status:      "ok",
			Environment: deps.Config.Environment,
			Version:     config.Version,
			Timestamp:   time.Now(),
			DBStatus:    dbStatus,
		}

		if dbStatus != "ok" {
			health.Status = "degraded"
		}

		return c.JSON(health)
	}
}
