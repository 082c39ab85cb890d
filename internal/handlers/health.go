package handlers

import (
	"context"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"

	"photo-archive/internal/models"
)

// Pinger reports database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports service and database status. The response is
// always 200; a broken database shows up in the body, not the status code.
func HealthHandler(db Pinger, version string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res := models.HealthResponse{
			Status:   "healthy",
			Version:  version,
			Database: "connected",
		}

		ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
		defer cancel()
		if err := db.Ping(ctx); err != nil {
			slog.Error("database health check failed", "error", err)
			res.Status = "unhealthy"
			res.Database = "disconnected"
		}

		return c.JSON(res)
	}
}
