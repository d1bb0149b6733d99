package handler

import (
	"context"
	"database/sql"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

const readinessTimeout = 2 * time.Second

type readinessCheck struct {
	name  string
	check func(ctx context.Context) error
}

func RegisterHealthRoutes(app fiber.Router, sqlDB *sql.DB, rdb *redis.Client) {
	app.Get("/livez", LivezHandler())
	app.Get("/readyz", ReadyzHandler(sqlDB, rdb))
}

func LivezHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "ok",
		})
	}
}

// ReadyzHandler pings the platform database and Redis.
func ReadyzHandler(sqlDB *sql.DB, rdb *redis.Client) fiber.Handler {
	checks := []readinessCheck{
		{name: "database", check: sqlDB.PingContext},
		{name: "redis", check: func(ctx context.Context) error { return rdb.Ping(ctx).Err() }},
	}

	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), readinessTimeout)
		defer cancel()

		status := "ready"
		statusCode := fiber.StatusOK
		results := fiber.Map{}
		for _, rc := range checks {
			if err := rc.check(ctx); err != nil {
				results[rc.name] = "down"
				status = "not_ready"
				statusCode = fiber.StatusServiceUnavailable
				continue
			}
			results[rc.name] = "ok"
		}

		return c.Status(statusCode).JSON(fiber.Map{
			"status": status,
			"checks": results,
		})
	}
}
