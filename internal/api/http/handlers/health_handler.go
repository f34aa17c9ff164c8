package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/user-management/internal/observability"
	"github.com/spec-kit/user-management/internal/persistence"
)

// HealthHandler exposes liveness, readiness and counter snapshots.
type HealthHandler struct {
	pg      *persistence.Postgres
	redis   *persistence.Redis
	metrics *observability.Metrics
}

// NewHealthHandler constructs handler.
func NewHealthHandler(pg *persistence.Postgres, redis *persistence.Redis, metrics *observability.Metrics) *HealthHandler {
	return &HealthHandler{pg: pg, redis: redis, metrics: metrics}
}

// Live handles GET /health/live.
func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// Ready handles GET /health/ready. Postgres must answer; Redis is a cache
// and only degrades readiness to a warning.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	checks := fiber.Map{"postgres": "ok", "redis": "ok"}
	status := http.StatusOK

	if h.pg == nil || h.pg.PoolHandle() == nil {
		checks["postgres"] = "not configured"
		status = http.StatusServiceUnavailable
	} else if err := h.pg.PoolHandle().Ping(c.UserContext()); err != nil {
		checks["postgres"] = err.Error()
		status = http.StatusServiceUnavailable
	}

	if h.redis == nil {
		checks["redis"] = "not configured"
	} else if err := h.redis.Ping(c.UserContext()); err != nil {
		checks["redis"] = err.Error()
	}

	return c.Status(status).JSON(fiber.Map{"checks": checks})
}

// Metrics handles GET /health/metrics.
func (h *HealthHandler) Metrics(c *fiber.Ctx) error {
	requests, errors := h.metrics.Snapshot()
	return c.JSON(fiber.Map{
		"requests": requests,
		"errors":   errors,
	})
}
