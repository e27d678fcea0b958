// Package middleware provides HTTP middleware for the API.
package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/healthcheck"

	"media-catalog-service/internal/domain"
)

// probeKey is read on every readiness probe; it never has to exist,
// the storage just has to answer.
const probeKey = "healthcheck:probe"

// NewHealthCheck creates a Fiber healthcheck middleware with Kubernetes-style endpoints.
//
// Endpoints:
//   - GET /livez  - Liveness probe (app is running)
//   - GET /readyz - Readiness probe (app is ready, cache storage reachable)
//
// This middleware should be registered BEFORE other routes.
func NewHealthCheck(kv domain.KeyValueStore) fiber.Handler {
	return healthcheck.New(healthcheck.Config{
		// Liveness probe - is the application running?
		LivenessEndpoint: "/livez",
		LivenessProbe: func(_ *fiber.Ctx) bool {
			return true // Always return true if the app is running
		},

		// Readiness probe - is the application ready to serve traffic?
		// Running without persistent storage is a supported mode, so a
		// nil store is ready.
		ReadinessEndpoint: "/readyz",
		ReadinessProbe: func(c *fiber.Ctx) bool {
			if kv == nil {
				return true
			}
			_, err := kv.GetItem(c.Context(), probeKey)

			return err == nil
		},
	})
}
