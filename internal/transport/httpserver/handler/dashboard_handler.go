package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"media-catalog-service/internal/infra/cache"
	"media-catalog-service/internal/registry"
)

// DashboardHandler handles dashboard-related HTTP requests.
type DashboardHandler struct {
	registry *registry.Registry
	cache    *cache.Store
	logger   *zap.Logger
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(reg *registry.Registry, store *cache.Store, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{
		registry: reg,
		cache:    store,
		logger:   logger,
	}
}

// Render handles GET /dashboard
// Renders the dashboard HTML page using Fiber's template engine.
func (h *DashboardHandler) Render(c *fiber.Ctx) error {
	stats := h.registry.Stats()
	cacheStats := h.cache.Stats()

	entries := 0
	for _, s := range cacheStats {
		entries += s.Entries
	}

	return c.Render("pages/dashboard", fiber.Map{
		"Title":         "Media Catalog Dashboard",
		"ProviderCount": stats.TotalProviders,
		"BySource":      stats.BySource,
		"ByCapability":  stats.ByCapability,
		"CacheEntries":  entries,
		"CacheStats":    cacheStats,
	}, "layouts/base")
}
