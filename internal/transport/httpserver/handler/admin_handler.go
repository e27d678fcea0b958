package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"media-catalog-service/internal/infra/cache"
	"media-catalog-service/internal/registry"
	"media-catalog-service/internal/transport/httpserver/dto"
)

// AdminHandler handles provider introspection and cache administration.
type AdminHandler struct {
	registry *registry.Registry
	cache    *cache.Store
	logger   *zap.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(reg *registry.Registry, store *cache.Store, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		registry: reg,
		cache:    store,
		logger:   logger,
	}
}

// GetProviders handles GET /api/v1/admin/providers
func (h *AdminHandler) GetProviders(c *fiber.Ctx) error {
	providers := h.registry.GetAllProviders()
	out := make([]dto.ProviderResponse, 0, len(providers))
	for _, p := range providers {
		out = append(out, dto.FromProvider(p))
	}

	return c.JSON(fiber.Map{
		"providers": out,
		"stats":     h.registry.Stats(),
	})
}

// GetCacheStats handles GET /api/v1/admin/cache/stats
func (h *AdminHandler) GetCacheStats(c *fiber.Ctx) error {
	return c.JSON(h.cache.Stats())
}

// SweepCache handles POST /api/v1/admin/cache/sweep
func (h *AdminHandler) SweepCache(c *fiber.Ctx) error {
	removed := h.cache.Sweep()
	h.logger.Info("manual cache sweep", zap.Int("removed", removed))

	return c.JSON(dto.NewSweepResponse(removed))
}

// ClearCache handles POST /api/v1/admin/cache/clear
func (h *AdminHandler) ClearCache(c *fiber.Ctx) error {
	h.cache.ClearAll(c.Context())
	h.logger.Info("cache cleared via admin endpoint")

	return c.SendStatus(fiber.StatusNoContent)
}
