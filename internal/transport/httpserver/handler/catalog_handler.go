// Package handler provides HTTP handlers for the API.
package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"media-catalog-service/internal/app/service"
	"media-catalog-service/internal/domain"
	"media-catalog-service/internal/transport/httpserver/dto"
	"media-catalog-service/internal/validator"
)

// CatalogHandler handles catalog, search, detail, and load-more
// HTTP requests.
type CatalogHandler struct {
	catalogService  *service.CatalogService
	loadMoreService *service.LoadMoreService
	validator       *validator.Validator
	logger          *zap.Logger
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(catalogSvc *service.CatalogService, loadMoreSvc *service.LoadMoreService, v *validator.Validator, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalogService:  catalogSvc,
		loadMoreService: loadMoreSvc,
		validator:       v,
		logger:          logger,
	}
}

// GetAllCatalogs handles GET /api/v1/catalogs
func (h *CatalogHandler) GetAllCatalogs(c *fiber.Ctx) error {
	var req dto.CatalogRequest
	if err := c.QueryParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "invalid query parameters",
			Code:  "INVALID_PARAMS",
		})
	}
	if err := h.validator.Validate(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error:   "validation failed",
			Code:    "VALIDATION_ERROR",
			Details: err,
		})
	}

	all, err := h.catalogService.GetAllCatalogs(c.Context(), req.Page, req.Limit)
	if err != nil {
		h.logger.Error("get all catalogs failed", zap.Error(err))
		return respondError(c, err)
	}

	return c.JSON(dto.FromAllCatalogs(all))
}

// GetCatalog handles GET /api/v1/catalogs/:type
func (h *CatalogHandler) GetCatalog(c *fiber.Ctx) error {
	catalogType := c.Params("type")

	var req dto.CatalogRequest
	if err := c.QueryParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "invalid query parameters",
			Code:  "INVALID_PARAMS",
		})
	}
	if err := h.validator.Validate(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error:   "validation failed",
			Code:    "VALIDATION_ERROR",
			Details: err,
		})
	}

	catalog, err := h.catalogService.GetCatalog(c.Context(), req.ToCatalogQuery(catalogType))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(dto.CatalogResponse{Catalog: catalog})
}

// Search handles GET /api/v1/search
func (h *CatalogHandler) Search(c *fiber.Ctx) error {
	var req dto.SearchRequest
	if err := c.QueryParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "invalid query parameters",
			Code:  "INVALID_PARAMS",
		})
	}
	if err := h.validator.Validate(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error:   "validation failed",
			Code:    "VALIDATION_ERROR",
			Details: err,
		})
	}

	catalog, err := h.catalogService.Search(c.Context(), req.ToSearchQuery())
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(dto.CatalogResponse{Catalog: catalog})
}

// GetMediaDetail handles GET /api/v1/media/:id
func (h *CatalogHandler) GetMediaDetail(c *fiber.Ctx) error {
	id := c.Params("id")

	var req dto.DetailRequest
	if err := c.QueryParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "invalid query parameters",
			Code:  "INVALID_PARAMS",
		})
	}
	if err := h.validator.Validate(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error:   "validation failed",
			Code:    "VALIDATION_ERROR",
			Details: err,
		})
	}

	item, err := h.catalogService.GetMediaDetail(c.Context(), service.DetailQuery{
		DetailRequest: domain.DetailRequest{
			ID:        id,
			MediaType: domain.MediaType(req.Type),
			Language:  req.Language,
		},
		ProviderID: req.Provider,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(item)
}

// LoadMoreCatalogItems handles POST /api/v1/catalogs/load-more
func (h *CatalogHandler) LoadMoreCatalogItems(c *fiber.Ctx) error {
	return h.loadMore(c, h.loadMoreService.LoadMoreCatalogItems)
}

// LoadMorePeople handles POST /api/v1/people/load-more
func (h *CatalogHandler) LoadMorePeople(c *fiber.Ctx) error {
	return h.loadMore(c, h.loadMoreService.LoadMorePeople)
}

// LoadMoreFilmography handles POST /api/v1/filmography/load-more
func (h *CatalogHandler) LoadMoreFilmography(c *fiber.Ctx) error {
	return h.loadMore(c, h.loadMoreService.LoadMoreFilmography)
}

// loadMore parses and validates the shared load-more body, then runs
// the flavor-specific service call.
func (h *CatalogHandler) loadMore(c *fiber.Ctx, fn func(context.Context, service.LoadMoreQuery) (*service.LoadMoreResult, error)) error {
	var req dto.LoadMoreRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "invalid request body",
			Code:  "INVALID_BODY",
		})
	}
	if err := h.validator.Validate(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error:   "validation failed",
			Code:    "VALIDATION_ERROR",
			Details: err,
		})
	}

	result, err := fn(c.Context(), req.ToLoadMoreQuery())
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(dto.FromLoadMoreResult(result))
}

// GetCacheStatus handles GET /api/v1/media/:id/cache
func (h *CatalogHandler) GetCacheStatus(c *fiber.Ctx) error {
	id := c.Params("id")
	return c.JSON(dto.CacheStatusResponse{
		ID:     id,
		Cached: h.catalogService.IsMediaDetailCached(id),
	})
}

// InvalidateMediaCache handles DELETE /api/v1/media/:id/cache
func (h *CatalogHandler) InvalidateMediaCache(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.catalogService.InvalidateMediaCache(c.Context(), id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
