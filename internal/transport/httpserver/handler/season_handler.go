package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"media-catalog-service/internal/app/service"
	"media-catalog-service/internal/transport/httpserver/dto"
	"media-catalog-service/internal/validator"
)

// SeasonHandler handles season and episode HTTP requests.
type SeasonHandler struct {
	seasonService *service.SeasonService
	validator     *validator.Validator
	logger        *zap.Logger
}

// NewSeasonHandler creates a new SeasonHandler.
func NewSeasonHandler(seasonSvc *service.SeasonService, v *validator.Validator, logger *zap.Logger) *SeasonHandler {
	return &SeasonHandler{
		seasonService: seasonSvc,
		validator:     v,
		logger:        logger,
	}
}

// GetAllSeasons handles GET /api/v1/series/:id/seasons
func (h *SeasonHandler) GetAllSeasons(c *fiber.Ctx) error {
	seriesID := c.Params("id")

	var req dto.SeasonsRequest
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

	result, err := h.seasonService.GetAllSeasons(c.Context(), service.SeasonsQuery{
		SeriesID:        seriesID,
		ProviderID:      req.Provider,
		IncludeSpecials: req.IncludeSpecials,
		Timeout:         time.Duration(req.TimeoutSeconds) * time.Second,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(result)
}

// GetSeason handles GET /api/v1/series/:id/seasons/:number
func (h *SeasonHandler) GetSeason(c *fiber.Ctx) error {
	seriesID := c.Params("id")
	number, err := c.ParamsInt("number")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "season number must be an integer",
			Code:  "INVALID_PARAMS",
		})
	}

	season, err := h.seasonService.GetSeason(c.Context(), service.SeasonQuery{
		SeriesID:     seriesID,
		SeasonNumber: number,
		ProviderID:   c.Query("provider"),
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(season)
}

// GetEpisode handles GET /api/v1/series/:id/seasons/:number/episodes/:episode
func (h *SeasonHandler) GetEpisode(c *fiber.Ctx) error {
	seriesID := c.Params("id")
	number, err := c.ParamsInt("number")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "season number must be an integer",
			Code:  "INVALID_PARAMS",
		})
	}
	episodeNumber, err := c.ParamsInt("episode")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "episode number must be an integer",
			Code:  "INVALID_PARAMS",
		})
	}

	episode, err := h.seasonService.GetEpisodeDetails(c.Context(), service.EpisodeQuery{
		SeriesID:      seriesID,
		SeasonNumber:  number,
		EpisodeNumber: episodeNumber,
		ProviderID:    c.Query("provider"),
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(episode)
}
