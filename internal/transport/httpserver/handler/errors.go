package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"media-catalog-service/internal/domain"
	"media-catalog-service/internal/transport/httpserver/dto"
)

// respondError maps domain error kinds to HTTP status codes: validation
// failures are the caller's fault, missing providers or catalogs are
// 404, exceeded deadlines are 504, and failing upstreams are 502.
func respondError(c *fiber.Ctx, err error) error {
	switch {
	case domain.IsValidation(err):
		var ve *domain.ValidationError
		errors.As(err, &ve)
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error:   ve.Message,
			Code:    "VALIDATION_ERROR",
			Details: fiber.Map{"field": ve.Field},
		})
	case domain.IsNotFound(err):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: err.Error(),
			Code:  "NOT_FOUND",
		})
	case domain.IsTimeout(err):
		return c.Status(fiber.StatusGatewayTimeout).JSON(dto.ErrorResponse{
			Error: err.Error(),
			Code:  "UPSTREAM_TIMEOUT",
		})
	case domain.IsProviderError(err):
		return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{
			Error: err.Error(),
			Code:  "PROVIDER_ERROR",
		})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: "internal server error",
			Code:  "INTERNAL_ERROR",
		})
	}
}
