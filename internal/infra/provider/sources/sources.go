// Package sources bootstraps the configured provider clients.
package sources

import (
	"go.uber.org/zap"

	"media-catalog-service/internal/config"
	"media-catalog-service/internal/domain"
	"media-catalog-service/internal/infra/provider"
	"media-catalog-service/internal/infra/provider/cinemeta"
	"media-catalog-service/internal/infra/provider/tmdb"
)

// NewProviders creates all configured provider clients. This is a
// factory function that centralizes provider construction while
// keeping dependency injection: the returned providers are registered
// into the registry by the caller.
//
// Parameters:
//   - cfg: Provider configuration containing endpoints, timeouts,
//     retry, and circuit breaker settings
//   - logger: Zap logger instance for structured logging
//
// Returns the domain.Provider instances ready for registration.
func NewProviders(cfg config.ProviderConfig, logger *zap.Logger) []domain.Provider {
	providers := make([]domain.Provider, 0, 2)

	providers = append(providers, tmdb.New(provider.FromEndpoint(cfg.TMDB), logger))
	providers = append(providers, cinemeta.New(provider.FromEndpoint(cfg.Cinemeta), logger))

	return providers
}
