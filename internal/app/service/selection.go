package service

import (
	"context"

	"go.uber.org/zap"

	"media-catalog-service/internal/domain"
	"media-catalog-service/internal/registry"
)

// resolveProvider resolves an explicitly requested provider id. The id
// must exist and the provider must declare the expected capability;
// either miss is reported as not-found.
func resolveProvider(reg *registry.Registry, id string, capability domain.Capability) (domain.Provider, error) {
	p, ok := reg.GetProvider(id)
	if !ok {
		return nil, domain.NewNotFoundError("provider", id)
	}
	if !p.HasCapability(capability) {
		return nil, domain.NewNotFoundError("provider", id)
	}
	return p, nil
}

// autoSelectProvider applies the two-tier selection rule used for
// every capability lookup: prefer the provider whose id matches the
// originating content context, otherwise fall back to the
// highest-priority provider supporting the capability.
func autoSelectProvider(reg *registry.Registry, capability domain.Capability, preferredID string) (domain.Provider, error) {
	if preferredID != "" {
		if p, ok := reg.GetProvider(preferredID); ok && p.HasCapability(capability) {
			return p, nil
		}
	}

	candidates := reg.GetProvidersByCapability(capability)
	if len(candidates) == 0 {
		return nil, domain.NewNotFoundError("capability", string(capability))
	}
	return candidates[0], nil
}

// ensureInitialized runs the provider's idempotent initialization.
// A failure is fatal for the current call only.
func ensureInitialized(ctx context.Context, p domain.Provider, logger *zap.Logger) error {
	if err := p.Initialize(ctx); err != nil {
		logger.Error("provider initialization failed",
			zap.String("provider_id", p.ID()),
			zap.Error(err),
		)
		return err
	}
	return nil
}
