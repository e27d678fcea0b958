package provider

import (
	"media-catalog-service/internal/config"
)

// FromEndpoint converts a configured provider endpoint into a
// ClientConfig.
func FromEndpoint(e config.ProviderEndpoint) ClientConfig {
	return ClientConfig{
		BaseURL:  e.BaseURL,
		APIKey:   e.APIKey,
		Priority: e.Priority,
		Timeout:  e.Timeout,
		Retry: RetryConfig{
			MaxAttempts: e.Retry.MaxAttempts,
			WaitTime:    e.Retry.WaitTime,
			MaxWaitTime: e.Retry.MaxWaitTime,
		},
		CB: CBConfig{
			MaxRequests:  e.CB.MaxRequests,
			Interval:     e.CB.Interval,
			Timeout:      e.CB.Timeout,
			FailureRatio: e.CB.FailureRatio,
		},
	}
}
