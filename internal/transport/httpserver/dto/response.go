package dto

import (
	"time"

	"media-catalog-service/internal/app/service"
	"media-catalog-service/internal/domain"
)

// CatalogResponse wraps a single catalog. Domain types carry their own
// JSON shape; the wrapper adds nothing beyond the envelope.
type CatalogResponse struct {
	Catalog *domain.Catalog `json:"catalog"`
}

// CatalogsResponse represents the multi-catalog fan-out result.
type CatalogsResponse struct {
	Catalogs []*domain.Catalog `json:"catalogs"`
	Failed   []string          `json:"failed,omitempty"`
	Count    int               `json:"count"`
}

// FromAllCatalogs converts the fan-out result to a response.
func FromAllCatalogs(all *service.AllCatalogs) CatalogsResponse {
	return CatalogsResponse{
		Catalogs: all.Catalogs,
		Failed:   all.Failed,
		Count:    len(all.Catalogs),
	}
}

// LoadMoreResponse represents a load-more batch.
type LoadMoreResponse struct {
	Items      []*domain.CatalogItem   `json:"items"`
	Pagination domain.PaginationInfo   `json:"pagination"`
	Context    domain.CatalogContext   `json:"catalog_context"`
	Metrics    service.LoadMoreMetrics `json:"metrics"`
}

// FromLoadMoreResult converts a load-more result to a response.
func FromLoadMoreResult(result *service.LoadMoreResult) LoadMoreResponse {
	return LoadMoreResponse{
		Items:      result.Items,
		Pagination: result.Pagination,
		Context:    result.Context,
		Metrics:    result.Metrics,
	}
}

// ProviderResponse describes one registered provider.
type ProviderResponse struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	SourceID     string   `json:"source_id"`
	Capabilities []string `json:"capabilities"`
	Priority     int      `json:"priority"`
}

// FromProvider converts a domain provider to a response.
func FromProvider(p domain.Provider) ProviderResponse {
	caps := make([]string, 0, len(p.Capabilities()))
	for _, c := range p.Capabilities() {
		caps = append(caps, string(c))
	}
	return ProviderResponse{
		ID:           p.ID(),
		Name:         p.Name(),
		SourceID:     p.SourceID(),
		Capabilities: caps,
		Priority:     p.Priority(),
	}
}

// CacheStatusResponse reports whether a detail entry is cached.
type CacheStatusResponse struct {
	ID     string `json:"id"`
	Cached bool   `json:"cached"`
}

// SweepResponse reports the outcome of a manual cache sweep.
type SweepResponse struct {
	Removed   int    `json:"removed"`
	Timestamp string `json:"timestamp"`
}

// NewSweepResponse builds a SweepResponse for now.
func NewSweepResponse(removed int) SweepResponse {
	return SweepResponse{
		Removed:   removed,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string      `json:"error"`
	Code    string      `json:"code,omitempty"`
	Details interface{} `json:"details,omitempty"`
}
