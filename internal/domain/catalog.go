package domain

import (
	"fmt"
	"time"
)

// PaginationInfo describes the pagination state a provider reported for
// one catalog page. Totals are not assumed monotonic across calls:
// upstream catalogs are live APIs and may shrink or grow between
// requests.
type PaginationInfo struct {
	Page       int  `json:"page"`
	TotalPages int  `json:"total_pages"`
	TotalItems int  `json:"total_items"`
	HasMore    bool `json:"has_more"`
}

// NewPaginationInfo builds a PaginationInfo from provider-reported
// values, deriving HasMore.
func NewPaginationInfo(page, totalPages, totalItems int) PaginationInfo {
	return PaginationInfo{
		Page:       page,
		TotalPages: totalPages,
		TotalItems: totalItems,
		HasMore:    page < totalPages,
	}
}

// PageInfo is the per-fetch pagination snapshot recorded in a
// CatalogContext. Regenerated on every fetch.
type PageInfo struct {
	Page         int       `json:"page"`
	TotalPages   int       `json:"total_pages"`
	TotalItems   int       `json:"total_items"`
	HasMorePages bool      `json:"has_more_pages"`
	LastFetchAt  time.Time `json:"last_fetch_at"`
	RequestID    string    `json:"request_id"`
}

// CatalogContext is the traceability record binding a catalog to the
// provider, catalog type, and request that produced it. The load-more
// protocol preserves the caller's identity fields while always adopting
// the current PageInfo.
type CatalogContext struct {
	ProviderID  string    `json:"provider_id"`
	SourceID    string    `json:"source_id"`
	CatalogID   string    `json:"catalog_id"`
	CatalogType string    `json:"catalog_type"`
	MediaType   MediaType `json:"media_type"`
	PageInfo    PageInfo  `json:"page_info"`
}

// CatalogMetadata carries fetch diagnostics for a catalog.
type CatalogMetadata struct {
	FetchedAt time.Time `json:"fetched_at"`
	FromCache bool      `json:"from_cache"`
	ItemCount int       `json:"item_count"`
	// Quality is the average item Quality over the page. Diagnostic
	// only; no caller depends on the formula.
	Quality float64 `json:"quality"`
}

// Catalog is one named, paginated batch of items from one
// provider/catalog-type/page combination. A Catalog value is immutable
// once returned; load-more produces a new item batch and pagination
// snapshot, never an in-place mutation.
type Catalog struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	MediaType  MediaType       `json:"media_type"`
	Items      []*CatalogItem  `json:"items"`
	Pagination PaginationInfo  `json:"pagination"`
	Context    CatalogContext  `json:"catalog_context"`
	Metadata   CatalogMetadata `json:"metadata"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// CatalogID builds the composite catalog identifier from the provider
// id, catalog type, and page parameters.
func CatalogID(providerID, catalogType string, page, limit int) string {
	return fmt.Sprintf("%s:%s:p%d:l%d", providerID, catalogType, page, limit)
}

// AverageQuality returns the mean item Quality over a page of items,
// or 0 for an empty page.
func AverageQuality(items []*CatalogItem) float64 {
	if len(items) == 0 {
		return 0
	}
	sum := 0.0
	for _, item := range items {
		sum += item.Quality()
	}
	return sum / float64(len(items))
}
