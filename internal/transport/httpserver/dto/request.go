// Package dto provides Data Transfer Objects for HTTP requests and responses.
package dto

import (
	"media-catalog-service/internal/app/service"
	"media-catalog-service/internal/domain"
)

// CatalogRequest represents the query parameters for a catalog listing.
type CatalogRequest struct {
	Provider string `query:"provider" validate:"omitempty,max=64"`
	Page     int    `query:"page" validate:"omitempty,min=1"`
	Limit    int    `query:"limit" validate:"omitempty,min=1,max=100"`
	Region   string `query:"region" validate:"omitempty,len=2"`
	Language string `query:"language" validate:"omitempty,max=10"`
	Genre    string `query:"genre" validate:"omitempty,max=50"`
	Year     int    `query:"year" validate:"omitempty,min=1870,max=2100"`
}

// ToCatalogQuery converts the request to a service catalog query.
func (r *CatalogRequest) ToCatalogQuery(catalogType string) service.CatalogQuery {
	return service.CatalogQuery{
		CatalogRequest: domain.CatalogRequest{
			CatalogType: catalogType,
			Page:        r.Page,
			Limit:       r.Limit,
			Region:      r.Region,
			Language:    r.Language,
			Genre:       r.Genre,
			Year:        r.Year,
		},
		ProviderID: r.Provider,
	}
}

// SearchRequest represents the query parameters for a search.
type SearchRequest struct {
	Query    string `query:"q" validate:"required,max=200"`
	Type     string `query:"type" validate:"omitempty,oneof=movie series person"`
	Provider string `query:"provider" validate:"omitempty,max=64"`
	Page     int    `query:"page" validate:"omitempty,min=1"`
	Limit    int    `query:"limit" validate:"omitempty,min=1,max=100"`
	Language string `query:"language" validate:"omitempty,max=10"`
}

// ToSearchQuery converts the request to a service search query.
func (r *SearchRequest) ToSearchQuery() service.SearchQuery {
	return service.SearchQuery{
		SearchRequest: domain.SearchRequest{
			Query:     r.Query,
			MediaType: domain.MediaType(r.Type),
			Page:      r.Page,
			Limit:     r.Limit,
			Language:  r.Language,
		},
		ProviderID: r.Provider,
	}
}

// DetailRequest represents the query parameters for a media detail lookup.
type DetailRequest struct {
	Type     string `query:"type" validate:"omitempty,oneof=movie series person"`
	Provider string `query:"provider" validate:"omitempty,max=64"`
	Language string `query:"language" validate:"omitempty,max=10"`
}

// LoadMoreRequest represents the JSON body of a load-more call. The
// catalog context echoes what the caller received with the original
// catalog; its identity fields are preserved on the response.
type LoadMoreRequest struct {
	ProviderID  string                 `json:"provider_id" validate:"required,max=64"`
	CatalogID   string                 `json:"catalog_id" validate:"required,max=256"`
	CatalogType string                 `json:"catalog_type" validate:"omitempty,max=64"`
	PersonID    string                 `json:"person_id" validate:"omitempty,max=64"`
	Page        int                    `json:"page" validate:"required,min=1"`
	Limit       int                    `json:"limit" validate:"omitempty,min=1,max=100"`
	Known       *domain.PaginationInfo `json:"known_pagination,omitempty"`
	Context     *domain.CatalogContext `json:"catalog_context,omitempty"`
}

// ToLoadMoreQuery converts the request to a service load-more query.
func (r *LoadMoreRequest) ToLoadMoreQuery() service.LoadMoreQuery {
	return service.LoadMoreQuery{
		ProviderID:  r.ProviderID,
		CatalogID:   r.CatalogID,
		CatalogType: r.CatalogType,
		SubjectID:   r.PersonID,
		Page:        r.Page,
		Limit:       r.Limit,
		Known:       r.Known,
		Original:    r.Context,
	}
}

// SeasonsRequest represents the query parameters for season retrieval.
type SeasonsRequest struct {
	Provider        string `query:"provider" validate:"omitempty,max=64"`
	IncludeSpecials bool   `query:"include_specials"`
	TimeoutSeconds  int    `query:"timeout" validate:"omitempty,min=1,max=60"`
}
