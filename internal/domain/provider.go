package domain

import (
	"context"
	"encoding/json"
)

// Capability is a named operation family a provider may or may not
// support. Providers declare a closed set of capability tags; the
// registry indexes providers by tag rather than by concrete type.
type Capability string

const (
	CapabilityCatalog     Capability = "catalog"
	CapabilitySearch      Capability = "search"
	CapabilityFilmography Capability = "filmography"
	CapabilitySeasons     Capability = "seasons"
)

// Provider is the base contract every provider variant exposes.
// Capabilities and Priority are immutable after registration.
// Implementations: internal/infra/provider/tmdb, internal/infra/provider/cinemeta
type Provider interface {
	// ID returns the unique identifier for this provider instance.
	ID() string

	// Name returns the human-readable provider name.
	Name() string

	// SourceID returns the logical external service this provider
	// belongs to (e.g. "tmdb", "stremio").
	SourceID() string

	// Capabilities returns the capability tags this provider supports.
	Capabilities() []Capability

	// HasCapability reports whether the provider supports a capability.
	HasCapability(c Capability) bool

	// Priority orders providers for auto-selection; lower is preferred.
	Priority() int

	// PaginatesServerSide reports whether the provider performs true
	// server-side pagination. Providers returning all data per subject
	// in one call answer false, and the load-more algorithm re-derives
	// pagination from a fresh full fetch for them.
	PaginatesServerSide() bool

	// Initialize prepares the provider for use. Idempotent; may fail.
	Initialize(ctx context.Context) error
}

// CatalogRequest holds the parameters for a single catalog fetch.
type CatalogRequest struct {
	CatalogType string
	MediaType   MediaType
	Page        int
	Limit       int
	Region      string
	Language    string
	Genre       string
	Year        int
}

// SearchRequest holds the parameters for a provider search.
type SearchRequest struct {
	Query     string
	MediaType MediaType
	Page      int
	Limit     int
	Language  string
}

// FilmographyRequest holds the parameters for a person filmography fetch.
type FilmographyRequest struct {
	PersonID string
	Page     int
	Limit    int
	Language string
}

// DetailRequest holds the parameters for a single item detail fetch.
type DetailRequest struct {
	ID        string
	MediaType MediaType
	Language  string
}

// LoadMoreRequest holds the parameters for a provider "load more items"
// call against an existing catalog.
type LoadMoreRequest struct {
	CatalogID   string
	CatalogType string
	SubjectID   string
	Page        int
	Limit       int
}

// ProviderItem is one provider-native item with the fields the common
// mapper understands plus the untouched payload.
type ProviderItem struct {
	ID            string
	MediaType     MediaType
	Title         string
	OriginalTitle string
	Overview      string
	PosterURL     string
	BackdropURL   string
	ReleaseDate   string
	VoteAverage   float64
	VoteCount     int
	Runtime       int
	Budget        int64
	SeasonCount   int
	EpisodeCount  int
	Character     string
	Job           string
	Department    string
	ExternalIDs   ExternalIDs
	Raw           json.RawMessage
}

// ProviderPage is one native page of results with the pagination the
// provider reported for it.
type ProviderPage struct {
	CatalogID  string
	Name       string
	Page       int
	TotalPages int
	TotalItems int
	Items      []ProviderItem
}

// CatalogProvider is the contract for catalog-capable providers.
type CatalogProvider interface {
	Provider

	// CatalogTypes returns the closed set of catalog-type strings this
	// provider serves.
	CatalogTypes() []string

	// SupportsCatalogType reports whether a catalog type is in the set.
	SupportsCatalogType(catalogType string) bool

	// GetCatalog fetches one catalog page.
	GetCatalog(ctx context.Context, req CatalogRequest) (*ProviderPage, error)

	// LoadMoreItems fetches a specific page for an existing catalog.
	LoadMoreItems(ctx context.Context, req LoadMoreRequest) (*ProviderPage, error)

	// GetDetail fetches a single item's full detail.
	GetDetail(ctx context.Context, req DetailRequest) (*ProviderItem, error)
}

// SearchProvider is the contract for search-capable providers.
type SearchProvider interface {
	Provider

	// Search fetches one page of search results.
	Search(ctx context.Context, req SearchRequest) (*ProviderPage, error)
}

// FilmographyProvider is the contract for filmography-capable providers.
type FilmographyProvider interface {
	Provider

	// GetFilmography fetches one page of a person's filmography.
	GetFilmography(ctx context.Context, req FilmographyRequest) (*ProviderPage, error)
}

// SeasonSummary is the lightweight season descriptor reported with
// top-level series metadata.
type SeasonSummary struct {
	Number       int    `json:"number"`
	Name         string `json:"name"`
	EpisodeCount int    `json:"episode_count"`
	AirDate      string `json:"air_date,omitempty"`
}

// SeriesDetail is top-level series metadata including the season list.
type SeriesDetail struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Seasons []SeasonSummary `json:"seasons"`
}

// Episode is one episode's detail.
type Episode struct {
	SeasonNumber  int     `json:"season_number"`
	EpisodeNumber int     `json:"episode_number"`
	Name          string  `json:"name"`
	Overview      string  `json:"overview,omitempty"`
	AirDate       string  `json:"air_date,omitempty"`
	StillURL      string  `json:"still_url,omitempty"`
	Runtime       int     `json:"runtime,omitempty"`
	VoteAverage   float64 `json:"vote_average,omitempty"`
}

// Season is one season's full detail including episodes. A season that
// failed to hydrate is represented with its summary metadata, zero
// episodes, and Hydrated false.
type Season struct {
	Number       int       `json:"number"`
	Name         string    `json:"name"`
	Overview     string    `json:"overview,omitempty"`
	AirDate      string    `json:"air_date,omitempty"`
	EpisodeCount int       `json:"episode_count"`
	Episodes     []Episode `json:"episodes"`
	Hydrated     bool      `json:"hydrated"`
}

// SeasonsResult is the outcome of hydrating every season of a series.
// CompletenessScore is successfully loaded seasons over total
// non-special seasons; diagnostic only.
type SeasonsResult struct {
	SeriesID          string   `json:"series_id"`
	SeriesName        string   `json:"series_name"`
	Seasons           []Season `json:"seasons"`
	FailedSeasons     []int    `json:"failed_seasons,omitempty"`
	CompletenessScore float64  `json:"completeness_score"`
}

// SeasonProvider is the contract for season/episode-capable providers.
type SeasonProvider interface {
	Provider

	// GetSeriesDetail fetches top-level series metadata including the
	// season list.
	GetSeriesDetail(ctx context.Context, seriesID string) (*SeriesDetail, error)

	// GetSeason fetches one season's full detail including episodes.
	GetSeason(ctx context.Context, seriesID string, seasonNumber int) (*Season, error)

	// GetEpisode fetches one episode's detail.
	GetEpisode(ctx context.Context, seriesID string, seasonNumber, episodeNumber int) (*Episode, error)
}
