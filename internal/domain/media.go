// Package domain contains the core business logic and entities.
// This package has no external dependencies (only stdlib).
package domain

import (
	"encoding/json"
)

// MediaType represents the kind of media entity a catalog item describes.
type MediaType string

const (
	MediaTypeMovie      MediaType = "movie"
	MediaTypeSeries     MediaType = "series"
	MediaTypePerson     MediaType = "person"
	MediaTypeCollection MediaType = "collection"
)

// ExternalIDs maps a source name (e.g. "imdb", "tmdb") to the native id
// that source uses for the same entity.
type ExternalIDs map[string]string

// ContentContext binds a catalog item back to the provider, catalog,
// request, and page position that produced it. Raw holds the untouched
// provider-native payload for downstream enrichment and is never mutated.
type ContentContext struct {
	ProviderID        string          `json:"provider_id"`
	CatalogID         string          `json:"catalog_id"`
	CatalogType       string          `json:"catalog_type"`
	RequestID         string          `json:"request_id"`
	Page              int             `json:"page"`
	PositionInCatalog int             `json:"position_in_catalog"`
	Raw               json.RawMessage `json:"raw,omitempty"`
}

// CatalogItem is one media or person entity as returned by a provider,
// mapped into the common shape. Immutable after creation.
type CatalogItem struct {
	ID        string    `json:"id"`
	MediaType MediaType `json:"media_type"`

	// Display fields
	Title         string  `json:"title"`
	OriginalTitle string  `json:"original_title,omitempty"`
	Overview      string  `json:"overview,omitempty"`
	PosterURL     string  `json:"poster_url,omitempty"`
	BackdropURL   string  `json:"backdrop_url,omitempty"`
	ReleaseDate   string  `json:"release_date,omitempty"`
	VoteAverage   float64 `json:"vote_average,omitempty"`
	VoteCount     int     `json:"vote_count,omitempty"`

	// Movie-specific
	Runtime int   `json:"runtime,omitempty"`
	Budget  int64 `json:"budget,omitempty"`

	// Series-specific
	SeasonCount  int `json:"season_count,omitempty"`
	EpisodeCount int `json:"episode_count,omitempty"`

	// Person-in-filmography role fields
	Character  string `json:"character,omitempty"`
	Job        string `json:"job,omitempty"`
	Department string `json:"department,omitempty"`

	ExternalIDs ExternalIDs `json:"external_ids,omitempty"`

	Context ContentContext `json:"content_context"`
}

// IsMovie returns true if the item describes a movie.
func (i *CatalogItem) IsMovie() bool {
	return i.MediaType == MediaTypeMovie
}

// IsSeries returns true if the item describes a TV series.
func (i *CatalogItem) IsSeries() bool {
	return i.MediaType == MediaTypeSeries
}

// IsPerson returns true if the item describes a person.
func (i *CatalogItem) IsPerson() bool {
	return i.MediaType == MediaTypePerson
}

// Quality returns the fraction of the five display fields (title,
// overview, image, release date, rating) present on the item. It is a
// diagnostic signal only, never used for filtering.
func (i *CatalogItem) Quality() float64 {
	present := 0
	if i.Title != "" {
		present++
	}
	if i.Overview != "" {
		present++
	}
	if i.PosterURL != "" || i.BackdropURL != "" {
		present++
	}
	if i.ReleaseDate != "" {
		present++
	}
	if i.VoteAverage > 0 {
		present++
	}
	return float64(present) / 5.0
}
