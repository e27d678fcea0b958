package cinemeta

import (
	"encoding/json"
	"strconv"

	"media-catalog-service/internal/domain"
)

// catalogResponse is the Stremio addon catalog envelope. The addon
// returns the full catalog in one response; there is no server-side
// pagination.
type catalogResponse struct {
	Metas []json.RawMessage `json:"metas"`
}

// metaResponse is the /meta/{type}/{id}.json envelope.
type metaResponse struct {
	Meta meta `json:"meta"`
}

// meta is one Stremio meta object. For series it carries the full
// episode list in Videos.
type meta struct {
	ID          string   `json:"id"`
	Type        string   `json:"type"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Poster      string   `json:"poster,omitempty"`
	Background  string   `json:"background,omitempty"`
	ReleaseInfo string   `json:"releaseInfo,omitempty"`
	IMDBRating  string   `json:"imdbRating,omitempty"`
	Videos      []video  `json:"videos,omitempty"`
	Genres      []string `json:"genres,omitempty"`
}

// video is one episode entry inside a series meta.
type video struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Season    int    `json:"season"`
	Episode   int    `json:"episode"`
	Released  string `json:"released,omitempty"`
	Overview  string `json:"overview,omitempty"`
	Thumbnail string `json:"thumbnail,omitempty"`
}

// toProviderItem maps a Stremio meta to the common provider item.
func (m *meta) toProviderItem(raw json.RawMessage) domain.ProviderItem {
	mediaType := domain.MediaTypeMovie
	if m.Type == "series" {
		mediaType = domain.MediaTypeSeries
	}

	out := domain.ProviderItem{
		ID:          m.ID,
		MediaType:   mediaType,
		Title:       m.Name,
		Overview:    m.Description,
		PosterURL:   m.Poster,
		BackdropURL: m.Background,
		ReleaseDate: m.ReleaseInfo,
		ExternalIDs: domain.ExternalIDs{},
		Raw:         raw,
	}
	if rating, ok := parseRating(m.IMDBRating); ok {
		out.VoteAverage = rating
	}
	// Stremio ids for movies/series are IMDb ids (tt...).
	if len(m.ID) > 2 && m.ID[:2] == "tt" {
		out.ExternalIDs["imdb"] = m.ID
	}
	return out
}

// parseRating parses the addon's string rating ("8.4").
func parseRating(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	r, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return r, true
}
