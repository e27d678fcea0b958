package cache

import (
	"strconv"
	"strings"

	"media-catalog-service/internal/domain"
)

// Keys are deterministic fingerprints built by joining, in a fixed
// field order, every parameter that affects the result. Identical
// inputs always produce the identical key; keys carry no timestamp or
// random component.

const keySep = "|"

// CatalogKey fingerprints a catalog listing request.
func CatalogKey(req domain.CatalogRequest) string {
	return strings.Join([]string{
		"catalog",
		req.CatalogType,
		string(req.MediaType),
		strconv.Itoa(req.Page),
		strconv.Itoa(req.Limit),
		req.Region,
		req.Language,
		req.Genre,
		strconv.Itoa(req.Year),
	}, keySep)
}

// DetailKey fingerprints a media detail request. The item id leads the
// key so prefix invalidation by id works.
func DetailKey(req domain.DetailRequest) string {
	return strings.Join([]string{
		req.ID,
		string(req.MediaType),
		req.Language,
	}, keySep)
}

// SearchKey fingerprints a search request.
func SearchKey(req domain.SearchRequest) string {
	return strings.Join([]string{
		"search",
		req.Query,
		string(req.MediaType),
		strconv.Itoa(req.Page),
		strconv.Itoa(req.Limit),
		req.Language,
	}, keySep)
}
