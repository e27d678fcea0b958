// Package tmdb implements the TMDB-style REST provider. It serves
// catalog, search, filmography, and season capabilities with true
// server-side pagination.
package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"media-catalog-service/internal/domain"
	"media-catalog-service/internal/infra/provider"
)

const (
	providerID = "tmdb_main"
	sourceID   = "tmdb"
)

// catalogEndpoints is the closed set of catalog types this provider
// serves, mapped to their API paths.
var catalogEndpoints = map[string]struct {
	path      string
	mediaType domain.MediaType
}{
	"popular_movies":   {path: "/movie/popular", mediaType: domain.MediaTypeMovie},
	"trending_movies":  {path: "/trending/movie/week", mediaType: domain.MediaTypeMovie},
	"top_rated_movies": {path: "/movie/top_rated", mediaType: domain.MediaTypeMovie},
	"popular_series":   {path: "/tv/popular", mediaType: domain.MediaTypeSeries},
	"trending_series":  {path: "/trending/tv/week", mediaType: domain.MediaTypeSeries},
}

// Client implements the catalog, search, filmography, and season
// capability contracts against a TMDB-style API.
type Client struct {
	client   *resty.Client
	cb       *gobreaker.CircuitBreaker[*resty.Response]
	priority int
	logger   *zap.Logger

	initMu      sync.Mutex
	initialized bool
}

// New creates a new TMDB provider client.
func New(cfg provider.ClientConfig, logger *zap.Logger) *Client {
	return &Client{
		client:   provider.NewRestyClient(cfg),
		cb:       provider.NewCircuitBreaker[*resty.Response](providerID, cfg.CB),
		priority: cfg.Priority,
		logger:   logger,
	}
}

func (c *Client) ID() string       { return providerID }
func (c *Client) Name() string     { return "TMDB" }
func (c *Client) SourceID() string { return sourceID }

func (c *Client) Capabilities() []domain.Capability {
	return []domain.Capability{
		domain.CapabilityCatalog,
		domain.CapabilitySearch,
		domain.CapabilityFilmography,
		domain.CapabilitySeasons,
	}
}

func (c *Client) HasCapability(capability domain.Capability) bool {
	for _, have := range c.Capabilities() {
		if have == capability {
			return true
		}
	}
	return false
}

func (c *Client) Priority() int             { return c.priority }
func (c *Client) PaginatesServerSide() bool { return true }

// Initialize verifies the API is reachable. Idempotent: a successful
// initialization is latched, a failed one is retried on the next call.
func (c *Client) Initialize(ctx context.Context) error {
	c.initMu.Lock()
	defer c.initMu.Unlock()

	if c.initialized {
		return nil
	}

	resp, err := c.client.R().SetContext(ctx).Get("/configuration")
	if err != nil {
		return &domain.ProviderError{ProviderID: providerID, Op: "initialize", Err: err}
	}
	if resp.IsError() {
		return &domain.ProviderError{
			ProviderID: providerID,
			Op:         "initialize",
			Err:        fmt.Errorf("status %d", resp.StatusCode()),
		}
	}

	c.initialized = true
	c.logger.Info("provider initialized", zap.String("provider_id", providerID))
	return nil
}

// CatalogTypes returns the closed set of supported catalog types.
func (c *Client) CatalogTypes() []string {
	types := make([]string, 0, len(catalogEndpoints))
	for t := range catalogEndpoints {
		types = append(types, t)
	}
	return types
}

// SupportsCatalogType reports whether the catalog type is served.
func (c *Client) SupportsCatalogType(catalogType string) bool {
	_, ok := catalogEndpoints[catalogType]
	return ok
}

// GetCatalog fetches one catalog page.
func (c *Client) GetCatalog(ctx context.Context, req domain.CatalogRequest) (*domain.ProviderPage, error) {
	endpoint, ok := catalogEndpoints[req.CatalogType]
	if !ok {
		return nil, domain.NewValidationError("catalog_type",
			fmt.Sprintf("unsupported catalog type %q", req.CatalogType))
	}

	params := map[string]string{"page": strconv.Itoa(req.Page)}
	if req.Language != "" {
		params["language"] = req.Language
	}
	if req.Region != "" {
		params["region"] = req.Region
	}
	if req.Genre != "" {
		params["with_genres"] = req.Genre
	}
	if req.Year > 0 {
		params["year"] = strconv.Itoa(req.Year)
	}

	var result pagedResponse
	if err := c.getJSON(ctx, endpoint.path, params, &result); err != nil {
		return nil, &domain.ProviderError{
			ProviderID:  providerID,
			Op:          "get catalog",
			CatalogType: req.CatalogType,
			Page:        req.Page,
			Err:         err,
		}
	}

	page := c.toPage(req.CatalogType, req.Page, req.Limit, endpoint.mediaType, &result)
	c.logger.Debug("tmdb catalog fetched",
		zap.String("catalog_type", req.CatalogType),
		zap.Int("page", req.Page),
		zap.Int("items", len(page.Items)),
	)
	return page, nil
}

// LoadMoreItems fetches a specific page for an existing catalog. TMDB
// paginates server-side, so this is a plain catalog fetch at the
// requested page.
func (c *Client) LoadMoreItems(ctx context.Context, req domain.LoadMoreRequest) (*domain.ProviderPage, error) {
	return c.GetCatalog(ctx, domain.CatalogRequest{
		CatalogType: req.CatalogType,
		Page:        req.Page,
		Limit:       req.Limit,
	})
}

// GetDetail fetches a single item's full detail.
func (c *Client) GetDetail(ctx context.Context, req domain.DetailRequest) (*domain.ProviderItem, error) {
	var path string
	switch req.MediaType {
	case domain.MediaTypeSeries:
		path = "/tv/" + req.ID
	case domain.MediaTypePerson:
		path = "/person/" + req.ID
	default:
		path = "/movie/" + req.ID
	}

	params := map[string]string{}
	if req.Language != "" {
		params["language"] = req.Language
	}

	resp, err := c.execute(ctx, path, params)
	if err != nil {
		return nil, &domain.ProviderError{ProviderID: providerID, Op: "get detail", Err: err}
	}

	raw := json.RawMessage(resp.Body())
	var row item
	if err := json.Unmarshal(raw, &row); err != nil {
		return nil, &domain.ProviderError{ProviderID: providerID, Op: "get detail", Err: err}
	}

	mapped := row.toProviderItem(req.MediaType, raw)
	return &mapped, nil
}

// Search fetches one page of multi-type search results.
func (c *Client) Search(ctx context.Context, req domain.SearchRequest) (*domain.ProviderPage, error) {
	params := map[string]string{
		"query": req.Query,
		"page":  strconv.Itoa(req.Page),
	}
	if req.Language != "" {
		params["language"] = req.Language
	}

	var result pagedResponse
	if err := c.getJSON(ctx, "/search/multi", params, &result); err != nil {
		return nil, &domain.ProviderError{
			ProviderID: providerID,
			Op:         "search",
			Page:       req.Page,
			Err:        err,
		}
	}

	return c.toPage("search", req.Page, req.Limit, req.MediaType, &result), nil
}

// GetFilmography fetches a person's combined credits. The API returns
// the full filmography in one call, so pagination is derived locally
// and the requested page sliced out.
func (c *Client) GetFilmography(ctx context.Context, req domain.FilmographyRequest) (*domain.ProviderPage, error) {
	params := map[string]string{}
	if req.Language != "" {
		params["language"] = req.Language
	}

	var result creditsResponse
	if err := c.getJSON(ctx, "/person/"+req.PersonID+"/combined_credits", params, &result); err != nil {
		return nil, &domain.ProviderError{
			ProviderID: providerID,
			Op:         "get filmography",
			Page:       req.Page,
			Err:        err,
		}
	}

	all := make([]domain.ProviderItem, 0, len(result.Cast)+len(result.Crew))
	for _, raw := range result.Cast {
		var row item
		if err := json.Unmarshal(raw, &row); err != nil {
			continue
		}
		all = append(all, row.toProviderItem(domain.MediaTypeMovie, raw))
	}
	for _, raw := range result.Crew {
		var row item
		if err := json.Unmarshal(raw, &row); err != nil {
			continue
		}
		all = append(all, row.toProviderItem(domain.MediaTypeMovie, raw))
	}

	limit := req.Limit
	if limit <= 0 {
		limit = len(all)
	}
	totalPages := 0
	if limit > 0 {
		totalPages = (len(all) + limit - 1) / limit
	}

	start := (req.Page - 1) * limit
	if start > len(all) {
		start = len(all)
	}
	end := start + limit
	if end > len(all) {
		end = len(all)
	}

	return &domain.ProviderPage{
		CatalogID:  domain.CatalogID(providerID, "filmography:"+req.PersonID, req.Page, req.Limit),
		Name:       "Filmography",
		Page:       req.Page,
		TotalPages: totalPages,
		TotalItems: len(all),
		Items:      all[start:end],
	}, nil
}

// GetSeriesDetail fetches top-level series metadata including the
// season list.
func (c *Client) GetSeriesDetail(ctx context.Context, seriesID string) (*domain.SeriesDetail, error) {
	var result seriesResponse
	if err := c.getJSON(ctx, "/tv/"+seriesID, nil, &result); err != nil {
		return nil, &domain.ProviderError{ProviderID: providerID, Op: "get series detail", Err: err}
	}

	detail := &domain.SeriesDetail{
		ID:      strconv.Itoa(result.ID),
		Name:    result.Name,
		Seasons: make([]domain.SeasonSummary, 0, len(result.Seasons)),
	}
	for _, s := range result.Seasons {
		detail.Seasons = append(detail.Seasons, domain.SeasonSummary{
			Number:       s.SeasonNumber,
			Name:         s.Name,
			EpisodeCount: s.EpisodeCount,
			AirDate:      s.AirDate,
		})
	}
	return detail, nil
}

// GetSeason fetches one season's full detail including episodes.
func (c *Client) GetSeason(ctx context.Context, seriesID string, seasonNumber int) (*domain.Season, error) {
	var result seasonResponse
	path := fmt.Sprintf("/tv/%s/season/%d", seriesID, seasonNumber)
	if err := c.getJSON(ctx, path, nil, &result); err != nil {
		return nil, &domain.ProviderError{ProviderID: providerID, Op: "get season", Err: err}
	}

	season := &domain.Season{
		Number:       result.SeasonNumber,
		Name:         result.Name,
		Overview:     result.Overview,
		AirDate:      result.AirDate,
		EpisodeCount: len(result.Episodes),
		Episodes:     make([]domain.Episode, 0, len(result.Episodes)),
		Hydrated:     true,
	}
	for _, e := range result.Episodes {
		season.Episodes = append(season.Episodes, e.toEpisode())
	}
	return season, nil
}

// GetEpisode fetches one episode's detail.
func (c *Client) GetEpisode(ctx context.Context, seriesID string, seasonNumber, episodeNumber int) (*domain.Episode, error) {
	var result episodeResponse
	path := fmt.Sprintf("/tv/%s/season/%d/episode/%d", seriesID, seasonNumber, episodeNumber)
	if err := c.getJSON(ctx, path, nil, &result); err != nil {
		return nil, &domain.ProviderError{ProviderID: providerID, Op: "get episode", Err: err}
	}

	episode := result.toEpisode()
	return &episode, nil
}

// toPage assembles a ProviderPage from a paged envelope, bounding items
// to the requested limit.
func (c *Client) toPage(catalogType string, page, limit int, mediaType domain.MediaType, resp *pagedResponse) *domain.ProviderPage {
	items := make([]domain.ProviderItem, 0, len(resp.Results))
	for _, raw := range resp.Results {
		if limit > 0 && len(items) >= limit {
			break
		}
		var row item
		if err := json.Unmarshal(raw, &row); err != nil {
			c.logger.Warn("skipping malformed result row", zap.Error(err))
			continue
		}
		items = append(items, row.toProviderItem(mediaType, raw))
	}

	reportedPage := resp.Page
	if reportedPage == 0 {
		reportedPage = page
	}

	return &domain.ProviderPage{
		CatalogID:  domain.CatalogID(providerID, catalogType, page, limit),
		Name:       catalogType,
		Page:       reportedPage,
		TotalPages: resp.TotalPages,
		TotalItems: resp.TotalResults,
		Items:      items,
	}
}

// getJSON executes a GET through the circuit breaker and decodes the
// body into out.
func (c *Client) getJSON(ctx context.Context, path string, params map[string]string, out any) error {
	resp, err := c.execute(ctx, path, params)
	if err != nil {
		return err
	}
	return json.Unmarshal(resp.Body(), out)
}

func (c *Client) execute(ctx context.Context, path string, params map[string]string) (*resty.Response, error) {
	resp, err := c.cb.Execute(func() (*resty.Response, error) {
		r, err := c.client.R().
			SetContext(ctx).
			SetQueryParams(params).
			Get(path)
		if err != nil {
			return nil, err
		}
		if r.IsError() {
			return nil, fmt.Errorf("status %d", r.StatusCode())
		}
		return r, nil
	})
	if err != nil {
		c.logger.Warn("tmdb request failed",
			zap.String("path", path),
			zap.String("state", c.cb.State().String()),
			zap.Error(err),
		)
		return nil, err
	}
	return resp, nil
}
