// Package cinemeta implements a Stremio-style addon provider. The
// addon returns full catalogs and full series metadata in single
// responses, so the client emulates pagination locally and reports
// PaginatesServerSide() == false.
package cinemeta

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"media-catalog-service/internal/domain"
	"media-catalog-service/internal/infra/provider"
)

const (
	providerID = "cinemeta_main"
	sourceID   = "stremio"
)

// catalogPaths maps catalog types to the addon's catalog resources.
var catalogPaths = map[string]struct {
	path      string
	mediaType domain.MediaType
}{
	"top_movies": {path: "/catalog/movie/top.json", mediaType: domain.MediaTypeMovie},
	"top_series": {path: "/catalog/series/top.json", mediaType: domain.MediaTypeSeries},
}

// Client implements the catalog and season capability contracts
// against a Stremio-style addon.
type Client struct {
	client   *resty.Client
	cb       *gobreaker.CircuitBreaker[*resty.Response]
	priority int
	logger   *zap.Logger

	initMu      sync.Mutex
	initialized bool
}

// New creates a new Cinemeta provider client.
func New(cfg provider.ClientConfig, logger *zap.Logger) *Client {
	return &Client{
		client:   provider.NewRestyClient(cfg),
		cb:       provider.NewCircuitBreaker[*resty.Response](providerID, cfg.CB),
		priority: cfg.Priority,
		logger:   logger,
	}
}

func (c *Client) ID() string       { return providerID }
func (c *Client) Name() string     { return "Cinemeta" }
func (c *Client) SourceID() string { return sourceID }

func (c *Client) Capabilities() []domain.Capability {
	return []domain.Capability{
		domain.CapabilityCatalog,
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
func (c *Client) PaginatesServerSide() bool { return false }

// Initialize verifies the addon manifest is reachable. Idempotent; a
// failed attempt is retried on the next call.
func (c *Client) Initialize(ctx context.Context) error {
	c.initMu.Lock()
	defer c.initMu.Unlock()

	if c.initialized {
		return nil
	}

	resp, err := c.client.R().SetContext(ctx).Get("/manifest.json")
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
	types := make([]string, 0, len(catalogPaths))
	for t := range catalogPaths {
		types = append(types, t)
	}
	return types
}

// SupportsCatalogType reports whether the catalog type is served.
func (c *Client) SupportsCatalogType(catalogType string) bool {
	_, ok := catalogPaths[catalogType]
	return ok
}

// GetCatalog fetches the full catalog and slices out the requested
// page. Totals are derived from the full response length.
func (c *Client) GetCatalog(ctx context.Context, req domain.CatalogRequest) (*domain.ProviderPage, error) {
	resource, ok := catalogPaths[req.CatalogType]
	if !ok {
		return nil, domain.NewValidationError("catalog_type",
			fmt.Sprintf("unsupported catalog type %q", req.CatalogType))
	}

	var result catalogResponse
	if err := c.getJSON(ctx, resource.path, &result); err != nil {
		return nil, &domain.ProviderError{
			ProviderID:  providerID,
			Op:          "get catalog",
			CatalogType: req.CatalogType,
			Page:        req.Page,
			Err:         err,
		}
	}

	all := make([]domain.ProviderItem, 0, len(result.Metas))
	for _, raw := range result.Metas {
		var m meta
		if err := json.Unmarshal(raw, &m); err != nil {
			c.logger.Warn("skipping malformed meta", zap.Error(err))
			continue
		}
		item := m.toProviderItem(raw)
		item.MediaType = resource.mediaType
		all = append(all, item)
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

	c.logger.Debug("cinemeta catalog fetched",
		zap.String("catalog_type", req.CatalogType),
		zap.Int("total", len(all)),
		zap.Int("page", req.Page),
	)

	return &domain.ProviderPage{
		CatalogID:  domain.CatalogID(providerID, req.CatalogType, req.Page, req.Limit),
		Name:       req.CatalogType,
		Page:       req.Page,
		TotalPages: totalPages,
		TotalItems: len(all),
		Items:      all[start:end],
	}, nil
}

// LoadMoreItems slices the requested page out of a fresh full fetch.
func (c *Client) LoadMoreItems(ctx context.Context, req domain.LoadMoreRequest) (*domain.ProviderPage, error) {
	return c.GetCatalog(ctx, domain.CatalogRequest{
		CatalogType: req.CatalogType,
		Page:        req.Page,
		Limit:       req.Limit,
	})
}

// GetDetail fetches one meta object.
func (c *Client) GetDetail(ctx context.Context, req domain.DetailRequest) (*domain.ProviderItem, error) {
	metaType := "movie"
	if req.MediaType == domain.MediaTypeSeries {
		metaType = "series"
	}

	var result metaResponse
	path := fmt.Sprintf("/meta/%s/%s.json", metaType, req.ID)
	if err := c.getJSON(ctx, path, &result); err != nil {
		return nil, &domain.ProviderError{ProviderID: providerID, Op: "get detail", Err: err}
	}

	raw, _ := json.Marshal(result.Meta)
	item := result.Meta.toProviderItem(raw)
	return &item, nil
}

// GetSeriesDetail derives the season list from the series meta's video
// entries.
func (c *Client) GetSeriesDetail(ctx context.Context, seriesID string) (*domain.SeriesDetail, error) {
	m, err := c.fetchSeriesMeta(ctx, seriesID)
	if err != nil {
		return nil, err
	}

	counts := make(map[int]int)
	order := make([]int, 0, 8)
	for _, v := range m.Videos {
		if _, seen := counts[v.Season]; !seen {
			order = append(order, v.Season)
		}
		counts[v.Season]++
	}

	detail := &domain.SeriesDetail{
		ID:      m.ID,
		Name:    m.Name,
		Seasons: make([]domain.SeasonSummary, 0, len(order)),
	}
	for _, n := range order {
		detail.Seasons = append(detail.Seasons, domain.SeasonSummary{
			Number:       n,
			Name:         seasonName(n),
			EpisodeCount: counts[n],
		})
	}
	return detail, nil
}

// GetSeason filters the series meta's videos down to one season.
func (c *Client) GetSeason(ctx context.Context, seriesID string, seasonNumber int) (*domain.Season, error) {
	m, err := c.fetchSeriesMeta(ctx, seriesID)
	if err != nil {
		return nil, err
	}

	episodes := make([]domain.Episode, 0, 16)
	for _, v := range m.Videos {
		if v.Season != seasonNumber {
			continue
		}
		episodes = append(episodes, domain.Episode{
			SeasonNumber:  v.Season,
			EpisodeNumber: v.Episode,
			Name:          v.Name,
			Overview:      v.Overview,
			AirDate:       v.Released,
			StillURL:      v.Thumbnail,
		})
	}
	if len(episodes) == 0 {
		return nil, domain.NewNotFoundError("season", fmt.Sprintf("%s/%d", seriesID, seasonNumber))
	}

	return &domain.Season{
		Number:       seasonNumber,
		Name:         seasonName(seasonNumber),
		EpisodeCount: len(episodes),
		Episodes:     episodes,
		Hydrated:     true,
	}, nil
}

// GetEpisode locates one episode inside the series meta.
func (c *Client) GetEpisode(ctx context.Context, seriesID string, seasonNumber, episodeNumber int) (*domain.Episode, error) {
	season, err := c.GetSeason(ctx, seriesID, seasonNumber)
	if err != nil {
		return nil, err
	}
	for _, e := range season.Episodes {
		if e.EpisodeNumber == episodeNumber {
			return &e, nil
		}
	}
	return nil, domain.NewNotFoundError("episode",
		fmt.Sprintf("%s/%d/%d", seriesID, seasonNumber, episodeNumber))
}

func (c *Client) fetchSeriesMeta(ctx context.Context, seriesID string) (*meta, error) {
	var result metaResponse
	path := fmt.Sprintf("/meta/series/%s.json", seriesID)
	if err := c.getJSON(ctx, path, &result); err != nil {
		return nil, &domain.ProviderError{ProviderID: providerID, Op: "get series detail", Err: err}
	}
	return &result.Meta, nil
}

func seasonName(n int) string {
	if n == 0 {
		return "Specials"
	}
	return fmt.Sprintf("Season %d", n)
}

// getJSON executes a GET through the circuit breaker and decodes the
// body into out.
func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	resp, err := c.cb.Execute(func() (*resty.Response, error) {
		r, err := c.client.R().SetContext(ctx).Get(path)
		if err != nil {
			return nil, err
		}
		if r.IsError() {
			return nil, fmt.Errorf("status %d", r.StatusCode())
		}
		return r, nil
	})
	if err != nil {
		c.logger.Warn("cinemeta request failed",
			zap.String("path", path),
			zap.String("state", c.cb.State().String()),
			zap.Error(err),
		)
		return err
	}
	return json.Unmarshal(resp.Body(), out)
}
