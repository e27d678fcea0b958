// Package service provides application use cases.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"media-catalog-service/internal/config"
	"media-catalog-service/internal/domain"
	"media-catalog-service/internal/infra/cache"
	"media-catalog-service/internal/registry"
	"media-catalog-service/pkg/locker"
)

// CatalogService handles catalog retrieval, search, and media detail
// lookups across registered providers, fronting every provider read
// with the cache.
type CatalogService struct {
	registry *registry.Registry
	cache    *cache.Store
	locks    *locker.KeyedLock
	cfg      config.CatalogConfig
	logger   *zap.Logger
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(reg *registry.Registry, store *cache.Store, cfg config.CatalogConfig, logger *zap.Logger) *CatalogService {
	return &CatalogService{
		registry: reg,
		cache:    store,
		locks:    locker.New(),
		cfg:      cfg,
		logger:   logger,
	}
}

// CatalogQuery holds the parameters for a single catalog retrieval.
// ProviderID is optional; empty means auto-selection by priority.
type CatalogQuery struct {
	domain.CatalogRequest
	ProviderID string
}

// GetCatalog retrieves one catalog page, serving from cache when an
// unexpired entry exists. Concurrent misses for the same fingerprint
// collapse into a single provider fetch.
func (s *CatalogService) GetCatalog(ctx context.Context, q CatalogQuery) (*domain.Catalog, error) {
	s.applyCatalogDefaults(&q.CatalogRequest)
	if err := validateCatalogQuery(q); err != nil {
		return nil, err
	}

	key := cache.CatalogKey(q.CatalogRequest)
	if c, ok := cache.Get[*domain.Catalog](ctx, s.cache, cache.TypeCatalogItems, key); ok {
		return fromCache(c), nil
	}

	unlock := s.locks.Lock(key)
	defer unlock()

	// Another caller may have populated the entry while we waited.
	if c, ok := cache.Get[*domain.Catalog](ctx, s.cache, cache.TypeCatalogItems, key); ok {
		return fromCache(c), nil
	}

	catalog, err := s.fetchCatalog(ctx, q)
	if err != nil {
		return nil, err
	}

	s.cache.Set(ctx, cache.TypeCatalogItems, key, catalog, 0)
	return catalog, nil
}

// fetchCatalog resolves a provider and fetches one catalog page from it.
func (s *CatalogService) fetchCatalog(ctx context.Context, q CatalogQuery) (*domain.Catalog, error) {
	var (
		p   domain.Provider
		err error
	)
	if q.ProviderID != "" {
		p, err = resolveProvider(s.registry, q.ProviderID, domain.CapabilityCatalog)
	} else {
		p, err = s.selectCatalogProvider(q.CatalogType)
	}
	if err != nil {
		return nil, err
	}

	cp, ok := p.(domain.CatalogProvider)
	if !ok {
		return nil, domain.NewNotFoundError("provider", p.ID())
	}
	if !cp.SupportsCatalogType(q.CatalogType) {
		return nil, domain.NewValidationError("catalogType",
			fmt.Sprintf("provider %s does not serve catalog type %q", p.ID(), q.CatalogType))
	}
	if err := ensureInitialized(ctx, p, s.logger); err != nil {
		return nil, err
	}

	start := time.Now()
	page, err := cp.GetCatalog(ctx, q.CatalogRequest)
	if err != nil {
		s.logger.Warn("catalog fetch failed",
			zap.String("provider_id", p.ID()),
			zap.String("catalog_type", q.CatalogType),
			zap.Int("page", q.Page),
			zap.Error(err),
		)
		return nil, err
	}

	catalog := buildCatalog(p, page, q.CatalogRequest)

	s.logger.Debug("catalog fetched",
		zap.String("provider_id", p.ID()),
		zap.String("catalog_id", catalog.ID),
		zap.Int("items", len(catalog.Items)),
		zap.Duration("duration", time.Since(start)),
	)
	return catalog, nil
}

// selectCatalogProvider picks the highest-priority catalog provider
// serving the catalog type. Providers declaring the capability but not
// this type are skipped.
func (s *CatalogService) selectCatalogProvider(catalogType string) (domain.Provider, error) {
	for _, p := range s.registry.GetProvidersByCapability(domain.CapabilityCatalog) {
		cp, ok := p.(domain.CatalogProvider)
		if ok && cp.SupportsCatalogType(catalogType) {
			return p, nil
		}
	}
	return nil, domain.NewNotFoundError("catalog", catalogType)
}

// CatalogFetchResult is one branch outcome of the multi-catalog fan-out.
type CatalogFetchResult struct {
	CatalogType string
	Catalog     *domain.Catalog
	Duration    time.Duration
	Err         error
}

// AllCatalogs is the aggregated outcome of the multi-catalog fan-out.
// Failed lists the catalog types whose fetch failed; their failures
// never remove successful catalogs from Catalogs.
type AllCatalogs struct {
	Catalogs []*domain.Catalog
	Failed   []string
}

// GetAllCatalogs fetches the configured catalog types concurrently,
// one goroutine per type. Partial failures are allowed; an error is
// returned only when every branch fails.
func (s *CatalogService) GetAllCatalogs(ctx context.Context, page, limit int) (*AllCatalogs, error) {
	if page == 0 {
		page = 1
	}
	if limit == 0 {
		limit = s.cfg.DefaultLimit
	}
	if err := validatePageLimit(page, limit); err != nil {
		return nil, err
	}

	types := s.cfg.Types
	results := make([]CatalogFetchResult, len(types))
	var wg sync.WaitGroup

	s.logger.Debug("fetching all catalogs",
		zap.Int("catalog_count", len(types)),
		zap.Int("page", page),
	)

	for i, catalogType := range types {
		wg.Add(1)
		go func(idx int, ct string) {
			defer wg.Done()
			start := time.Now()
			c, err := s.GetCatalog(ctx, CatalogQuery{
				CatalogRequest: domain.CatalogRequest{
					CatalogType: ct,
					Page:        page,
					Limit:       limit,
				},
			})
			results[idx] = CatalogFetchResult{
				CatalogType: ct,
				Catalog:     c,
				Duration:    time.Since(start),
				Err:         err,
			}
		}(i, catalogType)
	}

	wg.Wait()

	out := &AllCatalogs{Catalogs: make([]*domain.Catalog, 0, len(types))}
	errs := make([]error, 0)
	for _, r := range results {
		if r.Err != nil {
			out.Failed = append(out.Failed, r.CatalogType)
			errs = append(errs, fmt.Errorf("%s: %w", r.CatalogType, r.Err))
			s.logger.Warn("catalog branch failed",
				zap.String("catalog_type", r.CatalogType),
				zap.Duration("duration", r.Duration),
				zap.Error(r.Err),
			)
			continue
		}
		out.Catalogs = append(out.Catalogs, r.Catalog)
	}

	if len(out.Catalogs) == 0 && len(errs) > 0 {
		return nil, fmt.Errorf("all catalog fetches failed: %w", errors.Join(errs...))
	}

	s.logger.Info("all catalogs fetched",
		zap.Int("succeeded", len(out.Catalogs)),
		zap.Int("failed", len(out.Failed)),
	)
	return out, nil
}

// SearchQuery holds the parameters for a provider search.
type SearchQuery struct {
	domain.SearchRequest
	ProviderID string
}

// Search runs a search against one provider and returns the results as
// a catalog.
func (s *CatalogService) Search(ctx context.Context, q SearchQuery) (*domain.Catalog, error) {
	if q.Page == 0 {
		q.Page = 1
	}
	if q.Limit == 0 {
		q.Limit = s.cfg.DefaultLimit
	}
	if q.Query == "" {
		return nil, domain.NewValidationError("query", "must not be empty")
	}
	if err := validatePageLimit(q.Page, q.Limit); err != nil {
		return nil, err
	}

	key := cache.SearchKey(q.SearchRequest)
	if c, ok := cache.Get[*domain.Catalog](ctx, s.cache, cache.TypeSearchResults, key); ok {
		return fromCache(c), nil
	}

	unlock := s.locks.Lock(key)
	defer unlock()

	if c, ok := cache.Get[*domain.Catalog](ctx, s.cache, cache.TypeSearchResults, key); ok {
		return fromCache(c), nil
	}

	p, err := autoSelectProvider(s.registry, domain.CapabilitySearch, q.ProviderID)
	if err != nil {
		return nil, err
	}
	sp, ok := p.(domain.SearchProvider)
	if !ok {
		return nil, domain.NewNotFoundError("provider", p.ID())
	}
	if err := ensureInitialized(ctx, p, s.logger); err != nil {
		return nil, err
	}

	page, err := sp.Search(ctx, q.SearchRequest)
	if err != nil {
		s.logger.Warn("search failed",
			zap.String("provider_id", p.ID()),
			zap.String("query", q.Query),
			zap.Error(err),
		)
		return nil, err
	}

	catalog := buildCatalog(p, page, domain.CatalogRequest{
		CatalogType: "search",
		MediaType:   q.MediaType,
		Page:        q.Page,
		Limit:       q.Limit,
	})

	s.cache.Set(ctx, cache.TypeSearchResults, key, catalog, 0)
	return catalog, nil
}

// DetailQuery holds the parameters for a media detail lookup. Context,
// when present, steers provider selection toward the provider the item
// originally came from.
type DetailQuery struct {
	domain.DetailRequest
	ProviderID string
	Context    *domain.ContentContext
}

// GetMediaDetail retrieves one item's full detail, preferring the
// provider recorded in the item's content context.
func (s *CatalogService) GetMediaDetail(ctx context.Context, q DetailQuery) (*domain.CatalogItem, error) {
	if q.ID == "" {
		return nil, domain.NewValidationError("id", "must not be empty")
	}

	key := cache.DetailKey(q.DetailRequest)
	if item, ok := cache.Get[*domain.CatalogItem](ctx, s.cache, cache.TypeMediaDetail, key); ok {
		return item, nil
	}

	unlock := s.locks.Lock(key)
	defer unlock()

	if item, ok := cache.Get[*domain.CatalogItem](ctx, s.cache, cache.TypeMediaDetail, key); ok {
		return item, nil
	}

	preferred := q.ProviderID
	if preferred == "" && q.Context != nil {
		preferred = q.Context.ProviderID
	}
	p, err := autoSelectProvider(s.registry, domain.CapabilityCatalog, preferred)
	if err != nil {
		return nil, err
	}
	cp, ok := p.(domain.CatalogProvider)
	if !ok {
		return nil, domain.NewNotFoundError("provider", p.ID())
	}
	if err := ensureInitialized(ctx, p, s.logger); err != nil {
		return nil, err
	}

	pi, err := cp.GetDetail(ctx, q.DetailRequest)
	if err != nil {
		s.logger.Warn("media detail fetch failed",
			zap.String("provider_id", p.ID()),
			zap.String("id", q.ID),
			zap.Error(err),
		)
		return nil, err
	}

	item := newCatalogItem(*pi, domain.ContentContext{
		ProviderID: p.ID(),
		RequestID:  uuid.NewString(),
	})
	if q.Context != nil {
		item.Context.CatalogID = q.Context.CatalogID
		item.Context.CatalogType = q.Context.CatalogType
		item.Context.Page = q.Context.Page
		item.Context.PositionInCatalog = q.Context.PositionInCatalog
	}

	s.cache.Set(ctx, cache.TypeMediaDetail, key, item, 0)
	return item, nil
}

// InvalidateMediaCache drops every cached detail entry for an item.
func (s *CatalogService) InvalidateMediaCache(ctx context.Context, itemID string) error {
	if itemID == "" {
		return domain.NewValidationError("id", "must not be empty")
	}
	s.cache.InvalidateMediaCache(ctx, itemID)
	return nil
}

// IsMediaDetailCached reports whether an unexpired detail entry exists
// for an item.
func (s *CatalogService) IsMediaDetailCached(itemID string) bool {
	return s.cache.IsMediaDetailCached(itemID)
}

func (s *CatalogService) applyCatalogDefaults(req *domain.CatalogRequest) {
	if req.Page == 0 {
		req.Page = 1
	}
	if req.Limit == 0 {
		req.Limit = s.cfg.DefaultLimit
	}
}

func validateCatalogQuery(q CatalogQuery) error {
	if q.CatalogType == "" {
		return domain.NewValidationError("catalogType", "must not be empty")
	}
	return validatePageLimit(q.Page, q.Limit)
}

func validatePageLimit(page, limit int) error {
	if page < 1 {
		return domain.NewValidationError("page", "must be a positive integer")
	}
	if limit < 1 || limit > 100 {
		return domain.NewValidationError("limit", "must be between 1 and 100")
	}
	return nil
}

// buildCatalog maps one provider page into an immutable Catalog with a
// fresh request id and fully populated context.
func buildCatalog(p domain.Provider, page *domain.ProviderPage, req domain.CatalogRequest) *domain.Catalog {
	now := time.Now()
	requestID := uuid.NewString()
	catalogID := page.CatalogID
	if catalogID == "" {
		catalogID = domain.CatalogID(p.ID(), req.CatalogType, page.Page, req.Limit)
	}

	items := make([]*domain.CatalogItem, 0, len(page.Items))
	for i, pi := range page.Items {
		items = append(items, newCatalogItem(pi, domain.ContentContext{
			ProviderID:        p.ID(),
			CatalogID:         catalogID,
			CatalogType:       req.CatalogType,
			RequestID:         requestID,
			Page:              page.Page,
			PositionInCatalog: i,
			Raw:               pi.Raw,
		}))
	}

	pagination := domain.NewPaginationInfo(page.Page, page.TotalPages, page.TotalItems)

	return &domain.Catalog{
		ID:         catalogID,
		Name:       page.Name,
		MediaType:  req.MediaType,
		Items:      items,
		Pagination: pagination,
		Context: domain.CatalogContext{
			ProviderID:  p.ID(),
			SourceID:    p.SourceID(),
			CatalogID:   catalogID,
			CatalogType: req.CatalogType,
			MediaType:   req.MediaType,
			PageInfo: domain.PageInfo{
				Page:         pagination.Page,
				TotalPages:   pagination.TotalPages,
				TotalItems:   pagination.TotalItems,
				HasMorePages: pagination.HasMore,
				LastFetchAt:  now,
				RequestID:    requestID,
			},
		},
		Metadata: domain.CatalogMetadata{
			FetchedAt: now,
			ItemCount: len(items),
			Quality:   domain.AverageQuality(items),
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// newCatalogItem maps one provider-native item into the common shape.
func newCatalogItem(pi domain.ProviderItem, cc domain.ContentContext) *domain.CatalogItem {
	if cc.Raw == nil {
		cc.Raw = pi.Raw
	}
	return &domain.CatalogItem{
		ID:            pi.ID,
		MediaType:     pi.MediaType,
		Title:         pi.Title,
		OriginalTitle: pi.OriginalTitle,
		Overview:      pi.Overview,
		PosterURL:     pi.PosterURL,
		BackdropURL:   pi.BackdropURL,
		ReleaseDate:   pi.ReleaseDate,
		VoteAverage:   pi.VoteAverage,
		VoteCount:     pi.VoteCount,
		Runtime:       pi.Runtime,
		Budget:        pi.Budget,
		SeasonCount:   pi.SeasonCount,
		EpisodeCount:  pi.EpisodeCount,
		Character:     pi.Character,
		Job:           pi.Job,
		Department:    pi.Department,
		ExternalIDs:   pi.ExternalIDs,
		Context:       cc,
	}
}

// fromCache returns a shallow copy of a cached catalog with the cache
// hit marked in metadata, keeping the cached value itself immutable.
func fromCache(c *domain.Catalog) *domain.Catalog {
	out := *c
	out.Metadata.FromCache = true
	return &out
}
