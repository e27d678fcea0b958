package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"media-catalog-service/internal/config"
	"media-catalog-service/internal/domain"
	"media-catalog-service/internal/registry"
)

// LoadMoreService implements the load-more protocol: fetch a further
// page of an existing catalog, filmography, or people listing while
// preserving the caller's catalog context identity. All three flavors
// share one algorithm and differ only in capability and fetch call.
type LoadMoreService struct {
	registry *registry.Registry
	cfg      config.PaginationConfig
	logger   *zap.Logger
}

// NewLoadMoreService creates a new LoadMoreService.
func NewLoadMoreService(reg *registry.Registry, cfg config.PaginationConfig, logger *zap.Logger) *LoadMoreService {
	return &LoadMoreService{
		registry: reg,
		cfg:      cfg,
		logger:   logger,
	}
}

// LoadMoreQuery holds the parameters for one load-more call. ProviderID
// and CatalogID are required; SubjectID is required for the filmography
// flavor. Known carries the pagination the caller last saw, used for
// the drift check. Original carries the caller's catalog context, whose
// identity fields are preserved on the result.
type LoadMoreQuery struct {
	ProviderID  string
	CatalogID   string
	CatalogType string
	SubjectID   string
	Page        int
	Limit       int
	Known       *domain.PaginationInfo
	Original    *domain.CatalogContext
}

// LoadMoreMetrics carries per-phase timings for one load-more call.
type LoadMoreMetrics struct {
	Total          time.Duration `json:"total"`
	ProviderLookup time.Duration `json:"provider_lookup"`
	Fetch          time.Duration `json:"fetch"`
}

// LoadMoreResult is one further batch of items with the authoritative
// pagination for the catalog and the preserved catalog context carrying
// a fresh page snapshot.
type LoadMoreResult struct {
	Items      []*domain.CatalogItem `json:"items"`
	Pagination domain.PaginationInfo `json:"pagination"`
	Context    domain.CatalogContext `json:"catalog_context"`
	Metrics    LoadMoreMetrics       `json:"metrics"`
}

type loadMoreFetcher func(ctx context.Context, p domain.Provider, q LoadMoreQuery, page int) (*domain.ProviderPage, error)

// LoadMoreCatalogItems fetches a further page of a media catalog.
func (s *LoadMoreService) LoadMoreCatalogItems(ctx context.Context, q LoadMoreQuery) (*LoadMoreResult, error) {
	return s.loadMore(ctx, "catalog_items", domain.CapabilityCatalog, q, fetchCatalogPage)
}

// LoadMorePeople fetches a further page of a people catalog. People
// catalogs paginate like media catalogs; the flavor exists so callers
// and logs distinguish the two.
func (s *LoadMoreService) LoadMorePeople(ctx context.Context, q LoadMoreQuery) (*LoadMoreResult, error) {
	return s.loadMore(ctx, "people", domain.CapabilityCatalog, q, fetchCatalogPage)
}

// LoadMoreFilmography fetches a further page of a person's filmography.
func (s *LoadMoreService) LoadMoreFilmography(ctx context.Context, q LoadMoreQuery) (*LoadMoreResult, error) {
	if q.SubjectID == "" {
		return nil, domain.NewValidationError("personId", "must not be empty")
	}
	return s.loadMore(ctx, "filmography", domain.CapabilityFilmography, q, fetchFilmographyPage)
}

// loadMore is the shared load-more algorithm.
func (s *LoadMoreService) loadMore(ctx context.Context, flavor string, capability domain.Capability, q LoadMoreQuery, fetch loadMoreFetcher) (*LoadMoreResult, error) {
	start := time.Now()

	if q.Limit == 0 {
		q.Limit = s.cfg.DefaultLimit
	}
	if err := validateLoadMoreQuery(q); err != nil {
		return nil, err
	}

	lookupStart := time.Now()
	p, err := resolveProvider(s.registry, q.ProviderID, capability)
	if err != nil {
		return nil, err
	}
	lookupDur := time.Since(lookupStart)

	if err := ensureInitialized(ctx, p, s.logger); err != nil {
		return nil, err
	}

	fetchStart := time.Now()
	page, err := fetch(ctx, p, q, q.Page)
	if err != nil {
		s.logger.Warn("load more fetch failed",
			zap.String("flavor", flavor),
			zap.String("provider_id", q.ProviderID),
			zap.String("catalog_id", q.CatalogID),
			zap.Int("page", q.Page),
			zap.Error(err),
		)
		return nil, err
	}
	fetchDur := time.Since(fetchStart)

	if page.Page != 0 && page.Page != q.Page {
		s.logger.Warn("provider returned a different page than requested",
			zap.String("flavor", flavor),
			zap.String("provider_id", q.ProviderID),
			zap.String("catalog_id", q.CatalogID),
			zap.Int("requested_page", q.Page),
			zap.Int("returned_page", page.Page),
		)
	}

	pagination, err := s.derivePagination(ctx, p, q, page, fetch)
	if err != nil {
		return nil, err
	}

	s.checkDrift(flavor, q, pagination)

	result := &LoadMoreResult{
		Items:      batchItems(p, page, q, pagination.Page),
		Pagination: pagination,
		Context:    s.nextContext(p, q, pagination),
		Metrics: LoadMoreMetrics{
			Total:          time.Since(start),
			ProviderLookup: lookupDur,
			Fetch:          fetchDur,
		},
	}

	s.logger.Debug("load more completed",
		zap.String("flavor", flavor),
		zap.String("catalog_id", q.CatalogID),
		zap.Int("page", pagination.Page),
		zap.Int("items", len(result.Items)),
		zap.Bool("has_more", pagination.HasMore),
		zap.Duration("duration", result.Metrics.Total),
	)
	return result, nil
}

// derivePagination establishes the authoritative pagination for the
// batch. Providers with true server-side pagination report it directly.
// For the rest the page totals are re-derived from a fresh full fetch,
// verifying the catalog is still present in the refreshed response.
func (s *LoadMoreService) derivePagination(ctx context.Context, p domain.Provider, q LoadMoreQuery, page *domain.ProviderPage, fetch loadMoreFetcher) (domain.PaginationInfo, error) {
	if p.PaginatesServerSide() {
		return domain.NewPaginationInfo(page.Page, page.TotalPages, page.TotalItems), nil
	}

	full, err := fetch(ctx, p, q, 1)
	if err != nil {
		return domain.PaginationInfo{}, err
	}
	if full.Name != page.Name {
		return domain.PaginationInfo{}, domain.NewNotFoundError("catalog", q.CatalogID)
	}
	return domain.NewPaginationInfo(page.Page, full.TotalPages, full.TotalItems), nil
}

// checkDrift compares the fresh pagination against what the caller last
// saw. Upstream catalogs are live and shrink legitimately; drift within
// the configured thresholds is logged at debug, beyond them at warn.
// Drift never fails the call.
func (s *LoadMoreService) checkDrift(flavor string, q LoadMoreQuery, fresh domain.PaginationInfo) {
	known := q.Known
	if known == nil {
		return
	}

	itemDrop := known.TotalItems - fresh.TotalItems
	pageDrop := known.TotalPages - fresh.TotalPages
	if itemDrop <= 0 && pageDrop <= 0 {
		return
	}

	fields := []zap.Field{
		zap.String("flavor", flavor),
		zap.String("catalog_id", q.CatalogID),
		zap.Int("known_total_items", known.TotalItems),
		zap.Int("fresh_total_items", fresh.TotalItems),
		zap.Int("known_total_pages", known.TotalPages),
		zap.Int("fresh_total_pages", fresh.TotalPages),
	}

	if s.itemDropExceeds(itemDrop, known.TotalItems) || s.pageDropExceeds(pageDrop, known.TotalPages) {
		s.logger.Warn("pagination shrank beyond drift thresholds", fields...)
		return
	}
	s.logger.Debug("pagination drifted within thresholds", fields...)
}

func (s *LoadMoreService) itemDropExceeds(drop, knownTotal int) bool {
	if drop <= 0 {
		return false
	}
	if drop > s.cfg.MaxItemDrop {
		return true
	}
	return knownTotal > 0 && float64(drop)/float64(knownTotal) > s.cfg.MaxItemDropRatio
}

func (s *LoadMoreService) pageDropExceeds(drop, knownTotal int) bool {
	if drop <= 0 {
		return false
	}
	if drop > s.cfg.MaxPageDrop {
		return true
	}
	return knownTotal > 0 && float64(drop)/float64(knownTotal) > s.cfg.MaxPageDropRatio
}

// nextContext preserves the caller's catalog context identity fields
// while always adopting a fresh page snapshot with a new request id.
func (s *LoadMoreService) nextContext(p domain.Provider, q LoadMoreQuery, pagination domain.PaginationInfo) domain.CatalogContext {
	out := domain.CatalogContext{
		ProviderID:  p.ID(),
		SourceID:    p.SourceID(),
		CatalogID:   q.CatalogID,
		CatalogType: q.CatalogType,
	}
	if q.Original != nil {
		out = *q.Original
	}
	out.PageInfo = domain.PageInfo{
		Page:         pagination.Page,
		TotalPages:   pagination.TotalPages,
		TotalItems:   pagination.TotalItems,
		HasMorePages: pagination.HasMore,
		LastFetchAt:  time.Now(),
		RequestID:    uuid.NewString(),
	}
	return out
}

// batchItems maps the fetched page into catalog items bound to the
// caller's catalog identity.
func batchItems(p domain.Provider, page *domain.ProviderPage, q LoadMoreQuery, pageNum int) []*domain.CatalogItem {
	requestID := uuid.NewString()
	items := make([]*domain.CatalogItem, 0, len(page.Items))
	for i, pi := range page.Items {
		items = append(items, newCatalogItem(pi, domain.ContentContext{
			ProviderID:        p.ID(),
			CatalogID:         q.CatalogID,
			CatalogType:       q.CatalogType,
			RequestID:         requestID,
			Page:              pageNum,
			PositionInCatalog: i,
			Raw:               pi.Raw,
		}))
	}
	return items
}

func validateLoadMoreQuery(q LoadMoreQuery) error {
	if q.ProviderID == "" {
		return domain.NewValidationError("providerId", "must not be empty")
	}
	if q.CatalogID == "" {
		return domain.NewValidationError("catalogId", "must not be empty")
	}
	if q.Page < 1 {
		return domain.NewValidationError("page", "must be a positive integer")
	}
	if q.Limit < 1 || q.Limit > 100 {
		return domain.NewValidationError("limit", "must be between 1 and 100")
	}
	return nil
}

func fetchCatalogPage(ctx context.Context, p domain.Provider, q LoadMoreQuery, page int) (*domain.ProviderPage, error) {
	cp, ok := p.(domain.CatalogProvider)
	if !ok {
		return nil, domain.NewNotFoundError("provider", p.ID())
	}
	return cp.LoadMoreItems(ctx, domain.LoadMoreRequest{
		CatalogID:   q.CatalogID,
		CatalogType: q.CatalogType,
		SubjectID:   q.SubjectID,
		Page:        page,
		Limit:       q.Limit,
	})
}

func fetchFilmographyPage(ctx context.Context, p domain.Provider, q LoadMoreQuery, page int) (*domain.ProviderPage, error) {
	fp, ok := p.(domain.FilmographyProvider)
	if !ok {
		return nil, domain.NewNotFoundError("provider", p.ID())
	}
	return fp.GetFilmography(ctx, domain.FilmographyRequest{
		PersonID: q.SubjectID,
		Page:     page,
		Limit:    q.Limit,
	})
}
