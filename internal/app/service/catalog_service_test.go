package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"media-catalog-service/internal/config"
	"media-catalog-service/internal/domain"
	"media-catalog-service/internal/infra/cache"
	"media-catalog-service/internal/registry"
)

func newCatalogService(reg *registry.Registry, types ...string) *CatalogService {
	store := cache.New(cache.Config{
		CatalogItems:  cache.TypeConfig{TTL: time.Minute},
		MediaDetail:   cache.TypeConfig{TTL: time.Minute},
		SearchResults: cache.TypeConfig{TTL: time.Minute},
	}, nil, zap.NewNop())
	cfg := config.CatalogConfig{Types: types, DefaultLimit: 20}
	return NewCatalogService(reg, store, cfg, zap.NewNop())
}

func newCatalogFake(id string, priority int, types ...string) *fakeProvider {
	return &fakeProvider{
		id:           id,
		source:       "test",
		caps:         []domain.Capability{domain.CapabilityCatalog},
		priority:     priority,
		serverSide:   true,
		catalogTypes: types,
	}
}

func TestGetCatalogValidation(t *testing.T) {
	p := newCatalogFake("p1", 1, "popular_movies")
	svc := newCatalogService(newTestRegistry(p))

	cases := []struct {
		name  string
		query CatalogQuery
	}{
		{"negative page", CatalogQuery{CatalogRequest: domain.CatalogRequest{CatalogType: "popular_movies", Page: -1, Limit: 20}}},
		{"limit too large", CatalogQuery{CatalogRequest: domain.CatalogRequest{CatalogType: "popular_movies", Page: 1, Limit: 200}}},
		{"empty catalog type", CatalogQuery{CatalogRequest: domain.CatalogRequest{Page: 1, Limit: 20}}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.GetCatalog(context.Background(), tc.query)
			require.Error(t, err)
			assert.True(t, domain.IsValidation(err))
		})
	}

	// Validation fails before any provider interaction.
	assert.Equal(t, int32(0), p.catalogCalls.Load())
	assert.Equal(t, int32(0), p.initCalls.Load())
}

func TestGetCatalogFetchesAndCaches(t *testing.T) {
	p := newCatalogFake("p1", 1, "popular_movies")
	p.catalogFn = func(req domain.CatalogRequest) (*domain.ProviderPage, error) {
		return makePage("", "Popular Movies", 20, req.Page, 50, 1000), nil
	}
	svc := newCatalogService(newTestRegistry(p))

	q := CatalogQuery{CatalogRequest: domain.CatalogRequest{CatalogType: "popular_movies", Page: 1, Limit: 20}}

	first, err := svc.GetCatalog(context.Background(), q)
	require.NoError(t, err)
	assert.False(t, first.Metadata.FromCache)
	assert.Len(t, first.Items, 20)
	assert.Equal(t, 1, first.Pagination.Page)
	assert.Equal(t, 50, first.Pagination.TotalPages)
	assert.Equal(t, 1000, first.Pagination.TotalItems)
	assert.True(t, first.Pagination.HasMore)

	second, err := svc.GetCatalog(context.Background(), q)
	require.NoError(t, err)
	assert.True(t, second.Metadata.FromCache)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, int32(1), p.catalogCalls.Load())
}

func TestGetCatalogContextAndPositions(t *testing.T) {
	p := newCatalogFake("p1", 1, "popular_movies")
	p.catalogFn = func(req domain.CatalogRequest) (*domain.ProviderPage, error) {
		return makePage("", "Popular Movies", 3, 1, 50, 1000), nil
	}
	svc := newCatalogService(newTestRegistry(p))

	catalog, err := svc.GetCatalog(context.Background(), CatalogQuery{
		CatalogRequest: domain.CatalogRequest{CatalogType: "popular_movies", Page: 1, Limit: 20},
	})
	require.NoError(t, err)

	assert.Equal(t, "p1", catalog.Context.ProviderID)
	assert.Equal(t, "test", catalog.Context.SourceID)
	assert.Equal(t, catalog.ID, catalog.Context.CatalogID)
	assert.NotEmpty(t, catalog.Context.PageInfo.RequestID)
	assert.False(t, catalog.Context.PageInfo.LastFetchAt.IsZero())

	for i, item := range catalog.Items {
		assert.Equal(t, i, item.Context.PositionInCatalog)
		assert.Equal(t, catalog.ID, item.Context.CatalogID)
		assert.Equal(t, catalog.Context.PageInfo.RequestID, item.Context.RequestID)
	}
}

func TestGetCatalogSelectsProviderServingType(t *testing.T) {
	p1 := newCatalogFake("p1", 1, "popular_movies")
	p2 := newCatalogFake("p2", 2, "top_movies")
	p2.catalogFn = func(req domain.CatalogRequest) (*domain.ProviderPage, error) {
		return makePage("", "Top Movies", 5, 1, 1, 5), nil
	}
	svc := newCatalogService(newTestRegistry(p1, p2))

	catalog, err := svc.GetCatalog(context.Background(), CatalogQuery{
		CatalogRequest: domain.CatalogRequest{CatalogType: "top_movies", Page: 1, Limit: 20},
	})
	require.NoError(t, err)
	assert.Equal(t, "p2", catalog.Context.ProviderID)
	assert.Equal(t, int32(0), p1.catalogCalls.Load())
}

func TestGetCatalogUnknownProvider(t *testing.T) {
	svc := newCatalogService(newTestRegistry(newCatalogFake("p1", 1, "popular_movies")))

	_, err := svc.GetCatalog(context.Background(), CatalogQuery{
		CatalogRequest: domain.CatalogRequest{CatalogType: "popular_movies", Page: 1, Limit: 20},
		ProviderID:     "ghost",
	})
	require.Error(t, err)
	assert.True(t, domain.IsNotFound(err))
}

func TestGetCatalogUnsupportedTypeExplicitProvider(t *testing.T) {
	p := newCatalogFake("p1", 1, "popular_movies")
	svc := newCatalogService(newTestRegistry(p))

	_, err := svc.GetCatalog(context.Background(), CatalogQuery{
		CatalogRequest: domain.CatalogRequest{CatalogType: "top_movies", Page: 1, Limit: 20},
		ProviderID:     "p1",
	})
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
	assert.Equal(t, int32(0), p.catalogCalls.Load())
}

func TestGetAllCatalogsPartialFailure(t *testing.T) {
	p := newCatalogFake("p1", 1, "a", "b", "c")
	p.catalogFn = func(req domain.CatalogRequest) (*domain.ProviderPage, error) {
		if req.CatalogType == "b" {
			return nil, &domain.ProviderError{ProviderID: "p1", Op: "get catalog", CatalogType: "b", Err: errors.New("boom")}
		}
		return makePage("", req.CatalogType, 2, 1, 1, 2), nil
	}
	svc := newCatalogService(newTestRegistry(p), "a", "b", "c")

	out, err := svc.GetAllCatalogs(context.Background(), 1, 20)
	require.NoError(t, err)
	assert.Len(t, out.Catalogs, 2)
	assert.Equal(t, []string{"b"}, out.Failed)
}

func TestGetAllCatalogsAllFail(t *testing.T) {
	p := newCatalogFake("p1", 1, "a", "b")
	p.catalogFn = func(req domain.CatalogRequest) (*domain.ProviderPage, error) {
		return nil, &domain.ProviderError{ProviderID: "p1", Op: "get catalog", CatalogType: req.CatalogType, Err: errors.New("down")}
	}
	svc := newCatalogService(newTestRegistry(p), "a", "b")

	_, err := svc.GetAllCatalogs(context.Background(), 1, 20)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "all catalog fetches failed")
}

func TestSearchValidation(t *testing.T) {
	svc := newCatalogService(newTestRegistry())

	_, err := svc.Search(context.Background(), SearchQuery{})
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
}

func TestSearchFetchesAndCaches(t *testing.T) {
	p := &fakeProvider{
		id:       "p1",
		source:   "test",
		caps:     []domain.Capability{domain.CapabilitySearch},
		priority: 1,
	}
	calls := 0
	p.searchFn = func(req domain.SearchRequest) (*domain.ProviderPage, error) {
		calls++
		return makePage("", "Search", 2, 1, 1, 2), nil
	}
	svc := newCatalogService(newTestRegistry(p))

	q := SearchQuery{SearchRequest: domain.SearchRequest{Query: "dune"}}

	first, err := svc.Search(context.Background(), q)
	require.NoError(t, err)
	assert.Len(t, first.Items, 2)

	second, err := svc.Search(context.Background(), q)
	require.NoError(t, err)
	assert.True(t, second.Metadata.FromCache)
	assert.Equal(t, 1, calls)
}

func TestGetMediaDetailPrefersContextProvider(t *testing.T) {
	p1 := newCatalogFake("p1", 1)
	p2 := newCatalogFake("p2", 2)
	p2.detailFn = func(req domain.DetailRequest) (*domain.ProviderItem, error) {
		return &domain.ProviderItem{ID: req.ID, MediaType: domain.MediaTypeMovie, Title: "Dune"}, nil
	}
	svc := newCatalogService(newTestRegistry(p1, p2))

	item, err := svc.GetMediaDetail(context.Background(), DetailQuery{
		DetailRequest: domain.DetailRequest{ID: "42", MediaType: domain.MediaTypeMovie},
		Context:       &domain.ContentContext{ProviderID: "p2", CatalogID: "cat-1", Page: 3},
	})
	require.NoError(t, err)
	assert.Equal(t, "Dune", item.Title)
	assert.Equal(t, "p2", item.Context.ProviderID)
	assert.Equal(t, "cat-1", item.Context.CatalogID)
	assert.Equal(t, 3, item.Context.Page)
}

func TestGetMediaDetailFallsBackByPriority(t *testing.T) {
	p1 := newCatalogFake("p1", 1)
	p1.detailFn = func(req domain.DetailRequest) (*domain.ProviderItem, error) {
		return &domain.ProviderItem{ID: req.ID, Title: "From p1"}, nil
	}
	svc := newCatalogService(newTestRegistry(p1))

	// The context names a provider that is no longer registered.
	item, err := svc.GetMediaDetail(context.Background(), DetailQuery{
		DetailRequest: domain.DetailRequest{ID: "42"},
		Context:       &domain.ContentContext{ProviderID: "gone"},
	})
	require.NoError(t, err)
	assert.Equal(t, "From p1", item.Title)
}

func TestInvalidateMediaCache(t *testing.T) {
	p := newCatalogFake("p1", 1)
	calls := 0
	p.detailFn = func(req domain.DetailRequest) (*domain.ProviderItem, error) {
		calls++
		return &domain.ProviderItem{ID: req.ID, Title: "Dune"}, nil
	}
	svc := newCatalogService(newTestRegistry(p))

	q := DetailQuery{DetailRequest: domain.DetailRequest{ID: "42", MediaType: domain.MediaTypeMovie}}

	_, err := svc.GetMediaDetail(context.Background(), q)
	require.NoError(t, err)
	assert.True(t, svc.IsMediaDetailCached("42"))

	require.NoError(t, svc.InvalidateMediaCache(context.Background(), "42"))
	assert.False(t, svc.IsMediaDetailCached("42"))

	_, err = svc.GetMediaDetail(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}
