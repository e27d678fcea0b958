package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"media-catalog-service/internal/domain"
	"media-catalog-service/internal/registry"
)

// fakeProvider is a configurable in-memory provider implementing every
// capability interface. Unset behavior funcs fail the call.
type fakeProvider struct {
	id         string
	source     string
	caps       []domain.Capability
	priority   int
	serverSide bool
	initErr    error

	catalogTypes []string

	catalogFn     func(req domain.CatalogRequest) (*domain.ProviderPage, error)
	loadMoreFn    func(req domain.LoadMoreRequest) (*domain.ProviderPage, error)
	detailFn      func(req domain.DetailRequest) (*domain.ProviderItem, error)
	searchFn      func(req domain.SearchRequest) (*domain.ProviderPage, error)
	filmographyFn func(req domain.FilmographyRequest) (*domain.ProviderPage, error)
	seriesFn      func(seriesID string) (*domain.SeriesDetail, error)
	seasonFn      func(ctx context.Context, seriesID string, n int) (*domain.Season, error)
	episodeFn     func(seriesID string, sn, en int) (*domain.Episode, error)

	initCalls    atomic.Int32
	catalogCalls atomic.Int32

	mu            sync.Mutex
	loadMorePages []int
	filmoPages    []int
}

func (f *fakeProvider) ID() string       { return f.id }
func (f *fakeProvider) Name() string     { return f.id }
func (f *fakeProvider) SourceID() string { return f.source }

func (f *fakeProvider) Capabilities() []domain.Capability { return f.caps }

func (f *fakeProvider) HasCapability(c domain.Capability) bool {
	for _, have := range f.caps {
		if have == c {
			return true
		}
	}
	return false
}

func (f *fakeProvider) Priority() int             { return f.priority }
func (f *fakeProvider) PaginatesServerSide() bool { return f.serverSide }

func (f *fakeProvider) Initialize(_ context.Context) error {
	f.initCalls.Add(1)
	return f.initErr
}

func (f *fakeProvider) CatalogTypes() []string { return f.catalogTypes }

func (f *fakeProvider) SupportsCatalogType(catalogType string) bool {
	if f.catalogTypes == nil {
		return true
	}
	for _, ct := range f.catalogTypes {
		if ct == catalogType {
			return true
		}
	}
	return false
}

func (f *fakeProvider) GetCatalog(_ context.Context, req domain.CatalogRequest) (*domain.ProviderPage, error) {
	f.catalogCalls.Add(1)
	if f.catalogFn == nil {
		return nil, errors.New("catalogFn not set")
	}
	return f.catalogFn(req)
}

func (f *fakeProvider) LoadMoreItems(_ context.Context, req domain.LoadMoreRequest) (*domain.ProviderPage, error) {
	f.mu.Lock()
	f.loadMorePages = append(f.loadMorePages, req.Page)
	f.mu.Unlock()
	if f.loadMoreFn == nil {
		return nil, errors.New("loadMoreFn not set")
	}
	return f.loadMoreFn(req)
}

func (f *fakeProvider) GetDetail(_ context.Context, req domain.DetailRequest) (*domain.ProviderItem, error) {
	if f.detailFn == nil {
		return nil, errors.New("detailFn not set")
	}
	return f.detailFn(req)
}

func (f *fakeProvider) Search(_ context.Context, req domain.SearchRequest) (*domain.ProviderPage, error) {
	if f.searchFn == nil {
		return nil, errors.New("searchFn not set")
	}
	return f.searchFn(req)
}

func (f *fakeProvider) GetFilmography(_ context.Context, req domain.FilmographyRequest) (*domain.ProviderPage, error) {
	f.mu.Lock()
	f.filmoPages = append(f.filmoPages, req.Page)
	f.mu.Unlock()
	if f.filmographyFn == nil {
		return nil, errors.New("filmographyFn not set")
	}
	return f.filmographyFn(req)
}

func (f *fakeProvider) GetSeriesDetail(_ context.Context, seriesID string) (*domain.SeriesDetail, error) {
	if f.seriesFn == nil {
		return nil, errors.New("seriesFn not set")
	}
	return f.seriesFn(seriesID)
}

func (f *fakeProvider) GetSeason(ctx context.Context, seriesID string, seasonNumber int) (*domain.Season, error) {
	if f.seasonFn == nil {
		return nil, errors.New("seasonFn not set")
	}
	return f.seasonFn(ctx, seriesID, seasonNumber)
}

func (f *fakeProvider) GetEpisode(_ context.Context, seriesID string, seasonNumber, episodeNumber int) (*domain.Episode, error) {
	if f.episodeFn == nil {
		return nil, errors.New("episodeFn not set")
	}
	return f.episodeFn(seriesID, seasonNumber, episodeNumber)
}

func (f *fakeProvider) recordedLoadMorePages() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int(nil), f.loadMorePages...)
}

func newTestRegistry(providers ...domain.Provider) *registry.Registry {
	reg := registry.New(zap.NewNop())
	for _, p := range providers {
		reg.RegisterProvider(p)
	}
	return reg
}

// makePage builds a provider page of n generated items.
func makePage(catalogID, name string, n, page, totalPages, totalItems int) *domain.ProviderPage {
	items := make([]domain.ProviderItem, 0, n)
	for i := 0; i < n; i++ {
		items = append(items, domain.ProviderItem{
			ID:          fmt.Sprintf("m%d", (page-1)*n+i),
			MediaType:   domain.MediaTypeMovie,
			Title:       fmt.Sprintf("Movie %d", (page-1)*n+i),
			Overview:    "overview",
			PosterURL:   "https://img.example/p.jpg",
			ReleaseDate: "2024-01-01",
			VoteAverage: 7.5,
		})
	}
	return &domain.ProviderPage{
		CatalogID:  catalogID,
		Name:       name,
		Page:       page,
		TotalPages: totalPages,
		TotalItems: totalItems,
		Items:      items,
	}
}
