package domain

import (
	"testing"
)

func TestNewPaginationInfo(t *testing.T) {
	tests := []struct {
		name       string
		page       int
		totalPages int
		totalItems int
		hasMore    bool
	}{
		{name: "first of many", page: 1, totalPages: 50, totalItems: 1000, hasMore: true},
		{name: "last page", page: 50, totalPages: 50, totalItems: 1000, hasMore: false},
		{name: "single page", page: 1, totalPages: 1, totalItems: 7, hasMore: false},
		{name: "empty catalog", page: 1, totalPages: 0, totalItems: 0, hasMore: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPaginationInfo(tt.page, tt.totalPages, tt.totalItems)
			if p.Page != tt.page {
				t.Errorf("expected page %d, got %d", tt.page, p.Page)
			}
			if p.HasMore != tt.hasMore {
				t.Errorf("expected HasMore %v, got %v", tt.hasMore, p.HasMore)
			}
		})
	}
}

func TestCatalogID(t *testing.T) {
	id := CatalogID("tmdb_main", "popular_movies", 1, 20)
	if id != "tmdb_main:popular_movies:p1:l20" {
		t.Errorf("unexpected catalog id %q", id)
	}

	// Identical inputs must always produce the identical id.
	if id != CatalogID("tmdb_main", "popular_movies", 1, 20) {
		t.Error("expected CatalogID to be deterministic")
	}
}

func TestAverageQuality(t *testing.T) {
	full := &CatalogItem{
		Title:       "Full",
		Overview:    "has everything",
		PosterURL:   "http://img/p.jpg",
		ReleaseDate: "2024-01-01",
		VoteAverage: 7.5,
	}
	empty := &CatalogItem{}

	if q := AverageQuality(nil); q != 0 {
		t.Errorf("expected 0 for empty page, got %f", q)
	}
	if q := AverageQuality([]*CatalogItem{full}); q != 1.0 {
		t.Errorf("expected 1.0 for fully populated item, got %f", q)
	}
	if q := AverageQuality([]*CatalogItem{full, empty}); q != 0.5 {
		t.Errorf("expected 0.5 for half populated page, got %f", q)
	}
}

func TestCatalogItem_Quality_BackdropCountsAsImage(t *testing.T) {
	item := &CatalogItem{BackdropURL: "http://img/b.jpg"}
	if q := item.Quality(); q != 0.2 {
		t.Errorf("expected 0.2, got %f", q)
	}
}

func TestCatalogItem_TypePredicates(t *testing.T) {
	movie := &CatalogItem{MediaType: MediaTypeMovie}
	series := &CatalogItem{MediaType: MediaTypeSeries}
	person := &CatalogItem{MediaType: MediaTypePerson}

	if !movie.IsMovie() || movie.IsSeries() || movie.IsPerson() {
		t.Error("movie predicates wrong")
	}
	if !series.IsSeries() || series.IsMovie() {
		t.Error("series predicates wrong")
	}
	if !person.IsPerson() || person.IsMovie() {
		t.Error("person predicates wrong")
	}
}
