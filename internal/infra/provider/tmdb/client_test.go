package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"media-catalog-service/internal/domain"
	"media-catalog-service/internal/infra/provider"
)

const testBaseURL = "https://tmdb.example.com"

func newTestClient() *Client {
	cfg := provider.ClientConfig{
		BaseURL:  testBaseURL,
		APIKey:   "test-key",
		Priority: 1,
		Timeout:  5 * time.Second,
		Retry: provider.RetryConfig{
			MaxAttempts: 2,
			WaitTime:    10 * time.Millisecond,
			MaxWaitTime: 50 * time.Millisecond,
		},
		CB: provider.CBConfig{
			MaxRequests:  5,
			Interval:     60 * time.Second,
			Timeout:      15 * time.Second,
			FailureRatio: 0.6,
		},
	}
	client := New(cfg, zap.NewNop())

	// Activate httpmock for this client's HTTP transport
	httpmock.ActivateNonDefault(client.client.GetClient())

	return client
}

func mockPagedResponse(n, page, totalPages, totalItems int) map[string]any {
	results := make([]map[string]any, 0, n)
	for i := 0; i < n; i++ {
		results = append(results, map[string]any{
			"id":           1000 + i,
			"title":        fmt.Sprintf("Movie %d", i),
			"overview":     "An overview",
			"poster_path":  "/poster.jpg",
			"release_date": "2024-01-15",
			"vote_average": 7.8,
			"vote_count":   1200,
		})
	}
	return map[string]any{
		"page":          page,
		"total_pages":   totalPages,
		"total_results": totalItems,
		"results":       results,
	}
}

func TestTMDB_GetCatalog_Success(t *testing.T) {
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("GET", testBaseURL+"/movie/popular",
		httpmock.NewJsonResponderOrPanic(200, mockPagedResponse(2, 1, 50, 1000)))

	client := newTestClient()
	page, err := client.GetCatalog(context.Background(), domain.CatalogRequest{
		CatalogType: "popular_movies",
		Page:        1,
		Limit:       20,
	})

	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 50, page.TotalPages)
	assert.Equal(t, 1000, page.TotalItems)
	require.Len(t, page.Items, 2)

	first := page.Items[0]
	assert.Equal(t, "1000", first.ID)
	assert.Equal(t, domain.MediaTypeMovie, first.MediaType)
	assert.Equal(t, "Movie 0", first.Title)
	assert.Equal(t, imageBaseURL+"/poster.jpg", first.PosterURL)
	assert.Equal(t, "2024-01-15", first.ReleaseDate)
	assert.Equal(t, 7.8, first.VoteAverage)
	assert.Equal(t, "1000", first.ExternalIDs["tmdb"])
	assert.NotEmpty(t, first.Raw)
}

func TestTMDB_GetCatalog_LimitBoundsItems(t *testing.T) {
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("GET", testBaseURL+"/movie/popular",
		httpmock.NewJsonResponderOrPanic(200, mockPagedResponse(20, 1, 1, 20)))

	client := newTestClient()
	page, err := client.GetCatalog(context.Background(), domain.CatalogRequest{
		CatalogType: "popular_movies",
		Page:        1,
		Limit:       5,
	})

	require.NoError(t, err)
	assert.Len(t, page.Items, 5)
	assert.Equal(t, 20, page.TotalItems)
}

func TestTMDB_GetCatalog_UnsupportedType(t *testing.T) {
	defer httpmock.DeactivateAndReset()

	client := newTestClient()
	_, err := client.GetCatalog(context.Background(), domain.CatalogRequest{
		CatalogType: "best_of_all_time",
		Page:        1,
		Limit:       20,
	})

	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
	// Rejected locally, no HTTP call made.
	assert.Empty(t, httpmock.GetCallCountInfo())
}

func TestTMDB_GetCatalog_HTTPError(t *testing.T) {
	defer httpmock.DeactivateAndReset()

	tests := []struct {
		name       string
		statusCode int
	}{
		{"404 Not Found", 404},
		{"500 Internal Server Error", 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			httpmock.Reset()
			httpmock.RegisterResponder("GET", testBaseURL+"/movie/popular",
				httpmock.NewStringResponder(tt.statusCode, "Error"))

			client := newTestClient()
			_, err := client.GetCatalog(context.Background(), domain.CatalogRequest{
				CatalogType: "popular_movies",
				Page:        1,
				Limit:       20,
			})

			require.Error(t, err)
			assert.True(t, domain.IsProviderError(err))
			assert.Contains(t, err.Error(), fmt.Sprintf("status %d", tt.statusCode))
		})
	}
}

func TestTMDB_CircuitBreaker_Opens(t *testing.T) {
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("GET", testBaseURL+"/movie/popular",
		httpmock.NewStringResponder(500, "Internal Server Error"))

	client := newTestClient()
	req := domain.CatalogRequest{CatalogType: "popular_movies", Page: 1, Limit: 20}

	for i := 0; i < 5; i++ {
		_, err := client.GetCatalog(context.Background(), req)
		require.Error(t, err)
	}

	start := time.Now()
	_, err := client.GetCatalog(context.Background(), req)
	elapsed := time.Since(start)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "circuit breaker is open")
	assert.Less(t, elapsed.Milliseconds(), int64(100))
}

func TestTMDB_LoadMoreItems(t *testing.T) {
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("GET", testBaseURL+"/tv/popular",
		httpmock.NewJsonResponderOrPanic(200, mockPagedResponse(20, 3, 50, 1000)))

	client := newTestClient()
	page, err := client.LoadMoreItems(context.Background(), domain.LoadMoreRequest{
		CatalogID:   "tmdb_main:popular_series:p3:l20",
		CatalogType: "popular_series",
		Page:        3,
		Limit:       20,
	})

	require.NoError(t, err)
	assert.Equal(t, 3, page.Page)
	assert.Equal(t, 50, page.TotalPages)
	assert.Len(t, page.Items, 20)
}

func TestTMDB_Search_MixedMediaTypes(t *testing.T) {
	defer httpmock.DeactivateAndReset()

	resp := map[string]any{
		"page":          1,
		"total_pages":   1,
		"total_results": 2,
		"results": []map[string]any{
			{"id": 1, "media_type": "movie", "title": "Dune"},
			{"id": 2, "media_type": "tv", "name": "Dune: The Series", "first_air_date": "2025-02-01"},
		},
	}
	httpmock.RegisterResponder("GET", testBaseURL+"/search/multi",
		httpmock.NewJsonResponderOrPanic(200, resp))

	client := newTestClient()
	page, err := client.Search(context.Background(), domain.SearchRequest{Query: "dune", Page: 1, Limit: 20})

	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, domain.MediaTypeMovie, page.Items[0].MediaType)
	assert.Equal(t, "Dune", page.Items[0].Title)
	assert.Equal(t, domain.MediaTypeSeries, page.Items[1].MediaType)
	assert.Equal(t, "Dune: The Series", page.Items[1].Title)
	assert.Equal(t, "2025-02-01", page.Items[1].ReleaseDate)
}

func TestTMDB_GetFilmography_LocalPagination(t *testing.T) {
	defer httpmock.DeactivateAndReset()

	cast := make([]map[string]any, 0, 25)
	for i := 0; i < 25; i++ {
		cast = append(cast, map[string]any{
			"id":         i,
			"media_type": "movie",
			"title":      fmt.Sprintf("Credit %d", i),
			"character":  "Lead",
		})
	}
	resp := map[string]any{"id": 99, "cast": cast, "crew": []map[string]any{}}
	httpmock.RegisterResponder("GET", testBaseURL+"/person/99/combined_credits",
		httpmock.NewJsonResponderOrPanic(200, resp))

	client := newTestClient()
	page, err := client.GetFilmography(context.Background(), domain.FilmographyRequest{
		PersonID: "99",
		Page:     2,
		Limit:    10,
	})

	require.NoError(t, err)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, 25, page.TotalItems)
	require.Len(t, page.Items, 10)
	assert.Equal(t, "Credit 10", page.Items[0].Title)
	assert.Equal(t, "Lead", page.Items[0].Character)
}

func TestTMDB_GetSeriesDetail(t *testing.T) {
	defer httpmock.DeactivateAndReset()

	resp := map[string]any{
		"id":   1399,
		"name": "Game of Thrones",
		"seasons": []map[string]any{
			{"season_number": 0, "name": "Specials", "episode_count": 14},
			{"season_number": 1, "name": "Season 1", "episode_count": 10, "air_date": "2011-04-17"},
		},
	}
	httpmock.RegisterResponder("GET", testBaseURL+"/tv/1399",
		httpmock.NewJsonResponderOrPanic(200, resp))

	client := newTestClient()
	detail, err := client.GetSeriesDetail(context.Background(), "1399")

	require.NoError(t, err)
	assert.Equal(t, "1399", detail.ID)
	assert.Equal(t, "Game of Thrones", detail.Name)
	require.Len(t, detail.Seasons, 2)
	assert.Equal(t, 0, detail.Seasons[0].Number)
	assert.Equal(t, 10, detail.Seasons[1].EpisodeCount)
	assert.Equal(t, "2011-04-17", detail.Seasons[1].AirDate)
}

func TestTMDB_GetSeason(t *testing.T) {
	defer httpmock.DeactivateAndReset()

	resp := map[string]any{
		"season_number": 1,
		"name":          "Season 1",
		"air_date":      "2011-04-17",
		"episodes": []map[string]any{
			{"season_number": 1, "episode_number": 1, "name": "Winter Is Coming", "still_path": "/still.jpg", "runtime": 62},
			{"season_number": 1, "episode_number": 2, "name": "The Kingsroad"},
		},
	}
	httpmock.RegisterResponder("GET", testBaseURL+"/tv/1399/season/1",
		httpmock.NewJsonResponderOrPanic(200, resp))

	client := newTestClient()
	season, err := client.GetSeason(context.Background(), "1399", 1)

	require.NoError(t, err)
	assert.True(t, season.Hydrated)
	assert.Equal(t, 1, season.Number)
	assert.Equal(t, 2, season.EpisodeCount)
	require.Len(t, season.Episodes, 2)
	assert.Equal(t, "Winter Is Coming", season.Episodes[0].Name)
	assert.Equal(t, imageBaseURL+"/still.jpg", season.Episodes[0].StillURL)
	assert.Equal(t, 62, season.Episodes[0].Runtime)
}

func TestTMDB_GetEpisode(t *testing.T) {
	defer httpmock.DeactivateAndReset()

	resp := map[string]any{
		"season_number":  1,
		"episode_number": 9,
		"name":           "Baelor",
		"vote_average":   9.6,
	}
	httpmock.RegisterResponder("GET", testBaseURL+"/tv/1399/season/1/episode/9",
		httpmock.NewJsonResponderOrPanic(200, resp))

	client := newTestClient()
	episode, err := client.GetEpisode(context.Background(), "1399", 1, 9)

	require.NoError(t, err)
	assert.Equal(t, "Baelor", episode.Name)
	assert.Equal(t, 9.6, episode.VoteAverage)
}

func TestTMDB_Initialize(t *testing.T) {
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("GET", testBaseURL+"/configuration",
		httpmock.NewStringResponder(200, `{"images":{}}`))

	client := newTestClient()
	require.NoError(t, client.Initialize(context.Background()))

	// Latched: a second call does not hit the API again.
	require.NoError(t, client.Initialize(context.Background()))
	info := httpmock.GetCallCountInfo()
	assert.Equal(t, 1, info["GET "+testBaseURL+"/configuration"])
}

func TestTMDB_Initialize_FailureRetried(t *testing.T) {
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("GET", testBaseURL+"/configuration",
		httpmock.NewStringResponder(503, "down"))

	client := newTestClient()
	err := client.Initialize(context.Background())
	require.Error(t, err)
	assert.True(t, domain.IsProviderError(err))

	// A failed initialization is not latched.
	httpmock.Reset()
	httpmock.RegisterResponder("GET", testBaseURL+"/configuration",
		httpmock.NewStringResponder(200, `{}`))
	require.NoError(t, client.Initialize(context.Background()))
}

func TestTMDB_Identity(t *testing.T) {
	client := newTestClient()
	defer httpmock.DeactivateAndReset()

	assert.Equal(t, "tmdb_main", client.ID())
	assert.Equal(t, "tmdb", client.SourceID())
	assert.True(t, client.PaginatesServerSide())
	assert.True(t, client.HasCapability(domain.CapabilitySeasons))
	assert.False(t, client.HasCapability(domain.Capability("playback")))
	assert.ElementsMatch(t, []string{
		"popular_movies", "trending_movies", "top_rated_movies", "popular_series", "trending_series",
	}, client.CatalogTypes())
}

func TestTMDB_GetDetail(t *testing.T) {
	defer httpmock.DeactivateAndReset()

	resp := map[string]any{
		"id":       603,
		"title":    "The Matrix",
		"overview": "A hacker learns the truth.",
		"runtime":  136,
		"budget":   63000000,
		"imdb_id":  "tt0133093",
	}
	httpmock.RegisterResponder("GET", testBaseURL+"/movie/603",
		httpmock.NewJsonResponderOrPanic(200, resp))

	client := newTestClient()
	item, err := client.GetDetail(context.Background(), domain.DetailRequest{
		ID:        "603",
		MediaType: domain.MediaTypeMovie,
	})

	require.NoError(t, err)
	assert.Equal(t, "The Matrix", item.Title)
	assert.Equal(t, 136, item.Runtime)
	assert.Equal(t, int64(63000000), item.Budget)
	assert.Equal(t, "tt0133093", item.ExternalIDs["imdb"])

	var raw map[string]any
	require.NoError(t, json.Unmarshal(item.Raw, &raw))
	assert.Equal(t, "The Matrix", raw["title"])
}
