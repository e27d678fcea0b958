package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"media-catalog-service/internal/config"
	"media-catalog-service/internal/domain"
	"media-catalog-service/internal/registry"
)

func testSeasonConfig() config.SeasonConfig {
	return config.SeasonConfig{
		Timeout:    200 * time.Millisecond,
		MinTimeout: 10 * time.Millisecond,
		MaxTimeout: time.Second,
	}
}

func newSeasonFake() *fakeProvider {
	p := &fakeProvider{
		id:       "p1",
		source:   "test",
		caps:     []domain.Capability{domain.CapabilitySeasons},
		priority: 1,
	}
	p.seriesFn = func(seriesID string) (*domain.SeriesDetail, error) {
		return &domain.SeriesDetail{
			ID:   seriesID,
			Name: "Test Series",
			Seasons: []domain.SeasonSummary{
				{Number: 0, Name: "Specials", EpisodeCount: 3},
				{Number: 1, Name: "Season 1", EpisodeCount: 10},
				{Number: 2, Name: "Season 2", EpisodeCount: 8},
			},
		}, nil
	}
	p.seasonFn = func(_ context.Context, seriesID string, n int) (*domain.Season, error) {
		episodes := make([]domain.Episode, 0, 2)
		for e := 1; e <= 2; e++ {
			episodes = append(episodes, domain.Episode{
				SeasonNumber:  n,
				EpisodeNumber: e,
				Name:          fmt.Sprintf("Episode %d", e),
			})
		}
		return &domain.Season{
			Number:       n,
			Name:         fmt.Sprintf("Season %d", n),
			EpisodeCount: len(episodes),
			Episodes:     episodes,
			Hydrated:     true,
		}, nil
	}
	return p
}

func newSeasonTestService(reg *registry.Registry) *SeasonService {
	return NewSeasonService(reg, testSeasonConfig(), zap.NewNop())
}

func TestGetAllSeasonsSkipsSpecials(t *testing.T) {
	p := newSeasonFake()
	svc := newSeasonTestService(newTestRegistry(p))

	result, err := svc.GetAllSeasons(context.Background(), SeasonsQuery{SeriesID: "s1"})
	require.NoError(t, err)

	assert.Equal(t, "Test Series", result.SeriesName)
	require.Len(t, result.Seasons, 2)
	assert.Equal(t, 1, result.Seasons[0].Number)
	assert.Equal(t, 2, result.Seasons[1].Number)
	assert.Empty(t, result.FailedSeasons)
	assert.Equal(t, 1.0, result.CompletenessScore)
	for _, season := range result.Seasons {
		assert.True(t, season.Hydrated)
	}
}

func TestGetAllSeasonsIncludesSpecialsOnRequest(t *testing.T) {
	p := newSeasonFake()
	svc := newSeasonTestService(newTestRegistry(p))

	result, err := svc.GetAllSeasons(context.Background(), SeasonsQuery{SeriesID: "s1", IncludeSpecials: true})
	require.NoError(t, err)

	require.Len(t, result.Seasons, 3)
	assert.Equal(t, 0, result.Seasons[0].Number)
}

func TestGetAllSeasonsIsolatesFailures(t *testing.T) {
	p := newSeasonFake()
	base := p.seasonFn
	p.seasonFn = func(ctx context.Context, seriesID string, n int) (*domain.Season, error) {
		if n == 2 {
			return nil, &domain.ProviderError{ProviderID: "p1", Op: "get season", Err: errors.New("upstream 500")}
		}
		return base(ctx, seriesID, n)
	}
	svc := newSeasonTestService(newTestRegistry(p))

	result, err := svc.GetAllSeasons(context.Background(), SeasonsQuery{SeriesID: "s1"})
	require.NoError(t, err)

	require.Len(t, result.Seasons, 2)
	assert.True(t, result.Seasons[0].Hydrated)

	placeholder := result.Seasons[1]
	assert.False(t, placeholder.Hydrated)
	assert.Equal(t, 2, placeholder.Number)
	assert.Equal(t, "Season 2", placeholder.Name)
	assert.Equal(t, 8, placeholder.EpisodeCount)
	assert.Empty(t, placeholder.Episodes)

	assert.Equal(t, []int{2}, result.FailedSeasons)
	assert.Equal(t, 0.5, result.CompletenessScore)
}

func TestGetAllSeasonsSlowSeasonTimesOut(t *testing.T) {
	p := newSeasonFake()
	base := p.seasonFn
	p.seasonFn = func(ctx context.Context, seriesID string, n int) (*domain.Season, error) {
		if n == 1 {
			select {
			case <-time.After(2 * time.Second):
			case <-ctx.Done():
			}
			return nil, ctx.Err()
		}
		return base(ctx, seriesID, n)
	}
	svc := newSeasonTestService(newTestRegistry(p))

	result, err := svc.GetAllSeasons(context.Background(), SeasonsQuery{
		SeriesID: "s1",
		Timeout:  20 * time.Millisecond,
	})
	require.NoError(t, err)

	assert.Equal(t, []int{1}, result.FailedSeasons)
	assert.False(t, result.Seasons[0].Hydrated)
	assert.True(t, result.Seasons[1].Hydrated)
	assert.Equal(t, 0.5, result.CompletenessScore)
}

func TestGetAllSeasonsValidation(t *testing.T) {
	svc := newSeasonTestService(newTestRegistry(newSeasonFake()))

	_, err := svc.GetAllSeasons(context.Background(), SeasonsQuery{})
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
}

func TestGetAllSeasonsNoProvider(t *testing.T) {
	svc := newSeasonTestService(newTestRegistry())

	_, err := svc.GetAllSeasons(context.Background(), SeasonsQuery{SeriesID: "s1"})
	require.Error(t, err)
	assert.True(t, domain.IsNotFound(err))
}

func TestGetSeasonTimeoutErrorKind(t *testing.T) {
	p := newSeasonFake()
	p.seasonFn = func(ctx context.Context, seriesID string, n int) (*domain.Season, error) {
		select {
		case <-time.After(2 * time.Second):
		case <-ctx.Done():
		}
		return nil, ctx.Err()
	}
	svc := newSeasonTestService(newTestRegistry(p))

	_, err := svc.GetSeason(context.Background(), SeasonQuery{
		SeriesID:     "s1",
		SeasonNumber: 1,
		Timeout:      20 * time.Millisecond,
	})
	require.Error(t, err)
	assert.True(t, domain.IsTimeout(err))
}

func TestGetSeasonValidation(t *testing.T) {
	svc := newSeasonTestService(newTestRegistry(newSeasonFake()))

	_, err := svc.GetSeason(context.Background(), SeasonQuery{SeriesID: "s1", SeasonNumber: -1})
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
}

func TestGetEpisodeDetails(t *testing.T) {
	p := newSeasonFake()
	p.episodeFn = func(seriesID string, sn, en int) (*domain.Episode, error) {
		return &domain.Episode{SeasonNumber: sn, EpisodeNumber: en, Name: "Pilot"}, nil
	}
	svc := newSeasonTestService(newTestRegistry(p))

	episode, err := svc.GetEpisodeDetails(context.Background(), EpisodeQuery{
		SeriesID:      "s1",
		SeasonNumber:  1,
		EpisodeNumber: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, "Pilot", episode.Name)
}

func TestGetEpisodeDetailsValidation(t *testing.T) {
	svc := newSeasonTestService(newTestRegistry(newSeasonFake()))

	_, err := svc.GetEpisodeDetails(context.Background(), EpisodeQuery{SeriesID: "s1", SeasonNumber: 1})
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
}

func TestSeasonSelectionPrefersContextProvider(t *testing.T) {
	p1 := newSeasonFake()
	p2 := newSeasonFake()
	p2.id = "p2"
	p2.priority = 5
	p2.seriesFn = func(seriesID string) (*domain.SeriesDetail, error) {
		return &domain.SeriesDetail{ID: seriesID, Name: "From p2"}, nil
	}
	svc := newSeasonTestService(newTestRegistry(p1, p2))

	result, err := svc.GetAllSeasons(context.Background(), SeasonsQuery{
		SeriesID: "s1",
		Context:  &domain.ContentContext{ProviderID: "p2"},
	})
	require.NoError(t, err)
	assert.Equal(t, "From p2", result.SeriesName)
	assert.Equal(t, 1.0, result.CompletenessScore)
}

func TestClampTimeout(t *testing.T) {
	svc := newSeasonTestService(newTestRegistry())

	assert.Equal(t, 200*time.Millisecond, svc.clampTimeout(0))
	assert.Equal(t, 10*time.Millisecond, svc.clampTimeout(time.Millisecond))
	assert.Equal(t, time.Second, svc.clampTimeout(time.Minute))
	assert.Equal(t, 500*time.Millisecond, svc.clampTimeout(500*time.Millisecond))
}
