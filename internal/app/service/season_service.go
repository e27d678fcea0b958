package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"media-catalog-service/internal/config"
	"media-catalog-service/internal/domain"
	"media-catalog-service/internal/registry"
)

// SeasonService retrieves seasons and episodes for series. Individual
// season failures are isolated: a failed season becomes a placeholder
// with its summary metadata instead of failing the whole series.
type SeasonService struct {
	registry *registry.Registry
	cfg      config.SeasonConfig
	logger   *zap.Logger
}

// NewSeasonService creates a new SeasonService.
func NewSeasonService(reg *registry.Registry, cfg config.SeasonConfig, logger *zap.Logger) *SeasonService {
	return &SeasonService{
		registry: reg,
		cfg:      cfg,
		logger:   logger,
	}
}

// SeasonsQuery holds the parameters for series season retrieval.
// ProviderID is optional; when empty, selection prefers the provider
// recorded in Context, then falls back by priority. Timeout bounds each
// season fetch; zero means the configured default.
type SeasonsQuery struct {
	SeriesID        string
	ProviderID      string
	Context         *domain.ContentContext
	IncludeSpecials bool
	Timeout         time.Duration
}

// GetAllSeasons fetches the full detail of every season of a series.
// Specials (season 0) are skipped unless requested. Each season is
// fetched in isolation with its own timeout; failed seasons are
// returned as unhydrated placeholders and listed in FailedSeasons.
func (s *SeasonService) GetAllSeasons(ctx context.Context, q SeasonsQuery) (*domain.SeasonsResult, error) {
	if q.SeriesID == "" {
		return nil, domain.NewValidationError("seriesId", "must not be empty")
	}

	sp, err := s.selectSeasonProvider(q.ProviderID, q.Context)
	if err != nil {
		return nil, err
	}
	if err := ensureInitialized(ctx, sp, s.logger); err != nil {
		return nil, err
	}

	timeout := s.clampTimeout(q.Timeout)

	detail, err := s.fetchSeriesDetail(ctx, sp, q.SeriesID, timeout)
	if err != nil {
		return nil, err
	}

	result := &domain.SeasonsResult{
		SeriesID:   q.SeriesID,
		SeriesName: detail.Name,
		Seasons:    make([]domain.Season, 0, len(detail.Seasons)),
	}

	total := 0
	loaded := 0
	for _, summary := range detail.Seasons {
		if summary.Number == 0 && !q.IncludeSpecials {
			continue
		}
		total++

		season, err := s.loadSeasonWithTimeout(ctx, sp, q.SeriesID, summary.Number, timeout)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			s.logger.Warn("season fetch failed, returning placeholder",
				zap.String("series_id", q.SeriesID),
				zap.Int("season", summary.Number),
				zap.Bool("timed_out", domain.IsTimeout(err)),
				zap.Error(err),
			)
			result.Seasons = append(result.Seasons, placeholderSeason(summary))
			result.FailedSeasons = append(result.FailedSeasons, summary.Number)
			continue
		}
		loaded++
		result.Seasons = append(result.Seasons, *season)
	}

	result.CompletenessScore = completeness(loaded, total)

	s.logger.Debug("seasons fetched",
		zap.String("series_id", q.SeriesID),
		zap.Int("seasons", total),
		zap.Int("failed", len(result.FailedSeasons)),
		zap.Float64("completeness", result.CompletenessScore),
	)
	return result, nil
}

// SeasonQuery holds the parameters for a single season fetch.
type SeasonQuery struct {
	SeriesID     string
	SeasonNumber int
	ProviderID   string
	Context      *domain.ContentContext
	Timeout      time.Duration
}

// GetSeason fetches one season's full detail. Unlike GetAllSeasons
// there is no placeholder fallback: a failure is returned to the caller.
func (s *SeasonService) GetSeason(ctx context.Context, q SeasonQuery) (*domain.Season, error) {
	if q.SeriesID == "" {
		return nil, domain.NewValidationError("seriesId", "must not be empty")
	}
	if q.SeasonNumber < 0 {
		return nil, domain.NewValidationError("season", "must not be negative")
	}

	sp, err := s.selectSeasonProvider(q.ProviderID, q.Context)
	if err != nil {
		return nil, err
	}
	if err := ensureInitialized(ctx, sp, s.logger); err != nil {
		return nil, err
	}

	return s.loadSeasonWithTimeout(ctx, sp, q.SeriesID, q.SeasonNumber, s.clampTimeout(q.Timeout))
}

// EpisodeQuery holds the parameters for a single episode fetch.
type EpisodeQuery struct {
	SeriesID      string
	SeasonNumber  int
	EpisodeNumber int
	ProviderID    string
	Context       *domain.ContentContext
}

// GetEpisodeDetails fetches one episode's detail.
func (s *SeasonService) GetEpisodeDetails(ctx context.Context, q EpisodeQuery) (*domain.Episode, error) {
	if q.SeriesID == "" {
		return nil, domain.NewValidationError("seriesId", "must not be empty")
	}
	if q.SeasonNumber < 0 {
		return nil, domain.NewValidationError("season", "must not be negative")
	}
	if q.EpisodeNumber < 1 {
		return nil, domain.NewValidationError("episode", "must be a positive integer")
	}

	sp, err := s.selectSeasonProvider(q.ProviderID, q.Context)
	if err != nil {
		return nil, err
	}
	if err := ensureInitialized(ctx, sp, s.logger); err != nil {
		return nil, err
	}

	return sp.GetEpisode(ctx, q.SeriesID, q.SeasonNumber, q.EpisodeNumber)
}

func (s *SeasonService) selectSeasonProvider(providerID string, cc *domain.ContentContext) (domain.SeasonProvider, error) {
	preferred := providerID
	if preferred == "" && cc != nil {
		preferred = cc.ProviderID
	}
	p, err := autoSelectProvider(s.registry, domain.CapabilitySeasons, preferred)
	if err != nil {
		return nil, err
	}
	sp, ok := p.(domain.SeasonProvider)
	if !ok {
		return nil, domain.NewNotFoundError("provider", p.ID())
	}
	return sp, nil
}

func (s *SeasonService) fetchSeriesDetail(ctx context.Context, sp domain.SeasonProvider, seriesID string, timeout time.Duration) (*domain.SeriesDetail, error) {
	type outcome struct {
		detail *domain.SeriesDetail
		err    error
	}

	cctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ch := make(chan outcome, 1)
	go func() {
		d, err := sp.GetSeriesDetail(cctx, seriesID)
		ch <- outcome{detail: d, err: err}
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case out := <-ch:
		return out.detail, out.err
	case <-timer.C:
		cancel()
		return nil, &domain.TimeoutError{
			Op:      fmt.Sprintf("series detail %s", seriesID),
			Timeout: timeout,
		}
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// loadSeasonWithTimeout races one season fetch against its timeout.
// On timeout the fetch context is cancelled and the caller gets a
// TimeoutError; provider failures keep their own error kind.
func (s *SeasonService) loadSeasonWithTimeout(ctx context.Context, sp domain.SeasonProvider, seriesID string, seasonNumber int, timeout time.Duration) (*domain.Season, error) {
	type outcome struct {
		season *domain.Season
		err    error
	}

	cctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ch := make(chan outcome, 1)
	go func() {
		season, err := sp.GetSeason(cctx, seriesID, seasonNumber)
		ch <- outcome{season: season, err: err}
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case out := <-ch:
		return out.season, out.err
	case <-timer.C:
		cancel()
		return nil, &domain.TimeoutError{
			Op:      fmt.Sprintf("season %d of series %s", seasonNumber, seriesID),
			Timeout: timeout,
		}
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// clampTimeout applies the configured default and bounds.
func (s *SeasonService) clampTimeout(timeout time.Duration) time.Duration {
	if timeout <= 0 {
		timeout = s.cfg.Timeout
	}
	if timeout < s.cfg.MinTimeout {
		return s.cfg.MinTimeout
	}
	if timeout > s.cfg.MaxTimeout {
		return s.cfg.MaxTimeout
	}
	return timeout
}

func placeholderSeason(summary domain.SeasonSummary) domain.Season {
	return domain.Season{
		Number:       summary.Number,
		Name:         summary.Name,
		AirDate:      summary.AirDate,
		EpisodeCount: summary.EpisodeCount,
		Episodes:     []domain.Episode{},
		Hydrated:     false,
	}
}

func completeness(loaded, total int) float64 {
	if total == 0 {
		return 1.0
	}
	return float64(loaded) / float64(total)
}
