package repository

import (
	"context"
	"errors"
	"time"

	"SmartTrade/internal/domain/models"
	"SmartTrade/internal/domain/repository"
	"SmartTrade/pkg/cache"
	"SmartTrade/pkg/logger"
)

// CachedBarProvider decorates a BarProvider with a per-symbol cache so
// repeated analysis runs within the TTL do not refetch daily bars. The
// cache key includes the lookback so different windows never collide.
type CachedBarProvider struct {
	next  repository.BarProvider
	cache cache.Service
	ttl   time.Duration
	log   *logger.Logger
}

func NewCachedBarProvider(next repository.BarProvider, c cache.Service, ttl time.Duration, log *logger.Logger) repository.BarProvider {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &CachedBarProvider{next: next, cache: c, ttl: ttl, log: log}
}

func (p *CachedBarProvider) GetBars(ctx context.Context, symbols []string, lookbackDays int) (map[string]models.BarSeries, error) {
	result := make(map[string]models.BarSeries, len(symbols))
	missing := make([]string, 0, len(symbols))

	for _, symbol := range symbols {
		var series models.BarSeries
		err := p.cache.Get(ctx, p.key(symbol, lookbackDays), &series)
		switch {
		case err == nil:
			result[symbol] = series
		case errors.Is(err, cache.ErrCacheMiss):
			missing = append(missing, symbol)
		default:
			// Cache trouble degrades to a fetch, never to a failure.
			p.log.Warn("bar cache read failed", logger.String("symbol", symbol), logger.Error(err))
			missing = append(missing, symbol)
		}
	}

	if len(missing) == 0 {
		return result, nil
	}

	fetched, err := p.next.GetBars(ctx, missing, lookbackDays)
	if err != nil {
		return nil, err
	}

	for symbol, series := range fetched {
		result[symbol] = series
		if err := p.cache.Set(ctx, p.key(symbol, lookbackDays), series, p.ttl); err != nil {
			p.log.Warn("bar cache write failed", logger.String("symbol", symbol), logger.Error(err))
		}
	}

	return result, nil
}

func (p *CachedBarProvider) key(symbol string, lookbackDays int) string {
	return cache.Key("bars", symbol, lookbackDays)
}
